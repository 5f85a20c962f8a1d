// Package bot wires the !check and !status chat commands to the poller.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"yardwatch/internal/poll"
)

type Poller interface {
	RunCycle(ctx context.Context, trigger string) (poll.Report, error)
	Status(ctx context.Context) poll.Status
}

type Bot struct {
	ChannelID string
	Poller    Poller
	Log       zerolog.Logger
	Timeout   time.Duration // per !check; default 5 minutes
}

func New(channelID string, p Poller, log zerolog.Logger) *Bot {
	return &Bot{
		ChannelID: channelID,
		Poller:    p,
		Log:       log.With().Str("component", "bot").Logger(),
	}
}

// OnMessage is registered via discordgo's AddHandler. Commands are only
// honored in the notification channel.
func (b *Bot) OnMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if m.ChannelID != b.ChannelID {
		return
	}

	switch {
	case strings.HasPrefix(m.Content, "!check"):
		b.check(s)
	case strings.HasPrefix(m.Content, "!status"):
		b.status(s)
	}
}

func (b *Bot) check(s *discordgo.Session) {
	b.Log.Info().Msg("manual check triggered from chat")
	b.reply(s, "🔍 Checking salvage yards for new listings...")

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rep, err := b.Poller.RunCycle(ctx, poll.TriggerManual)
	if errors.Is(err, poll.ErrCycleRunning) {
		b.reply(s, "A check is already running, results land here when it finishes.")
		return
	}
	if err != nil {
		b.reply(s, "Check failed: "+err.Error())
		return
	}
	b.reply(s, checkSummary(rep))
}

func (b *Bot) status(s *discordgo.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.reply(s, statusMessage(b.Poller.Status(ctx)))
}

func (b *Bot) reply(s *discordgo.Session, text string) {
	if _, err := s.ChannelMessageSend(b.ChannelID, text); err != nil {
		b.Log.Warn().Err(err).Msg("discord reply failed")
	}
}

func checkSummary(rep poll.Report) string {
	var failed []string
	for _, sr := range rep.Sources {
		if sr.Error != "" {
			failed = append(failed, sr.Source)
		}
	}

	msg := "✅ No new listings found."
	if rep.TotalNew > 0 {
		msg = fmt.Sprintf("✅ Found %d new listing(s)!", rep.TotalNew)
	}
	if len(failed) > 0 {
		msg += fmt.Sprintf(" (%s unreachable)", strings.Join(failed, ", "))
	}
	return msg
}

func statusMessage(st poll.Status) string {
	sources := strings.Join(st.Sources, ", ")
	if sources == "" {
		sources = "none"
	}
	return fmt.Sprintf(
		"📊 **Bot Status**\n"+
			"• Total listings tracked: %d\n"+
			"• Check interval: %d minutes\n"+
			"• Active sources: %s\n"+
			"• Test mode: %t",
		st.TrackedListings, st.IntervalMinutes, sources, st.TestMode,
	)
}
