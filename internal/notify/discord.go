package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"yardwatch/internal/domain"
)

// Discord posts listings to one channel. It shares the bot's session so
// the process holds a single gateway connection.
type Discord struct {
	Session   *discordgo.Session
	ChannelID string
}

func NewDiscord(session *discordgo.Session, channelID string) *Discord {
	return &Discord{Session: session, ChannelID: channelID}
}

func (d *Discord) Send(ctx context.Context, l domain.Listing) error {
	_, err := d.Session.ChannelMessageSend(d.ChannelID, FormatMessage(l), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}
