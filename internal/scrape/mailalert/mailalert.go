// Package mailalert turns salvage-yard arrival-alert emails into
// listings. Some yards have no usable inventory page but will happily
// email "new Dodge arrivals" digests; this adapter polls that mailbox
// over IMAP.
package mailalert

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/rs/zerolog"

	"yardwatch/internal/domain"
	"yardwatch/internal/scrape/util"
)

type Config struct {
	Host        string // host or host:port, :993 assumed
	Username    string
	Password    string
	Mailbox     string   // default INBOX
	SubjectAny  []string // alert subject needles; empty matches everything
	Location    string   // stamped on parsed listings
	MaxMessages int
}

type Scraper struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Scraper {
	return &Scraper{cfg: cfg, log: log.With().Str("source", "mailalert").Logger()}
}

func (s *Scraper) Name() string { return "mailalert" }

func (s *Scraper) Fetch(ctx context.Context) ([]domain.Listing, error) {
	addr := s.cfg.Host
	if !strings.Contains(addr, ":") {
		addr += ":993"
	}

	c, err := dialAndLogin(ctx, addr, s.cfg.Username, s.cfg.Password)
	if err != nil {
		return nil, err
	}
	defer logout(c)

	if err := selectMailbox(c, s.cfg.Mailbox); err != nil {
		return nil, err
	}

	msgs, err := fetchUnseen(ctx, c, s.cfg.MaxMessages)
	if err != nil {
		return nil, err
	}

	var out []domain.Listing
	var processed []imap.UID
	for _, m := range msgs {
		if !subjectMatches(m.Subject, s.cfg.SubjectAny) {
			// unrelated mail stays unseen and untouched
			continue
		}
		out = append(out, s.parseAlert(m)...)
		processed = append(processed, m.UID)
	}

	// Flag processed alerts so the next cycle skips them. If flagging
	// fails the listings are still returned; the dedup store absorbs the
	// refetch next cycle.
	if err := markSeen(c, processed); err != nil {
		s.log.Warn().Err(err).Int("messages", len(processed)).Msg("mark seen failed")
	}

	s.log.Debug().Int("messages", len(processed)).Int("listings", len(out)).Msg("mailbox polled")
	return out, nil
}

var (
	reLink  = regexp.MustCompile(`https?://[^\s<>"']+`)
	reStock = regexp.MustCompile(`(?i)stock\s*#?:?\s*([A-Za-z0-9-]+)`)
)

// parseAlert pulls listings out of one alert email. The yards' digests
// list one vehicle per line:
//
//	2001 Dodge Ram 1500 - Stock #9912 - https://yard.example/v/9912
//
// Lines that do not open with a model year are ignored, except
// "Location: X" headers, which scope the vehicle lines below them.
func (s *Scraper) parseAlert(m message) []domain.Listing {
	var out []domain.Listing

	loc := s.cfg.Location
	for _, line := range strings.Split(bodyText(m.Raw), "\n") {
		line = util.CleanText(line)
		if line == "" {
			continue
		}

		title := line
		if i := strings.Index(line, " - "); i > 0 {
			title = line[:i]
		}
		year, mk, model := util.ParseTitle(title)
		if year == 0 {
			if l := util.ExtractLocationFromLabeledText(line); l != "" {
				loc = l
			}
			continue
		}

		link := strings.TrimRight(reLink.FindString(line), ".,);:]\"'")
		stock := ""
		if sm := reStock.FindStringSubmatch(line); sm != nil {
			stock = sm[1]
		}
		if link == "" && stock == "" {
			// nothing stable to dedup on
			continue
		}

		arrival := ""
		if !m.Date.IsZero() {
			arrival = m.Date.UTC().Format("2006-01-02")
		}

		out = append(out, domain.Listing{
			Source:      s.Name(),
			ExternalID:  stock,
			Title:       title,
			Year:        year,
			Make:        mk,
			Model:       model,
			Location:    loc,
			URL:         link,
			ArrivalDate: arrival,
			RawExcerpt:  line,
		})
	}

	return out
}

func subjectMatches(subject string, any []string) bool {
	if len(any) == 0 {
		return true
	}
	low := strings.ToLower(subject)
	for _, needle := range any {
		needle = strings.ToLower(strings.TrimSpace(needle))
		if needle != "" && strings.Contains(low, needle) {
			return true
		}
	}
	return false
}

// Validate reports config errors before any dial is attempted.
func (c Config) Validate() error {
	if c.Host == "" || c.Username == "" {
		return fmt.Errorf("mailalert requires host and username")
	}
	return nil
}
