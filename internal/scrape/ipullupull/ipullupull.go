package ipullupull

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"yardwatch/internal/domain"
	"yardwatch/internal/scrape"
	"yardwatch/internal/scrape/util"
)

// Feed is one fresh-arrivals RSS feed, usually one per yard location.
type Feed struct {
	URL      string
	Location string
}

type Config struct {
	Feeds []Feed
}

type Scraper struct {
	cfg Config
	c   *scrape.Client
	log zerolog.Logger
}

func New(cfg Config, c *scrape.Client, log zerolog.Logger) *Scraper {
	return &Scraper{cfg: cfg, c: c, log: log.With().Str("source", "ipullupull").Logger()}
}

func (s *Scraper) Name() string { return "ipullupull" }

func (s *Scraper) Fetch(ctx context.Context) ([]domain.Listing, error) {
	parser := gofeed.NewParser()

	var out []domain.Listing
	failed := 0

	for _, f := range s.cfg.Feeds {
		body, err := s.c.Get(ctx, f.URL)
		if err != nil {
			s.log.Warn().Err(err).Str("feed", f.URL).Msg("feed fetch failed")
			failed++
			continue
		}

		feed, err := parser.Parse(bytes.NewReader(body))
		if err != nil {
			s.log.Warn().Err(err).Str("feed", f.URL).Msg("feed parse failed")
			failed++
			continue
		}

		for _, it := range feed.Items {
			title := util.CleanText(it.Title)
			link := strings.TrimSpace(it.Link)
			if title == "" || link == "" {
				continue
			}

			year, mk, model := util.ParseTitle(title)

			arrival := ""
			if it.PublishedParsed != nil {
				arrival = it.PublishedParsed.UTC().Format("2006-01-02")
			}

			// feed GUIDs repeat the link on this site; only keep real ids
			externalID := strings.TrimSpace(it.GUID)
			if externalID == link {
				externalID = ""
			}

			out = append(out, domain.Listing{
				Source:      s.Name(),
				ExternalID:  externalID,
				Title:       title,
				Year:        year,
				Make:        mk,
				Model:       model,
				Location:    f.Location,
				URL:         link,
				ArrivalDate: arrival,
				RawExcerpt:  util.CleanText(it.Description),
			})
		}
	}

	if failed > 0 && failed == len(s.cfg.Feeds) {
		return nil, fmt.Errorf("all %d feeds failed", failed)
	}
	return out, nil
}
