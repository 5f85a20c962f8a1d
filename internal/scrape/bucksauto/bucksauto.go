package bucksauto

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"yardwatch/internal/domain"
	"yardwatch/internal/scrape"
	"yardwatch/internal/scrape/util"
)

// Page is one per-location inventory page on the yard's site.
type Page struct {
	Path     string // e.g. "/inventory/calgary"
	Location string
}

type Config struct {
	BaseURL  string
	Pages    []Page
	MaxPages int // pagination cap per location; default 5
}

type Scraper struct {
	cfg Config
	c   *scrape.Client
	log zerolog.Logger
}

func New(cfg Config, c *scrape.Client, log zerolog.Logger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.bucksauto.com"
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	return &Scraper{cfg: cfg, c: c, log: log.With().Str("source", "bucksauto").Logger()}
}

func (s *Scraper) Name() string { return "bucksauto" }

func (s *Scraper) Fetch(ctx context.Context) ([]domain.Listing, error) {
	var out []domain.Listing
	failed := 0

	for _, pg := range s.cfg.Pages {
		ls, err := s.fetchLocation(ctx, pg)
		if err != nil {
			s.log.Warn().Err(err).Str("path", pg.Path).Msg("location page failed")
			failed++
			continue
		}
		out = append(out, ls...)
	}

	if failed > 0 && failed == len(s.cfg.Pages) {
		return nil, fmt.Errorf("all %d location pages failed", failed)
	}
	return out, nil
}

func (s *Scraper) fetchLocation(ctx context.Context, pg Page) ([]domain.Listing, error) {
	var out []domain.Listing

	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := s.cfg.BaseURL + pg.Path
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", pageURL, page)
		}

		body, err := s.c.Get(ctx, pageURL)
		if err != nil {
			if page > 1 {
				// running off the end of pagination is not a failure
				break
			}
			return nil, err
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse inventory html: %w", err)
		}

		cards := s.parseCards(doc, pg)
		if len(cards) == 0 {
			break
		}
		out = append(out, cards...)
	}

	return out, nil
}

func (s *Scraper) parseCards(doc *goquery.Document, pg Page) []domain.Listing {
	var out []domain.Listing

	doc.Find(".vehicle-card, .inventory-item").Each(func(_ int, card *goquery.Selection) {
		title := util.CleanText(card.Find(".vehicle-title, h3, h2").First().Text())
		href, _ := card.Find("a[href]").First().Attr("href")
		href = strings.TrimSpace(href)

		if title == "" || href == "" {
			// card markup the site sometimes emits for ads and placeholders
			s.log.Debug().Str("path", pg.Path).Msg("skipping malformed vehicle card")
			return
		}

		abs := href
		if strings.HasPrefix(href, "/") {
			abs = s.cfg.BaseURL + href
		}

		// some cards carry their own lot location; the page default covers
		// the rest
		loc := util.LocationFromCard(card)
		if loc == "" {
			loc = pg.Location
		}

		year, mk, model := util.ParseTitle(title)
		out = append(out, domain.Listing{
			Source:      s.Name(),
			ExternalID:  stockFrom(card.Find(".stock-number, .stock").First().Text()),
			Title:       title,
			Year:        year,
			Make:        mk,
			Model:       model,
			Location:    loc,
			URL:         abs,
			Price:       util.CleanText(card.Find(".price").First().Text()),
			ArrivalDate: util.CleanText(card.Find(".date-added, .arrival-date").First().Text()),
		})
	})

	return out
}

// stockFrom strips "Stock", "#" and ":" labels off a stock number cell.
func stockFrom(raw string) string {
	s := util.CleanText(raw)
	for _, prefix := range []string{"Stock", "stock", "STOCK"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimLeft(s, " #:")
	return strings.TrimSpace(s)
}
