package picknpull

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"yardwatch/internal/domain"
	"yardwatch/internal/scrape"
	"yardwatch/internal/scrape/util"
)

// Store is one physical yard in the chain's inventory API.
type Store struct {
	ID       string // numeric store id the API expects
	Location string // human name carried onto listings, e.g. "Calgary"
}

type Config struct {
	BaseURL string // override for tests
	Make    string // search hint forwarded to the API
	Stores  []Store
}

type Scraper struct {
	cfg Config
	c   *scrape.Client
	log zerolog.Logger
}

func New(cfg Config, c *scrape.Client, log zerolog.Logger) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.picknpull.com"
	}
	return &Scraper{cfg: cfg, c: c, log: log.With().Str("source", "picknpull").Logger()}
}

func (s *Scraper) Name() string { return "picknpull" }

type vehicleRow struct {
	StockNumber string `json:"stockNumber"`
	Year        int    `json:"year"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Row         string `json:"row"`
	DateAdded   string `json:"dateAdded"`
	VehicleURL  string `json:"vehicleUrl"`
}

func (s *Scraper) Fetch(ctx context.Context) ([]domain.Listing, error) {
	var out []domain.Listing
	failed := 0

	for _, st := range s.cfg.Stores {
		rows, err := s.fetchStore(ctx, st)
		if err != nil {
			// one dead store must not hide the others' inventory
			s.log.Warn().Err(err).Str("store", st.ID).Msg("store fetch failed")
			failed++
			continue
		}
		out = append(out, rows...)
	}

	if failed > 0 && failed == len(s.cfg.Stores) {
		return nil, fmt.Errorf("all %d stores failed", failed)
	}
	return out, nil
}

func (s *Scraper) fetchStore(ctx context.Context, st Store) ([]domain.Listing, error) {
	q := url.Values{}
	q.Set("storeId", st.ID)
	if s.cfg.Make != "" {
		q.Set("make", s.cfg.Make)
	}
	apiURL := s.cfg.BaseURL + "/api/vehicle/search?" + q.Encode()

	body, err := s.c.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", st.ID, err)
	}

	var rows []vehicleRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("store %s: decode: %w", st.ID, err)
	}

	out := make([]domain.Listing, 0, len(rows))
	for _, r := range rows {
		stock := strings.TrimSpace(r.StockNumber)
		link := strings.TrimSpace(r.VehicleURL)
		if stock == "" && link == "" {
			// row with no identity at all, nothing to track
			continue
		}
		if link == "" {
			link = fmt.Sprintf("%s/check-inventory/vehicle?stock=%s", s.cfg.BaseURL, url.QueryEscape(stock))
		}

		mk := util.CleanText(r.Make)
		model := util.CleanText(r.Model)
		title := util.CleanText(mk + " " + model)
		if r.Year > 0 {
			title = util.CleanText(fmt.Sprintf("%d %s %s", r.Year, mk, model))
		}
		out = append(out, domain.Listing{
			Source:      s.Name(),
			ExternalID:  stock,
			Title:       title,
			Year:        r.Year,
			Make:        mk,
			Model:       model,
			Location:    st.Location,
			URL:         link,
			ArrivalDate: strings.TrimSpace(r.DateAdded),
			RawExcerpt:  r.Row,
		})
	}

	s.log.Debug().Str("store", st.ID).Int("rows", len(out)).Msg("store fetched")
	return out, nil
}
