package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"yardwatch/internal/config"
	"yardwatch/internal/scrape"
	"yardwatch/internal/scrape/bucksauto"
	"yardwatch/internal/scrape/ipullupull"
	"yardwatch/internal/scrape/mailalert"
	"yardwatch/internal/scrape/picknpull"
	"yardwatch/internal/secrets"
)

// buildSources assembles the enabled adapters in a fixed order; report
// rows and notifications follow it.
func buildSources(cfg config.Config, log zerolog.Logger) ([]scrape.Source, error) {
	client := scrape.NewClient(scrape.ClientConfig{
		Timeout:        time.Duration(cfg.Polling.RequestTimeoutSeconds) * time.Second,
		RequestsPerSec: 1.0 / cfg.Polling.RequestDelaySeconds,
		MaxRetries:     cfg.Polling.MaxRetries,
	})

	var sources []scrape.Source
	sc := cfg.Sources

	if sc.PickNPull.Enabled {
		pcfg := picknpull.Config{Make: cfg.Search.Make}
		for _, st := range sc.PickNPull.Stores {
			pcfg.Stores = append(pcfg.Stores, picknpull.Store{ID: st.ID, Location: st.Location})
		}
		sources = append(sources, picknpull.New(pcfg, client, log))
	}

	if sc.BucksAuto.Enabled {
		bcfg := bucksauto.Config{BaseURL: sc.BucksAuto.BaseURL, MaxPages: sc.BucksAuto.MaxPages}
		for _, p := range sc.BucksAuto.Pages {
			bcfg.Pages = append(bcfg.Pages, bucksauto.Page{Path: p.Path, Location: p.Location})
		}
		sources = append(sources, bucksauto.New(bcfg, client, log))
	}

	if sc.IPullUPull.Enabled {
		var icfg ipullupull.Config
		for _, f := range sc.IPullUPull.Feeds {
			icfg.Feeds = append(icfg.Feeds, ipullupull.Feed{URL: f.URL, Location: f.Location})
		}
		sources = append(sources, ipullupull.New(icfg, client, log))
	}

	if sc.MailAlert.Enabled {
		account := secrets.IMAPAccount(sc.MailAlert.Username, sc.MailAlert.IMAPHost)
		pw, err := secrets.GetIMAPPassword(account)
		if err != nil {
			return nil, fmt.Errorf("mailalert enabled: %w", err)
		}
		sources = append(sources, mailalert.New(mailalert.Config{
			Host:        sc.MailAlert.IMAPHost,
			Username:    sc.MailAlert.Username,
			Password:    pw,
			Mailbox:     sc.MailAlert.Mailbox,
			SubjectAny:  sc.MailAlert.SubjectAny,
			Location:    sc.MailAlert.Location,
			MaxMessages: sc.MailAlert.MaxMessages,
		}, log))
	}

	return sources, nil
}
