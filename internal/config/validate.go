package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned copy plus everything wrong with
// it. Errors mean the process must not start polling; warnings are logged
// and tolerated.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Make = strings.TrimSpace(out.Search.Make)
	out.Search.Models = trimList(out.Search.Models)
	out.Search.Locations = trimList(out.Search.Locations)
	out.Sources.MailAlert.SubjectAny = trimList(out.Sources.MailAlert.SubjectAny)

	// absent numbers pick up the shipped defaults; negatives are mistakes
	if out.Polling.IntervalMinutes < 0 {
		res.addErr("polling.interval_minutes must be >= 1")
	} else if out.Polling.IntervalMinutes == 0 {
		out.Polling.IntervalMinutes = 30
	} else if out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d) and may hammer the yards.", out.Polling.IntervalMinutes)
	}
	if out.Polling.SourceTimeoutSeconds <= 0 {
		out.Polling.SourceTimeoutSeconds = 120
	}
	if out.Polling.RequestDelaySeconds <= 0 {
		out.Polling.RequestDelaySeconds = 3
	}
	if out.Polling.RequestTimeoutSeconds <= 0 {
		out.Polling.RequestTimeoutSeconds = 30
	}
	if out.Polling.MaxRetries <= 0 {
		out.Polling.MaxRetries = 3
	}

	if out.Search.YearMin <= 0 {
		out.Search.YearMin = 1994
	}
	if out.Search.YearMax <= 0 {
		out.Search.YearMax = 2026
	}
	if out.Search.YearMin > out.Search.YearMax {
		res.addErr("search.year_min (%d) must not exceed search.year_max (%d)", out.Search.YearMin, out.Search.YearMax)
	}
	if out.Search.Make == "" {
		res.addWarn("search.make is empty; every make will match.")
	}

	// an empty allow-list admits nothing, so the watcher would run forever
	// and never notify
	if len(out.Search.Locations) == 0 {
		res.addErr("search.locations must list at least one yard location")
	}

	if !out.Notify.TestMode && strings.TrimSpace(out.Discord.ChannelID) == "" {
		res.addErr("discord.channel_id is required unless notify.test_mode is true")
	}

	src := &out.Sources
	if !src.PickNPull.Enabled && !src.BucksAuto.Enabled && !src.IPullUPull.Enabled && !src.MailAlert.Enabled {
		res.addErr("no sources enabled: enable picknpull, bucksauto, ipullupull, or mailalert")
	}

	if src.PickNPull.Enabled {
		if len(src.PickNPull.Stores) == 0 {
			res.addErr("sources.picknpull.stores must list at least one store when enabled")
		}
		for i, st := range src.PickNPull.Stores {
			if strings.TrimSpace(st.ID) == "" {
				res.addErr("sources.picknpull.stores[%d].id is required", i)
			}
			if strings.TrimSpace(st.Location) == "" {
				res.addWarn("sources.picknpull.stores[%d] has no location; its listings will fail the location filter.", i)
			}
		}
	}

	if src.BucksAuto.Enabled && len(src.BucksAuto.Pages) == 0 {
		res.addErr("sources.bucksauto.pages must list at least one page when enabled")
	}

	if src.IPullUPull.Enabled {
		if len(src.IPullUPull.Feeds) == 0 {
			res.addErr("sources.ipullupull.feeds must list at least one feed when enabled")
		}
		for i, f := range src.IPullUPull.Feeds {
			u, err := url.Parse(f.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				res.addErr("sources.ipullupull.feeds[%d].url must be an http(s) URL", i)
			}
		}
	}

	if src.MailAlert.Enabled {
		if strings.TrimSpace(src.MailAlert.IMAPHost) == "" {
			res.addErr("sources.mailalert.imap_host is required when enabled")
		}
		if strings.TrimSpace(src.MailAlert.Username) == "" {
			res.addErr("sources.mailalert.username is required when enabled")
		}
		if strings.TrimSpace(src.MailAlert.Mailbox) == "" {
			out.Sources.MailAlert.Mailbox = "INBOX"
		}
		if len(src.MailAlert.SubjectAny) == 0 {
			res.addWarn("sources.mailalert.search_subject_any is empty; every unseen message will be parsed.")
		}
	}

	return out, res
}
