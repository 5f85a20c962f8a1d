package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type StoreRef struct {
	ID       string `yaml:"id"`
	Location string `yaml:"location"`
}

type PageRef struct {
	Path     string `yaml:"path"`
	Location string `yaml:"location"`
}

type FeedRef struct {
	URL      string `yaml:"url"`
	Location string `yaml:"location"`
}

type Config struct {
	App struct {
		HTTPAddr string `yaml:"http_addr"`
	} `yaml:"app"`

	Logging struct {
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"logging"`

	Polling struct {
		IntervalMinutes       int     `yaml:"interval_minutes"`
		SourceTimeoutSeconds  int     `yaml:"source_timeout_seconds"`
		RequestDelaySeconds   float64 `yaml:"request_delay_seconds"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
		MaxRetries            int     `yaml:"max_retries"`
	} `yaml:"polling"`

	Search struct {
		Make      string   `yaml:"make"`
		Models    []string `yaml:"models"`
		YearMin   int      `yaml:"year_min"`
		YearMax   int      `yaml:"year_max"`
		Locations []string `yaml:"locations"`
	} `yaml:"search"`

	Discord struct {
		ChannelID string `yaml:"channel_id"`
	} `yaml:"discord"`

	Notify struct {
		TestMode bool `yaml:"test_mode"`
	} `yaml:"notify"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`

	Sources struct {
		PickNPull struct {
			Enabled bool       `yaml:"enabled"`
			Stores  []StoreRef `yaml:"stores"`
		} `yaml:"picknpull"`

		BucksAuto struct {
			Enabled  bool      `yaml:"enabled"`
			BaseURL  string    `yaml:"base_url"`
			Pages    []PageRef `yaml:"pages"`
			MaxPages int       `yaml:"max_pages"`
		} `yaml:"bucksauto"`

		IPullUPull struct {
			Enabled bool      `yaml:"enabled"`
			Feeds   []FeedRef `yaml:"feeds"`
		} `yaml:"ipullupull"`

		MailAlert struct {
			Enabled     bool     `yaml:"enabled"`
			IMAPHost    string   `yaml:"imap_host"`
			Username    string   `yaml:"username"`
			Mailbox     string   `yaml:"mailbox"`
			SubjectAny  []string `yaml:"search_subject_any"`
			Location    string   `yaml:"location"`
			MaxMessages int      `yaml:"max_messages"`
		} `yaml:"mailalert"`
	} `yaml:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
