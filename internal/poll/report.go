package poll

import "time"

// Cycle triggers, recorded on reports.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
)

// SourceReport is one adapter's slice of a cycle.
type SourceReport struct {
	Source      string `json:"source"`
	Fetched     int    `json:"fetched"`
	Matched     int    `json:"matched"`
	New         int    `json:"new"`
	StoreErrors int    `json:"store_errors"`
	SinkErrors  int    `json:"sink_errors"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes one polling cycle. Sources appear in registry order.
type Report struct {
	Trigger      string         `json:"trigger"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	TotalFetched int            `json:"total_fetched"`
	TotalNew     int            `json:"total_new"`
	Sources      []SourceReport `json:"sources"`
}

// Failed reports whether any source in the cycle errored outright.
func (r Report) Failed() bool {
	for _, s := range r.Sources {
		if s.Error != "" {
			return true
		}
	}
	return false
}
