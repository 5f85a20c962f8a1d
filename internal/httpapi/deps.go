package httpapi

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"yardwatch/internal/events"
	"yardwatch/internal/poll"
	"yardwatch/internal/store"
)

type Deps struct {
	DB  *store.DB
	Hub *events.Hub
	Log zerolog.Logger

	// Poller entrypoints (injected for testability)
	RunCycle func(ctx context.Context, trigger string) (poll.Report, error)
	Status   func(ctx context.Context) poll.Status

	// Prometheus handler; nil when metrics are disabled
	Metrics http.Handler
}
