package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"yardwatch/internal/domain"
)

// Notifier delivers one listing to wherever the operator watches.
// Delivery is fire-and-forget per listing: a failed send is logged and
// counted but never retried, and never unwinds the dedup record.
type Notifier interface {
	Send(ctx context.Context, l domain.Listing) error
}

// LogNotifier is the test-mode sink: the full pipeline runs, the ping
// lands in the log instead of a channel.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n *LogNotifier) Send(_ context.Context, l domain.Listing) error {
	n.Log.Info().
		Str("key", l.IdentityKey()).
		Str("title", l.Title).
		Str("location", l.Location).
		Msg("test mode, notification suppressed")
	return nil
}

// FormatMessage renders the channel message for one listing.
func FormatMessage(l domain.Listing) string {
	var b strings.Builder

	if l.Make != "" {
		fmt.Fprintf(&b, "🚗 **New %s Truck Listed!**\n\n", l.Make)
	} else {
		b.WriteString("🚗 **New Truck Listed!**\n\n")
	}

	if l.Year > 0 {
		fmt.Fprintf(&b, "**Year:** %d\n", l.Year)
	}

	vehicle := strings.TrimSpace(l.Make + " " + l.Model)
	if vehicle == "" {
		vehicle = l.Title
	}
	if vehicle != "" {
		fmt.Fprintf(&b, "**Vehicle:** %s\n", vehicle)
	}

	yard := l.Source
	if l.Location != "" {
		yard = fmt.Sprintf("%s (%s)", yard, l.Location)
	}
	fmt.Fprintf(&b, "**Yard:** %s\n", yard)

	if l.Price != "" {
		fmt.Fprintf(&b, "**Price:** %s\n", l.Price)
	}
	if l.ExternalID != "" {
		fmt.Fprintf(&b, "**Stock #:** %s\n", l.ExternalID)
	}
	if l.ArrivalDate != "" {
		fmt.Fprintf(&b, "**Arrived:** %s\n", l.ArrivalDate)
	}
	if l.URL != "" {
		fmt.Fprintf(&b, "**Link:** %s\n", l.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}
