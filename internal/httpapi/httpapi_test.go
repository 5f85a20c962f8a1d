package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yardwatch/internal/domain"
	"yardwatch/internal/events"
	"yardwatch/internal/poll"
	"yardwatch/internal/scrape"
	"yardwatch/internal/store"
)

type stubSource struct {
	listings []domain.Listing
	block    chan struct{} // when set, Fetch waits on it
	started  chan struct{}
}

func (s *stubSource) Name() string { return "yarda" }

func (s *stubSource) Fetch(ctx context.Context) ([]domain.Listing, error) {
	if s.block != nil {
		s.started <- struct{}{}
		select {
		case <-s.block:
		case <-ctx.Done():
		}
	}
	return s.listings, nil
}

type discardSink struct{}

func (discardSink) Send(context.Context, domain.Listing) error { return nil }

func newTestMux(t *testing.T, src scrape.Source) (*http.ServeMux, *store.DB) {
	t.Helper()
	db := store.OpenMemory(t)
	c := &poll.Cycle{
		Sources:  []scrape.Source{src},
		Store:    db,
		Notifier: discardSink{},
		Criteria: domain.Criteria{
			YearMin:   1994,
			YearMax:   2026,
			Make:      "Dodge",
			Locations: []string{"Calgary"},
		},
		Log: zerolog.Nop(),
	}
	p := poll.NewPoller(c, poll.Options{Interval: time.Hour}, zerolog.Nop())

	mux := NewMux(Deps{
		DB:       db,
		Hub:      events.NewHub(),
		Log:      zerolog.Nop(),
		RunCycle: p.RunCycle,
		Status:   p.Status,
	})
	return mux, db
}

func calgaryRam(id string) domain.Listing {
	return domain.Listing{
		Source:     "yarda",
		ExternalID: id,
		Title:      "Dodge Ram",
		Year:       2001,
		Make:       "Dodge",
		Model:      "Ram",
		Location:   "Calgary",
		URL:        "https://yard.example/stock/" + id,
	}
}

func TestHealthz_OK(t *testing.T) {
	mux, _ := newTestMux(t, &stubSource{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
}

func TestRun_ReturnsReportAndStoresListings(t *testing.T) {
	mux, _ := newTestMux(t, &stubSource{listings: []domain.Listing{calgaryRam("1")}})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/run", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var rep poll.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	assert.Equal(t, poll.TriggerManual, rep.Trigger)
	assert.Equal(t, 1, rep.TotalNew)
	require.Len(t, rep.Sources, 1)
	assert.Equal(t, "yarda", rep.Sources[0].Source)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/listings", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var rows []store.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "yarda:1", rows[0].Key)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var st poll.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	require.NotNil(t, st.LastReport)
	assert.Equal(t, int64(1), st.TrackedListings)
	assert.False(t, st.Running)
}

func TestRun_GetNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t, &stubSource{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/run", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRun_ConflictWhileCycleRunning(t *testing.T) {
	src := &stubSource{block: make(chan struct{}), started: make(chan struct{}, 1)}
	mux, _ := newTestMux(t, src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/run", nil))
	}()
	<-src.started

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)

	var e APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "cycle_running", e.Error.Code)

	close(src.block)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("blocked cycle never finished")
	}
}

func TestListings_LimitHonored(t *testing.T) {
	mux, db := newTestMux(t, &stubSource{})
	for _, id := range []string{"1", "2", "3"} {
		_, err := db.Record(context.Background(), calgaryRam(id), time.Now())
		require.NoError(t, err)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/listings?limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var rows []store.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}

func TestCheckpoint_LocalhostOnly(t *testing.T) {
	mux, _ := newTestMux(t, &stubSource{})

	req := httptest.NewRequest(http.MethodPost, "/db/checkpoint", nil) // 192.0.2.1 by default
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/db/checkpoint", nil)
	req.RemoteAddr = "127.0.0.1:52011"
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestServeSSE_SendsPingEnvelope(t *testing.T) {
	mux, _ := newTestMux(t, &stubSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // handler writes the ping, then exits on the dead context
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"type":"ping"`)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}), RequestID)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "caller-supplied", seen)
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID, Recover(zerolog.Nop()))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
}

func TestAccessLog_KeepsFlusher(t *testing.T) {
	var flushable bool
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, flushable = w.(http.Flusher)
	}), AccessLog(zerolog.Nop()))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.True(t, flushable, "the SSE handler needs Flush through the wrapper")
}
