package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() ClientConfig {
	return ClientConfig{
		Timeout:        2 * time.Second,
		RequestsPerSec: 1000, // no pacing in tests
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestClientGet_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("inventory"))
	}))
	defer srv.Close()

	c := NewClient(testClient())
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "inventory", string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testClient())
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientGet_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	cfg := testClient()
	cfg.UserAgent = "yardwatch-test/9"
	c := NewClient(cfg)
	_, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "yardwatch-test/9", gotUA)
}

func TestClientGet_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testClient()
	cfg.RetryDelay = time.Minute // cancellation must cut the backoff short
	c := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Get(ctx, srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWrapSource(t *testing.T) {
	assert.NoError(t, WrapSource("picknpull", nil))

	cause := errors.New("boom")
	err := WrapSource("picknpull", cause)
	require.Error(t, err)

	var se *SourceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "picknpull", se.Source)
	assert.ErrorIs(t, err, cause)
}
