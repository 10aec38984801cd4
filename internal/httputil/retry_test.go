package httputil

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RetryBaseDelay = time.Millisecond
}

func get(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestRetrier_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	resp, err := NewRetrier(ts.Client(), 3, nil).Do(context.Background(), get(t, ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetrier_RetriesThenSucceedsAndLogs(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	resp, err := NewRetrier(ts.Client(), 3, log).Do(context.Background(), get(t, ts.URL+"/img.png"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, "rate limited, retrying"))
	assert.Contains(t, out, "attempt=1")
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "/img.png")
}

func TestRetrier_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	resp, err := NewRetrier(ts.Client(), 2, nil).Do(context.Background(), get(t, ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	// 1 initial + 2 retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetrier_RetryAfterCappedByMaxWait(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var logs bytes.Buffer
	r := NewRetrier(ts.Client(), 1, slog.New(slog.NewTextHandler(&logs, nil)))
	r.MaxWait = 5 * time.Millisecond

	start := time.Now()
	resp, err := r.Do(context.Background(), get(t, ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, logs.String(), "wait_ms=5")
}

func TestRetrier_Backoff(t *testing.T) {
	r := &Retrier{MaxWait: time.Minute}
	assert.Equal(t, RetryBaseDelay, r.backoff(0, ""))
	assert.Equal(t, 4*RetryBaseDelay, r.backoff(2, ""))
	assert.Equal(t, 7*time.Second, r.backoff(0, "7"))
	assert.Equal(t, 2*RetryBaseDelay, r.backoff(1, "Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, time.Minute, r.backoff(0, "600"))
}

func TestRetrier_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewRetrier(ts.Client(), 3, nil).Do(ctx, get(t, ts.URL))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
