// Package httputil provides HTTP helpers for outbound fetches.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests override it.
var RetryBaseDelay = 2 * time.Second

const (
	defaultMaxRetries = 3
	defaultMaxWait    = 30 * time.Second
)

// Retrier sends requests and retries the ones answered with HTTP 429.
// A Retry-After header given in seconds replaces the exponential backoff.
// Waits never exceed MaxWait.
type Retrier struct {
	Client *http.Client
	// MaxRetries of 0 means the default of 3.
	MaxRetries int
	// MaxWait of 0 means 30s.
	MaxWait time.Duration
	Log     *slog.Logger
}

// NewRetrier returns a Retrier over client. A nil log discards output.
func NewRetrier(client *http.Client, maxRetries int, log *slog.Logger) *Retrier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Retrier{Client: client, MaxRetries: maxRetries, Log: log}
}

// Do executes req. If ctx is cancelled during a wait, ctx.Err() is returned.
// After the last retry the 429 response is returned to the caller.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := r.Client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		wait := r.backoff(attempt, resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		r.logger().Warn("rate limited, retrying",
			"url", req.URL.Redacted(),
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"wait_ms", wait.Milliseconds(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *Retrier) backoff(attempt int, retryAfter string) time.Duration {
	wait := RetryBaseDelay << attempt
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		wait = time.Duration(secs) * time.Second
	}
	maxWait := r.MaxWait
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	return min(wait, maxWait)
}

func (r *Retrier) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}
