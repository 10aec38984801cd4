package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dgallion1/chatmd/internal/httputil"
)

// Fetched is the body and declared content type of a fetched image.
type Fetched struct {
	Data        []byte
	ContentType string
}

// Fetcher retrieves image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Fetched, error)
}

// HTTPFetcher fetches images over HTTP. It never forwards credentials: the
// client has no cookie jar and requests carry no authorization headers.
// There is no per-request timeout; cancel ctx to abandon a fetch.
type HTTPFetcher struct {
	retrier   *httputil.Retrier
	userAgent string
}

// NewHTTPFetcher returns a fetcher that identifies itself with userAgent and
// retries rate-limited requests up to maxRetries times. Backoffs are logged
// to log, which may be nil.
func NewHTTPFetcher(userAgent string, maxRetries int, log *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		retrier:   httputil.NewRetrier(&http.Client{}, maxRetries, log),
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Fetched{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.retrier.Do(ctx, req)
	if err != nil {
		return Fetched{}, fmt.Errorf("get image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Fetched{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fetched{}, fmt.Errorf("read image: %w", err)
	}
	return Fetched{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() {
	f.retrier.Client.CloseIdleConnections()
}
