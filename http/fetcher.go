// Package http provides an HTTP implementation of autofinder.Fetcher for
// retrieving dealer inventory pages.
package http

import (
	"io"
	"net/http"
	"time"

	"context"

	"github.com/fwojciec/autofinder"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 20 * time.Second

// maxBodyBytes caps how much of a page is read. Inventory pages are large
// but anything past this is media payload, not listings.
const maxBodyBytes = 4 << 20

// userAgent identifies the crawler to dealer sites.
const userAgent = "autofinder/1.0 (+https://github.com/fwojciec/autofinder)"

// Ensure Fetcher implements autofinder.Fetcher at compile time.
var _ autofinder.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// It does not execute JavaScript; dealer platforms that render listings
// server-side are the recall target.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content at the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", autofinder.Errorf(autofinder.EUNAVAILABLE, "fetch %s: %s", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", autofinder.Errorf(autofinder.EUNAVAILABLE, "fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", autofinder.Errorf(autofinder.EUNAVAILABLE, "fetch %s: %s", url, err)
	}

	return string(body), nil
}

// Close releases resources. The shared http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
