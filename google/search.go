// Package google provides a Google Custom Search JSON API implementation
// of autofinder.Searcher.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/autofinder"
)

// DefaultBaseURL is the Custom Search JSON API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// DefaultMaxResults is the result count requested when the caller does not
// specify one. The API caps a single request at 10.
const DefaultMaxResults = 10

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 15 * time.Second

// Ensure Searcher implements autofinder.Searcher at compile time.
var _ autofinder.Searcher = (*Searcher)(nil)

// Searcher queries the Google Custom Search JSON API.
type Searcher struct {
	client   *http.Client
	apiKey   string
	engineID string
	baseURL  string
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) { s.client = c }
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(s *Searcher) { s.baseURL = u }
}

// NewSearcher creates a Searcher authenticated with the given API key and
// search engine ID.
func NewSearcher(apiKey, engineID string, opts ...Option) *Searcher {
	s := &Searcher{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: DefaultTimeout}
	}
	return s
}

// searchResponse mirrors the subset of the API response we consume.
type searchResponse struct {
	Items []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search executes a single query and returns ordered results.
func (s *Searcher) Search(ctx context.Context, req autofinder.SearchRequest) ([]autofinder.SearchResult, error) {
	if req.Query == "" {
		return nil, autofinder.Errorf(autofinder.EINVALID, "search query required")
	}

	max := req.MaxResults
	if max <= 0 || max > DefaultMaxResults {
		max = DefaultMaxResults
	}

	q := url.Values{}
	q.Set("key", s.apiKey)
	q.Set("cx", s.engineID)
	q.Set("q", req.Query)
	q.Set("num", strconv.Itoa(max))
	if req.SiteRestrict != "" {
		q.Set("siteSearch", req.SiteRestrict)
		q.Set("siteSearchFilter", "i")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "search request failed: %s", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "search response read failed: %s", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decoding
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "search quota exhausted (HTTP %d)", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "search service error (HTTP %d)", resp.StatusCode)
	default:
		return nil, autofinder.Errorf(autofinder.EINTERNAL, "unexpected search response (HTTP %d)", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "malformed search response: %s", err)
	}

	results := make([]autofinder.SearchResult, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, autofinder.SearchResult{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// String describes the searcher for logging.
func (s *Searcher) String() string {
	return fmt.Sprintf("google.Searcher(cx=%s)", s.engineID)
}
