package autofinder

import (
	"context"
	"net/url"
	"strings"
)

// InventoryPageCandidate is a URL believed to list vehicles for sale at a
// given dealer. Candidates are keyed by normalized URL.
type InventoryPageCandidate struct {
	URL            string `json:"url"`
	DealerDomain   string `json:"dealer_domain"`
	MakeHint       string `json:"make_hint,omitempty"`
	DiscoveryQuery string `json:"discovery_query"`
}

// NormalizeURL canonicalizes a URL for deduplication: lowercase scheme and
// host, fragment removed, default port stripped, trailing slash trimmed.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EINVALID, "unsupported URL %q", raw)
	}
	if u.Host == "" {
		return "", Errorf(EINVALID, "invalid URL %q", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// inventoryPathTokens are path fragments that suggest a listing page.
var inventoryPathTokens = []string{
	"inventory",
	"used",
	"pre-owned",
	"preowned",
	"certified",
	"vehicles",
	"cars-for-sale",
}

// LooksLikeInventoryURL reports whether a URL plausibly points at a vehicle
// listing page, based on path heuristics and the configured make tokens.
func LooksLikeInventoryURL(rawURL string, makes []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path + "?" + u.RawQuery)

	for _, token := range inventoryPathTokens {
		if strings.Contains(path, token) {
			return true
		}
	}
	for _, make := range makes {
		if m := strings.ToLower(make); m != "" && strings.Contains(path, m) {
			return true
		}
	}
	return false
}

// PageFinder produces candidate inventory-listing URLs for a dealer set.
type PageFinder interface {
	FindPages(ctx context.Context, dealers []DealerCandidate, cfg Config) ([]InventoryPageCandidate, StageStats, error)
}

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the page content at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any underlying resources.
	Close() error
}

// LinkHarvester extracts outbound link URLs from a fetched page.
// The baseURL is used to resolve relative references.
type LinkHarvester interface {
	HarvestLinks(html string, baseURL string) ([]string, error)
}
