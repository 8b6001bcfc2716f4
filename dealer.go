package autofinder

import (
	"context"
	"net/url"
	"strings"
)

// DealerCandidate is a discovered dealership website believed to sell
// vehicles of interest. Candidates are keyed by normalized domain.
type DealerCandidate struct {
	Domain         string  `json:"domain"`
	DisplayName    string  `json:"display_name,omitempty"`
	DiscoveryQuery string  `json:"discovery_query"`
	Confidence     float64 `json:"confidence"`
}

// NormalizeDomain reduces a URL or host string to its canonical domain:
// lowercase, no scheme, no "www." prefix, no port, no path.
// Example: "https://www.Hondaofoakland.com/inventory/" → "hondaofoakland.com".
func NormalizeDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", Errorf(EINVALID, "empty domain")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", Errorf(EINVALID, "invalid domain %q", raw)
		}
		s = u.Host
	} else if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, ".")

	if s == "" || !strings.Contains(s, ".") {
		return "", Errorf(EINVALID, "invalid domain %q", raw)
	}
	return s, nil
}

// DealerDiscoverer produces candidate dealership domains for a config.
// A total collaborator failure yields an empty set with all units counted
// as skipped, not an error; the orchestrator decides how to react.
type DealerDiscoverer interface {
	Discover(ctx context.Context, cfg Config) ([]DealerCandidate, StageStats, error)
}
