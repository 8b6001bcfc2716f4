// Package goquery implements autofinder.LinkHarvester using goquery.
// The harvester backs the inventory-page finder's fallback path: when
// domain-restricted search returns nothing for a dealer, its landing page
// is fetched and mined for inventory-looking links directly.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/autofinder"
)

// Ensure Harvester implements autofinder.LinkHarvester at compile time.
var _ autofinder.LinkHarvester = (*Harvester)(nil)

// Harvester extracts same-site links from a page.
type Harvester struct{}

// NewHarvester creates a new Harvester.
func NewHarvester() *Harvester {
	return &Harvester{}
}

// HarvestLinks parses HTML and returns absolute, same-host link URLs in
// document order, deduplicated.
func (h *Harvester) HarvestLinks(html string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, autofinder.Errorf(autofinder.EINVALID, "invalid base URL %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !sameSite(base.Host, resolved.Host) {
			return
		}

		normalized, err := autofinder.NormalizeURL(resolved.String())
		if err != nil || seen[normalized] {
			return
		}
		seen[normalized] = true
		links = append(links, normalized)
	})

	return links, nil
}

// sameSite treats www.example.com and example.com as the same host.
func sameSite(a, b string) bool {
	trim := func(h string) string {
		h = strings.ToLower(h)
		if i := strings.IndexByte(h, ':'); i >= 0 {
			h = h[:i]
		}
		return strings.TrimPrefix(h, "www.")
	}
	return trim(a) == trim(b)
}
