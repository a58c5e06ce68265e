package traverse

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// findDocumentLink locates the leaflet/label document within scope: first
// by known link-text variants, then by any anchor whose href has a .pdf
// extension. Returns an absolute URL or "".
func findDocumentLink(scope *goquery.Selection, linkTexts []string, baseURL string) string {
	var found string

	scope.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text == "" {
			return true
		}
		for _, want := range linkTexts {
			if strings.Contains(text, strings.ToLower(want)) {
				if href := resolveHref(s, baseURL); href != "" {
					found = href
					return false
				}
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	// Generic extension fallback.
	scope.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.Contains(strings.ToLower(href), ".pdf") {
			if abs := resolveHref(s, baseURL); abs != "" {
				found = abs
				return false
			}
		}
		return true
	})
	return found
}

// resolveHref returns the anchor's href resolved against baseURL, skipping
// fragment-only and javascript links.
func resolveHref(s *goquery.Selection, baseURL string) string {
	href, exists := s.Attr("href")
	if !exists || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	linkURL, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if linkURL.IsAbs() {
		return linkURL.String()
	}

	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return ""
	}
	return base.ResolveReference(linkURL).String()
}
