// Package discover resolves the entry URLs of national medicine registers
// from the EMA overview page.
package discover

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/pharmaseek/pharmaseek/internal/logger"
)

// EMARegistersURL lists the national registers of authorised medicines.
const EMARegistersURL = "https://www.ema.europa.eu/en/medicines/national-registers-authorised-medicines"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// CountryRegisters fetches the EMA overview page and returns register
// entry URLs keyed by lower-case country name, for the countries this tool
// knows how to scrape.
func CountryRegisters(ctx context.Context) (map[string]string, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(30 * time.Second)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(EMARegistersURL); err != nil {
		return nil, fmt.Errorf("failed to fetch EMA register list: %w", err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch EMA register list: %w", fetchErr)
	}

	links, err := ParseRegisterLinks(string(body), EMARegistersURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("EMA registers resolved", "count", len(links))
	return links, nil
}

// ParseRegisterLinks extracts known country register links from the EMA
// overview markup.
func ParseRegisterLinks(html, baseURL string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EMA register list: %w", err)
	}

	base, _ := url.Parse(baseURL)
	links := make(map[string]string)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		hrefLower := strings.ToLower(href)

		resolved := resolve(base, href)
		if resolved == "" {
			return
		}

		if _, seen := links["italy"]; !seen {
			if strings.Contains(text, "italy") || strings.Contains(hrefLower, "aifa") ||
				strings.Contains(hrefLower, "medicinali.aifa.gov.it") {
				links["italy"] = resolved
			}
		}
		if _, seen := links["poland"]; !seen {
			if strings.Contains(text, "poland") || strings.Contains(text, "polska") ||
				strings.Contains(hrefLower, "rejestry.ezdrowie.gov.pl") {
				links["poland"] = resolved
			}
		}
	})

	return links, nil
}

func resolve(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
