// Package sources simulates web search for the demo deployment. A production
// deployment would swap this for a real search API behind the same contract.
package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/openscout/scout/internal/model/search"
)

// DefaultMaxResults is the source cap used when the caller does not care.
const DefaultMaxResults = 6

// Provider generates deterministic, templated sources keyed on substring
// matches in the query. It never fails: an empty result means "no sources
// found", which callers must treat as a valid outcome.
type Provider struct {
	now func() time.Time
}

// NewProvider builds the simulated provider.
func NewProvider() *Provider {
	return &Provider{now: time.Now}
}

// Search returns up to maxResults sources for the query. IDs are assigned
// densely starting at 1 in emission order.
func (p *Provider) Search(_ context.Context, query string, maxResults int) search.SearchResult {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	q := strings.ToLower(query)
	var out []search.Source

	if strings.Contains(q, "news") || strings.Contains(q, "latest") || strings.Contains(q, "recent") {
		out = append(out,
			search.Source{
				Title:         fmt.Sprintf("Latest News: %s - Breaking Updates", query),
				URL:           "https://example-news.com/article/latest-updates",
				Snippet:       fmt.Sprintf("Recent developments in %s show significant progress. Key findings include new insights and important implications for the field.", query),
				Domain:        "example-news.com",
				PublishedDate: p.daysAgo(0),
				Favicon:       Favicon("news"),
			},
			search.Source{
				Title:         fmt.Sprintf("%s - Comprehensive Analysis and Trends", query),
				URL:           "https://research-institute.org/analysis",
				Snippet:       fmt.Sprintf("A detailed analysis of %s reveals important trends and patterns. Experts weigh in on the current state and future prospects.", query),
				Domain:        "research-institute.org",
				PublishedDate: p.daysAgo(1),
				Favicon:       Favicon("research"),
			},
		)
	}

	if strings.Contains(q, "how to") || strings.Contains(q, "tutorial") || strings.Contains(q, "guide") {
		out = append(out, search.Source{
			Title:         fmt.Sprintf("Complete Guide: %s - Step by Step", query),
			URL:           "https://tutorial-hub.com/guides/complete-guide",
			Snippet:       fmt.Sprintf("Learn everything about %s with our comprehensive guide. Includes practical tips, examples, and best practices.", query),
			Domain:        "tutorial-hub.com",
			PublishedDate: p.daysAgo(2),
			Favicon:       Favicon("tutorial-hub"),
		})
	}

	if strings.Contains(q, "what is") || strings.Contains(q, "definition") || strings.Contains(q, "explain") {
		out = append(out, search.Source{
			Title:         fmt.Sprintf("Understanding %s: Definition and Key Concepts", query),
			URL:           "https://knowledge-base.org/definitions",
			Snippet:       fmt.Sprintf("%s is defined as a comprehensive topic with multiple aspects. This article explores the fundamental concepts and applications.", query),
			Domain:        "knowledge-base.org",
			PublishedDate: p.daysAgo(3),
			Favicon:       Favicon("knowledge-base"),
		})
	}

	out = append(out,
		search.Source{
			Title:         fmt.Sprintf("%s - Expert Insights and Opinions", query),
			URL:           "https://expert-network.com/insights",
			Snippet:       fmt.Sprintf("Industry experts share their perspectives on %s. Discover professional opinions and evidence-based recommendations.", query),
			Domain:        "expert-network.com",
			PublishedDate: p.daysAgo(4),
			Favicon:       Favicon("expert-network"),
		},
		search.Source{
			Title:         fmt.Sprintf("%s: Facts, Statistics, and Data", query),
			URL:           "https://data-center.org/statistics",
			Snippet:       fmt.Sprintf("Comprehensive data and statistics related to %s. Including charts, trends, and statistical analysis from reliable sources.", query),
			Domain:        "data-center.org",
			PublishedDate: p.daysAgo(5),
			Favicon:       Favicon("data-center"),
		},
	)

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	for i := range out {
		out[i].ID = i + 1
	}

	return search.SearchResult{Sources: out, TotalResults: len(out)}
}

func (p *Provider) daysAgo(n int) string {
	return p.now().UTC().AddDate(0, 0, -n).Format("2006-01-02")
}

// PageContent is the simulated scrape of a single page.
type PageContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Snippet string `json:"snippet"`
}

// FetchPageContent simulates scraping a page. Bad URLs degrade to an
// unavailable-content record rather than an error.
func (p *Provider) FetchPageContent(_ context.Context, rawURL string) PageContent {
	host := hostname(rawURL)
	if host == "" {
		return PageContent{
			Title:   "Content unavailable",
			Snippet: "Unable to fetch content from this source.",
		}
	}

	return PageContent{
		Title:   "Content from " + host,
		Content: "Full page content would be extracted here using web scraping.",
		Snippet: "A brief excerpt from the page content summarizing the main points.",
	}
}

// ExtractDomain returns the hostname of rawURL, or a stable placeholder when
// the URL does not parse.
func ExtractDomain(rawURL string) string {
	host := hostname(rawURL)
	if host == "" {
		return "unknown-domain.com"
	}
	return host
}

// Favicon returns a placeholder icon URL derived from the domain's first
// letter.
func Favicon(domain string) string {
	runes := []rune(domain)
	if len(runes) == 0 {
		return ""
	}
	return "https://placehold.co/16x16?text=" + strings.ToUpper(string(runes[0]))
}

// ValidateURL reports whether rawURL parses as an absolute URL.
func ValidateURL(rawURL string) bool {
	return hostname(rawURL) != ""
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
