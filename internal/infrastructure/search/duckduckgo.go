package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
)

const duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider scrapes the DuckDuckGo HTML endpoint. It needs no API
// key, which makes it the fallback when no Tavily key is configured.
type DuckDuckGoProvider struct {
	endpoint   string
	maxResults int
	httpClient *http.Client
}

var _ ports.SearchProvider = (*DuckDuckGoProvider)(nil)

// NewDuckDuckGoProvider wires an HTTP client; maxResults defaults to 3.
func NewDuckDuckGoProvider(maxResults int) *DuckDuckGoProvider {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &DuckDuckGoProvider{
		endpoint:   duckDuckGoEndpoint,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Name identifies the provider inside the registry.
func (p *DuckDuckGoProvider) Name() string {
	return "duckduckgo"
}

// Search fetches the result page and extracts the top entries.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	pageURL := p.endpoint + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentPilot/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return p.extractResults(doc), nil
}

func (p *DuckDuckGoProvider) extractResults(doc *goquery.Document) []domain.SearchResult {
	var results []domain.SearchResult

	doc.Find("div.result").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())

		if title == "" || href == "" {
			return true
		}

		results = append(results, domain.SearchResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: snippet,
		})

		return len(results) < p.maxResults
	})

	return results
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
