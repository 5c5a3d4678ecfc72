package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
)

// TavilyProvider implements ports.SearchProvider against the Tavily REST API.
type TavilyProvider struct {
	endpoint   string
	apiKey     string
	maxResults int
	depth      string
	httpClient *http.Client
}

var _ ports.SearchProvider = (*TavilyProvider)(nil)

// NewTavilyProvider builds a provider from configuration.
func NewTavilyProvider(cfg config.SearchConfig) *TavilyProvider {
	return &TavilyProvider{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		depth:      cfg.Depth,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Name identifies the provider inside the registry.
func (p *TavilyProvider) Name() string {
	return "tavily"
}

// Search posts the query and decodes the result list.
func (p *TavilyProvider) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if p.apiKey == "" || p.endpoint == "" {
		return nil, fmt.Errorf("tavily provider misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"api_key":      p.apiKey,
		"query":        query,
		"max_results":  p.maxResults,
		"search_depth": p.depth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tavily error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}

	return results, nil
}
