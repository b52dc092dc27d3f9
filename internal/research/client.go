// Package research wraps the external web-research capabilities: topic
// search, single-URL extraction and bounded crawling, plus an in-memory
// full-text index over everything fetched during a run.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SearchResult is one hit from the search capability.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Page is one crawled page.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SearchOptions tune a search call.
type SearchOptions struct {
	IncludeGitHub bool
	MaxResults    int
}

// CrawlOptions bound a crawl.
type CrawlOptions struct {
	MaxPages int
}

// Searcher runs topical web searches. Credits are the provider's own cost
// accounting, surfaced so the run can report a total.
type Searcher interface {
	Search(ctx context.Context, topic string, opts SearchOptions) ([]SearchResult, float64, error)
}

// Extractor pulls raw text from a single URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, float64, error)
}

// Crawler fetches a bounded set of pages under a base URL.
type Crawler interface {
	Crawl(ctx context.Context, baseURL string, opts CrawlOptions) ([]Page, float64, error)
}

// Client talks to the hosted research API. It implements Searcher,
// Extractor and Crawler.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a research client. An empty baseURL or apiKey is allowed
// here; calls will fail with a clear error instead.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Search(ctx context.Context, topic string, opts SearchOptions) ([]SearchResult, float64, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	var out struct {
		Results []SearchResult `json:"results"`
		Credits float64        `json:"credits"`
	}
	err := c.post(ctx, "/search", map[string]any{
		"query":          topic,
		"max_results":    maxResults,
		"include_github": opts.IncludeGitHub,
	}, &out)
	if err != nil {
		return nil, 0, err
	}
	return out.Results, out.Credits, nil
}

func (c *Client) Extract(ctx context.Context, url string) (string, float64, error) {
	var out struct {
		RawContent string  `json:"raw_content"`
		Credits    float64 `json:"credits"`
	}
	err := c.post(ctx, "/extract", map[string]any{"url": url}, &out)
	if err != nil {
		return "", 0, err
	}
	return out.RawContent, out.Credits, nil
}

func (c *Client) Crawl(ctx context.Context, baseURL string, opts CrawlOptions) ([]Page, float64, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	var out struct {
		Pages   []Page  `json:"pages"`
		Credits float64 `json:"credits"`
	}
	err := c.post(ctx, "/crawl", map[string]any{
		"url":       baseURL,
		"max_pages": maxPages,
	}, &out)
	if err != nil {
		return nil, 0, err
	}
	return out.Pages, out.Credits, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if c.baseURL == "" || c.apiKey == "" {
		return fmt.Errorf("research client not configured (missing base URL or API key)")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("research API returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
