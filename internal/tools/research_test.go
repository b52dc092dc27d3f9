package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/quillworks/quill/internal/research"
)

type stubSearcher struct {
	results []research.SearchResult
	credits float64
	err     error
}

func (s stubSearcher) Search(ctx context.Context, topic string, opts research.SearchOptions) ([]research.SearchResult, float64, error) {
	return s.results, s.credits, s.err
}

type stubExtractor struct {
	text    string
	credits float64
	err     error
}

func (s stubExtractor) Extract(ctx context.Context, url string) (string, float64, error) {
	return s.text, s.credits, s.err
}

type stubCrawler struct {
	pages   []research.Page
	credits float64
	err     error
}

func (s stubCrawler) Crawl(ctx context.Context, baseURL string, opts research.CrawlOptions) ([]research.Page, float64, error) {
	return s.pages, s.credits, s.err
}

func researchDeps(t *testing.T) Deps {
	t.Helper()
	deps := setupDeps(t)

	idx, err := research.NewIndex()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	deps.Index = idx

	deps.Search = stubSearcher{
		results: []research.SearchResult{
			{Title: "Concurrency Patterns", URL: "https://example.com/conc", Snippet: "Worker pools and pipelines in Go.", Score: 0.9},
			{Title: "Channel Basics", URL: "https://example.com/chan", Snippet: "Buffered versus unbuffered channels.", Score: 0.7},
		},
		credits: 1.5,
	}
	deps.Extract = stubExtractor{text: "Full text about worker pools and graceful shutdown.", credits: 0.5}
	deps.Crawl = stubCrawler{pages: []research.Page{
		{URL: "https://example.com/docs/1", Title: "Docs Page", Content: "Documentation about channels."},
	}, credits: 2.0}

	return deps
}

func TestResearchRecordsAndIndexes(t *testing.T) {
	deps := researchDeps(t)
	analyze(t, deps, 1, 0, 0)

	res := callTool(t, deps, "research", map[string]any{
		"topic":      "go concurrency",
		"extractUrl": "https://example.com/conc",
	})
	if res["success"] != true {
		t.Fatalf("research failed: %v", res)
	}
	if res["research_id"] == nil {
		t.Error("Expected a research_id on the result")
	}
	if res["extracted_chars"] == nil {
		t.Errorf("Expected extraction stats, got %v", res)
	}

	state := deps.State
	if len(state.Research) != 1 {
		t.Fatalf("Expected 1 research entry, got %d", len(state.Research))
	}
	if state.Research[0].ResultCount != 2 {
		t.Errorf("Expected 2 recorded results, got %d", state.Research[0].ResultCount)
	}
	if len(state.Extracted) != 1 {
		t.Errorf("Expected 1 extracted entry, got %d", len(state.Extracted))
	}
	if state.CreditsUsed != 2.0 {
		t.Errorf("Expected 1.5 search + 0.5 extract credits, got %v", state.CreditsUsed)
	}

	count, err := deps.Index.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 2 search docs and 1 extract doc in the index, got %d", count)
	}
}

func TestResearchPartialExtractFailure(t *testing.T) {
	deps := researchDeps(t)
	deps.Extract = stubExtractor{err: errors.New("fetch blocked")}
	analyze(t, deps, 1, 0, 0)

	res := callTool(t, deps, "research", map[string]any{
		"topic":      "go concurrency",
		"extractUrl": "https://example.com/conc",
	})
	// Search landed, so the call as a whole succeeds with the extract error
	// reported alongside.
	if res["success"] != true {
		t.Fatalf("Expected partial success, got %v", res)
	}
	if res["extract_error"] == nil {
		t.Errorf("Expected extract_error on the result, got %v", res)
	}
	if len(deps.State.Extracted) != 0 {
		t.Error("Failed extraction must not be cached")
	}
}

func TestResearchSearchFailure(t *testing.T) {
	deps := researchDeps(t)
	deps.Search = stubSearcher{err: errors.New("search api down")}
	analyze(t, deps, 1, 0, 0)

	res := callTool(t, deps, "research", map[string]any{"topic": "anything"})
	if res["success"] != false {
		t.Fatalf("Expected failure when search fails, got %v", res)
	}
	if len(deps.State.Research) != 0 {
		t.Error("Failed search must not be recorded")
	}
}

func TestGetStoredResearch(t *testing.T) {
	deps := researchDeps(t)
	analyze(t, deps, 1, 0, 0)

	res := callTool(t, deps, "research", map[string]any{
		"topic":      "go concurrency",
		"extractUrl": "https://example.com/conc",
		"crawlUrl":   "https://example.com/docs",
	})
	if res["success"] != true {
		t.Fatalf("research failed: %v", res)
	}

	// No query: list what exists.
	res = callTool(t, deps, "get_stored_research", map[string]any{})
	if res["success"] != true {
		t.Fatalf("listing failed: %v", res)
	}
	if entries := res["research"].([]any); len(entries) != 1 {
		t.Errorf("Expected 1 research entry listed, got %d", len(entries))
	}
	if urls := res["extracted_urls"].([]any); len(urls) != 1 {
		t.Errorf("Expected 1 extracted url listed, got %v", res["extracted_urls"])
	}

	// Topical query over the index, resolving cached full text.
	res = callTool(t, deps, "get_stored_research", map[string]any{"query": "worker pools"})
	if res["success"] != true {
		t.Fatalf("query failed: %v", res)
	}
	hits := res["hits"].([]any)
	if len(hits) == 0 {
		t.Fatal("Expected hits for indexed material")
	}
	foundText := false
	for _, h := range hits {
		hit := h.(map[string]any)
		if text, ok := hit["text"].(string); ok && text != "" {
			foundText = true
		}
	}
	if !foundText {
		t.Error("Expected at least one hit resolved to cached full text")
	}

	// Source filter narrows to crawled pages only.
	res = callTool(t, deps, "get_stored_research", map[string]any{
		"query":  "channels documentation",
		"source": "crawl",
	})
	if res["success"] != true {
		t.Fatalf("filtered query failed: %v", res)
	}
	for _, h := range res["hits"].([]any) {
		hit := h.(map[string]any)
		if hit["source"] != "crawl" {
			t.Errorf("Expected only crawl hits, got source %v", hit["source"])
		}
	}
}
