package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/engine"
)

// storedTextPreview bounds how much raw text one retrieval returns to the
// model.
const storedTextPreview = 8000

// getStoredResearchImpl retrieves material fetched earlier in the run. With
// a query it runs a full-text search over the index; without one it lists
// the research log so the model can see what exists.
func getStoredResearchImpl(deps Deps, query, source string, limit int) string {
	state := deps.State

	if query == "" {
		entries := make([]map[string]any, 0, len(state.Research))
		for _, e := range state.Research {
			entries = append(entries, map[string]any{
				"research_id":  e.ID,
				"query":        e.Query,
				"type":         e.Type,
				"result_count": e.ResultCount,
			})
		}
		return jsonResult(map[string]any{
			"success":         true,
			"research":        entries,
			"extracted_urls":  extractedURLs(deps),
			"crawled_pages":   len(state.Crawled),
			"hint":            "Pass a query to search the stored material by topic.",
		})
	}

	if deps.Index == nil {
		return failure("no research index available for this run")
	}

	hits, err := deps.Index.Search(query, source, limit)
	if err != nil {
		return failure(fmt.Sprintf("stored research search failed: %v", err))
	}

	out := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		entry := map[string]any{
			"research_id": h.ResearchID,
			"source":      h.Source,
			"url":         h.URL,
			"title":       h.Title,
			"score":       h.Score,
		}
		if text := lookupStoredText(deps, h.URL); text != "" {
			if len(text) > storedTextPreview {
				text = text[:storedTextPreview] + "..."
			}
			entry["text"] = text
		}
		out = append(out, entry)
	}

	return jsonResult(map[string]any{
		"success": true,
		"query":   query,
		"hits":    out,
	})
}

func extractedURLs(deps Deps) []string {
	urls := make([]string, 0, len(deps.State.Extracted))
	for _, e := range deps.State.Extracted {
		urls = append(urls, e.URL)
	}
	return urls
}

// lookupStoredText resolves a hit's URL back to the cached full text held
// in state, preferring extractions over crawled pages.
func lookupStoredText(deps Deps, url string) string {
	for _, e := range deps.State.Extracted {
		if e.URL == url {
			return e.RawText
		}
	}
	for _, p := range deps.State.Crawled {
		if p.URL == url {
			return p.Content
		}
	}
	return ""
}

// NewGetStoredResearchTool creates the get_stored_research tool.
func NewGetStoredResearchTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "get_stored_research",
		Description: `Retrieve research material fetched earlier in this run without re-fetching. Call with no query to list what exists; call with a query to search stored search results, extracted pages and crawled pages by topic. Optionally filter by source ("search", "extract" or "crawl").`,
		SchemaJSON: `{"type":"object","properties":{"query":{"type":"string","description":"Topic to search the stored material for"},"source":{"type":"string","enum":["search","extract","crawl"],"description":"Restrict results to one source type"},"limit":{"type":"integer","description":"Maximum hits to return (default 5)"}},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return getStoredResearchImpl(deps,
				argString(args, "query"),
				argString(args, "source"),
				argInt(args, "limit")), nil
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "research",
			Tags:     []string{"read-only", "idempotent"},
		},
	}
}
