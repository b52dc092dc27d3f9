package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/research"
)

// researchImpl runs one research pass: a topical search, optionally a
// single-URL extraction, optionally a bounded crawl. Everything fetched is
// appended to the run's research log and pushed into the full-text index so
// get_stored_research can retrieve it later without re-fetching. Repeated
// identical research is allowed; dedup is left to the model.
func researchImpl(ctx context.Context, deps Deps, topic string, includeGitHub bool, extractURL, crawlURL string, maxCrawlPages int) string {
	state := deps.State
	res := map[string]any{"success": true}

	results, credits, err := deps.Search.Search(ctx, topic, research.SearchOptions{IncludeGitHub: includeGitHub})
	if err != nil {
		return failure(fmt.Sprintf("search failed: %v", err))
	}

	researchID := state.RecordResearch(orchestrator.ResearchEntry{
		Query:       topic,
		Type:        "search",
		ResultCount: len(results),
		Credits:     credits,
	})
	res["research_id"] = researchID
	res["results"] = results
	indexSearchResults(deps.Index, researchID, results)

	if extractURL != "" {
		raw, exCredits, err := deps.Extract.Extract(ctx, extractURL)
		if err != nil {
			// Partial success: the search already landed, report the
			// extraction failure alongside it.
			res["extract_error"] = err.Error()
		} else {
			state.Extracted = append(state.Extracted, orchestrator.ExtractedContent{
				ResearchID: researchID,
				URL:        extractURL,
				RawText:    raw,
			})
			state.CreditsUsed += exCredits
			res["extracted_url"] = extractURL
			res["extracted_chars"] = len(raw)
			indexDoc(deps.Index, research.IndexedDoc{
				ID:         uuid.NewString(),
				ResearchID: researchID,
				Source:     "extract",
				URL:        extractURL,
				Text:       raw,
			})
		}
	}

	if crawlURL != "" {
		pages, crCredits, err := deps.Crawl.Crawl(ctx, crawlURL, research.CrawlOptions{MaxPages: maxCrawlPages})
		if err != nil {
			res["crawl_error"] = err.Error()
		} else {
			for _, p := range pages {
				state.Crawled = append(state.Crawled, orchestrator.CrawledPage{
					ResearchID: researchID,
					URL:        p.URL,
					Title:      p.Title,
					Content:    p.Content,
				})
				indexDoc(deps.Index, research.IndexedDoc{
					ID:         uuid.NewString(),
					ResearchID: researchID,
					Source:     "crawl",
					URL:        p.URL,
					Title:      p.Title,
					Text:       p.Content,
				})
			}
			state.CreditsUsed += crCredits
			res["crawled_pages"] = len(pages)
		}
	}

	res["credits_used_total"] = state.CreditsUsed
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

func indexSearchResults(idx *research.Index, researchID string, results []research.SearchResult) {
	if idx == nil {
		return
	}
	docs := make([]research.IndexedDoc, 0, len(results))
	for _, r := range results {
		docs = append(docs, research.IndexedDoc{
			ID:         uuid.NewString(),
			ResearchID: researchID,
			Source:     "search",
			URL:        r.URL,
			Title:      r.Title,
			Text:       r.Snippet,
		})
	}
	// Index failures only degrade later retrieval; the research itself
	// already succeeded.
	_ = idx.AddBatch(docs)
}

func indexDoc(idx *research.Index, doc research.IndexedDoc) {
	if idx == nil {
		return
	}
	_ = idx.Add(doc)
}

// NewResearchTool creates the research tool.
func NewResearchTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "research",
		Description: `Research a topic on the web before writing. Returns search results; optionally extracts the full text of one URL and/or crawls a site for more pages. Everything fetched is stored for later retrieval with get_stored_research.

Use extractUrl when a search result looks authoritative and you need its full text. Use crawlUrl with maxCrawlPages for documentation sites.`,
		SchemaJSON: `{"type":"object","properties":{"topic":{"type":"string","description":"What to search for"},"includeGitHub":{"type":"boolean","description":"Also search GitHub repositories"},"extractUrl":{"type":"string","description":"Optional URL to extract full text from"},"crawlUrl":{"type":"string","description":"Optional base URL to crawl"},"maxCrawlPages":{"type":"integer","description":"Page limit for the crawl (default 5)"}},"required":["topic"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return researchImpl(ctx, deps,
				argString(args, "topic"),
				argBool(args, "includeGitHub"),
				argString(args, "extractUrl"),
				argString(args, "crawlUrl"),
				argInt(args, "maxCrawlPages")), nil
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "research",
			Tags:     []string{"network", "append-only"},
		},
	}
}
