package tools

import (
	"context"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
)

const maxItemsPerKind = 10
const maxItemsTotal = 10

// analyzeRequestImpl records the request analysis exactly once. Counts are
// clamped to [0,10] per kind and 10 total; the total overflow is trimmed
// from resources first, then articles, then blogs, so the primary content
// kind survives.
func analyzeRequestImpl(state *orchestrator.OrchestrationState, blogs, articles, resources int, reasoning string) string {
	if state.Analysis.Complete {
		return failure("analysis has already been completed for this run; it cannot be changed", map[string]any{
			"requested": state.Analysis.Requested,
		})
	}

	blogs = clampCount(blogs)
	articles = clampCount(articles)
	resources = clampCount(resources)

	for blogs+articles+resources > maxItemsTotal {
		switch {
		case resources > 0:
			resources--
		case articles > 0:
			articles--
		default:
			blogs--
		}
	}

	state.Analysis = orchestrator.Analysis{
		Complete: true,
		Requested: map[orchestrator.ContentKind]int{
			orchestrator.KindBlog:     blogs,
			orchestrator.KindArticle:  articles,
			orchestrator.KindResource: resources,
		},
		Reasoning: reasoning,
	}

	res := map[string]any{
		"success": true,
		"requested": map[string]int{
			"blogs":     blogs,
			"articles":  articles,
			"resources": resources,
		},
	}
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > maxItemsPerKind {
		return maxItemsPerKind
	}
	return n
}

// NewAnalyzeRequestTool creates the analyze_request tool. Calling it is the
// one hard ordering constraint of a run: every save tool refuses to operate
// until analysis is complete.
func NewAnalyzeRequestTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "analyze_request",
		Description: `Analyze the user's request and decide how many blogs, articles and resources to create. Call this FIRST, exactly once per run, before any research or save tool.

Counts are capped at 10 per kind and 10 total. Include your reasoning so the decision is auditable.`,
		SchemaJSON: `{"type":"object","properties":{"blogs":{"type":"integer","description":"Number of blog posts to create (0-10)"},"articles":{"type":"integer","description":"Number of articles to create (0-10)"},"resources":{"type":"integer","description":"Number of resources to create (0-10)"},"reasoning":{"type":"string","description":"Why these counts match the request"}},"required":["blogs","articles","resources","reasoning"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return analyzeRequestImpl(deps.State,
				argInt(args, "blogs"),
				argInt(args, "articles"),
				argInt(args, "resources"),
				argString(args, "reasoning")), nil
		},
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "analysis",
			Tags:     []string{"state", "once-per-run"},
		},
	}
}
