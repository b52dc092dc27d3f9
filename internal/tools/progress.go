package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
)

// checkProgressImpl renders the run state for the model: the model has no
// other way to see cumulative progress across a long tool-calling
// conversation.
func checkProgressImpl(deps Deps) string {
	state := deps.State

	if !state.Analysis.Complete {
		return jsonResult(map[string]any{
			"success":     true,
			"report":      "Analysis has not run yet. Nothing is tracked.",
			"next_action": nextAction(state),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Requested: %d blogs, %d articles, %d resources.\n",
		state.Requested(orchestrator.KindBlog),
		state.Requested(orchestrator.KindArticle),
		state.Requested(orchestrator.KindResource))

	for _, kind := range orchestrator.Kinds {
		items := state.Items[kind]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%ss (%d saved of %d requested):\n", kind, state.SavedCount(kind), state.Requested(kind))
		for _, it := range items {
			line := fmt.Sprintf("- %q: %s", it.Title, it.Status)
			if it.Saved {
				line += fmt.Sprintf(" (id %d, slug %s)", it.DBID, it.Slug)
			}
			if it.NeedsMoreContent {
				line += fmt.Sprintf(" [awaiting more content, %d parts so far]", it.ContentParts)
			}
			if it.Error != "" {
				line += " [error: " + it.Error + "]"
			}
			b.WriteString(line + "\n")
		}
	}

	if len(state.Research) > 0 {
		fmt.Fprintf(&b, "\nResearch performed: %d queries, %.2f credits used.\n", len(state.Research), state.CreditsUsed)
	}
	if len(state.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors so far: %d.\n", len(state.Errors))
	}

	res := map[string]any{
		"success":    true,
		"report":     b.String(),
		"iterations": len(state.IterationHistory),
	}
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

// NewCheckProgressTool creates the check_progress tool.
func NewCheckProgressTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name:        "check_progress",
		Description: `Report the current run state: what was requested, what has been saved, what is still outstanding, and which blogs are awaiting appended content. Call this whenever you are unsure what remains to be done.`,
		SchemaJSON:  `{"type":"object","properties":{},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return checkProgressImpl(deps), nil
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "meta",
			Tags:     []string{"read-only", "idempotent"},
		},
	}
}
