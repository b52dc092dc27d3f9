package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/engine"
)

// listBlogsImpl returns the author's existing blogs so the model can avoid
// duplicate titles and reference prior work.
func listBlogsImpl(ctx context.Context, deps Deps, limit int) string {
	blogs, err := deps.Store.ListBlogsByAuthor(ctx, deps.State.AuthorID, limit)
	if err != nil {
		return failure(fmt.Sprintf("failed to list blogs: %v", err))
	}

	summaries := make([]map[string]any, 0, len(blogs))
	for _, b := range blogs {
		summaries = append(summaries, map[string]any{
			"blog_id": b.ID,
			"title":   b.Title,
			"slug":    b.Slug,
			"status":  b.Status,
			"tags":    b.Tags,
		})
	}

	return jsonResult(map[string]any{
		"success": true,
		"count":   len(summaries),
		"blogs":   summaries,
	})
}

// NewListBlogsTool creates the list_blogs tool.
func NewListBlogsTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name:        "list_blogs",
		Description: `List the author's existing blogs (newest first). Check this before choosing titles: saving a title that already exists for this author is rejected as a duplicate.`,
		SchemaJSON:  `{"type":"object","properties":{"limit":{"type":"integer","description":"Maximum number of blogs to return (default 50)"}},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return listBlogsImpl(ctx, deps, argInt(args, "limit")), nil
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "persistence",
			Tags:     []string{"read-only", "idempotent"},
		},
	}
}
