package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/store"
)

// updateBlogImpl applies a partial update to an already-saved blog. This is
// independent of the create-quantity bookkeeping: it never tracks a new
// item and never counts toward the requested totals.
func updateBlogImpl(ctx context.Context, deps Deps, args map[string]any) string {
	blogID := argInt64(args, "blogId")
	if blogID == 0 {
		return failure("blogId is required")
	}

	existing, err := deps.Store.FindBlogByID(ctx, blogID)
	if err != nil {
		return failure(fmt.Sprintf("lookup failed: %v", err))
	}
	if existing == nil {
		return failure(fmt.Sprintf("blog %d does not exist", blogID))
	}

	var upd store.BlogUpdate
	changed := false

	if v := argString(args, "title"); v != "" {
		upd.Title = &v
		changed = true
	}
	if v := argString(args, "excerpt"); v != "" {
		upd.Excerpt = &v
		changed = true
	}
	if v := argString(args, "content"); v != "" {
		upd.Content = &v
		changed = true
	}
	if v := argString(args, "status"); v != "" {
		if v != "draft" && v != "published" && v != "archived" {
			return failure("status must be one of draft, published, archived")
		}
		upd.Status = &v
		changed = true
	}
	if tags := argStrings(args, "tags"); tags != nil {
		upd.Tags = tags
		changed = true
	}
	if v := argString(args, "metaTitle"); v != "" {
		upd.MetaTitle = &v
		changed = true
	}
	if v := argString(args, "metaDescription"); v != "" {
		upd.MetaDescription = &v
		changed = true
	}
	if v := argInt64(args, "resourceId"); v != 0 {
		ok, err := deps.Store.ResourceExists(ctx, v)
		if err != nil {
			return failure(fmt.Sprintf("resource check failed: %v", err))
		}
		if !ok {
			return failure(fmt.Sprintf("resource %d does not exist", v))
		}
		upd.ResourceID = &v
		changed = true
	}

	if !changed {
		return failure("no fields to update were provided")
	}

	blog, err := deps.Store.UpdateBlog(ctx, blogID, upd)
	if err != nil {
		deps.State.RecordError(fmt.Sprintf("update blog %d: %v", blogID, err))
		return failure(fmt.Sprintf("failed to update blog: %v", err))
	}

	return jsonResult(map[string]any{
		"success":       true,
		"blog_id":       blog.ID,
		"title":         blog.Title,
		"slug":          blog.Slug,
		"status":        blog.Status,
		"read_time_min": blog.ReadTimeMin,
	})
}

// NewUpdateBlogTool creates the update_blog tool.
func NewUpdateBlogTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "update_blog",
		Description: `Update fields of an existing blog (title, excerpt, content, status, tags, SEO fields, resource association). Only the fields you pass are changed. Use append_to_blog, not this tool, to continue a multi-part blog.`,
		SchemaJSON: `{"type":"object","properties":{"blogId":{"type":"integer","description":"Id of the blog to update"},"title":{"type":"string"},"excerpt":{"type":"string"},"content":{"type":"string","description":"Replaces the entire content"},"status":{"type":"string","enum":["draft","published","archived"]},"tags":{"type":"array","items":{"type":"string"}},"metaTitle":{"type":"string"},"metaDescription":{"type":"string"},"resourceId":{"type":"integer"}},"required":["blogId"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return updateBlogImpl(ctx, deps, args), nil
		},
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "persistence",
			Tags:     []string{"write"},
		},
	}
}
