package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
)

// appendToBlogImpl delivers an additional part of a multi-part blog. The
// target is the explicit blogId or, when omitted, the blog created most
// recently in this run. Only isLastPart=true clears the item's
// needs-more-content flag; until then the blog does not count as finished.
func appendToBlogImpl(ctx context.Context, deps Deps, blogID int64, content string, isLastPart bool) string {
	state := deps.State

	if content == "" {
		return failure("content is required")
	}
	if len(content) > maxSaveContentChars {
		return failure(fmt.Sprintf("content exceeds the %d character limit for one append; split it across calls", maxSaveContentChars))
	}

	if blogID == 0 {
		blogID = state.LastCreatedBlogID
	}
	if blogID == 0 {
		return failure("no blogId given and no blog has been created in this run yet")
	}

	blog, err := deps.Store.AppendBlogContent(ctx, blogID, content, isLastPart)
	if err != nil {
		state.RecordError(fmt.Sprintf("append to blog %d: %v", blogID, err))
		return failure(fmt.Sprintf("failed to append: %v", err))
	}

	item := state.FindItemByDBID(orchestrator.KindBlog, blogID)
	state.RecordAppend(item, len(blog.Content), isLastPart)

	res := map[string]any{
		"success":        true,
		"blog_id":        blog.ID,
		"total_chars":    len(blog.Content),
		"read_time_min":  blog.ReadTimeMin,
		"content_parts":  contentParts(item),
		"needs_append":   !isLastPart,
	}
	if !isLastPart {
		res["next_action"] = fmt.Sprintf("Blog %d still needs content. Append the next part; set isLastPart=true on the final one.", blog.ID)
		res["remaining"] = guidance(state)["remaining"]
		res["is_complete"] = false
		return jsonResult(res)
	}
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

func contentParts(item *orchestrator.ContentItem) int {
	if item == nil {
		return 0
	}
	return item.ContentParts
}

// NewAppendToBlogTool creates the append_to_blog tool.
func NewAppendToBlogTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "append_to_blog",
		Description: `Append more content to a blog previously saved with hasMoreContent=true. Omit blogId to target the blog created most recently in this run. Set isLastPart=true on the final part; the blog does not count toward completion until then.`,
		SchemaJSON: `{"type":"object","properties":{"blogId":{"type":"integer","description":"Target blog id; defaults to the last blog created in this run"},"content":{"type":"string","description":"The next chunk of markdown content"},"isLastPart":{"type":"boolean","description":"True when this is the final part"}},"required":["content"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return appendToBlogImpl(ctx, deps,
				argInt64(args, "blogId"),
				argString(args, "content"),
				argBool(args, "isLastPart")), nil
		},
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "persistence",
			Tags:     []string{"write", "multi-part"},
		},
	}
}
