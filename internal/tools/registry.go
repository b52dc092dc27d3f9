package tools

import (
	"github.com/quillworks/quill/internal/engine"
)

// NewToolRegistry wires the full tool set for one generation run. Every
// tool closes over the same Deps, so they all observe each other's state
// mutations between turns.
func NewToolRegistry(deps Deps) engine.ToolRegistry {
	reg := make(engine.ToolRegistry)

	reg["analyze_request"] = NewAnalyzeRequestTool(deps)
	reg["research"] = NewResearchTool(deps)
	reg["get_stored_research"] = NewGetStoredResearchTool(deps)

	reg["save_blog"] = NewSaveBlogTool(deps)
	reg["save_article"] = NewSaveArticleTool(deps)
	reg["save_resource"] = NewSaveResourceTool(deps)
	reg["append_to_blog"] = NewAppendToBlogTool(deps)
	reg["update_blog"] = NewUpdateBlogTool(deps)

	reg["list_blogs"] = NewListBlogsTool(deps)
	reg["check_progress"] = NewCheckProgressTool(deps)

	return reg
}
