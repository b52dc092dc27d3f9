package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/derive"
	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/store"
)

// saveArticleImpl runs the save pipeline for an article. Articles are
// strict: title, description and content must be explicit, and the article
// must reference a real resource. When the model omits the resource id, a
// resource created earlier in this run is used; with none available the
// save is refused.
func saveArticleImpl(ctx context.Context, deps Deps, args map[string]any) string {
	state := deps.State

	title := argString(args, "title")
	description := argString(args, "description")
	content := argString(args, "content")
	if title == "" || description == "" || content == "" {
		return failure("title, description and content are all required for an article")
	}
	if len(content) > maxSaveContentChars {
		return failure(fmt.Sprintf("content exceeds the %d character limit for one save", maxSaveContentChars))
	}

	if verdict := checkSavePreconditions(ctx, deps, orchestrator.KindArticle, title); verdict != "" {
		return verdict
	}

	resourceID := argInt64(args, "resourceId")
	if resourceID != 0 {
		ok, err := deps.Store.ResourceExists(ctx, resourceID)
		if err != nil {
			return failure(fmt.Sprintf("resource check failed: %v", err))
		}
		if !ok {
			resourceID = 0
		}
	}
	if resourceID == 0 {
		resourceID = state.LastCreatedResourceID()
	}
	if resourceID == 0 {
		return failure("articles must reference a resource; pass a valid resourceId or create the resource first with save_resource")
	}

	categoryID, err := resolveContentCategory(ctx, deps, argInt64(args, "categoryId"))
	if err != nil {
		return failure(err.Error())
	}

	difficulty := argString(args, "difficulty")
	if difficulty == "" {
		difficulty = "beginner"
	}

	item := state.TrackItem(orchestrator.KindArticle, title)
	article, err := deps.Store.CreateArticle(ctx, &store.Article{
		AuthorID:    state.AuthorID,
		Title:       title,
		Description: description,
		Content:     content,
		ResourceID:  resourceID,
		CategoryID:  categoryID,
		Difficulty:  difficulty,
		ReadTimeMin: derive.ReadTime(content),
	})
	if err != nil {
		state.MarkFailed(item, err)
		return failure(fmt.Sprintf("failed to save article: %v", err))
	}

	state.MarkSaved(item, article.ID, article.Slug, len(article.Content), false)

	if err := deps.Store.IncrementResourceCounter(ctx, resourceID, store.CounterArticle); err != nil {
		state.RecordError(fmt.Sprintf("article %d: counter increment failed: %v", article.ID, err))
	}

	attachSEO(ctx, deps, "article", article.ID, derive.MetaTitle(title), derive.MetaDescription(description), title, description)

	res := map[string]any{
		"success":       true,
		"article_id":    article.ID,
		"title":         article.Title,
		"slug":          article.Slug,
		"resource_id":   article.ResourceID,
		"read_time_min": article.ReadTimeMin,
	}
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

// NewSaveArticleTool creates the save_article tool.
func NewSaveArticleTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "save_article",
		Description: `Save an article to the database. Articles require explicit title, description and content (nothing is derived), and must be associated with a resource: pass resourceId, or create the resource first with save_resource and it will be picked up automatically.`,
		SchemaJSON: `{"type":"object","properties":{"title":{"type":"string","description":"Article title"},"description":{"type":"string","description":"Short description of the article"},"content":{"type":"string","description":"Markdown content"},"resourceId":{"type":"integer","description":"Id of the resource this article covers; falls back to a resource created earlier in this run"},"categoryId":{"type":"integer","description":"Content category id; defaults when omitted or invalid"},"difficulty":{"type":"string","enum":["beginner","intermediate","advanced"],"description":"Reader level, default beginner"}},"required":["title","description","content"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return saveArticleImpl(ctx, deps, args), nil
		},
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "persistence",
			Tags:     []string{"write", "guarded"},
		},
	}
}
