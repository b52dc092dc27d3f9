package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/derive"
	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/store"
)

// maxSaveContentChars caps a single save call. Longer pieces are delivered
// across turns with append_to_blog.
const maxSaveContentChars = 30000

// saveBlogImpl runs the full save pipeline for a blog post. Blogs are the
// forgiving kind: missing title, excerpt, meta fields and tags are derived
// from the content instead of rejected.
func saveBlogImpl(ctx context.Context, deps Deps, args map[string]any) string {
	state := deps.State

	content := argString(args, "content")
	if content == "" {
		return failure("content is required")
	}
	if len(content) > maxSaveContentChars {
		return failure(fmt.Sprintf("content exceeds the %d character limit for one save; save the first part with hasMoreContent=true and deliver the rest with append_to_blog", maxSaveContentChars))
	}

	title := argString(args, "title")
	if title == "" {
		title = derive.TitleFrom(content)
	}
	if title == "" {
		return failure("could not determine a title; provide one explicitly")
	}

	excerpt := argString(args, "excerpt")
	if excerpt == "" {
		excerpt = derive.ExcerptFrom(content)
	}
	metaTitle := argString(args, "metaTitle")
	if metaTitle == "" {
		metaTitle = derive.MetaTitle(title)
	}
	metaDescription := argString(args, "metaDescription")
	if metaDescription == "" {
		metaDescription = derive.MetaDescription(excerpt)
	}
	tags := argStrings(args, "tags")
	if len(tags) == 0 {
		tags = derive.MatchTags(title + " " + content)
	}

	if verdict := checkSavePreconditions(ctx, deps, orchestrator.KindBlog, title); verdict != "" {
		return verdict
	}

	categoryID, err := resolveContentCategory(ctx, deps, argInt64(args, "categoryId"))
	if err != nil {
		return failure(err.Error())
	}
	resourceID, err := resolveOptionalResource(ctx, deps, argInt64(args, "resourceId"))
	if err != nil {
		return failure(err.Error())
	}

	hasMore := argBool(args, "hasMoreContent")

	item := state.TrackItem(orchestrator.KindBlog, title)
	blog, err := deps.Store.CreateBlog(ctx, &store.Blog{
		AuthorID:        state.AuthorID,
		Title:           title,
		Excerpt:         excerpt,
		Content:         content,
		Status:          "published",
		Tags:            tags,
		MetaTitle:       metaTitle,
		MetaDescription: metaDescription,
		ReadTimeMin:     derive.ReadTime(content),
		ContentComplete: !hasMore,
		ResourceID:      resourceID,
		CategoryID:      categoryID,
	})
	if err != nil {
		state.MarkFailed(item, err)
		return failure(fmt.Sprintf("failed to save blog: %v", err))
	}

	state.MarkSaved(item, blog.ID, blog.Slug, len(blog.Content), hasMore)

	if resourceID != 0 {
		if err := deps.Store.IncrementResourceCounter(ctx, resourceID, store.CounterBlog); err != nil {
			state.RecordError(fmt.Sprintf("blog %d: counter increment failed: %v", blog.ID, err))
		}
	}

	attachSEO(ctx, deps, "blog", blog.ID, metaTitle, metaDescription, title, excerpt)

	res := map[string]any{
		"success":       true,
		"blog_id":       blog.ID,
		"title":         blog.Title,
		"slug":          blog.Slug,
		"read_time_min": blog.ReadTimeMin,
		"tags":          blog.Tags,
	}
	if hasMore {
		res["needs_append"] = true
		res["next_action"] = fmt.Sprintf("Blog %d is saved but incomplete. Call append_to_blog with the next part; set isLastPart=true on the final one.", blog.ID)
		res["remaining"] = guidance(state)["remaining"]
		res["is_complete"] = false
		return jsonResult(res)
	}
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

// checkSavePreconditions applies the guards shared by all three save tools:
// analysis must be complete, the title must be new both in-run and in the
// durable store, and the kind's quantity ceiling must not be reached.
// Returns a ready failure result, or "" when the save may proceed.
func checkSavePreconditions(ctx context.Context, deps Deps, kind orchestrator.ContentKind, title string) string {
	state := deps.State

	if !state.Analysis.Complete {
		return failure("analysis has not run yet; call analyze_request before saving content")
	}

	// In-run duplicate check first: sibling tool calls in the same turn
	// only saw the pre-turn state, so this catches same-turn repeats.
	if existing := state.FindItemByTitle(kind, title); existing != nil && existing.Status != orchestrator.StatusFailed {
		return failure(fmt.Sprintf("a %s titled %q is already tracked in this run", kind, title), map[string]any{
			"is_duplicate":   true,
			"existing_title": existing.Title,
			"existing_db_id": existing.DBID,
		})
	}

	dup, err := findStoredDuplicate(ctx, deps, kind, title)
	if err != nil {
		return failure(fmt.Sprintf("duplicate check failed: %v", err))
	}
	if dup != nil {
		return failure(fmt.Sprintf("a %s with this title already exists for this author; choose a different title", kind), map[string]any{
			"is_duplicate":   true,
			"existing_db_id": dup.id,
			"existing_title": dup.title,
			"existing_slug":  dup.slug,
		})
	}

	if state.TrackedCount(kind) >= state.Requested(kind) {
		return failure(fmt.Sprintf("the requested number of %ss (%d) has already been created", kind, state.Requested(kind)), map[string]any{
			"limit_reached": true,
			"remaining":     guidance(state)["remaining"],
			"is_complete":   state.AllSatisfied(),
			"next_action":   nextAction(state),
		})
	}
	return ""
}

type storedDuplicate struct {
	id    int64
	title string
	slug  string
}

func findStoredDuplicate(ctx context.Context, deps Deps, kind orchestrator.ContentKind, title string) (*storedDuplicate, error) {
	switch kind {
	case orchestrator.KindBlog:
		b, err := deps.Store.FindBlogByTitleForAuthor(ctx, deps.State.AuthorID, title)
		if err != nil || b == nil {
			return nil, err
		}
		return &storedDuplicate{id: b.ID, title: b.Title, slug: b.Slug}, nil
	case orchestrator.KindArticle:
		a, err := deps.Store.FindArticleByTitleForAuthor(ctx, deps.State.AuthorID, title)
		if err != nil || a == nil {
			return nil, err
		}
		return &storedDuplicate{id: a.ID, title: a.Title, slug: a.Slug}, nil
	case orchestrator.KindResource:
		r, err := deps.Store.FindResourceByNameForAuthor(ctx, deps.State.AuthorID, title)
		if err != nil || r == nil {
			return nil, err
		}
		return &storedDuplicate{id: r.ID, title: r.Name, slug: r.Slug}, nil
	}
	return nil, fmt.Errorf("unknown content kind: %s", kind)
}

// resolveContentCategory validates a category reference, substituting the
// lazily-created default when omitted or pointing at a nonexistent row.
func resolveContentCategory(ctx context.Context, deps Deps, categoryID int64) (int64, error) {
	if categoryID != 0 {
		ok, err := deps.Store.ContentCategoryExists(ctx, categoryID)
		if err != nil {
			return 0, fmt.Errorf("category check failed: %w", err)
		}
		if ok {
			return categoryID, nil
		}
	}
	id, err := deps.Store.FindOrCreateDefault(ctx, store.DefaultContentCategory)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve default category: %w", err)
	}
	return id, nil
}

// resolveOptionalResource validates a resource reference for blogs, where
// the association is optional: an invalid reference degrades to none.
func resolveOptionalResource(ctx context.Context, deps Deps, resourceID int64) (int64, error) {
	if resourceID == 0 {
		return 0, nil
	}
	ok, err := deps.Store.ResourceExists(ctx, resourceID)
	if err != nil {
		return 0, fmt.Errorf("resource check failed: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return resourceID, nil
}

// attachSEO creates the SEO record and, best-effort, an OG image. Neither
// failure affects the save that already landed.
func attachSEO(ctx context.Context, deps Deps, entityType string, entityID int64, metaTitle, metaDescription, title, excerpt string) {
	ogURL := ""
	if deps.OGImages != nil {
		if u, err := deps.OGImages.GenerateOGImage(ctx, title, excerpt); err == nil {
			ogURL = u
		}
	}
	_, err := deps.Store.CreateSEORecord(ctx, &store.SEORecord{
		EntityType:      entityType,
		EntityID:        entityID,
		MetaTitle:       metaTitle,
		MetaDescription: metaDescription,
		OGImageURL:      ogURL,
	})
	if err != nil {
		deps.State.RecordError(fmt.Sprintf("%s %d: seo record failed: %v", entityType, entityID, err))
	}
}

// NewSaveBlogTool creates the save_blog tool.
func NewSaveBlogTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "save_blog",
		Description: `Save a blog post to the database. Only content is strictly required: title, excerpt, meta fields and tags are derived from the content when omitted.

For content longer than 30,000 characters, save the first part with hasMoreContent=true and deliver the rest via append_to_blog. A blog saved with hasMoreContent=true does not count as finished until the last append.`,
		SchemaJSON: `{"type":"object","properties":{"title":{"type":"string","description":"Blog title; derived from the first heading when omitted"},"content":{"type":"string","description":"Markdown content of the post"},"excerpt":{"type":"string","description":"Short summary; derived from content when omitted"},"tags":{"type":"array","items":{"type":"string"},"description":"Topic tags; matched from content when omitted"},"metaTitle":{"type":"string","description":"SEO title"},"metaDescription":{"type":"string","description":"SEO description"},"categoryId":{"type":"integer","description":"Content category id; defaults when omitted or invalid"},"resourceId":{"type":"integer","description":"Optional associated resource id"},"hasMoreContent":{"type":"boolean","description":"True when more content will follow via append_to_blog"}},"required":["content"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return saveBlogImpl(ctx, deps, args), nil
		},
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "persistence",
			Tags:     []string{"write", "guarded"},
		},
	}
}
