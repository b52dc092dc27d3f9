package tools

import (
	"context"
	"fmt"

	"github.com/quillworks/quill/internal/branding"
	"github.com/quillworks/quill/internal/engine"
	"github.com/quillworks/quill/internal/orchestrator"
	"github.com/quillworks/quill/internal/store"
)

// saveResourceImpl runs the save pipeline for a resource. Name and
// description must be explicit. Type and category references are validated
// and fall back to the lazily-created defaults; the logo is fetched
// best-effort and its absence never blocks the save.
func saveResourceImpl(ctx context.Context, deps Deps, args map[string]any) string {
	state := deps.State

	name := argString(args, "name")
	description := argString(args, "description")
	if name == "" || description == "" {
		return failure("name and description are required for a resource")
	}

	if verdict := checkSavePreconditions(ctx, deps, orchestrator.KindResource, name); verdict != "" {
		return verdict
	}

	typeID := argInt64(args, "typeId")
	if typeID != 0 {
		ok, err := deps.Store.TypeIDExists(ctx, typeID)
		if err != nil {
			return failure(fmt.Sprintf("type check failed: %v", err))
		}
		if !ok {
			typeID = 0
		}
	}
	if typeID == 0 {
		id, err := deps.Store.FindOrCreateDefault(ctx, store.DefaultResourceType)
		if err != nil {
			return failure(fmt.Sprintf("failed to resolve default resource type: %v", err))
		}
		typeID = id
	}

	categoryID := argInt64(args, "categoryId")
	if categoryID != 0 {
		ok, err := deps.Store.ResourceCategoryExists(ctx, categoryID)
		if err != nil {
			return failure(fmt.Sprintf("category check failed: %v", err))
		}
		if !ok {
			categoryID = 0
		}
	}
	if categoryID == 0 {
		id, err := deps.Store.FindOrCreateDefault(ctx, store.DefaultResourceCategory)
		if err != nil {
			return failure(fmt.Sprintf("failed to resolve default resource category: %v", err))
		}
		categoryID = id
	}

	officialURL := argString(args, "officialUrl")
	githubURL := argString(args, "githubUrl")

	logoURL := ""
	if deps.Logos != nil {
		if u, err := deps.Logos.FetchLogo(ctx, name, branding.LogoHints{
			OfficialURL: officialURL,
			GithubURL:   githubURL,
		}); err == nil {
			logoURL = u
		}
	}

	difficulty := argString(args, "difficulty")
	if difficulty == "" {
		difficulty = "beginner"
	}

	item := state.TrackItem(orchestrator.KindResource, name)
	resource, err := deps.Store.CreateResource(ctx, &store.Resource{
		AuthorID:    state.AuthorID,
		Name:        name,
		Description: description,
		URL:         argString(args, "url"),
		OfficialURL: officialURL,
		DocsURL:     argString(args, "docsUrl"),
		GithubURL:   githubURL,
		LogoURL:     logoURL,
		TypeID:      typeID,
		CategoryID:  categoryID,
		Difficulty:  difficulty,
	})
	if err != nil {
		state.MarkFailed(item, err)
		return failure(fmt.Sprintf("failed to save resource: %v", err))
	}

	state.MarkSaved(item, resource.ID, resource.Slug, len(resource.Description), false)

	res := map[string]any{
		"success":     true,
		"resource_id": resource.ID,
		"name":        resource.Name,
		"slug":        resource.Slug,
	}
	if logoURL != "" {
		res["logo_url"] = logoURL
	}
	for k, v := range guidance(state) {
		res[k] = v
	}
	return jsonResult(res)
}

// NewSaveResourceTool creates the save_resource tool.
func NewSaveResourceTool(deps Deps) engine.Tool {
	return engine.Tool{
		Name: "save_resource",
		Description: `Save a resource (tool, library or service) to the database. Name and description are required. Type and category references are validated and fall back to sensible defaults. A logo is looked up automatically from the official or GitHub URL; logo failures never block the save.

Save the resource BEFORE any article that covers it, so the article can reference it.`,
		SchemaJSON: `{"type":"object","properties":{"name":{"type":"string","description":"Resource name, e.g. a library or product name"},"description":{"type":"string","description":"What this resource is and why it matters"},"url":{"type":"string","description":"Primary link"},"officialUrl":{"type":"string","description":"Official site URL"},"docsUrl":{"type":"string","description":"Documentation URL"},"githubUrl":{"type":"string","description":"GitHub repository URL"},"typeId":{"type":"integer","description":"Resource type id; defaults when omitted or invalid"},"categoryId":{"type":"integer","description":"Resource category id; defaults when omitted or invalid"},"difficulty":{"type":"string","enum":["beginner","intermediate","advanced"],"description":"Default beginner"}},"required":["name","description"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			return saveResourceImpl(ctx, deps, args), nil
		},
		Retryable: false,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "persistence",
			Tags:     []string{"write", "guarded"},
		},
	}
}
