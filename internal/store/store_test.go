package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedResource(t *testing.T, s *Store, authorID int64, name string) *Resource {
	t.Helper()
	ctx := context.Background()
	typeID, err := s.FindOrCreateDefault(ctx, DefaultResourceType)
	if err != nil {
		t.Fatalf("default type failed: %v", err)
	}
	catID, err := s.FindOrCreateDefault(ctx, DefaultResourceCategory)
	if err != nil {
		t.Fatalf("default category failed: %v", err)
	}
	r, err := s.CreateResource(ctx, &Resource{
		AuthorID:    authorID,
		Name:        name,
		Description: "test resource",
		TypeID:      typeID,
		CategoryID:  catID,
		Difficulty:  "beginner",
	})
	if err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}
	return r
}

func TestResolveAuthor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Unknown external id creates a user.
	u1, err := s.ResolveAuthor(ctx, "ext-1", "one@example.com")
	if err != nil {
		t.Fatalf("ResolveAuthor failed: %v", err)
	}
	if u1.ExternalID != "ext-1" || u1.Role != "author" {
		t.Errorf("Unexpected created user: %+v", u1)
	}

	// Same external id resolves to the same row.
	u2, err := s.ResolveAuthor(ctx, "ext-1", "")
	if err != nil {
		t.Fatalf("ResolveAuthor failed: %v", err)
	}
	if u2.ID != u1.ID {
		t.Errorf("Expected same user, got %d and %d", u1.ID, u2.ID)
	}

	// Email-only resolution finds the existing row.
	u3, err := s.ResolveAuthor(ctx, "", "one@example.com")
	if err != nil {
		t.Fatalf("ResolveAuthor failed: %v", err)
	}
	if u3.ID != u1.ID {
		t.Errorf("Expected email lookup to find user %d, got %d", u1.ID, u3.ID)
	}

	// No identity at all falls back to an existing author.
	u4, err := s.ResolveAuthor(ctx, "", "")
	if err != nil {
		t.Fatalf("ResolveAuthor failed: %v", err)
	}
	if u4.ID != u1.ID {
		t.Errorf("Expected fallback to existing author %d, got %d", u1.ID, u4.ID)
	}
}

func TestResolveAuthorSystemFallback(t *testing.T) {
	s := openTestStore(t)

	u, err := s.ResolveAuthor(context.Background(), "", "")
	if err != nil {
		t.Fatalf("ResolveAuthor failed: %v", err)
	}
	if u.Role != "system" || u.Name != "System" {
		t.Errorf("Expected system user on an empty database, got %+v", u)
	}
}

func TestCreateBlogAndDuplicateLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	author, _ := s.ResolveAuthor(ctx, "ext-1", "")

	blog, err := s.CreateBlog(ctx, &Blog{
		AuthorID: author.ID,
		Title:    "My First Post",
		Excerpt:  "short",
		Content:  "body text",
		Status:   "published",
		Tags:     []string{"golang", "tutorial"},
	})
	if err != nil {
		t.Fatalf("CreateBlog failed: %v", err)
	}
	if blog.ID == 0 || !strings.HasPrefix(blog.Slug, "my-first-post-") {
		t.Errorf("Unexpected created blog: %+v", blog)
	}
	if len(blog.Tags) != 2 {
		t.Errorf("Tags lost on round trip: %v", blog.Tags)
	}

	// Case-insensitive, author-scoped duplicate lookup.
	dup, err := s.FindBlogByTitleForAuthor(ctx, author.ID, "my first POST")
	if err != nil {
		t.Fatalf("duplicate lookup failed: %v", err)
	}
	if dup == nil || dup.ID != blog.ID {
		t.Errorf("Expected duplicate match, got %+v", dup)
	}

	// A different author sees no duplicate.
	other, _ := s.CreateUser(ctx, "ext-2", "", "", "")
	dup, err = s.FindBlogByTitleForAuthor(ctx, other.ID, "My First Post")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if dup != nil {
		t.Errorf("Duplicate check must be author-scoped, got %+v", dup)
	}
}

func TestAppendBlogContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	author, _ := s.ResolveAuthor(ctx, "ext-1", "")

	blog, err := s.CreateBlog(ctx, &Blog{
		AuthorID:        author.ID,
		Title:           "Multi Part",
		Content:         strings.Repeat("word ", 300),
		Status:          "published",
		ReadTimeMin:     2,
		ContentComplete: false,
	})
	if err != nil {
		t.Fatalf("CreateBlog failed: %v", err)
	}
	if blog.ContentComplete {
		t.Fatal("Blog should start incomplete")
	}

	mid, err := s.AppendBlogContent(ctx, blog.ID, strings.Repeat("more ", 300), false)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if mid.ContentComplete {
		t.Error("Blog must stay incomplete until the last part")
	}
	if !strings.Contains(mid.Content, "more") {
		t.Error("Appended content missing")
	}
	if mid.ReadTimeMin <= blog.ReadTimeMin {
		t.Errorf("Read time should grow with content: %d -> %d", blog.ReadTimeMin, mid.ReadTimeMin)
	}

	final, err := s.AppendBlogContent(ctx, blog.ID, "the end", true)
	if err != nil {
		t.Fatalf("final append failed: %v", err)
	}
	if !final.ContentComplete {
		t.Error("Blog should be complete after the last part")
	}

	// Appending to a missing blog errors.
	if _, err := s.AppendBlogContent(ctx, 9999, "x", true); err == nil {
		t.Error("Expected error appending to a missing blog")
	}
}

func TestUpdateBlogPartial(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	author, _ := s.ResolveAuthor(ctx, "ext-1", "")

	blog, err := s.CreateBlog(ctx, &Blog{
		AuthorID: author.ID,
		Title:    "Original",
		Excerpt:  "keep me",
		Content:  "original body",
		Status:   "published",
	})
	if err != nil {
		t.Fatalf("CreateBlog failed: %v", err)
	}

	newTitle := "Renamed"
	newStatus := "draft"
	updated, err := s.UpdateBlog(ctx, blog.ID, BlogUpdate{Title: &newTitle, Status: &newStatus})
	if err != nil {
		t.Fatalf("UpdateBlog failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Status != "draft" {
		t.Errorf("Update not applied: %+v", updated)
	}
	if updated.Excerpt != "keep me" || updated.Content != "original body" {
		t.Errorf("Untouched fields changed: %+v", updated)
	}

	// Content update refreshes read time.
	long := strings.Repeat("word ", 1000)
	updated, err = s.UpdateBlog(ctx, blog.ID, BlogUpdate{Content: &long})
	if err != nil {
		t.Fatalf("UpdateBlog failed: %v", err)
	}
	if updated.ReadTimeMin != 5 {
		t.Errorf("Expected recomputed read time 5, got %d", updated.ReadTimeMin)
	}

	if _, err := s.UpdateBlog(ctx, 9999, BlogUpdate{Title: &newTitle}); err == nil {
		t.Error("Expected error updating a missing blog")
	}
}

func TestFindOrCreateDefault(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.FindOrCreateDefault(ctx, DefaultContentCategory)
	if err != nil {
		t.Fatalf("FindOrCreateDefault failed: %v", err)
	}
	id2, err := s.FindOrCreateDefault(ctx, DefaultContentCategory)
	if err != nil {
		t.Fatalf("FindOrCreateDefault failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("Default row not reused: %d vs %d", id1, id2)
	}

	ok, err := s.ContentCategoryExists(ctx, id1)
	if err != nil || !ok {
		t.Errorf("Created default should exist: ok=%v err=%v", ok, err)
	}
	ok, err = s.ContentCategoryExists(ctx, 9999)
	if err != nil || ok {
		t.Errorf("Nonexistent category reported present: ok=%v err=%v", ok, err)
	}
}

func TestResourceCounters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	author, _ := s.ResolveAuthor(ctx, "ext-1", "")
	r := seedResource(t, s, author.ID, "CoolLib")

	if err := s.IncrementResourceCounter(ctx, r.ID, CounterBlog); err != nil {
		t.Fatalf("blog counter failed: %v", err)
	}
	if err := s.IncrementResourceCounter(ctx, r.ID, CounterArticle); err != nil {
		t.Fatalf("article counter failed: %v", err)
	}
	if err := s.IncrementResourceCounter(ctx, r.ID, CounterArticle); err != nil {
		t.Fatalf("article counter failed: %v", err)
	}

	got, err := s.FindResourceByID(ctx, r.ID)
	if err != nil || got == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.BlogCount != 1 || got.ArticleCount != 2 {
		t.Errorf("Expected counters 1/2, got %d/%d", got.BlogCount, got.ArticleCount)
	}

	if err := s.IncrementResourceCounter(ctx, 9999, CounterBlog); err == nil {
		t.Error("Expected error for missing resource")
	}
}

func TestCreateArticle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	author, _ := s.ResolveAuthor(ctx, "ext-1", "")
	r := seedResource(t, s, author.ID, "CoolLib")

	a, err := s.CreateArticle(ctx, &Article{
		AuthorID:    author.ID,
		Title:       "Using CoolLib",
		Description: "walkthrough",
		Content:     "body",
		ResourceID:  r.ID,
		Difficulty:  "beginner",
		ReadTimeMin: 1,
	})
	if err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	if !strings.HasPrefix(a.Slug, "using-coollib-") {
		t.Errorf("Unexpected slug %q", a.Slug)
	}

	dup, err := s.FindArticleByTitleForAuthor(ctx, author.ID, "USING coollib")
	if err != nil {
		t.Fatalf("duplicate lookup failed: %v", err)
	}
	if dup == nil || dup.ID != a.ID {
		t.Errorf("Expected case-insensitive duplicate match, got %+v", dup)
	}
}

func TestSEORecordUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.CreateSEORecord(ctx, &SEORecord{
		EntityType:      "blog",
		EntityID:        1,
		MetaTitle:       "First Title",
		MetaDescription: "desc",
	})
	if err != nil {
		t.Fatalf("CreateSEORecord failed: %v", err)
	}
	if rec.ID == 0 {
		t.Error("Expected an id on the created record")
	}

	// Same entity upserts instead of duplicating.
	_, err = s.CreateSEORecord(ctx, &SEORecord{
		EntityType: "blog",
		EntityID:   1,
		MetaTitle:  "Updated Title",
		OGImageURL: "https://img.example.com/og.png",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := s.FindSEORecord(ctx, "blog", 1)
	if err != nil || got == nil {
		t.Fatalf("FindSEORecord failed: %v", err)
	}
	if got.MetaTitle != "Updated Title" || got.OGImageURL == "" {
		t.Errorf("Upsert not applied: %+v", got)
	}

	missing, err := s.FindSEORecord(ctx, "blog", 42)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for a missing record, got %+v", missing)
	}
}
