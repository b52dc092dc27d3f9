package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quillworks/quill/internal/derive"
)

// Resource is a tool/library/service row that blogs and articles associate
// with. It carries counters for the content written about it.
type Resource struct {
	ID           int64
	AuthorID     int64
	Name         string
	Slug         string
	Description  string
	URL          string
	OfficialURL  string
	DocsURL      string
	GithubURL    string
	LogoURL      string
	TypeID       int64
	CategoryID   int64
	Difficulty   string
	BlogCount    int
	ArticleCount int
	CreatedAt    int64
}

const resourceColumns = "resource_id, author_id, name, slug, description, url, official_url, docs_url, github_url, logo_url, type_id, category_id, difficulty, blog_count, article_count, created_at"

// CreateResource inserts a resource with a fresh unique slug, retrying on
// collision. Returns the created row read back from the store.
func (s *Store) CreateResource(ctx context.Context, r *Resource) (*Resource, error) {
	now := time.Now().Unix()
	var lastErr error
	for attempt := 0; attempt < slugRetries; attempt++ {
		slug := derive.NewSlug(r.Name)
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO resources (author_id, name, slug, description, url, official_url, docs_url, github_url, logo_url, type_id, category_id, difficulty, blog_count, article_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?)`,
			r.AuthorID, r.Name, slug, r.Description, r.URL, r.OfficialURL,
			r.DocsURL, r.GithubURL, r.LogoURL, r.TypeID, r.CategoryID,
			r.Difficulty, now)
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		return s.FindResourceByID(ctx, id)
	}
	return nil, fmt.Errorf("failed to create resource after %d slug attempts: %w", slugRetries, lastErr)
}

// FindResourceByID retrieves a resource by primary key. Returns nil if absent.
func (s *Store) FindResourceByID(ctx context.Context, id int64) (*Resource, error) {
	return s.scanResource(ctx, "SELECT "+resourceColumns+" FROM resources WHERE resource_id = ?", id)
}

// FindResourceByNameForAuthor performs the case-insensitive duplicate-name
// check, scoped to one author.
func (s *Store) FindResourceByNameForAuthor(ctx context.Context, authorID int64, name string) (*Resource, error) {
	return s.scanResource(ctx,
		"SELECT "+resourceColumns+" FROM resources WHERE author_id = ? AND LOWER(name) = LOWER(?)",
		authorID, name)
}

// CounterKind selects which association counter to bump.
type CounterKind string

const (
	CounterBlog    CounterKind = "blog"
	CounterArticle CounterKind = "article"
)

// IncrementResourceCounter bumps the blog or article counter on a resource.
func (s *Store) IncrementResourceCounter(ctx context.Context, resourceID int64, kind CounterKind) error {
	var col string
	switch kind {
	case CounterBlog:
		col = "blog_count"
	case CounterArticle:
		col = "article_count"
	default:
		return fmt.Errorf("unknown counter kind: %s", kind)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE resources SET %s = %s + 1 WHERE resource_id = ?", col, col), resourceID)
	if err != nil {
		return fmt.Errorf("failed to increment %s counter: %w", kind, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("resource %d not found", resourceID)
	}
	return nil
}

func (s *Store) scanResource(ctx context.Context, query string, args ...any) (*Resource, error) {
	var r Resource
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&r.ID, &r.AuthorID, &r.Name, &r.Slug, &r.Description, &r.URL,
		&r.OfficialURL, &r.DocsURL, &r.GithubURL, &r.LogoURL, &r.TypeID,
		&r.CategoryID, &r.Difficulty, &r.BlogCount, &r.ArticleCount, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resource lookup failed: %w", err)
	}
	return &r, nil
}
