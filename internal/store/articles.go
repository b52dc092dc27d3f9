package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quillworks/quill/internal/derive"
)

// Article is a long-form article row. Unlike blogs, articles must reference
// a resource.
type Article struct {
	ID          int64
	AuthorID    int64
	Title       string
	Slug        string
	Description string
	Content     string
	ResourceID  int64
	CategoryID  int64 // 0 = none
	Difficulty  string
	ReadTimeMin int
	CreatedAt   int64
}

const articleColumns = "article_id, author_id, title, slug, description, content, resource_id, category_id, difficulty, read_time_min, created_at"

// CreateArticle inserts an article with a fresh unique slug, retrying on
// collision. Returns the created row read back from the store.
func (s *Store) CreateArticle(ctx context.Context, a *Article) (*Article, error) {
	now := time.Now().Unix()
	var lastErr error
	for attempt := 0; attempt < slugRetries; attempt++ {
		slug := derive.NewSlug(a.Title)
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO articles (author_id, title, slug, description, content, resource_id, category_id, difficulty, read_time_min, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.AuthorID, a.Title, slug, a.Description, a.Content, a.ResourceID,
			nullableID(a.CategoryID), a.Difficulty, a.ReadTimeMin, now)
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("failed to create article: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		return s.FindArticleByID(ctx, id)
	}
	return nil, fmt.Errorf("failed to create article after %d slug attempts: %w", slugRetries, lastErr)
}

// FindArticleByID retrieves an article by primary key. Returns nil if absent.
func (s *Store) FindArticleByID(ctx context.Context, id int64) (*Article, error) {
	return s.scanArticle(ctx, "SELECT "+articleColumns+" FROM articles WHERE article_id = ?", id)
}

// FindArticleByTitleForAuthor performs the case-insensitive duplicate-title
// check, scoped to one author.
func (s *Store) FindArticleByTitleForAuthor(ctx context.Context, authorID int64, title string) (*Article, error) {
	return s.scanArticle(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE author_id = ? AND LOWER(title) = LOWER(?)",
		authorID, title)
}

func (s *Store) scanArticle(ctx context.Context, query string, args ...any) (*Article, error) {
	var a Article
	var categoryID sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Slug, &a.Description, &a.Content,
		&a.ResourceID, &categoryID, &a.Difficulty, &a.ReadTimeMin, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("article lookup failed: %w", err)
	}
	a.CategoryID = categoryID.Int64
	return &a, nil
}
