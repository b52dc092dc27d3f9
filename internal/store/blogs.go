package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/quillworks/quill/internal/derive"
)

// Blog is a blog post row.
type Blog struct {
	ID              int64
	AuthorID        int64
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	Status          string
	Tags            []string
	MetaTitle       string
	MetaDescription string
	ReadTimeMin     int
	ContentComplete bool
	ResourceID      int64 // 0 = none
	CategoryID      int64 // 0 = none
	CreatedAt       int64
	UpdatedAt       int64
}

const blogColumns = "blog_id, author_id, title, slug, excerpt, content, status, tags, meta_title, meta_description, read_time_min, content_complete, resource_id, category_id, created_at, updated_at"

// CreateBlog inserts a blog with a fresh unique slug, retrying with a new
// slug on collision. Returns the created row read back from the store.
func (s *Store) CreateBlog(ctx context.Context, b *Blog) (*Blog, error) {
	now := time.Now().Unix()
	var lastErr error
	for attempt := 0; attempt < slugRetries; attempt++ {
		slug := derive.NewSlug(b.Title)
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO blogs (author_id, title, slug, excerpt, content, status, tags, meta_title, meta_description, read_time_min, content_complete, resource_id, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.AuthorID, b.Title, slug, b.Excerpt, b.Content, b.Status,
			strings.Join(b.Tags, ","), b.MetaTitle, b.MetaDescription,
			b.ReadTimeMin, boolInt(b.ContentComplete),
			nullableID(b.ResourceID), nullableID(b.CategoryID), now, now)
		if err != nil {
			if isUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("failed to create blog: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		// Verification read-back: the caller reports saved content from
		// what the store actually holds, not from its own inputs.
		return s.FindBlogByID(ctx, id)
	}
	return nil, fmt.Errorf("failed to create blog after %d slug attempts: %w", slugRetries, lastErr)
}

// FindBlogByID retrieves a blog by primary key. Returns nil if absent.
func (s *Store) FindBlogByID(ctx context.Context, id int64) (*Blog, error) {
	return s.scanBlog(ctx, "SELECT "+blogColumns+" FROM blogs WHERE blog_id = ?", id)
}

// FindBlogByTitleForAuthor performs the case-insensitive duplicate-title
// check, scoped to one author.
func (s *Store) FindBlogByTitleForAuthor(ctx context.Context, authorID int64, title string) (*Blog, error) {
	return s.scanBlog(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE author_id = ? AND LOWER(title) = LOWER(?)",
		authorID, title)
}

// ListBlogsByAuthor returns the author's blogs, newest first.
func (s *Store) ListBlogsByAuthor(ctx context.Context, authorID int64, limit int) ([]*Blog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE author_id = ? ORDER BY created_at DESC, blog_id DESC LIMIT ?",
		authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []*Blog
	for rows.Next() {
		b, err := scanBlogRow(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

// BlogUpdate holds the partial fields update_blog may change.
// Nil pointers leave the column untouched.
type BlogUpdate struct {
	Title           *string
	Excerpt         *string
	Content         *string
	Status          *string
	Tags            []string
	MetaTitle       *string
	MetaDescription *string
	ResourceID      *int64
	CategoryID      *int64
	ContentComplete *bool
}

// UpdateBlog applies a partial update and refreshes read time when content
// changed. Returns the updated row.
func (s *Store) UpdateBlog(ctx context.Context, id int64, upd BlogUpdate) (*Blog, error) {
	var sets []string
	var args []any

	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Excerpt != nil {
		set("excerpt", *upd.Excerpt)
	}
	if upd.Content != nil {
		set("content", *upd.Content)
		set("read_time_min", derive.ReadTime(*upd.Content))
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.Tags != nil {
		set("tags", strings.Join(upd.Tags, ","))
	}
	if upd.MetaTitle != nil {
		set("meta_title", *upd.MetaTitle)
	}
	if upd.MetaDescription != nil {
		set("meta_description", *upd.MetaDescription)
	}
	if upd.ResourceID != nil {
		set("resource_id", nullableID(*upd.ResourceID))
	}
	if upd.CategoryID != nil {
		set("category_id", nullableID(*upd.CategoryID))
	}
	if upd.ContentComplete != nil {
		set("content_complete", boolInt(*upd.ContentComplete))
	}

	if len(sets) == 0 {
		return s.FindBlogByID(ctx, id)
	}

	set("updated_at", time.Now().Unix())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE blogs SET "+strings.Join(sets, ", ")+" WHERE blog_id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update blog %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("blog %d not found", id)
	}
	return s.FindBlogByID(ctx, id)
}

// AppendBlogContent concatenates content onto an existing blog and
// recomputes the read time. When markComplete is true the row is flagged
// content-complete. Returns the updated row.
func (s *Store) AppendBlogContent(ctx context.Context, id int64, content string, markComplete bool) (*Blog, error) {
	existing, err := s.FindBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("blog %d not found", id)
	}

	combined := existing.Content + "\n\n" + content
	complete := existing.ContentComplete || markComplete

	_, err = s.db.ExecContext(ctx,
		"UPDATE blogs SET content = ?, read_time_min = ?, content_complete = ?, updated_at = ? WHERE blog_id = ?",
		combined, derive.ReadTime(combined), boolInt(complete), time.Now().Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to append to blog %d: %w", id, err)
	}
	return s.FindBlogByID(ctx, id)
}

func (s *Store) scanBlog(ctx context.Context, query string, args ...any) (*Blog, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	b, err := scanBlogFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blog lookup failed: %w", err)
	}
	return b, nil
}

func scanBlogRow(rows *sql.Rows) (*Blog, error) {
	return scanBlogFrom(rows.Scan)
}

func scanBlogFrom(scan func(...any) error) (*Blog, error) {
	var b Blog
	var tags string
	var complete int
	var resourceID, categoryID sql.NullInt64
	err := scan(&b.ID, &b.AuthorID, &b.Title, &b.Slug, &b.Excerpt, &b.Content,
		&b.Status, &tags, &b.MetaTitle, &b.MetaDescription, &b.ReadTimeMin,
		&complete, &resourceID, &categoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tags != "" {
		b.Tags = strings.Split(tags, ",")
	}
	b.ContentComplete = complete != 0
	b.ResourceID = resourceID.Int64
	b.CategoryID = categoryID.Int64
	return &b, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
