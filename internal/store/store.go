// Package store is the persistence adapter behind the save/append/update
// tools: duplicate-checked, slug-unique writes for blogs, articles and
// resources, plus user resolution, SEO records and association counters.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store provides database operations for content persistence.
type Store struct {
	db *sql.DB
}

// Open creates a new database connection and initializes the schema.
// WAL mode allows concurrent generation runs to share the store.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the database tables if they don't exist.
func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id     INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id TEXT,
		email       TEXT,
		name        TEXT NOT NULL,
		role        TEXT NOT NULL DEFAULT 'author',
		created_at  INTEGER NOT NULL,
		UNIQUE (external_id)
	);

	CREATE TABLE IF NOT EXISTS resource_types (
		type_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name    TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS resource_categories (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS content_categories (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS resources (
		resource_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id     INTEGER NOT NULL,
		name          TEXT NOT NULL,
		slug          TEXT NOT NULL UNIQUE,
		description   TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL DEFAULT '',
		official_url  TEXT NOT NULL DEFAULT '',
		docs_url      TEXT NOT NULL DEFAULT '',
		github_url    TEXT NOT NULL DEFAULT '',
		logo_url      TEXT NOT NULL DEFAULT '',
		type_id       INTEGER NOT NULL,
		category_id   INTEGER NOT NULL,
		difficulty    TEXT NOT NULL DEFAULT 'beginner',
		blog_count    INTEGER NOT NULL DEFAULT 0,
		article_count INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL,
		FOREIGN KEY (author_id) REFERENCES users(user_id),
		FOREIGN KEY (type_id) REFERENCES resource_types(type_id),
		FOREIGN KEY (category_id) REFERENCES resource_categories(category_id)
	);

	CREATE TABLE IF NOT EXISTS blogs (
		blog_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id        INTEGER NOT NULL,
		title            TEXT NOT NULL,
		slug             TEXT NOT NULL UNIQUE,
		excerpt          TEXT NOT NULL DEFAULT '',
		content          TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'published',
		tags             TEXT NOT NULL DEFAULT '',
		meta_title       TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		read_time_min    INTEGER NOT NULL DEFAULT 1,
		content_complete INTEGER NOT NULL DEFAULT 1,
		resource_id      INTEGER,
		category_id      INTEGER,
		created_at       INTEGER NOT NULL,
		updated_at       INTEGER NOT NULL,
		FOREIGN KEY (author_id) REFERENCES users(user_id),
		FOREIGN KEY (resource_id) REFERENCES resources(resource_id),
		FOREIGN KEY (category_id) REFERENCES content_categories(category_id)
	);

	CREATE TABLE IF NOT EXISTS articles (
		article_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id     INTEGER NOT NULL,
		title         TEXT NOT NULL,
		slug          TEXT NOT NULL UNIQUE,
		description   TEXT NOT NULL,
		content       TEXT NOT NULL,
		resource_id   INTEGER NOT NULL,
		category_id   INTEGER,
		difficulty    TEXT NOT NULL DEFAULT 'beginner',
		read_time_min INTEGER NOT NULL DEFAULT 1,
		created_at    INTEGER NOT NULL,
		FOREIGN KEY (author_id) REFERENCES users(user_id),
		FOREIGN KEY (resource_id) REFERENCES resources(resource_id),
		FOREIGN KEY (category_id) REFERENCES content_categories(category_id)
	);

	CREATE TABLE IF NOT EXISTS seo_records (
		seo_id           INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type      TEXT NOT NULL,
		entity_id        INTEGER NOT NULL,
		meta_title       TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		og_image_url     TEXT NOT NULL DEFAULT '',
		created_at       INTEGER NOT NULL,
		UNIQUE (entity_type, entity_id)
	);

	CREATE INDEX IF NOT EXISTS idx_blogs_author ON blogs(author_id);
	CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_id);
	CREATE INDEX IF NOT EXISTS idx_resources_author ON resources(author_id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// slugRetries bounds the create-retry-on-collision loop. Slugs carry a
// random suffix, so a second collision is already pathological.
const slugRetries = 3

// isUniqueViolation reports whether an error is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// DefaultKind selects which lazily-created default row to resolve.
type DefaultKind string

const (
	DefaultResourceType     DefaultKind = "resource_type"     // "Tool"
	DefaultResourceCategory DefaultKind = "resource_category" // "General"
	DefaultContentCategory  DefaultKind = "content_category"  // "Tutorial"
)

// FindOrCreateDefault resolves the fallback row substituted when the model
// omits or fabricates a type/category reference.
func (s *Store) FindOrCreateDefault(ctx context.Context, kind DefaultKind) (int64, error) {
	var table, idCol, name string
	switch kind {
	case DefaultResourceType:
		table, idCol, name = "resource_types", "type_id", "Tool"
	case DefaultResourceCategory:
		table, idCol, name = "resource_categories", "category_id", "General"
	case DefaultContentCategory:
		table, idCol, name = "content_categories", "category_id", "Tutorial"
	default:
		return 0, fmt.Errorf("unknown default kind: %s", kind)
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE name = ?", idCol, table), name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up default %s: %w", kind, err)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", table), name)
	if err != nil {
		// Lost a race with another run; re-read.
		if isUniqueViolation(err) {
			if rerr := s.db.QueryRowContext(ctx,
				fmt.Sprintf("SELECT %s FROM %s WHERE name = ?", idCol, table), name).Scan(&id); rerr == nil {
				return id, nil
			}
		}
		return 0, fmt.Errorf("failed to create default %s: %w", kind, err)
	}
	return res.LastInsertId()
}

// TypeIDExists reports whether a resource type row exists.
func (s *Store) TypeIDExists(ctx context.Context, id int64) (bool, error) {
	return s.rowExists(ctx, "SELECT 1 FROM resource_types WHERE type_id = ?", id)
}

// ResourceCategoryExists reports whether a resource category row exists.
func (s *Store) ResourceCategoryExists(ctx context.Context, id int64) (bool, error) {
	return s.rowExists(ctx, "SELECT 1 FROM resource_categories WHERE category_id = ?", id)
}

// ContentCategoryExists reports whether a content category row exists.
func (s *Store) ContentCategoryExists(ctx context.Context, id int64) (bool, error) {
	return s.rowExists(ctx, "SELECT 1 FROM content_categories WHERE category_id = ?", id)
}

// ResourceExists reports whether a resource row exists.
func (s *Store) ResourceExists(ctx context.Context, id int64) (bool, error) {
	return s.rowExists(ctx, "SELECT 1 FROM resources WHERE resource_id = ?", id)
}

func (s *Store) rowExists(ctx context.Context, query string, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
