package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SEORecord holds per-entity SEO metadata created after a successful save.
type SEORecord struct {
	ID              int64
	EntityType      string // "blog" | "article" | "resource"
	EntityID        int64
	MetaTitle       string
	MetaDescription string
	OGImageURL      string
	CreatedAt       int64
}

// CreateSEORecord inserts (or replaces) the SEO record for an entity.
func (s *Store) CreateSEORecord(ctx context.Context, rec *SEORecord) (*SEORecord, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO seo_records (entity_type, entity_id, meta_title, meta_description, og_image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			meta_title = excluded.meta_title,
			meta_description = excluded.meta_description,
			og_image_url = excluded.og_image_url`,
		rec.EntityType, rec.EntityID, rec.MetaTitle, rec.MetaDescription, rec.OGImageURL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create seo record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rec.ID = id
	rec.CreatedAt = now
	return rec, nil
}

// FindSEORecord retrieves the SEO record for an entity. Returns nil if absent.
func (s *Store) FindSEORecord(ctx context.Context, entityType string, entityID int64) (*SEORecord, error) {
	var rec SEORecord
	err := s.db.QueryRowContext(ctx,
		"SELECT seo_id, entity_type, entity_id, meta_title, meta_description, og_image_url, created_at FROM seo_records WHERE entity_type = ? AND entity_id = ?",
		entityType, entityID).Scan(&rec.ID, &rec.EntityType, &rec.EntityID, &rec.MetaTitle, &rec.MetaDescription, &rec.OGImageURL, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seo lookup failed: %w", err)
	}
	return &rec, nil
}
