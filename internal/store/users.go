package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// User is an author row. Content rows reference users by ID.
type User struct {
	ID         int64
	ExternalID string
	Email      string
	Name       string
	Role       string
	CreatedAt  int64
}

// FindUserByExternalID looks up a user by their external identity.
func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (*User, error) {
	return s.scanUser(ctx, "SELECT user_id, external_id, email, name, role, created_at FROM users WHERE external_id = ?", externalID)
}

// FindUserByEmail looks up a user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(ctx, "SELECT user_id, external_id, email, name, role, created_at FROM users WHERE email = ?", email)
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, externalID, email, name, role string) (*User, error) {
	if name == "" {
		name = "Content Author"
	}
	if role == "" {
		role = "author"
	}
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (external_id, email, name, role, created_at) VALUES (?, ?, ?, ?, ?)",
		nullable(externalID), nullable(email), name, role, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, ExternalID: externalID, Email: email, Name: name, Role: role, CreatedAt: now}, nil
}

// ResolveAuthor resolves the author for a generation run. Fallback chain:
// external ID, then email, then create from what we have, then any existing
// admin/author, then a system user as last resort.
func (s *Store) ResolveAuthor(ctx context.Context, externalID, email string) (*User, error) {
	if externalID != "" {
		u, err := s.FindUserByExternalID(ctx, externalID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return u, nil
		}
	}

	if email != "" {
		u, err := s.FindUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return u, nil
		}
	}

	if externalID != "" || email != "" {
		return s.CreateUser(ctx, externalID, email, "", "author")
	}

	u, err := s.scanUser(ctx,
		"SELECT user_id, external_id, email, name, role, created_at FROM users WHERE role IN ('admin', 'author') ORDER BY user_id LIMIT 1")
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	return s.CreateUser(ctx, "", "", "System", "system")
}

func (s *Store) scanUser(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	var externalID, email sql.NullString
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &externalID, &email, &u.Name, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	u.ExternalID = externalID.String
	u.Email = email.String
	return &u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
