// Package localcache is a SQLite-backed fallback store for assessment
// responses. When the primary database is unreachable, responses are
// written here keyed by (email, role_id, competency_id) and replayed
// on the next successful login.
package localcache

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"idp-tool/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_responses (
	email TEXT NOT NULL,
	role_id INTEGER NOT NULL,
	competency_id INTEGER NOT NULL,
	assessment_level INTEGER,
	notes TEXT NOT NULL DEFAULT '',
	saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (email, role_id, competency_id)
)`

// Store is a local response cache backed by a SQLite file
type Store struct {
	db *sql.DB
}

// Bucket identifies one user's cached responses for one role
type Bucket struct {
	Email  string
	RoleID int
}

// Open opens (or creates) the cache database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResponse inserts or replaces one cached response
func (s *Store) SaveResponse(ctx context.Context, email string, roleID, competencyID int, response models.Response) error {
	query := `
		INSERT INTO local_responses (email, role_id, competency_id, assessment_level, notes, saved_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (email, role_id, competency_id)
		DO UPDATE SET assessment_level = excluded.assessment_level, notes = excluded.notes, saved_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, email, roleID, competencyID, response.AssessmentLevel, response.Notes); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// GetBucket returns the cached responses for one user and role,
// keyed by competency id
func (s *Store) GetBucket(ctx context.Context, email string, roleID int) (map[int]models.Response, error) {
	query := `
		SELECT competency_id, assessment_level, notes
		FROM local_responses
		WHERE email = ? AND role_id = ?
	`
	rows, err := s.db.QueryContext(ctx, query, email, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to read local cache: %w", err)
	}
	defer rows.Close()

	responses := make(map[int]models.Response)
	for rows.Next() {
		var competencyID int
		var response models.Response
		if err := rows.Scan(&competencyID, &response.AssessmentLevel, &response.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan cached response: %w", err)
		}
		responses[competencyID] = response
	}

	return responses, rows.Err()
}

// Buckets returns the distinct (email, role) buckets cached for a user
func (s *Store) Buckets(ctx context.Context, email string) ([]Bucket, error) {
	query := `
		SELECT DISTINCT email, role_id
		FROM local_responses
		WHERE email = ?
		ORDER BY role_id
	`
	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache buckets: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Email, &b.RoleID); err != nil {
			return nil, fmt.Errorf("failed to scan cache bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// DeleteBucket removes all cached responses for one user and role
func (s *Store) DeleteBucket(ctx context.Context, email string, roleID int) error {
	query := `DELETE FROM local_responses WHERE email = ? AND role_id = ?`
	if _, err := s.db.ExecContext(ctx, query, email, roleID); err != nil {
		return fmt.Errorf("failed to delete cache bucket: %w", err)
	}
	return nil
}
