package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"idp-tool/internal/models"
)

// LoginTokenRepository handles database operations for magic-link tokens
type LoginTokenRepository struct {
	db *sql.DB
}

// NewLoginTokenRepository creates a new login token repository
func NewLoginTokenRepository(db *sql.DB) *LoginTokenRepository {
	return &LoginTokenRepository{db: db}
}

// Create stores a new login token
func (r *LoginTokenRepository) Create(token *models.LoginToken) error {
	query := `
		INSERT INTO login_tokens (id, user_id, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	return r.db.QueryRow(
		query,
		token.ID,
		token.UserID,
		token.SecretHash,
		token.ExpiresAt,
	).Scan(&token.CreatedAt)
}

// GetByID retrieves a login token by id
func (r *LoginTokenRepository) GetByID(id uuid.UUID) (*models.LoginToken, error) {
	var token models.LoginToken
	query := `
		SELECT id, user_id, secret_hash, expires_at, used_at, created_at
		FROM login_tokens
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.SecretHash,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// DeleteStale removes tokens that are expired or already consumed
func (r *LoginTokenRepository) DeleteStale() (int64, error) {
	query := `DELETE FROM login_tokens WHERE expires_at < NOW() OR used_at IS NOT NULL`

	result, err := r.db.Exec(query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkUsed marks a token as consumed so it cannot be replayed
func (r *LoginTokenRepository) MarkUsed(id uuid.UUID) error {
	query := `UPDATE login_tokens SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
