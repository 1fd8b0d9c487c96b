package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"idp-tool/internal/models"
)

// ShareRepository handles database operations for shares
type ShareRepository struct {
	db *sql.DB
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

const shareColumns = `
	id, original_user_id, original_user_email, collaborator_email, role_id,
	shared_at, feedback_submitted, feedback_submitted_at, share_token
`

func scanShare(row interface{ Scan(...any) error }) (*models.Share, error) {
	var share models.Share
	err := row.Scan(
		&share.ID,
		&share.OriginalUserID,
		&share.OriginalUserEmail,
		&share.CollaboratorEmail,
		&share.RoleID,
		&share.SharedAt,
		&share.FeedbackSubmitted,
		&share.FeedbackSubmittedAt,
		&share.ShareToken,
	)
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// Create stores a new share
func (r *ShareRepository) Create(share *models.Share) error {
	query := `
		INSERT INTO shares (id, original_user_id, original_user_email, collaborator_email, role_id, share_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING shared_at
	`

	return r.db.QueryRow(
		query,
		share.ID,
		share.OriginalUserID,
		share.OriginalUserEmail,
		share.CollaboratorEmail,
		share.RoleID,
		share.ShareToken,
	).Scan(&share.SharedAt)
}

// GetByID retrieves a share by id, or nil if it no longer exists
func (r *ShareRepository) GetByID(id uuid.UUID) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE id = $1`

	share, err := scanShare(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return share, nil
}

// GetByToken retrieves a share by its collaborate token, or nil if unknown
func (r *ShareRepository) GetByToken(token string) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE share_token = $1`

	share, err := scanShare(r.db.QueryRow(query, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return share, nil
}

// ListByOwner retrieves the shares a user has created, newest first
func (r *ShareRepository) ListByOwner(ownerID uuid.UUID) ([]models.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE original_user_id = $1
		ORDER BY shared_at DESC
	`
	return r.listShares(query, ownerID)
}

// ListByCollaborator retrieves the shares addressed to an email,
// matched case-insensitively, newest first
func (r *ShareRepository) ListByCollaborator(email string) ([]models.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE LOWER(collaborator_email) = LOWER($1)
		ORDER BY shared_at DESC
	`
	return r.listShares(query, email)
}

// ListIDsByOwnerCollaboratorRole returns the ids of existing shares
// from one owner to one collaborator for one role. Used for duplicate
// detection at share-creation time.
func (r *ShareRepository) ListIDsByOwnerCollaboratorRole(ownerID uuid.UUID, collaboratorEmail string, roleID int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM shares
		WHERE original_user_id = $1 AND LOWER(collaborator_email) = LOWER($2) AND role_id = $3
	`

	rows, err := r.db.Query(query, ownerID, collaboratorEmail, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// MarkFeedbackSubmitted finalizes the feedback on a share
func (r *ShareRepository) MarkFeedbackSubmitted(id uuid.UUID) error {
	query := `
		UPDATE shares
		SET feedback_submitted = TRUE, feedback_submitted_at = NOW()
		WHERE id = $1
	`

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

// Delete removes a share
func (r *ShareRepository) Delete(id uuid.UUID) error {
	query := `DELETE FROM shares WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}

func (r *ShareRepository) listShares(query string, args ...any) ([]models.Share, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	shares := []models.Share{}
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *share)
	}

	return shares, rows.Err()
}
