package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"idp-tool/internal/models"
)

// FeedbackRepository handles database operations for collaborator feedback
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Upsert creates or updates the feedback for one competency of a share
func (r *FeedbackRepository) Upsert(feedback *models.CollaboratorFeedback) error {
	query := `
		INSERT INTO collaborator_feedback (id, share_id, competency_id, collaborator_assessment_level, collaborator_notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (share_id, competency_id)
		DO UPDATE SET
			collaborator_assessment_level = EXCLUDED.collaborator_assessment_level,
			collaborator_notes = EXCLUDED.collaborator_notes,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	return r.db.QueryRow(
		query,
		uuid.New(),
		feedback.ShareID,
		feedback.CompetencyID,
		feedback.CollaboratorAssessmentLevel,
		feedback.CollaboratorNotes,
	).Scan(&feedback.ID, &feedback.UpdatedAt)
}

// GetByShare retrieves all feedback rows of a share, keyed by competency id
func (r *FeedbackRepository) GetByShare(shareID uuid.UUID) (map[int]models.CollaboratorFeedback, error) {
	query := `
		SELECT id, share_id, competency_id, collaborator_assessment_level, collaborator_notes, updated_at
		FROM collaborator_feedback
		WHERE share_id = $1
	`

	rows, err := r.db.Query(query, shareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedback := make(map[int]models.CollaboratorFeedback)
	for rows.Next() {
		var row models.CollaboratorFeedback
		err := rows.Scan(
			&row.ID,
			&row.ShareID,
			&row.CompetencyID,
			&row.CollaboratorAssessmentLevel,
			&row.CollaboratorNotes,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		feedback[row.CompetencyID] = row
	}

	return feedback, rows.Err()
}

// HasAnyContent reports whether a share has at least one feedback row
// with a rating or non-blank notes
func (r *FeedbackRepository) HasAnyContent(shareID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM collaborator_feedback
			WHERE share_id = $1
			  AND (collaborator_assessment_level IS NOT NULL OR btrim(collaborator_notes) <> '')
		)
	`

	var exists bool
	if err := r.db.QueryRow(query, shareID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// DeleteByShare removes all feedback rows of a share
func (r *FeedbackRepository) DeleteByShare(shareID uuid.UUID) error {
	query := `DELETE FROM collaborator_feedback WHERE share_id = $1`
	_, err := r.db.Exec(query, shareID)
	return err
}
