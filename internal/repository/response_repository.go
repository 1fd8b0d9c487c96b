package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"idp-tool/internal/models"
)

// ResponseRepository handles database operations for assessment responses
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Upsert creates or updates a user's response for one competency
func (r *ResponseRepository) Upsert(response *models.UserResponse) error {
	query := `
		INSERT INTO user_responses (user_id, role_id, competency_id, assessment_level, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, role_id, competency_id)
		DO UPDATE SET
			assessment_level = EXCLUDED.assessment_level,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING updated_at
	`

	return r.db.QueryRow(
		query,
		response.UserID,
		response.RoleID,
		response.CompetencyID,
		response.AssessmentLevel,
		response.Notes,
	).Scan(&response.UpdatedAt)
}

// GetByUserAndRole retrieves all responses of one user for one role,
// keyed by competency id
func (r *ResponseRepository) GetByUserAndRole(userID uuid.UUID, roleID int) (map[int]models.Response, error) {
	query := `
		SELECT competency_id, assessment_level, notes
		FROM user_responses
		WHERE user_id = $1 AND role_id = $2
	`

	rows, err := r.db.Query(query, userID, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make(map[int]models.Response)
	for rows.Next() {
		var competencyID int
		var response models.Response
		if err := rows.Scan(&competencyID, &response.AssessmentLevel, &response.Notes); err != nil {
			return nil, err
		}
		responses[competencyID] = response
	}

	return responses, rows.Err()
}

// Delete removes a user's response for one competency
func (r *ResponseRepository) Delete(userID uuid.UUID, roleID, competencyID int) error {
	query := `
		DELETE FROM user_responses
		WHERE user_id = $1 AND role_id = $2 AND competency_id = $3
	`
	_, err := r.db.Exec(query, userID, roleID, competencyID)
	return err
}
