package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"idp-tool/internal/models"
)

// SnapshotRepository handles database operations for share snapshots
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// CreateAll stores the frozen responses for a share
func (r *SnapshotRepository) CreateAll(snapshots []models.ShareSnapshot) error {
	query := `
		INSERT INTO share_snapshots (share_id, competency_id, assessment_level, notes)
		VALUES ($1, $2, $3, $4)
	`

	for _, snapshot := range snapshots {
		_, err := r.db.Exec(
			query,
			snapshot.ShareID,
			snapshot.CompetencyID,
			snapshot.AssessmentLevel,
			snapshot.Notes,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByShare retrieves the snapshots of a share, keyed by competency id
func (r *SnapshotRepository) GetByShare(shareID uuid.UUID) (map[int]models.ShareSnapshot, error) {
	query := `
		SELECT share_id, competency_id, assessment_level, notes
		FROM share_snapshots
		WHERE share_id = $1
	`

	rows, err := r.db.Query(query, shareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make(map[int]models.ShareSnapshot)
	for rows.Next() {
		var snapshot models.ShareSnapshot
		err := rows.Scan(
			&snapshot.ShareID,
			&snapshot.CompetencyID,
			&snapshot.AssessmentLevel,
			&snapshot.Notes,
		)
		if err != nil {
			return nil, err
		}
		snapshots[snapshot.CompetencyID] = snapshot
	}

	return snapshots, rows.Err()
}

// DeleteByShare removes all snapshots of a share
func (r *SnapshotRepository) DeleteByShare(shareID uuid.UUID) error {
	query := `DELETE FROM share_snapshots WHERE share_id = $1`
	_, err := r.db.Exec(query, shareID)
	return err
}
