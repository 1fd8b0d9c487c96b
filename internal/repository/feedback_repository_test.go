package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp-tool/internal/models"
)

func TestFeedbackUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFeedbackRepository(db)
	shareID := uuid.New()
	rowID := uuid.New()
	now := time.Now()

	feedback := &models.CollaboratorFeedback{
		ShareID:                     shareID,
		CompetencyID:                101,
		CollaboratorAssessmentLevel: intPtr(4),
		CollaboratorNotes:           "strong in practice",
	}

	mock.ExpectQuery(`INSERT INTO collaborator_feedback`).
		WithArgs(sqlmock.AnyArg(), shareID, 101, 4, "strong in practice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(rowID, now))

	err = repo.Upsert(feedback)
	require.NoError(t, err)
	assert.Equal(t, rowID, feedback.ID)
	assert.Equal(t, now, feedback.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasAnyContent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFeedbackRepository(db)
	shareID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	started, err := repo.HasAnyContent(shareID)
	require.NoError(t, err)
	assert.True(t, started)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByShare(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFeedbackRepository(db)
	shareID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "share_id", "competency_id", "collaborator_assessment_level", "collaborator_notes", "updated_at"}).
		AddRow(uuid.New(), shareID, 101, 4, "good", now).
		AddRow(uuid.New(), shareID, 102, nil, "", now)

	mock.ExpectQuery(`FROM collaborator_feedback`).
		WithArgs(shareID).
		WillReturnRows(rows)

	feedback, err := repo.GetByShare(shareID)
	require.NoError(t, err)
	require.Len(t, feedback, 2)
	assert.Equal(t, 4, *feedback[101].CollaboratorAssessmentLevel)
	assert.Nil(t, feedback[102].CollaboratorAssessmentLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
