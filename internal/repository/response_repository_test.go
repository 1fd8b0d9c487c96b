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

func intPtr(v int) *int { return &v }

func TestResponseUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResponseRepository(db)
	userID := uuid.New()
	now := time.Now()

	response := &models.UserResponse{
		UserID:          userID,
		RoleID:          1,
		CompetencyID:    101,
		AssessmentLevel: intPtr(3),
		Notes:           "getting there",
	}

	mock.ExpectQuery(`INSERT INTO user_responses`).
		WithArgs(userID, 1, 101, 3, "getting there").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	err = repo.Upsert(response)
	require.NoError(t, err)
	assert.Equal(t, now, response.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseUpsertTwiceKeepsLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResponseRepository(db)
	userID := uuid.New()

	// Same key twice: the conflict clause turns the second insert into
	// an update, so both round-trips succeed against one row
	first := time.Now()
	second := first.Add(time.Minute)

	mock.ExpectQuery(`INSERT INTO user_responses`).
		WithArgs(userID, 1, 101, 2, "draft").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(first))
	mock.ExpectQuery(`INSERT INTO user_responses`).
		WithArgs(userID, 1, 101, 4, "final").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(second))

	err = repo.Upsert(&models.UserResponse{UserID: userID, RoleID: 1, CompetencyID: 101, AssessmentLevel: intPtr(2), Notes: "draft"})
	require.NoError(t, err)
	err = repo.Upsert(&models.UserResponse{UserID: userID, RoleID: 1, CompetencyID: 101, AssessmentLevel: intPtr(4), Notes: "final"})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserAndRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResponseRepository(db)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"competency_id", "assessment_level", "notes"}).
		AddRow(101, 3, "solid").
		AddRow(102, nil, "notes only")

	mock.ExpectQuery(`SELECT competency_id, assessment_level, notes`).
		WithArgs(userID, 1).
		WillReturnRows(rows)

	responses, err := repo.GetByUserAndRole(userID, 1)
	require.NoError(t, err)
	require.Len(t, responses, 2)

	assert.Equal(t, 3, *responses[101].AssessmentLevel)
	assert.Equal(t, "solid", responses[101].Notes)
	assert.Nil(t, responses[102].AssessmentLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
