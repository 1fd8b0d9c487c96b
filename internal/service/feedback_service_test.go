package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp-tool/internal/models"
	"idp-tool/internal/repository"
)

func newFeedbackService(t *testing.T) (*FeedbackService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewFeedbackService(
		repository.NewShareRepository(db),
		repository.NewFeedbackRepository(db),
		testDataset(),
		10*time.Millisecond,
	)
	t.Cleanup(svc.Close)

	return svc, mock
}

func expectShareByID(mock sqlmock.Sqlmock, shareID, ownerID uuid.UUID, submitted bool) {
	mock.ExpectQuery(`FROM shares WHERE id`).
		WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "original_user_id", "original_user_email", "collaborator_email", "role_id",
			"shared_at", "feedback_submitted", "feedback_submitted_at", "share_token",
		}).AddRow(shareID, ownerID, "owner@example.com", "peer@example.com", 1,
			time.Now(), submitted, nil, "tok"))
}

func TestCanUserProvideFeedback(t *testing.T) {
	svc, _ := newFeedbackService(t)

	share := &models.Share{CollaboratorEmail: "Peer@Example.com"}

	assert.True(t, svc.CanUserProvideFeedback(share, "peer@example.com"))
	assert.True(t, svc.CanUserProvideFeedback(share, "PEER@EXAMPLE.COM"))
	assert.False(t, svc.CanUserProvideFeedback(share, "other@example.com"))
	assert.False(t, svc.CanUserProvideFeedback(nil, "peer@example.com"))
}

func TestSaveFeedback(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), false)
	mock.ExpectQuery(`INSERT INTO collaborator_feedback`).
		WithArgs(sqlmock.AnyArg(), shareID, 101, 2, "agree").
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(uuid.New(), time.Now()))

	err := svc.SaveFeedback(shareID, 101, models.Response{AssessmentLevel: intPtr(2), Notes: "agree"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFeedbackAfterSubmitRejected(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), true)

	err := svc.SaveFeedback(shareID, 101, models.Response{Notes: "too late"})
	assert.ErrorIs(t, err, ErrFeedbackSubmitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFeedbackMissingShare(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	mock.ExpectQuery(`FROM shares WHERE id`).
		WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "original_user_id", "original_user_email", "collaborator_email", "role_id",
			"shared_at", "feedback_submitted", "feedback_submitted_at", "share_token",
		}))

	err := svc.SaveFeedback(shareID, 101, models.Response{Notes: "x"})
	assert.ErrorIs(t, err, ErrShareNotFound)
}

func TestSaveFeedbackValidation(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), false)
	err := svc.SaveFeedback(shareID, 999, models.Response{Notes: "x"})
	assert.ErrorIs(t, err, ErrUnknownCompetency)

	expectShareByID(mock, shareID, uuid.New(), false)
	err = svc.SaveFeedback(shareID, 101, models.Response{AssessmentLevel: intPtr(42)})
	assert.ErrorIs(t, err, ErrInvalidAssessmentLevel)
}

func TestSubmitFeedbackIncomplete(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), false)

	// Only one of the two competencies has complete feedback
	mock.ExpectQuery(`FROM collaborator_feedback`).
		WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "share_id", "competency_id", "collaborator_assessment_level", "collaborator_notes", "updated_at"}).
			AddRow(uuid.New(), shareID, 101, 2, "good", time.Now()))

	err := svc.SubmitFeedback(shareID)
	assert.ErrorIs(t, err, ErrIncompleteFeedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitFeedbackBlankNotesIncomplete(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), false)

	mock.ExpectQuery(`FROM collaborator_feedback`).
		WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "share_id", "competency_id", "collaborator_assessment_level", "collaborator_notes", "updated_at"}).
			AddRow(uuid.New(), shareID, 101, 2, "good", time.Now()).
			AddRow(uuid.New(), shareID, 102, 3, "   ", time.Now()))

	err := svc.SubmitFeedback(shareID)
	assert.ErrorIs(t, err, ErrIncompleteFeedback)
}

func TestSubmitFeedback(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), false)

	mock.ExpectQuery(`FROM collaborator_feedback`).
		WithArgs(shareID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "share_id", "competency_id", "collaborator_assessment_level", "collaborator_notes", "updated_at"}).
			AddRow(uuid.New(), shareID, 101, 2, "good", time.Now()).
			AddRow(uuid.New(), shareID, 102, 3, "clear communicator", time.Now()))

	mock.ExpectExec(`UPDATE shares`).
		WithArgs(shareID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.SubmitFeedback(shareID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitFeedbackTwiceRejected(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	expectShareByID(mock, shareID, uuid.New(), true)

	err := svc.SubmitFeedback(shareID)
	assert.ErrorIs(t, err, ErrFeedbackSubmitted)
}

func TestQueueFeedbackWritesAfterQuietPeriod(t *testing.T) {
	svc, mock := newFeedbackService(t)
	shareID := uuid.New()

	// Two rapid edits collapse into one write of the latest value
	mock.MatchExpectationsInOrder(false)
	expectShareByID(mock, shareID, uuid.New(), false)
	mock.ExpectQuery(`INSERT INTO collaborator_feedback`).
		WithArgs(sqlmock.AnyArg(), shareID, 101, 3, "second draft").
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(uuid.New(), time.Now()))

	svc.QueueFeedback(shareID, 101, models.Response{AssessmentLevel: intPtr(2), Notes: "first draft"})
	svc.QueueFeedback(shareID, 101, models.Response{AssessmentLevel: intPtr(3), Notes: "second draft"})

	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 5*time.Millisecond)
}
