package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idp-tool/internal/localcache"
	"idp-tool/internal/models"
	"idp-tool/internal/repository"
)

func newResponseService(t *testing.T, withCache bool) (*ResponseService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var cache *localcache.Store
	if withCache {
		cache, err = localcache.Open(filepath.Join(t.TempDir(), "cache.db"))
		require.NoError(t, err)
		t.Cleanup(func() { cache.Close() })
	}

	return NewResponseService(repository.NewResponseRepository(db), cache, testDataset()), mock
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "user@example.com"}
}

func TestSaveResponseValidation(t *testing.T) {
	svc, _ := newResponseService(t, false)
	user := testUser()

	err := svc.SaveResponse(user, 99, 101, models.Response{Notes: "x"})
	assert.ErrorIs(t, err, ErrUnknownRole)

	err = svc.SaveResponse(user, 1, 999, models.Response{Notes: "x"})
	assert.ErrorIs(t, err, ErrUnknownCompetency)

	err = svc.SaveResponse(user, 1, 101, models.Response{AssessmentLevel: intPtr(42)})
	assert.ErrorIs(t, err, ErrInvalidAssessmentLevel)
}

func TestSaveResponseFallsBackToCache(t *testing.T) {
	svc, mock := newResponseService(t, true)
	user := testUser()

	mock.ExpectQuery(`INSERT INTO user_responses`).
		WillReturnError(errors.New("connection refused"))

	err := svc.SaveResponse(user, 1, 101, models.Response{AssessmentLevel: intPtr(2), Notes: "offline edit"})
	require.NoError(t, err)

	// The database stays down, so the load also comes from the cache
	mock.ExpectQuery(`SELECT competency_id, assessment_level, notes`).
		WillReturnError(errors.New("connection refused"))

	responses, err := svc.LoadResponses(user, 1)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "offline edit", responses[101].Notes)
}

func TestSaveResponseNoCacheSurfacesError(t *testing.T) {
	svc, mock := newResponseService(t, false)
	user := testUser()

	mock.ExpectQuery(`INSERT INTO user_responses`).
		WillReturnError(errors.New("connection refused"))

	err := svc.SaveResponse(user, 1, 101, models.Response{Notes: "x"})
	assert.Error(t, err)
}

func TestMigrateLocalDataClearsBucket(t *testing.T) {
	svc, mock := newResponseService(t, true)
	user := testUser()

	// Seed the cache as if two edits happened offline
	mock.ExpectQuery(`INSERT INTO user_responses`).WillReturnError(errors.New("down"))
	mock.ExpectQuery(`INSERT INTO user_responses`).WillReturnError(errors.New("down"))
	require.NoError(t, svc.SaveResponse(user, 1, 101, models.Response{AssessmentLevel: intPtr(2), Notes: "a"}))
	require.NoError(t, svc.SaveResponse(user, 1, 102, models.Response{AssessmentLevel: intPtr(3), Notes: "b"}))

	// The database is back, both entries replay
	mock.ExpectQuery(`INSERT INTO user_responses`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`INSERT INTO user_responses`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	require.NoError(t, svc.MigrateLocalData(user))

	// The replayed bucket is gone: a later load with the database down
	// finds nothing cached
	mock.ExpectQuery(`SELECT competency_id, assessment_level, notes`).
		WillReturnError(errors.New("down"))
	responses, err := svc.LoadResponses(user, 1)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestMigrateLocalDataKeepsBucketOnFailure(t *testing.T) {
	svc, mock := newResponseService(t, true)
	user := testUser()

	mock.ExpectQuery(`INSERT INTO user_responses`).WillReturnError(errors.New("down"))
	require.NoError(t, svc.SaveResponse(user, 1, 101, models.Response{Notes: "a"}))

	// The replay fails, so the bucket must survive
	mock.ExpectQuery(`INSERT INTO user_responses`).WillReturnError(errors.New("still down"))
	require.NoError(t, svc.MigrateLocalData(user))

	mock.ExpectQuery(`SELECT competency_id, assessment_level, notes`).
		WillReturnError(errors.New("down"))
	responses, err := svc.LoadResponses(user, 1)
	require.NoError(t, err)
	assert.Len(t, responses, 1)
}

func TestCompletedCount(t *testing.T) {
	responses := map[int]models.Response{
		101: {AssessmentLevel: intPtr(2), Notes: "done"},
		102: {AssessmentLevel: intPtr(3), Notes: "   "},
		103: {Notes: "no rating"},
		104: {},
	}

	assert.Equal(t, 1, CompletedCount(responses))
}

func TestProgress(t *testing.T) {
	svc, mock := newResponseService(t, false)
	user := testUser()

	mock.ExpectQuery(`SELECT competency_id, assessment_level, notes`).
		WithArgs(user.ID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"competency_id", "assessment_level", "notes"}).
			AddRow(101, 2, "done").
			AddRow(102, nil, "rating missing"))

	progress, err := svc.Progress(user, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.TotalCompetencies)
	assert.Equal(t, 1, progress.CompletedCompetencies)
	assert.InDelta(t, 50.0, progress.PercentComplete, 0.001)
	assert.False(t, progress.IsComplete)
}

func TestProgressComplete(t *testing.T) {
	svc, mock := newResponseService(t, false)
	user := testUser()

	mock.ExpectQuery(`SELECT competency_id, assessment_level, notes`).
		WithArgs(user.ID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"competency_id", "assessment_level", "notes"}).
			AddRow(101, 2, "done").
			AddRow(102, 3, "also done"))

	progress, err := svc.Progress(user, 1)
	require.NoError(t, err)
	assert.True(t, progress.IsComplete)
	assert.InDelta(t, 100.0, progress.PercentComplete, 0.001)
}
