package scheduler

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"idp-tool/internal/config"
	"idp-tool/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSchedulerCleansUpStaleTokens(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec(`DELETE FROM login_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	sched := NewScheduler(repository.NewLoginTokenRepository(db), &config.SchedulerConfig{
		Enabled:              true,
		TokenCleanupInterval: 10 * time.Millisecond,
	})
	sched.Start()
	defer sched.Stop()

	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerDisabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sched := NewScheduler(repository.NewLoginTokenRepository(db), &config.SchedulerConfig{
		Enabled:              false,
		TokenCleanupInterval: time.Millisecond,
	})
	sched.Start()
	defer sched.Stop()

	time.Sleep(20 * time.Millisecond)
	// No queries expected, none should have run
	require.NoError(t, mock.ExpectationsWereMet())
}
