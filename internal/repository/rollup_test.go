package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Repository{db: sqlx.NewDb(db, "sqlmock")}, mock
}

var winnerColumns = []string{"telegram_id", "first_name", "website", "web_username", "referral_count"}

// The working set must be emptied by the same statement that reads it, so a
// submission committed while the close runs is either archived or kept for
// the next close. The ordered expectations fail if a separate read or an
// unbounded clear reappears.
func TestRepository_CloseWeek(t *testing.T) {
	t.Run("Archives and drains the working set in one statement", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT current_week FROM week_tracker").
			WillReturnRows(sqlmock.NewRows([]string{"current_week"}).AddRow(3))
		mock.ExpectQuery("DELETE FROM this_week_winners").
			WillReturnRows(sqlmock.NewRows(winnerColumns).
				AddRow(100, "Bob", "winfix.live", "bob", 7).
				AddRow(101, "Eve", "ve567.live", "eve", 4))
		mock.ExpectExec("INSERT INTO weekly_winners").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("UPDATE referrals").
			WillReturnResult(sqlmock.NewResult(0, 11))
		mock.ExpectQuery("SELECT current_week FROM week_tracker").
			WillReturnRows(sqlmock.NewRows([]string{"current_week"}).AddRow(3))
		mock.ExpectQuery(`UPDATE week_tracker SET current_week = current_week \+ 1 RETURNING current_week`).
			WillReturnRows(sqlmock.NewRows([]string{"current_week"}).AddRow(4))
		mock.ExpectCommit()

		week, winners, err := repo.CloseWeek(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 3, week)
		require.Len(t, winners, 2)
		assert.Equal(t, int64(100), winners[0].TelegramID)
		assert.Equal(t, 7, winners[0].ReferralCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty working set rolls back with ErrNothingToArchive", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT current_week FROM week_tracker").
			WillReturnRows(sqlmock.NewRows([]string{"current_week"}).AddRow(5))
		mock.ExpectQuery("DELETE FROM this_week_winners").
			WillReturnRows(sqlmock.NewRows(winnerColumns))
		mock.ExpectRollback()

		_, _, err := repo.CloseWeek(context.Background())

		assert.ErrorIs(t, err, ErrNothingToArchive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_CloseMonth(t *testing.T) {
	aggregateColumns := []string{"telegram_id", "first_name", "website", "web_username", "total_referrals"}

	t.Run("Aggregates and drains weekly history in one statement", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM weekly_winners").
			WillReturnRows(sqlmock.NewRows(aggregateColumns).
				AddRow(100, "Bob", "winfix.live", "bob", 12).
				AddRow(101, "Eve", "ve567.live", "eve", 9))
		mock.ExpectExec("DELETE FROM monthly_winners").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO monthly_winners").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM this_week_winners").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE referrals").
			WillReturnResult(sqlmock.NewResult(0, 20))
		mock.ExpectQuery("SELECT current_week FROM week_tracker").
			WillReturnRows(sqlmock.NewRows([]string{"current_week"}).AddRow(4))
		mock.ExpectExec("UPDATE week_tracker SET current_week = 1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		winners, err := repo.CloseMonth(context.Background(), "June 2023")

		assert.NoError(t, err)
		require.Len(t, winners, 2)
		assert.Equal(t, "June 2023", winners[0].MonthYear)
		assert.Equal(t, int64(100), winners[0].TelegramID)
		assert.Equal(t, 12, winners[0].ReferralCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty weekly history rolls back with ErrNothingToArchive", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM weekly_winners").
			WillReturnRows(sqlmock.NewRows(aggregateColumns))
		mock.ExpectRollback()

		_, err := repo.CloseMonth(context.Background(), "June 2023")

		assert.ErrorIs(t, err, ErrNothingToArchive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
