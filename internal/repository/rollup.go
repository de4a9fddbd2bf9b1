package repository

import (
	"context"
	"fmt"

	"referral_rewards_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// closeWeekDrainQuery empties the working set and reads it back in a single
// statement. Under read committed a separate SELECT-then-DELETE pair takes two
// snapshots, so a submission committed between them would be deleted without
// ever being archived. With one statement a concurrent submission is either
// archived here or left for the next close.
const closeWeekDrainQuery = `
	WITH removed AS (
		DELETE FROM this_week_winners
		RETURNING telegram_id, first_name, website, web_username, referral_count
	)
	SELECT telegram_id, first_name, website, web_username, referral_count
	FROM removed
	ORDER BY referral_count DESC, telegram_id`

// CloseWeek archives the working set into weekly history, flips 'new'
// referrals to 'counted', truncates the working set and advances the week
// counter, all in one transaction. It returns the pre-increment week number
// and the archived winners. ErrNothingToArchive is returned (and nothing is
// changed) when the working set is empty.
func (r *Repository) CloseWeek(ctx context.Context) (int, []*model.ThisWeekWinner, error) {
	var (
		weekNumber int
		archived   []*model.ThisWeekWinner
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		week, err := currentWeek(ctx, tx)
		if err != nil {
			return err
		}
		weekNumber = week

		var rows []thisWeekWinnerRow
		if err := tx.SelectContext(ctx, &rows, closeWeekDrainQuery); err != nil {
			return fmt.Errorf("failed to drain working set: %w", err)
		}
		if len(rows) == 0 {
			return ErrNothingToArchive
		}
		archived = thisWeekWinnersFromRows(rows)

		builder := squirrel.
			Insert("weekly_winners").
			Columns("week_number", "telegram_id", "first_name", "website", "web_username", "referral_count")
		for _, row := range rows {
			builder = builder.Values(week, row.TelegramID, row.FirstName, row.Website, row.WebUsername, row.ReferralCount)
		}
		query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build weekly archive query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to archive weekly winners: %w", err)
		}

		if err := endOrCountReferralsTx(ctx, tx, model.ReferralStatusCounted, []string{
			string(model.ReferralStatusNew),
		}); err != nil {
			return err
		}

		if _, err := incrementWeekTx(ctx, tx); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return weekNumber, archived, nil
}

type monthlyAggregateRow struct {
	TelegramID    int64  `db:"telegram_id"`
	FirstName     string `db:"first_name"`
	Website       string `db:"website"`
	WebUsername   string `db:"web_username"`
	ReferralCount int    `db:"total_referrals"`
}

// closeMonthDrainQuery drains weekly history and aggregates it in one
// statement, for the same reason as closeWeekDrainQuery: rows a concurrent
// CloseWeek commits mid-close must not be deleted unarchived. Ties resolve by
// insertion order.
const closeMonthDrainQuery = `
	WITH removed AS (
		DELETE FROM weekly_winners
		RETURNING id, telegram_id, first_name, website, web_username, referral_count
	)
	SELECT telegram_id,
		MAX(first_name) AS first_name,
		MAX(website) AS website,
		MAX(web_username) AS web_username,
		SUM(referral_count) AS total_referrals
	FROM removed
	GROUP BY telegram_id
	ORDER BY total_referrals DESC, MIN(id)`

// CloseMonth folds weekly history into monthly history under monthYear,
// clears weekly state, ends every non-terminal referral and resets the week
// counter to 1, all in one transaction. Monthly history is replaced, not
// appended: it only ever holds the most recently closed month.
func (r *Repository) CloseMonth(ctx context.Context, monthYear string) ([]*model.MonthlyWinner, error) {
	var archived []*model.MonthlyWinner

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		var rows []monthlyAggregateRow
		if err := tx.SelectContext(ctx, &rows, closeMonthDrainQuery); err != nil {
			return fmt.Errorf("failed to drain weekly winners: %w", err)
		}
		if len(rows) == 0 {
			return ErrNothingToArchive
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM monthly_winners"); err != nil {
			return fmt.Errorf("failed to clear monthly winners: %w", err)
		}

		builder := squirrel.
			Insert("monthly_winners").
			Columns("month_year", "telegram_id", "first_name", "website", "web_username", "referral_count")
		for _, row := range rows {
			builder = builder.Values(monthYear, row.TelegramID, row.FirstName, row.Website, row.WebUsername, row.ReferralCount)
		}
		insertQuery, insertArgs, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build monthly archive query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("failed to archive monthly winners: %w", err)
		}

		// Pending submissions are discarded at month close, not archived.
		if _, err := tx.ExecContext(ctx, "DELETE FROM this_week_winners"); err != nil {
			return fmt.Errorf("failed to clear working set: %w", err)
		}

		if err := endOrCountReferralsTx(ctx, tx, model.ReferralStatusEnd, []string{
			string(model.ReferralStatusNew),
			string(model.ReferralStatusCounted),
		}); err != nil {
			return err
		}

		if err := resetWeekTx(ctx, tx); err != nil {
			return err
		}

		archived = make([]*model.MonthlyWinner, len(rows))
		for i, row := range rows {
			archived[i] = &model.MonthlyWinner{
				MonthYear:     monthYear,
				TelegramID:    row.TelegramID,
				FirstName:     row.FirstName,
				Website:       row.Website,
				WebUsername:   row.WebUsername,
				ReferralCount: row.ReferralCount,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func endOrCountReferralsTx(ctx context.Context, tx *sqlx.Tx, target model.ReferralStatus, from []string) error {
	query, args, err := squirrel.
		Update("referrals").
		Set("referral_status", string(target)).
		Where(squirrel.Eq{"referral_status": from}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update referral statuses: %w", err)
	}
	return nil
}
