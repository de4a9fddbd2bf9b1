package repository

import (
	"context"
	"fmt"

	"referral_rewards_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type thisWeekWinnerRow struct {
	TelegramID    int64  `db:"telegram_id"`
	FirstName     string `db:"first_name"`
	Website       string `db:"website"`
	WebUsername   string `db:"web_username"`
	ReferralCount int    `db:"referral_count"`
}

type weeklyWinnerRow struct {
	ID            int64  `db:"id"`
	WeekNumber    int    `db:"week_number"`
	TelegramID    int64  `db:"telegram_id"`
	FirstName     string `db:"first_name"`
	Website       string `db:"website"`
	WebUsername   string `db:"web_username"`
	ReferralCount int    `db:"referral_count"`
}

type monthlyWinnerRow struct {
	ID            int64  `db:"id"`
	MonthYear     string `db:"month_year"`
	TelegramID    int64  `db:"telegram_id"`
	FirstName     string `db:"first_name"`
	Website       string `db:"website"`
	WebUsername   string `db:"web_username"`
	ReferralCount int    `db:"referral_count"`
}

// UpsertThisWeekWinner records a submission in the working set. Resubmission
// overwrites the previous website, username and count.
func (r *Repository) UpsertThisWeekWinner(ctx context.Context, winner *model.ThisWeekWinner) error {
	query, args, err := squirrel.
		Insert("this_week_winners").
		SetMap(map[string]interface{}{
			"telegram_id":    winner.TelegramID,
			"first_name":     winner.FirstName,
			"website":        winner.Website,
			"web_username":   winner.WebUsername,
			"referral_count": winner.ReferralCount,
		}).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			website = EXCLUDED.website,
			web_username = EXCLUDED.web_username,
			referral_count = EXCLUDED.referral_count`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build winner upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert winner: %w", err)
	}
	return nil
}

func (r *Repository) ListThisWeekWinners(ctx context.Context) ([]*model.ThisWeekWinner, error) {
	var rows []thisWeekWinnerRow
	if err := r.selectThisWeekWinners(ctx, r.db, &rows); err != nil {
		return nil, err
	}
	return thisWeekWinnersFromRows(rows), nil
}

type sqlxSelector interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (r *Repository) selectThisWeekWinners(ctx context.Context, q sqlxSelector, dest *[]thisWeekWinnerRow) error {
	query, args, err := squirrel.
		Select("telegram_id", "first_name", "website", "web_username", "referral_count").
		From("this_week_winners").
		OrderBy("referral_count DESC", "telegram_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if err := q.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("failed to list this week winners: %w", err)
	}
	return nil
}

func thisWeekWinnersFromRows(rows []thisWeekWinnerRow) []*model.ThisWeekWinner {
	winners := make([]*model.ThisWeekWinner, len(rows))
	for i, row := range rows {
		winners[i] = &model.ThisWeekWinner{
			TelegramID:    row.TelegramID,
			FirstName:     row.FirstName,
			Website:       row.Website,
			WebUsername:   row.WebUsername,
			ReferralCount: row.ReferralCount,
		}
	}
	return winners
}

func (r *Repository) ListWeeklyWinners(ctx context.Context) ([]*model.WeeklyWinner, error) {
	query, args, err := squirrel.
		Select("id", "week_number", "telegram_id", "first_name", "website", "web_username", "referral_count").
		From("weekly_winners").
		OrderBy("week_number", "referral_count DESC", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []weeklyWinnerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list weekly winners: %w", err)
	}

	winners := make([]*model.WeeklyWinner, len(rows))
	for i, row := range rows {
		winners[i] = &model.WeeklyWinner{
			ID:            row.ID,
			WeekNumber:    row.WeekNumber,
			TelegramID:    row.TelegramID,
			FirstName:     row.FirstName,
			Website:       row.Website,
			WebUsername:   row.WebUsername,
			ReferralCount: row.ReferralCount,
		}
	}
	return winners, nil
}

func (r *Repository) ListMonthlyWinners(ctx context.Context) ([]*model.MonthlyWinner, error) {
	query, args, err := squirrel.
		Select("id", "month_year", "telegram_id", "first_name", "website", "web_username", "referral_count").
		From("monthly_winners").
		OrderBy("referral_count DESC", "id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []monthlyWinnerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list monthly winners: %w", err)
	}

	winners := make([]*model.MonthlyWinner, len(rows))
	for i, row := range rows {
		winners[i] = &model.MonthlyWinner{
			ID:            row.ID,
			MonthYear:     row.MonthYear,
			TelegramID:    row.TelegramID,
			FirstName:     row.FirstName,
			Website:       row.Website,
			WebUsername:   row.WebUsername,
			ReferralCount: row.ReferralCount,
		}
	}
	return winners, nil
}

var _ sqlxSelector = (*sqlx.Tx)(nil)
