package repository

import (
	"context"
	"errors"
	"fmt"

	"referral_rewards_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const pgUniqueViolation = "23505"

type Referral struct {
	ID               int64   `db:"id"`
	TelegramID       int64   `db:"telegram_id"`
	ReferredID       int64   `db:"referred_id"`
	ReferredUsername *string `db:"referred_username"`
	ReferralStatus   string  `db:"referral_status"`
}

// CreateReferral inserts the referred user (if absent) and the referral edge
// in one transaction. A second referral of the same user trips the unique
// constraint on referred_id and is reported as ErrAlreadyReferred.
func (r *Repository) CreateReferral(ctx context.Context, referral *model.Referral, referredUser *model.User) error {
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := createUserIfAbsentTx(ctx, tx, referredUser); err != nil {
			return err
		}

		query, args, err := squirrel.
			Insert("referrals").
			SetMap(map[string]interface{}{
				"telegram_id":       referral.ReferrerID,
				"referred_id":       referral.ReferredID,
				"referred_username": referral.ReferredUsername,
				"referral_status":   string(model.ReferralStatusNew),
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referral insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert referral: %w", err)
		}

		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAlreadyReferred
		}
		return err
	}
	return nil
}

func (r *Repository) GetNewReferrals(ctx context.Context, referrerID int64) ([]*model.Referral, error) {
	query, args, err := squirrel.
		Select("id", "telegram_id", "referred_id", "referred_username", "referral_status").
		From("referrals").
		Where(squirrel.Eq{
			"telegram_id":     referrerID,
			"referral_status": string(model.ReferralStatusNew),
		}).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Referral
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get referrals: %w", err)
	}

	referrals := make([]*model.Referral, len(rows))
	for i, row := range rows {
		referrals[i] = &model.Referral{
			ID:               row.ID,
			ReferrerID:       row.TelegramID,
			ReferredID:       row.ReferredID,
			ReferredUsername: row.ReferredUsername,
			Status:           model.ReferralStatus(row.ReferralStatus),
		}
	}
	return referrals, nil
}

// MarkReferralEnded moves a single referral to the terminal 'end' status.
func (r *Repository) MarkReferralEnded(ctx context.Context, referralID int64) error {
	query, args, err := squirrel.
		Update("referrals").
		Set("referral_status", string(model.ReferralStatusEnd)).
		Where(squirrel.Eq{"id": referralID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkReferralsCounted flips a referrer's 'new' entries to 'counted'. Running
// it again once everything is counted is a no-op.
func (r *Repository) MarkReferralsCounted(ctx context.Context, referrerID int64) error {
	query, args, err := squirrel.
		Update("referrals").
		Set("referral_status", string(model.ReferralStatusCounted)).
		Where(squirrel.Eq{
			"telegram_id":     referrerID,
			"referral_status": string(model.ReferralStatusNew),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// GetEligibleReferrers returns the referrers with at least minCount 'new'
// entries, before any membership revalidation.
func (r *Repository) GetEligibleReferrers(ctx context.Context, minCount int) ([]int64, error) {
	query, args, err := squirrel.
		Select("telegram_id").
		From("referrals").
		Where(squirrel.Eq{"referral_status": string(model.ReferralStatusNew)}).
		GroupBy("telegram_id").
		Having("COUNT(*) >= ?", minCount).
		OrderBy("telegram_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get eligible referrers: %w", err)
	}
	return ids, nil
}

type leaderboardRow struct {
	TelegramID    int64  `db:"telegram_id"`
	FirstName     string `db:"first_name"`
	ReferralCount int    `db:"referral_count"`
}

// GetLeaderboard ranks referrers by their current 'new' referral count.
func (r *Repository) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select("r.telegram_id", "u.first_name", "COUNT(*) AS referral_count").
		From("referrals r").
		Join("users u ON u.telegram_id = r.telegram_id").
		Where(squirrel.Eq{"r.referral_status": string(model.ReferralStatusNew)}).
		GroupBy("r.telegram_id", "u.first_name").
		OrderBy("referral_count DESC", "r.telegram_id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []leaderboardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LeaderboardEntry{
			TelegramID:    row.TelegramID,
			FirstName:     row.FirstName,
			ReferralCount: row.ReferralCount,
		}
	}
	return entries, nil
}
