package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type sqlxExtContext interface {
	sqlxSelector
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CurrentWeek reads the live week number, creating the tracker row on first
// use so a fresh database starts at week 1.
func (r *Repository) CurrentWeek(ctx context.Context) (int, error) {
	return currentWeek(ctx, r.db)
}

func currentWeek(ctx context.Context, q sqlxExtContext) (int, error) {
	query, args, err := squirrel.
		Select("current_week").
		From("week_tracker").
		OrderBy("id").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var week int
	err = q.GetContext(ctx, &week, query, args...)
	if err == nil {
		return week, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read week tracker: %w", err)
	}

	if _, err := q.ExecContext(ctx, "INSERT INTO week_tracker DEFAULT VALUES"); err != nil {
		return 0, fmt.Errorf("failed to initialize week tracker: %w", err)
	}
	return 1, nil
}

// IncrementWeek advances the counter by one and returns the new value.
func (r *Repository) IncrementWeek(ctx context.Context) (int, error) {
	var newWeek int
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		week, err := incrementWeekTx(ctx, tx)
		if err != nil {
			return err
		}
		newWeek = week
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newWeek, nil
}

func incrementWeekTx(ctx context.Context, tx *sqlx.Tx) (int, error) {
	// Make sure the tracker row exists before touching it.
	if _, err := currentWeek(ctx, tx); err != nil {
		return 0, err
	}

	var newWeek int
	err := tx.GetContext(ctx, &newWeek,
		"UPDATE week_tracker SET current_week = current_week + 1 RETURNING current_week")
	if err != nil {
		return 0, fmt.Errorf("failed to increment week: %w", err)
	}
	return newWeek, nil
}

// ResetWeek sets the counter back to 1 and stamps a new period start.
func (r *Repository) ResetWeek(ctx context.Context) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return resetWeekTx(ctx, tx)
	})
}

func resetWeekTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := currentWeek(ctx, tx); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		"UPDATE week_tracker SET current_week = 1, start_date = now()")
	if err != nil {
		return fmt.Errorf("failed to reset week: %w", err)
	}
	return nil
}
