package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"referral_rewards_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	TelegramID int64     `db:"telegram_id"`
	FirstName  string    `db:"first_name"`
	Username   *string   `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r *Repository) CreateUserIfAbsent(ctx context.Context, user *model.User) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		return createUserIfAbsentTx(ctx, tx, user)
	})
}

func createUserIfAbsentTx(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	var username *string
	if user.Username != "" {
		username = &user.Username
	}

	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id": user.TelegramID,
			"first_name":  user.FirstName,
			"username":    username,
		}).
		Suffix("ON CONFLICT (telegram_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("telegram_id", "first_name", "username", "created_at").
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	out := &model.User{
		TelegramID: user.TelegramID,
		FirstName:  user.FirstName,
		CreatedAt:  user.CreatedAt,
	}
	if user.Username != nil {
		out.Username = *user.Username
	}
	return out, nil
}
