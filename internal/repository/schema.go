package repository

import "github.com/jmoiron/sqlx"

// Schema mirrors the tables the program relies on. Statements are idempotent
// so applying on every startup is safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id BIGINT PRIMARY KEY,
		first_name  TEXT NOT NULL,
		username    TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id              BIGSERIAL PRIMARY KEY,
		telegram_id     BIGINT NOT NULL,
		referred_id     BIGINT NOT NULL UNIQUE,
		referred_username TEXT,
		referral_status TEXT NOT NULL DEFAULT 'new'
			CHECK (referral_status IN ('new', 'counted', 'end'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_referrals_status ON referrals (referral_status)`,
	`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals (telegram_id, referred_id)`,
	`CREATE TABLE IF NOT EXISTS this_week_winners (
		telegram_id    BIGINT PRIMARY KEY,
		first_name     TEXT NOT NULL,
		website        TEXT NOT NULL,
		web_username   TEXT NOT NULL,
		referral_count INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_winners (
		id             BIGSERIAL PRIMARY KEY,
		week_number    INT NOT NULL,
		telegram_id    BIGINT NOT NULL,
		first_name     TEXT NOT NULL,
		website        TEXT NOT NULL,
		web_username   TEXT NOT NULL,
		referral_count INT NOT NULL DEFAULT 0,
		UNIQUE (week_number, telegram_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_winners_week ON weekly_winners (week_number)`,
	`CREATE TABLE IF NOT EXISTS monthly_winners (
		id             BIGSERIAL PRIMARY KEY,
		month_year     TEXT NOT NULL,
		telegram_id    BIGINT NOT NULL,
		first_name     TEXT NOT NULL,
		website        TEXT NOT NULL,
		web_username   TEXT NOT NULL,
		referral_count INT NOT NULL DEFAULT 0,
		UNIQUE (month_year, telegram_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_monthly_winners_month ON monthly_winners (month_year)`,
	`CREATE TABLE IF NOT EXISTS week_tracker (
		id           BIGSERIAL PRIMARY KEY,
		current_week INT NOT NULL DEFAULT 1,
		start_date   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func applySchema(db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
