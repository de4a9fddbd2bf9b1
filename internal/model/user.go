package model

import "time"

type User struct {
	TelegramID int64
	FirstName  string
	Username   string
	CreatedAt  time.Time
}

type LeaderboardEntry struct {
	TelegramID    int64
	FirstName     string
	ReferralCount int
}
