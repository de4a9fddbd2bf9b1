package model

// ThisWeekWinner is the mutable working set: one row per user, overwritten on
// resubmission and truncated at every week close.
type ThisWeekWinner struct {
	TelegramID    int64
	FirstName     string
	Website       string
	WebUsername   string
	ReferralCount int
}

type WeeklyWinner struct {
	ID            int64
	WeekNumber    int
	TelegramID    int64
	FirstName     string
	Website       string
	WebUsername   string
	ReferralCount int
}

type MonthlyWinner struct {
	ID            int64
	MonthYear     string
	TelegramID    int64
	FirstName     string
	Website       string
	WebUsername   string
	ReferralCount int
}
