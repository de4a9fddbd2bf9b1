package service

import (
	"context"
	"errors"

	"referral_rewards_bot/internal/model"
)

var (
	ErrSelfReferral      = errors.New("you cannot refer yourself")
	ErrAlreadyReferred   = errors.New("you have already been referred")
	ErrInvalidSubmission = errors.New("website and username are required, username must be 1-50 characters")
	ErrNothingToArchive  = errors.New("nothing to archive")
	ErrUserNotFound      = errors.New("user not found")
)

type Service struct {
	*ReferralService
	*WeeklyService
	*MonthlyService
}

func NewService(referral *ReferralService, weekly *WeeklyService, monthly *MonthlyService) *Service {
	return &Service{
		ReferralService: referral,
		WeeklyService:   weekly,
		MonthlyService:  monthly,
	}
}

// MembershipChecker answers whether a user currently belongs to the required
// channel. Implementations must be side-effect free.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

type ReferralRepository interface {
	CreateUserIfAbsent(ctx context.Context, user *model.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	CreateReferral(ctx context.Context, referral *model.Referral, referredUser *model.User) error
	GetNewReferrals(ctx context.Context, referrerID int64) ([]*model.Referral, error)
	MarkReferralEnded(ctx context.Context, referralID int64) error
	MarkReferralsCounted(ctx context.Context, referrerID int64) error
	GetEligibleReferrers(ctx context.Context, minCount int) ([]int64, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

type WeeklyRepository interface {
	UpsertThisWeekWinner(ctx context.Context, winner *model.ThisWeekWinner) error
	ListThisWeekWinners(ctx context.Context) ([]*model.ThisWeekWinner, error)
	ListWeeklyWinners(ctx context.Context) ([]*model.WeeklyWinner, error)
	CloseWeek(ctx context.Context) (int, []*model.ThisWeekWinner, error)
	CurrentWeek(ctx context.Context) (int, error)
	ResetWeek(ctx context.Context) error
}

type MonthlyRepository interface {
	CloseMonth(ctx context.Context, monthYear string) ([]*model.MonthlyWinner, error)
	ListMonthlyWinners(ctx context.Context) ([]*model.MonthlyWinner, error)
}
