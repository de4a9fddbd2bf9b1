package mocks

import (
	"context"

	"referral_rewards_bot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMembershipChecker struct {
	mock.Mock
}

func (m *MockMembershipChecker) IsMember(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) CreateUserIfAbsent(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockReferralRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockReferralRepository) CreateReferral(ctx context.Context, referral *model.Referral, referredUser *model.User) error {
	args := m.Called(ctx, referral, referredUser)
	return args.Error(0)
}

func (m *MockReferralRepository) GetNewReferrals(ctx context.Context, referrerID int64) ([]*model.Referral, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Referral), args.Error(1)
}

func (m *MockReferralRepository) MarkReferralEnded(ctx context.Context, referralID int64) error {
	args := m.Called(ctx, referralID)
	return args.Error(0)
}

func (m *MockReferralRepository) MarkReferralsCounted(ctx context.Context, referrerID int64) error {
	args := m.Called(ctx, referrerID)
	return args.Error(0)
}

func (m *MockReferralRepository) GetEligibleReferrers(ctx context.Context, minCount int) ([]int64, error) {
	args := m.Called(ctx, minCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockReferralRepository) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

type MockWeeklyRepository struct {
	mock.Mock
}

func (m *MockWeeklyRepository) UpsertThisWeekWinner(ctx context.Context, winner *model.ThisWeekWinner) error {
	args := m.Called(ctx, winner)
	return args.Error(0)
}

func (m *MockWeeklyRepository) ListThisWeekWinners(ctx context.Context) ([]*model.ThisWeekWinner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ThisWeekWinner), args.Error(1)
}

func (m *MockWeeklyRepository) ListWeeklyWinners(ctx context.Context) ([]*model.WeeklyWinner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WeeklyWinner), args.Error(1)
}

func (m *MockWeeklyRepository) CloseWeek(ctx context.Context) (int, []*model.ThisWeekWinner, error) {
	args := m.Called(ctx)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Error(2)
	}
	return args.Int(0), args.Get(1).([]*model.ThisWeekWinner), args.Error(2)
}

func (m *MockWeeklyRepository) CurrentWeek(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockWeeklyRepository) ResetWeek(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMonthlyRepository struct {
	mock.Mock
}

func (m *MockMonthlyRepository) CloseMonth(ctx context.Context, monthYear string) ([]*model.MonthlyWinner, error) {
	args := m.Called(ctx, monthYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MonthlyWinner), args.Error(1)
}

func (m *MockMonthlyRepository) ListMonthlyWinners(ctx context.Context) ([]*model.MonthlyWinner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MonthlyWinner), args.Error(1)
}
