package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/repository"
)

type MonthClose struct {
	MonthYear string
	Winners   []*model.MonthlyWinner
}

type MonthlyService struct {
	repo     MonthlyRepository
	notifier *RollupNotifier
	now      func() time.Time
}

func NewMonthlyService(repo MonthlyRepository, notifier *RollupNotifier) *MonthlyService {
	return &MonthlyService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// CloseMonth folds weekly history into monthly history under the current
// month label and resets all weekly state back to week 1.
func (s *MonthlyService) CloseMonth(ctx context.Context) (*MonthClose, error) {
	monthYear := s.now().Format("January 2006")

	winners, err := s.repo.CloseMonth(ctx, monthYear)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToArchive) {
			return nil, ErrNothingToArchive
		}
		return nil, fmt.Errorf("failed to close month: %w", err)
	}

	s.notifier.Publish(EventMonthClosed, map[string]any{
		"month_year": monthYear,
		"winners":    len(winners),
	})

	return &MonthClose{
		MonthYear: monthYear,
		Winners:   winners,
	}, nil
}

func (s *MonthlyService) MonthlyWinners(ctx context.Context) ([]*model.MonthlyWinner, error) {
	winners, err := s.repo.ListMonthlyWinners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly winners: %w", err)
	}
	return winners, nil
}
