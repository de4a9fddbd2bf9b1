package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/repository"
)

// Websites a winner may submit a username for.
var Websites = []string{
	"winfix.live",
	"autoexch.live",
	"ve567.live",
	"ve777.club",
	"vikrant247.com",
}

const maxWebUsernameLength = 50

type WeekClose struct {
	WeekNumber int
	NextWeek   int
	Winners    []*model.ThisWeekWinner
}

type WeeklyService struct {
	repo         WeeklyRepository
	referrals    *ReferralService
	notifier     *RollupNotifier
	minReferrals int
}

func NewWeeklyService(repo WeeklyRepository, referrals *ReferralService, notifier *RollupNotifier, minReferrals int) *WeeklyService {
	return &WeeklyService{
		repo:         repo,
		referrals:    referrals,
		notifier:     notifier,
		minReferrals: minReferrals,
	}
}

func (s *WeeklyService) MinReferrals() int {
	return s.minReferrals
}

// Qualify revalidates the referrer's entries and reports whether the valid
// count reaches the submission threshold. Safe to call repeatedly.
func (s *WeeklyService) Qualify(ctx context.Context, referrerID int64) (int, bool, error) {
	valid, err := s.referrals.Revalidate(ctx, referrerID)
	if err != nil {
		return 0, false, err
	}
	return valid, valid >= s.minReferrals, nil
}

// EligibleReferrers returns referrers whose raw 'new' count reaches the
// threshold. Callers still run Qualify per referrer before prompting, since
// raw counts may include users who have since left the channel.
func (s *WeeklyService) EligibleReferrers(ctx context.Context) ([]int64, error) {
	ids, err := s.referrals.repo.GetEligibleReferrers(ctx, s.minReferrals)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible referrers: %w", err)
	}
	return ids, nil
}

// RecordWinner upserts the user's working-set row. Resubmission before the
// week closes overwrites the previous website, username and count.
func (s *WeeklyService) RecordWinner(ctx context.Context, winner *model.ThisWeekWinner) error {
	website := strings.TrimSpace(winner.Website)
	username := strings.TrimSpace(winner.WebUsername)
	if website == "" || username == "" || utf8.RuneCountInString(username) > maxWebUsernameLength {
		return ErrInvalidSubmission
	}

	record := &model.ThisWeekWinner{
		TelegramID:    winner.TelegramID,
		FirstName:     winner.FirstName,
		Website:       website,
		WebUsername:   username,
		ReferralCount: winner.ReferralCount,
	}
	if err := s.repo.UpsertThisWeekWinner(ctx, record); err != nil {
		return fmt.Errorf("failed to record winner: %w", err)
	}
	return nil
}

func (s *WeeklyService) ThisWeekWinners(ctx context.Context) ([]*model.ThisWeekWinner, error) {
	winners, err := s.repo.ListThisWeekWinners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return winners, nil
}

func (s *WeeklyService) WeeklyWinners(ctx context.Context) ([]*model.WeeklyWinner, error) {
	winners, err := s.repo.ListWeeklyWinners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly winners: %w", err)
	}
	return winners, nil
}

// CloseWeek archives the working set and advances the week counter. The
// returned week number is the one that was just closed.
func (s *WeeklyService) CloseWeek(ctx context.Context) (*WeekClose, error) {
	weekNumber, winners, err := s.repo.CloseWeek(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToArchive) {
			return nil, ErrNothingToArchive
		}
		return nil, fmt.Errorf("failed to close week: %w", err)
	}

	result := &WeekClose{
		WeekNumber: weekNumber,
		NextWeek:   weekNumber + 1,
		Winners:    winners,
	}

	s.notifier.Publish(EventWeekClosed, map[string]any{
		"week_number": weekNumber,
		"winners":     len(winners),
	})

	return result, nil
}

func (s *WeeklyService) CurrentWeek(ctx context.Context) (int, error) {
	week, err := s.repo.CurrentWeek(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current week: %w", err)
	}
	return week, nil
}

func (s *WeeklyService) ResetWeek(ctx context.Context) error {
	if err := s.repo.ResetWeek(ctx); err != nil {
		return fmt.Errorf("failed to reset week: %w", err)
	}
	return nil
}
