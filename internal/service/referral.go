package service

import (
	"context"
	"errors"
	"fmt"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/repository"
	"referral_rewards_bot/pkg/logger"

	"go.uber.org/zap"
)

type ReferralService struct {
	repo    ReferralRepository
	members MembershipChecker
}

func NewReferralService(repo ReferralRepository, members MembershipChecker) *ReferralService {
	return &ReferralService{
		repo:    repo,
		members: members,
	}
}

// RegisterUser creates the user row on first contact; re-registration is a
// no-op.
func (s *ReferralService) RegisterUser(ctx context.Context, user *model.User) error {
	if err := s.repo.CreateUserIfAbsent(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

func (s *ReferralService) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// IsReferrerEligible reports whether the referrer behind a /start payload is
// currently a member of the required channel.
func (s *ReferralService) IsReferrerEligible(ctx context.Context, referrerID int64) (bool, error) {
	isMember, err := s.members.IsMember(ctx, referrerID)
	if err != nil {
		return false, fmt.Errorf("failed to check referrer membership: %w", err)
	}
	return isMember, nil
}

// RecordReferral registers a referrer -> referred edge in 'new' status,
// creating the referred user if absent. Self-referrals and second referrals
// of the same user are rejected without touching the ledger.
func (s *ReferralService) RecordReferral(ctx context.Context, referrerID int64, referred *model.User, referredUsername *string) error {
	if referrerID == referred.TelegramID {
		return ErrSelfReferral
	}

	referral := &model.Referral{
		ReferrerID:       referrerID,
		ReferredID:       referred.TelegramID,
		ReferredUsername: referredUsername,
		Status:           model.ReferralStatusNew,
	}
	err := s.repo.CreateReferral(ctx, referral, referred)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReferred) {
			return ErrAlreadyReferred
		}
		return fmt.Errorf("failed to record referral: %w", err)
	}
	return nil
}

// Revalidate sweeps a referrer's 'new' entries against channel membership.
// Entries whose user left the channel move to 'end'; the remaining 'new'
// count is returned. A failed membership check skips that entry, leaving it
// 'new', so a transient outage undercounts rather than over-reports.
func (s *ReferralService) Revalidate(ctx context.Context, referrerID int64) (int, error) {
	log := logger.Logger()

	referrals, err := s.repo.GetNewReferrals(ctx, referrerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load referrals: %w", err)
	}

	valid := 0
	for _, referral := range referrals {
		isMember, err := s.members.IsMember(ctx, referral.ReferredID)
		if err != nil {
			log.Warn("membership check failed, skipping referral",
				zap.Int64("referred_id", referral.ReferredID),
				zap.Error(err))
			continue
		}

		if isMember {
			valid++
			continue
		}

		if err := s.repo.MarkReferralEnded(ctx, referral.ID); err != nil {
			return 0, fmt.Errorf("failed to end lapsed referral: %w", err)
		}
	}
	return valid, nil
}

// Consume flips the referrer's 'new' entries to 'counted' once a winner
// submission is finalized. Idempotent.
func (s *ReferralService) Consume(ctx context.Context, referrerID int64) error {
	if err := s.repo.MarkReferralsCounted(ctx, referrerID); err != nil {
		return fmt.Errorf("failed to consume referrals: %w", err)
	}
	return nil
}

func (s *ReferralService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	entries, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}
