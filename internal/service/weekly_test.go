package service

import (
	"context"
	"strings"
	"testing"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/repository"
	"referral_rewards_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newWeeklyFixture(minReferrals int) (*WeeklyService, *mocks.MockWeeklyRepository, *mocks.MockReferralRepository, *mocks.MockMembershipChecker, *RollupNotifier) {
	weeklyRepo := &mocks.MockWeeklyRepository{}
	referralRepo := &mocks.MockReferralRepository{}
	members := &mocks.MockMembershipChecker{}
	notifier := NewRollupNotifier()

	referrals := NewReferralService(referralRepo, members)
	weekly := NewWeeklyService(weeklyRepo, referrals, notifier, minReferrals)
	return weekly, weeklyRepo, referralRepo, members, notifier
}

func TestWeeklyService_Qualify(t *testing.T) {
	tests := []struct {
		name          string
		minReferrals  int
		memberResults map[int64]bool
		expectedCount int
		expectedOK    bool
	}{
		{
			name:          "Below threshold is not offered a prompt",
			minReferrals:  2,
			memberResults: map[int64]bool{201: true},
			expectedCount: 1,
			expectedOK:    false,
		},
		{
			name:          "At threshold qualifies",
			minReferrals:  2,
			memberResults: map[int64]bool{201: true, 202: true},
			expectedCount: 2,
			expectedOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weekly, _, referralRepo, members, _ := newWeeklyFixture(tt.minReferrals)

			var referrals []*model.Referral
			id := int64(1)
			for referredID, isMember := range tt.memberResults {
				referrals = append(referrals, &model.Referral{
					ID:         id,
					ReferrerID: 100,
					ReferredID: referredID,
					Status:     model.ReferralStatusNew,
				})
				members.On("IsMember", mock.Anything, referredID).Return(isMember, nil)
				id++
			}
			referralRepo.On("GetNewReferrals", mock.Anything, int64(100)).Return(referrals, nil)

			count, ok, err := weekly.Qualify(context.Background(), 100)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCount, count)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}

func TestWeeklyService_RecordWinner(t *testing.T) {
	tests := []struct {
		name          string
		website       string
		username      string
		expectedError error
	}{
		{"Empty website", "", "alice", ErrInvalidSubmission},
		{"Empty username", "winfix.live", "", ErrInvalidSubmission},
		{"Whitespace-only username", "winfix.live", "   ", ErrInvalidSubmission},
		{"Username too long", "winfix.live", strings.Repeat("a", 51), ErrInvalidSubmission},
		{"Multibyte username of 50 characters", "winfix.live", strings.Repeat("ü", 50), nil},
		{"Multibyte username of 51 characters", "winfix.live", strings.Repeat("ü", 51), ErrInvalidSubmission},
		{"Valid submission", "winfix.live", "alice", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weekly, weeklyRepo, _, _, _ := newWeeklyFixture(2)

			if tt.expectedError == nil {
				weeklyRepo.On("UpsertThisWeekWinner", mock.Anything, mock.MatchedBy(func(w *model.ThisWeekWinner) bool {
					return w.TelegramID == 100 &&
						w.Website == tt.website &&
						w.WebUsername == tt.username
				})).Return(nil)
			}

			err := weekly.RecordWinner(context.Background(), &model.ThisWeekWinner{
				TelegramID:    100,
				FirstName:     "Bob",
				Website:       tt.website,
				WebUsername:   tt.username,
				ReferralCount: 5,
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				weeklyRepo.AssertNotCalled(t, "UpsertThisWeekWinner", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				weeklyRepo.AssertExpectations(t)
			}
		})
	}
}

func TestWeeklyService_CloseWeek(t *testing.T) {
	t.Run("Empty working set maps to ErrNothingToArchive", func(t *testing.T) {
		weekly, weeklyRepo, _, _, _ := newWeeklyFixture(2)

		weeklyRepo.On("CloseWeek", mock.Anything).
			Return(0, nil, repository.ErrNothingToArchive)

		result, err := weekly.CloseWeek(context.Background())

		assert.ErrorIs(t, err, ErrNothingToArchive)
		assert.Nil(t, result)
	})

	t.Run("Successful close reports the closed week and publishes an event", func(t *testing.T) {
		weekly, weeklyRepo, _, _, notifier := newWeeklyFixture(2)

		winners := []*model.ThisWeekWinner{
			{TelegramID: 100, FirstName: "Bob", Website: "winfix.live", WebUsername: "bob", ReferralCount: 7},
			{TelegramID: 101, FirstName: "Eve", Website: "ve567.live", WebUsername: "eve", ReferralCount: 4},
		}
		weeklyRepo.On("CloseWeek", mock.Anything).Return(3, winners, nil)

		subID, events := notifier.Subscribe()
		defer notifier.Unsubscribe(subID)

		result, err := weekly.CloseWeek(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 3, result.WeekNumber)
		assert.Equal(t, 4, result.NextWeek)
		assert.Len(t, result.Winners, 2)

		event := <-events
		assert.Equal(t, EventWeekClosed, event.Type)
		assert.Equal(t, 3, event.Payload["week_number"])
		assert.Equal(t, 2, event.Payload["winners"])
	})
}

func TestWeeklyService_EligibleReferrers(t *testing.T) {
	weekly, _, referralRepo, _, _ := newWeeklyFixture(5)

	referralRepo.On("GetEligibleReferrers", mock.Anything, 5).
		Return([]int64{100, 101}, nil)

	ids, err := weekly.EligibleReferrers(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, ids)
	referralRepo.AssertExpectations(t)
}
