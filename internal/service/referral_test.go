package service

import (
	"context"
	"testing"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/repository"
	"referral_rewards_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReferralService_RecordReferral(t *testing.T) {
	referred := &model.User{TelegramID: 200, FirstName: "Alice"}

	tests := []struct {
		name          string
		referrerID    int64
		mockSetup     func(repo *mocks.MockReferralRepository)
		expectedError error
	}{
		{
			name:          "Self referral is rejected without touching the ledger",
			referrerID:    200,
			mockSetup:     func(repo *mocks.MockReferralRepository) {},
			expectedError: ErrSelfReferral,
		},
		{
			name:       "Second referral of the same user",
			referrerID: 100,
			mockSetup: func(repo *mocks.MockReferralRepository) {
				repo.On("CreateReferral", mock.Anything, mock.Anything, referred).
					Return(repository.ErrAlreadyReferred)
			},
			expectedError: ErrAlreadyReferred,
		},
		{
			name:       "Successful referral is stored as new",
			referrerID: 100,
			mockSetup: func(repo *mocks.MockReferralRepository) {
				repo.On("CreateReferral", mock.Anything, mock.MatchedBy(func(r *model.Referral) bool {
					return r.ReferrerID == 100 &&
						r.ReferredID == 200 &&
						r.Status == model.ReferralStatusNew
				}), referred).Return(nil)
			},
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			mockMembers := &mocks.MockMembershipChecker{}
			svc := NewReferralService(mockRepo, mockMembers)

			tt.mockSetup(mockRepo)

			err := svc.RecordReferral(context.Background(), tt.referrerID, referred, nil)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_Revalidate(t *testing.T) {
	newReferrals := func(ids ...int64) []*model.Referral {
		out := make([]*model.Referral, len(ids))
		for i, id := range ids {
			out[i] = &model.Referral{
				ID:         int64(i + 1),
				ReferrerID: 100,
				ReferredID: id,
				Status:     model.ReferralStatusNew,
			}
		}
		return out
	}

	t.Run("Lapsed member transitions to end, valid count excludes it", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockMembers := &mocks.MockMembershipChecker{}
		svc := NewReferralService(mockRepo, mockMembers)

		mockRepo.On("GetNewReferrals", mock.Anything, int64(100)).
			Return(newReferrals(201, 202, 203), nil)
		mockMembers.On("IsMember", mock.Anything, int64(201)).Return(true, nil)
		mockMembers.On("IsMember", mock.Anything, int64(202)).Return(true, nil)
		mockMembers.On("IsMember", mock.Anything, int64(203)).Return(false, nil)
		mockRepo.On("MarkReferralEnded", mock.Anything, int64(3)).Return(nil)

		valid, err := svc.Revalidate(context.Background(), 100)

		assert.NoError(t, err)
		assert.Equal(t, 2, valid)
		mockRepo.AssertExpectations(t)
		mockMembers.AssertExpectations(t)
	})

	t.Run("Second sweep with no membership change is a no-op", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockMembers := &mocks.MockMembershipChecker{}
		svc := NewReferralService(mockRepo, mockMembers)

		// After the first sweep only the two members are still 'new'.
		mockRepo.On("GetNewReferrals", mock.Anything, int64(100)).
			Return(newReferrals(201, 202), nil)
		mockMembers.On("IsMember", mock.Anything, int64(201)).Return(true, nil)
		mockMembers.On("IsMember", mock.Anything, int64(202)).Return(true, nil)

		valid, err := svc.Revalidate(context.Background(), 100)

		assert.NoError(t, err)
		assert.Equal(t, 2, valid)
		mockRepo.AssertNotCalled(t, "MarkReferralEnded", mock.Anything, mock.Anything)
	})

	t.Run("Membership check failure skips the entry and leaves it new", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockMembers := &mocks.MockMembershipChecker{}
		svc := NewReferralService(mockRepo, mockMembers)

		mockRepo.On("GetNewReferrals", mock.Anything, int64(100)).
			Return(newReferrals(201, 202), nil)
		mockMembers.On("IsMember", mock.Anything, int64(201)).Return(false, assert.AnError)
		mockMembers.On("IsMember", mock.Anything, int64(202)).Return(true, nil)

		valid, err := svc.Revalidate(context.Background(), 100)

		// The failed check undercounts rather than failing the sweep.
		assert.NoError(t, err)
		assert.Equal(t, 1, valid)
		mockRepo.AssertNotCalled(t, "MarkReferralEnded", mock.Anything, mock.Anything)
	})
}

func TestReferralService_GetUser(t *testing.T) {
	t.Run("Unknown user maps to ErrUserNotFound", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		svc := NewReferralService(mockRepo, &mocks.MockMembershipChecker{})

		mockRepo.On("GetUserByTelegramID", mock.Anything, int64(100)).
			Return(nil, repository.ErrNotFound)

		user, err := svc.GetUser(context.Background(), 100)

		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("Existing user is returned", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		svc := NewReferralService(mockRepo, &mocks.MockMembershipChecker{})

		mockRepo.On("GetUserByTelegramID", mock.Anything, int64(100)).
			Return(&model.User{TelegramID: 100, FirstName: "Bob"}, nil)

		user, err := svc.GetUser(context.Background(), 100)

		assert.NoError(t, err)
		assert.Equal(t, "Bob", user.FirstName)
	})
}

func TestReferralService_Consume(t *testing.T) {
	mockRepo := &mocks.MockReferralRepository{}
	mockMembers := &mocks.MockMembershipChecker{}
	svc := NewReferralService(mockRepo, mockMembers)

	mockRepo.On("MarkReferralsCounted", mock.Anything, int64(100)).Return(nil)

	assert.NoError(t, svc.Consume(context.Background(), 100))
	mockRepo.AssertExpectations(t)
}
