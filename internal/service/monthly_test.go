package service

import (
	"context"
	"testing"
	"time"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/repository"
	"referral_rewards_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMonthlyService_CloseMonth(t *testing.T) {
	t.Run("Empty aggregate maps to ErrNothingToArchive", func(t *testing.T) {
		mockRepo := &mocks.MockMonthlyRepository{}
		svc := NewMonthlyService(mockRepo, NewRollupNotifier())
		svc.now = func() time.Time {
			return time.Date(2023, time.June, 30, 12, 0, 0, 0, time.UTC)
		}

		mockRepo.On("CloseMonth", mock.Anything, "June 2023").
			Return(nil, repository.ErrNothingToArchive)

		result, err := svc.CloseMonth(context.Background())

		assert.ErrorIs(t, err, ErrNothingToArchive)
		assert.Nil(t, result)
	})

	t.Run("Successful close carries the month label and publishes an event", func(t *testing.T) {
		mockRepo := &mocks.MockMonthlyRepository{}
		notifier := NewRollupNotifier()
		svc := NewMonthlyService(mockRepo, notifier)
		svc.now = func() time.Time {
			return time.Date(2023, time.June, 30, 12, 0, 0, 0, time.UTC)
		}

		winners := []*model.MonthlyWinner{
			{MonthYear: "June 2023", TelegramID: 100, FirstName: "Bob", ReferralCount: 12},
		}
		mockRepo.On("CloseMonth", mock.Anything, "June 2023").Return(winners, nil)

		subID, events := notifier.Subscribe()
		defer notifier.Unsubscribe(subID)

		result, err := svc.CloseMonth(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, "June 2023", result.MonthYear)
		assert.Len(t, result.Winners, 1)

		event := <-events
		assert.Equal(t, EventMonthClosed, event.Type)
		assert.Equal(t, "June 2023", event.Payload["month_year"])
	})
}

func TestRollupNotifier(t *testing.T) {
	notifier := NewRollupNotifier()

	subID, events := notifier.Subscribe()
	notifier.Publish(EventWeekClosed, map[string]any{"week_number": 1})

	event := <-events
	assert.Equal(t, EventWeekClosed, event.Type)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", event.ID.String())

	notifier.Unsubscribe(subID)
	_, open := <-events
	assert.False(t, open)

	// Publishing with no subscribers must not block or panic.
	notifier.Publish(EventMonthClosed, nil)
}
