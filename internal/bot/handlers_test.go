package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

// Callbacks can arrive without an attached message once the original message
// has expired; every branch must tolerate that.
func TestHandleCallbackWithoutMessage(t *testing.T) {
	b := &Bot{pending: newPendingStore(pendingTTL)}

	for _, data := range []string{
		"get_my_referral",
		"joined_channel",
		"referred_users_number",
		"website_winfix.live",
	} {
		t.Run(data, func(t *testing.T) {
			cq := &tgbotapi.CallbackQuery{ID: "1", Data: data, From: &tgbotapi.User{ID: 100}}

			assert.NotPanics(t, func() {
				b.handleCallback(context.Background(), cq)
			})
		})
	}
}
