package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChannelMembership answers channel-membership queries against the Telegram
// API. It holds its own client so the service layer stays independent of the
// update loop.
type ChannelMembership struct {
	api       *tgbotapi.BotAPI
	channelID int64
}

func NewChannelMembership(token string, channelID int64) (*ChannelMembership, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize membership client: %w", err)
	}

	return &ChannelMembership{
		api:       api,
		channelID: channelID,
	}, nil
}

func (c *ChannelMembership) IsMember(_ context.Context, userID int64) (bool, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: c.channelID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	default:
		return false, nil
	}
}
