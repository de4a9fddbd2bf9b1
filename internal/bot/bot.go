package bot

import (
	"context"
	"fmt"
	"time"

	"referral_rewards_bot/internal/service"
	"referral_rewards_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	updateTimeout      = 60
	pendingTTL         = 10 * time.Minute
	pendingSweepPeriod = time.Minute
)

type Config struct {
	Token         string
	ChannelID     int64
	ChannelInvite string
	AdminID       int64
	Debug         bool
}

type Bot struct {
	api     *tgbotapi.BotAPI
	svc     *service.Service
	pending *pendingStore
	cfg     Config
}

func New(cfg Config, svc *service.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Logger().Info("Authorized on telegram", zap.String("username", api.Self.UserName))

	return &Bot{
		api:     api,
		svc:     svc,
		pending: newPendingStore(pendingTTL),
		cfg:     cfg,
	}, nil
}

// Start runs the long-polling update loop until ctx is cancelled. Each update
// is handled on its own goroutine so one stalled membership check does not
// block the rest.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(u)

	go b.pendingJanitor(ctx)

	for {
		select {
		case update := <-updates:
			go b.safeHandleUpdate(ctx, update)
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		}
	}
}

func (b *Bot) safeHandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger().Error("panic while handling update", zap.Any("panic", r))
		}
	}()
	b.handleUpdate(ctx, update)
}

func (b *Bot) pendingJanitor(ctx context.Context) {
	ticker := time.NewTicker(pendingSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := b.pending.Sweep(); removed > 0 {
				logger.Logger().Debug("dropped expired selections", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return userID == b.cfg.AdminID
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) ReferralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", b.api.Self.UserName, userID)
}
