package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"referral_rewards_bot/internal/model"
	"referral_rewards_bot/internal/service"
	"referral_rewards_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Text != "" {
		b.handleUsernameReply(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "my_referral":
		b.handleMyReferral(ctx, msg)
	case "rules":
		b.handleRules(msg)
	case "leaderboard":
		b.handleLeaderboard(ctx, msg)
	case "ask_username":
		b.handleAskUsername(ctx, msg)
	case "end_week":
		b.handleEndWeek(ctx, msg)
	case "end_month":
		b.handleEndMonth(ctx, msg)
	case "reset_week":
		b.handleResetWeek(ctx, msg)
	case "current_week":
		b.handleCurrentWeek(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	payload := strings.TrimSpace(msg.CommandArguments())
	if payload != "" {
		referrerID, err := strconv.ParseInt(payload, 10, 64)
		if err == nil && b.handleReferralStart(ctx, msg, referrerID) {
			return
		}
	}

	b.registerAndSendCard(ctx, msg.Chat.ID, msg.From)
}

// handleReferralStart records a referral edge for a /start with a payload.
// It reports whether the referral path handled the message; an unknown or
// non-member referrer falls back to plain registration.
func (b *Bot) handleReferralStart(ctx context.Context, msg *tgbotapi.Message, referrerID int64) bool {
	log := logger.Logger()

	isMember, err := b.svc.IsReferrerEligible(ctx, referrerID)
	if err != nil {
		log.Warn("failed to validate referrer", zap.Int64("referrer_id", referrerID), zap.Error(err))
		return false
	}
	if !isMember {
		return false
	}

	referred := userFromTelegram(msg.From)
	var referredUsername *string
	if msg.From.UserName != "" {
		referredUsername = &msg.From.UserName
	}

	err = b.svc.RecordReferral(ctx, referrerID, referred, referredUsername)
	switch {
	case errors.Is(err, service.ErrSelfReferral):
		b.send(msg.Chat.ID, "You cannot refer yourself.")
		return true
	case errors.Is(err, service.ErrAlreadyReferred):
		b.send(msg.Chat.ID, "You have already registered, you cannot be referred.")
		return true
	case err != nil:
		log.Error("failed to record referral", zap.Int64("referrer_id", referrerID), zap.Error(err))
		b.send(msg.Chat.ID, "An error occurred. Please try again.")
		return true
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "Join the channel to complete the process:")
	reply.ReplyMarkup = b.joinChannelKeyboard()
	if _, err := b.api.Send(reply); err != nil {
		log.Error("failed to send join prompt", zap.Error(err))
	}
	return true
}

func (b *Bot) joinChannelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Join the channel", b.cfg.ChannelInvite),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("I've joined", "joined_channel"),
		),
	)
}

func (b *Bot) registerAndSendCard(ctx context.Context, chatID int64, from *tgbotapi.User) {
	log := logger.Logger()

	if err := b.svc.RegisterUser(ctx, userFromTelegram(from)); err != nil {
		log.Error("failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		b.send(chatID, "An error occurred. Please try again.")
		return
	}

	caption := fmt.Sprintf(
		"Invite friends to the channel and win weekly rewards!\n\n"+
			"🔗 Your referral link:\n<code>%s</code>",
		b.ReferralLink(from.ID),
	)
	msg := tgbotapi.NewMessage(chatID, caption)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Check how many users you referred", "referred_users_number"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Error("failed to send referral card", zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Callbacks on expired or inaccessible messages arrive without one.
	if cq.Message == nil {
		return
	}

	data := cq.Data

	switch {
	case data == "get_my_referral" || data == "joined_channel":
		b.deleteCallbackMessage(cq)
		b.registerAndSendCard(ctx, cq.Message.Chat.ID, cq.From)
		b.answerCallback(cq.ID, "")
	case data == "referred_users_number":
		b.handleReferralCount(ctx, cq)
	case strings.HasPrefix(data, "website_"):
		b.handleWebsiteSelection(cq, strings.TrimPrefix(data, "website_"))
	}
}

func (b *Bot) handleReferralCount(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	valid, err := b.svc.Revalidate(ctx, cq.From.ID)
	if err != nil {
		logger.Logger().Error("failed to count referrals", zap.Int64("telegram_id", cq.From.ID), zap.Error(err))
		b.answerCallback(cq.ID, "Something went wrong, try again later")
		return
	}

	b.answerCallback(cq.ID, "")
	b.send(cq.Message.Chat.ID, fmt.Sprintf("📊 You have %d valid referrals this week.", valid))
}

func (b *Bot) handleWebsiteSelection(cq *tgbotapi.CallbackQuery, website string) {
	log := logger.Logger()

	b.answerCallback(cq.ID, fmt.Sprintf("Selected %s", website))
	b.deleteCallbackMessage(cq)

	prompt := tgbotapi.NewMessage(cq.Message.Chat.ID,
		fmt.Sprintf("🌐 You selected: %s\n\nPlease reply with your %s username:", website, website))
	prompt.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}

	sent, err := b.api.Send(prompt)
	if err != nil {
		log.Error("failed to send username prompt", zap.Error(err))
		b.send(cq.Message.Chat.ID, "❌ Failed to process selection. Please try again.")
		return
	}

	b.pending.Put(cq.From.ID, pendingSelection{
		Website:         website,
		PromptMessageID: sent.MessageID,
		CreatedAt:       time.Now(),
	})
}

func (b *Bot) handleUsernameReply(ctx context.Context, msg *tgbotapi.Message) {
	log := logger.Logger()
	userID := msg.From.ID

	sel, ok := b.pending.Get(userID)
	if !ok {
		return
	}
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.MessageID != sel.PromptMessageID {
		return
	}

	username := strings.TrimSpace(msg.Text)
	if username == "" || utf8.RuneCountInString(username) > 50 {
		b.send(msg.Chat.ID, "⚠️ Username must be 1-50 characters. Please try again.")
		return
	}

	valid, err := b.svc.Revalidate(ctx, userID)
	if err != nil {
		log.Error("failed to revalidate referrals", zap.Int64("telegram_id", userID), zap.Error(err))
		b.send(msg.Chat.ID, "❌ Failed to process your username. Please try again or contact admin.")
		return
	}

	err = b.svc.RecordWinner(ctx, &model.ThisWeekWinner{
		TelegramID:    userID,
		FirstName:     msg.From.FirstName,
		Website:       sel.Website,
		WebUsername:   username,
		ReferralCount: valid,
	})
	if errors.Is(err, service.ErrInvalidSubmission) {
		b.send(msg.Chat.ID, "⚠️ Username must be 1-50 characters. Please try again.")
		return
	}
	if err != nil {
		log.Error("failed to record winner", zap.Int64("telegram_id", userID), zap.Error(err))
		b.send(msg.Chat.ID, "❌ There was an issue processing your submission. Please try again later.")
		b.send(b.cfg.AdminID, fmt.Sprintf("Error processing winner submission:\nUser: %s (%d)\nError: %v",
			msg.From.FirstName, userID, err))
		return
	}

	if err := b.svc.Consume(ctx, userID); err != nil {
		log.Error("failed to consume referrals", zap.Int64("telegram_id", userID), zap.Error(err))
	}

	b.send(b.cfg.AdminID, fmt.Sprintf(
		"🏆 New Winner\n👤 %s (%d referrals)\n🌐 %s\n📛 %s",
		msg.From.FirstName, valid, sel.Website, username))

	if valid > 0 {
		b.send(msg.Chat.ID, fmt.Sprintf(
			"✅ Success! Your %s username \"%s\" has been recorded with %d valid referrals.",
			sel.Website, username, valid))
	} else {
		b.send(msg.Chat.ID, "⚠️ You currently have no valid referrals this week.")
	}

	b.pending.Delete(userID)
}

func (b *Bot) handleMyReferral(ctx context.Context, msg *tgbotapi.Message) {
	loading, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⏳ Checking your referral stats..."))
	if err != nil {
		logger.Logger().Error("failed to send loading message", zap.Error(err))
		return
	}

	valid, err := b.svc.Revalidate(ctx, msg.From.ID)
	if err != nil {
		logger.Logger().Error("failed to count referrals", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.editMessage(msg.Chat.ID, loading.MessageID, "❌ Something went wrong.")
		return
	}

	b.editMessage(msg.Chat.ID, loading.MessageID,
		fmt.Sprintf("📊 You have %d valid referrals this week.", valid))
}

func (b *Bot) handleRules(msg *tgbotapi.Message) {
	rules := fmt.Sprintf(`📜 Rules and Regulations for the Referral System

1. Referral Process
   - Share your unique referral link with friends
   - Friends must join the channel through your link
   - Friends must remain in the channel to count as valid referrals

2. Valid Referrals
   - Only users who are active members of the channel count
   - If a referred user leaves the channel, they no longer count
   - You cannot refer yourself
   - Each user can only be referred once

3. Qualification Requirements
   - Minimum %d valid referrals required to qualify
   - All referrals must be active channel members
   - Referrals are validated when you submit your username

4. Reward Process
   - Once you qualify, you'll be asked to select your website
   - Provide your correct username for the selected website
   - Rewards are processed after validation`, b.svc.MinReferrals())

	b.send(msg.Chat.ID, rules)
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	leaders, err := b.svc.Leaderboard(ctx, 3)
	if err != nil {
		logger.Logger().Error("failed to load leaderboard", zap.Error(err))
		b.send(msg.Chat.ID, "Failed to load leaderboard. Please try again later.")
		return
	}

	if len(leaders) == 0 {
		b.send(msg.Chat.ID, "No active referrals yet. Be the first to refer someone!")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("🏆 Top 3 Referrers:\n\n")
	for i, leader := range leaders {
		sb.WriteString(fmt.Sprintf("%s %s - %d referrals\n", medals[i], leader.FirstName, leader.ReferralCount))
	}
	b.send(msg.Chat.ID, sb.String())
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Logger().Error("failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) deleteCallbackMessage(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	del := tgbotapi.NewDeleteMessage(cq.Message.Chat.ID, cq.Message.MessageID)
	if _, err := b.api.Request(del); err != nil {
		logger.Logger().Debug("could not delete message", zap.Error(err))
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		logger.Logger().Error("failed to edit message", zap.Error(err))
	}
}

func userFromTelegram(from *tgbotapi.User) *model.User {
	firstName := from.FirstName
	if firstName == "" {
		firstName = "Unknown"
	}
	return &model.User{
		TelegramID: from.ID,
		FirstName:  firstName,
		Username:   from.UserName,
	}
}
