package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"referral_rewards_bot/internal/report"
	"referral_rewards_bot/internal/service"
	"referral_rewards_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleAskUsername sweeps qualifying referrers and sends each one the
// website picker. Raw counts are revalidated against channel membership
// before anyone is prompted.
func (b *Bot) handleAskUsername(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.send(msg.Chat.ID, "🚫 Only admin can use this command")
		return
	}

	log := logger.Logger()

	candidates, err := b.svc.EligibleReferrers(ctx)
	if err != nil {
		log.Error("failed to load eligible referrers", zap.Error(err))
		b.send(msg.Chat.ID, "❌ Failed to process command. Please try again.")
		return
	}

	if len(candidates) == 0 {
		b.send(msg.Chat.ID, fmt.Sprintf("No users currently qualify (need ≥ %d new referrals)", b.svc.MinReferrals()))
		return
	}

	prompted := 0
	for _, referrerID := range candidates {
		_, qualified, err := b.svc.Qualify(ctx, referrerID)
		if err != nil {
			log.Error("failed to qualify referrer", zap.Int64("referrer_id", referrerID), zap.Error(err))
			continue
		}
		if !qualified {
			continue
		}

		prompt := tgbotapi.NewMessage(referrerID,
			"🎉 Congratulations! You've qualified for rewards!\n\n"+
				"Please select which website you're playing on:")
		prompt.ReplyMarkup = websiteKeyboard()
		if _, err := b.api.Send(prompt); err != nil {
			log.Error("failed to prompt referrer", zap.Int64("referrer_id", referrerID), zap.Error(err))
			continue
		}
		prompted++
	}

	if prompted == 0 {
		b.send(msg.Chat.ID, "No users currently qualify after validation")
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("✅ Website selection sent to %d eligible users", prompted))
}

func websiteKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, site := range service.Websites {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(site, "website_"+site))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleEndWeek(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.send(msg.Chat.ID, "🚫 Only admin can end the week")
		return
	}

	log := logger.Logger()

	processing, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "⏳ Processing week closure... Please wait"))
	if err != nil {
		log.Error("failed to send processing message", zap.Error(err))
		return
	}

	result, err := b.svc.CloseWeek(ctx)
	if errors.Is(err, service.ErrNothingToArchive) {
		b.editMessage(msg.Chat.ID, processing.MessageID, "ℹ️ No winners found this week - nothing to archive")
		return
	}
	if err != nil {
		log.Error("failed to close week", zap.Error(err))
		b.editMessage(msg.Chat.ID, processing.MessageID, "❌ Failed to process week: "+err.Error())
		return
	}

	now := time.Now()
	rows := make([]report.Row, len(result.Winners))
	for i, w := range result.Winners {
		rows[i] = report.Row{
			Name:      w.FirstName,
			Website:   w.Website,
			Username:  w.WebUsername,
			Referrals: w.ReferralCount,
		}
	}

	pdfBytes, err := report.Weekly(result.WeekNumber, now, rows)
	if err != nil {
		log.Error("failed to render weekly report", zap.Error(err))
		b.editMessage(msg.Chat.ID, processing.MessageID,
			fmt.Sprintf("✅ Week %d closed (%d winners archived), but the report failed to render: %v",
				result.WeekNumber, len(result.Winners), err))
		return
	}

	b.deleteMessage(msg.Chat.ID, processing.MessageID)

	var summary strings.Builder
	for i, w := range result.Winners {
		summary.WriteString(fmt.Sprintf("%s %s - %d referrals (%s)\n", medal(i), w.FirstName, w.ReferralCount, w.Website))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  report.WeeklyFilename(result.WeekNumber, now),
		Bytes: pdfBytes,
	})
	doc.Caption = fmt.Sprintf(
		"✅ Week %d successfully closed!\n📊 %d winners archived\n\n📅 Starting Week %d\n\n📋 Winners Summary:\n%s",
		result.WeekNumber, len(result.Winners), result.NextWeek, summary.String())
	if _, err := b.api.Send(doc); err != nil {
		log.Error("failed to send weekly report", zap.Error(err))
	}
}

func (b *Bot) handleEndMonth(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.send(msg.Chat.ID, "🚫 Only admin can end the month")
		return
	}

	log := logger.Logger()

	processing, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID,
		"⏳ Starting monthly closure process...\n\nPlease wait, this may take a moment..."))
	if err != nil {
		log.Error("failed to send processing message", zap.Error(err))
		return
	}

	result, err := b.svc.CloseMonth(ctx)
	if errors.Is(err, service.ErrNothingToArchive) {
		b.editMessage(msg.Chat.ID, processing.MessageID, "ℹ️ No eligible winners this month\n\nNo data to archive.")
		return
	}
	if err != nil {
		log.Error("failed to close month", zap.Error(err))
		b.editMessage(msg.Chat.ID, processing.MessageID, "❌ Failed to process month: "+err.Error())
		return
	}

	rows := make([]report.Row, len(result.Winners))
	for i, w := range result.Winners {
		rows[i] = report.Row{
			Name:      w.FirstName,
			Website:   w.Website,
			Username:  w.WebUsername,
			Referrals: w.ReferralCount,
		}
	}

	pdfBytes, err := report.Monthly(result.MonthYear, time.Now(), rows)
	if err != nil {
		log.Error("failed to render monthly report", zap.Error(err))
		b.editMessage(msg.Chat.ID, processing.MessageID,
			fmt.Sprintf("✅ Month %s closed (%d winners), but the report failed to render: %v",
				result.MonthYear, len(result.Winners), err))
		return
	}

	b.deleteMessage(msg.Chat.ID, processing.MessageID)

	top := result.Winners
	if len(top) > 3 {
		top = top[:3]
	}
	var summary strings.Builder
	for i, w := range top {
		summary.WriteString(fmt.Sprintf("%s %s - %d referrals\n", medal(i), w.FirstName, w.ReferralCount))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  report.MonthlyFilename(result.MonthYear),
		Bytes: pdfBytes,
	})
	doc.Caption = fmt.Sprintf(
		"✅ %s successfully closed!\n📊 %d winners this month\n\n📅 Back to Week 1\n\n📋 Top Winners:\n%s",
		result.MonthYear, len(result.Winners), summary.String())
	if _, err := b.api.Send(doc); err != nil {
		log.Error("failed to send monthly report", zap.Error(err))
	}
}

func (b *Bot) handleResetWeek(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.send(msg.Chat.ID, "🚫 Only admin can reset the week")
		return
	}

	if err := b.svc.ResetWeek(ctx); err != nil {
		logger.Logger().Error("failed to reset week", zap.Error(err))
		b.send(msg.Chat.ID, "❌ Failed to reset week number")
		return
	}
	b.send(msg.Chat.ID, "✅ Week number has been reset to 1")
}

func (b *Bot) handleCurrentWeek(ctx context.Context, msg *tgbotapi.Message) {
	week, err := b.svc.CurrentWeek(ctx)
	if err != nil {
		logger.Logger().Error("failed to get current week", zap.Error(err))
		b.send(msg.Chat.ID, "❌ Failed to get current week number")
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("📅 Current Week: %d", week))
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logger.Logger().Debug("could not delete message", zap.Error(err))
	}
}

func medal(rank int) string {
	medals := []string{"🥇", "🥈", "🥉"}
	if rank < len(medals) {
		return medals[rank]
	}
	return "🏅"
}
