package api

import (
	"errors"
	"net/http"
	"strconv"

	"referral_rewards_bot/internal/service"
	"referral_rewards_bot/pkg/auth"
	"referral_rewards_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 100

// standingsRoutes exposes read-only program standings to the Telegram
// mini app: leaderboard, current week and winner history, plus a websocket
// feed of rollup events.
type standingsRoutes struct {
	svc      *service.Service
	a        *auth.TelegramAuth
	notifier *service.RollupNotifier
}

func NewStandingsRoutes(handler *gin.RouterGroup, svc *service.Service, a *auth.TelegramAuth, notifier *service.RollupNotifier) {
	r := &standingsRoutes{
		svc:      svc,
		a:        a,
		notifier: notifier,
	}

	h := handler.Group("/standings")
	h.Use(a.TelegramAuthMiddleware())
	{
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/users/:telegram_id", r.GetUser)
		h.GET("/week", r.GetCurrentWeek)
		h.GET("/winners/weekly", r.GetWeeklyWinners)
		h.GET("/winners/monthly", r.GetMonthlyWinners)
		h.GET("/ws", r.handleWebSocket)
	}
}

func (r *standingsRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := r.svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	out := make([]gin.H, len(entries))
	for i, entry := range entries {
		out[i] = gin.H{
			"telegram_id":    entry.TelegramID,
			"first_name":     entry.FirstName,
			"referral_count": entry.ReferralCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (r *standingsRoutes) GetUser(c *gin.Context) {
	log := logger.Logger()

	id, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	user, err := r.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user associated with the provided telegram_id"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id": user.TelegramID,
		"first_name":  user.FirstName,
		"username":    user.Username,
		"created_at":  user.CreatedAt,
	})
}

func (r *standingsRoutes) GetCurrentWeek(c *gin.Context) {
	week, err := r.svc.CurrentWeek(c.Request.Context())
	if err != nil {
		logger.Logger().Error("failed to get current week", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get current week"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_week": week})
}

func (r *standingsRoutes) GetWeeklyWinners(c *gin.Context) {
	winners, err := r.svc.WeeklyWinners(c.Request.Context())
	if err != nil {
		logger.Logger().Error("failed to get weekly winners", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get weekly winners"})
		return
	}

	out := make([]gin.H, len(winners))
	for i, w := range winners {
		out[i] = gin.H{
			"week_number":    w.WeekNumber,
			"telegram_id":    w.TelegramID,
			"first_name":     w.FirstName,
			"website":        w.Website,
			"web_username":   w.WebUsername,
			"referral_count": w.ReferralCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"winners": out})
}

func (r *standingsRoutes) GetMonthlyWinners(c *gin.Context) {
	winners, err := r.svc.MonthlyWinners(c.Request.Context())
	if err != nil {
		logger.Logger().Error("failed to get monthly winners", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get monthly winners"})
		return
	}

	out := make([]gin.H, len(winners))
	for i, w := range winners {
		out[i] = gin.H{
			"month_year":     w.MonthYear,
			"telegram_id":    w.TelegramID,
			"first_name":     w.FirstName,
			"website":        w.Website,
			"web_username":   w.WebUsername,
			"referral_count": w.ReferralCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"winners": out})
}
