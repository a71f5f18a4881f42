package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/medimate/internal/handler"
	"github.com/medimate/internal/logging"
	"go.uber.org/zap"
)

const sessionMaxAge = 30 * 24 * 60 * 60

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.L()
	}

	r := gin.New()
	r.Use(logging.GinLogger(logger), gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("medimate_session", store))
	r.Use(api.LocaleMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)

	public := r.Group("/api")
	{
		public.POST("/login", api.Login)
		public.POST("/logout", api.Logout)
	}

	// 需要登录的接口
	auth := r.Group("/api")
	auth.Use(api.AuthRequired())
	{
		auth.GET("/medications", api.ListMedications)
		auth.POST("/medications", api.CreateMedication)
		auth.GET("/medications/:id", api.GetMedication)
		auth.GET("/medications/:id/badge.png", api.MedicationBadge)

		auth.GET("/schedule/today", api.TodaySchedule)
		auth.POST("/intakes", api.ConfirmIntake)
		auth.GET("/history", api.IntakeHistory)
		auth.GET("/stats", api.AdherenceStats)

		auth.POST("/ai/parse", api.ParseMedicationText)
		auth.GET("/ai/tip", api.DailyTip)
		auth.GET("/ai/status", api.AIStatus)

		auth.GET("/settings", api.GetSystemSettings)
		auth.PUT("/settings", api.UpdateSystemSettings)
		auth.POST("/settings/test-ai", api.TestAIConnection)
	}

	return r
}
