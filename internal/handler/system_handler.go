package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medimate/internal/service"
)

// HealthCheck 检查数据库连接
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type systemSettingsRequest struct {
	Language       string `json:"language"`
	AIProvider     string `json:"aiProvider"`
	GeminiAPIKey   string `json:"geminiApiKey"`
	OpenAIAPIKey   string `json:"openaiApiKey"`
	DeepSeekAPIKey string `json:"deepseekApiKey"`
}

type aiTestRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, localizeMessage(a.language(c), "settings.loadFailed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !bindJSON(c, &payload, localizeMessage(a.language(c), "request.invalid")) {
		return
	}

	settings, err := a.system.UpdateSettings(payload.toInput())
	if err != nil {
		respondError(c, http.StatusInternalServerError, localizeMessage(a.language(c), "settings.saveFailed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  localizeMessage(settings.Language, "settings.saved"),
		"settings": systemSettingsPayload(settings),
	})
}

func (r systemSettingsRequest) toInput() service.SystemSettingsInput {
	return service.SystemSettingsInput{
		Language:       r.Language,
		AIProvider:     r.AIProvider,
		GeminiAPIKey:   unmaskedAPIKey(r.GeminiAPIKey),
		OpenAIAPIKey:   unmaskedAPIKey(r.OpenAIAPIKey),
		DeepSeekAPIKey: unmaskedAPIKey(r.DeepSeekAPIKey),
	}
}

// 回传的掩码值视为未修改
func unmaskedAPIKey(key string) string {
	if strings.HasPrefix(strings.TrimSpace(key), "*") {
		return ""
	}
	return key
}

func systemSettingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"language":       settings.Language,
		"aiProvider":     settings.AIProvider,
		"geminiApiKey":   maskAPIKey(settings.GeminiAPIKey),
		"openaiApiKey":   maskAPIKey(settings.OpenAIAPIKey),
		"deepseekApiKey": maskAPIKey(settings.DeepSeekAPIKey),
		"aiEnabled":      settings.APIKey() != "",
	}
}

// maskAPIKey 仅保留末四位
func maskAPIKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// TestAIConnection 测试不同 AI 平台 API Key 的连通性。
func (a *API) TestAIConnection(c *gin.Context) {
	language := a.language(c)

	var payload aiTestRequest
	if !bindJSON(c, &payload, localizeMessage(language, "request.invalid")) {
		return
	}

	if err := a.system.TestAIConnection(c.Request.Context(), payload.Provider, payload.APIKey); err != nil {
		switch {
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			respondError(c, http.StatusBadRequest, localizeMessage(language, "ai.keyRequired"))
		default:
			respondError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": localizeMessage(language, "ai.connected")})
}
