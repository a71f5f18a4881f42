package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medimate/internal/service"
	"go.uber.org/zap"
)

type parseRequest struct {
	Text string            `json:"text"`
	Form medicationPayload `json:"form"`
}

// ParseMedicationText 调用 AI 解析自由文本，返回解析结果以及合并进表单后的字段。
// 解析失败时不返回任何部分结果。
func (a *API) ParseMedicationText(c *gin.Context) {
	language := a.language(c)

	var payload parseRequest
	if !bindJSON(c, &payload, localizeMessage(language, "request.invalid")) {
		return
	}

	parsed, err := a.parser.ParseMedication(c.Request.Context(), payload.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParseInputEmpty):
			respondError(c, http.StatusBadRequest, localizeMessage(language, "ai.inputEmpty"))
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":       localizeMessage(language, "ai.disabled"),
				"manual_only": true,
			})
		case errors.Is(err, service.ErrAIResponseMalformed):
			zap.L().Warn("ai parse response malformed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     localizeMessage(language, "ai.malformed"),
				"retryable": true,
			})
		default:
			zap.L().Warn("ai parse failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     localizeMessage(language, "ai.failed"),
				"retryable": true,
			})
		}
		return
	}

	form := parsed.ApplyTo(payload.Form.toInput())
	c.JSON(http.StatusOK, gin.H{
		"parsed": gin.H{
			"name":         parsed.Name,
			"dosage":       parsed.Dosage,
			"instructions": parsed.Instructions,
			"times":        nonNilTimes(parsed.Times),
		},
		"form": gin.H{
			"name":         form.Name,
			"dosage":       form.Dosage,
			"instructions": form.Instructions,
			"frequency":    form.Frequency,
			"times":        nonNilTimes(form.Times),
			"color":        form.Color,
		},
	})
}

// DailyTip 返回今日提示，失败时使用内置文案，从不返回错误。
func (a *API) DailyTip(c *gin.Context) {
	tip := a.tips.DailyTip(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"date":     tip.Date,
		"language": tip.Language,
		"text":     tip.Text,
		"html":     tip.HTML,
		"fallback": tip.Fallback,
	})
}

// AIStatus 返回 AI 是否可用
func (a *API) AIStatus(c *gin.Context) {
	enabled, provider, err := a.system.AIEnabled()
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, localizeMessage(a.language(c), "settings.loadFailed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": enabled, "provider": provider})
}

func nonNilTimes(times []string) []string {
	if times == nil {
		return []string{}
	}
	return times
}
