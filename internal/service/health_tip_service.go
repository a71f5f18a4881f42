package service

import (
	"context"
	"sync"
	"time"

	"github.com/medimate/internal/locale"
	"github.com/medimate/internal/medication"
)

const (
	defaultTipMaxTokens   = 120
	defaultTipTemperature = 0.7
	tipRequestTimeout     = 15 * time.Second
)

// TipResult 为每日健康提示。Fallback 为 true 表示使用了内置文案。
type TipResult struct {
	Date     string
	Language string
	Text     string
	HTML     string
	Fallback bool
}

// TipProvider 定义每日提示能力。
type TipProvider interface {
	DailyTip(ctx context.Context) TipResult
}

// HealthTipService 生成每日一条的服药/健康提示，成功结果按日期与语言缓存。
// 任何失败都不会向上返回错误，而是使用内置文案。
type HealthTipService struct {
	client   *aiChatClient
	settings *SystemSettingService
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]TipResult
}

// NewHealthTipService 构造 HealthTipService。
func NewHealthTipService(settings *SystemSettingService) *HealthTipService {
	return &HealthTipService{
		client:   newAIChatClient(settings),
		settings: settings,
		now:      time.Now,
		cache:    make(map[string]TipResult),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *HealthTipService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *HealthTipService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetClock 替换时间来源。
func (s *HealthTipService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// DailyTip 返回今天的提示。
func (s *HealthTipService) DailyTip(ctx context.Context) TipResult {
	language := locale.LanguageThai
	settings, err := s.settings.GetSettings()
	if err == nil {
		language = settings.Language
	}

	date := medication.Today(s.now())
	cacheKey := date + "|" + language

	s.mu.Lock()
	cached, ok := s.cache[cacheKey]
	s.mu.Unlock()
	if ok {
		return cached
	}

	if err != nil {
		return fallbackTip(date, language, failureTipText(language))
	}

	ctx, cancel := context.WithTimeout(ctx, tipRequestTimeout)
	defer cancel()

	prompt := tipPrompt(language)
	logAIExchange("TIP", "prompt", prompt)
	result, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		UserPrompt:  prompt,
		MaxTokens:   defaultTipMaxTokens,
		Temperature: defaultTipTemperature,
	})
	if err != nil {
		logAIExchange("TIP", "error", err.Error())
		return fallbackTip(date, language, failureTipText(language))
	}
	logAIExchange("TIP", "response", result.Content)

	if result.Content == "" {
		return fallbackTip(date, language, emptyTipText(language))
	}

	tip := TipResult{
		Date:     date,
		Language: language,
		Text:     result.Content,
		HTML:     renderTipHTML(result.Content),
	}

	s.mu.Lock()
	s.cache[cacheKey] = tip
	s.mu.Unlock()

	return tip
}

func tipPrompt(language string) string {
	return locale.Pick(language,
		"Give me one short, encouraging health tip specifically about medication adherence or general wellness in English. Keep it under 2 sentences.",
		"Give me one short, encouraging health tip specifically about medication adherence or general wellness in Thai. Keep it under 2 sentences.",
	)
}

func emptyTipText(language string) string {
	return locale.Pick(language, "Take good care of yourself.", "ดูแลสุขภาพด้วยนะครับ")
}

func failureTipText(language string) string {
	return locale.Pick(language, "Don't forget to take your medicine on time.", "อย่าลืมทานยาให้ตรงเวลานะครับ")
}

func fallbackTip(date, language, text string) TipResult {
	return TipResult{
		Date:     date,
		Language: language,
		Text:     text,
		HTML:     renderTipHTML(text),
		Fallback: true,
	}
}
