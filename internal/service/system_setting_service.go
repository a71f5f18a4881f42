package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medimate/internal/db"
	"github.com/medimate/internal/locale"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderGemini 表示使用 Google Gemini 能力。
	AIProviderGemini = "gemini"
	// AIProviderOpenAI 表示使用 OpenAI 能力。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 能力。
	AIProviderDeepSeek = "deepseek"
)

var supportedAIProviders = []string{AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek}

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	defaultGeminiBaseURL   = "https://generativelanguage.googleapis.com"
)

// SystemSettings 描述可配置的系统信息。
type SystemSettings struct {
	Language       string
	AIProvider     string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	DeepSeekAPIKey string
}

// APIKey 返回当前 AI 平台对应的 Key。
func (s SystemSettings) APIKey() string {
	switch normalizeAIProvider(s.AIProvider) {
	case AIProviderOpenAI:
		return strings.TrimSpace(s.OpenAIAPIKey)
	case AIProviderDeepSeek:
		return strings.TrimSpace(s.DeepSeekAPIKey)
	default:
		return strings.TrimSpace(s.GeminiAPIKey)
	}
}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// SystemSettingsInput 用于更新系统设置，Key 留空表示保持原值。
type SystemSettingsInput struct {
	Language       string
	AIProvider     string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	DeepSeekAPIKey string
}

// SystemSettingService 提供系统设置的读取与更新能力。
// 数据库中未保存的项回退到启动时由环境变量提供的默认值。
type SystemSettingService struct {
	db              *gorm.DB
	defaults        SystemSettings
	httpClient      httpDoer
	openAIBaseURL   string
	deepSeekBaseURL string
	geminiBaseURL   string
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, defaults SystemSettings) *SystemSettingService {
	defaults.Language = normalizeLanguage(defaults.Language)
	if provider := normalizeAIProvider(defaults.AIProvider); provider != "" {
		defaults.AIProvider = provider
	} else {
		defaults.AIProvider = AIProviderGemini
	}

	return &SystemSettingService{
		db:              gdb,
		defaults:        defaults,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		openAIBaseURL:   defaultOpenAIBaseURL,
		deepSeekBaseURL: defaultDeepSeekBaseURL,
		geminiBaseURL:   defaultGeminiBaseURL,
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []string{
	db.SettingKeyLanguage,
	db.SettingKeyAIProvider,
	db.SettingKeyGeminiAPIKey,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyDeepSeekAPIKey,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := s.defaults
	if s.db == nil {
		return result, nil
	}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		if value == "" {
			continue
		}
		switch record.Key {
		case db.SettingKeyLanguage:
			result.Language = normalizeLanguage(value)
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyGeminiAPIKey:
			result.GeminiAPIKey = value
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = value
		case db.SettingKeyDeepSeekAPIKey:
			result.DeepSeekAPIKey = value
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写的 Key 保持不变。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	if s.db == nil {
		return SystemSettings{}, errors.New("database not initialized")
	}

	provider := normalizeAIProvider(input.AIProvider)
	if provider == "" {
		provider = s.defaults.AIProvider
	}

	values := map[string]string{
		db.SettingKeyLanguage:   normalizeLanguage(input.Language),
		db.SettingKeyAIProvider: provider,
	}
	if key := strings.TrimSpace(input.GeminiAPIKey); key != "" {
		values[db.SettingKeyGeminiAPIKey] = key
	}
	if key := strings.TrimSpace(input.OpenAIAPIKey); key != "" {
		values[db.SettingKeyOpenAIAPIKey] = key
	}
	if key := strings.TrimSpace(input.DeepSeekAPIKey); key != "" {
		values[db.SettingKeyDeepSeekAPIKey] = key
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			value, ok := values[key]
			if !ok {
				continue
			}
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.GetSettings()
}

// AIEnabled 判断当前 AI 平台是否已配置 Key。
func (s *SystemSettingService) AIEnabled() (bool, string, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return false, "", err
	}
	return settings.APIKey() != "", settings.AIProvider, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetDeepSeekBaseURL 覆盖 DeepSeek API 的基础地址，便于测试或自定义代理。
func (s *SystemSettingService) SetDeepSeekBaseURL(base string) {
	s.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetGeminiBaseURL 覆盖 Gemini API 的基础地址。
func (s *SystemSettingService) SetGeminiBaseURL(base string) {
	s.geminiBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestAIConnection 调用指定 AI 平台的模型列表接口验证 API Key 的有效性。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, provider, apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return ErrAIAPIKeyMissing
	}

	prov := normalizeAIProvider(provider)
	if prov == "" {
		prov = AIProviderGemini
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	var (
		endpoint string
		label    string
	)
	switch prov {
	case AIProviderOpenAI:
		endpoint = orDefaultURL(s.openAIBaseURL, defaultOpenAIBaseURL) + "/models"
		label = "OpenAI"
	case AIProviderDeepSeek:
		endpoint = orDefaultURL(s.deepSeekBaseURL, defaultDeepSeekBaseURL) + "/models"
		label = "DeepSeek"
	default:
		endpoint = orDefaultURL(s.geminiBaseURL, defaultGeminiBaseURL) + "/v1beta/models"
		label = "Gemini"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	if prov == AIProviderGemini {
		req.Header.Set("x-goog-api-key", key)
	} else {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	req.Header.Set("User-Agent", "medimate/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s returned %s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s returned %s", label, resp.Status)
	}

	return nil
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}

func normalizeLanguage(language string) string {
	if normalized := locale.NormalizeLanguage(language); normalized != "" {
		return normalized
	}
	return locale.LanguageThai
}

func orDefaultURL(base, fallback string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return fallback
	}
	return base
}
