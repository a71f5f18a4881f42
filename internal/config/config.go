package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string `env:"LISTEN_ADDR"`
	Port           string `env:"PORT" env-default:"8080"`
	DatabasePath   string `env:"DATABASE_PATH" env-default:"medimate.db"`
	SessionSecret  string `env:"SESSION_SECRET" env-default:"medimate-dev-secret"`
	GinMode        string `env:"GIN_MODE" env-default:"release"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"info"`
	OwnerUserName  string `env:"OWNER_USER_NAME"`
	OwnerPassword  string `env:"OWNER_PASSWORD"`
	Language       string `env:"APP_LANGUAGE" env-default:"th"`
	AIProvider     string `env:"AI_PROVIDER" env-default:"gemini"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	LegacyAPIKey   string `env:"API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	DeepSeekAPIKey string `env:"DEEPSEEK_API_KEY"`
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: read env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	// 变量存在但为空时 cleanenv 不会套用默认值
	c.DatabasePath = orDefault(c.DatabasePath, "medimate.db")
	c.SessionSecret = orDefault(c.SessionSecret, "medimate-dev-secret")
	c.GinMode = orDefault(c.GinMode, "release")
	c.LogLevel = orDefault(c.LogLevel, "info")
	c.Language = orDefault(c.Language, "th")
	c.AIProvider = strings.ToLower(orDefault(c.AIProvider, "gemini"))
	c.OwnerUserName = strings.TrimSpace(c.OwnerUserName)
	c.OwnerPassword = strings.TrimSpace(c.OwnerPassword)

	// API_KEY 为早期版本使用的变量名，仅在未设置 GEMINI_API_KEY 时生效
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = strings.TrimSpace(c.LegacyAPIKey)
	}
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.DeepSeekAPIKey = strings.TrimSpace(c.DeepSeekAPIKey)
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
