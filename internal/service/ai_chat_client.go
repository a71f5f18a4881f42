package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    float64             `json:"temperature,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	// JSON 要求模型只输出 JSON；Schema 仅 Gemini 使用。
	JSON   bool
	Schema *genai.Schema
}

type aiChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

const (
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultDeepSeekModel = "deepseek-chat"
)

type aiChatClient struct {
	settings        *SystemSettingService
	http            httpDoer
	gemini          geminiGenerator
	openAIBaseURL   string
	deepSeekBaseURL string
	geminiBaseURL   string
	models          map[string]string
	missingKeyLog   atomic.Bool
}

func newAIChatClient(settings *SystemSettingService) *aiChatClient {
	c := &aiChatClient{
		settings:        settings,
		http:            &http.Client{Timeout: 60 * time.Second},
		openAIBaseURL:   defaultOpenAIBaseURL,
		deepSeekBaseURL: defaultDeepSeekBaseURL,
		geminiBaseURL:   defaultGeminiBaseURL,
		models: map[string]string{
			AIProviderGemini:   defaultGeminiModel,
			AIProviderOpenAI:   defaultOpenAIModel,
			AIProviderDeepSeek: defaultDeepSeekModel,
		},
	}
	c.gemini = &genaiGenerator{client: c}
	return c
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
		return
	}
	c.http = client
}

func (c *aiChatClient) SetOpenAIBaseURL(base string) {
	c.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *aiChatClient) SetDeepSeekBaseURL(base string) {
	c.deepSeekBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *aiChatClient) SetGeminiBaseURL(base string) {
	c.geminiBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *aiChatClient) SetModel(provider, model string) {
	provider = normalizeAIProvider(provider)
	model = strings.TrimSpace(model)
	if provider == "" || model == "" {
		return
	}
	c.models[provider] = model
}

// call 读取当前系统设置后调用对应平台。
func (c *aiChatClient) call(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	if c.settings == nil {
		return aiChatResponse{}, ErrAIAPIKeyMissing
	}
	settings, err := c.settings.GetSettings()
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("load settings: %w", err)
	}
	return c.callWithSettings(ctx, settings, req)
}

func (c *aiChatClient) callWithSettings(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	provider := normalizeAIProvider(settings.AIProvider)
	if provider == "" {
		provider = AIProviderGemini
	}

	apiKey := settings.APIKey()
	if apiKey == "" {
		// 每个进程只提示一次，避免每次请求都刷日志
		if c.missingKeyLog.CompareAndSwap(false, true) {
			zap.L().Warn("AI features disabled: api key missing", zap.String("provider", provider))
		}
		return aiChatResponse{}, ErrAIAPIKeyMissing
	}
	c.missingKeyLog.Store(false)

	model := c.models[provider]

	if provider == AIProviderGemini {
		return c.gemini.generate(ctx, apiKey, model, req)
	}

	var (
		base  string
		label string
	)
	switch provider {
	case AIProviderDeepSeek:
		base = orDefaultURL(c.deepSeekBaseURL, defaultDeepSeekBaseURL)
		label = "DeepSeek"
	default:
		base = orDefaultURL(c.openAIBaseURL, defaultOpenAIBaseURL)
		label = "OpenAI"
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = 0
	}

	payload := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: strings.TrimSpace(req.SystemPrompt)},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON || req.Schema != nil {
		payload.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("encode request: %w", err)
	}

	endpoint := base + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("build %s request: %w", label, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "medimate-ai/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("request %s: %w", label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("read %s response: %w", label, err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return aiChatResponse{}, fmt.Errorf("decode %s response: %w", label, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = strings.TrimSpace(string(respBody))
		}
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiChatResponse{}, fmt.Errorf("%s returned error: %s", label, errMsg)
	}

	if len(completion.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("%s returned no choices", label)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	return aiChatResponse{
		Content:          content,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}
