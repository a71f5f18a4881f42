package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// geminiGenerator 抽象 Gemini 调用，测试中可替换。
type geminiGenerator interface {
	generate(ctx context.Context, apiKey, model string, req aiChatRequest) (aiChatResponse, error)
}

// genaiGenerator 通过 google.golang.org/genai 调用 Gemini，按 API Key 复用客户端。
type genaiGenerator struct {
	client  *aiChatClient
	mu      sync.Mutex
	clients map[string]*genai.Client
}

func (g *genaiGenerator) generate(ctx context.Context, apiKey, model string, req aiChatRequest) (aiChatResponse, error) {
	client, err := g.clientFor(ctx, apiKey)
	if err != nil {
		return aiChatResponse{}, err
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if prompt := strings.TrimSpace(req.SystemPrompt); prompt != "" {
		config.SystemInstruction = genai.NewContentFromText(prompt, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON || req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(req.UserPrompt), config)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("request Gemini: %w", err)
	}

	result := aiChatResponse{Content: strings.TrimSpace(resp.Text())}
	if usage := resp.UsageMetadata; usage != nil {
		result.PromptTokens = int(usage.PromptTokenCount)
		result.CompletionTokens = int(usage.CandidatesTokenCount)
	}
	return result, nil
}

func (g *genaiGenerator) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cacheKey := apiKey + "|" + g.client.geminiBaseURL
	if client, ok := g.clients[cacheKey]; ok {
		return client, nil
	}

	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient, ok := g.client.http.(*http.Client); ok {
		config.HTTPClient = httpClient
	}
	if base := strings.TrimSpace(g.client.geminiBaseURL); base != "" && base != defaultGeminiBaseURL {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: base + "/"}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	if g.clients == nil {
		g.clients = make(map[string]*genai.Client)
	}
	g.clients[cacheKey] = client
	return client, nil
}
