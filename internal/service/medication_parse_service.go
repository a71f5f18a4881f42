package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/medimate/internal/medication"
	"github.com/microcosm-cc/bluemonday"
	"google.golang.org/genai"
)

var (
	// ErrParseInputEmpty 表示待解析的文本为空。
	ErrParseInputEmpty = errors.New("parse input is empty")
	// ErrAIResponseMalformed 表示 AI 返回的数据缺失字段或格式不正确。
	ErrAIResponseMalformed = errors.New("ai response is malformed")
)

const (
	defaultParseMaxTokens   = 400
	defaultParseTemperature = 0.1
	maxParseInputRunes      = 1000
)

const parseSystemPrompt = `You extract medication details from short notes written in Thai or English.
Reply with a single JSON object with the keys "name", "dosage", "times" and "instructions".
"times" is an array of 24-hour "HH:mm" strings.`

// ParsedMedication 为 AI 从自由文本中提取的药品字段。
type ParsedMedication struct {
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage"`
	Instructions string   `json:"instructions"`
	Times        []string `json:"times"`
}

// ApplyTo 把解析结果合并进表单，仅当解析出的时间非空时才替换原有时间。
func (p ParsedMedication) ApplyTo(form MedicationInput) MedicationInput {
	form.Name = p.Name
	form.Dosage = p.Dosage
	form.Instructions = p.Instructions
	if len(p.Times) > 0 {
		form.Times = append([]string(nil), p.Times...)
	}
	return form
}

// MedicationParser 定义自由文本解析能力，便于在 handler 中注入不同实现。
type MedicationParser interface {
	ParseMedication(ctx context.Context, text string) (ParsedMedication, error)
}

// MedicationParseService 调用 AI 平台把自由文本转换为药品字段。
type MedicationParseService struct {
	client    *aiChatClient
	sanitizer *bluemonday.Policy
}

// NewMedicationParseService 构造 MedicationParseService。
func NewMedicationParseService(settings *SystemSettingService) *MedicationParseService {
	return &MedicationParseService{
		client:    newAIChatClient(settings),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *MedicationParseService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *MedicationParseService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *MedicationParseService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// SetGeminiBaseURL 覆盖默认的 Gemini API 地址。
func (s *MedicationParseService) SetGeminiBaseURL(base string) {
	s.client.SetGeminiBaseURL(base)
}

// SetModel 指定某个平台使用的模型名称。
func (s *MedicationParseService) SetModel(provider, model string) {
	s.client.SetModel(provider, model)
}

// ParseMedication 解析自由文本。AI 不可用时返回 ErrAIAPIKeyMissing，调用方应回退到手动填写；
// 返回内容不合法时返回 ErrAIResponseMalformed，且不产生任何部分结果。
func (s *MedicationParseService) ParseMedication(ctx context.Context, text string) (ParsedMedication, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return ParsedMedication{}, ErrParseInputEmpty
	}

	userPrompt := buildParsePrompt(truncateRunes(input, maxParseInputRunes))
	logAIExchange("PARSE", "prompt", userPrompt)

	result, err := s.client.call(ctx, aiChatRequest{
		SystemPrompt: parseSystemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    defaultParseMaxTokens,
		Temperature:  defaultParseTemperature,
		JSON:         true,
		Schema:       parseResponseSchema(),
	})
	if err != nil {
		return ParsedMedication{}, err
	}
	logAIExchange("PARSE", "response", result.Content)

	return decodeParsedMedication(result.Content, s.sanitizer)
}

func buildParsePrompt(input string) string {
	var builder strings.Builder
	builder.WriteString("Analyze the following medication instruction (in Thai or English) and extract the details into a structured JSON format.\n")
	builder.WriteString(`Calculate specific times (HH:mm format) based on common practices (e.g., "Morning" = "08:00", "Before Bed" = "22:00", "After Breakfast" = "08:30").` + "\n")
	builder.WriteString("If strict times aren't provided, estimate sensible defaults.\n\n")
	builder.WriteString("Input text: ")
	builder.WriteString(fmt.Sprintf("%q", input))
	return builder.String()
}

func parseResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":   {Type: genai.TypeString, Description: "Name of the medicine"},
			"dosage": {Type: genai.TypeString, Description: "Amount to take (e.g. 1 tablet, 500mg)"},
			"times": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Array of times in HH:mm format",
			},
			"instructions": {Type: genai.TypeString, Description: "Brief instructions (e.g. Take after food)"},
		},
		Required: []string{"name", "dosage", "times", "instructions"},
	}
}

// rawParsedMedication 使用指针区分“字段缺失”与“空字符串”。
type rawParsedMedication struct {
	Name         *string   `json:"name"`
	Dosage       *string   `json:"dosage"`
	Instructions *string   `json:"instructions"`
	Times        *[]string `json:"times"`
}

func decodeParsedMedication(content string, sanitizer *bluemonday.Policy) (ParsedMedication, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return ParsedMedication{}, fmt.Errorf("%w: empty response", ErrAIResponseMalformed)
	}

	var raw rawParsedMedication
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return ParsedMedication{}, fmt.Errorf("%w: %v", ErrAIResponseMalformed, err)
	}

	var missing []string
	if raw.Name == nil {
		missing = append(missing, "name")
	}
	if raw.Dosage == nil {
		missing = append(missing, "dosage")
	}
	if raw.Times == nil {
		missing = append(missing, "times")
	}
	if raw.Instructions == nil {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return ParsedMedication{}, fmt.Errorf("%w: missing %s", ErrAIResponseMalformed, strings.Join(missing, ", "))
	}

	clean := func(value string) string {
		if sanitizer == nil {
			return strings.TrimSpace(value)
		}
		return strings.TrimSpace(sanitizer.Sanitize(value))
	}

	result := ParsedMedication{
		Name:         clean(*raw.Name),
		Dosage:       clean(*raw.Dosage),
		Instructions: clean(*raw.Instructions),
	}
	if result.Name == "" {
		return ParsedMedication{}, fmt.Errorf("%w: name is empty", ErrAIResponseMalformed)
	}

	times, err := medication.NormalizeTimes(*raw.Times)
	if err != nil {
		return ParsedMedication{}, fmt.Errorf("%w: %v", ErrAIResponseMalformed, err)
	}
	result.Times = times

	return result, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func truncateRunes(input string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	return string(runes[:limit])
}
