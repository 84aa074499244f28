package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/daisied/lingo"
	"github.com/sashabaranov/go-openai"
)

// openAIName tags the adapter in classified errors.
const openAIName = "OpenAI"

// OpenAIBackend is an OpenAI-compatible adapter for the credentialed
// primary slot, for users pointing the engine at a chat-completions
// endpoint instead of a dedicated translation service.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI adapter.
type OpenAIConfig struct {
	APIKey      string  // API key (required)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIBackend creates an OpenAI-compatible adapter.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string {
	return openAIName
}

// Translate translates one text via a chat completion constrained to a
// JSON object response.
func (b *OpenAIBackend) Translate(ctx context.Context, text, targetLang string) (Result, error) {
	systemPrompt := fmt.Sprintf(`You are a translator. Translate the user's message into %s.
Respond with a JSON object: {"source_language": "<detected ISO 639-1 code>", "text": "<translation>"}.
Preserve meaningful whitespace and do not translate URLs, code, or placeholders.`,
		lingo.LanguageName(targetLang))

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: b.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, &lingo.BackendError{
			Backend: openAIName, Status: 200, Message: "empty completion",
		}
	}

	var wire struct {
		SourceLanguage string `json:"source_language"`
		Text           string `json:"text"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &wire); err != nil {
		return Result{}, &lingo.BackendError{
			Backend: openAIName, Status: 200,
			Message: "invalid response format", Cause: err,
		}
	}
	if wire.Text == "" {
		return Result{}, &lingo.BackendError{
			Backend: openAIName, Status: 200, Message: "response missing translation",
		}
	}

	return Result{SourceLanguage: wire.SourceLanguage, Text: wire.Text}, nil
}

// classifyOpenAIError maps SDK errors onto the engine's taxonomy: API
// errors keep their HTTP status, everything else is a network-level
// failure.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &lingo.BackendError{
			Backend: openAIName,
			Status:  apiErr.HTTPStatusCode,
			Message: apiErr.Message,
			Cause:   err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &lingo.BackendError{
			Backend: openAIName,
			Status:  reqErr.HTTPStatusCode,
			Message: reqErr.Error(),
			Cause:   err,
		}
	}
	return &lingo.BackendError{
		Backend: openAIName,
		Status:  lingo.StatusNetwork,
		Message: err.Error(),
		Cause:   err,
	}
}

// Verify OpenAIBackend implements Backend
var _ Backend = (*OpenAIBackend)(nil)
