package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// OpenAIFallback writes degradation replies through an OpenAI compatible
// chat completions endpoint.
type OpenAIFallback struct {
	client       *openaisdk.Client
	model        string
	temperature  float64
	systemPrompt string
}

var _ contractx.Fallback = (*OpenAIFallback)(nil)

func NewOpenAIFallback(client *openaisdk.Client, model string, temperature float64, systemPrompt string) (*OpenAIFallback, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: fallback model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: fallback", contractx.ErrPromptMissing)
	}
	return &OpenAIFallback{
		client:       client,
		model:        strings.TrimSpace(model),
		temperature:  temperature,
		systemPrompt: systemPrompt,
	}, nil
}

func (f *OpenAIFallback) Respond(ctx context.Context, userMessage string, reason string) (string, error) {
	completion, err := f.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(f.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(f.systemPrompt),
			openaisdk.UserMessage(fmt.Sprintf("Issue: %s\nCustomer message: %s", reason, userMessage)),
		},
		Temperature: openaisdk.Float(f.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: fallback completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: fallback returned no choices", contractx.ErrSchemaViolation)
	}

	message := strings.TrimSpace(completion.Choices[0].Message.Content)
	if message == "" {
		return "", fmt.Errorf("%w: fallback returned empty message", contractx.ErrSchemaViolation)
	}
	return message, nil
}
