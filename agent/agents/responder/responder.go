package responder

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
)

type responderLLMOutput struct {
	Message string `json:"message"`
}

// LLM summarises executed outcomes with a chat model. Clarification prompts
// always come from the templates.
type LLM struct {
	runner    compose.Runnable[map[string]any, responderLLMOutput]
	templates Template
}

var _ contractx.Renderer = (*LLM)(nil)

func NewLLM(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLM, error) {
	runner, err := llmx.CompileStructuredGraph[responderLLMOutput](ctx, chatModel, systemPrompt, "responder.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile responder graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLM{runner: runner, templates: NewTemplate()}, nil
}

func (r *LLM) Render(ctx context.Context, plan contractx.Plan, outcome *contractx.Outcome) (string, error) {
	if outcome == nil || (plan.HasIntent() && len(plan.MissingSlots) > 0) {
		return r.templates.Render(ctx, plan, outcome)
	}

	input, err := llmx.Input(map[string]any{
		"intent":  plan.Intent,
		"outcome": outcome,
	})
	if err != nil {
		return "", err
	}

	out, err := r.runner.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: responder invoke: %v", contractx.ErrModelInvoke, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return "", fmt.Errorf("%w: responder returned empty message", contractx.ErrSchemaViolation)
	}
	return message, nil
}
