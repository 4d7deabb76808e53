package planner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
)

const llmRationale = "LLM extracted plan"

type plannerLLMOutput struct {
	Intent    *string        `json:"intent"`
	Slots     map[string]any `json:"slots,omitempty"`
	Rationale string         `json:"rationale,omitempty"`
}

// LLMExtractor asks a chat model for the plan and falls back to the pattern
// rules whenever the model fails or answers outside the schema.
type LLMExtractor struct {
	runner   compose.Runnable[map[string]any, plannerLLMOutput]
	fallback contractx.Extractor
}

var _ contractx.Extractor = (*LLMExtractor)(nil)

func NewLLMExtractor(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMExtractor, error) {
	runner, err := llmx.CompileStructuredGraph[plannerLLMOutput](ctx, chatModel, systemPrompt, "planner.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLMExtractor{runner: runner, fallback: NewRuleExtractor()}, nil
}

func (p *LLMExtractor) Extract(ctx context.Context, text string) (contractx.Plan, error) {
	plan, err := p.plan(ctx, text, contractx.IntentNone)
	if err != nil {
		log.Warn().Err(err).Str("stage", "planner").Msg("llm planner failed, using pattern rules")
		return p.fallback.Extract(ctx, text)
	}
	return plan, nil
}

func (p *LLMExtractor) ExtractSlots(ctx context.Context, intent contractx.Intent, text string) (contractx.Plan, error) {
	plan, err := p.plan(ctx, text, intent)
	if err != nil {
		log.Warn().Err(err).Str("stage", "planner").Msg("llm slot extraction failed, using pattern rules")
		return p.fallback.ExtractSlots(ctx, intent, text)
	}
	if plan.Intent != intent {
		plan = contractx.NewPlan(intent, plan.Slots, plan.Rationale)
	}
	return plan, nil
}

func (p *LLMExtractor) plan(ctx context.Context, text string, hint contractx.Intent) (contractx.Plan, error) {
	if strings.TrimSpace(text) == "" {
		return contractx.Plan{}, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	payload := map[string]any{"user_message": text}
	if hint.Valid() {
		payload["intent_hint"] = string(hint)
	}
	input, err := llmx.Input(payload)
	if err != nil {
		return contractx.Plan{}, err
	}

	out, err := p.runner.Invoke(ctx, input)
	if err != nil {
		return contractx.Plan{}, fmt.Errorf("%w: planner invoke: %v", contractx.ErrModelInvoke, err)
	}

	intent := contractx.IntentNone
	if out.Intent != nil {
		raw := strings.TrimSpace(*out.Intent)
		intent = contractx.ParseIntent(raw)
		if raw != "" && !intent.Valid() {
			return contractx.Plan{}, fmt.Errorf("%w: unsupported intent=%q", contractx.ErrSchemaViolation, raw)
		}
	}

	rationale := strings.TrimSpace(out.Rationale)
	if rationale == "" {
		rationale = llmRationale
	}
	return contractx.NewPlan(intent, stringSlots(out.Slots), rationale), nil
}

func stringSlots(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		switch typed := v.(type) {
		case string:
			out[k] = typed
		case float64:
			// Plain decimal keeps long account numbers and amounts out of
			// exponent form.
			out[k] = strconv.FormatFloat(typed, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(typed)
		}
	}
	return out
}
