package reviewer

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
)

// reviewLLMOutput accepts both approval spellings; models drift between them.
type reviewLLMOutput struct {
	Approved *bool    `json:"approved,omitempty"`
	Approval *bool    `json:"approval,omitempty"`
	Issues   []string `json:"issues,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// LLM delegates scoring to a chat model. Verdicts are returned as reported;
// scale normalisation happens in the turn pipeline.
type LLM struct {
	planRunner    compose.Runnable[map[string]any, reviewLLMOutput]
	outcomeRunner compose.Runnable[map[string]any, reviewLLMOutput]
}

var _ contractx.Reviewer = (*LLM)(nil)

func NewLLM(ctx context.Context, chatModel einomodel.BaseChatModel, planPrompt, outcomePrompt string) (*LLM, error) {
	planRunner, err := llmx.CompileStructuredGraph[reviewLLMOutput](ctx, chatModel, planPrompt, "reviewer.plan_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile plan review graph: %v", contractx.ErrModelInvoke, err)
	}
	outcomeRunner, err := llmx.CompileStructuredGraph[reviewLLMOutput](ctx, chatModel, outcomePrompt, "reviewer.outcome_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile outcome review graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLM{planRunner: planRunner, outcomeRunner: outcomeRunner}, nil
}

func (r *LLM) ReviewPlan(ctx context.Context, plan contractx.Plan) (contractx.Verdict, error) {
	input, err := llmx.Input(map[string]any{"plan": plan})
	if err != nil {
		return contractx.Verdict{}, err
	}
	out, err := r.planRunner.Invoke(ctx, input)
	if err != nil {
		return contractx.Verdict{}, fmt.Errorf("%w: plan review invoke: %v", contractx.ErrModelInvoke, err)
	}
	return toVerdict(contractx.ReviewPlan, out), nil
}

func (r *LLM) ReviewOutcome(ctx context.Context, plan contractx.Plan, outcome contractx.Outcome) (contractx.Verdict, error) {
	input, err := llmx.Input(map[string]any{"plan": plan, "outcome": outcome})
	if err != nil {
		return contractx.Verdict{}, err
	}
	out, err := r.outcomeRunner.Invoke(ctx, input)
	if err != nil {
		return contractx.Verdict{}, fmt.Errorf("%w: outcome review invoke: %v", contractx.ErrModelInvoke, err)
	}

	verdict := toVerdict(contractx.ReviewExecution, out)
	if !outcome.Success {
		rejected := false
		verdict.Approved = &rejected
		verdict.Approval = nil
	}
	return verdict, nil
}

func toVerdict(kind contractx.ReviewKind, out reviewLLMOutput) contractx.Verdict {
	issues := make([]string, 0, len(out.Issues))
	for _, issue := range out.Issues {
		if trimmed := strings.TrimSpace(issue); trimmed != "" {
			issues = append(issues, trimmed)
		}
	}
	return contractx.Verdict{
		Approved: out.Approved,
		Approval: out.Approval,
		Issues:   issues,
		Score:    out.Score,
		Kind:     kind,
	}
}
