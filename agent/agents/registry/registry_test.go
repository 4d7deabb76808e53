package registry

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/tanpawarit/agentic-bank/agent/agents/responder"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
	toolx "github.com/tanpawarit/agentic-bank/agent/tool"
)

func TestNewRuleBasedHasNoFallback(t *testing.T) {
	t.Parallel()

	reg := NewRuleBased(toolx.WithRand(rand.New(rand.NewPCG(1, 2))))
	if reg.Fallback() != nil {
		t.Fatal("rule based registry must not configure a fallback")
	}

	plan, err := reg.Extractor().Extract(context.Background(), "transfer 10 from 111111 to 222222")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !plan.Complete() {
		t.Fatalf("plan = %+v, want complete transfer", plan)
	}
	outcome, err := reg.Executor().Execute(context.Background(), plan)
	if err != nil || !outcome.Success {
		t.Fatalf("Execute() = %+v, %v", outcome, err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, nil, nil, responder.NewTemplate(), nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("New() error = %v, want ErrValidation", err)
	}
}

func TestNewLLMValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewLLM(context.Background(), llmx.Config{Model: "openai/gpt-4o-mini"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("NewLLM() error = %v, want ErrValidation", err)
	}
}

func TestNewLLMBuildsAllRoles(t *testing.T) {
	t.Parallel()

	reg, err := NewLLM(context.Background(), llmx.Config{
		BaseURL:              "http://127.0.0.1:0/v1",
		APIKey:               "test-key",
		Model:                "openai/gpt-4o-mini",
		MaxCompletionToken:   256,
		PlannerTemperature:   0,
		ReviewerTemperature:  0,
		ExecutorTemperature:  -1,
		ResponderTemperature: -1,
		FallbackTemperature:  -1,
		ExecutorAvailability: 0.8,
	})
	if err != nil {
		t.Fatalf("NewLLM() error = %v", err)
	}
	if reg.Extractor() == nil || reg.Reviewer() == nil || reg.Executor() == nil || reg.Renderer() == nil {
		t.Fatal("registry is missing a collaborator")
	}
	if reg.Fallback() == nil {
		t.Fatal("llm registry must configure a fallback")
	}
}
