package registry

import (
	"context"
	"fmt"

	"github.com/tanpawarit/agentic-bank/agent/agents/executor"
	"github.com/tanpawarit/agentic-bank/agent/agents/planner"
	"github.com/tanpawarit/agentic-bank/agent/agents/responder"
	"github.com/tanpawarit/agentic-bank/agent/agents/reviewer"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
	promptx "github.com/tanpawarit/agentic-bank/agent/prompt"
	toolx "github.com/tanpawarit/agentic-bank/agent/tool"
	openrouterx "github.com/tanpawarit/agentic-bank/pkg/openrouter"
)

type registryImpl struct {
	extractor contractx.Extractor
	reviewer  contractx.Reviewer
	executor  contractx.Executor
	renderer  contractx.Renderer
	fallback  contractx.Fallback
}

func (r *registryImpl) Extractor() contractx.Extractor {
	return r.extractor
}

func (r *registryImpl) Reviewer() contractx.Reviewer {
	return r.reviewer
}

func (r *registryImpl) Executor() contractx.Executor {
	return r.executor
}

func (r *registryImpl) Renderer() contractx.Renderer {
	return r.renderer
}

func (r *registryImpl) Fallback() contractx.Fallback {
	return r.fallback
}

// New assembles a registry from explicit collaborators. A nil fallback
// disables the degradation gates.
func New(
	extractor contractx.Extractor,
	reviewer contractx.Reviewer,
	executor contractx.Executor,
	renderer contractx.Renderer,
	fallback contractx.Fallback,
) (contractx.Registry, error) {
	if extractor == nil || reviewer == nil || executor == nil || renderer == nil {
		return nil, fmt.Errorf("%w: extractor, reviewer, executor and renderer are required", contractx.ErrValidation)
	}
	return &registryImpl{
		extractor: extractor,
		reviewer:  reviewer,
		executor:  executor,
		renderer:  renderer,
		fallback:  fallback,
	}, nil
}

// NewRuleBased wires the pattern planner, heuristic reviewer, catalog mock
// and templates. It runs without a fallback.
func NewRuleBased(opts ...toolx.CatalogOption) contractx.Registry {
	return &registryImpl{
		extractor: planner.NewRuleExtractor(),
		reviewer:  reviewer.NewHeuristic(),
		executor:  executor.NewMock(toolx.NewCatalog(opts...)),
		renderer:  responder.NewTemplate(),
	}
}

// NewLLM wires every role to its OpenRouter model and enables the
// generative fallback.
func NewLLM(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	plannerModel, err := cfg.OpenRouterFor(contractx.AgentTypePlanner).NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create planner model: %v", contractx.ErrModelInvoke, err)
	}
	reviewerModel, err := cfg.OpenRouterFor(contractx.AgentTypeReviewer).NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create reviewer model: %v", contractx.ErrModelInvoke, err)
	}
	executorModel, err := cfg.OpenRouterFor(contractx.AgentTypeExecutor).NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create executor model: %v", contractx.ErrModelInvoke, err)
	}
	responderModel, err := cfg.OpenRouterFor(contractx.AgentTypeResponder).NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create responder model: %v", contractx.ErrModelInvoke, err)
	}

	extractor, err := planner.NewLLMExtractor(ctx, plannerModel, prompts.Planner)
	if err != nil {
		return nil, err
	}
	llmReviewer, err := reviewer.NewLLM(ctx, reviewerModel, prompts.ReviewerPlan, prompts.ReviewerOutcome)
	if err != nil {
		return nil, err
	}
	llmExecutor, err := executor.NewLLM(ctx, executorModel, prompts.Executor,
		executor.NewMock(toolx.NewCatalog()),
		executor.WithAvailability(cfg.ExecutorAvailability),
	)
	if err != nil {
		return nil, err
	}
	renderer, err := responder.NewLLM(ctx, responderModel, prompts.Responder)
	if err != nil {
		return nil, err
	}

	fallbackCfg := cfg.OpenRouterFor(contractx.AgentTypeFallback)
	fallback, err := responder.NewOpenAIFallback(
		openrouterx.NewClient(fallbackCfg),
		fallbackCfg.Model,
		float64(fallbackCfg.Temperature),
		prompts.Fallback,
	)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		extractor: extractor,
		reviewer:  llmReviewer,
		executor:  llmExecutor,
		renderer:  renderer,
		fallback:  fallback,
	}, nil
}
