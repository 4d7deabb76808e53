package executor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
	toolx "github.com/tanpawarit/agentic-bank/agent/tool"
)

const (
	DefaultAvailability = 0.8
	unavailableMessage  = "Agent/tool unavailable. Please try again later."
)

type executorLLMOutput struct {
	Success *bool          `json:"success,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *string        `json:"error,omitempty"`
}

type LLMOption func(*LLM)

// WithAvailability sets the probability that the simulated backend answers.
func WithAvailability(p float64) LLMOption {
	return func(e *LLM) {
		if p >= 0 && p <= 1 {
			e.availability = p
		}
	}
}

// WithRoll replaces the source of the availability roll, a value in [0, 1).
func WithRoll(roll func() float64) LLMOption {
	return func(e *LLM) {
		if roll != nil {
			e.roll = roll
		}
	}
}

// LLM simulates banking actions with a chat model. The backend is randomly
// unavailable, and the catalog mock answers when the model output is unusable.
type LLM struct {
	runner       compose.Runnable[map[string]any, executorLLMOutput]
	mock         *Mock
	availability float64

	mu   sync.Mutex
	roll func() float64
	now  func() time.Time
}

var _ contractx.Executor = (*LLM)(nil)

func NewLLM(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, mock *Mock, opts ...LLMOption) (*LLM, error) {
	runner, err := llmx.CompileStructuredGraph[executorLLMOutput](ctx, chatModel, systemPrompt, "executor.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile executor graph: %v", contractx.ErrModelInvoke, err)
	}
	if mock == nil {
		mock = NewMock(nil)
	}

	e := &LLM{
		runner:       runner,
		mock:         mock,
		availability: DefaultAvailability,
		roll:         rand.Float64,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

func (e *LLM) available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roll() < e.availability
}

func (e *LLM) Execute(ctx context.Context, plan contractx.Plan) (contractx.Outcome, error) {
	started := e.now()
	if !e.available() {
		outcome := contractx.Failed(plan.Intent, unavailableMessage)
		outcome.Elapsed = e.now().Sub(started)
		return outcome, nil
	}

	action := map[string]any{}
	if info := toolx.InfoFor(plan.Intent); info != nil {
		action["name"] = info.Name
		action["description"] = info.Desc
		action["parameters"] = plan.Intent.RequiredSlots()
	}
	input, err := llmx.Input(map[string]any{
		"plan":   plan,
		"action": action,
	})
	if err != nil {
		return contractx.Outcome{}, err
	}

	out, err := e.runner.Invoke(ctx, input)
	if err != nil {
		log.Warn().Err(err).Str("stage", "executor").Str("intent", string(plan.Intent)).Msg("llm execution unusable, using catalog mock")
		return e.mock.Execute(ctx, plan)
	}

	outcome := toOutcome(plan, out)
	outcome.Elapsed = e.now().Sub(started)
	return outcome, nil
}

func toOutcome(plan contractx.Plan, out executorLLMOutput) contractx.Outcome {
	success := out.Success == nil || *out.Success
	if !success {
		reason := ""
		if out.Error != nil {
			reason = strings.TrimSpace(*out.Error)
		}
		return contractx.Failed(plan.Intent, reason)
	}

	data := make(map[string]any, len(out.Data)+len(plan.Slots))
	for k, v := range plan.Slots {
		data[k] = v
	}
	for k, v := range out.Data {
		data[k] = v
	}
	return contractx.Succeeded(plan.Intent, data)
}
