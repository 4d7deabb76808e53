package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	openrouterx "github.com/tanpawarit/agentic-bank/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	PlannerModel         string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	ReviewerModel        string  `envconfig:"REVIEWER_MODEL" split_words:"true"`
	ExecutorModel        string  `envconfig:"EXECUTOR_MODEL" split_words:"true"`
	ResponderModel       string  `envconfig:"RESPONDER_MODEL" split_words:"true"`
	FallbackModel        string  `envconfig:"FALLBACK_MODEL" split_words:"true"`
	PlannerTemperature   float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"0"`
	ReviewerTemperature  float32 `envconfig:"REVIEWER_TEMPERATURE" split_words:"true" default:"0"`
	ExecutorTemperature  float32 `envconfig:"EXECUTOR_TEMPERATURE" split_words:"true" default:"-1"`
	ResponderTemperature float32 `envconfig:"RESPONDER_TEMPERATURE" split_words:"true" default:"-1"`
	FallbackTemperature  float32 `envconfig:"FALLBACK_TEMPERATURE" split_words:"true" default:"-1"`

	// ExecutorAvailability is the probability that the simulated banking backend answers.
	ExecutorAvailability float64 `envconfig:"EXECUTOR_AVAILABILITY" split_words:"true" default:"0.8"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.ExecutorAvailability < 0 || c.ExecutorAvailability > 1 {
		return fmt.Errorf("%w: executor availability must be within [0, 1]", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the transport config of one agent role. A role
// model or a non-negative role temperature overrides the defaults.
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(model string, temperature float32) {
		if v := strings.TrimSpace(model); v != "" {
			modelName = v
		}
		if temperature >= 0 {
			temp = temperature
		}
	}

	switch agentType {
	case contractx.AgentTypePlanner:
		override(c.PlannerModel, c.PlannerTemperature)
	case contractx.AgentTypeReviewer:
		override(c.ReviewerModel, c.ReviewerTemperature)
	case contractx.AgentTypeExecutor:
		override(c.ExecutorModel, c.ExecutorTemperature)
	case contractx.AgentTypeResponder:
		override(c.ResponderModel, c.ResponderTemperature)
	case contractx.AgentTypeFallback:
		override(c.FallbackModel, c.FallbackTemperature)
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
