package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/reviewer_plan.txt
	reviewerPlanRaw string

	//go:embed template/reviewer_outcome.txt
	reviewerOutcomeRaw string

	//go:embed template/executor.txt
	executorRaw string

	//go:embed template/responder.txt
	responderRaw string

	//go:embed template/fallback.txt
	fallbackRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Planner         string
	ReviewerPlan    string
	ReviewerOutcome string
	Executor        string
	Responder       string
	Fallback        string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Planner:         strings.TrimSpace(plannerRaw),
		ReviewerPlan:    strings.TrimSpace(reviewerPlanRaw),
		ReviewerOutcome: strings.TrimSpace(reviewerOutcomeRaw),
		Executor:        strings.TrimSpace(executorRaw),
		Responder:       strings.TrimSpace(responderRaw),
		Fallback:        strings.TrimSpace(fallbackRaw),
	}
}
