package reviewer

import (
	"context"
	"fmt"
	"math"
	"strings"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// ApprovalThreshold is the lowest approved score on the 1-10 scale.
const ApprovalThreshold = 5.0

// Heuristic scores plans and outcomes on relevance, completeness, safety
// and quality, each 1-10, and reports their mean.
type Heuristic struct{}

var _ contractx.Reviewer = Heuristic{}

func NewHeuristic() Heuristic {
	return Heuristic{}
}

func (Heuristic) ReviewPlan(_ context.Context, plan contractx.Plan) (contractx.Verdict, error) {
	var issues []string
	relevance, completeness, safety, quality := 3, 3, 3, 3

	if !plan.HasIntent() {
		issues = append(issues, "No intent detected")
		relevance = 1
	} else {
		relevance = 8
		required := plan.Intent.RequiredSlots()
		missing := make([]string, 0, len(required))
		for _, key := range required {
			if plan.Slot(key) == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("Missing required slots: %s", strings.Join(missing, ", ")))
			completeness = max(1, 10-int(9*float64(len(missing))/float64(max(1, len(required)))))
		} else {
			completeness = 9
		}
		safety = 8
		if strings.TrimSpace(plan.Rationale) != "" {
			quality = 7
		} else {
			quality = 5
		}
	}

	score := meanScore(relevance, completeness, safety, quality)
	return contractx.NewVerdict(contractx.ReviewPlan, score >= ApprovalThreshold, score, issues), nil
}

func (Heuristic) ReviewOutcome(_ context.Context, plan contractx.Plan, outcome contractx.Outcome) (contractx.Verdict, error) {
	var issues []string
	relevance, completeness, safety, quality := 4, 7, 7, 7
	if plan.HasIntent() {
		relevance = 8
	}

	if !outcome.Success {
		reason := strings.TrimSpace(outcome.Error)
		if reason == "" {
			reason = "Execution failed for unknown reason"
		}
		issues = append(issues, reason)
		completeness = 2
		quality = 3
	} else {
		switch plan.Intent {
		case contractx.IntentTransferMoney:
			if outcome.StringField("transfer_id") == "" {
				issues = append(issues, "Missing transfer_id in execution result")
				completeness = 5
			}
		case contractx.IntentCheckBalance:
			if _, ok := outcome.Data["balance"]; !ok {
				issues = append(issues, "Missing balance in execution result")
				completeness = 5
			}
		}
	}

	score := meanScore(relevance, completeness, safety, quality)
	return contractx.NewVerdict(contractx.ReviewExecution, outcome.Success && score >= ApprovalThreshold, score, issues), nil
}

// meanScore averages the criteria and rounds half to even at one decimal.
func meanScore(criteria ...int) float64 {
	total := 0
	for _, c := range criteria {
		total += c
	}
	return math.RoundToEven(float64(total)/float64(len(criteria))*10) / 10
}
