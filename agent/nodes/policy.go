package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

const (
	NodeValidateRequest      = "validate_request"
	NodeLoadOrCreateState    = "load_or_create_state"
	NodeDetectCommand        = "detect_command"
	NodePlanTurn             = "plan_turn"
	NodeReviewPlan           = "review_plan"
	NodeExecutePlan          = "execute_plan"
	NodeReviewOutcome        = "review_outcome"
	NodeRespondCancelled     = "respond_cancelled"
	NodeRespondClarification = "respond_clarification"
	NodeRespondFinal         = "respond_final"
	NodeDegrade              = "degrade"
	NodeFinalizeReply        = "finalize_reply"
)

func RouteAfterCommand(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Command == CommandCancel {
		return NodeRespondCancelled, nil
	}
	return NodePlanTurn, nil
}

func RouteAfterPlan(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.degraded() {
		return NodeDegrade, nil
	}
	return NodeReviewPlan, nil
}

// RouteAfterPlanReview asks for missing slots when the intent is known and
// executes otherwise. A plan without intent still executes and fails there.
func RouteAfterPlanReview(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	switch {
	case in.degraded():
		return NodeDegrade, nil
	case in.Plan.HasIntent() && !in.Plan.Complete():
		return NodeRespondClarification, nil
	default:
		return NodeExecutePlan, nil
	}
}

func RouteAfterExecution(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.degraded() {
		return NodeDegrade, nil
	}
	return NodeReviewOutcome, nil
}

func RouteAfterOutcomeReview(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.degraded() {
		return NodeDegrade, nil
	}
	return NodeRespondFinal, nil
}

func RouteAfterReply(in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.degraded() {
		return NodeDegrade, nil
	}
	return NodeFinalizeReply, nil
}
