package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	metricsx "github.com/tanpawarit/agentic-bank/agent/metrics"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

const (
	reasonPlanReview      = "Plan review failed or plan score too low."
	reasonExecution       = "Execution failed or agent/tool unavailable."
	reasonExecutionReview = "Execution review failed or score too low."
)

// ReviewPlan scores the plan. The verdict only gates the turn when a
// fallback is configured.
func ReviewPlan(
	ctx context.Context,
	in *GraphState,
	reviewer contractx.Reviewer,
	degradable bool,
	audit Auditor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	verdict, err := guard("plan review", func() (contractx.Verdict, error) {
		return reviewer.ReviewPlan(ctx, in.Plan)
	})
	if err != nil {
		in.unavailable("plan reviewer", err)
		return in, nil
	}

	review := NormalizeVerdict(verdict)
	in.PlanReview = &review
	metricsx.RecordReviewScore(string(contractx.ReviewPlan), review.Score)
	audit.Step(ctx, in.SessionID, contractx.AgentTypeReviewer, in.Plan, review)

	if degradable && !review.Passes() {
		in.degrade(reasonPlanReview)
	}
	return in, nil
}

func ExecutePlan(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	executor contractx.Executor,
	degradable bool,
	audit Auditor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	store.SetPhase(ctx, in.SessionID, statex.PhaseExecuting)
	in.Phase = statex.PhaseExecuting

	outcome, err := guard("executor", func() (contractx.Outcome, error) {
		return executor.Execute(ctx, in.Plan)
	})
	if err != nil {
		in.unavailable("executor", err)
		return in, nil
	}

	in.Outcome = &outcome
	audit.Step(ctx, in.SessionID, contractx.AgentTypeExecutor, in.Plan, outcome)

	if degradable && !outcome.Success {
		in.degrade(reasonExecution)
	}
	return in, nil
}

func ReviewOutcome(
	ctx context.Context,
	in *GraphState,
	reviewer contractx.Reviewer,
	degradable bool,
	audit Auditor,
) (*GraphState, error) {
	if in == nil || in.Outcome == nil {
		return nil, fmt.Errorf("%w: outcome is missing", contractx.ErrValidation)
	}

	verdict, err := guard("execution review", func() (contractx.Verdict, error) {
		return reviewer.ReviewOutcome(ctx, in.Plan, *in.Outcome)
	})
	if err != nil {
		in.unavailable("execution reviewer", err)
		return in, nil
	}

	review := NormalizeVerdict(verdict)
	in.OutcomeReview = &review
	metricsx.RecordReviewScore(string(contractx.ReviewExecution), review.Score)
	audit.Step(ctx, in.SessionID, contractx.AgentTypeReviewer, in.Outcome, review)

	if degradable && !review.Passes() {
		in.degrade(reasonExecutionReview)
	}
	return in, nil
}
