package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

const reasonNoIntent = "Could not detect a valid banking intent."

// PlanTurn extracts this turn's plan. A session awaiting clarification folds
// the new text into its pending plan instead of starting over.
func PlanTurn(
	ctx context.Context,
	in *GraphState,
	extractor contractx.Extractor,
	degradable bool,
	audit Auditor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	plan, err := planTurn(ctx, in, extractor)
	if err != nil {
		in.unavailable("planner", err)
		return in, nil
	}

	in.Plan = plan
	audit.Step(ctx, in.SessionID, contractx.AgentTypePlanner, in.Text, plan)

	if !plan.HasIntent() && degradable {
		in.degrade(reasonNoIntent)
	}
	return in, nil
}

func planTurn(ctx context.Context, in *GraphState, extractor contractx.Extractor) (contractx.Plan, error) {
	incoming, err := guard("planner", func() (contractx.Plan, error) {
		return extractor.Extract(ctx, in.Text)
	})
	if err != nil {
		return contractx.Plan{}, err
	}
	if !in.Session.AwaitingClarification() {
		return incoming, nil
	}

	pending := *in.Session.PendingPlan
	if !incoming.HasIntent() && pending.HasIntent() {
		hinted, err := guard("planner", func() (contractx.Plan, error) {
			return extractor.ExtractSlots(ctx, pending.Intent, in.Text)
		})
		if err != nil {
			return contractx.Plan{}, err
		}
		if hinted.Rationale == "" {
			hinted.Rationale = incoming.Rationale
		}
		incoming = hinted
	}
	return MergePlan(pending, incoming), nil
}

// MergePlan folds an incoming plan into a pending one. The pending intent
// wins when set, and every non-empty incoming slot overrides the remembered
// value. Missing slots are recomputed for the merged intent.
func MergePlan(pending, incoming contractx.Plan) contractx.Plan {
	intent := pending.Intent
	if !intent.Valid() {
		intent = incoming.Intent
	}
	if !intent.Valid() {
		return incoming
	}

	slots := make(map[string]string, len(intent.RequiredSlots()))
	for _, key := range intent.RequiredSlots() {
		if v := pending.Slot(key); v != "" {
			slots[key] = v
		}
		if v := incoming.Slot(key); v != "" {
			slots[key] = v
		}
	}
	return contractx.NewPlan(intent, slots, incoming.Rationale)
}
