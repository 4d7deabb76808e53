package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	metricsx "github.com/tanpawarit/agentic-bank/agent/metrics"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

// DegradedReply is sent on the degradation path when no fallback answers.
const DegradedReply = "Sorry, we couldn't process your request."

func RespondCancelled(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Reply = CancelReply
	in.AwaitingUser = true
	in.Phase = statex.PhaseIdle
	return in, nil
}

// RespondClarification parks the plan as pending and asks for its missing slots.
func RespondClarification(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	renderer contractx.Renderer,
	audit Auditor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply, err := guard("responder", func() (string, error) {
		return renderer.Render(ctx, in.Plan, nil)
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("%w: responder returned empty message", contractx.ErrSchemaViolation)
	}
	if err != nil {
		in.unavailable("responder", err)
		return in, nil
	}
	audit.Step(ctx, in.SessionID, contractx.AgentTypeResponder, in.Plan, reply)

	store.SetPhase(ctx, in.SessionID, statex.PhaseAwaitingClarification)
	store.SetPendingPlan(in.SessionID, in.Plan)

	in.Reply = strings.TrimSpace(reply)
	in.AwaitingUser = true
	in.Phase = statex.PhaseAwaitingClarification
	return in, nil
}

// RespondFinal renders the outcome and returns the session to idle through
// the completed phase.
func RespondFinal(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	renderer contractx.Renderer,
	audit Auditor,
) (*GraphState, error) {
	if in == nil || in.Outcome == nil {
		return nil, fmt.Errorf("%w: outcome is missing", contractx.ErrValidation)
	}

	reply, err := guard("responder", func() (string, error) {
		return renderer.Render(ctx, in.Plan, in.Outcome)
	})
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("%w: responder returned empty message", contractx.ErrSchemaViolation)
	}
	if err != nil {
		in.unavailable("responder", err)
		return in, nil
	}
	audit.Step(ctx, in.SessionID, contractx.AgentTypeResponder, in.Outcome, reply)

	store.SetPhase(ctx, in.SessionID, statex.PhaseCompleted)
	store.ClearPendingPlan(in.SessionID)
	store.SetPhase(ctx, in.SessionID, statex.PhaseIdle)

	in.Reply = strings.TrimSpace(reply)
	in.AwaitingUser = false
	in.Phase = statex.PhaseIdle
	return in, nil
}

// Degrade resets the session and answers through the fallback, or with
// DegradedReply when the fallback is missing or fails.
func Degrade(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	fallback contractx.Fallback,
	audit Auditor,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reason := in.DegradeReason
	if reason == "" {
		reason = "unknown"
		in.DegradeReason = reason
	}
	log.Warn().Str("session_id", in.SessionID).Str("reason", reason).Msg("turn degraded")
	metricsx.RecordDegradation(reason)
	audit.Info(ctx, in.SessionID, "Degraded: "+reason)

	store.Reset(ctx, in.SessionID)

	in.Reply = degradedReply(ctx, in, fallback, audit)
	in.AwaitingUser = false
	in.Phase = statex.PhaseIdle
	return in, nil
}

func degradedReply(ctx context.Context, in *GraphState, fallback contractx.Fallback, audit Auditor) string {
	if fallback == nil {
		return DegradedReply
	}

	reply, err := guard("fallback", func() (string, error) {
		return fallback.Respond(ctx, in.Text, in.DegradeReason)
	})
	reply = strings.TrimSpace(reply)
	if err != nil || reply == "" {
		log.Warn().Err(err).Str("session_id", in.SessionID).Str("stage", "fallback").Msg("fallback unavailable, using default reply")
		return DegradedReply
	}
	audit.Step(ctx, in.SessionID, contractx.AgentTypeFallback, in.DegradeReason, reply)
	return reply
}
