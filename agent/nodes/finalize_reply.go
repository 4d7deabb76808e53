package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

func FinalizeReply(in *GraphState) (TurnResponse, error) {
	if in == nil {
		return TurnResponse{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return TurnResponse{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}

	resp := TurnResponse{
		SessionID: in.SessionID,
		Messages: []contractx.Message{
			{Role: contractx.RoleUser, Content: in.Text},
			{Role: contractx.RoleAssistant, Content: reply},
		},
		AwaitingUser: in.AwaitingUser,
		MissingSlots: []string{},
		State:        in.Phase,
	}
	if in.degraded() || in.Command == CommandCancel {
		resp.State = statex.PhaseIdle
		return resp, nil
	}

	if in.Plan.HasIntent() {
		intent := in.Plan.Intent
		resp.Intent = &intent
	}
	if in.PlanReview != nil {
		score := in.PlanReview.Score
		resp.PlanReviewScore = &score
	}
	if in.AwaitingUser {
		resp.MissingSlots = append(resp.MissingSlots, in.Plan.MissingSlots...)
		return resp, nil
	}
	if in.OutcomeReview != nil {
		score := in.OutcomeReview.Score
		resp.ExecutionReviewScore = &score
	}
	return resp, nil
}

// DegradedResponse answers a turn whose graph failed outright.
func DegradedResponse(sessionID string, text string, reply string) TurnResponse {
	return TurnResponse{
		SessionID: sessionID,
		Messages: []contractx.Message{
			{Role: contractx.RoleUser, Content: text},
			{Role: contractx.RoleAssistant, Content: reply},
		},
		AwaitingUser: false,
		MissingSlots: []string{},
		State:        statex.PhaseIdle,
	}
}
