package orchestratornode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

// TurnResponse is the structured result of one turn.
type TurnResponse struct {
	SessionID            string              `json:"session_id"`
	Messages             []contractx.Message `json:"messages"`
	AwaitingUser         bool                `json:"awaiting_user"`
	MissingSlots         []string            `json:"missing_slots"`
	Intent               *contractx.Intent   `json:"intent"`
	State                statex.Phase        `json:"state"`
	PlanReviewScore      *float64            `json:"plan_review_score"`
	ExecutionReviewScore *float64            `json:"execution_review_score"`
}

// Reply returns the last assistant message, empty when there is none.
func (r TurnResponse) Reply() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == contractx.RoleAssistant {
			return r.Messages[i].Content
		}
	}
	return ""
}

// GraphState carries one turn through the graph. It is owned by the turn
// and never shared.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session statex.SessionState
	Command Command

	Plan          contractx.Plan
	PlanReview    *Review
	Outcome       *contractx.Outcome
	OutcomeReview *Review

	DegradeReason string
	Reply         string
	AwaitingUser  bool
	Phase         statex.Phase
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}

func (s *GraphState) degrade(reason string) {
	if s.DegradeReason == "" {
		s.DegradeReason = reason
	}
}

func (s *GraphState) degraded() bool {
	return s.DegradeReason != ""
}

// unavailable degrades the turn after a collaborator failed.
func (s *GraphState) unavailable(stage string, err error) {
	log.Warn().Err(err).Str("session_id", s.SessionID).Str("stage", stage).Msg("collaborator unavailable")
	s.degrade(fmt.Sprintf("The %s is unavailable.", stage))
}
