package state

import (
	"time"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// Phase is the session's position in the turn state machine.
// Only PhaseIdle and PhaseAwaitingClarification survive between turns.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseAwaitingClarification Phase = "awaiting_clarification"
	PhaseExecuting             Phase = "executing"
	PhaseCompleted             Phase = "completed"
)

func (p Phase) Stable() bool {
	return p == PhaseIdle || p == PhaseAwaitingClarification
}

// SessionState is a snapshot of one conversation's memory.
type SessionState struct {
	SessionID   string          `json:"session_id"`
	Phase       Phase           `json:"phase"`
	PendingPlan *contractx.Plan `json:"pending_plan,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Phase:     PhaseIdle,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AwaitingClarification reports whether the next turn should merge into the pending plan.
func (s *SessionState) AwaitingClarification() bool {
	return s != nil && s.Phase == PhaseAwaitingClarification && s.PendingPlan != nil
}

func (s *SessionState) clone() SessionState {
	out := *s
	if s.PendingPlan != nil {
		plan := s.PendingPlan.Clone()
		out.PendingPlan = &plan
	}
	return out
}
