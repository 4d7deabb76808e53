package orchestratornode

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// Auditor appends turn events to a sink. A failing sink never fails the turn.
type Auditor struct {
	sink contractx.AuditSink
	now  func() time.Time
}

func NewAuditor(sink contractx.AuditSink, now func() time.Time) Auditor {
	if now == nil {
		now = time.Now
	}
	return Auditor{sink: sink, now: now}
}

func (a Auditor) Emit(ctx context.Context, sessionID string, kind contractx.EventKind, payload map[string]any) {
	if a.sink == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}

	err := a.sink.Record(ctx, contractx.AuditEvent{
		Timestamp: a.now().UTC(),
		SessionID: sessionID,
		Kind:      kind,
		Payload:   payload,
	})
	if err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Str("event", string(kind)).Msg("audit event not recorded")
	}
}

// Step records one collaborator call.
func (a Auditor) Step(ctx context.Context, sessionID string, agent contractx.AgentType, input any, output any) {
	a.Emit(ctx, sessionID, contractx.EventAgentStep, map[string]any{
		"agent":  string(agent),
		"input":  input,
		"output": output,
	})
}

func (a Auditor) Info(ctx context.Context, sessionID string, message string) {
	a.Emit(ctx, sessionID, contractx.EventInfo, map[string]any{"message": message})
}
