package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	metricsx "github.com/tanpawarit/agentic-bank/agent/metrics"
	nodex "github.com/tanpawarit/agentic-bank/agent/nodes"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tanpawarit/agentic-bank/agent/agents/orchestrator"

var ErrInvalidMessage = nodex.ErrInvalidMessage

type TurnResponse = nodex.TurnResponse

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSessionIDs replaces the generator used when a turn arrives without a
// session id.
func WithSessionIDs(next func() string) Option {
	return func(o *Orchestrator) {
		if next != nil {
			o.newSessionID = next
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// Orchestrator runs one turn at a time per session. Turns of different
// sessions run concurrently.
type Orchestrator struct {
	store  statex.Store
	agents contractx.Registry
	audit  nodex.Auditor
	tracer trace.Tracer

	graphRunner compose.Runnable[nodex.GraphInput, nodex.TurnResponse]

	now          func() time.Time
	newSessionID func() string
}

// New wires the turn graph. A nil sink disables auditing.
func New(
	store statex.Store,
	agents contractx.Registry,
	sink contractx.AuditSink,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if agents == nil {
		return nil, errors.New("agent registry is required")
	}

	o := &Orchestrator{
		store:        store,
		agents:       agents,
		tracer:       otel.Tracer(instrumentationName),
		now:          time.Now,
		newSessionID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.audit = nodex.NewAuditor(sink, o.now)
	store.OnTransition(o.observeTransition)

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn processes one user message. Only a blank message is an error;
// every collaborator failure comes back as a degraded reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, message string) (TurnResponse, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return TurnResponse{}, ErrInvalidMessage
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = o.newSessionID()
	}

	started := o.now()
	ctx, span := o.tracer.Start(ctx, "orchestrator.handle_turn",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	unlock := o.store.Lock(sessionID)
	defer unlock()

	o.audit.Emit(ctx, sessionID, contractx.EventUserMessage, map[string]any{"content": text})

	resp, err := o.invoke(ctx, sessionID, text)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("stage", "orchestrator").Msg("turn graph failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		o.store.Reset(ctx, sessionID)
		metricsx.RecordDegradation("graph failure")
		resp = nodex.DegradedResponse(sessionID, text, nodex.DegradedReply)
	}
	if phase := o.store.GetOrCreate(sessionID).Phase; !phase.Stable() {
		log.Warn().Str("session_id", sessionID).Str("phase", string(phase)).Msg("turn ended mid-flight, resetting session")
		o.store.Reset(ctx, sessionID)
	}

	o.audit.Emit(ctx, sessionID, contractx.EventAssistantMessage, map[string]any{"content": resp.Reply()})

	intent := ""
	if resp.Intent != nil {
		intent = string(*resp.Intent)
	}
	outcome := turnOutcome(resp)
	span.SetAttributes(
		attribute.String("turn.intent", intent),
		attribute.String("turn.phase", string(resp.State)),
		attribute.String("turn.outcome", outcome),
		attribute.Bool("turn.awaiting_user", resp.AwaitingUser),
	)
	metricsx.RecordTurn(intent, outcome, o.now().Sub(started).Seconds())
	metricsx.SetActiveSessions(o.store.Len())

	return resp, nil
}

func (o *Orchestrator) invoke(ctx context.Context, sessionID, text string) (resp TurnResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: turn graph panicked: %v", contractx.ErrCollaboratorUnavailable, r)
		}
	}()
	return o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
}

func (o *Orchestrator) observeTransition(ctx context.Context, sessionID string, from, to statex.Phase) {
	metricsx.RecordPhaseTransition(string(from), string(to))
	o.audit.Emit(ctx, sessionID, contractx.EventStateTransition, map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}

func turnOutcome(resp TurnResponse) string {
	switch {
	case resp.AwaitingUser && resp.State == statex.PhaseAwaitingClarification:
		return "clarification"
	case resp.AwaitingUser:
		return "cancelled"
	case resp.PlanReviewScore == nil:
		return "degraded"
	default:
		return "completed"
	}
}
