package contract

import "context"

// Extractor turns free text into a plan.
type Extractor interface {
	Extract(ctx context.Context, text string) (Plan, error)
	// ExtractSlots reads slot values for a known intent, used when a reply
	// only answers an outstanding clarification question.
	ExtractSlots(ctx context.Context, intent Intent, text string) (Plan, error)
}

type Reviewer interface {
	ReviewPlan(ctx context.Context, plan Plan) (Verdict, error)
	ReviewOutcome(ctx context.Context, plan Plan, outcome Outcome) (Verdict, error)
}

type Executor interface {
	Execute(ctx context.Context, plan Plan) (Outcome, error)
}

// Renderer produces the user facing reply. A nil outcome asks for a
// clarification prompt.
type Renderer interface {
	Render(ctx context.Context, plan Plan, outcome *Outcome) (string, error)
}

// Fallback writes the single reply sent on the degradation path.
type Fallback interface {
	Respond(ctx context.Context, userMessage string, reason string) (string, error)
}

type AuditSink interface {
	Record(ctx context.Context, event AuditEvent) error
}

type Registry interface {
	Extractor() Extractor
	Reviewer() Reviewer
	Executor() Executor
	Renderer() Renderer
	// Fallback is nil when the registry runs without a generative fallback.
	Fallback() Fallback
}
