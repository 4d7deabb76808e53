package contract

import (
	"fmt"
	"strings"
	"time"
)

type AgentType string

const (
	AgentTypePlanner   AgentType = "planner"
	AgentTypeReviewer  AgentType = "reviewer"
	AgentTypeExecutor  AgentType = "executor"
	AgentTypeResponder AgentType = "responder"
	AgentTypeFallback  AgentType = "fallback"
)

type Intent string

const (
	IntentNone          Intent = ""
	IntentCardReplace   Intent = "card_replace"
	IntentReportFraud   Intent = "report_fraud"
	IntentOpenAccount   Intent = "open_account"
	IntentCheckBalance  Intent = "check_balance"
	IntentTransferMoney Intent = "transfer_money"
)

var requiredSlots = map[Intent][]string{
	IntentCardReplace:   {"card_type", "delivery_address", "reason"},
	IntentReportFraud:   {"transaction_id", "fraud_type", "user_confirmation"},
	IntentOpenAccount:   {"account_type", "customer_name", "id_proof"},
	IntentCheckBalance:  {"account_number", "auth_token"},
	IntentTransferMoney: {"sender_account", "receiver_account", "amount"},
}

// Intents lists the supported intents in a stable order.
func Intents() []Intent {
	return []Intent{
		IntentCardReplace,
		IntentReportFraud,
		IntentOpenAccount,
		IntentCheckBalance,
		IntentTransferMoney,
	}
}

// ParseIntent maps a raw label onto a supported intent. Unknown labels map to IntentNone.
func ParseIntent(raw string) Intent {
	candidate := Intent(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := requiredSlots[candidate]; ok {
		return candidate
	}
	return IntentNone
}

// RequiredSlots returns a copy of the required slot keys for the intent.
func (i Intent) RequiredSlots() []string {
	keys := requiredSlots[i]
	if len(keys) == 0 {
		return nil
	}
	return append([]string(nil), keys...)
}

func (i Intent) Valid() bool {
	_, ok := requiredSlots[i]
	return ok
}

// Readable returns the intent name with underscores replaced by spaces.
func (i Intent) Readable() string {
	return strings.ReplaceAll(string(i), "_", " ")
}

type Plan struct {
	Intent       Intent            `json:"intent,omitempty"`
	Slots        map[string]string `json:"slots"`
	MissingSlots []string          `json:"missing_slots"`
	Rationale    string            `json:"rationale,omitempty"`
}

// NewPlan keeps only the intent's required keys and recomputes MissingSlots.
// A plan without a valid intent carries no slots.
func NewPlan(intent Intent, slots map[string]string, rationale string) Plan {
	if !intent.Valid() {
		return Plan{
			Slots:        map[string]string{},
			MissingSlots: []string{},
			Rationale:    rationale,
		}
	}

	required := intent.RequiredSlots()
	kept := make(map[string]string, len(required))
	missing := make([]string, 0, len(required))
	for _, key := range required {
		value := strings.TrimSpace(slots[key])
		if value == "" {
			missing = append(missing, key)
			continue
		}
		kept[key] = value
	}

	return Plan{
		Intent:       intent,
		Slots:        kept,
		MissingSlots: missing,
		Rationale:    rationale,
	}
}

func (p Plan) HasIntent() bool {
	return p.Intent.Valid()
}

func (p Plan) Complete() bool {
	return p.HasIntent() && len(p.MissingSlots) == 0
}

// Slot returns the trimmed slot value, empty when absent.
func (p Plan) Slot(key string) string {
	return strings.TrimSpace(p.Slots[key])
}

func (p Plan) Clone() Plan {
	out := Plan{
		Intent:       p.Intent,
		Slots:        make(map[string]string, len(p.Slots)),
		MissingSlots: append([]string{}, p.MissingSlots...),
		Rationale:    p.Rationale,
	}
	for k, v := range p.Slots {
		out.Slots[k] = v
	}
	return out
}

type Outcome struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error,omitempty"`
	Intent  Intent         `json:"intent,omitempty"`
	Elapsed time.Duration  `json:"elapsed"`
}

// Succeeded builds a successful outcome.
func Succeeded(intent Intent, data map[string]any) Outcome {
	if data == nil {
		data = map[string]any{}
	}
	return Outcome{Success: true, Data: data, Intent: intent}
}

// Failed builds a failed outcome with an empty payload.
func Failed(intent Intent, reason string) Outcome {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "execution failed for unknown reason"
	}
	return Outcome{Success: false, Data: map[string]any{}, Error: reason, Intent: intent}
}

// StringField returns a payload value formatted as a string, empty when absent.
func (o Outcome) StringField(key string) string {
	v, ok := o.Data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

type ReviewKind string

const (
	ReviewPlan      ReviewKind = "plan"
	ReviewExecution ReviewKind = "execution"
)

// Verdict is a reviewer's raw judgement. Producers may report approval under
// either field and scores on a 0-1 or 1-10 scale.
type Verdict struct {
	Approved *bool      `json:"approved,omitempty"`
	Approval *bool      `json:"approval,omitempty"`
	Issues   []string   `json:"issues,omitempty"`
	Score    *float64   `json:"score,omitempty"`
	Kind     ReviewKind `json:"review_type"`
}

// NewVerdict builds a verdict reported through the primary approval field.
func NewVerdict(kind ReviewKind, approved bool, score float64, issues []string) Verdict {
	if issues == nil {
		issues = []string{}
	}
	return Verdict{
		Approved: &approved,
		Issues:   issues,
		Score:    &score,
		Kind:     kind,
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type EventKind string

const (
	EventUserMessage      EventKind = "user_message"
	EventAssistantMessage EventKind = "assistant_message"
	EventAgentStep        EventKind = "agent_step"
	EventStateTransition  EventKind = "state_transition"
	EventInfo             EventKind = "info"
)

type AuditEvent struct {
	Timestamp time.Time      `json:"ts"`
	SessionID string         `json:"session_id"`
	Kind      EventKind      `json:"event"`
	Payload   map[string]any `json:"payload"`
}
