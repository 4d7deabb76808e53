package orchestratornode

import (
	"context"
	"testing"
	"time"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestCommandPatterns(t *testing.T) {
	t.Parallel()

	cancels := []string{"cancel", "Please STOP", "never mind that", "reset", "can we start over?"}
	for _, text := range cancels {
		if !IsCancel(text) {
			t.Fatalf("IsCancel(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"unstoppable", "my card was lost", "cancellation fee?"} {
		if IsCancel(text) {
			t.Fatalf("IsCancel(%q) = true, want false", text)
		}
	}

	news := []string{"new request: check balance", "I have a different issue", "New intent please"}
	for _, text := range news {
		if !IsNewRequest(text) {
			t.Fatalf("IsNewRequest(%q) = false, want true", text)
		}
	}
	if IsNewRequest("new card please") {
		t.Fatal("IsNewRequest(new card please) = true, want false")
	}
}

func TestDetectCommandCancelResetsPendingPlan(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := statex.NewMemoryStore(statex.WithClock(fixedNow))
	store.SetPendingPlan("s1", contractx.NewPlan(contractx.IntentCardReplace, map[string]string{"card_type": "debit"}, ""))
	store.SetPhase(ctx, "s1", statex.PhaseAwaitingClarification)

	in := &GraphState{SessionID: "s1", Text: "cancel", Session: store.GetOrCreate("s1")}
	out, err := DetectCommand(ctx, in, store, Auditor{})
	if err != nil {
		t.Fatalf("DetectCommand() error = %v", err)
	}
	if out.Command != CommandCancel {
		t.Fatalf("Command = %q, want cancel", out.Command)
	}
	if out.Session.Phase != statex.PhaseIdle || out.Session.PendingPlan != nil {
		t.Fatalf("session = %+v, want idle without pending plan", out.Session)
	}
	if _, ok := store.PendingPlan("s1"); ok {
		t.Fatal("store still holds a pending plan")
	}

	route, err := RouteAfterCommand(out)
	if err != nil || route != NodeRespondCancelled {
		t.Fatalf("RouteAfterCommand() = %q, %v", route, err)
	}
}

func TestDetectCommandNewRequestContinues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := statex.NewMemoryStore()
	store.SetPendingPlan("s1", contractx.NewPlan(contractx.IntentCardReplace, nil, ""))
	store.SetPhase(ctx, "s1", statex.PhaseAwaitingClarification)

	in := &GraphState{SessionID: "s1", Text: "new request: check balance", Session: store.GetOrCreate("s1")}
	out, err := DetectCommand(ctx, in, store, Auditor{})
	if err != nil {
		t.Fatalf("DetectCommand() error = %v", err)
	}
	if out.Command != CommandNewRequest {
		t.Fatalf("Command = %q, want new_request", out.Command)
	}
	if out.Session.AwaitingClarification() {
		t.Fatal("session should no longer await clarification")
	}

	route, err := RouteAfterCommand(out)
	if err != nil || route != NodePlanTurn {
		t.Fatalf("RouteAfterCommand() = %q, %v", route, err)
	}
}
