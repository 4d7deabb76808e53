package executor

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	toolx "github.com/tanpawarit/agentic-bank/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	calls     int
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func balancePlan() contractx.Plan {
	return contractx.NewPlan(contractx.IntentCheckBalance, map[string]string{
		"account_number": "12345678",
		"auth_token":     "abcd",
	}, "")
}

func newTestMock() *Mock {
	return NewMock(toolx.NewCatalog(toolx.WithRand(rand.New(rand.NewPCG(1, 2)))))
}

func TestMockExecute(t *testing.T) {
	t.Parallel()

	out, err := newTestMock().Execute(context.Background(), balancePlan())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !out.Success {
		t.Fatalf("Execute() success = false, error = %s", out.Error)
	}
	if out.Intent != contractx.IntentCheckBalance {
		t.Fatalf("intent = %q", out.Intent)
	}
	if _, ok := out.Data["balance"]; !ok {
		t.Fatalf("payload missing balance: %#v", out.Data)
	}
	if out.Elapsed < 0 {
		t.Fatalf("elapsed = %v, want >= 0", out.Elapsed)
	}
}

func TestLLMExecutorUnavailable(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{}
	e, err := NewLLM(context.Background(), fake, "executor prompt", newTestMock(),
		WithRoll(func() float64 { return 0.95 }),
	)
	if err != nil {
		t.Fatalf("NewLLM() error = %v", err)
	}

	out, err := e.Execute(context.Background(), balancePlan())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Success {
		t.Fatal("expected unavailable outcome")
	}
	if out.Error != unavailableMessage {
		t.Fatalf("error = %q, want %q", out.Error, unavailableMessage)
	}
	if len(out.Data) != 0 {
		t.Fatalf("failed outcome payload = %#v, want empty", out.Data)
	}
	if fake.calls != 0 {
		t.Fatalf("model calls = %d, want 0", fake.calls)
	}
}

func TestLLMExecutorSimulatedResult(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"success":true,"data":{"balance":1234.5,"currency":"USD"},"error":null}`},
		},
	}
	e, err := NewLLM(context.Background(), fake, "executor prompt", newTestMock(),
		WithRoll(func() float64 { return 0.1 }),
	)
	if err != nil {
		t.Fatalf("NewLLM() error = %v", err)
	}

	out, err := e.Execute(context.Background(), balancePlan())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !out.Success {
		t.Fatalf("Execute() success = false, error = %s", out.Error)
	}
	if out.StringField("currency") != "USD" {
		t.Fatalf("currency = %q, want USD", out.StringField("currency"))
	}
	if out.StringField("account_number") != "12345678" {
		t.Fatalf("slots must be carried into the payload: %#v", out.Data)
	}
}

func TestLLMExecutorReportedFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"success":false,"data":{"partial":true},"error":"account locked"}`},
		},
	}
	e, err := NewLLM(context.Background(), fake, "executor prompt", newTestMock(),
		WithRoll(func() float64 { return 0 }),
	)
	if err != nil {
		t.Fatalf("NewLLM() error = %v", err)
	}

	out, err := e.Execute(context.Background(), balancePlan())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Success || out.Error != "account locked" {
		t.Fatalf("unexpected outcome: %#v", out)
	}
	if len(out.Data) != 0 {
		t.Fatalf("failed outcome payload = %#v, want empty", out.Data)
	}
}

func TestLLMExecutorFallsBackToMock(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Content: "I could not do that"}},
	}
	e, err := NewLLM(context.Background(), fake, "executor prompt", newTestMock(),
		WithAvailability(1),
	)
	if err != nil {
		t.Fatalf("NewLLM() error = %v", err)
	}

	plan := contractx.NewPlan(contractx.IntentCardReplace, map[string]string{
		"card_type":        "debit",
		"delivery_address": "1 Main St",
		"reason":           "lost",
	}, "")
	out, err := e.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !out.Success {
		t.Fatalf("Execute() success = false, error = %s", out.Error)
	}
	if !strings.HasPrefix(out.StringField("ticket_id"), "CR-") {
		t.Fatalf("ticket_id = %q, want CR- prefix", out.StringField("ticket_id"))
	}
}
