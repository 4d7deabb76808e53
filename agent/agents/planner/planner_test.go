package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/go-cmp/cmp"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
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

func TestDetectIntent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want contractx.Intent
	}{
		{text: "Please replace my card", want: contractx.IntentCardReplace},
		{text: "I lost my debit card yesterday", want: contractx.IntentCardReplace},
		{text: "credit, ship to 123 Main St, it's lost", want: contractx.IntentCardReplace},
		{text: "There is an unauthorized charge on my account", want: contractx.IntentReportFraud},
		{text: "I want to open a savings account", want: contractx.IntentOpenAccount},
		{text: "What's my balance?", want: contractx.IntentCheckBalance},
		{text: "transfer 10 from 111111 to 222222", want: contractx.IntentTransferMoney},
		{text: "hello there", want: contractx.IntentNone},
	}
	for _, tc := range cases {
		if got := DetectIntent(tc.text); got != tc.want {
			t.Fatalf("DetectIntent(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractSlots(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		intent contractx.Intent
		text   string
		want   map[string]string
	}{
		{
			name:   "card replace full answer",
			intent: contractx.IntentCardReplace,
			text:   "credit, ship to 123 Main St, it's lost",
			want: map[string]string{
				"card_type":        "credit",
				"delivery_address": "123 Main St, it's lost",
				"reason":           "lost",
			},
		},
		{
			name:   "credit card phrase is not a card type",
			intent: contractx.IntentCardReplace,
			text:   "my credit card was stolen",
			want:   map[string]string{"reason": "stolen"},
		},
		{
			name:   "labelled card type",
			intent: contractx.IntentCardReplace,
			text:   "card type: Debit. address is 9 Elm Road",
			want:   map[string]string{"card_type": "debit", "delivery_address": "9 Elm Road"},
		},
		{
			name:   "fraud",
			intent: contractx.IntentReportFraud,
			text:   "fraud on transaction id TXN-998877 via upi, yes proceed",
			want: map[string]string{
				"transaction_id":    "TXN-998877",
				"fraud_type":        "upi",
				"user_confirmation": "yes",
			},
		},
		{
			name:   "open account",
			intent: contractx.IntentOpenAccount,
			text:   "open a checking account, my name is Jane Doe. id proof P1234567",
			want: map[string]string{
				"account_type":  "checking",
				"customer_name": "Jane Doe",
				"id_proof":      "P1234567",
			},
		},
		{
			name:   "balance",
			intent: contractx.IntentCheckBalance,
			text:   "balance for account number 12345678 otp 9911",
			want:   map[string]string{"account_number": "12345678", "auth_token": "9911"},
		},
		{
			name:   "transfer with verb amount",
			intent: contractx.IntentTransferMoney,
			text:   "transfer 10 from 111111 to 222222",
			want: map[string]string{
				"sender_account":   "111111",
				"receiver_account": "222222",
				"amount":           "10",
			},
		},
		{
			name:   "transfer with labelled amount",
			intent: contractx.IntentTransferMoney,
			text:   "send money from: 333333 to: 444444 amount $25.50",
			want: map[string]string{
				"sender_account":   "333333",
				"receiver_account": "444444",
				"amount":           "25.50",
			},
		},
		{
			name:   "no intent",
			intent: contractx.IntentNone,
			text:   "anything",
			want:   map[string]string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSlots(tc.intent, tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("ExtractSlots() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleExtractorPlanInvariant(t *testing.T) {
	t.Parallel()

	plan, err := NewRuleExtractor().Extract(context.Background(), "Please replace my card")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if plan.Intent != contractx.IntentCardReplace {
		t.Fatalf("intent = %q, want card_replace", plan.Intent)
	}
	want := []string{"card_type", "delivery_address", "reason"}
	if diff := cmp.Diff(want, plan.MissingSlots); diff != "" {
		t.Fatalf("missing slots mismatch (-want +got):\n%s", diff)
	}

	none, err := NewRuleExtractor().Extract(context.Background(), "good morning")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if none.HasIntent() || len(none.Slots) != 0 || len(none.MissingSlots) != 0 {
		t.Fatalf("intent-less plan must be empty: %#v", none)
	}
}

func TestLLMExtractorSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"intent":"transfer_money","slots":{"sender_account":"111111","receiver_account":222222,"amount":null,"unknown":"x"},"rationale":"customer wants to move money"}`},
		},
	}

	extractor, err := NewLLMExtractor(context.Background(), fake, "planner prompt")
	if err != nil {
		t.Fatalf("NewLLMExtractor() error = %v", err)
	}

	plan, err := extractor.Extract(context.Background(), "move money from 111111 to 222222")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if plan.Intent != contractx.IntentTransferMoney {
		t.Fatalf("intent = %q, want transfer_money", plan.Intent)
	}
	wantSlots := map[string]string{"sender_account": "111111", "receiver_account": "222222"}
	if diff := cmp.Diff(wantSlots, plan.Slots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"amount"}, plan.MissingSlots); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if plan.Rationale != "customer wants to move money" {
		t.Fatalf("rationale = %q", plan.Rationale)
	}
}

func TestLLMExtractorNumericSlotsStayDecimal(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"intent":"transfer_money","slots":{"sender_account":12345678,"receiver_account":111111,"amount":1000000.5}}`},
		},
	}
	extractor, err := NewLLMExtractor(context.Background(), fake, "planner prompt")
	if err != nil {
		t.Fatalf("NewLLMExtractor() error = %v", err)
	}

	plan, err := extractor.Extract(context.Background(), "send 1000000.50 from 12345678 to 111111")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := map[string]string{"sender_account": "12345678", "receiver_account": "111111", "amount": "1000000.5"}
	if diff := cmp.Diff(want, plan.Slots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	if !plan.Complete() {
		t.Fatalf("plan incomplete: missing %v", plan.MissingSlots)
	}
}

func TestStringSlots(t *testing.T) {
	t.Parallel()

	got := stringSlots(map[string]any{
		"account":  float64(12345678),
		"big":      float64(1000000),
		"small":    0.25,
		"confirm":  true,
		"text":     " lost ",
		"missing":  nil,
		"unusable": []any{"x"},
	})
	want := map[string]string{
		"account": "12345678",
		"big":     "1000000",
		"small":   "0.25",
		"confirm": "true",
		"text":    " lost ",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stringSlots() mismatch (-want +got):\n%s", diff)
	}
}

func TestLLMExtractorFallsBackToRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		model *fakeToolCallingModel
	}{
		{name: "model error", model: &fakeToolCallingModel{err: errors.New("upstream down")}},
		{name: "unsupported intent", model: &fakeToolCallingModel{responses: []*schema.Message{{Content: `{"intent":"buy_stock","slots":{}}`}}}},
		{name: "not json", model: &fakeToolCallingModel{responses: []*schema.Message{{Content: `sure, here you go`}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			extractor, err := NewLLMExtractor(context.Background(), tc.model, "planner prompt")
			if err != nil {
				t.Fatalf("NewLLMExtractor() error = %v", err)
			}
			plan, err := extractor.Extract(context.Background(), "transfer 10 from 111111 to 222222")
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if plan.Intent != contractx.IntentTransferMoney || !plan.Complete() {
				t.Fatalf("expected pattern rules plan, got %#v", plan)
			}
			if plan.Rationale != ruleRationale {
				t.Fatalf("rationale = %q, want %q", plan.Rationale, ruleRationale)
			}
		})
	}
}

func TestLLMExtractorExtractSlotsKeepsHint(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Content: `{"intent":null,"slots":{"card_type":"credit"}}`},
		},
	}
	extractor, err := NewLLMExtractor(context.Background(), fake, "planner prompt")
	if err != nil {
		t.Fatalf("NewLLMExtractor() error = %v", err)
	}

	plan, err := extractor.ExtractSlots(context.Background(), contractx.IntentCardReplace, "credit")
	if err != nil {
		t.Fatalf("ExtractSlots() error = %v", err)
	}
	if plan.Intent != contractx.IntentCardReplace {
		t.Fatalf("intent = %q, want card_replace", plan.Intent)
	}
	if plan.Slot("card_type") != "credit" {
		t.Fatalf("card_type = %q, want credit", plan.Slot("card_type"))
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("model calls = %d, want 1", len(fake.inputs))
	}
	last := fake.inputs[0][len(fake.inputs[0])-1]
	if !strings.Contains(last.Content, `"intent_hint":"card_replace"`) {
		t.Fatalf("user turn missing intent hint: %s", last.Content)
	}
}

func TestNewLLMExtractorRequiresPrompt(t *testing.T) {
	t.Parallel()

	_, err := NewLLMExtractor(context.Background(), &fakeToolCallingModel{}, "")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("NewLLMExtractor() error = %v, want ErrModelInvoke", err)
	}
}
