package tool

import (
	"context"
	"math/rand/v2"
	"regexp"
	"testing"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

func newTestCatalog() *Catalog {
	return NewCatalog(WithRand(rand.New(rand.NewPCG(7, 11))))
}

func TestInfoForDescribesEveryIntent(t *testing.T) {
	t.Parallel()

	for _, intent := range contractx.Intents() {
		info := InfoFor(intent)
		if info == nil {
			t.Fatalf("InfoFor(%s) = nil", intent)
		}
		if info.Name != ActionName(intent) {
			t.Fatalf("InfoFor(%s).Name = %q, want %q", intent, info.Name, ActionName(intent))
		}
		if info.Desc == "" {
			t.Fatalf("InfoFor(%s) has empty description", intent)
		}
	}
	if InfoFor(contractx.IntentNone) != nil {
		t.Fatal("InfoFor(IntentNone) must be nil")
	}
}

func TestCatalogExecuteIdentifiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		intent contractx.Intent
		slots  map[string]string
		field  string
		format *regexp.Regexp
	}{
		{
			intent: contractx.IntentCardReplace,
			slots:  map[string]string{"card_type": "debit", "delivery_address": "1 Main St", "reason": "lost"},
			field:  "ticket_id",
			format: regexp.MustCompile(`^CR-\d{6}$`),
		},
		{
			intent: contractx.IntentReportFraud,
			slots:  map[string]string{"transaction_id": "TXN123456", "fraud_type": "card", "user_confirmation": "yes"},
			field:  "case_id",
			format: regexp.MustCompile(`^FR-\d{6}$`),
		},
		{
			intent: contractx.IntentOpenAccount,
			slots:  map[string]string{"account_type": "savings", "customer_name": "Jane Doe", "id_proof": "P12345"},
			field:  "application_id",
			format: regexp.MustCompile(`^OA-\d{6}$`),
		},
		{
			intent: contractx.IntentTransferMoney,
			slots:  map[string]string{"sender_account": "111111", "receiver_account": "222222", "amount": "10"},
			field:  "transfer_id",
			format: regexp.MustCompile(`^TX-\d{6}$`),
		},
	}

	catalog := newTestCatalog()
	for _, tc := range cases {
		t.Run(string(tc.intent), func(t *testing.T) {
			out, err := catalog.Execute(context.Background(), contractx.NewPlan(tc.intent, tc.slots, ""))
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !out.Success {
				t.Fatalf("Execute() success = false, error = %s", out.Error)
			}
			if got := out.StringField(tc.field); !tc.format.MatchString(got) {
				t.Fatalf("%s = %q, want match %s", tc.field, got, tc.format)
			}
			for k, v := range tc.slots {
				if out.StringField(k) != v {
					t.Fatalf("payload[%s] = %q, want %q", k, out.StringField(k), v)
				}
			}
		})
	}
}

func TestCatalogExecuteBalanceRange(t *testing.T) {
	t.Parallel()

	catalog := newTestCatalog()
	plan := contractx.NewPlan(contractx.IntentCheckBalance, map[string]string{"account_number": "123456", "auth_token": "abcd"}, "")
	for i := 0; i < 50; i++ {
		out, err := catalog.Execute(context.Background(), plan)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		balance, ok := out.Data["balance"].(float64)
		if !ok {
			t.Fatalf("unexpected balance type: %T", out.Data["balance"])
		}
		if balance < 100 || balance > 5000 {
			t.Fatalf("balance = %v, want within [100, 5000]", balance)
		}
	}
}

func TestCatalogExecuteWithoutIntent(t *testing.T) {
	t.Parallel()

	out, err := newTestCatalog().Execute(context.Background(), contractx.NewPlan(contractx.IntentNone, nil, ""))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Success || out.Error != "No intent to execute" {
		t.Fatalf("unexpected outcome: %#v", out)
	}
	if len(out.Data) != 0 {
		t.Fatalf("failed outcome payload = %#v, want empty", out.Data)
	}
}

func TestCatalogExecuteRejectsInvalidAmount(t *testing.T) {
	t.Parallel()

	for _, amount := range []string{"0", "0.001"} {
		plan := contractx.NewPlan(contractx.IntentTransferMoney, map[string]string{
			"sender_account":   "111111",
			"receiver_account": "222222",
			"amount":           amount,
		}, "")
		out, err := newTestCatalog().Execute(context.Background(), plan)
		if err != nil {
			t.Fatalf("Execute(amount=%q) error = %v", amount, err)
		}
		if out.Success {
			t.Fatalf("expected failed outcome for amount %q", amount)
		}
		if out.Error == "" {
			t.Fatalf("expected non-empty error message for amount %q", amount)
		}
	}
}
