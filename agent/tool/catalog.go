package tool

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

const actionPrefix = "banking."

var actionDescriptions = map[contractx.Intent]string{
	contractx.IntentCardReplace:   "Open a card replacement ticket and ship a new card.",
	contractx.IntentReportFraud:   "Open a fraud investigation case for a transaction.",
	contractx.IntentOpenAccount:   "Create a new account application.",
	contractx.IntentCheckBalance:  "Look up the available balance of an account.",
	contractx.IntentTransferMoney: "Initiate a transfer between two accounts.",
}

var slotDescriptions = map[string]string{
	"card_type":         "debit or credit",
	"delivery_address":  "Address the new card is shipped to",
	"reason":            "lost, stolen or damaged",
	"transaction_id":    "Identifier of the disputed transaction",
	"fraud_type":        "Channel of the fraud: card, upi, netbank, ach or wire",
	"user_confirmation": "Explicit confirmation from the customer",
	"account_type":      "savings, checking or current",
	"customer_name":     "Full name of the customer",
	"id_proof":          "Identity document number",
	"account_number":    "Account number, at least 6 digits",
	"auth_token":        "Authentication token or OTP",
	"sender_account":    "Account the money leaves from",
	"receiver_account":  "Account the money goes to",
	"amount":            "Positive amount to transfer",
}

// ActionName is the catalog name of the banking action behind an intent.
func ActionName(intent contractx.Intent) string {
	return actionPrefix + string(intent)
}

// InfoFor describes the banking action behind an intent with its required
// parameters. It returns nil for an invalid intent.
func InfoFor(intent contractx.Intent) *schema.ToolInfo {
	if !intent.Valid() {
		return nil
	}
	params := make(map[string]*schema.ParameterInfo, len(intent.RequiredSlots()))
	for _, slot := range intent.RequiredSlots() {
		params[slot] = &schema.ParameterInfo{
			Type:     schema.String,
			Desc:     slotDescriptions[slot],
			Required: true,
		}
	}
	return &schema.ToolInfo{
		Name:        ActionName(intent),
		Desc:        actionDescriptions[intent],
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

type CatalogOption func(*Catalog)

// WithRand replaces the random source used for generated identifiers and balances.
func WithRand(rng *rand.Rand) CatalogOption {
	return func(c *Catalog) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// Catalog runs the mocked banking actions.
type Catalog struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewCatalog(opts ...CatalogOption) *Catalog {
	now := uint64(time.Now().UnixNano())
	c := &Catalog{
		rng: rand.New(rand.NewPCG(now, now>>1|1)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Execute runs the action for a plan. Business failures are reported in the
// outcome; the error return is reserved for a plan the catalog cannot run.
func (c *Catalog) Execute(ctx context.Context, plan contractx.Plan) (contractx.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return contractx.Outcome{}, err
	}
	if !plan.HasIntent() {
		return contractx.Failed(contractx.IntentNone, "No intent to execute"), nil
	}

	data := make(map[string]any, len(plan.Slots)+2)
	for k, v := range plan.Slots {
		data[k] = v
	}

	switch plan.Intent {
	case contractx.IntentCardReplace:
		data["ticket_id"] = c.identifier("CR")
	case contractx.IntentReportFraud:
		data["case_id"] = c.identifier("FR")
	case contractx.IntentOpenAccount:
		data["application_id"] = c.identifier("OA")
	case contractx.IntentCheckBalance:
		data["balance"] = c.balance()
	case contractx.IntentTransferMoney:
		amount, err := ParseAmount(plan.Slot("amount"))
		if err != nil {
			return contractx.Failed(plan.Intent, err.Error()), nil
		}
		data["amount"] = FormatAmount(amount)
		data["transfer_id"] = c.identifier("TX")
		data["status"] = "initiated"
	default:
		return contractx.Outcome{}, fmt.Errorf("%w: unknown action %s", contractx.ErrValidation, ActionName(plan.Intent))
	}

	return contractx.Succeeded(plan.Intent, data), nil
}

func (c *Catalog) identifier(prefix string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%s-%06d", prefix, 100000+c.rng.IntN(900000))
}

func (c *Catalog) balance() float64 {
	c.mu.Lock()
	v := 100 + c.rng.Float64()*4900
	c.mu.Unlock()
	return math.Round(v*100) / 100
}
