package responder

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// Template renders replies from fixed per-intent wording. Replies name missing
// slot keys and intents in prose and never expose the plan structure.
type Template struct{}

var _ contractx.Renderer = Template{}

func NewTemplate() Template {
	return Template{}
}

func (Template) Render(_ context.Context, plan contractx.Plan, outcome *contractx.Outcome) (string, error) {
	if plan.HasIntent() && len(plan.MissingSlots) > 0 {
		return ClarificationPrompt(plan.Intent, plan.MissingSlots), nil
	}
	if outcome == nil {
		return "", fmt.Errorf("%w: outcome is required when no slots are missing", contractx.ErrValidation)
	}
	return FinalMessage(plan, *outcome), nil
}

// ClarificationPrompt asks for the missing slots of an intent.
func ClarificationPrompt(intent contractx.Intent, missing []string) string {
	readable := strings.Join(missing, ", ")

	var base string
	switch intent {
	case contractx.IntentCardReplace:
		base = "I'm sorry to hear about your card. I'll help you get a replacement right away. " +
			fmt.Sprintf("To proceed, could you please share: %s?", readable)
	case contractx.IntentReportFraud:
		base = "That sounds stressful, and your security matters. I'll help you report this. " +
			fmt.Sprintf("Please provide: %s.", readable)
	case contractx.IntentOpenAccount:
		base = "Happy to help you open an account. We'll make this quick. " +
			fmt.Sprintf("To get started, please share: %s.", readable)
	case contractx.IntentCheckBalance:
		base = fmt.Sprintf("I can help you check your balance. Please provide: %s.", readable)
	case contractx.IntentTransferMoney:
		base = fmt.Sprintf("I can help with your transfer. Please provide: %s.", readable)
	default:
		base = fmt.Sprintf("I can help with %s. To proceed, please provide: %s.", intent.Readable(), readable)
	}
	return base + " Thank you!"
}

// FinalMessage confirms an executed plan or explains its failure.
func FinalMessage(plan contractx.Plan, outcome contractx.Outcome) string {
	if !outcome.Success {
		return fmt.Sprintf("I couldn't complete the request: %s", outcome.Error)
	}

	switch plan.Intent {
	case contractx.IntentCardReplace:
		return fmt.Sprintf("Your card replacement request is submitted. Ticket %s: your %s card will be sent to %s.",
			outcome.StringField("ticket_id"), plan.Slot("card_type"), plan.Slot("delivery_address"))
	case contractx.IntentReportFraud:
		return fmt.Sprintf("Thanks. We've opened a fraud investigation. Case %s: we'll update you within 2 business days.",
			outcome.StringField("case_id"))
	case contractx.IntentOpenAccount:
		return fmt.Sprintf("Your account application is created. Application %s for a %s account.",
			outcome.StringField("application_id"), plan.Slot("account_type"))
	case contractx.IntentCheckBalance:
		return fmt.Sprintf("Your account balance is $%s", outcome.StringField("balance"))
	case contractx.IntentTransferMoney:
		return fmt.Sprintf("Transfer initiated (ID %s). Amount %s to %s.",
			outcome.StringField("transfer_id"), plan.Slot("amount"), plan.Slot("receiver_account"))
	default:
		return "Done."
	}
}
