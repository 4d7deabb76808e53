package planner

import (
	"context"
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

const ruleRationale = "pattern match"

var (
	cardIncidentNearCard = regexp.MustCompile(`(lost|stolen|damaged)[^\n]{0,40}\bcard\b`)
	replaceCard          = regexp.MustCompile(`\breplace[^\n]{0,40}\b(card|debit|credit)\b`)
	cardIncident         = regexp.MustCompile(`\b(lost|stolen|damaged)\b`)
	cardWord             = regexp.MustCompile(`\b(card|debit|credit)\b`)
	fraudWord            = regexp.MustCompile(`\b(fraud|unauthori[sz]ed|dispute)\b`)
	openAccount          = regexp.MustCompile(`\b(open|create)\b[^\n]{0,30}\b(account)\b`)
	balanceWord          = regexp.MustCompile(`\b(balance|funds available|how much do i have)\b`)
	transferWord         = regexp.MustCompile(`\b(transfer|send|pay)\b[^\n]{0,30}\b(money|amount|\$|to|from|[0-9])\b`)
)

var (
	cardTypeLabelled   = regexp.MustCompile(`(?i)(card type|type of card)[:\s]*(debit|credit)`)
	cardTypeBare       = regexp.MustCompile(`(?i)\b(debit|credit)\b`)
	followedByCard     = regexp.MustCompile(`(?i)^\s*card`)
	addressIs          = regexp.MustCompile(`(?i)address is ([^.\n]+)`)
	shipTo             = regexp.MustCompile(`(?i)ship to ([^.\n]+)`)
	cardReason         = regexp.MustCompile(`(?i)lost|stolen|damaged`)
	transactionID      = regexp.MustCompile(`(?i)transaction(?: id)?[:\s]*([A-Za-z0-9-]{6,})`)
	fraudChannel       = regexp.MustCompile(`(?i)\b(card|upi|netbank\w*|ach|wire)\b`)
	confirmation       = regexp.MustCompile(`(?i)\b(confirm|yes|proceed)\b`)
	accountType        = regexp.MustCompile(`(?i)savings|checking|current`)
	customerName       = regexp.MustCompile(`(?i)name is ([A-Za-z ]{3,})`)
	idProof            = regexp.MustCompile(`(?i)\bid(?:\s*proof)?[:\s]*([A-Za-z0-9-]{4,})`)
	accountNumber      = regexp.MustCompile(`(?i)account(?: number| no\.)?[:\s]*([0-9]{6,})`)
	authToken          = regexp.MustCompile(`(?i)\b(?:token|auth(?:\s+token)?|otp)\b[:\s]*([A-Za-z0-9-]{4,})`)
	senderAccount      = regexp.MustCompile(`(?i)\bfrom[:\s]*([0-9]{6,})`)
	receiverAccount    = regexp.MustCompile(`(?i)\bto[:\s]*([0-9]{6,})`)
	labelledAmount     = regexp.MustCompile(`(?i)amount[:\s]*\$?([0-9]+(?:\.[0-9]{1,2})?)`)
	transferVerbAmount = regexp.MustCompile(`(?i)\b(?:transfer|send|pay)\s+\$?([0-9]+(?:\.[0-9]{1,2})?)\b`)
)

// DetectIntent classifies text. Rules are ordered and the first match wins.
func DetectIntent(text string) contractx.Intent {
	t := strings.ToLower(text)

	switch {
	case cardIncidentNearCard.MatchString(t),
		replaceCard.MatchString(t),
		cardIncident.MatchString(t) && cardWord.MatchString(t):
		return contractx.IntentCardReplace
	case fraudWord.MatchString(t):
		return contractx.IntentReportFraud
	case openAccount.MatchString(t):
		return contractx.IntentOpenAccount
	case balanceWord.MatchString(t):
		return contractx.IntentCheckBalance
	case transferWord.MatchString(t):
		return contractx.IntentTransferMoney
	default:
		return contractx.IntentNone
	}
}

// ExtractSlots reads the slot values of intent from text.
func ExtractSlots(intent contractx.Intent, text string) map[string]string {
	slots := map[string]string{}

	switch intent {
	case contractx.IntentCardReplace:
		if m := cardTypeLabelled.FindStringSubmatch(text); m != nil {
			slots["card_type"] = strings.ToLower(m[2])
		} else if v := bareCardType(text); v != "" {
			slots["card_type"] = v
		}
		if m := addressIs.FindStringSubmatch(text); m != nil {
			slots["delivery_address"] = strings.TrimSpace(m[1])
		}
		if m := shipTo.FindStringSubmatch(text); m != nil {
			slots["delivery_address"] = strings.TrimSpace(m[1])
		}
		if v := cardReason.FindString(text); v != "" {
			slots["reason"] = strings.ToLower(v)
		}

	case contractx.IntentReportFraud:
		if m := transactionID.FindStringSubmatch(text); m != nil {
			slots["transaction_id"] = m[1]
		}
		if m := fraudChannel.FindStringSubmatch(text); m != nil {
			slots["fraud_type"] = strings.ToLower(m[1])
		}
		if confirmation.MatchString(text) {
			slots["user_confirmation"] = "yes"
		}

	case contractx.IntentOpenAccount:
		if v := accountType.FindString(text); v != "" {
			slots["account_type"] = strings.ToLower(v)
		}
		if m := customerName.FindStringSubmatch(text); m != nil {
			slots["customer_name"] = strings.TrimSpace(m[1])
		}
		if m := idProof.FindStringSubmatch(text); m != nil {
			slots["id_proof"] = m[1]
		}

	case contractx.IntentCheckBalance:
		if m := accountNumber.FindStringSubmatch(text); m != nil {
			slots["account_number"] = m[1]
		}
		if m := authToken.FindStringSubmatch(text); m != nil {
			slots["auth_token"] = m[1]
		}

	case contractx.IntentTransferMoney:
		if m := senderAccount.FindStringSubmatch(text); m != nil {
			slots["sender_account"] = m[1]
		}
		if m := receiverAccount.FindStringSubmatch(text); m != nil {
			slots["receiver_account"] = m[1]
		}
		if m := labelledAmount.FindStringSubmatch(text); m != nil {
			slots["amount"] = m[1]
		} else if m := transferVerbAmount.FindStringSubmatch(text); m != nil {
			slots["amount"] = m[1]
		}
	}

	return slots
}

// bareCardType finds "debit" or "credit" that is not part of a "... card" phrase.
func bareCardType(text string) string {
	for _, loc := range cardTypeBare.FindAllStringSubmatchIndex(text, -1) {
		if followedByCard.MatchString(text[loc[1]:]) {
			continue
		}
		return strings.ToLower(text[loc[2]:loc[3]])
	}
	return ""
}

// RuleExtractor is the pattern based extraction strategy.
type RuleExtractor struct{}

var _ contractx.Extractor = RuleExtractor{}

func NewRuleExtractor() RuleExtractor {
	return RuleExtractor{}
}

func (RuleExtractor) Extract(_ context.Context, text string) (contractx.Plan, error) {
	intent := DetectIntent(text)
	return contractx.NewPlan(intent, ExtractSlots(intent, text), ruleRationale), nil
}

func (RuleExtractor) ExtractSlots(_ context.Context, intent contractx.Intent, text string) (contractx.Plan, error) {
	return contractx.NewPlan(intent, ExtractSlots(intent, text), ruleRationale), nil
}
