package orchestratornode

import (
	"context"
	"fmt"
	"regexp"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

type Command string

const (
	CommandNone       Command = ""
	CommandCancel     Command = "cancel"
	CommandNewRequest Command = "new_request"
)

const CancelReply = "Okay, I’ve reset this conversation. How can I help next?"

var (
	cancelPattern     = regexp.MustCompile(`(?i)\b(cancel|stop|never mind|reset|start over)\b`)
	newRequestPattern = regexp.MustCompile(`(?i)\b(new (request|issue|intent)|different (request|issue))\b`)
)

func IsCancel(text string) bool {
	return cancelPattern.MatchString(text)
}

func IsNewRequest(text string) bool {
	return newRequestPattern.MatchString(text)
}

// DetectCommand recognises cancel and new-request phrasing before any
// extraction. Both reset the session; only cancel ends the turn.
func DetectCommand(ctx context.Context, in *GraphState, store statex.Store, audit Auditor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	switch {
	case IsCancel(in.Text):
		in.Command = CommandCancel
	case IsNewRequest(in.Text):
		in.Command = CommandNewRequest
	default:
		in.Command = CommandNone
		return in, nil
	}

	store.Reset(ctx, in.SessionID)
	in.Session = store.GetOrCreate(in.SessionID)
	in.Phase = in.Session.Phase

	if in.Command == CommandNewRequest {
		audit.Info(ctx, in.SessionID, "New request command recognized; state reset")
	} else {
		audit.Info(ctx, in.SessionID, "Cancel command recognized; state reset")
	}
	return in, nil
}
