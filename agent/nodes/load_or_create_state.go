package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
)

func LoadOrCreateState(_ context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: state store is nil", contractx.ErrValidation)
	}

	in.Session = store.GetOrCreate(in.SessionID)
	in.Phase = in.Session.Phase
	return in, nil
}
