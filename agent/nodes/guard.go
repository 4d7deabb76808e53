package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

// guard runs one collaborator call. Errors and panics both come back as
// ErrCollaboratorUnavailable.
func guard[T any](stage string, call func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = fmt.Errorf("%w: %s panicked: %v", contractx.ErrCollaboratorUnavailable, stage, r)
		}
	}()

	out, err = call()
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", contractx.ErrCollaboratorUnavailable, stage, err)
	}
	return out, nil
}
