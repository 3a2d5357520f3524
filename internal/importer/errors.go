package importer

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// BlockingValidationError halts the session before the batch is processed:
// a mandatory canonical field has no header mapped to it, or no destination
// unit/funnel is resolvable. The message names what is missing.
type BlockingValidationError struct {
	Reason string
}

func (e *BlockingValidationError) Error() string {
	return fmt.Sprintf("import blocked: %s", e.Reason)
}

// RecoverableOperationError wraps a failed store round trip (duplicate
// check, mapping load). The user may retry the step; no partial commit has
// occurred.
type RecoverableOperationError struct {
	Op  string
	Err error
}

func (e *RecoverableOperationError) Error() string {
	return fmt.Sprintf("%s failed (retry is safe): %v", e.Op, e.Err)
}

func (e *RecoverableOperationError) Unwrap() error { return e.Err }

// ErrWrongState is returned when a session operation is invoked out of
// order with respect to the session state machine.
var ErrWrongState = eris.New("importer: operation not valid in current session state")
