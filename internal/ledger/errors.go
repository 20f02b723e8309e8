package ledger

import "fmt"

// ValidationError reports a candidate line item that cannot be accepted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation referencing an id absent from the ledger.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("line item %s not found", e.ID)
}

// InvalidStateError reports an editor transition attempted from the wrong mode.
type InvalidStateError struct {
	Op   string
	Mode Mode
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.Mode)
}
