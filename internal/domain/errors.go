package domain

import "fmt"

// Validation failure reasons surfaced to callers.
const (
	ReasonRangeOutOfBounds      = "range_out_of_bounds"
	ReasonTextMismatch          = "text_mismatch"
	ReasonInvalidMutationTarget = "invalid_mutation_target"
)

// ValidationError marks a structurally invalid request: bad offsets, stale
// client-side text, or an attempt to mutate a frozen field. These are caller
// mistakes and propagate unchanged, never retried.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return e.Reason + ": " + e.Detail
}

// NewValidationError builds a ValidationError with a formatted detail message.
func NewValidationError(reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
