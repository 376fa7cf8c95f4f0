package types

import (
	"errors"
	"fmt"
)

// InvalidStateError reports a malformed Point A, Point B, or context.
// It is the only error permitted to cross the mapping pipeline's component
// boundaries; all other failure modes degrade to lower-certainty gaps.
type InvalidStateError struct {
	Field  string // "point_a", "point_b", or "context"
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state %s: %s", e.Field, e.Reason)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
