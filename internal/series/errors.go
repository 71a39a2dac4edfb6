package series

import (
	"errors"
	"fmt"
)

// ErrDuplicateTimestamp is returned when two bars share a timestamp.
var ErrDuplicateTimestamp = errors.New("duplicate timestamp")

// MissingColumnError reports a column a computation cannot run without.
type MissingColumnError struct {
	Symbol string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("missing column %s", e.Column)
	}
	return fmt.Sprintf("%s: missing column %s", e.Symbol, e.Column)
}
