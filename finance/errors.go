// Package finance implements the calculators behind the advisor tools:
// budget analysis, investment projection, debt payoff planning and goal
// planning. Every function here is pure and safe for concurrent use.
package finance

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a request violates a domain invariant,
// such as a non-positive income or an empty debt list.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
