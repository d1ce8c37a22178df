package parking

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable reports that no free spot of the requested type exists.
	// It is an expected outcome, not a fault.
	ErrUnavailable = errors.New("no spot available")

	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidState     = errors.New("invalid state")

	// ErrInconsistent marks a ticket that was settled while its spot could not
	// be released.
	ErrInconsistent = errors.New("inconsistent settlement")
)

// InconsistencyError carries the frozen price of a ticket whose spot release
// failed after settlement. The price is not rolled back.
type InconsistencyError struct {
	TicketID string
	Level    int
	Spot     int
	Price    float64
	Err      error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("ticket %s settled at %.2f but spot %d/%d was not released: %v",
		e.TicketID, e.Price, e.Level, e.Spot, e.Err)
}

func (e *InconsistencyError) Unwrap() []error {
	return []error{ErrInconsistent, e.Err}
}
