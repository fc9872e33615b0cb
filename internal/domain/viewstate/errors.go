package viewstate

import (
	"errors"
	"fmt"
)

// Sentinel kinds for view state errors.
var (
	ErrStaleResponse = errors.New("stale response")

	// ErrEventMismatch wraps ErrStaleResponse: the board answers a current
	// ticket but names another event.
	ErrEventMismatch = fmt.Errorf("%w: board is for another event", ErrStaleResponse)
)
