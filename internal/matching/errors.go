package matching

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a position or game id has no row
var ErrNotFound = errors.New("not found")

// InvalidRequestError rejects request parameters the engine cannot run with.
// An empty piece selection is not one of them.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// DataIntegrityError reports a ranked hit whose position or game row is missing
type DataIntegrityError struct {
	PositionID string
	GameID     string
	Missing    string // "position" or "game"
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s missing for position %s (game %s)", e.Missing, e.PositionID, e.GameID)
}

// StoreUnavailableError wraps a failed store read
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
