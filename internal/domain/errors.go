package domain

import "errors"

// Client-caused failures are surfaced to the caller as-is and never retried.
// Ledger failures during a business write abort the enclosing transaction;
// cache failures are absorbed by the cache adapter and never reach here.
var (
	ErrInvalidRange = errors.New("start date must be before end date")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("unit is not available for the selected dates")
	ErrForbidden    = errors.New("caller does not own this booking")
	ErrInvalidState = errors.New("transition not permitted from current status")
)
