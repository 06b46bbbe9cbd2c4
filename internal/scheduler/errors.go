package scheduler

import "errors"

// Engine error taxonomy. Storage implementations map driver errors onto these
// sentinels so callers can branch without knowing the backend.
var (
	// ErrInvalid covers malformed input: bad dates or clocks, non-chronological
	// ranges, service/business mismatches. Rejected before any write.
	ErrInvalid = errors.New("invalid request")

	// ErrNotFound covers missing businesses, services, customers, staff and
	// appointments, including ownership mismatches on lookup.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an actor cancelling an appointment that is not theirs.
	// Distinct from ErrNotFound so clients can tell "doesn't exist" from
	// "not yours".
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a slot that is no longer available, whether taken by a
	// prior appointment or lost to a concurrent writer. Retryable: the caller
	// re-queries availability and picks again.
	ErrConflict = errors.New("slot no longer available")
)
