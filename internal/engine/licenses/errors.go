package licenses

import "fmt"

// QuotaExceededError rejects a batch that does not fit the team's remaining
// seats. Raised before any row is written.
type QuotaExceededError struct {
	Available int
	Requested int
}

func (e *QuotaExceededError) Error() string {
	if e.Available <= 0 {
		return "no licenses available: all purchased seats are assigned"
	}
	return fmt.Sprintf("requested %d licenses but only %d available", e.Requested, e.Available)
}

// GlobalDuplicateError rejects an entire batch because at least one email
// already holds a license somewhere on the platform. All-or-nothing: the
// clean part of the batch is not written either.
type GlobalDuplicateError struct {
	Emails []string
}

func (e *GlobalDuplicateError) Error() string {
	return fmt.Sprintf("%d email(s) already hold a license under another partner", len(e.Emails))
}

// AllocationError wraps a store failure during the batch insert.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	return "license allocation failed: " + e.Err.Error()
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}
