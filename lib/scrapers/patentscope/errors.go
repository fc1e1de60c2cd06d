package patentscope

import (
	"errors"
	"fmt"
)

// FailReason classifies a fetch failure.
type FailReason int

const (
	FailTimeout FailReason = iota
	FailNetwork
	FailRateLimited
	FailRetriesExhausted
)

func (r FailReason) String() string {
	switch r {
	case FailTimeout:
		return "timeout"
	case FailNetwork:
		return "network_error"
	case FailRateLimited:
		return "rate_limited"
	case FailRetriesExhausted:
		return "retries_exhausted"
	}
	return "unknown"
}

// FetchError is the only error the fetch client surfaces after its
// retry budget is spent.
type FetchError struct {
	Reason FailReason
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (last status %d)", e.URL, e.Reason, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError rejects malformed input before any network activity.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var ErrPatentNotFound = errors.New("patent not found")
