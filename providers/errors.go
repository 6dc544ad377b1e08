package providers

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPageLimitReached stops a branch that still had data when the safety page limit was hit.
var ErrPageLimitReached = errors.New("safety page limit reached")

// ValidationError is returned for a malformed address. No request has been issued.
type ValidationError struct {
	Provider string
	Chain    string
	Address  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q is not a valid %s address", e.Address, e.Chain)
}

// TransientError marks a failure worth retrying: network errors, 5xx and rate-limit responses.
type TransientError struct {
	Provider string
	Branch   string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient %s error on branch %s: %v", e.Provider, e.Branch, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// MalformedRecordError is returned by a mapper for a record that cannot become a canonical transaction.
type MalformedRecordError struct {
	Provider string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Provider, e.Reason)
}

// ExhaustedFetchError is returned when every branch failed and nothing was fetched.
type ExhaustedFetchError struct {
	Provider string
	Address  string
	Branches []BranchStatus
}

func (e *ExhaustedFetchError) Error() string {
	reasons := make([]string, 0, len(e.Branches))
	for _, b := range e.Branches {
		reasons = append(reasons, fmt.Sprintf("%s: %s", b.Name, b.Error))
	}
	return fmt.Sprintf("could not fetch any %s history for %s (%s)", e.Provider, e.Address, strings.Join(reasons, "; "))
}
