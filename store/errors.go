// ABOUTME: Error taxonomy for the dealer directory store
// ABOUTME: Network, malformed-response, validation and not-found failures
package store

import (
	"errors"
	"fmt"
)

// ErrDealerNotFound is returned when an operation names an id that is not in
// the collection.
var ErrDealerNotFound = errors.New("dealer not found")

// NetworkError is a remote call that did not complete or returned a
// non-success status.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is a remote payload that does not match the
// expected shape.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ValidationError names the first required field that was missing.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsRemoteFailure reports whether err is a network or malformed-response
// failure. Both take the fallback path.
func IsRemoteFailure(err error) bool {
	var netErr *NetworkError
	var malformed *MalformedResponseError
	return errors.As(err, &netErr) || errors.As(err, &malformed)
}
