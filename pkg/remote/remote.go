// Package remote defines the error type shared by all API clients.
package remote

import "fmt"

// Error is returned when a collaborating service answers with a
// non-success status. The raw payload is kept so it can be written to
// the run log verbatim.
type Error struct {
	Service string
	Status  int
	Payload string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Payload)
}

// NewError builds an Error from a raw response body.
func NewError(service string, status int, payload string) *Error {
	return &Error{Service: service, Status: status, Payload: payload}
}
