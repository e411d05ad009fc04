package bitbucket

import (
	"errors"
	"fmt"
)

// ErrIncompleteTarget is returned when owner, slug or commit is missing.
var ErrIncompleteTarget = errors.New("repository owner, slug and commit are required")

// PreconditionError indicates the caller passed more annotations than a single
// request may carry. It is raised before any request is made and is never
// suppressed by the fail-open policy.
type PreconditionError struct {
	Count int
	Limit int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot post more than %d annotations at once (got %d)", e.Limit, e.Count)
}

// TransportError indicates the request did not complete.
type TransportError struct {
	Operation string
	URL       string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Operation, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIStatusError indicates the API answered with an unexpected status code.
type APIStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("%s: Bitbucket API returned unsuccessful response code %d", e.Operation, e.StatusCode)
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(count, limit int) *PreconditionError {
	return &PreconditionError{Count: count, Limit: limit}
}

// NewTransportError creates a new TransportError.
func NewTransportError(operation, url string, err error) *TransportError {
	return &TransportError{Operation: operation, URL: url, Err: err}
}

// NewAPIStatusError creates a new APIStatusError from a response.
func NewAPIStatusError(operation string, resp *Response) *APIStatusError {
	return &APIStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
	}
}

// IsPrecondition reports whether err is, or wraps, a PreconditionError.
func IsPrecondition(err error) bool {
	var pre *PreconditionError
	return errors.As(err, &pre)
}
