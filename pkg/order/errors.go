package order

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidJSON indicates the request body is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON body")
	// ErrMissingContact indicates the order has neither fullName nor phone.
	ErrMissingContact = errors.New("order must include fullName and phone")
	// ErrNotConfigured indicates required configuration is missing.
	ErrNotConfigured = errors.New("orders API not configured")
	// ErrMethodNotAllowed indicates an unsupported HTTP method.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrConflict matches store errors caused by a stale version token.
	ErrConflict = errors.New("document version conflict")
)

// Store operations reported by StoreError.
const (
	OpFetch = "fetch"
	OpWrite = "write"
)

// StoreError reports a failed document store call. Status and Body carry
// the store's response when there was one; Err carries transport failures.
type StoreError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("document %s failed: %v", e.Op, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("document %s failed: %d", e.Op, e.Status)
	}
	return fmt.Sprintf("document %s failed: %d %s", e.Op, e.Status, e.Body)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports stale-version rejections as ErrConflict.
func (e *StoreError) Is(target error) bool {
	if target != ErrConflict {
		return false
	}
	switch e.Status {
	case http.StatusConflict, http.StatusPreconditionFailed, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// ConflictError builds the write failure returned when version does not
// match the current token.
func ConflictError(version, current string) *StoreError {
	body, _ := marshalJSON(map[string]string{
		"message": fmt.Sprintf("version %q does not match %q", version, current),
	})
	return &StoreError{Op: OpWrite, Status: http.StatusConflict, Body: string(body)}
}

// NotFoundError builds the fetch failure returned when no document exists.
func NotFoundError() *StoreError {
	return &StoreError{Op: OpFetch, Status: http.StatusNotFound, Body: `{"message":"Not Found"}`}
}

func asStoreError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
