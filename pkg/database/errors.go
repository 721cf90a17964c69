package database

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

// StorageError reports that the store was unreachable or a statement failed.
// Err is an httperror.HTTPError whose status classifies the failure:
// 404 for a missing database file, 412 for a missing schema and 500 for
// everything else.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return newStorageError(op, http.StatusInternalServerError, err)
}

// NotFoundError reports a database file that does not exist.
func NotFoundError(op string, err error) *StorageError {
	return newStorageError(op, http.StatusNotFound, err)
}

// PreconditionError reports a database that exists but cannot be used yet.
func PreconditionError(op string, err error) *StorageError {
	return newStorageError(op, http.StatusPreconditionFailed, err)
}

func newStorageError(op string, code int, err error) *StorageError {
	if err == nil {
		return &StorageError{Op: op, Err: httperror.NewHTTPError(code, op+" failed")}
	}
	return &StorageError{Op: op, Err: httperror.WrapError(code, err)}
}

func (e *StorageError) Error() string {
	var httpErr *httperror.HTTPError
	if errors.As(e.Err, &httpErr) {
		return fmt.Sprintf("storage: %s: %s", e.Op, httpErr.Message)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// StatusCode returns the status class of the failure.
func (e *StorageError) StatusCode() int {
	return httperror.GetStatusCode(e.Err)
}

// StatusCode returns the status class of err: the status of the first
// HTTPError in its chain, or 500.
func StatusCode(err error) int {
	var httpErr *httperror.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}
