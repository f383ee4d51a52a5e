package db

import (
	"errors"
	"fmt"
	"net/http"
)

// CouchDBError represents a CouchDB-specific error with HTTP status context.
// Handlers use the status helpers to translate storage failures into API
// responses without string matching.
type CouchDBError struct {
	StatusCode int    `json:"status_code"`
	ErrorType  string `json:"error"`
	Reason     string `json:"reason"`
}

// Error implements the error interface.
func (e *CouchDBError) Error() string {
	return fmt.Sprintf("CouchDB error (%d %s): %s", e.StatusCode, e.ErrorType, e.Reason)
}

// IsNotFound reports whether the error is a 404 document-missing condition.
func (e *CouchDBError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict reports whether the error is a 409 MVCC revision conflict.
// Callers should re-read the latest revision and retry.
func (e *CouchDBError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err (or anything it wraps) is a CouchDB 404.
func IsNotFound(err error) bool {
	var couchErr *CouchDBError
	return errors.As(err, &couchErr) && couchErr.IsNotFound()
}

// IsConflict reports whether err (or anything it wraps) is a CouchDB 409.
func IsConflict(err error) bool {
	var couchErr *CouchDBError
	return errors.As(err, &couchErr) && couchErr.IsConflict()
}
