package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Database Errors (DB_*)
	ErrorCodeDBUnavailable ErrorCode = "DB_UNAVAILABLE"
	ErrorCodeDBQueryFailed ErrorCode = "DB_QUERY_FAILED"

	// Schema Errors (SCHEMA_*)
	ErrorCodeSchemaNotReady     ErrorCode = "SCHEMA_NOT_READY"
	ErrorCodeSchemaTableMissing ErrorCode = "SCHEMA_TABLE_MISSING"
	ErrorCodeSchemaDDLFailed    ErrorCode = "SCHEMA_DDL_FAILED"

	// Ingest Errors (INGEST_*)
	ErrorCodeIngestFileMissing  ErrorCode = "INGEST_FILE_MISSING"
	ErrorCodeIngestFileInvalid  ErrorCode = "INGEST_FILE_INVALID"
	ErrorCodeIngestInsertFailed ErrorCode = "INGEST_INSERT_FAILED"

	// Reconciliation Errors (RECONCILE_*)
	ErrorCodeReconcileLookupFailed ErrorCode = "RECONCILE_LOOKUP_FAILED"
	ErrorCodeReconcileWriteFailed  ErrorCode = "RECONCILE_WRITE_FAILED"

	// Batch Errors (BATCH_*)
	ErrorCodeBatchGroupFailed  ErrorCode = "BATCH_GROUP_FAILED"
	ErrorCodeBatchParentFailed ErrorCode = "BATCH_PARENT_FAILED"

	// Report Errors (REPORT_*)
	ErrorCodeReportExportFailed ErrorCode = "REPORT_EXPORT_FAILED"

	// Notification Errors (NOTIFY_*)
	ErrorCodeNotifySendFailed    ErrorCode = "NOTIFY_SEND_FAILED"
	ErrorCodeNotifyNotConfigured ErrorCode = "NOTIFY_NOT_CONFIGURED"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrNotFound is the sentinel returned by lookups that legitimately miss,
// distinct from query failures.
var ErrNotFound = errors.New("not found")

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// CodeOf extracts the error code from any error in the chain.
// Returns ErrorCodeInternalError when no DomainError is present.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrorCodeInternalError
}
