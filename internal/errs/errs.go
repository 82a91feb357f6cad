// Package errs defines the coded errors shared by every reusedist package.
// Public packages re-export the codes and predicates they need.
package errs

import (
	"github.com/agilira/go-errors"
)

// Error codes.
const (
	CodeAllocationFailure errors.ErrorCode = "REUSEDIST_ALLOCATION_FAILURE"
	CodeInvalidHandle     errors.ErrorCode = "REUSEDIST_INVALID_HANDLE"
	CodeInternalInvariant errors.ErrorCode = "REUSEDIST_INTERNAL_INVARIANT"
	CodeInvalidConfig     errors.ErrorCode = "REUSEDIST_INVALID_CONFIG"
	CodeTraceParse        errors.ErrorCode = "REUSEDIST_TRACE_PARSE"
	CodeTraceRead         errors.ErrorCode = "REUSEDIST_TRACE_READ"
)

const (
	msgAllocationFailure = "cannot allocate reuse distance engine"
	msgInvalidHandle     = "operation on a nil or finalized engine"
	msgInternalInvariant = "internal invariant violated"
	msgInvalidConfig     = "invalid configuration"
	msgTraceParse        = "cannot parse trace line"
	msgTraceRead         = "cannot read trace"
)

// AllocationFailure reports that an engine of the requested size cannot be
// addressed or allocated.
func AllocationFailure(maxSize uint64, limit uint64) error {
	return errors.NewWithContext(CodeAllocationFailure, msgAllocationFailure, map[string]interface{}{
		"requested_max_size": maxSize,
		"limit":              limit,
	})
}

// InvalidHandle reports an operation on a nil, finalized or foreign engine.
func InvalidHandle(operation string) error {
	return errors.NewWithField(CodeInvalidHandle, msgInvalidHandle, "operation", operation)
}

// InternalInvariant describes a broken structural invariant. Callers panic
// with it: continuing would produce silently wrong distances.
func InternalInvariant(component, detail string) error {
	return errors.NewWithContext(CodeInternalInvariant, msgInternalInvariant, map[string]interface{}{
		"component": component,
		"detail":    detail,
	}).WithSeverity("critical")
}

// InvalidConfig reports a rejected configuration value.
func InvalidConfig(field string, value interface{}, reason string) error {
	return errors.NewWithContext(CodeInvalidConfig, msgInvalidConfig, map[string]interface{}{
		"field":  field,
		"value":  value,
		"reason": reason,
	})
}

// TraceParse reports a malformed trace line.
func TraceParse(source string, line int, cause error) error {
	return errors.Wrap(cause, CodeTraceParse, msgTraceParse).
		WithContext("source", source).
		WithContext("line", line)
}

// TraceRead wraps an I/O failure while reading a trace.
func TraceRead(source string, cause error) error {
	return errors.Wrap(cause, CodeTraceRead, msgTraceRead).
		WithContext("source", source)
}

// Has reports whether err carries code.
func Has(err error, code errors.ErrorCode) bool {
	if err == nil {
		return false
	}
	return errors.HasCode(err, code)
}
