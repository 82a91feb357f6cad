package reuse

import (
	goerrors "errors"

	"github.com/agilira/go-errors"

	"github.com/IvanBrykalov/reusedist/internal/errs"
)

// Error codes returned by this package.
const (
	ErrCodeAllocationFailure = errs.CodeAllocationFailure
	ErrCodeInvalidHandle     = errs.CodeInvalidHandle
	ErrCodeInternalInvariant = errs.CodeInternalInvariant
	ErrCodeInvalidConfig     = errs.CodeInvalidConfig
)

// IsAllocationFailure reports whether err is an allocation failure from New.
func IsAllocationFailure(err error) bool { return errs.Has(err, errs.CodeAllocationFailure) }

// IsInvalidHandle reports whether err came from a nil or closed Engine.
func IsInvalidHandle(err error) bool { return errs.Has(err, errs.CodeInvalidHandle) }

// IsInternalInvariant reports whether err (typically a recovered panic value)
// describes a broken engine invariant.
func IsInternalInvariant(err error) bool { return errs.Has(err, errs.CodeInternalInvariant) }

// IsInvalidConfig reports whether err rejected an Options value.
func IsInvalidConfig(err error) bool { return errs.Has(err, errs.CodeInvalidConfig) }

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}
