package apperrors

import "errors"

// Enrollment rejections. These are expected outcomes of arbitration, not
// faults: they are returned to the caller as data and never logged as errors.
var (
	ErrDuplicateEnrollment = errors.New("student is already enrolled in this offering")
	ErrSeatsExhausted      = errors.New("no seats remaining in this offering")
	ErrCreditCapExceeded   = errors.New("enrollment would reach or exceed the semester credit cap")
	ErrTimeConflict        = errors.New("offering conflicts with the student's schedule")
	ErrNotEnrolled         = errors.New("student is not enrolled in this offering")
)

// Offering errors
var (
	ErrOfferingNotFound       = errors.New("offering not found")
	ErrOfferingAlreadyExists  = errors.New("offering for this subject and semester already exists")
	ErrOfferingHasEnrollments = errors.New("offering has enrollments and cannot be deleted")
)

// ErrSeatInconsistency signals a corrupted seat counter: a release that
// would push remaining seats past capacity, or a counter observed outside
// its bounds. It is a consistency fault, never repaired silently.
var ErrSeatInconsistency = errors.New("offering seat counter is inconsistent")

// Authentication errors (token validation only; issuance happens elsewhere)
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrInvalidFormat    = errors.New("invalid token format")
	ErrPermissionDenied = errors.New("permission denied")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
