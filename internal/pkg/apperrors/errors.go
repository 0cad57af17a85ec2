package apperrors

import "errors"

// Authentication and authorization errors
var (
	// ErrUnauthenticated is returned when a request carries no valid identity
	ErrUnauthenticated = errors.New("authentication required")
	// ErrPermissionDenied is returned when the caller's role or ownership does not allow the operation
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidCredentials is returned for any failed login, without saying which part was wrong
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Registration errors
var (
	ErrDuplicateIdentity = errors.New("username already exists")
	ErrWeakPassword      = errors.New("password must be at least 8 characters long and include uppercase, lowercase, and a number")
)

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidReference is returned when a bulk operation names an entity that does not exist
	ErrInvalidReference = errors.New("one or more referenced resources do not exist")
	ErrNotEnrolled      = errors.New("course not found in student's list")
	ErrCourseInUse      = errors.New("course has enrolled students and cannot be deleted")
	// ErrConcurrentModification is transient; the client may retry the request
	ErrConcurrentModification = errors.New("resource was modified concurrently, retry the request")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// NewResourceNotFoundError creates a not found error with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a permission denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewInvalidReferenceError creates an invalid reference error with a message
func NewInvalidReferenceError(message string) error {
	return &CustomError{
		Err:     ErrInvalidReference,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with a client-facing message
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
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

// Message returns the client-facing message of err when it carries one
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}
