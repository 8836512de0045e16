package service

import "errors"

// Error kinds. Match them with errors.Is.
var (
	ErrValidation            = errors.New("validation error")
	ErrAuthentication        = errors.New("authentication error")
	ErrAuthorization         = errors.New("authorization error")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrTransientDependency   = errors.New("transient dependency error")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInternal              = errors.New("internal error")
)

const (
	MsgIncorrectCredentials = "Incorrect email or password"
	MsgGenericFailure       = "Something went wrong!"
)

// Error is a classified failure. Operational errors are expected and their
// message is safe to show to clients; anything else surfaces generically.
type Error struct {
	kind        error
	message     string
	operational bool
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Kind() error { return e.kind }

// Message is the client-facing text.
func (e *Error) Message() string { return e.message }

func (e *Error) Operational() bool { return e.operational }

func newError(kind error, message string, cause error) *Error {
	return &Error{kind: kind, message: message, operational: true, cause: cause}
}

func Validation(message string) *Error { return newError(ErrValidation, message, nil) }

func Authentication(message string) *Error { return newError(ErrAuthentication, message, nil) }

func Authorization(message string) *Error { return newError(ErrAuthorization, message, nil) }

func NotFound(message string) *Error { return newError(ErrNotFound, message, nil) }

func Conflict(message string) *Error { return newError(ErrConflict, message, nil) }

func InvalidOrExpiredToken(message string) *Error {
	return newError(ErrInvalidOrExpiredToken, message, nil)
}

func TransientDependency(message string, cause error) *Error {
	return newError(ErrTransientDependency, message, cause)
}

// Internal wraps an unexpected failure. Its detail is for logs only.
func Internal(cause error) *Error {
	return &Error{kind: ErrInternal, message: MsgGenericFailure, cause: cause}
}

// AsError classifies err, treating anything unrecognised as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
