// Package common carries the JSON response envelope and the request
// error type shared by the HTTP handlers.
package common

// Error is a request failure with a stable machine-readable code and
// the HTTP status it renders as.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`

	cause error
}

// E builds a request error.
func E(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// WithDetails attaches caller-visible context to the error payload.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// WithCause records the underlying error for logs; it is never sent to
// the client.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}
