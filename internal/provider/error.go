package provider

import "errors"

// Kind classifies a failure into the taxonomy surfaced to callers.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindTimeout         Kind = "timeout"
	KindProviderError   Kind = "provider_error"
)

// Error is created at the failure site with Retryable already decided, so the
// retry layer never re-inspects transport details.
type Error struct {
	Kind      Kind
	Provider  string
	Op        string
	Code      string
	Status    int
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = "error"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether err was classified as transient when it was
// constructed. Anything that is not a *Error is not retried.
func Retryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
