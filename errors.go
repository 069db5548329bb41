package mmcp

import (
	"context"
	"errors"
)

// Kind is the fixed failure taxonomy. InvalidArgument means the caller's
// input was insufficient; Timeout means a transport deadline was exceeded;
// ProviderError covers everything the provider did wrong, including
// malformed or empty payloads.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindTimeout         Kind = "timeout"
	KindProviderError   Kind = "provider_error"
)

type Error struct {
	Kind     Kind
	Provider string
	Op       string
	Code     string
	Status   int
	Message  string
	Cause    error
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

func IsInvalidArgument(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalidArgument
}

func IsTimeout(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindTimeout {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func IsProviderError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindProviderError
}
