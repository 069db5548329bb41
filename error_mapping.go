package mmcp

import (
	"context"
	"errors"

	"mmcp/internal/provider"
)

// mapProviderError converts an internal failure into the public taxonomy.
// Errors the wire layer already classified come through field for field;
// anything else is attributed to the provider, except a dead deadline.
func mapProviderError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *provider.Error
	if errors.As(err, &pe) {
		return &Error{
			Kind:     Kind(pe.Kind),
			Provider: pe.Provider,
			Op:       pe.Op,
			Code:     pe.Code,
			Status:   pe.Status,
			Message:  pe.Message,
			Cause:    pe.Cause,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Message: "request timed out: " + err.Error(), Cause: err}
	}
	return &Error{Kind: KindProviderError, Op: op, Message: err.Error(), Cause: err}
}
