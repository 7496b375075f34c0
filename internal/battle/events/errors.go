package events

import (
	"errors"
	"fmt"
)

var (
	// ErrNilHandler is returned when subscribing without a handler.
	ErrNilHandler = errors.New("handler must not be nil")
	// ErrUnknownKind is returned when subscribing to a kind outside the enumeration.
	ErrUnknownKind = errors.New("unknown event kind")
	// ErrNilOwner is returned when attaching a nil owner.
	ErrNilOwner = errors.New("owner must not be nil")
	// ErrInvalidOwner is returned for owners without an identity.
	ErrInvalidOwner = errors.New("owner must have a non-empty ID")
)

// RegistrationError reports a rejected subscription or owner attachment.
type RegistrationError struct {
	Kind    Kind
	Handler string
	Owner   string
	Err     error
}

func (e *RegistrationError) Error() string {
	if e.Owner != "" && e.Handler == "" {
		return fmt.Sprintf("failed to register owner %q: %v", e.Owner, e.Err)
	}
	return fmt.Sprintf("failed to register handler %q for %s: %v", e.Handler, e.Kind, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
