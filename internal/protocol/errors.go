// internal/protocol/errors.go
package protocol

import (
	"errors"
	"fmt"
)

// ErrMalformedMessage is wrapped by every decode failure
var ErrMalformedMessage = errors.New("malformed message")

// MalformedMessageError carries the reason a line was rejected
type MalformedMessageError struct {
	Reason string
}

func (e *MalformedMessageError) Error() string {
	return ErrMalformedMessage.Error() + ": " + e.Reason
}

func (e *MalformedMessageError) Unwrap() error {
	return ErrMalformedMessage
}

func malformed(format string, args ...interface{}) error {
	return &MalformedMessageError{Reason: fmt.Sprintf(format, args...)}
}
