package ai

import (
	"errors"
	"fmt"
)

// Kind classifies AI service failures so callers can react without
// inspecting error text.
type Kind int

const (
	// KindUnavailable covers network failures and 5xx responses.
	KindUnavailable Kind = iota
	// KindThrottled means the service rejected the request for rate
	// limiting (HTTP 429 or an explicit "too many requests" reply).
	KindThrottled
	// KindBadResponse means the service replied but the payload could
	// not be used.
	KindBadResponse
)

// Error is a classified AI service error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsThrottled reports whether err is a rate-limit rejection.
func IsThrottled(err error) bool {
	var aiErr *Error
	return errors.As(err, &aiErr) && aiErr.Kind == KindThrottled
}
