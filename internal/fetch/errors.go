package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies a live-fetch failure so the fallback decision is made on a
// known failure mode, not on "any error".
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
)

// Error is a classified live-fetch failure. Every Kind is recoverable via the
// snapshot fallback.
type Error struct {
	Kind   Kind
	Status int // set for KindStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("live fetch: upstream status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("live fetch %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoData means the live fetch failed and no snapshot exists either. It is
// surfaced distinctly so callers never render a false zero-activity result.
var ErrNoData = errors.New("live source unreachable and no snapshot available")
