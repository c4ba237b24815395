package news

import (
	"context"
	"errors"
	"net"
)

// Phase is the active representation of a fetch cycle. Loading and failure
// are distinct phases, so they can never be shown together.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// User-visible error messages.
const (
	FallbackErrorMessage = "Could not load the news. Please try again."
	TimeoutErrorMessage  = "The news service took too long to respond."
)

// State is the fetch state owned by a Controller. Articles is only
// meaningful in PhaseLoaded and Err only in PhaseFailed.
type State struct {
	Phase    Phase
	Articles []Article
	Err      string
	Seq      uint64
	Query    Query
}

func (s State) Loading() bool { return s.Phase == PhaseIdle || s.Phase == PhaseLoading }
func (s State) Failed() bool  { return s.Phase == PhaseFailed }

// ErrorMessage picks the message shown for a failed fetch: the server
// supplied message first, then a timeout notice, then the generic fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutErrorMessage
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutErrorMessage
	}
	return FallbackErrorMessage
}
