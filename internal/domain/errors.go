package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated: действие требует входа, а учётных данных нет.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrSubmissionInFlight indicates a response for the listing is already pending.
	ErrSubmissionInFlight = errors.New("response submission already in flight")
	// ErrAlreadyResponded indicates the current identity already responded to the listing.
	ErrAlreadyResponded = errors.New("already responded to this listing")
	// ErrOwnListing indicates an attempt to respond to one's own listing.
	ErrOwnListing = errors.New("cannot respond to own listing")
	// ErrNotConfirmed indicates the user declined a confirmation prompt.
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrStaleResponse indicates a refresh result was dropped because a newer refresh was issued.
	ErrStaleResponse = errors.New("stale projection response discarded")
	// ErrInvalidInput indicates client-side validation rejected a form.
	ErrInvalidInput = errors.New("invalid input data")
)

// GenericFailureMessage is shown when the remote side gave no usable message.
const GenericFailureMessage = "Request failed"

// FailureKind classifies a failed remote call.
type FailureKind int

const (
	FailureNetwork FailureKind = iota
	FailureProtocol
	FailureUnauthorized
	FailureForbidden
	FailureNotFound
	FailureConflict
)

func (k FailureKind) String() string {
	switch k {
	case FailureNetwork:
		return "network"
	case FailureUnauthorized:
		return "unauthorized"
	case FailureForbidden:
		return "forbidden"
	case FailureNotFound:
		return "not_found"
	case FailureConflict:
		return "conflict"
	default:
		return "protocol"
	}
}

// Failure is the uniform error shape produced by the remote gateway.
// Message is always human readable and safe to show to the user.
type Failure struct {
	Kind    FailureKind
	Status  int // 0 for network failures
	Message string
	Err     error // underlying transport error, if any
}

func (f *Failure) Error() string {
	if f.Status == 0 {
		return fmt.Sprintf("%s failure: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s failure (HTTP %d): %s", f.Kind, f.Status, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is lets errors.Is(err, ErrUnauthenticated) match server-side 401s as well.
func (f *Failure) Is(target error) bool {
	return target == ErrUnauthenticated && f.Kind == FailureUnauthorized
}

// NewHTTPFailure classifies a non-2xx status.
func NewHTTPFailure(status int, message string) *Failure {
	if message == "" {
		message = GenericFailureMessage
	}
	kind := FailureProtocol
	switch status {
	case http.StatusUnauthorized:
		kind = FailureUnauthorized
	case http.StatusForbidden:
		kind = FailureForbidden
	case http.StatusNotFound:
		kind = FailureNotFound
	case http.StatusConflict:
		kind = FailureConflict
	}
	return &Failure{Kind: kind, Status: status, Message: message}
}

// NewNetworkFailure wraps a transport error; the user sees only the generic message.
func NewNetworkFailure(err error) *Failure {
	return &Failure{Kind: FailureNetwork, Message: GenericFailureMessage, Err: err}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if f, ok := AsFailure(err); ok {
		return f.Message
	}
	return err.Error()
}
