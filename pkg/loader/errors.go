package loader

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-dynview/pkg/source"
)

// ErrorKind classifies load failures.
type ErrorKind string

const (
	// NetworkFailure means the request never produced a response.
	NetworkFailure ErrorKind = "network_failure"
	// TransientServerFailure means every attempt answered with the transient
	// status and the retry budget ran out.
	TransientServerFailure ErrorKind = "transient_server_failure"
	// HTTPFailure means a non-success status other than the transient one.
	HTTPFailure ErrorKind = "http_failure"
	// MalformedPayload means the body could not be decoded into the expected
	// shape.
	MalformedPayload ErrorKind = "malformed_payload"
)

// Error carries the classification plus the context of a failed load.
type Error struct {
	Kind     ErrorKind
	Resource source.Resource
	Location string
	Status   int
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case HTTPFailure, TransientServerFailure:
		msg := fmt.Sprintf("HTTP error! status: %d", e.Status)
		if e.Attempts > 1 {
			msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempts)
		}
		return msg
	case MalformedPayload:
		if e.Err != nil {
			return "malformed payload: " + e.Err.Error()
		}
		return "malformed payload"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed wraps a decoding failure for location.
func Malformed(location string, err error) *Error {
	return &Error{Kind: MalformedPayload, Location: location, Err: err}
}

// Tag records which payload err concerns when err is a loader error and
// returns err unchanged otherwise.
func Tag(err error, resource source.Resource) error {
	var target *Error
	if errors.As(err, &target) && target.Resource == "" {
		target.Resource = resource
	}
	return err
}

// ResourceOf returns the resource recorded on err, or "".
func ResourceOf(err error) source.Resource {
	var target *Error
	if errors.As(err, &target) {
		return target.Resource
	}
	return ""
}

// KindOf returns the ErrorKind carried by err, or "" when err is not a
// loader error.
func KindOf(err error) ErrorKind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}
