package backend

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	TransportFailure  FailureKind = "TransportFailure"
	BackendFailure    FailureKind = "BackendFailure"
	MalformedResponse FailureKind = "MalformedResponse"
)

// Failure is every way a backend call can go wrong. Detail is the backend's own
// message for BackendFailure and a description for MalformedResponse.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Detail     string
	Err        error
}

func (f *Failure) Error() string {
	switch {
	case f.Err != nil:
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	case f.Detail != "":
		return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	default:
		return fmt.Sprintf("%s: status %d", f.Kind, f.StatusCode)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure reports the Failure wrapped in err, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func transportFailure(err error) *Failure {
	return &Failure{Kind: TransportFailure, Err: err}
}

func malformed(statusCode int, detail string, err error) *Failure {
	return &Failure{Kind: MalformedResponse, StatusCode: statusCode, Detail: detail, Err: err}
}
