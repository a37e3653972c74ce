package adapter

import (
	"fmt"

	"github.com/akolanti/docqa-client/internal/backend"
	"github.com/akolanti/docqa-client/internal/config"
)

type Operation string

const (
	OperationUpload Operation = "Upload"
	OperationQuery  Operation = "Query"
)

// fallback is the message used when the backend failed without saying why.
func (op Operation) fallback() string {
	if op == OperationUpload {
		return config.UploadFailedMessage
	}
	return config.QueryFailedMessage
}

var failureMessages = map[backend.FailureKind]func(op Operation, f *backend.Failure) string{
	backend.TransportFailure: func(op Operation, f *backend.Failure) string {
		if f.Err == nil {
			return op.fallback()
		}
		return f.Err.Error()
	},
	backend.BackendFailure: func(op Operation, f *backend.Failure) string {
		if f.Detail == "" {
			return op.fallback()
		}
		return f.Detail
	},
	backend.MalformedResponse: func(op Operation, f *backend.Failure) string {
		switch {
		case f.Detail != "" && f.Err != nil:
			return fmt.Sprintf("%s: %v", f.Detail, f.Err)
		case f.Detail != "":
			return f.Detail
		case f.Err != nil:
			return f.Err.Error()
		default:
			return op.fallback()
		}
	},
}

// ToFailureMessage is the one place a workflow failure becomes user facing text:
// "<Operation> failed: <message>".
func ToFailureMessage(op Operation, err error) string {
	return fmt.Sprintf("%s failed: %s", op, describe(op, err))
}

func describe(op Operation, err error) string {
	if err == nil {
		return op.fallback()
	}
	if f, ok := backend.AsFailure(err); ok {
		if message, found := failureMessages[f.Kind]; found {
			return message(op, f)
		}
	}
	return err.Error()
}
