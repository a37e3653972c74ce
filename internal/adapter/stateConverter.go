package adapter

import (
	"github.com/akolanti/docqa-client/internal/api"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
)

func ToStateResponse(snapshot sessionModel.Snapshot) api.StateResponse {
	files := make([]string, len(snapshot.Files))
	for i, f := range snapshot.Files {
		files[i] = f.Name
	}

	turns := make([]api.TurnResponse, len(snapshot.Transcript))
	for i, turn := range snapshot.Transcript {
		turns[i] = api.TurnResponse{
			Role:      string(turn.Role),
			Content:   turn.Content,
			Sources:   turn.Sources,
			CreatedAt: turn.CreatedAt,
		}
	}

	var lastError *string
	if snapshot.HasError {
		message := snapshot.LastError
		lastError = &message
	}

	return api.StateResponse{
		Files:          files,
		Transcript:     turns,
		PendingInput:   snapshot.PendingInput,
		Busy:           snapshot.Busy,
		Phase:          string(snapshot.Phase),
		LastError:      lastError,
		CanSubmitQuery: snapshot.CanSubmitQuery,
	}
}

func ToControlError(code int, message string, traceId string) api.ControlError {
	return api.ControlError{
		Code:    code,
		Message: message,
		TraceId: traceId,
	}
}
