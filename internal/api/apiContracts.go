package api

import (
	"time"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
)

// backend contract ---------------------

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Answer  string                   `json:"answer"`
	Sources []commonModels.SourceRef `json:"sources,omitempty"`
}

// ErrorResponse is what the backend sends with a non 2xx status. Detail is optional.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// control api ---------------------

type TurnResponse struct {
	Role      string                   `json:"role"`
	Content   string                   `json:"content"`
	Sources   []commonModels.SourceRef `json:"sources,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

type StateResponse struct {
	Files          []string       `json:"files"`
	Transcript     []TurnResponse `json:"transcript"`
	PendingInput   string         `json:"pending_input"`
	Busy           bool           `json:"busy"`
	Phase          string         `json:"phase"`
	LastError      *string        `json:"last_error,omitempty"`
	CanSubmitQuery bool           `json:"can_submit_query"`
}

type ControlError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceId string `json:"trace_id,omitempty"`
}

type InputRequest struct {
	Text string `json:"text"`
}
