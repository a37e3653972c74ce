package sessionModel

import (
	"slices"
	"time"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
)

type Role string

type Phase string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"

	PhaseIdle      Phase = "Idle"
	PhaseUploading Phase = "Uploading"
	PhaseQuerying  Phase = "Querying"
)

// Turn is one entry of the transcript. User turns never carry sources.
// A nil Sources on a bot turn means the backend sent none, or the turn reports an error.
type Turn struct {
	Role      Role                     `json:"role"`
	Content   string                   `json:"content"`
	Sources   []commonModels.SourceRef `json:"sources,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

func (t Turn) Clone() Turn {
	t.Sources = slices.Clone(t.Sources)
	return t
}

// Snapshot is an immutable copy of the session state handed to renderers.
type Snapshot struct {
	Files          []commonModels.UploadedFileRecord
	Transcript     []Turn
	Generation     uint64
	PendingInput   string
	Busy           bool
	Phase          Phase
	LastError      string
	HasError       bool
	CanSubmitQuery bool
}

// Mutator is the set of state changes a workflow may perform. Workflows keep no
// state of their own, everything they learn goes through here.
type Mutator interface {
	AppendFile(record commonModels.UploadedFileRecord)
	AppendUserTurn(content string) (int, error)
	AppendBotTurn(content string, sources []commonModels.SourceRef) int
	SetError(message string)
	ClearError()
	ClearPendingInput()
}
