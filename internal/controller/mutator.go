package controller

import (
	"context"
	"log/slog"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/metrics"
	"github.com/akolanti/docqa-client/internal/observability"
)

// sessionMutator is the view of the controller handed to one workflow run.
// Every method takes the lock for the change only and notifies afterwards.
type sessionMutator struct {
	c   *Controller
	ctx context.Context
}

func (m *sessionMutator) AppendFile(record commonModels.UploadedFileRecord) {
	m.c.mu.Lock()
	m.c.files.Add(record)
	count := m.c.files.Len()
	m.c.mu.Unlock()

	m.c.emit(m.ctx, observability.FilesChanged, slog.LevelInfo, map[string]any{"file": record.Name, "files": count})
}

func (m *sessionMutator) AppendUserTurn(content string) (int, error) {
	m.c.mu.Lock()
	index, err := m.c.transcript.AppendUser(content)
	m.c.mu.Unlock()
	if err != nil {
		return index, err
	}

	m.transcriptChanged(index)
	return index, nil
}

func (m *sessionMutator) AppendBotTurn(content string, sources []commonModels.SourceRef) int {
	m.c.mu.Lock()
	index := m.c.transcript.AppendBot(content, sources)
	m.c.mu.Unlock()

	m.transcriptChanged(index)
	return index
}

func (m *sessionMutator) SetError(message string) {
	m.c.mu.Lock()
	m.c.lastError = message
	m.c.hasError = true
	m.c.mu.Unlock()

	m.c.emit(m.ctx, observability.SessionError, slog.LevelWarn, map[string]any{"message": message})
}

func (m *sessionMutator) ClearError() {
	m.c.mu.Lock()
	m.c.lastError = ""
	m.c.hasError = false
	m.c.mu.Unlock()
}

func (m *sessionMutator) ClearPendingInput() {
	m.c.mu.Lock()
	changed := m.c.pendingInput != ""
	m.c.pendingInput = ""
	m.c.mu.Unlock()

	if changed {
		m.c.emit(m.ctx, observability.InputChanged, slog.LevelDebug, nil)
	}
}

func (m *sessionMutator) transcriptChanged(index int) {
	turns := index + 1
	metrics.SetTranscriptTurns(turns)
	m.c.emit(m.ctx, observability.TranscriptChanged, slog.LevelDebug, map[string]any{"turns": turns})
}
