// Package controller owns the session state and is the only way to change it.
// It runs one upload batch or one query at a time and tells observers about
// every change once its lock is released.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/backend"
	"github.com/akolanti/docqa-client/internal/data/store"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/metrics"
	"github.com/akolanti/docqa-client/internal/observability"
	"github.com/akolanti/docqa-client/internal/workflow"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

var (
	ErrBusy        = errors.New("another upload or query is in progress")
	ErrNoDocuments = errors.New("upload a document before asking a question")
)

const eventSource = "controller"

type Config struct {
	Backend  backend.Client
	Observer observability.Observer
}

type Controller struct {
	mu sync.Mutex

	transcript   *store.TranscriptStore
	files        *store.FileStore
	pendingInput string
	busy         bool
	phase        sessionModel.Phase
	lastError    string
	hasError     bool

	uploader *workflow.Uploader
	queries  *workflow.QuerySession
	observer observability.Observer
	logger   *logger_i.Logger
}

func InitController(cfg Config) *Controller {
	observer := cfg.Observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Controller{
		transcript: store.InitTranscriptStore(),
		files:      store.InitFileStore(),
		phase:      sessionModel.PhaseIdle,
		uploader:   workflow.NewUploader(cfg.Backend),
		queries:    workflow.NewQuerySession(cfg.Backend),
		observer:   observer,
		logger:     logger_i.NewLogger("Controller"),
	}
}

// UploadBatch runs the batch to completion before returning. It fails with
// ErrBusy, without side effects, when another operation holds the session.
func (c *Controller) UploadBatch(ctx context.Context, files []commonModels.FileHandle) (workflow.BatchReport, error) {
	ctx, traceId := utils.EnsureTraceId(ctx)
	if err := c.begin(ctx, sessionModel.PhaseUploading, false); err != nil {
		return workflow.BatchReport{}, err
	}
	log := c.logger.With("traceId", traceId)
	log.Info("upload batch started", "files", commonModels.FileNames(files))

	start := time.Now()
	report := c.uploader.UploadBatch(ctx, files, &sessionMutator{c: c, ctx: ctx})

	outcome := "success"
	if report.Failed() {
		outcome = "failure"
	}
	c.end(ctx, sessionModel.PhaseUploading, outcome, start)
	log.Info("upload batch finished", "outcome", outcome, "uploaded", report.Uploaded, "attempted", report.Attempted)
	return report, nil
}

// SubmitQuery asks one question. A blank question is ignored and returns a
// report that was not accepted and no error.
func (c *Controller) SubmitQuery(ctx context.Context, question string) (workflow.QueryReport, error) {
	if strings.TrimSpace(question) == "" {
		return workflow.QueryReport{}, nil
	}
	ctx, traceId := utils.EnsureTraceId(ctx)
	if err := c.begin(ctx, sessionModel.PhaseQuerying, true); err != nil {
		return workflow.QueryReport{}, err
	}
	log := c.logger.With("traceId", traceId)
	log.Info("query started")

	start := time.Now()
	report := c.queries.Submit(ctx, question, &sessionMutator{c: c, ctx: ctx})

	outcome := "success"
	switch {
	case !report.Accepted:
		outcome = "ignored"
	case report.Failed():
		outcome = "failure"
	}
	c.end(ctx, sessionModel.PhaseQuerying, outcome, start)
	log.Info("query finished", "outcome", outcome, "sources", report.Sources)
	return report, nil
}

// SetPendingInput replaces the text of the question being typed.
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	changed := c.pendingInput != text
	c.pendingInput = text
	c.mu.Unlock()

	if changed {
		c.emit(context.Background(), observability.InputChanged, slog.LevelDebug, nil)
	}
}

// SubmitPending submits whatever is in the pending input.
func (c *Controller) SubmitPending(ctx context.Context) (workflow.QueryReport, error) {
	c.mu.Lock()
	question := c.pendingInput
	c.mu.Unlock()
	return c.SubmitQuery(ctx, question)
}

// Clear empties the transcript. Files, busy and the last error are untouched,
// and it is allowed while an operation is running.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.transcript.Clear()
	c.mu.Unlock()

	metrics.SetTranscriptTurns(0)
	c.logger.Info("transcript cleared")
	c.emit(context.Background(), observability.TranscriptChanged, slog.LevelInfo, map[string]any{"turns": 0})
}

func (c *Controller) Snapshot() sessionModel.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	files := c.files.List()
	return sessionModel.Snapshot{
		Files:          files,
		Transcript:     c.transcript.Turns(),
		Generation:     c.transcript.Generation(),
		PendingInput:   c.pendingInput,
		Busy:           c.busy,
		Phase:          c.phase,
		LastError:      c.lastError,
		HasError:       c.hasError,
		CanSubmitQuery: c.canSubmitQueryLocked(len(files)),
	}
}

// CanSubmitQuery is the enable rule of the question form.
func (c *Controller) CanSubmitQuery() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitQueryLocked(c.files.Len())
}

func (c *Controller) canSubmitQueryLocked(fileCount int) bool {
	return !c.busy && fileCount > 0 && strings.TrimSpace(c.pendingInput) != ""
}

// begin is the busy gate. Checking and taking it happen under one lock.
func (c *Controller) begin(ctx context.Context, phase sessionModel.Phase, needsDocuments bool) error {
	c.mu.Lock()
	var err error
	switch {
	case c.busy:
		err = ErrBusy
	case needsDocuments && c.files.Len() == 0:
		err = ErrNoDocuments
	default:
		c.busy = true
		c.phase = phase
	}
	c.mu.Unlock()

	if err != nil {
		reason := "busy"
		if errors.Is(err, ErrNoDocuments) {
			reason = "no_documents"
		}
		metrics.CaptureRejected(string(phase), reason)
		c.logger.Warn("operation rejected", "traceId", utils.TraceIdFrom(ctx), "phase", phase, "reason", reason)
		c.emit(ctx, observability.OperationRejected, slog.LevelWarn, map[string]any{"phase": string(phase), "reason": reason})
		return err
	}

	metrics.SetBusy(true)
	c.emit(ctx, observability.SessionBusy, slog.LevelInfo, map[string]any{"phase": string(phase)})
	return nil
}

func (c *Controller) end(ctx context.Context, phase sessionModel.Phase, outcome string, start time.Time) {
	c.mu.Lock()
	c.busy = false
	c.phase = sessionModel.PhaseIdle
	c.mu.Unlock()

	metrics.SetBusy(false)
	metrics.CaptureWorkflow(string(phase), outcome, time.Since(start))
	c.emit(ctx, observability.SessionIdle, slog.LevelInfo, map[string]any{"phase": string(phase), "outcome": outcome})
}

// emit must be called without c.mu held; observers are free to call back in.
func (c *Controller) emit(ctx context.Context, eventType observability.EventType, level slog.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.NewEvent(eventType, level, eventSource, data))
}
