package controller

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/docqa-client/internal/api"
	"github.com/akolanti/docqa-client/internal/backend"
	"github.com/akolanti/docqa-client/internal/config"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/observability"
)

type MockBackend struct {
	OnUpload func(ctx context.Context, file commonModels.FileHandle) error
	OnQuery  func(ctx context.Context, question string) (api.QueryResponse, error)
}

func (m *MockBackend) Upload(ctx context.Context, file commonModels.FileHandle) error {
	if m.OnUpload != nil {
		return m.OnUpload(ctx, file)
	}
	return nil
}

func (m *MockBackend) Query(ctx context.Context, question string) (api.QueryResponse, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, question)
	}
	return api.QueryResponse{Answer: "answer to " + question}, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []observability.Event
}

func (l *eventLog) OnEvent(ctx context.Context, event observability.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) types() []observability.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	types := make([]observability.EventType, len(l.events))
	for i, e := range l.events {
		types[i] = e.Type
	}
	return types
}

func pdf(name string) commonModels.FileHandle {
	return commonModels.FileFromBytes(name, []byte("%PDF"))
}

func newController(t *testing.T, client backend.Client) (*Controller, *eventLog) {
	t.Helper()
	events := &eventLog{}
	return InitController(Config{Backend: client, Observer: events}), events
}

func TestInitialState(t *testing.T) {
	c, _ := newController(t, &MockBackend{})
	snap := c.Snapshot()

	assert.Empty(t, snap.Files)
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.Busy)
	assert.Equal(t, sessionModel.PhaseIdle, snap.Phase)
	assert.False(t, snap.HasError)
	assert.False(t, snap.CanSubmitQuery)
}

func TestUploadThenQuery_RoundTrip(t *testing.T) {
	c, events := newController(t, &MockBackend{
		OnQuery: func(ctx context.Context, question string) (api.QueryResponse, error) {
			return api.QueryResponse{Answer: "X is Y", Sources: []commonModels.SourceRef{{Filename: "a.pdf", Page: 3}}}, nil
		},
	})
	ctx := context.Background()

	report, err := c.UploadBatch(ctx, []commonModels.FileHandle{pdf("a.pdf"), pdf("b.pdf")})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Uploaded)

	_, err = c.SubmitQuery(ctx, "What is X?")
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, []commonModels.UploadedFileRecord{{Name: "a.pdf"}, {Name: "b.pdf"}}, snap.Files)
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, sessionModel.RoleUser, snap.Transcript[0].Role)
	assert.Equal(t, "What is X?", snap.Transcript[0].Content)
	assert.Equal(t, sessionModel.RoleBot, snap.Transcript[1].Role)
	assert.Equal(t, "X is Y", snap.Transcript[1].Content)
	assert.Equal(t, []commonModels.SourceRef{{Filename: "a.pdf", Page: 3}}, snap.Transcript[1].Sources)
	assert.False(t, snap.Busy)
	assert.False(t, snap.HasError)

	assert.Equal(t, []observability.EventType{
		observability.SessionBusy,
		observability.FilesChanged,
		observability.FilesChanged,
		observability.SessionIdle,
		observability.SessionBusy,
		observability.TranscriptChanged,
		observability.TranscriptChanged,
		observability.SessionIdle,
	}, events.types())
}

func TestSubmitQuery_EmptyAnswerIsFailure(t *testing.T) {
	c, _ := newController(t, &MockBackend{
		OnQuery: func(ctx context.Context, question string) (api.QueryResponse, error) {
			return api.QueryResponse{}, &backend.Failure{Kind: backend.MalformedResponse, StatusCode: 200, Detail: config.NoAnswerMessage}
		},
	})
	ctx := context.Background()
	_, err := c.UploadBatch(ctx, []commonModels.FileHandle{pdf("a.pdf")})
	require.NoError(t, err)

	report, err := c.SubmitQuery(ctx, "Q")
	require.NoError(t, err)
	assert.True(t, report.Failed())

	snap := c.Snapshot()
	want := "Query failed: " + config.NoAnswerMessage
	assert.True(t, snap.HasError)
	assert.Equal(t, want, snap.LastError)
	require.Len(t, snap.Transcript, 2)
	assert.Equal(t, want, snap.Transcript[1].Content)
	assert.Nil(t, snap.Transcript[1].Sources)
	assert.False(t, snap.Busy)
}

func TestSubmitQuery_BlankIsNoOp(t *testing.T) {
	c, events := newController(t, &MockBackend{})
	_, err := c.UploadBatch(context.Background(), []commonModels.FileHandle{pdf("a.pdf")})
	require.NoError(t, err)
	before := len(events.types())

	for _, q := range []string{"", "   ", "\n\t"} {
		report, err := c.SubmitQuery(context.Background(), q)
		require.NoError(t, err)
		assert.False(t, report.Accepted)
	}

	snap := c.Snapshot()
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.Busy)
	assert.Len(t, events.types(), before, "blank questions must not notify")
}

func TestSubmitQuery_RequiresDocuments(t *testing.T) {
	queried := false
	c, events := newController(t, &MockBackend{
		OnQuery: func(ctx context.Context, question string) (api.QueryResponse, error) {
			queried = true
			return api.QueryResponse{Answer: "A"}, nil
		},
	})

	_, err := c.SubmitQuery(context.Background(), "Q")
	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.False(t, queried)
	assert.Empty(t, c.Snapshot().Transcript)
	assert.Equal(t, []observability.EventType{observability.OperationRejected}, events.types())
}

func TestUploadFailure_NeverAddsTurns(t *testing.T) {
	c, _ := newController(t, &MockBackend{
		OnUpload: func(ctx context.Context, file commonModels.FileHandle) error {
			if file.Name == "b.pdf" {
				return &backend.Failure{Kind: backend.BackendFailure, StatusCode: 400}
			}
			return nil
		},
	})

	report, err := c.UploadBatch(context.Background(), []commonModels.FileHandle{pdf("a.pdf"), pdf("b.pdf"), pdf("c.pdf")})
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", report.FailedFile)

	snap := c.Snapshot()
	assert.Equal(t, []commonModels.UploadedFileRecord{{Name: "a.pdf"}}, snap.Files)
	assert.Equal(t, "Upload failed: "+config.UploadFailedMessage, snap.LastError)
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.Busy)
}

func TestBusyExclusivity(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	uploads := 0
	c, _ := newController(t, &MockBackend{
		OnUpload: func(ctx context.Context, file commonModels.FileHandle) error {
			uploads++
			close(entered)
			<-release
			return nil
		},
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.UploadBatch(context.Background(), []commonModels.FileHandle{pdf("slow.pdf")})
		done <- err
	}()
	<-entered

	snap := c.Snapshot()
	assert.True(t, snap.Busy)
	assert.Equal(t, sessionModel.PhaseUploading, snap.Phase)

	_, err := c.UploadBatch(context.Background(), []commonModels.FileHandle{pdf("other.pdf")})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.SubmitQuery(context.Background(), "Q")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)

	snap = c.Snapshot()
	assert.False(t, snap.Busy)
	assert.Equal(t, sessionModel.PhaseIdle, snap.Phase)
	assert.Equal(t, 1, uploads)
	assert.Equal(t, []commonModels.UploadedFileRecord{{Name: "slow.pdf"}}, snap.Files)
}

func TestClear_LeavesFilesAndBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c, _ := newController(t, &MockBackend{
		OnQuery: func(ctx context.Context, question string) (api.QueryResponse, error) {
			if question == "slow" {
				close(entered)
				<-release
			}
			return api.QueryResponse{Answer: "A"}, nil
		},
	})
	ctx := context.Background()
	_, err := c.UploadBatch(ctx, []commonModels.FileHandle{pdf("a.pdf")})
	require.NoError(t, err)
	_, err = c.SubmitQuery(ctx, "first")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.SubmitQuery(ctx, "slow")
	}()
	<-entered

	c.Clear()
	snap := c.Snapshot()
	assert.Empty(t, snap.Transcript)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.True(t, snap.Busy)
	assert.Len(t, snap.Files, 1)

	close(release)
	<-done
	snap = c.Snapshot()
	require.Len(t, snap.Transcript, 1, "the in-flight answer lands in the cleared transcript")
	assert.Equal(t, "A", snap.Transcript[0].Content)
	assert.Len(t, snap.Files, 1)
}

func TestPendingInput(t *testing.T) {
	var asked string
	c, events := newController(t, &MockBackend{
		OnQuery: func(ctx context.Context, question string) (api.QueryResponse, error) {
			asked = question
			return api.QueryResponse{Answer: "A"}, nil
		},
	})
	ctx := context.Background()

	c.SetPendingInput("What is X?")
	assert.False(t, c.CanSubmitQuery(), "no documents yet")

	_, err := c.UploadBatch(ctx, []commonModels.FileHandle{pdf("a.pdf")})
	require.NoError(t, err)
	assert.True(t, c.CanSubmitQuery())

	c.SetPendingInput("   ")
	assert.False(t, c.CanSubmitQuery())
	c.SetPendingInput("What is X?")

	_, err = c.SubmitPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "What is X?", asked)
	assert.Empty(t, c.Snapshot().PendingInput)
	assert.Contains(t, events.types(), observability.InputChanged)
}

func TestObserversMayReadStateDuringNotification(t *testing.T) {
	var c *Controller
	var seen []sessionModel.Snapshot
	observer := observability.ObserverFunc(func(ctx context.Context, event observability.Event) {
		seen = append(seen, c.Snapshot())
	})
	c = InitController(Config{Backend: &MockBackend{}, Observer: observer})

	_, err := c.UploadBatch(context.Background(), []commonModels.FileHandle{pdf("a.pdf")})
	require.NoError(t, err)
	_, err = c.SubmitQuery(context.Background(), "Q")
	require.NoError(t, err)
	c.Clear()

	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Busy, "busy event sees the busy state")
	last := seen[len(seen)-1]
	assert.Empty(t, last.Transcript)
	assert.Len(t, last.Files, 1)
}
