// Package render draws the session in a terminal. It never keeps its own copy of
// the conversation: on every event it reads a fresh snapshot and prints what is
// new since the last time.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/observability"
)

type SnapshotSource interface {
	Snapshot() sessionModel.Snapshot
}

var (
	userStyle    = color.New(color.FgCyan, color.Bold)
	botStyle     = color.New(color.FgGreen)
	sourceStyle  = color.New(color.Faint)
	statusStyle  = color.New(color.FgYellow)
	errorStyle   = color.New(color.FgRed, color.Bold)
	dividerStyle = color.New(color.FgMagenta)
)

type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	source  SnapshotSource
	printed int
	// generation of the transcript the printed turns belong to
	generation uint64
	files   int
}

func NewTerminal(out io.Writer, source SnapshotSource) *Terminal {
	return &Terminal{out: out, source: source}
}

func (t *Terminal) OnEvent(ctx context.Context, event observability.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.source.Snapshot()
	switch event.Type {
	case observability.TranscriptChanged:
		t.followTranscript(snap)
	case observability.FilesChanged:
		t.printFiles(snap.Files)
	case observability.SessionBusy:
		if snap.Phase == sessionModel.PhaseUploading {
			statusStyle.Fprintln(t.out, "Uploading...")
		} else {
			statusStyle.Fprintln(t.out, "Typing...")
		}
	case observability.SessionError:
		// query failures also arrive as a bot turn, print only upload failures here
		if snap.Phase == sessionModel.PhaseUploading && snap.HasError {
			errorStyle.Fprintln(t.out, snap.LastError)
		}
	case observability.OperationRejected:
		reason, _ := event.Data["reason"].(string)
		if reason == "no_documents" {
			statusStyle.Fprintln(t.out, "Upload a document before asking a question.")
		} else {
			statusStyle.Fprintln(t.out, "Still working on the previous request, try again when it finishes.")
		}
	}
}

// Redraw prints the whole current session, used at start up and by /state.
func (t *Terminal) Redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.source.Snapshot()
	t.printed = 0
	t.generation = snap.Generation
	t.files = len(snap.Files)
	if len(snap.Files) == 0 {
		sourceStyle.Fprintln(t.out, "No documents uploaded.")
	} else {
		sourceStyle.Fprintf(t.out, "Documents: %s\n", fileList(snap.Files))
	}
	t.followTranscript(snap)
	if snap.HasError {
		errorStyle.Fprintln(t.out, snap.LastError)
	}
	if snap.Busy {
		statusStyle.Fprintf(t.out, "%s...\n", snap.Phase)
	}
}

// followTranscript prints the turns not shown yet. A clear is detected by the
// generation, a shorter transcript alone is not enough: a clear followed by an
// append can arrive as a transcript of the same length.
func (t *Terminal) followTranscript(snap sessionModel.Snapshot) {
	turns := snap.Transcript
	if snap.Generation != t.generation || len(turns) < t.printed {
		dividerStyle.Fprintln(t.out, "--- chat cleared ---")
		t.printed = 0
		t.generation = snap.Generation
	}
	for _, turn := range turns[t.printed:] {
		t.printTurn(turn)
	}
	t.printed = len(turns)
}

func (t *Terminal) printTurn(turn sessionModel.Turn) {
	if turn.Role == sessionModel.RoleUser {
		userStyle.Fprintf(t.out, "You: %s\n", turn.Content)
		return
	}
	botStyle.Fprintf(t.out, "Bot: %s\n", turn.Content)
	if len(turn.Sources) > 0 {
		sourceStyle.Fprintf(t.out, "Sources: %s\n", FormatSources(turn.Sources))
	}
}

func (t *Terminal) printFiles(files []commonModels.UploadedFileRecord) {
	for _, f := range files[min(t.files, len(files)):] {
		sourceStyle.Fprintf(t.out, "Uploaded %s (%d documents)\n", f.Name, len(files))
	}
	t.files = len(files)
}

// FormatSources renders citations as "a.pdf (Page 3), b.pdf (Page 1)".
func FormatSources(sources []commonModels.SourceRef) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("%s (Page %d)", s.Filename, s.Page)
	}
	return strings.Join(parts, ", ")
}

func fileList(files []commonModels.UploadedFileRecord) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// SnapshotFunc adapts a function to SnapshotSource.
type SnapshotFunc func() sessionModel.Snapshot

func (f SnapshotFunc) Snapshot() sessionModel.Snapshot {
	return f()
}
