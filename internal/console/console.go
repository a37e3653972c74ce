// Package console is the line based front end of the client. Commands start
// with a slash, every other line is a question.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/akolanti/docqa-client/internal/controller"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/workflow"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

type CommandKind string

const (
	CommandQuestion CommandKind = "question"
	CommandUpload   CommandKind = "upload"
	CommandClear    CommandKind = "clear"
	CommandFiles    CommandKind = "files"
	CommandState    CommandKind = "state"
	CommandHelp     CommandKind = "help"
	CommandQuit     CommandKind = "quit"
	CommandEmpty    CommandKind = "empty"
	CommandUnknown  CommandKind = "unknown"
)

type Command struct {
	Kind CommandKind
	Text string
	Args []string
}

const helpText = `Commands:
  /upload <path>...  upload one or more documents, in order
  /clear             clear the chat
  /files             list uploaded documents
  /state             redraw the whole session
  /help              show this help
  /quit              exit
Anything else is sent as a question.
`

// Session is the part of the controller the console drives.
type Session interface {
	UploadBatch(ctx context.Context, files []commonModels.FileHandle) (workflow.BatchReport, error)
	SetPendingInput(text string)
	SubmitQuery(ctx context.Context, question string) (workflow.QueryReport, error)
	Clear()
	Snapshot() sessionModel.Snapshot
}

type View interface {
	Redraw()
}

type Console struct {
	session Session
	view    View
	in      io.Reader
	out     io.Writer
	logger  *logger_i.Logger
	running sync.WaitGroup
}

func New(session Session, view View, in io.Reader, out io.Writer) *Console {
	return &Console{
		session: session,
		view:    view,
		in:      in,
		out:     out,
		logger:  logger_i.NewLogger("Console"),
	}
}

func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{Kind: CommandEmpty}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: CommandQuestion, Text: line}
	}

	fields := strings.Fields(trimmed)
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "/upload":
		return Command{Kind: CommandUpload, Args: args}
	case "/clear":
		return Command{Kind: CommandClear}
	case "/files":
		return Command{Kind: CommandFiles}
	case "/state":
		return Command{Kind: CommandState}
	case "/help", "/?":
		return Command{Kind: CommandHelp}
	case "/quit", "/exit":
		return Command{Kind: CommandQuit}
	default:
		return Command{Kind: CommandUnknown, Text: fields[0]}
	}
}

// Run reads commands until /quit, end of input or ctx is done. Uploads and
// questions run in the background so /clear stays available; Run waits for
// them before returning.
func (c *Console) Run(ctx context.Context) error {
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprint(c.out, helpText)
	defer c.running.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if quit := c.Execute(ctx, ParseCommand(line)); quit {
				return nil
			}
		}
	}
}

// Execute runs one command and reports whether the console should stop.
func (c *Console) Execute(ctx context.Context, cmd Command) bool {
	switch cmd.Kind {
	case CommandQuestion:
		c.session.SetPendingInput(cmd.Text)
		c.background(func() error {
			_, err := c.session.SubmitQuery(ctx, cmd.Text)
			return err
		})
	case CommandUpload:
		if len(cmd.Args) == 0 {
			fmt.Fprintln(c.out, "usage: /upload <path>...")
			return false
		}
		files := make([]commonModels.FileHandle, len(cmd.Args))
		for i, path := range cmd.Args {
			files[i] = commonModels.FileFromPath(path)
		}
		c.background(func() error {
			_, err := c.session.UploadBatch(ctx, files)
			return err
		})
	case CommandClear:
		c.session.Clear()
	case CommandFiles:
		c.printFiles()
	case CommandState:
		c.view.Redraw()
	case CommandHelp:
		fmt.Fprint(c.out, helpText)
	case CommandQuit:
		return true
	case CommandUnknown:
		fmt.Fprintf(c.out, "unknown command %s, type /help\n", cmd.Text)
	}
	return false
}

// Wait blocks until background uploads and questions have finished.
func (c *Console) Wait() {
	c.running.Wait()
}

func (c *Console) background(run func() error) {
	c.running.Add(1)
	go func() {
		defer c.running.Done()
		err := run()
		// rejections are shown by the renderer
		if err != nil && !errors.Is(err, controller.ErrBusy) && !errors.Is(err, controller.ErrNoDocuments) {
			c.logger.Error("command failed", "error", err)
		}
	}()
}

func (c *Console) printFiles() {
	files := c.session.Snapshot().Files
	if len(files) == 0 {
		fmt.Fprintln(c.out, "No documents uploaded.")
		return
	}
	for i, f := range files {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, f.Name)
	}
}
