// Package watcher turns documents dropped into a folder into upload batches.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/controller"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/workflow"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

type Uploader interface {
	UploadBatch(ctx context.Context, files []commonModels.FileHandle) (workflow.BatchReport, error)
}

type FolderWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	uploader Uploader
	logger   *logger_i.Logger
}

func NewFolderWatcher(dir string, uploader Uploader, debounce time.Duration) (*FolderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &FolderWatcher{
		watcher:  w,
		dir:      dir,
		debounce: debounce,
		uploader: uploader,
		logger:   logger_i.NewLogger("FolderWatcher").With("dir", dir),
	}, nil
}

// Run collects created or written files until the folder has been quiet for
// the debounce window, then submits them as one batch in arrival order. A batch
// that meets a busy session is dropped, never queued.
func (w *FolderWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching folder")

	var pending []string
	seen := make(map[string]bool)
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if isHidden(event.Name) {
				continue
			}
			if !seen[event.Name] {
				seen[event.Name] = true
				pending = append(pending, event.Name)
			}
			flush = time.After(w.debounce)

		case <-flush:
			flush = nil
			w.submit(ctx, pending)
			pending = nil
			seen = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *FolderWatcher) submit(ctx context.Context, paths []string) {
	files := make([]commonModels.FileHandle, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, commonModels.FileFromPath(path))
	}
	if len(files) == 0 {
		return
	}

	ctx, traceId := utils.EnsureTraceId(ctx)
	log := w.logger.With("traceId", traceId)
	report, err := w.uploader.UploadBatch(ctx, files)
	switch {
	case errors.Is(err, controller.ErrBusy):
		log.Warn("session busy, dropped batch", "files", commonModels.FileNames(files))
	case err != nil:
		log.Error("batch not submitted", "error", err)
	default:
		log.Info("batch submitted", "uploaded", report.Uploaded, "attempted", report.Attempted)
	}
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
