// Package workflow holds the two network workflows of a session. They are
// stateless: everything they learn is written through a sessionModel.Mutator,
// and the caller owns the busy gate.
package workflow

import (
	"context"

	"github.com/akolanti/docqa-client/internal/adapter"
	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/backend"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/metrics"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

// BatchReport summarises one upload batch for logs and metrics.
type BatchReport struct {
	Attempted  int
	Uploaded   int
	FailedFile string
	Failure    error
	Message    string
}

func (r BatchReport) Failed() bool {
	return r.Failure != nil
}

// ShouldAbort decides whether the rest of a batch is dropped after one file.
// The first failure ends the batch; there is no retry and no skip.
func ShouldAbort(err error) bool {
	return err != nil
}

type Uploader struct {
	client backend.Client
	logger *logger_i.Logger
}

func NewUploader(client backend.Client) *Uploader {
	return &Uploader{
		client: client,
		logger: logger_i.NewLogger("UploadOrchestrator"),
	}
}

// UploadBatch sends the files one at a time, in order. File N+1 is only sent
// after file N has finished.
func (u *Uploader) UploadBatch(ctx context.Context, files []commonModels.FileHandle, state sessionModel.Mutator) BatchReport {
	log := u.logger.With("traceId", utils.TraceIdFrom(ctx))
	state.ClearError()

	var report BatchReport
	for _, file := range files {
		report.Attempted++
		err := u.client.Upload(ctx, file)
		if ShouldAbort(err) {
			report.FailedFile = file.Name
			report.Failure = err
			report.Message = adapter.ToFailureMessage(adapter.OperationUpload, err)
			state.SetError(report.Message)
			log.Warn("upload batch aborted", "file", file.Name, "uploaded", report.Uploaded,
				"skipped", len(files)-report.Attempted, "error", err)
			return report
		}

		state.AppendFile(commonModels.UploadedFileRecord{Name: file.Name})
		metrics.IncrementUploadedFiles()
		report.Uploaded++
		log.Debug("file uploaded", "file", file.Name)
	}
	return report
}
