package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/akolanti/docqa-client/internal/adapter"
	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/api"
	"github.com/akolanti/docqa-client/internal/config"
	"github.com/akolanti/docqa-client/internal/controller"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/internal/workflow"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

// Session is what the control api can do to the running session.
type Session interface {
	UploadBatch(ctx context.Context, files []commonModels.FileHandle) (workflow.BatchReport, error)
	SubmitQuery(ctx context.Context, question string) (workflow.QueryReport, error)
	SetPendingInput(text string)
	SubmitPending(ctx context.Context) (workflow.QueryReport, error)
	Clear()
	Snapshot() sessionModel.Snapshot
}

type ControlHandler struct {
	session Session
	logger  *logger_i.Logger
}

func NewControlHandler(session Session) *ControlHandler {
	return &ControlHandler{
		session: session,
		logger:  logger_i.NewLogger("ControlHandler"),
	}
}

// GetState returns the current session snapshot.
func (h *ControlHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// PostUpload runs one batch with every "file" part of the form, in form order,
// and answers once the batch is over. A failed batch is still a 200, the
// failure is in last_error.
func (h *ControlHandler) PostUpload(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	if err := r.ParseMultipartForm(config.MaxUploadMemory); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, r, "expected a multipart form")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("couldn't remove multipart temp files", "error", err)
		}
	}()

	headers := r.MultipartForm.File[config.UploadFieldName]
	if len(headers) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, r, "no \""+config.UploadFieldName+"\" field in form")
		return
	}
	files := make([]commonModels.FileHandle, len(headers))
	for i, header := range headers {
		files[i] = fromFormFile(header)
	}

	if _, err := h.session.UploadBatch(detach(r), files); err != nil {
		h.writeRejected(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// PostQuery asks one question and answers once the backend has replied.
func (h *ControlHandler) PostQuery(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	var request api.QueryRequest
	if err := decodeBody(r, &request); err != nil || strings.TrimSpace(request.Query) == "" {
		h.logger.Warn("bad query request", "traceId", utils.TraceIdFrom(r.Context()), "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, r, "query must be a non empty string")
		return
	}

	if _, err := h.session.SubmitQuery(detach(r), request.Query); err != nil {
		h.writeRejected(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

// PutInput replaces the pending question text.
func (h *ControlHandler) PutInput(w http.ResponseWriter, r *http.Request) {
	var request api.InputRequest
	if err := decodeBody(r, &request); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, r, "expected {\"text\": string}")
		return
	}
	h.session.SetPendingInput(request.Text)
	h.writeState(w, http.StatusOK)
}

// PostSubmit submits the pending question. A blank pending question is a no-op.
func (h *ControlHandler) PostSubmit(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	if _, err := h.session.SubmitPending(detach(r)); err != nil {
		h.writeRejected(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *ControlHandler) PostClear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	h.writeState(w, http.StatusOK)
}

func (h *ControlHandler) writeState(w http.ResponseWriter, status int) {
	writeJsonResponse(w, status, adapter.ToStateResponse(h.session.Snapshot()), h.logger)
}

func (h *ControlHandler) writeRejected(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, controller.ErrBusy):
		WriteErrorResponse(w, http.StatusConflict, r, err.Error())
	case errors.Is(err, controller.ErrNoDocuments):
		WriteErrorResponse(w, http.StatusPreconditionFailed, r, err.Error())
	default:
		h.logger.Error("operation failed", "traceId", utils.TraceIdFrom(r.Context()), "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, r, "internal error")
	}
}

func fromFormFile(header *multipart.FileHeader) commonModels.FileHandle {
	return commonModels.FileHandle{
		Name: header.Filename,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

// detach keeps the request values, the trace id among them, but not its
// cancellation: a backend call runs to completion even if the caller goes away.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
