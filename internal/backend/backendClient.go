// Package backend talks to the document processing service. It is the only code
// that knows the wire format of /upload/ and /query/.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/api"
	"github.com/akolanti/docqa-client/internal/config"
	"github.com/akolanti/docqa-client/internal/domain/commonModels"
	"github.com/akolanti/docqa-client/internal/metrics"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

// Client is what the workflows see of the backend. Every error it returns is a *Failure.
type Client interface {
	Upload(ctx context.Context, file commonModels.FileHandle) error
	Query(ctx context.Context, question string) (api.QueryResponse, error)
}

type client struct {
	baseURL string
	http    *http.Client
	logger  *logger_i.Logger
}

func NewClient(baseURL string, httpClient *http.Client) Client {
	return &client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger_i.NewLogger("Backend"),
	}
}

func (c *client) Upload(ctx context.Context, file commonModels.FileHandle) error {
	ctx, traceId := utils.EnsureTraceId(ctx)
	log := c.logger.With("traceId", traceId, "file", file.Name)

	body, contentType, err := encodeUpload(file)
	if err != nil {
		log.Error("could not read file for upload", "error", err)
		return transportFailure(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+config.UploadPath, body)
	if err != nil {
		return transportFailure(err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("backend_upload", time.Since(start)) }()

	status, raw, err := c.send(req, traceId)
	if err != nil {
		log.Warn("upload failed", "error", err)
		return err
	}
	if !json.Valid(raw) {
		log.Warn("upload response is not json", "status", status)
		return malformed(status, "invalid JSON in upload response", nil)
	}
	log.Debug("upload accepted", "status", status, "response", string(raw))
	return nil
}

func (c *client) Query(ctx context.Context, question string) (api.QueryResponse, error) {
	ctx, traceId := utils.EnsureTraceId(ctx)
	log := c.logger.With("traceId", traceId)

	var result api.QueryResponse
	payload, err := json.Marshal(api.QueryRequest{Query: question})
	if err != nil {
		return result, transportFailure(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+config.QueryPath, bytes.NewReader(payload))
	if err != nil {
		return result, transportFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("backend_query", time.Since(start)) }()

	status, raw, err := c.send(req, traceId)
	if err != nil {
		log.Warn("query failed", "error", err)
		return result, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Warn("query response is not valid json", "status", status, "error", err)
		return api.QueryResponse{}, malformed(status, "invalid JSON in query response", err)
	}
	if result.Answer == "" {
		log.Warn("query response has no answer", "status", status)
		return api.QueryResponse{}, malformed(status, config.NoAnswerMessage, nil)
	}
	log.Debug("query answered", "status", status, "sources", len(result.Sources))
	return result, nil
}

// send runs the request and returns the body of a 2xx response. Non 2xx statuses
// become a BackendFailure carrying the backend's detail when it sent one.
func (c *client) send(req *http.Request, traceId string) (int, []byte, error) {
	req.Header.Set(config.TRACE_HEADER, traceId)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportFailure(err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("couldn't close response body", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, transportFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorBody api.ErrorResponse
		//a body that is not json just means there is no detail
		_ = json.Unmarshal(raw, &errorBody)
		return resp.StatusCode, raw, &Failure{
			Kind:       BackendFailure,
			StatusCode: resp.StatusCode,
			Detail:     errorBody.Detail,
		}
	}
	return resp.StatusCode, raw, nil
}

func encodeUpload(file commonModels.FileHandle) (io.Reader, string, error) {
	if file.Open == nil {
		return nil, "", fmt.Errorf("file %q has no content", file.Name)
	}
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %q: %w", file.Name, err)
	}
	defer src.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(config.UploadFieldName, file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("reading %q: %w", file.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
