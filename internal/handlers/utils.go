package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/docqa-client/internal/adapter"
	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}, logger *logger_i.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// status is already sent
		logger.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context, logger *logger_i.Logger) bool {
	if ctx.Err() != nil {
		logger.Warn("context error", "traceId", utils.TraceIdFrom(ctx), "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, r *http.Request, message string) {
	traceId := ""
	if r != nil {
		traceId = utils.TraceIdFrom(r.Context())
	}
	writeJsonResponse(w, httpCode, adapter.ToControlError(httpCode, message, traceId), logger_i.NewLogger("Handlers"))
}
