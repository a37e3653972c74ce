package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/docqa-client/internal/metrics"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

func (re requestResponseStruct) remoteAddr() string {
	if re.req == nil {
		return ""
	}
	return re.req.RemoteAddr
}

// Wrap runs the control api pipeline (trace id, rate limit) in front of next
// and counts the response status.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
		}()

		re := processRequest(requestResponseStruct{req: r, writer: rec, logger: logger_i.NewLogger("middleware")})
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		re.logger.Debug("request accepted", "method", r.Method, "path", r.URL.Path)
		next(rec, re.req)
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return rateLimiter(re)
}
