package middleware

import (
	"net"
	"net/http"

	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/config"
	"github.com/akolanti/docqa-client/internal/handlers"
)

// injectTrace keeps the caller's X-Trace-Id or makes a new one. The id flows
// through the context into the backend requests.
func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusBadRequest,
			errorMessage: "request is empty",
		}
		return re
	}
	trace := req.Header.Get(config.TRACE_HEADER)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With(config.TRACE_ID_KEY, trace)
	re.writer.Header().Set(config.TRACE_HEADER, trace)
	re.req = req.WithContext(utils.WithTraceId(req.Context(), trace))

	re.logger.Debug("trace injected")
	return re
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "rate limit exceeded",
		}
		return re
	}
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.remoteAddr())
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.req, re.badRequest.errorMessage)
}
