package utils

import (
	"context"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type traceKey struct{}

func GetNewUUID() string {
	return uuid.New().String()
}

func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceId)
}

// TraceIdFrom returns the trace id stored in ctx, or "" when there is none.
func TraceIdFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceId, _ := ctx.Value(traceKey{}).(string)
	return traceId
}

// EnsureTraceId returns ctx unchanged if it already carries a trace id.
func EnsureTraceId(ctx context.Context) (context.Context, string) {
	if traceId := TraceIdFrom(ctx); traceId != "" {
		return ctx, traceId
	}
	traceId := GetNewUUID()
	return WithTraceId(ctx, traceId), traceId
}

type RouterClient struct {
	Router *chi.Mux
}

// NewRouter builds a router that recovers from handler panics and already
// serves the prometheus endpoint. Add routes only, middleware is closed.
func NewRouter() RouterClient {
	router := chi.NewRouter()
	router.Use(chiMiddleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	return RouterClient{Router: router}
}
