package observability

import (
	"context"
	"log/slog"

	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/config"
)

// SlogObserver writes each event as one log record named after the event type.
type SlogObserver struct {
	logger *slog.Logger
}

func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+2)
	attrs = append(attrs, slog.String("source", event.Source))
	if traceId := utils.TraceIdFrom(ctx); traceId != "" {
		attrs = append(attrs, slog.String(config.TRACE_ID_KEY, traceId))
	}
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	o.logger.LogAttrs(ctx, event.Level, string(event.Type), attrs...)
}
