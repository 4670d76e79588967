package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps debug, info, warn or error to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger writes JSON to stdout with trace_id and span_id taken from the context.
func NewLogger(level slog.Level) *slog.Logger {
	baseHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	handler := &traceHandler{baseHandler: baseHandler}
	return slog.New(handler)
}

// traceHandler puts trace_id and span_id at the top level of every record
// and replays With and WithGroup calls in the order they were made.
type traceHandler struct {
	baseHandler slog.Handler
	ops         []handlerOp
}

// handlerOp is either a group name or a batch of attributes.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	traceAttrs := []slog.Attr{}
	if traceID := TraceID(ctx); traceID != "" {
		traceAttrs = append(traceAttrs, slog.String("trace_id", traceID))
	}
	if spanID := SpanID(ctx); spanID != "" {
		traceAttrs = append(traceAttrs, slog.String("span_id", spanID))
	}

	handler := h.baseHandler
	if len(traceAttrs) > 0 {
		handler = handler.WithAttrs(traceAttrs)
	}

	for _, op := range h.ops {
		if op.group != "" {
			handler = handler.WithGroup(op.group)
			continue
		}
		handler = handler.WithAttrs(op.attrs)
	}

	return handler.Handle(ctx, r)
}

func (h *traceHandler) with(op handlerOp) *traceHandler {
	ops := make([]handlerOp, len(h.ops)+1)
	copy(ops, h.ops)
	ops[len(h.ops)] = op
	return &traceHandler{baseHandler: h.baseHandler, ops: ops}
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(handlerOp{attrs: attrs})
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(handlerOp{group: name})
}
