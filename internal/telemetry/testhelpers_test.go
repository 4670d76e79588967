package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig() Config {
	return Config{
		ServiceName:    "tdsbot",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

// initTelemetry initializes with discarding exporters and shuts down on cleanup.
func initTelemetry(t *testing.T, tracing, metrics bool) *Telemetry {
	t.Helper()

	cfg := testConfig()
	cfg.EnableTracing = tracing
	cfg.EnableMetrics = metrics

	tel, err := Initialize(context.Background(), cfg, WithDiscardExporters())
	if err != nil {
		t.Fatalf("failed to initialize telemetry: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	})
	return tel
}

// setupTracerProvider installs an in-memory tracer provider for the test.
func setupTracerProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(trace.NewTracerProvider(trace.WithSyncer(exp)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return exp
}

// newBufferLogger mirrors NewLogger but writes to a buffer.
func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{baseHandler: base}), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to decode log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}
