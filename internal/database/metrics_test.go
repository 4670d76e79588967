package database

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordQuery(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordQuery(ctx, "record_order", 0.1, nil)
	metrics.RecordQuery(ctx, "record_order", 0.3, errors.New("unique violation"))
	metrics.RecordQuery(ctx, "summarize_orders", 0.05, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}

	t.Run("latency per operation", func(t *testing.T) {
		histogram, ok := byName["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
		if !ok {
			t.Fatal("Expected Histogram[float64] data type")
		}
		if len(histogram.DataPoints) != 2 {
			t.Errorf("Expected 2 data points, got %d", len(histogram.DataPoints))
		}
	})

	t.Run("outcome per operation", func(t *testing.T) {
		sum, ok := byName["db_queries_total"].Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}

		tests := []struct {
			operation string
			status    string
			want      int64
		}{
			{"record_order", "ok", 1},
			{"record_order", "error", 1},
			{"summarize_orders", "ok", 1},
		}
		for _, tt := range tests {
			want := attribute.NewSet(
				attribute.String("operation", tt.operation),
				attribute.String("status", tt.status),
			)
			var got int64
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					got = dp.Value
				}
			}
			if got != tt.want {
				t.Errorf("%s/%s: expected %d, got %d", tt.operation, tt.status, tt.want, got)
			}
		}
	})
}
