package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan(t *testing.T) {
	exp := setupTracerProvider(t)

	ctx, parent := StartSpan(context.Background(), "Conversation.Handle")
	childCtx, child := StartSpan(ctx, "PurchaseFlow.SubmitProof")
	child.End()
	parent.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "PurchaseFlow.SubmitProof" || spans[1].Name != "Conversation.Handle" {
		t.Errorf("unexpected span names %s, %s", spans[0].Name, spans[1].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child span is not parented to the outer span")
	}
	if TraceID(childCtx) != TraceID(ctx) {
		t.Error("nested spans should share a trace id")
	}
	if SpanID(childCtx) == SpanID(ctx) {
		t.Error("nested spans should have distinct span ids")
	}
	if spans[0].InstrumentationScope.Name != tracerName {
		t.Errorf("unexpected tracer name %q", spans[0].InstrumentationScope.Name)
	}
}

func TestSpanHelpers(t *testing.T) {
	t.Run("attributes and events", func(t *testing.T) {
		exp := setupTracerProvider(t)

		_, span := StartSpan(context.Background(), "SessionStore.Update")
		AddSpanAttributes(span, attribute.String("session.user_id", "42"))
		AddSpanAttributes(span, attribute.Bool("session.discounted", true))
		AddSpanEvent(span, "session.advanced", attribute.String("session.state", "awaiting_proof"))
		span.End()

		got := exp.GetSpans()[0]
		if len(got.Attributes) != 2 {
			t.Errorf("expected 2 attributes, got %d", len(got.Attributes))
		}
		if len(got.Events) != 1 || got.Events[0].Name != "session.advanced" {
			t.Errorf("unexpected events %v", got.Events)
		}
	})

	t.Run("error then success", func(t *testing.T) {
		exp := setupTracerProvider(t)

		_, failed := StartSpan(context.Background(), "EventBus.PublishOrderPlaced")
		RecordSpanError(failed, errors.New("broker down"))
		failed.End()

		_, recovered := StartSpan(context.Background(), "OrderLedger.Record")
		RecordSpanError(recovered, errors.New("timeout"))
		SetSpanSuccess(recovered)
		recovered.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code != codes.Error || spans[0].Status.Description != "broker down" {
			t.Errorf("unexpected status %+v", spans[0].Status)
		}
		if len(spans[0].Events) == 0 || spans[0].Events[0].Name != "exception" {
			t.Error("expected the error to be recorded as an exception event")
		}
		if spans[1].Status.Code != codes.Ok {
			t.Errorf("expected ok to override the error, got %v", spans[1].Status.Code)
		}
	})

	t.Run("end span sets status from the error", func(t *testing.T) {
		exp := setupTracerProvider(t)
		boom := errors.New("redis unavailable")

		_, failed := StartSpan(context.Background(), "SessionStore.Get", attribute.String("session.user_id", "42"))
		if err := EndSpan(failed, boom); !errors.Is(err, boom) {
			t.Errorf("expected the error back, got %v", err)
		}
		failed.End()

		_, ok := StartSpan(context.Background(), "SessionStore.Delete")
		if err := EndSpan(ok, nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		ok.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code != codes.Error || len(spans[0].Attributes) != 1 {
			t.Errorf("unexpected failed span %+v", spans[0])
		}
		if spans[1].Status.Code != codes.Ok {
			t.Errorf("expected ok, got %v", spans[1].Status.Code)
		}
	})

	t.Run("nil span and nil error are ignored", func(t *testing.T) {
		setupTracerProvider(t)

		AddSpanAttributes(nil, attribute.String("k", "v"))
		AddSpanEvent(nil, "event")
		RecordSpanError(nil, errors.New("x"))
		SetSpanSuccess(nil)

		_, span := StartSpan(context.Background(), "noop")
		RecordSpanError(span, nil)
		span.End()
	})

	t.Run("ids are empty without a span", func(t *testing.T) {
		if TraceID(context.Background()) != "" || SpanID(context.Background()) != "" {
			t.Error("expected empty ids for a bare context")
		}
	})
}
