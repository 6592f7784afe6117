// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

package eventbus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type pingEvent struct{ n int }

func (pingEvent) EventName() string { return "ping" }

type pongEvent struct{}

func (pongEvent) EventName() string { return "pong" }

func TestDispatcher_DeliversToTypedHandlersInOrder(t *testing.T) {
	d := NewDispatcher(nil)
	var calls []string

	Subscribe(d, "first", func(_ context.Context, e pingEvent) error {
		calls = append(calls, "first")
		assert.Equal(t, 7, e.n)
		return nil
	})
	Subscribe(d, "second", func(_ context.Context, _ pingEvent) error {
		calls = append(calls, "second")
		return nil
	})
	Subscribe(d, "pong", func(_ context.Context, _ pongEvent) error {
		calls = append(calls, "pong")
		return nil
	})

	d.Publish(context.Background(), pingEvent{n: 7})

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, d.Handlers(pingEvent{}))
	assert.Equal(t, 1, d.Handlers(pongEvent{}))
}

func TestDispatcher_NoHandlers(t *testing.T) {
	d := NewDispatcher(nil)
	assert.NotPanics(t, func() {
		d.Publish(context.Background(), pongEvent{})
		d.Publish(context.Background(), nil)
	})
}

func TestDispatcher_FailingHandlerDoesNotStopOthers(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(slog.New(slog.NewTextHandler(&buf, nil)))
	reached := false
	before := testutil.ToFloat64(HandlerFailures.WithLabelValues("ping", "broken"))

	Subscribe(d, "broken", func(_ context.Context, _ pingEvent) error {
		return errors.New("index unavailable")
	})
	Subscribe(d, "healthy", func(_ context.Context, _ pingEvent) error {
		reached = true
		return nil
	})

	d.Publish(context.Background(), pingEvent{})

	assert.True(t, reached)
	assert.Contains(t, buf.String(), "event handler failed")
	assert.Contains(t, buf.String(), "index unavailable")
	assert.InDelta(t, before+1, testutil.ToFloat64(HandlerFailures.WithLabelValues("ping", "broken")), 0.001)
}

func TestDispatcher_RecoversHandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(slog.New(slog.NewTextHandler(&buf, nil)))
	Subscribe(d, "panicky", func(_ context.Context, _ pingEvent) error {
		panic("boom")
	})

	require.NotPanics(t, func() {
		d.Publish(context.Background(), pingEvent{})
	})
	assert.Contains(t, buf.String(), "handler panicked: boom")
}

func TestStarted_EventName(t *testing.T) {
	assert.Equal(t, "started", Started{}.EventName())
}

func newTracedDispatcher(t *testing.T) (*Dispatcher, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.tracer = tp.Tracer("test")
	return d, recorder
}

func spanNamed(t *testing.T, spans []sdktrace.ReadOnlySpan, name, handler string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range spans {
		if span.Name() != name {
			continue
		}
		for _, attr := range span.Attributes() {
			if attr.Key == "event.handler" && attr.Value.AsString() == handler {
				return span
			}
		}
		if handler == "" {
			return span
		}
	}
	require.Failf(t, "span not found", "%s for handler %q", name, handler)
	return nil
}

func TestDispatcher_FailingHandlerRecordsErrorSpan(t *testing.T) {
	d, recorder := newTracedDispatcher(t)
	Subscribe(d, "broken", func(_ context.Context, _ pingEvent) error {
		return errors.New("index unavailable")
	})
	Subscribe(d, "healthy", func(_ context.Context, _ pingEvent) error { return nil })

	d.Publish(context.Background(), pingEvent{})

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	broken := spanNamed(t, spans, "eventbus.deliver", "broken")
	assert.Equal(t, codes.Error, broken.Status().Code)
	assert.Equal(t, "index unavailable", broken.Status().Description)
	require.Len(t, broken.Events(), 1)
	assert.Equal(t, "exception", broken.Events()[0].Name)

	healthy := spanNamed(t, spans, "eventbus.deliver", "healthy")
	assert.Equal(t, codes.Unset, healthy.Status().Code)

	publish := spanNamed(t, spans, "eventbus.publish", "")
	assert.Contains(t, publish.Attributes(), attribute.String("event.name", "ping"))
	assert.Contains(t, publish.Attributes(), attribute.Int("event.failed_handlers", 1))
	assert.Equal(t, publish.SpanContext().SpanID(), broken.Parent().SpanID())
}

func TestDispatcher_PanickingHandlerRecordsErrorSpan(t *testing.T) {
	d, recorder := newTracedDispatcher(t)
	Subscribe(d, "panicky", func(_ context.Context, _ pingEvent) error {
		panic("boom")
	})

	d.Publish(context.Background(), pingEvent{})

	span := spanNamed(t, recorder.Ended(), "eventbus.deliver", "panicky")
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Status().Description, "handler panicked: boom")
}

func TestDispatcher_HandlersRunInsideSpan(t *testing.T) {
	d, _ := newTracedDispatcher(t)
	var sc trace.SpanContext
	Subscribe(d, "inspect", func(ctx context.Context, _ pingEvent) error {
		sc = trace.SpanContextFromContext(ctx)
		return nil
	})

	d.Publish(context.Background(), pingEvent{})

	assert.True(t, sc.IsValid())
}
