// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package eventbus provides a synchronous, in-process event dispatcher with typed handlers.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/scmprops/scmprops/pkg/errutil"
)

var tracer = otel.Tracer("scmprops/eventbus")

// Event is anything that can be published. EventName is used for logging and metrics.
type Event interface {
	EventName() string
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Started is published once the application has finished wiring its components.
type Started struct{}

// EventName implements Event.
func (Started) EventName() string { return "started" }

type subscription struct {
	name    string
	handler func(ctx context.Context, event Event) error
}

// Dispatcher delivers events to the handlers subscribed to their concrete type.
// Delivery is synchronous and in subscription order. It is safe for concurrent use.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[reflect.Type][]subscription
	logger *slog.Logger
	tracer trace.Tracer
}

// NewDispatcher creates an empty dispatcher. A nil logger uses slog.Default.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		subs:   make(map[reflect.Type][]subscription),
		logger: logger,
		tracer: tracer,
	}
}

// Subscribe registers handler for events of type E on d.
// name identifies the handler in logs and metrics.
func Subscribe[E Event](d *Dispatcher, name string, handler func(ctx context.Context, event E) error) {
	typ := reflect.TypeFor[E]()
	sub := subscription{
		name: name,
		handler: func(ctx context.Context, event Event) error {
			typed, ok := event.(E)
			if !ok {
				return fmt.Errorf("unexpected event type %T for handler %s", event, name)
			}
			return handler(ctx, typed)
		},
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs[typ] = append(d.subs[typ], sub)
}

// Publish calls every handler subscribed to the event's type.
//
// A failing or panicking handler is logged and counted; the remaining handlers
// still run and the publisher is not affected.
func (d *Dispatcher) Publish(ctx context.Context, event Event) {
	if event == nil {
		return
	}

	d.mu.RLock()
	subs := d.subs[reflect.TypeOf(event)]
	d.mu.RUnlock()

	ctx, span := d.tracer.Start(ctx, "eventbus.publish",
		trace.WithAttributes(
			attribute.String("event.name", event.EventName()),
			attribute.Int("event.handlers", len(subs)),
		),
	)
	defer span.End()

	failed := 0
	for _, sub := range subs {
		if err := d.deliver(ctx, sub, event); err != nil {
			failed++
			recordHandlerFailure(event.EventName(), sub.name)
			errutil.LogErrorContext(ctx, d.logger, "event handler failed", oops.
				With("event", event.EventName()).
				With("handler", sub.name).
				Wrap(err))
		}
	}
	if failed > 0 {
		span.SetAttributes(attribute.Int("event.failed_handlers", failed))
	}
	recordDispatch(event.EventName())
}

func (d *Dispatcher) deliver(ctx context.Context, sub subscription, event Event) (err error) {
	ctx, span := d.tracer.Start(ctx, "eventbus.deliver",
		trace.WithAttributes(
			attribute.String("event.name", event.EventName()),
			attribute.String("event.handler", sub.name),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return sub.handler(ctx, event)
}

// Handlers returns the number of handlers subscribed to the type of event.
func (d *Dispatcher) Handlers(event Event) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs[reflect.TypeOf(event)])
}
