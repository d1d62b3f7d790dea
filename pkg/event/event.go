// Package event is an in-process publish/subscribe dispatcher. Dispatch
// hands listeners to ordered lanes so the publisher never waits on a slow
// subscriber; events with the same key always run in publish order.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/metrics"
	"github.com/shashiranjanraj/churchcafe/pkg/workerpool"
)

// laneDepth is how many events may wait on one lane before new ones drop.
const laneDepth = 256

// Event is a named payload.
type Event struct {
	Name    string
	Payload any
}

// Keyed payloads pick their lane. Events sharing a key are delivered in the
// order they were dispatched; unkeyed payloads share lane 0.
type Keyed interface {
	EventKey() uint64
}

// Listener receives events it subscribed to.
type Listener func(ctx context.Context, e Event)

// Publisher is what producers depend on.
type Publisher interface {
	Dispatch(ctx context.Context, name string, payload any)
}

type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	lanes     []*workerpool.Pool
}

// NewDispatcher starts lanes single-worker queues. Zero lanes makes
// Dispatch synchronous.
func NewDispatcher(lanes int) *Dispatcher {
	d := &Dispatcher{listeners: make(map[string][]Listener)}
	for i := 0; i < lanes; i++ {
		d.lanes = append(d.lanes, workerpool.NewQueued(1, laneDepth))
	}
	return d
}

// Listen subscribes l to the named event.
func (d *Dispatcher) Listen(name string, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], l)
}

func (d *Dispatcher) snapshot(name string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Listener(nil), d.listeners[name]...)
}

func (d *Dispatcher) lane(payload any) *workerpool.Pool {
	var key uint64
	if k, ok := payload.(Keyed); ok {
		key = k.EventKey()
	}
	return d.lanes[key%uint64(len(d.lanes))]
}

// Dispatch queues the event on its lane and returns immediately. The
// listeners see a context detached from the caller's cancellation. When the
// lane is saturated or closed the event is dropped and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, payload any) {
	ls := d.snapshot(name)
	if len(ls) == 0 {
		return
	}

	bg := context.WithoutCancel(ctx)
	e := Event{Name: name, Payload: payload}
	task := func() {
		for _, l := range ls {
			runSafely(bg, l, e)
		}
	}

	if len(d.lanes) == 0 {
		task()
		metrics.RelayEvents.WithLabelValues(name, "queued").Inc()
		return
	}

	if err := d.lane(payload).Submit(task); err != nil {
		metrics.RelayEvents.WithLabelValues(name, "dropped").Inc()
		reason := "lane full"
		if errors.Is(err, workerpool.ErrPoolClosed) {
			reason = "closed"
		}
		logger.WithCtx(ctx).Warn("event: dropped", "event", name, "reason", reason)
		return
	}
	metrics.RelayEvents.WithLabelValues(name, "queued").Inc()
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	for _, p := range d.lanes {
		p.Shutdown()
	}
}

func runSafely(ctx context.Context, l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked",
				"event", e.Name,
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()
	l(ctx, e)
}
