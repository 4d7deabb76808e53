package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	metricsx "github.com/tanpawarit/agentic-bank/agent/metrics"
)

const (
	DefaultBufferSize   = 256
	defaultWriteTimeout = 5 * time.Second
)

var (
	ErrBufferFull = errors.New("audit buffer is full")
	ErrClosed     = errors.New("audit dispatcher is closed")
)

type DispatcherOption func(*Dispatcher)

// WithWriteTimeout bounds each write to the underlying sink.
func WithWriteTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.writeTimeout = timeout
		}
	}
}

type queued struct {
	ctx   context.Context
	event contractx.AuditEvent
}

// Dispatcher hands events to a sink on a background goroutine. Record never
// blocks: when the buffer is full the event is dropped.
type Dispatcher struct {
	sink         contractx.AuditSink
	writeTimeout time.Duration

	queue chan queued
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ contractx.AuditSink = (*Dispatcher)(nil)

func NewDispatcher(sink contractx.AuditSink, bufferSize int, opts ...DispatcherOption) *Dispatcher {
	if sink == nil {
		sink = Discard{}
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	d := &Dispatcher{
		sink:         sink,
		writeTimeout: defaultWriteTimeout,
		queue:        make(chan queued, bufferSize),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	go d.run()
	return d
}

func (d *Dispatcher) Record(ctx context.Context, event contractx.AuditEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		metricsx.RecordAuditDropped()
		log.Warn().
			Str("session_id", event.SessionID).
			Str("stage", "audit").
			Str("event", string(event.Kind)).
			Msg("audit buffer full, dropping event")
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for queued ones to drain or for ctx
// to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for item := range d.queue {
		d.write(item)
	}
}

func (d *Dispatcher) write(item queued) {
	ctx, cancel := context.WithTimeout(item.ctx, d.writeTimeout)
	defer cancel()

	if err := d.sink.Record(ctx, item.event); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", item.event.SessionID).
			Str("stage", "audit").
			Str("event", string(item.event.Kind)).
			Msg("audit write failed")
	}
}
