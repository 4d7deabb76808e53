// Package audit records per-session audit events. Sinks are append-only and
// never read back by the turn pipeline.
package audit

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	metricsx "github.com/tanpawarit/agentic-bank/agent/metrics"
)

// Multi fans one event out to every sink. A failing sink does not stop the
// others.
type Multi []contractx.AuditSink

var _ contractx.AuditSink = Multi(nil)

func (m Multi) Record(ctx context.Context, event contractx.AuditEvent) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Named labels a sink's failures with its backend name.
type Named struct {
	Name string
	Sink contractx.AuditSink
}

func (n Named) Record(ctx context.Context, event contractx.AuditEvent) error {
	if err := n.Sink.Record(ctx, event); err != nil {
		metricsx.RecordAuditFailure(n.Name)
		return fmt.Errorf("%s sink: %w", n.Name, err)
	}
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, contractx.AuditEvent) error { return nil }
