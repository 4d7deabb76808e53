package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	"github.com/uptrace/bun"
)

type auditRow struct {
	bun.BaseModel `bun:"table:audit_events,alias:ae"`

	ID        int64          `bun:"id,pk,autoincrement"`
	Timestamp time.Time      `bun:"ts,notnull"`
	SessionID string         `bun:"session_id,notnull"`
	Event     string         `bun:"event,notnull"`
	Payload   map[string]any `bun:"payload,type:jsonb"`
}

// PostgresSink inserts one audit_events row per event.
type PostgresSink struct {
	db bun.IDB
}

var _ contractx.AuditSink = (*PostgresSink)(nil)

func NewPostgresSink(db bun.IDB) (*PostgresSink, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresSink{db: db}, nil
}

// Migrate creates the audit_events table and its session index.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*auditRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create audit_events: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*auditRow)(nil)).
		Index("audit_events_session_idx").
		IfNotExists().
		Column("session_id", "ts").
		Exec(ctx); err != nil {
		return fmt.Errorf("create audit_events index: %w", err)
	}
	return nil
}

func (s *PostgresSink) Record(ctx context.Context, event contractx.AuditEvent) error {
	row := &auditRow{
		Timestamp: event.Timestamp,
		SessionID: event.SessionID,
		Event:     string(event.Kind),
		Payload:   event.Payload,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
