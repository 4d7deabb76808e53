package audit

import (
	"context"
	"errors"
	"strings"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	qstashx "github.com/tanpawarit/agentic-bank/pkg/qstash"
)

// Publisher is the subset of the QStash client the sink needs.
type Publisher interface {
	Publish(ctx context.Context, destination string, body any) (qstashx.PublishResult, error)
}

// QStashSink forwards each event to a webhook through QStash.
type QStashSink struct {
	publisher   Publisher
	destination string
}

var _ contractx.AuditSink = (*QStashSink)(nil)

func NewQStashSink(publisher Publisher, destination string) (*QStashSink, error) {
	if publisher == nil {
		return nil, errors.New("qstash publisher is required")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("qstash destination is required")
	}
	return &QStashSink{publisher: publisher, destination: destination}, nil
}

func (s *QStashSink) Record(ctx context.Context, event contractx.AuditEvent) error {
	_, err := s.publisher.Publish(ctx, s.destination, event)
	return err
}
