package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/agentic-bank/agent/agents/orchestrator"
	registryx "github.com/tanpawarit/agentic-bank/agent/agents/registry"
	auditx "github.com/tanpawarit/agentic-bank/agent/audit"
	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	llmx "github.com/tanpawarit/agentic-bank/agent/llm"
	statex "github.com/tanpawarit/agentic-bank/agent/state"
	configx "github.com/tanpawarit/agentic-bank/pkg/config"
	postgresx "github.com/tanpawarit/agentic-bank/pkg/postgres"
	qstashx "github.com/tanpawarit/agentic-bank/pkg/qstash"
	"go.opentelemetry.io/otel"
)

const (
	serviceName = "agentic-bank"

	modeRule = "rule"
	modeLLM  = "llm"
)

type AppConfig struct {
	Mode            string        `split_words:"true" default:"rule"`
	AuditSinks      []string      `split_words:"true"`
	AuditDir        string        `split_words:"true" default:"logs"`
	AuditBufferSize int           `split_words:"true" default:"256"`
	QStashTarget    string        `envconfig:"QSTASH_TARGET"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// app holds the wired pipeline and whatever must be released on exit.
type app struct {
	orchestrator *orchestrator.Orchestrator
	closers      []func(context.Context) error
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context, cfg AppConfig) (*app, error) {
	agents, err := newRegistry(ctx, cfg.Mode)
	if err != nil {
		return nil, err
	}

	a := &app{}
	sink, err := a.newAuditSink(ctx, cfg)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	orch, err := orchestrator.New(statex.NewMemoryStore(), agents, sink,
		orchestrator.WithTracer(otel.Tracer(serviceName)),
	)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.orchestrator = orch

	log.Info().Str("mode", cfg.Mode).Strs("audit_sinks", cfg.AuditSinks).Msg("agent ready")
	return a, nil
}

func newRegistry(ctx context.Context, mode string) (contractx.Registry, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", modeRule:
		return registryx.NewRuleBased(), nil
	case modeLLM:
		llmCfg, err := configx.New[llmx.Config]("LLM")
		if err != nil {
			return nil, fmt.Errorf("load llm config: %w", err)
		}
		return registryx.NewLLM(ctx, *llmCfg)
	default:
		return nil, fmt.Errorf("unknown agent mode %q", mode)
	}
}

// newAuditSink builds one sink per configured backend behind a single async
// dispatcher. No backends means no auditing.
func (a *app) newAuditSink(ctx context.Context, cfg AppConfig) (contractx.AuditSink, error) {
	var sinks auditx.Multi
	for _, name := range cfg.AuditSinks {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		sink, err := a.newBackend(ctx, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("audit %s: %w", name, err)
		}
		sinks = append(sinks, auditx.Named{Name: name, Sink: sink})
	}
	if len(sinks) == 0 {
		return nil, nil
	}

	dispatcher := auditx.NewDispatcher(sinks, cfg.AuditBufferSize)
	a.closers = append(a.closers, dispatcher.Close)
	return dispatcher, nil
}

func (a *app) newBackend(ctx context.Context, name string, cfg AppConfig) (contractx.AuditSink, error) {
	switch name {
	case "file":
		return auditx.NewFileSink(cfg.AuditDir)
	case "redis":
		redisCfg, err := configx.New[auditx.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, err
		}
		return auditx.NewRedisSink(*redisCfg)
	case "postgres":
		pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
		if err != nil {
			return nil, err
		}
		db, err := postgresx.New(ctx, *pgCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		sink, err := auditx.NewPostgresSink(db)
		if err != nil {
			return nil, err
		}
		if err := sink.Migrate(ctx); err != nil {
			return nil, err
		}
		return sink, nil
	case "qstash":
		qCfg, err := configx.New[qstashx.Config]("QSTASH")
		if err != nil {
			return nil, err
		}
		client, err := qstashx.NewClient(*qCfg)
		if err != nil {
			return nil, err
		}
		return auditx.NewQStashSink(client, cfg.QStashTarget)
	default:
		return nil, fmt.Errorf("unknown audit backend %q", name)
	}
}
