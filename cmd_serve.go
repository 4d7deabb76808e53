package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/agentic-bank/agent/api"
	configx "github.com/tanpawarit/agentic-bank/pkg/config"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg, err := configx.New[AppConfig]("APP")
	if err != nil {
		return err
	}
	httpCfg, err := configx.New[api.Config]("APP")
	if err != nil {
		return err
	}

	a, err := newApp(ctx, *appCfg)
	if err != nil {
		return err
	}

	server, err := api.NewServer(a.orchestrator, *httpCfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("audit shutdown failed")
	}
	return serveErr
}
