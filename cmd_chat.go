package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/agentic-bank/agent/agents/orchestrator"
	"github.com/tanpawarit/agentic-bank/agent/api"
	configx "github.com/tanpawarit/agentic-bank/pkg/config"
)

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	appCfg, err := configx.New[AppConfig]("APP")
	if err != nil {
		return err
	}
	a, err := newApp(ctx, *appCfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appCfg.ShutdownTimeout)
		defer cancel()
		_ = a.Close(closeCtx)
	}()

	id := strings.TrimSpace(sessionID)
	if id == "" {
		id = uuid.NewString()
	}
	return chatLoop(ctx, a.orchestrator, id, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one user message per line until EOF or "exit".
func chatLoop(ctx context.Context, handler api.TurnHandler, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Session %s. Type \"exit\" to quit.\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, err := handler.HandleTurn(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "agent> %s\n", resp.Reply())
		if resp.AwaitingUser && len(resp.MissingSlots) > 0 {
			fmt.Fprintf(out, "       (missing: %s)\n", strings.Join(resp.MissingSlots, ", "))
		}
	}
}

var _ api.TurnHandler = (*orchestrator.Orchestrator)(nil)
