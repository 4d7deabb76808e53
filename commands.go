package main

import (
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/agentic-bank/pkg/config"
	logx "github.com/tanpawarit/agentic-bank/pkg/logger"
)

var (
	envFile   string
	sessionID string

	rootCmd = &cobra.Command{
		Use:           "agentic-bank",
		Short:         "Task-oriented banking dialogue agent",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*logCfg)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the dialogue pipeline over HTTP",
		RunE:  runServe,
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent in the terminal",
		RunE:  runChat,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")
	chatCmd.Flags().StringVar(&sessionID, "session", "", "session id to resume (generated when empty)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}
