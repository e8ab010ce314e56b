package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	dev        bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "chat-assistant",
		Short: "Rule-based chat assistant backend",
		Long: `chat-assistant answers platform questions with a keyword classifier,
a client context normalizer and a template-based response composer.

  chat-assistant serve --config config.yaml    # run the HTTP and websocket server
  chat-assistant classify "how do I stake?"    # inspect one classification
  chat-assistant normalize < context.json      # normalize a client context`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.yaml", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&flags.dev, "dev", false, "developer mode: console logs, config file optional")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(
		newServeCmd(flags),
		newClassifyCmd(flags),
		newNormalizeCmd(flags),
	)
	return cmd
}
