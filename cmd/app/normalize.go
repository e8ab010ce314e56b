package main

import (
	"io"
	"os"
	"time"

	"chat-assistant/internal/assistant"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(_ *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a client context JSON document",
		Long:  "Reads a raw client context from --file or stdin and prints the normalized context.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = "-"
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			return printJSON(cmd, assistant.NormalizeJSON(data, time.Now()))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "context JSON file (default stdin)")
	return cmd
}

// readInput reads path, "-" meaning stdin. An empty path yields no data.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	default:
		return os.ReadFile(path)
	}
}
