package main

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"chat-assistant/internal/assistant"

	"github.com/spf13/cobra"
)

func newClassifyCmd(_ *rootFlags) *cobra.Command {
	var (
		page        string
		contextFile string
		compose     bool
		repliesDir  string
		lang        string
	)
	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify a message and optionally compose the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("message is empty")
			}
			a := assistant.Classify(text, page)
			if !compose {
				return printJSON(cmd, a)
			}

			data, err := readInput(cmd, contextFile)
			if err != nil {
				return err
			}
			replies, err := assistant.OpenCatalog(repliesDir, lang)
			if err != nil {
				return err
			}
			nc := assistant.NormalizeJSON(data, time.Now())
			comp := assistant.NewComposer(assistant.FirstPicker, assistant.WithCatalog(replies)).Compose(a, nc, nil)
			return printJSON(cmd, map[string]any{
				"analysis":    a,
				"content":     comp.Content,
				"templateId":  comp.TemplateID,
				"suggestions": comp.Suggestions,
				"actions":     comp.Actions,
				"confidence":  comp.Confidence,
			})
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "current page hint")
	cmd.Flags().BoolVar(&compose, "compose", false, "also compose a reply (first template)")
	cmd.Flags().StringVar(&repliesDir, "replies-dir", "", "directory holding <lang>.yaml reply catalogs (default: built-in)")
	cmd.Flags().StringVar(&lang, "lang", "en", "reply catalog language for --compose")
	cmd.Flags().StringVar(&contextFile, "context", "", "client context JSON file for --compose (- for stdin)")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
