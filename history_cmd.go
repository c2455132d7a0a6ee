package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/speakclip/speakclip/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently spoken utterances",
	Long:  paragraph(fmt.Sprintf("\nList the %s utterances, newest first.", keyword("recently spoken"))),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := historyPath()
		if err != nil {
			return fmt.Errorf("unable to locate the history file: %w", err)
		}
		store, err := history.Open(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("unable to open history: %w", err)
		}
		defer store.Close() //nolint:errcheck

		entries, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("unable to read history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No utterances recorded yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-22s  %s\n",
				e.SpokenAt.Local().Format("2006-01-02 15:04:05"),
				e.Voice,
				strings.ReplaceAll(e.Text, "\n", " "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "number", "n", 20, "number of entries to show")
}
