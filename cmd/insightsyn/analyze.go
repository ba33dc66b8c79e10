package main

import (
	"context"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Summarize text and report its sentiment, entities, emotion and themes",
	Long: `Runs every analysis on the given text (or stdin) and records the result
in the history file. Analyses that fail are listed under "errors" instead
of aborting the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			result, err := a.service.Analyze(ctx, text)
			if err != nil && result.ID == "" {
				return err
			}
			if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
				return perr
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
