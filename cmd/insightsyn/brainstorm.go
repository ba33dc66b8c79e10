package main

import (
	"context"

	"github.com/spf13/cobra"
)

var brainstormCmd = &cobra.Command{
	Use:   "brainstorm [idea...]",
	Short: "Expand an idea with a language model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ideaContext, _ := cmd.Flags().GetString("context")
		idea, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			result, err := a.service.Brainstorm(ctx, idea, ideaContext)
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
	rootCmd.AddCommand(brainstormCmd)
	brainstormCmd.Flags().StringP("context", "c", "", "Additional context to steer the brainstorm")
}
