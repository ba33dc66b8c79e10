package main

import (
	"github.com/spf13/cobra"

	"github.com/spacesedan/insightsyn/internal/models"
	"github.com/spacesedan/insightsyn/internal/state"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the recorded analyses and brainstorms",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := state.NewStore(cfg.StateFile).Load(models.NewAppState())

		latest, _ := cmd.Flags().GetBool("latest")
		if latest {
			result, ok := st.LatestAnalysis()
			if !ok {
				return printJSON(cmd.OutOrStdout(), nil)
			}
			return printJSON(cmd.OutOrStdout(), result)
		}
		return printJSON(cmd.OutOrStdout(), st)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Bool("latest", false, "Only print the most recent analysis")
}
