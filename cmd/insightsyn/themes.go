package main

import (
	"context"

	"github.com/spf13/cobra"
)

var themesCmd = &cobra.Command{
	Use:   "themes [item...]",
	Short: "Group short keypoints into themes",
	Long:  `Clusters the embeddings of the given items into at most k themes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, _ := cmd.Flags().GetInt("k")
		if !cmd.Flags().Changed("k") {
			k = cfg.NumThemes
		}
		items := append([]string{}, args...)
		return withApp(cmd, func(ctx context.Context, a *app) error {
			result, err := a.service.ClusterKeypoints(ctx, items, k)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.Flags().IntP("k", "k", 2, "Number of themes")
}
