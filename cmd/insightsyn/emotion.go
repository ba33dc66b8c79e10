package main

import (
	"context"

	"github.com/spf13/cobra"
)

var emotionCmd = &cobra.Command{
	Use:   "emotion [text...]",
	Short: "Report the dominant emotion of text",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return printJSON(cmd.OutOrStdout(), a.service.AnalyzeTextEmotion(ctx, text))
		})
	},
}

func init() {
	rootCmd.AddCommand(emotionCmd)
}
