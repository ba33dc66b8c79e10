package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacesedan/insightsyn/config"
	"github.com/spacesedan/insightsyn/internal/logging"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "insightsyn",
	Short: "InsightSyn analyzes text and brainstorms ideas with pretrained models",
	Long: `InsightSyn summarizes text, scores its sentiment and emotion, extracts
named entities, groups them into themes, and expands ideas with a language
model. Every interaction is kept in a local JSON history file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env, _ := cmd.Flags().GetString("env")
		config.LoadEnv(env)
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if cmd.Flags().Changed("state-file") {
			cfg.StateFile, _ = cmd.Flags().GetString("state-file")
		}
		logging.InitLogger(cfg.LogLevel)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultEnv := os.Getenv("APP_ENV")
	if defaultEnv == "" {
		defaultEnv = "dev"
	}
	rootCmd.PersistentFlags().String("env", defaultEnv, "Environment file to load from config/envs")
	rootCmd.PersistentFlags().String("state-file", "state.json", "Path of the JSON history file")
}

// readInput joins args into the input text, or reads stdin when there are
// no args or the only arg is "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
