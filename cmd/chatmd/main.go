// Package main is the entry point for the chatmd CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chatmd/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    config.Config
	logger *slog.Logger
)

// rootCmd is the base command for the chatmd CLI.
var rootCmd = &cobra.Command{
	Use:   "chatmd",
	Short: "Export rendered chat conversations to Markdown",
	Long: `chatmd converts a saved chat conversation page into a single Markdown
document. With --images the referenced images are fetched and bundled with
the Markdown in a zip archive.

Settings are read from ./chatmd.yaml or ~/.config/chatmd/chatmd.yaml and
can be overridden with CHATMD_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		v, err := config.New(cfgFile, version)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			fmt.Fprintln(os.Stderr, "Using config file:", used)
		}
		cfg = config.Load(v)

		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./chatmd.yaml or ~/.config/chatmd/chatmd.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log image fetches and other detail")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
