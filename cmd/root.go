package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	jsonLogs   bool
)

var rootCmd = &cobra.Command{
	Use:   "face-morph",
	Short: "Turn a folder of portraits into a face morphing video",
	Long: `Face Morph normalizes a collection of portraits of one person, orders them
into a chain where each photo is followed by the most similar remaining one,
and renders the chain as a smoothly morphing video.

Stages can run one at a time (headshots, order, frames, video) or all at once
with the morph command.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "Log as JSON instead of pretty text")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
