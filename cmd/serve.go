package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kozaktomas/face-morph/internal/database"
	"github.com/kozaktomas/face-morph/internal/database/postgres"
	"github.com/kozaktomas/face-morph/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chain builder HTTP API",
	Long: `Start an HTTP server that orders posted encodings into a similarity chain.

  GET  /api/v1/health
  POST /api/v1/chain
  GET  /api/v1/runs, /api/v1/runs/{id}   (only with DATABASE_URL)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (string, int) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		if p, err := strconv.Atoi(envPort); err == nil {
			port = p
		}
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		host = envHost
	}
	return host, port
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := newLogger()

	pool, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	var runs database.RunRepository
	if pool != nil {
		defer pool.Close()
		runs = postgres.NewRunRepository(pool)
		log.Info("run history enabled (PostgreSQL)")
	}

	host, port := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, host, port, runs, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
