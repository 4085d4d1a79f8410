package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-morph/internal/photoprism"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a person's photos from PhotoPrism",
	Long: `Download the original files of every photo matching a PhotoPrism search
into the headshot input directory. Files already present are kept.

Example:
  face-morph fetch --query person:jan-novak --out headshots`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("query", "", "PhotoPrism search query, e.g. person:jan-novak (required)")
	fetchCmd.Flags().String("out", "headshots", "Directory for downloaded photos")
	fetchCmd.Flags().Int("limit", 0, "Stop after this many photos (0 = all)")
	_ = fetchCmd.MarkFlagRequired("query")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.PhotoPrism.URL == "" {
		return errors.New("PHOTOPRISM_URL environment variable is required")
	}

	ctx := cmd.Context()
	log := newLogger()

	pp, err := photoprism.New(ctx, cfg.PhotoPrism.URL, cfg.PhotoPrism.Username, cfg.PhotoPrism.Password)
	if err != nil {
		return fmt.Errorf("failed to connect to PhotoPrism: %w", err)
	}
	defer func() {
		if err := pp.Logout(ctx); err != nil {
			log.Warn("logout failed", "error", err)
		}
	}()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Downloading photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
	)
	res, err := pp.Fetch(ctx, mustGetString(cmd, "out"), photoprism.FetchOptions{
		Query:   mustGetString(cmd, "query"),
		Limit:   mustGetInt(cmd, "limit"),
		Logger:  log,
		OnPhoto: func(int) { _ = bar.Add(1) },
	})
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded %d photos, %d already present\n", len(res.Written), len(res.Existing))
	return nil
}
