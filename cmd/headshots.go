package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/encoder"
	"github.com/kozaktomas/face-morph/internal/headshot"
	"github.com/spf13/cobra"
)

var headshotsCmd = &cobra.Command{
	Use:   "headshots",
	Short: "Crop portraits to normalized headshots",
	Long: `Detect the face in every image of the input directory and crop it to a
square with the eyes on a fixed line, scaled by the eye-to-mouth distance.

Images without eye or mouth landmarks are skipped.`,
	RunE: runHeadshots,
}

func init() {
	rootCmd.AddCommand(headshotsCmd)

	headshotsCmd.Flags().String("in", "headshots", "Directory with source portraits")
	headshotsCmd.Flags().String("out", "processed", "Directory for cropped headshots")
	headshotsCmd.Flags().Int("size", 0, "Output edge in pixels (default from HEADSHOT_SIZE or 800)")
	headshotsCmd.Flags().Float64("multiplier", 0, "Crop edge / eye-to-mouth distance (default 6.1)")
	headshotsCmd.Flags().Float64("eye-line", 0, "Eye line from the top as a fraction of the edge (default 0.38)")
}

func applyHeadshotFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("size") {
		cfg.Headshot.Size = mustGetInt(cmd, "size")
	}
	if cmd.Flags().Changed("multiplier") {
		cfg.Headshot.Multiplier = mustGetFloat64(cmd, "multiplier")
	}
	if cmd.Flags().Changed("eye-line") {
		cfg.Headshot.EyeLine = mustGetFloat64(cmd, "eye-line")
	}
}

func runHeadshots(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyHeadshotFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	return headshotStage(cmd.Context(), cfg, newLogger(), mustGetString(cmd, "in"), mustGetString(cmd, "out"))
}

func headshotStage(ctx context.Context, cfg *config.Config, log *slog.Logger, inDir, outDir string) error {
	names, err := encoder.ListImages(inDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no images in %s", inDir)
	}

	bar := newProgressBar(len(names), "Cropping headshots", "photos")
	n := &headshot.Normalizer{
		Detector:    encoder.NewClient(cfg.Encoder.URL, cfg.Encoder.Model),
		Params:      headshot.Params{Multiplier: cfg.Headshot.Multiplier, EyeLine: cfg.Headshot.EyeLine},
		Size:        cfg.Headshot.Size,
		Concurrency: cfg.Encoder.Concurrency,
		Logger:      log,
		OnProgress:  func(done, total int) { _ = bar.Add(1) },
	}

	report, err := n.Run(ctx, inDir, outDir)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("crop headshots: %w", err)
	}

	fmt.Println()
	for _, r := range report.Written {
		fmt.Printf("[OK] Cropped %s (multiplier used: %.2f)\n", r.File, r.Crop.Multiplier)
	}
	for _, s := range report.Skipped {
		fmt.Printf("[SKIP] %s: %s\n", s.File, s.Reason)
	}
	fmt.Printf("Cropped %d of %d images into %s\n", len(report.Written), len(names), outDir)
	return nil
}
