package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/encoder"
	"github.com/kozaktomas/face-morph/internal/morph"
	"github.com/spf13/cobra"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Generate still and cross-faded frames from ordered photos",
	Long: `Write numbered frames for the ordered photos: a few identical frames per
photo followed by short cross-fades into the next one. The frames are the input
for ffmpeg motion interpolation (see the video command).`,
	RunE: runFrames,
}

func init() {
	rootCmd.AddCommand(framesCmd)

	framesCmd.Flags().String("in", "progressive_similar_faces", "Directory with ordered photos")
	framesCmd.Flags().String("out", "flow_ready_frames", "Directory for numbered frames")
	framesCmd.Flags().Int("still", 0, "Identical frames per photo (default from FRAMES_STILL or 2)")
	framesCmd.Flags().Int("blend", 0, "Cross-fade frames between photos (default from FRAMES_BLEND or 2)")
}

func applyFrameFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("still") {
		cfg.Frames.Still = mustGetInt(cmd, "still")
	}
	if cmd.Flags().Changed("blend") {
		cfg.Frames.Blend = mustGetInt(cmd, "blend")
	}
}

func runFrames(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFrameFlags(cmd, cfg)
	return framesStage(cmd.Context(), cfg, mustGetString(cmd, "in"), mustGetString(cmd, "out"))
}

func framesStage(ctx context.Context, cfg *config.Config, inDir, outDir string) error {
	names, err := encoder.ListImages(inDir)
	if err != nil {
		return err
	}
	opts := morph.FrameOptions{Still: cfg.Frames.Still, Blend: cfg.Frames.Blend}
	bar := newProgressBar(morph.FrameCount(len(names), opts), "Generating frames", "frames")
	opts.OnFrame = func(int) { _ = bar.Add(1) }

	n, err := morph.GenerateFrames(ctx, inDir, outDir, opts)
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("generate frames: %w", err)
	}
	fmt.Printf("Frames generated: %d\n", n)
	return nil
}
