package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

var morphCmd = &cobra.Command{
	Use:   "morph",
	Short: "Run every stage: headshots, order, frames and video",
	Long: `Run the whole pipeline inside a work directory:

  <work>/processed                  cropped headshots
  <work>/progressive_similar_faces  ordered copies
  <work>/flow_ready_frames          numbered frames
  <work>/morph_output.mp4           the video`,
	RunE: runMorph,
}

func init() {
	rootCmd.AddCommand(morphCmd)

	morphCmd.Flags().String("reference", "", "Reference photo the chain starts from (required)")
	morphCmd.Flags().String("in", "headshots", "Directory with source portraits")
	morphCmd.Flags().String("work", ".", "Directory for intermediate results and the video")
	morphCmd.Flags().Bool("skip-headshots", false, "Use the input photos as they are, without cropping")
	morphCmd.Flags().Bool("save-run", false, "Store the ordering in the database")
	morphCmd.Flags().Float64("age-weight", 0, "Penalty per passed-over round (default 0.015)")
	morphCmd.Flags().Int("workers", 0, "Parallel distance scan workers")
	morphCmd.Flags().Int("still", 0, "Identical frames per photo (default 2)")
	morphCmd.Flags().Int("blend", 0, "Cross-fade frames between photos (default 2)")
	morphCmd.Flags().String("ffmpeg", "", "ffmpeg binary")
	morphCmd.Flags().Int("input-fps", 0, "Frame rate of the numbered frames (default 1)")
	morphCmd.Flags().Int("output-fps", 0, "Interpolated output frame rate (default 30)")
	_ = morphCmd.MarkFlagRequired("reference")
}

func runMorph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOrderFlags(cmd, cfg)
	applyFrameFlags(cmd, cfg)
	applyVideoFlags(cmd, cfg)

	ctx := cmd.Context()
	log := newLogger()
	work := mustGetString(cmd, "work")
	processed := filepath.Join(work, "processed")
	ordered := filepath.Join(work, "progressive_similar_faces")
	frames := filepath.Join(work, "flow_ready_frames")

	headshots := mustGetString(cmd, "in")
	if mustGetBool(cmd, "skip-headshots") {
		processed = headshots
	} else if err := headshotStage(ctx, cfg, log, headshots, processed); err != nil {
		return err
	}

	_, err = orderStage(ctx, cfg, log, orderParams{
		reference: mustGetString(cmd, "reference"),
		inDir:     processed,
		outDir:    ordered,
		saveRun:   mustGetBool(cmd, "save-run"),
	})
	if err != nil {
		return err
	}

	if err := framesStage(ctx, cfg, ordered, frames); err != nil {
		return err
	}
	return videoStage(ctx, cfg, frames, filepath.Join(work, "morph_output.mp4"))
}
