package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/morph"
	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Render frames into a motion-interpolated video with ffmpeg",
	RunE:  runVideo,
}

func init() {
	rootCmd.AddCommand(videoCmd)

	videoCmd.Flags().String("frames", "flow_ready_frames", "Directory with numbered frames")
	videoCmd.Flags().String("out", "morph_output.mp4", "Output video file")
	videoCmd.Flags().String("ffmpeg", "", "ffmpeg binary (default from FFMPEG_PATH or ffmpeg)")
	videoCmd.Flags().Int("input-fps", 0, "Frame rate of the numbered frames (default 1)")
	videoCmd.Flags().Int("output-fps", 0, "Interpolated output frame rate (default 30)")
}

func applyVideoFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("ffmpeg") {
		cfg.Video.FFmpegPath = mustGetString(cmd, "ffmpeg")
	}
	if cmd.Flags().Changed("input-fps") {
		cfg.Video.InputFPS = mustGetInt(cmd, "input-fps")
	}
	if cmd.Flags().Changed("output-fps") {
		cfg.Video.OutputFPS = mustGetInt(cmd, "output-fps")
	}
}

func runVideo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyVideoFlags(cmd, cfg)
	return videoStage(cmd.Context(), cfg, mustGetString(cmd, "frames"), mustGetString(cmd, "out"))
}

func videoStage(ctx context.Context, cfg *config.Config, framesDir, output string) error {
	v := morph.Video{
		FFmpegPath: cfg.Video.FFmpegPath,
		InputFPS:   cfg.Video.InputFPS,
		OutputFPS:  cfg.Video.OutputFPS,
	}
	fmt.Println("Running ffmpeg...")
	if err := v.Run(ctx, framesDir, output); err != nil {
		return err
	}
	fmt.Printf("Video created: %s\n", output)
	return nil
}
