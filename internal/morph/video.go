package morph

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// Video renders numbered frames into an H.264 file with ffmpeg's
// motion-compensated frame interpolation.
type Video struct {
	FFmpegPath string
	InputFPS   int
	OutputFPS  int
}

// DefaultVideo reads frames at 1 fps and interpolates up to 30 fps.
func DefaultVideo() Video {
	return Video{FFmpegPath: "ffmpeg", InputFPS: 1, OutputFPS: 30}
}

// Args returns the ffmpeg arguments for reading input, a printf frame pattern,
// and writing output.
func (v Video) Args(input, output string) []string {
	filter := fmt.Sprintf("minterpolate=fps=%d:mi_mode=mci:mc_mode=aobmc:me_mode=bidir:vsbmc=1", v.OutputFPS)
	return []string{
		"-y",
		"-framerate", fmt.Sprint(v.InputFPS),
		"-i", input,
		"-vf", filter,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		output,
	}
}

// Run renders the frames in framesDir to output.
func (v Video) Run(ctx context.Context, framesDir, output string) error {
	bin := v.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	if v.InputFPS <= 0 || v.OutputFPS <= 0 {
		return fmt.Errorf("invalid frame rates %d -> %d", v.InputFPS, v.OutputFPS)
	}

	cmd := exec.CommandContext(ctx, bin, v.Args(filepath.Join(framesDir, FramePattern), output)...) //nolint:gosec
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\n%s", err, string(out))
	}
	return nil
}
