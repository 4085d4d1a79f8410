package cmd

import (
	"fmt"
	"runtime"

	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/spf13/cobra"
)

// Set by -ldflags at build time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and pipeline defaults",
	Run: func(cmd *cobra.Command, args []string) {
		d := config.Defaults()
		fmt.Printf("face-morph %s (%s, built %s, %s)\n", Version, CommitSHA, BuildDate, runtime.Version())
		fmt.Printf("  encoder model: %s at %s\n", d.Encoder.Model, d.Encoder.URL)
		fmt.Printf("  age weight:    %g\n", d.Chain.AgeWeight)
		fmt.Printf("  headshot:      %dpx, multiplier %g, eye line %g\n", d.Headshot.Size, d.Headshot.Multiplier, d.Headshot.EyeLine)
		fmt.Printf("  video:         %d still + %d blend frames, %d -> %d fps\n",
			d.Frames.Still, d.Frames.Blend, d.Video.InputFPS, d.Video.OutputFPS)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
