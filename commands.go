package main

import (
	"fmt"
	"os"
	"time"

	"doa-radar.klederson.com/internal/app"
	"doa-radar.klederson.com/internal/logging"
	"doa-radar.klederson.com/internal/timeutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	var (
		out    string
		frames int
		width  int
		height int
		at     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the radar headless and write a PNG",
		Long: `Samples the demo feed or a replay log at --at, runs the animation for
--frames frames and writes the final frame as a PNG image.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, colors, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := logging.Stderr(s.Log.Level); err != nil {
				return err
			}

			start := time.Now()
			points, err := app.SnapshotPoints(s, at, timeutil.NewMockClock(start))
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			if err := app.WriteSnapshot(f, app.SnapshotOptions{
				Settings: s,
				Colors:   colors,
				Points:   points,
				Width:    width,
				Height:   height,
				Frames:   frames,
				Start:    start,
			}); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"file": out, "points": len(points)}).Info("snapshot written")
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "radar.png", "Output PNG file")
	cmd.Flags().IntVar(&frames, "frames", 60, "Frames to animate before the snapshot")
	cmd.Flags().IntVar(&width, "width", 600, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 600, "Image height in pixels")
	cmd.Flags().DurationVar(&at, "at", 10*time.Second, "Offset into the source timeline")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			out, err := s.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
