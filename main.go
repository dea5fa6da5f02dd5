package main

import (
	"context"
	"fmt"
	"os"

	"doa-radar.klederson.com/internal/app"
	"doa-radar.klederson.com/internal/config"
	"doa-radar.klederson.com/internal/logging"
	"doa-radar.klederson.com/internal/palette"
	"doa-radar.klederson.com/internal/timeutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	rootCmd := &cobra.Command{
		Use:   "doa-radar",
		Short: "DOA Radar - Terminal log-scale radar for sound source directions",
		Long: `DOA Radar plots detected sound sources by direction of arrival and distance
on an animated, log-scale polar radar (1m at the center, 100km at the rim).

Sources come from a synthetic demo feed, a recorded JSONL track log
(--source replay --replay FILE) or a live Bluetooth LE scan (--source ble,
requires sudo or CAP_NET_ADMIN).`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./doa-radar.yaml or ~/.config/doa-radar/doa-radar.yaml)")
	addSettingsFlags(rootCmd)
	rootCmd.AddCommand(newSnapshotCmd(), newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addSettingsFlags registers the flags that override configuration keys.
func addSettingsFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("source", config.SourceDemo, "Point source: demo, replay or ble")
	f.String("replay", "", "JSONL track log to replay")
	f.Float64("speed", 1, "Replay speed factor")
	f.Bool("loop", false, "Restart the replay when it ends")
	f.Float64("min-distance", config.MinDistance, "Distance at the radar center in meters")
	f.Float64("max-distance", config.MaxDistance, "Distance at the radar rim in meters")
	f.Int("fps", config.TargetFPS, "Frames per second while running")
	f.Bool("ripples", config.RippleEnabled, "Draw expanding ripples")
	f.Bool("paused", false, "Start with the animation paused")
	f.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	f.String("log-file", "", "Write logs to this file (discarded otherwise)")
}

func loadSettings(cmd *cobra.Command) (config.Settings, *palette.Resolver, error) {
	s, err := config.Load(flagConfig, cmd.Flags())
	if err != nil {
		return s, nil, err
	}
	colors, err := palette.New(s.Colors)
	if err != nil {
		return s, nil, err
	}
	return s, colors, nil
}

func run(cmd *cobra.Command, args []string) error {
	s, colors, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	closer, err := logging.Setup(s.Log.Level, s.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	clock := timeutil.RealClock{}
	source, err := app.NewSource(s, clock)
	if err != nil {
		return err
	}

	model := app.New(app.Config{
		Settings: s,
		Colors:   colors,
		Source:   source,
		Clock:    clock,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithFPS(s.Radar.FPS),
	)

	// Start the source with reference to the tea program
	if err := model.StartSource(context.Background(), p); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		if s.Source == config.SourceBLE {
			fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
			fmt.Fprintln(os.Stderr, "Try one of:")
			fmt.Fprintln(os.Stderr, "  sudo ./doa-radar --source ble")
			fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./doa-radar")
			fmt.Fprintln(os.Stderr, "  ./doa-radar    (demo feed, no hardware needed)")
		}
		return err
	}
	defer model.StopSource()

	logrus.WithFields(logrus.Fields{"source": source.Name(), "fps": s.Radar.FPS}).Info("radar started")
	_, err = p.Run()
	return err
}
