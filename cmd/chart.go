package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/mealradar/internal/radar"

	"github.com/spf13/cobra"
)

var (
	flagChartOut     string
	flagChartWidth   int
	flagChartHeight  int
	flagChartAnimate bool
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Write today's macro radar as SVG",
	Example: `  mealradar chart --out radar.svg
  mealradar chart --width 600 --height 400 --animate > radar.svg`,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&flagChartOut, "out", "o", "", "Output file (default stdout)")
	chartCmd.Flags().IntVar(&flagChartWidth, "width", 400, "Width in pixels")
	chartCmd.Flags().IntVar(&flagChartHeight, "height", 250, "Height in pixels")
	chartCmd.Flags().BoolVar(&flagChartAnimate, "animate", false, "Include the entrance animation")
	rootCmd.AddCommand(chartCmd)
}

func runChart(_ *cobra.Command, _ []string) error {
	if flagChartWidth <= 0 || flagChartHeight <= 0 {
		return errors.New("width and height must be positive")
	}

	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	dash, err := j.Dashboard()
	if err != nil {
		return err
	}
	svg := radar.RenderSVG(float64(flagChartWidth), float64(flagChartHeight), radar.Input{
		Data:    dash.MacroSeries,
		Goals:   dash.GoalSeries,
		Palette: j.Theme().Palette(),
	}, flagChartAnimate)

	if flagChartOut == "" || flagChartOut == "-" {
		_, err := os.Stdout.Write(svg)
		return err
	}
	if err := os.WriteFile(flagChartOut, svg, 0o644); err != nil { //nolint:gosec // chart output is meant to be shared
		return fmt.Errorf("writing chart: %w", err)
	}
	note("  Wrote %s\n", flagChartOut)
	return nil
}
