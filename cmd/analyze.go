package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/source"

	"github.com/spf13/cobra"
)

var (
	flagAnalyzePortion float64
	flagAnalyzeLog     bool
	flagAnalyzeDir     string
	flagAnalyzeNoCache bool
	flagAnalyzeTimeout time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image...]",
	Short: "Estimate nutrition from meal photos with Gemini",
	Example: `  mealradar analyze lunch.jpg
  mealradar analyze dinner.png --portion 50 --log
  mealradar analyze --dir ~/Pictures/meals --log`,
	RunE: runAnalyze,
}

func init() {
	addPortionFlag(analyzeCmd, &flagAnalyzePortion)
	analyzeCmd.Flags().BoolVar(&flagAnalyzeLog, "log", false, "Log each estimate")
	analyzeCmd.Flags().StringVar(&flagAnalyzeDir, "dir", "", "Analyze every image in a directory")
	analyzeCmd.Flags().BoolVar(&flagAnalyzeNoCache, "no-cache", false, "Re-analyze images even if unchanged")
	analyzeCmd.Flags().DurationVar(&flagAnalyzeTimeout, "timeout", 5*time.Minute, "Overall time limit")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	switch {
	case len(args) == 0 && flagAnalyzeDir == "":
		return errors.New("give one or more image paths or --dir")
	case len(args) > 0 && flagAnalyzeDir != "":
		return errors.New("give image paths or --dir, not both")
	}
	if err := validatePortion(flagAnalyzePortion); err != nil {
		return err
	}

	images, err := collectImages(args)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), flagAnalyzeTimeout)
	defer cancel()

	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = analyzer.Close() }()

	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	progressFn := func(current, total int) {
		note("\r  Analyzing %s", cli.RenderProgressBar(current, total, 24))
	}

	var result *pipeline.BatchResult
	if flagAnalyzeDir != "" {
		dir := expandPath(flagAnalyzeDir)
		note("  Scanning %s...\n", dir)
		if flagAnalyzeNoCache {
			result, err = pipeline.AnalyzeDir(ctx, dir, analyzer, progressFn)
		} else {
			result, err = pipeline.AnalyzeDirWithCache(ctx, dir, analyzer, j.Store(), progressFn)
		}
		if err != nil {
			return err
		}
	} else {
		note("  Analyzing %d images...\n", len(images))
		if flagAnalyzeNoCache {
			result = pipeline.AnalyzeImages(ctx, images, analyzer, progressFn)
		} else {
			result, err = pipeline.AnalyzeImagesWithCache(ctx, images, analyzer, j.Store(), progressFn)
			if err != nil {
				note("  Cache unavailable (%v), analyzing everything\n", err)
				result = pipeline.AnalyzeImages(ctx, images, analyzer, progressFn)
			}
		}
	}
	if result.TotalImages == 0 {
		fmt.Println("  No images found.")
		return nil
	}
	note("\r  Analyzed %d, %d from cache, %d failed%s\n",
		result.Analyzed, result.CacheHits, result.Failed, strings.Repeat(" ", 24))

	rows := make([][]string, 0, len(result.Results))
	var logged int
	for _, r := range result.Results {
		if r.Err != nil {
			rows = append(rows, []string{r.Image.Name, "error: " + cli.TruncateName(r.Err.Error(), 40), "", "", "", ""})
			continue
		}
		scaled := pipeline.ScaleEstimate(r.Estimate, flagAnalyzePortion)
		rows = append(rows, []string{
			r.Image.Name,
			cli.TruncateName(scaled.MealName, 28),
			cli.FormatKcal(scaled.Calories),
			cli.FormatGrams(scaled.Protein),
			cli.FormatGrams(scaled.Carbohydrates),
			cli.FormatGrams(scaled.Fat),
		})
		if flagAnalyzeLog {
			if _, err := j.Log(r.Estimate, flagAnalyzePortion, model.SourceVision); err != nil {
				return fmt.Errorf("logging %s: %w", r.Image.Name, err)
			}
			logged++
		}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   cli.FormatPortion(flagAnalyzePortion),
		Headers: []string{"Image", "Meal", "Calories", "Protein", "Carbs", "Fat"},
		Rows:    rows,
	}))

	if flagAnalyzeLog {
		fmt.Printf("\n  Logged %d meals.\n", logged)
	} else if len(result.Estimates()) > 0 {
		fmt.Println("\n  Add --log to record these meals.")
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d images could not be analyzed", result.Failed, result.TotalImages)
	}
	return nil
}

// collectImages resolves explicit image paths.
func collectImages(paths []string) ([]source.DiscoveredImage, error) {
	images := make([]source.DiscoveredImage, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		mime := source.MimeType(p)
		if mime == "" || info.IsDir() {
			return nil, fmt.Errorf("%s is not a supported image (jpg, png, webp, heic)", p)
		}
		images = append(images, source.DiscoveredImage{
			Path:     p,
			Name:     filepath.Base(p),
			MimeType: mime,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	return images, nil
}
