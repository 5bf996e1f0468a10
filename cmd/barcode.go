package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagBarcodePortion float64
	flagBarcodeLog     bool
)

var barcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a packaged food on Open Food Facts",
	Long:  "Look up a packaged food by EAN/UPC barcode. Values are per 100 g; --portion 250 means 250 g.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBarcode,
}

func init() {
	addPortionFlag(barcodeCmd, &flagBarcodePortion)
	barcodeCmd.Flags().BoolVar(&flagBarcodeLog, "log", false, "Log the product")
	rootCmd.AddCommand(barcodeCmd)
}

func runBarcode(_ *cobra.Command, args []string) error {
	code := args[0]
	if err := validatePortion(flagBarcodePortion); err != nil {
		return err
	}

	cfg := loadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	note("  Looking up %s...\n", code)
	est, err := newFoodFacts(cfg).Lookup(ctx, code)
	if err != nil {
		return errors.New(foodfacts.UserMessage(code, err))
	}

	scaled := pipeline.ScaleEstimate(est, flagBarcodePortion)
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%s  (%s)", est.MealName, cli.FormatPortion(flagBarcodePortion)),
		Headers: []string{"Nutrient", "Per 100 g", "This portion"},
		Rows: [][]string{
			{"Calories", cli.FormatKcal(est.Calories), cli.FormatKcal(scaled.Calories)},
			{"Protein", cli.FormatGrams(est.Protein), cli.FormatGrams(scaled.Protein)},
			{"Carbs", cli.FormatGrams(est.Carbohydrates), cli.FormatGrams(scaled.Carbohydrates)},
			{"Fat", cli.FormatGrams(est.Fat), cli.FormatGrams(scaled.Fat)},
			{"Sugar", cli.FormatGrams(est.Sugar), cli.FormatGrams(scaled.Sugar)},
		},
	}))

	if !flagBarcodeLog {
		fmt.Println("\n  Add --log to record this product.")
		return nil
	}

	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()
	fmt.Println()
	return logAndReport(j, est, flagBarcodePortion, model.SourceBarcode)
}
