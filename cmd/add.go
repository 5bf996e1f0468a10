package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/journal"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagAddName     string
	flagAddCalories float64
	flagAddProtein  float64
	flagAddCarbs    float64
	flagAddFat      float64
	flagAddSugar    float64
	flagAddPortion  float64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a meal by hand",
	Example: `  mealradar add --name "Greek yogurt" --calories 150 --protein 15 --carbs 8 --fat 4
  mealradar add --name "Pizza slice" --calories 285 --protein 12 --carbs 36 --fat 10 --portion 200`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddName, "name", "", "Meal name (required)")
	addCmd.Flags().Float64Var(&flagAddCalories, "calories", 0, "Calories (kcal) per 100% portion")
	addCmd.Flags().Float64Var(&flagAddProtein, "protein", 0, "Protein (g)")
	addCmd.Flags().Float64Var(&flagAddCarbs, "carbs", 0, "Carbohydrates (g)")
	addCmd.Flags().Float64Var(&flagAddFat, "fat", 0, "Fat (g)")
	addCmd.Flags().Float64Var(&flagAddSugar, "sugar", 0, "Sugar (g)")
	addPortionFlag(addCmd, &flagAddPortion)
	_ = addCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(addCmd)
}

func addPortionFlag(c *cobra.Command, p *float64) {
	c.Flags().Float64VarP(p, "portion", "p", pipeline.DefaultPortion,
		fmt.Sprintf("Portion in percent (%d-%d)", pipeline.MinPortion, pipeline.MaxPortion))
}

func validatePortion(p float64) error {
	if p < pipeline.MinPortion || p > pipeline.MaxPortion {
		return fmt.Errorf("portion must be between %d and %d, got %g", pipeline.MinPortion, pipeline.MaxPortion, p)
	}
	return nil
}

func runAdd(_ *cobra.Command, _ []string) error {
	est := model.Estimate{
		MealName:      strings.TrimSpace(flagAddName),
		Calories:      flagAddCalories,
		Protein:       flagAddProtein,
		Carbohydrates: flagAddCarbs,
		Fat:           flagAddFat,
		Sugar:         flagAddSugar,
	}
	if est.MealName == "" {
		return errors.New("--name must not be empty")
	}
	for _, v := range []float64{est.Calories, est.Protein, est.Carbohydrates, est.Fat, est.Sugar} {
		if err := model.CheckAmount(v); err != nil {
			return fmt.Errorf("nutrition values %w", err)
		}
	}
	if err := validatePortion(flagAddPortion); err != nil {
		return err
	}

	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	return logAndReport(j, est, flagAddPortion, model.SourceManual)
}

// logAndReport logs est and prints the entry plus the updated calorie
// progress.
func logAndReport(j *journal.Journal, est model.Estimate, portion float64, source string) error {
	entry, err := j.Log(est, portion, source)
	if err != nil {
		return fmt.Errorf("logging meal: %w", err)
	}
	dash, err := j.Dashboard()
	if err != nil {
		return err
	}

	fmt.Printf("  Logged %s (%s, %s)\n", entry.MealName, cli.FormatKcal(entry.Calories), cli.FormatPortion(portion))
	fmt.Printf("  Today: %s (%s)\n",
		cli.FormatProgress(dash.Totals.Calories, dash.Goals.Calories, false),
		cli.FormatPercent(dash.CaloriesProgress))
	return nil
}
