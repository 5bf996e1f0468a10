package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagGoalCalories float64
	flagGoalProtein  float64
	flagGoalCarbs    float64
	flagGoalFat      float64
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show daily goals",
	RunE:  runGoals,
}

var goalsSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Change daily goals",
	Example: "  mealradar goals set --calories 2000 --protein 140",
	RunE:    runGoalsSet,
}

var goalsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default goals",
	RunE:  runGoalsReset,
}

func init() {
	goalsSetCmd.Flags().Float64Var(&flagGoalCalories, "calories", 0, "Daily calories (kcal)")
	goalsSetCmd.Flags().Float64Var(&flagGoalProtein, "protein", 0, "Daily protein (g)")
	goalsSetCmd.Flags().Float64Var(&flagGoalCarbs, "carbs", 0, "Daily carbohydrates (g)")
	goalsSetCmd.Flags().Float64Var(&flagGoalFat, "fat", 0, "Daily fat (g)")

	goalsCmd.AddCommand(goalsSetCmd)
	goalsCmd.AddCommand(goalsResetCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(_ *cobra.Command, _ []string) error {
	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	printGoals(j.Goals())
	return nil
}

func runGoalsSet(c *cobra.Command, _ []string) error {
	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	// Only flags that were given change; the rest keep their saved value.
	g := j.Goals()
	flags := c.Flags()
	changed := false
	if flags.Changed("calories") {
		g.Calories, changed = flagGoalCalories, true
	}
	if flags.Changed("protein") {
		g.Protein, changed = flagGoalProtein, true
	}
	if flags.Changed("carbs") {
		g.Carbohydrates, changed = flagGoalCarbs, true
	}
	if flags.Changed("fat") {
		g.Fat, changed = flagGoalFat, true
	}
	if !changed {
		return errors.New("nothing to set: pass --calories, --protein, --carbs, or --fat")
	}

	if err := j.SetGoals(g); err != nil {
		return err
	}
	fmt.Println("  Saved.")
	printGoals(j.Goals())
	return nil
}

func runGoalsReset(_ *cobra.Command, _ []string) error {
	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := j.SetGoals(model.DefaultGoals()); err != nil {
		return err
	}
	fmt.Println("  Restored default goals.")
	printGoals(j.Goals())
	return nil
}

func printGoals(g model.DailyGoals) {
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Goal", "Daily target"},
		Rows: [][]string{
			{"Calories", cli.FormatKcal(g.Calories)},
			{"Protein", cli.FormatGrams(g.Protein)},
			{"Carbs", cli.FormatGrams(g.Carbohydrates)},
			{"Fat", cli.FormatGrams(g.Fat)},
		},
	}))
}
