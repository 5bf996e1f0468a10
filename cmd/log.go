package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagLogSearch string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List logged meals",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().StringVarP(&flagLogSearch, "search", "s", "", "Only meals whose name contains this text")
	rootCmd.AddCommand(logCmd)
}

func runLog(_ *cobra.Command, _ []string) error {
	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	entries, err := j.Entries()
	if err != nil {
		return err
	}
	if flagLogSearch != "" {
		entries = pipeline.FilterByName(entries, flagLogSearch)
	}

	if len(entries) == 0 {
		if flagLogSearch != "" {
			fmt.Printf("\n  No meals matching %q.\n\n", flagLogSearch)
		} else {
			fmt.Println("\n  No meals logged yet.")
		}
		return nil
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(entriesTable(entries, time.Now())))
	return nil
}

func entriesTable(entries []model.FoodEntry, now time.Time) cli.Table {
	rows := make([][]string, 0, len(entries)+2)
	for _, e := range entries {
		rows = append(rows, []string{
			cli.FormatLoggedAt(e.LoggedAt, now),
			cli.TruncateName(e.MealName, 32),
			cli.FormatKcal(e.Calories),
			cli.FormatGrams(e.Protein),
			cli.FormatGrams(e.Carbohydrates),
			cli.FormatGrams(e.Fat),
			e.Source,
		})
	}
	t := pipeline.Totals(entries)
	rows = append(rows, []string{"---"}, []string{
		"Total",
		fmt.Sprintf("%d meals", len(entries)),
		cli.FormatKcal(t.Calories),
		cli.FormatGrams(t.Protein),
		cli.FormatGrams(t.Carbohydrates),
		cli.FormatGrams(t.Fat),
		"",
	})
	return cli.Table{
		Headers: []string{"Time", "Meal", "Calories", "Protein", "Carbs", "Fat", "Source"},
		Rows:    rows,
	}
}
