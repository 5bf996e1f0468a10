package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/radar"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/spf13/cobra"
)

var flagDashboardNoChart bool

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"summary", "today"},
	Short:   "Today's totals, goal progress, and macro radar",
	RunE:    runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&flagDashboardNoChart, "no-chart", false, "Skip the radar chart")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
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
	dash := pipeline.Aggregate(entries, j.Goals())

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MEALRADAR  %s", time.Now().Format("Mon Jan 2"))))
	fmt.Println()

	if dash.Entries == 0 {
		fmt.Println("  No meals logged yet.")
		fmt.Println("  Try `mealradar analyze lunch.jpg --log` or `mealradar add --name ...`.")
		fmt.Println()
	}

	fmt.Print(cli.RenderTable(dashboardTable(dash)))
	fmt.Println()

	t := theme.Active
	g := dash.Goals
	fmt.Println(cli.RenderMacroBar("Calories", dash.Totals.Calories, g.Calories, false, t.Calories, 9, 28))
	fmt.Println(cli.RenderMacroBar("Protein", dash.Totals.Protein, g.Protein, true, t.Protein, 9, 28))
	fmt.Println(cli.RenderMacroBar("Carbs", dash.Totals.Carbohydrates, g.Carbohydrates, true, t.Carbohydrates, 9, 28))
	fmt.Println(cli.RenderMacroBar("Fat", dash.Totals.Fat, g.Fat, true, t.Fat, 9, 28))

	if !flagDashboardNoChart {
		chart := cli.RenderRadar(radar.Input{
			Data:    dash.MacroSeries,
			Goals:   dash.GoalSeries,
			Palette: t.Palette(),
		}, 48, 14, string(t.Background))
		if chart != "" {
			fmt.Println()
			fmt.Println(chart)
		}
	}
	fmt.Println()

	if stats := pipeline.AggregateSources(entries); len(stats) > 1 {
		rows := make([][]string, 0, len(stats))
		for _, s := range stats {
			rows = append(rows, []string{s.Source, cli.FormatNumber(int64(s.Entries)), cli.FormatKcal(s.Calories), cli.FormatPercent(s.SharePercent)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By source",
			Headers: []string{"Source", "Meals", "Calories", "Share"},
			Rows:    rows,
		}))
		fmt.Println()
	}
	return nil
}

func dashboardTable(d model.Dashboard) cli.Table {
	rem := pipeline.Remaining(d.Totals, d.Goals)
	return cli.Table{
		Headers: []string{"Nutrient", "Eaten", "Goal", "Left", "Progress"},
		Rows: [][]string{
			{"Calories", cli.FormatKcal(d.Totals.Calories), cli.FormatKcal(d.Goals.Calories), cli.FormatKcal(rem.Calories), cli.FormatPercent(d.CaloriesProgress)},
			{"Protein", cli.FormatGrams(d.Totals.Protein), cli.FormatGrams(d.Goals.Protein), cli.FormatGrams(rem.Protein), cli.FormatPercent(d.MacroProgress.Protein)},
			{"Carbs", cli.FormatGrams(d.Totals.Carbohydrates), cli.FormatGrams(d.Goals.Carbohydrates), cli.FormatGrams(rem.Carbohydrates), cli.FormatPercent(d.MacroProgress.Carbohydrates)},
			{"Fat", cli.FormatGrams(d.Totals.Fat), cli.FormatGrams(d.Goals.Fat), cli.FormatGrams(rem.Fat), cli.FormatPercent(d.MacroProgress.Fat)},
			{"---"},
			{"Sugar", cli.FormatGrams(d.Totals.Sugar), "-", "-", "-"},
			{"Meals", cli.FormatNumber(int64(d.Entries)), "", "", ""},
		},
	}
}
