package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "List color themes",
	RunE:  runTheme,
}

var themeSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Switch the color theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeSet,
}

func init() {
	themeCmd.AddCommand(themeSetCmd)
	rootCmd.AddCommand(themeCmd)
}

func runTheme(_ *cobra.Command, _ []string) error {
	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	current := j.Theme().Name
	rows := make([][]string, 0, len(theme.All))
	for _, t := range theme.All {
		marker := ""
		if t.Name == current {
			marker = "●"
		}
		rows = append(rows, []string{marker, t.Name, t.DisplayName, swatch(t)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Key", "Name", "kcal P C F"},
		Rows:    rows,
	}))
	fmt.Println("\n  Switch with `mealradar theme set <key>`.")
	return nil
}

func runThemeSet(_ *cobra.Command, args []string) error {
	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	t, ok, err := j.SetTheme(args[0])
	if err != nil {
		return err
	}
	if !ok {
		keys := make([]string, 0, len(theme.All))
		for _, th := range theme.All {
			keys = append(keys, th.Name)
		}
		return fmt.Errorf("unknown theme %q (keeping %s); choose one of: %s",
			args[0], j.Theme().Name, strings.Join(keys, ", "))
	}
	fmt.Printf("  Theme set to %s %s\n", t.DisplayName, swatch(t))
	return nil
}

func swatch(t theme.Theme) string {
	var b strings.Builder
	for _, c := range []lipgloss.Color{t.Calories, t.Protein, t.Carbohydrates, t.Fat} {
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render("██"))
	}
	return b.String()
}
