package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/mealradar/internal/tui"
	"github.com/theirongolddev/mealradar/internal/vision"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	cfg := loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	var analyzer vision.Analyzer
	client, err := newAnalyzer(ctx, cfg)
	switch {
	case err == nil:
		defer func() { _ = client.Close() }()
		analyzer = client
	case !errors.Is(err, vision.ErrNoAPIKey):
		note("  Photo analysis unavailable: %v\n", err)
	}

	_, statErr := os.Stat(flagConfigPath)
	app := tui.NewApp(tui.Options{
		Journal:     j,
		Analyzer:    analyzer,
		FoodFacts:   newFoodFacts(cfg),
		ConfigPath:  flagConfigPath,
		DBPath:      flagDBPath,
		PortionStep: cfg.TUI.PortionStep,
		Animate:     cfg.TUI.Animate,
		NeedSetup:   statErr != nil,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
