// Package cmd implements the mealradar CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/model"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(flagConfigPath)
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", flagConfigPath)
	if _, err := os.Stat(flagConfigPath); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Food log:    %s\n", flagDBPath)
	fmt.Println()

	fmt.Println("  [Goals]")
	g := model.DefaultGoals()
	if cfg.Goals != nil {
		g = *cfg.Goals
	} else {
		fmt.Println("    (defaults)")
	}
	fmt.Printf("    Calories: %g kcal\n", g.Calories)
	fmt.Printf("    Protein:  %g g\n", g.Protein)
	fmt.Printf("    Carbs:    %g g\n", g.Carbohydrates)
	fmt.Printf("    Fat:      %g g\n", g.Fat)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Vision]")
	if key := config.GetVisionAPIKey(cfg); key != "" {
		fmt.Printf("    API key: %s\n", maskAPIKey(key))
	} else {
		fmt.Println("    API key: not configured (set GEMINI_API_KEY)")
	}
	fmt.Printf("    Model:   %s\n", cfg.Vision.Model)
	fmt.Println()

	fmt.Println("  [Food facts]")
	url := config.GetFoodFactsURL(cfg)
	if url == "" {
		url = foodfacts.DefaultBaseURL + " (default)"
	}
	fmt.Printf("    Base URL: %s\n", url)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	if cfg.Server.InboxDir != "" {
		fmt.Printf("    Inbox:   %s\n", cfg.Server.InboxDir)
	}
	if len(cfg.Server.AllowedOrigin) > 0 {
		fmt.Printf("    Origins: %v\n", cfg.Server.AllowedOrigin)
	}
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Portion step: %d%%\n", cfg.TUI.PortionStep)
	fmt.Printf("    Animate:      %v\n", cfg.TUI.Animate)
	fmt.Println()

	fmt.Println("  Run `mealradar setup` to reconfigure.")
	return nil
}
