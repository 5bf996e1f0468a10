package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/store"
	"github.com/theirongolddev/mealradar/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	fmt.Println()
	fmt.Println("  Welcome to mealradar!")
	fmt.Println()
	if st, err := store.Open(flagDBPath); err == nil {
		if n, err := st.EntryCount(); err == nil && n > 0 {
			fmt.Printf("  Found %d logged meals in %s\n\n", n, flagDBPath)
		}
		_ = st.Close()
	}
	if key := config.GetVisionAPIKey(cfg); key != "" {
		fmt.Printf("  Current Gemini key: %s\n\n", maskAPIKey(key))
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}
	if err := vals.Apply(&cfg); err != nil {
		return err
	}

	if err := config.SaveTo(flagConfigPath, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfigPath)
	fmt.Println("  Run `mealradar setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
