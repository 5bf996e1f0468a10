package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the whole food log",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, _ []string) error {
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
	if len(entries) == 0 {
		fmt.Println("  The log is already empty.")
		return nil
	}

	if !flagResetYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Discard %d logged meals?", len(entries))).
			Description("This cannot be undone. Use `mealradar export` first to keep a copy.").
			Affirmative("Discard").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation: %w", err)
		}
		if !confirmed {
			fmt.Println("  Kept the log.")
			return nil
		}
	}

	if err := j.Reset(); err != nil {
		return fmt.Errorf("discarding log: %w", err)
	}
	fmt.Printf("  Discarded %d meals.\n", len(entries))
	return nil
}
