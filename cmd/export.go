package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/mealradar/internal/source"
	"github.com/theirongolddev/mealradar/internal/store"

	"github.com/spf13/cobra"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the food log as JSON lines",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Append meals from a JSON lines export",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
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

	out := os.Stdout
	if flagExportOut != "" && flagExportOut != "-" {
		f, err := os.OpenFile(flagExportOut, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen export path
		if err != nil {
			return fmt.Errorf("creating export: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := source.WriteEntries(out, entries); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	note("  Exported %d meals\n", len(entries))
	return nil
}

func runImport(_ *cobra.Command, args []string) error {
	res := source.ReadFile(args[0], time.Now())
	if res.Err != nil {
		return fmt.Errorf("reading %s: %w", args[0], res.Err)
	}

	loadConfig()
	j, closeLog, err := openJournal()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := j.Append(res.Entries...); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("%w; nothing was imported (was this file imported before?)", err)
		}
		return fmt.Errorf("importing: %w", err)
	}

	fmt.Printf("  Imported %d meals from %s\n", len(res.Entries), args[0])
	if res.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d lines could not be parsed and were skipped\n", res.ParseErrors)
	}
	return nil
}
