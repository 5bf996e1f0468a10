package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/theirongolddev/mealradar/internal/cli"
	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/journal"
	"github.com/theirongolddev/mealradar/internal/store"
	"github.com/theirongolddev/mealradar/internal/tui/theme"
	"github.com/theirongolddev/mealradar/internal/vision"

	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagDBPath     string
	flagQuiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "mealradar",
	Short: "Daily nutrition tracker with a macro radar chart",
	Long: "Log meals from photos, barcodes, or by hand and see today's calories\n" +
		"and macros against your goals.",
	SilenceUsage: true,
	RunE:         runDashboard,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if err := config.LoadEnv(".env"); err != nil {
			note("  Could not read .env: %v\n", err)
		}
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", config.ConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", store.DefaultPath(), "Food log database path")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// note prints a progress line on stderr unless --quiet is set.
func note(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// loadConfig reads the config file and activates its theme. A broken file
// falls back to defaults with a note.
func loadConfig() config.Config {
	cfg, err := config.LoadFrom(flagConfigPath)
	if err != nil {
		note("  %v, using defaults\n", err)
	}
	theme.SetActive(cfg.Appearance.Theme)
	cli.ApplyTheme(theme.Active)
	return cfg
}

// openJournal opens the food log and binds it to the config file's goals
// and theme. The caller must call the returned close func.
func openJournal() (*journal.Journal, func(), error) {
	st, err := store.Open(flagDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening food log: %w", err)
	}
	j := journal.New(st, config.NewFilePrefs(flagConfigPath))
	return j, func() { _ = st.Close() }, nil
}

// newAnalyzer builds the Gemini client. It returns vision.ErrNoAPIKey when
// no key is configured.
func newAnalyzer(ctx context.Context, cfg config.Config) (*vision.Client, error) {
	return vision.NewClient(ctx, config.GetVisionAPIKey(cfg), cfg.Vision.Model)
}

func newFoodFacts(cfg config.Config) *foodfacts.Client {
	return foodfacts.NewClient(config.GetFoodFactsURL(cfg))
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
