// Package theme defines the color themes shared by the radar chart and the
// terminal dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mealradar/internal/model"
)

// Theme defines the nutrient colors and the UI color roles.
type Theme struct {
	Name        string // persisted key
	DisplayName string

	// Nutrient colors
	Calories      lipgloss.Color
	Protein       lipgloss.Color
	Carbohydrates lipgloss.Color
	Fat           lipgloss.Color
	Sugar         lipgloss.Color

	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Highlighted surface (active tab, selected row)
	Border       lipgloss.Color // Subtle borders
	BorderBright lipgloss.Color // Prominent borders (cards, focus)
	TextDim      lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted    lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary  lipgloss.Color // Primary content text
	Accent       lipgloss.Color // Primary accent (links, active states)
	Green        lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Yellow       lipgloss.Color
}

// Palette returns the nutrient colors as plain hex strings for renderers
// that do not depend on lipgloss.
func (t Theme) Palette() model.Palette {
	return model.Palette{
		Calories:      string(t.Calories),
		Protein:       string(t.Protein),
		Carbohydrates: string(t.Carbohydrates),
		Fat:           string(t.Fat),
		Sugar:         string(t.Sugar),
	}
}

// DefaultName is the key of the default theme.
const DefaultName = "sky"

// Active is the currently selected theme.
var Active = Sky

// Sky is the default theme - cool blue on slate.
var Sky = Theme{
	Name:          "sky",
	DisplayName:   "Default Sky",
	Calories:      lipgloss.Color("#38bdf8"),
	Protein:       lipgloss.Color("#f0abfc"),
	Carbohydrates: lipgloss.Color("#a3e635"),
	Fat:           lipgloss.Color("#facc15"),
	Sugar:         lipgloss.Color("#f87171"),
	Background:    lipgloss.Color("#0f172a"),
	Surface:       lipgloss.Color("#1e293b"),
	SurfaceHover:  lipgloss.Color("#334155"),
	Border:        lipgloss.Color("#334155"),
	BorderBright:  lipgloss.Color("#475569"),
	TextDim:       lipgloss.Color("#475569"),
	TextMuted:     lipgloss.Color("#94a3b8"),
	TextPrimary:   lipgloss.Color("#f1f5f9"),
	Accent:        lipgloss.Color("#38bdf8"),
	Green:         lipgloss.Color("#4ade80"),
	Orange:        lipgloss.Color("#fb923c"),
	Red:           lipgloss.Color("#f87171"),
	Yellow:        lipgloss.Color("#facc15"),
}

// Sunset is a warm orange and pink theme.
var Sunset = Theme{
	Name:          "sunset",
	DisplayName:   "Sunset",
	Calories:      lipgloss.Color("#fb923c"),
	Protein:       lipgloss.Color("#f472b6"),
	Carbohydrates: lipgloss.Color("#c084fc"),
	Fat:           lipgloss.Color("#fbbf24"),
	Sugar:         lipgloss.Color("#ef4444"),
	Background:    lipgloss.Color("#1c1017"),
	Surface:       lipgloss.Color("#2a1a22"),
	SurfaceHover:  lipgloss.Color("#3b2430"),
	Border:        lipgloss.Color("#3b2430"),
	BorderBright:  lipgloss.Color("#5b3a4a"),
	TextDim:       lipgloss.Color("#5b3a4a"),
	TextMuted:     lipgloss.Color("#c4a4b0"),
	TextPrimary:   lipgloss.Color("#fdf2f8"),
	Accent:        lipgloss.Color("#fb923c"),
	Green:         lipgloss.Color("#86efac"),
	Orange:        lipgloss.Color("#fb923c"),
	Red:           lipgloss.Color("#ef4444"),
	Yellow:        lipgloss.Color("#fbbf24"),
}

// Forest is a calm green theme.
var Forest = Theme{
	Name:          "forest",
	DisplayName:   "Forest",
	Calories:      lipgloss.Color("#4ade80"),
	Protein:       lipgloss.Color("#34d399"),
	Carbohydrates: lipgloss.Color("#2dd4bf"),
	Fat:           lipgloss.Color("#a3e635"),
	Sugar:         lipgloss.Color("#f59e0b"),
	Background:    lipgloss.Color("#0c1a14"),
	Surface:       lipgloss.Color("#14271e"),
	SurfaceHover:  lipgloss.Color("#1f3a2c"),
	Border:        lipgloss.Color("#1f3a2c"),
	BorderBright:  lipgloss.Color("#2f5540"),
	TextDim:       lipgloss.Color("#2f5540"),
	TextMuted:     lipgloss.Color("#9cbfa9"),
	TextPrimary:   lipgloss.Color("#ecfdf5"),
	Accent:        lipgloss.Color("#4ade80"),
	Green:         lipgloss.Color("#4ade80"),
	Orange:        lipgloss.Color("#f59e0b"),
	Red:           lipgloss.Color("#f87171"),
	Yellow:        lipgloss.Color("#a3e635"),
}

// Neon is a high-contrast purple and cyan theme.
var Neon = Theme{
	Name:          "neon",
	DisplayName:   "Neon",
	Calories:      lipgloss.Color("#a78bfa"),
	Protein:       lipgloss.Color("#ec4899"),
	Carbohydrates: lipgloss.Color("#22d3ee"),
	Fat:           lipgloss.Color("#eab308"),
	Sugar:         lipgloss.Color("#ef4444"),
	Background:    lipgloss.Color("#0b0616"),
	Surface:       lipgloss.Color("#170e2b"),
	SurfaceHover:  lipgloss.Color("#251845"),
	Border:        lipgloss.Color("#251845"),
	BorderBright:  lipgloss.Color("#3b2a6b"),
	TextDim:       lipgloss.Color("#3b2a6b"),
	TextMuted:     lipgloss.Color("#b3a6d9"),
	TextPrimary:   lipgloss.Color("#f5f3ff"),
	Accent:        lipgloss.Color("#a78bfa"),
	Green:         lipgloss.Color("#22d3ee"),
	Orange:        lipgloss.Color("#f472b6"),
	Red:           lipgloss.Color("#ef4444"),
	Yellow:        lipgloss.Color("#eab308"),
}

// All available themes.
var All = []Theme{Sky, Sunset, Forest, Neon}

// Lookup returns the theme with the given key.
func Lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ByName returns a theme by its key, defaulting to Sky.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return Sky
}

// SetActive sets the active theme by key. Unknown keys are ignored and
// leave the active theme unchanged.
func SetActive(name string) bool {
	t, ok := Lookup(name)
	if !ok {
		return false
	}
	Active = t
	return true
}
