// Package tui provides the interactive Bubble Tea dashboard for mealradar.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/journal"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/radar"
	"github.com/theirongolddev/mealradar/internal/tui/components"
	"github.com/theirongolddev/mealradar/internal/tui/theme"
	"github.com/theirongolddev/mealradar/internal/vision"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the app.
type Options struct {
	Journal     *journal.Journal
	Analyzer    vision.Analyzer // nil when no API key is configured
	FoodFacts   *foodfacts.Client
	ConfigPath  string
	DBPath      string
	PortionStep int
	Animate     bool
	NeedSetup   bool
}

// LogLoadedMsg is sent when the food log has been read.
type LogLoadedMsg struct {
	Entries []model.FoodEntry
	Err     error
}

// EstimateMsg carries the result of a photo analysis or barcode lookup.
type EstimateMsg struct {
	Estimate model.Estimate
	Source   string
	Query    string
	Err      error
}

// LoggedMsg reports that an entry was appended to the log.
type LoggedMsg struct {
	Entry model.FoodEntry
	Err   error
}

// ResetMsg reports that the log was discarded.
type ResetMsg struct {
	Err error
}

type radarFrameMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	journal     *journal.Journal
	analyzer    vision.Analyzer
	foodfacts   *foodfacts.Client
	configPath  string
	dbPath      string
	portionStep float64
	animate     bool

	// Data
	entries []model.FoodEntry
	goals   model.DailyGoals
	dash    model.Dashboard
	loaded  bool

	// Radar chart; the pointer survives value copies of App
	radar        *components.RadarView
	radarTicking bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	banner    string // last error, dismissed with esc

	// Per-tab state
	logState logState
	analysis analysisState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

// Tab indexes, matching components.Tabs.
const (
	tabDashboard = iota
	tabLog
	tabAnalysis
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5

	radarRows = 14

	visionTimeout  = 60 * time.Second
	barcodeTimeout = 15 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	step := float64(opts.PortionStep)
	if step <= 0 {
		step = 5
	}

	return App{
		journal:     opts.Journal,
		analyzer:    opts.Analyzer,
		foodfacts:   opts.FoodFacts,
		configPath:  opts.ConfigPath,
		dbPath:      opts.DBPath,
		portionStep: step,
		animate:     opts.Animate,
		needSetup:   opts.NeedSetup,
		radar:       components.NewRadarView(opts.Animate),
		analysis:    newAnalysisState(),
		spinner:     sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadLogCmd(a.journal),
		a.spinner.Tick,
	)
}

// recompute re-aggregates the log and pushes the new series to the radar.
func (a *App) recompute() {
	a.goals = a.journal.Goals()
	a.dash = pipeline.Aggregate(a.entries, a.goals)
	a.radar.SetData(a.dash.MacroSeries, a.dash.GoalSeries, theme.Active.Palette())

	visible := a.visibleEntries()
	if a.logState.cursor >= len(visible) {
		a.logState.cursor = len(visible) - 1
	}
	if a.logState.cursor < 0 {
		a.logState.cursor = 0
	}
}

// startRadarTicks schedules animation frames while the entrance
// animation runs. At most one tick is in flight.
func (a *App) startRadarTicks() tea.Cmd {
	if a.radarTicking || !a.radar.Animating() {
		return nil
	}
	a.radarTicking = true
	return radarFrameCmd()
}

func (a App) layoutRadar() {
	left, _ := a.dashboardWidths(a.contentWidth())
	a.radar.SetSize(components.CardInnerWidth(left), radarRows)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Forward to setup form if active
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.width >= minTerminalWidth {
			a.layoutRadar()
		}
		return a, a.startRadarTicks()

	case radarFrameMsg:
		if a.radar.Tick() {
			return a, radarFrameCmd()
		}
		a.radarTicking = false
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabLog && a.logState.cursor > 0 {
				a.logState.cursor--
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == tabLog && a.logState.cursor < len(a.visibleEntries())-1 {
				a.logState.cursor++
			}
			return a, nil

		case tea.MouseButtonLeft:
			// Tab bar is the first line
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case LogLoadedMsg:
		a.loaded = true
		if msg.Err != nil {
			a.banner = msg.Err.Error()
		} else {
			a.entries = msg.Entries
		}
		a.recompute()

		cmds := []tea.Cmd{a.startRadarTicks()}

		// Activate first-run setup after the log loads
		if a.needSetup {
			cfg, _ := config.LoadFrom(a.configPath)
			vals := NewSetupValues(cfg)
			a.setupVals = &vals
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			cmds = append(cmds, a.setupForm.Init())
		}
		return a, tea.Batch(cmds...)

	case EstimateMsg:
		a.analysis.busy = false
		if msg.Err != nil {
			a.banner = estimateErrorMessage(msg)
			return a, nil
		}
		draft := pipeline.NewPortionDraft(msg.Estimate)
		a.analysis.draft = &draft
		a.analysis.source = msg.Source
		a.analysis.query = msg.Query
		a.banner = ""
		return a, nil

	case LoggedMsg:
		a.analysis.logging = false
		if msg.Err != nil {
			a.banner = msg.Err.Error()
			return a, nil
		}
		a.entries = append(a.entries, msg.Entry)
		a.analysis.draft = nil
		a.analysis.lastLogged = msg.Entry.MealName
		a.recompute()
		a.activeTab = tabDashboard
		return a, nil

	case ResetMsg:
		a.logState.confirmReset = false
		if msg.Err != nil {
			a.banner = msg.Err.Error()
			return a, nil
		}
		a.entries = nil
		a.recompute()
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.analysis.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Text inputs intercept all keys while focused
	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == tabLog && a.logState.searching {
		return a.updateLogSearch(msg)
	}
	if a.activeTab == tabAnalysis && a.analysis.editing {
		return a.updateAnalysisInput(msg)
	}

	// Dismiss error banner
	if a.banner != "" && key == "esc" {
		a.banner = ""
		return a, nil
	}

	// Help toggle
	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}

	// Dismiss help
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Tab-local keybindings
	var (
		handled bool
		next    tea.Model
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case tabLog:
		next, cmd, handled = a.updateLogKey(key)
	case tabAnalysis:
		next, cmd, handled = a.updateAnalysisKey(key)
	case tabSettings:
		next, cmd, handled = a.updateSettingsKey(key)
	}
	if handled {
		return next, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "t":
		return a.cycleTheme()
	case " ":
		if a.activeTab == tabDashboard && a.radar.Animating() {
			a.radar.SkipAnimation()
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	// Tab navigation
	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetup(); err != nil {
			a.banner = fmt.Sprintf("Could not save setup: %s", err)
		}
		a.needSetup = false
		a.setupForm = nil
		a.recompute()
		return a, a.startRadarTicks()
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a *App) saveSetup() error {
	cfg, _ := config.LoadFrom(a.configPath)
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	a.radar.SetBackground(theme.Active.Surface)
	return config.SaveTo(a.configPath, cfg)
}

// cycleTheme switches to the next theme and redraws the chart in place.
func (a App) cycleTheme() (tea.Model, tea.Cmd) {
	next := nextThemeKey(theme.Active.Name)
	if _, _, err := a.journal.SetTheme(next); err != nil {
		a.banner = err.Error()
	}
	a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)
	a.radar.SetBackground(theme.Active.Surface)
	a.recompute()
	return a, nil
}

func nextThemeKey(current string) string {
	for i, t := range theme.All {
		if t.Name == current {
			return theme.All[(i+1)%len(theme.All)].Name
		}
	}
	return theme.DefaultName
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	// First-run setup wizard
	if a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  mealradar needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderBright).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ mealradar"))
	b.WriteString(subtitleStyle.Render(" · Daily Macro Radar"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading today's log..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderBright).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d l a x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in lists and settings"},
		}},
		{"Analysis", []struct{ key, desc string }{
			{"i", "Enter a photo path or barcode"},
			{"← → / h l", "Portion -/+ step"},
			{"H L", "Portion -/+ 25%"},
			{"Enter", "Log the meal"},
			{"Esc", "Discard the estimate"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"/", "Search the log"},
			{"R", "Discard today's log"},
			{"t", "Next theme"},
			{"Space", "Skip the chart animation"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + day summary
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	summary := pillStyle.Render(" ") +
		pillAccent.Render(time.Now().Format("Mon Jan 2")) +
		pillStyle.Render(" │ ") +
		pillAccent.Render(fmt.Sprintf("%d meals", len(a.entries))) +
		pillStyle.Render(" │ ") +
		pillStyle.Render(t.DisplayName)

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(summary)

	// 2. Status bar, with the error banner above it
	info := components.CompactGoalBar("kcal", a.dash.CaloriesProgress, 28)
	if a.analysis.busy {
		info = a.spinner.View() + pillStyle.Render(" analyzing "+a.analysis.query)
	}
	footer := components.RenderStatusBar(w, info)
	if a.banner != "" {
		bannerStyle := lipgloss.NewStyle().
			Foreground(t.TextPrimary).
			Background(t.Red).
			Bold(true).
			Width(w)
		footer = bannerStyle.Render(" ✗ "+a.banner+"  [esc] dismiss") + "\n" + footer
	}

	// 3. Content zone height
	contentH := h - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabLog:
		content = a.renderLogTab(cw, contentH)
	case tabAnalysis:
		content = a.renderAnalysisTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background (fixes gaps between cards)
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Place content with background fill (handles centering when w > cw)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, footer)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func radarFrameCmd() tea.Cmd {
	return tea.Tick(radar.FrameInterval, func(time.Time) tea.Msg {
		return radarFrameMsg{}
	})
}

func loadLogCmd(j *journal.Journal) tea.Cmd {
	return func() tea.Msg {
		entries, err := j.Entries()
		return LogLoadedMsg{Entries: entries, Err: err}
	}
}

func analyzeImageCmd(analyzer vision.Analyzer, path string) tea.Cmd {
	return func() tea.Msg {
		if analyzer == nil {
			return EstimateMsg{Source: model.SourceVision, Query: path, Err: vision.ErrNoAPIKey}
		}
		ctx, cancel := context.WithTimeout(context.Background(), visionTimeout)
		defer cancel()
		est, err := pipeline.AnalyzeFile(ctx, analyzer, path)
		return EstimateMsg{Estimate: est, Source: model.SourceVision, Query: path, Err: err}
	}
}

func lookupBarcodeCmd(client *foodfacts.Client, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), barcodeTimeout)
		defer cancel()
		est, err := client.Lookup(ctx, code)
		return EstimateMsg{Estimate: est, Source: model.SourceBarcode, Query: code, Err: err}
	}
}

func logEntryCmd(j *journal.Journal, draft pipeline.PortionDraft, source string) tea.Cmd {
	return func() tea.Msg {
		entry, err := j.Log(draft.Base, draft.Percent, source)
		return LoggedMsg{Entry: entry, Err: err}
	}
}

func resetLogCmd(j *journal.Journal) tea.Cmd {
	return func() tea.Msg {
		return ResetMsg{Err: j.Reset()}
	}
}

func estimateErrorMessage(msg EstimateMsg) string {
	if msg.Source == model.SourceBarcode {
		return foodfacts.UserMessage(msg.Query, msg.Err)
	}
	if errors.Is(msg.Err, vision.ErrNoAPIKey) {
		return "Photo analysis needs a Gemini key: set GEMINI_API_KEY or run `mealradar setup`."
	}
	return fmt.Sprintf("Failed to analyze %s: %s", msg.Query, msg.Err)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
// This ensures gaps between cards and empty lines have proper background fill.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
