package config

import (
	"fmt"
	"sync"

	"github.com/theirongolddev/mealradar/internal/model"
)

// Prefs persists the user's goals and theme choice. A false second return
// means the value was never saved and the caller should use its default.
type Prefs interface {
	LoadGoals() (model.DailyGoals, bool)
	SaveGoals(model.DailyGoals) error
	LoadThemeKey() (string, bool)
	SaveThemeKey(string) error
}

// FilePrefs stores preferences in the TOML config file. Each save re-reads
// the file so other sections written elsewhere are preserved.
type FilePrefs struct {
	mu   sync.Mutex
	path string
}

// NewFilePrefs returns prefs backed by the config file at path, or the
// default config path if path is empty.
func NewFilePrefs(path string) *FilePrefs {
	if path == "" {
		path = ConfigPath()
	}
	return &FilePrefs{path: path}
}

// LoadGoals returns the saved goals. An unreadable file counts as unsaved.
func (p *FilePrefs) LoadGoals() (model.DailyGoals, bool) {
	cfg, err := LoadFrom(p.path)
	if err != nil || cfg.Goals == nil {
		return model.DailyGoals{}, false
	}
	return *cfg.Goals, true
}

// SaveGoals validates and persists goals.
func (p *FilePrefs) SaveGoals(g model.DailyGoals) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return p.update(func(cfg *Config) { cfg.Goals = &g })
}

// LoadThemeKey returns the saved theme key.
func (p *FilePrefs) LoadThemeKey() (string, bool) {
	cfg, err := LoadFrom(p.path)
	if err != nil || cfg.Appearance.Theme == "" {
		return "", false
	}
	return cfg.Appearance.Theme, true
}

// SaveThemeKey persists the theme key.
func (p *FilePrefs) SaveThemeKey(key string) error {
	return p.update(func(cfg *Config) { cfg.Appearance.Theme = key })
}

func (p *FilePrefs) update(fn func(*Config)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, err := LoadFrom(p.path)
	if err != nil {
		return fmt.Errorf("loading prefs: %w", err)
	}
	fn(&cfg)
	return SaveTo(p.path, cfg)
}

// MemoryPrefs keeps preferences in memory. Used for ephemeral sessions.
type MemoryPrefs struct {
	mu       sync.Mutex
	goals    *model.DailyGoals
	themeKey string
}

// LoadGoals implements Prefs.
func (m *MemoryPrefs) LoadGoals() (model.DailyGoals, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.goals == nil {
		return model.DailyGoals{}, false
	}
	return *m.goals, true
}

// SaveGoals implements Prefs.
func (m *MemoryPrefs) SaveGoals(g model.DailyGoals) error {
	if err := g.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = &g
	return nil
}

// LoadThemeKey implements Prefs.
func (m *MemoryPrefs) LoadThemeKey() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.themeKey, m.themeKey != ""
}

// SaveThemeKey implements Prefs.
func (m *MemoryPrefs) SaveThemeKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themeKey = key
	return nil
}

// GoalsOrDefault loads goals from p, falling back to the defaults.
func GoalsOrDefault(p Prefs) model.DailyGoals {
	if g, ok := p.LoadGoals(); ok {
		return g
	}
	return model.DefaultGoals()
}
