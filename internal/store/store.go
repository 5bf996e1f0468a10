// Package store provides the SQLite-backed food log and image analysis cache.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrDuplicateID is returned when an entry ID is already in the log.
var ErrDuplicateID = errors.New("store: duplicate entry id")

// Store is the persistent food log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening log db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "mealradar")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mealradar")
}

// DefaultPath returns the full path to the log database.
func DefaultPath() string {
	return filepath.Join(DataDir(), "log.db")
}

// Append adds entries to the end of the log in a single transaction.
func (s *Store) Append(entries ...model.FoodEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO food_log
		(id, meal_name, calories, protein, carbohydrates, fat, sugar, source, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		source := e.Source
		if source == "" {
			source = model.SourceManual
		}
		_, err := stmt.Exec(e.ID, e.MealName, e.Calories, e.Protein, e.Carbohydrates,
			e.Fat, e.Sugar, source, formatTime(e.LoggedAt))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
			}
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Entries returns the whole log in insertion order.
func (s *Store) Entries() ([]model.FoodEntry, error) {
	rows, err := s.db.Query(`SELECT
		id, meal_name, calories, protein, carbohydrates, fat, sugar, source, logged_at
		FROM food_log ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.FoodEntry
	for rows.Next() {
		var e model.FoodEntry
		var loggedAt string
		err := rows.Scan(&e.ID, &e.MealName, &e.Calories, &e.Protein, &e.Carbohydrates,
			&e.Fat, &e.Sugar, &e.Source, &loggedAt)
		if err != nil {
			return nil, err
		}
		e.LoggedAt, _ = time.Parse(time.RFC3339Nano, loggedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset discards the whole log. The analysis cache is kept.
func (s *Store) Reset() error {
	_, err := s.db.Exec("DELETE FROM food_log")
	return err
}

// EntryCount returns the number of logged entries.
func (s *Store) EntryCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM food_log").Scan(&count)
	return count, err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
