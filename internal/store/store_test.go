package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "log.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndEntries_PreservesOrder(t *testing.T) {
	s := openTemp(t)
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	// Later timestamp first: insertion order wins, not logged_at.
	err := s.Append(
		model.FoodEntry{ID: "b", MealName: "Lunch", Calories: 600, Protein: 30, LoggedAt: at.Add(time.Hour), Source: model.SourceVision},
		model.FoodEntry{ID: "a", MealName: "Snack", Calories: 150, Sugar: 12, LoggedAt: at},
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := s.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].ID != "b" || entries[1].ID != "a" {
		t.Errorf("order = %s,%s; want b,a", entries[0].ID, entries[1].ID)
	}
	if entries[1].Source != model.SourceManual {
		t.Errorf("default Source = %q, want %q", entries[1].Source, model.SourceManual)
	}
	if !entries[0].LoggedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("LoggedAt = %v", entries[0].LoggedAt)
	}
	if entries[1].Sugar != 12 {
		t.Errorf("Sugar = %g, want 12", entries[1].Sugar)
	}
}

func TestAppend_DuplicateID(t *testing.T) {
	s := openTemp(t)
	e := model.FoodEntry{ID: "dup", MealName: "Egg", Calories: 70}
	if err := s.Append(e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(e); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("second Append err = %v, want ErrDuplicateID", err)
	}
	if n, _ := s.EntryCount(); n != 1 {
		t.Errorf("EntryCount = %d, want 1", n)
	}
}

func TestReset(t *testing.T) {
	s := openTemp(t)
	if err := s.Append(model.FoodEntry{ID: "x", MealName: "Rice", Calories: 200}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAnalysis("/img/rice.jpg", FileInfo{MtimeNs: 1, SizeBytes: 2}, model.Estimate{MealName: "Rice"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, _ := s.EntryCount(); n != 0 {
		t.Errorf("EntryCount after reset = %d, want 0", n)
	}
	if n, _ := s.AnalysisCount(); n != 1 {
		t.Errorf("AnalysisCount after reset = %d, want 1", n)
	}
}

func TestAnalysisCache(t *testing.T) {
	s := openTemp(t)
	fi := FileInfo{MtimeNs: 100, SizeBytes: 2048}
	est := model.Estimate{MealName: "Salad", Calories: 250, Protein: 8, Carbohydrates: 20, Fat: 15, Sugar: 5}

	if _, ok, err := s.CachedAnalysis("/img/salad.jpg", fi); err != nil || ok {
		t.Fatalf("empty cache hit = %v, err = %v", ok, err)
	}
	if err := s.SaveAnalysis("/img/salad.jpg", fi, est); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, ok, err := s.CachedAnalysis("/img/salad.jpg", fi)
	if err != nil || !ok {
		t.Fatalf("CachedAnalysis hit = %v, err = %v", ok, err)
	}
	if got != est {
		t.Errorf("got %+v, want %+v", got, est)
	}

	// A changed file is a miss.
	if _, ok, _ := s.CachedAnalysis("/img/salad.jpg", FileInfo{MtimeNs: 101, SizeBytes: 2048}); ok {
		t.Error("changed mtime should miss")
	}

	if err := s.ForgetAnalysis("/img/salad.jpg"); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.AnalysisCount(); n != 0 {
		t.Errorf("AnalysisCount = %d, want 0", n)
	}
}
