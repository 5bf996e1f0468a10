package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

// ErrMissingField marks a JSONL line that lacks a required value.
var ErrMissingField = errors.New("source: missing required field")

// ImportResult holds the output of reading a JSONL export.
type ImportResult struct {
	Entries     []model.FoodEntry
	ParseErrors int
	Err         error
}

// ReadEntries decodes one food entry per line. Blank lines are skipped.
// Malformed lines are counted and skipped rather than aborting the import.
// Entries without an ID get a fresh one; entries without a timestamp get now.
func ReadEntries(r io.Reader, now time.Time) ImportResult {
	var res ImportResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw RawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			res.ParseErrors++
			continue
		}
		entry, err := raw.toEntry(now)
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		res.Err = fmt.Errorf("reading entries: %w", err)
	}
	return res
}

// ReadFile opens path and reads its entries.
func ReadFile(path string, now time.Time) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Err: err}
	}
	defer func() { _ = f.Close() }()
	return ReadEntries(f, now)
}

// WriteEntries encodes the log as JSON Lines, one entry per line.
func WriteEntries(w io.Writer, entries []model.FoodEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encoding entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (r RawEntry) toEntry(now time.Time) (model.FoodEntry, error) {
	if r.MealName == "" || r.Calories == nil {
		return model.FoodEntry{}, ErrMissingField
	}

	e := model.FoodEntry{
		ID:            r.ID,
		MealName:      r.MealName,
		Calories:      *r.Calories,
		Protein:       deref(r.Protein),
		Carbohydrates: deref(r.Carbohydrates),
		Fat:           deref(r.Fat),
		Sugar:         deref(r.Sugar),
		LoggedAt:      now,
		Source:        r.Source,
	}
	for _, v := range []float64{e.Calories, e.Protein, e.Carbohydrates, e.Fat, e.Sugar} {
		if err := model.CheckAmount(v); err != nil {
			return model.FoodEntry{}, fmt.Errorf("source: value in %q %w", r.MealName, err)
		}
	}
	if e.ID == "" {
		e.ID = model.NewID()
	}
	if e.Source == "" {
		e.Source = model.SourceImport
	}
	if r.LoggedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, r.LoggedAt); err == nil {
			e.LoggedAt = ts
		}
	}
	return e, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
