package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
)

// FileInfo holds the tracked mtime and size for an analyzed image.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// CachedAnalysis returns the stored estimate for an image if the file has
// not changed since it was analyzed.
func (s *Store) CachedAnalysis(path string, fi FileInfo) (model.Estimate, bool, error) {
	var est model.Estimate
	var tracked FileInfo
	err := s.db.QueryRow(`SELECT mtime_ns, size_bytes, meal_name, calories, protein,
		carbohydrates, fat, sugar FROM analysis_cache WHERE file_path = ?`, path).Scan(
		&tracked.MtimeNs, &tracked.SizeBytes, &est.MealName, &est.Calories, &est.Protein,
		&est.Carbohydrates, &est.Fat, &est.Sugar,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Estimate{}, false, nil
	}
	if err != nil {
		return model.Estimate{}, false, err
	}
	if tracked != fi {
		return model.Estimate{}, false, nil
	}
	return est, true, nil
}

// SaveAnalysis stores the estimate for an image along with its file info.
func (s *Store) SaveAnalysis(path string, fi FileInfo, est model.Estimate) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO analysis_cache
		(file_path, mtime_ns, size_bytes, meal_name, calories, protein, carbohydrates, fat, sugar, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, fi.MtimeNs, fi.SizeBytes, est.MealName, est.Calories, est.Protein,
		est.Carbohydrates, est.Fat, est.Sugar, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ForgetAnalysis removes an image from the analysis cache.
func (s *Store) ForgetAnalysis(path string) error {
	_, err := s.db.Exec("DELETE FROM analysis_cache WHERE file_path = ?", path)
	return err
}

// AnalysisCount returns the number of cached image analyses.
func (s *Store) AnalysisCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM analysis_cache").Scan(&count)
	return count, err
}
