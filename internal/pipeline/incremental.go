package pipeline

import (
	"context"
	"fmt"

	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/source"
	"github.com/theirongolddev/mealradar/internal/store"
	"github.com/theirongolddev/mealradar/internal/vision"
)

// AnalysisCache remembers estimates for images that have not changed.
type AnalysisCache interface {
	CachedAnalysis(path string, fi store.FileInfo) (model.Estimate, bool, error)
	SaveAnalysis(path string, fi store.FileInfo, est model.Estimate) error
}

// AnalyzeDirWithCache discovers images, reuses cached estimates for files
// whose mtime and size are unchanged, and analyzes only the rest.
func AnalyzeDirWithCache(ctx context.Context, dir string, analyzer vision.Analyzer, cache AnalysisCache, progressFn ProgressFunc) (*BatchResult, error) {
	images, err := source.ScanImages(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return AnalyzeImagesWithCache(ctx, images, analyzer, cache, progressFn)
}

// AnalyzeImagesWithCache is AnalyzeImages with an analysis cache in front.
func AnalyzeImagesWithCache(ctx context.Context, images []source.DiscoveredImage, analyzer vision.Analyzer, cache AnalysisCache, progressFn ProgressFunc) (*BatchResult, error) {
	result := &BatchResult{
		TotalImages: len(images),
		Results:     make([]ImageResult, len(images)),
	}

	// Diff: partition into cached and changed
	var toAnalyze []int
	for i, img := range images {
		fi := fileInfo(img)
		est, ok, err := cache.CachedAnalysis(img.Path, fi)
		if err != nil {
			return nil, fmt.Errorf("reading analysis cache: %w", err)
		}
		if ok {
			result.Results[i] = ImageResult{Image: img, Estimate: est, Cached: true}
			result.CacheHits++
			continue
		}
		toAnalyze = append(toAnalyze, i)
	}

	if len(toAnalyze) > 0 {
		runPool(len(toAnalyze), func(j int) {
			idx := toAnalyze[j]
			img := images[idx]
			est, err := AnalyzeFile(ctx, analyzer, img.Path)
			result.Results[idx] = ImageResult{Image: img, Estimate: est, Err: err}
		}, func(n int) {
			if progressFn != nil {
				progressFn(n+result.CacheHits, result.TotalImages)
			}
		})

		for _, idx := range toAnalyze {
			r := result.Results[idx]
			if r.Err != nil {
				continue
			}
			_ = cache.SaveAnalysis(r.Image.Path, fileInfo(r.Image), r.Estimate)
		}
	}

	for _, r := range result.Results {
		switch {
		case r.Err != nil:
			result.Failed++
		case !r.Cached:
			result.Analyzed++
		}
	}
	return result, nil
}

func fileInfo(img source.DiscoveredImage) store.FileInfo {
	return store.FileInfo{MtimeNs: img.ModTime.UnixNano(), SizeBytes: img.Size}
}
