package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/source"
	"github.com/theirongolddev/mealradar/internal/vision"
)

// maxConcurrentRequests caps parallel calls to the vision API.
const maxConcurrentRequests = 4

// ImageResult is the outcome of analyzing one image.
type ImageResult struct {
	Image    source.DiscoveredImage
	Estimate model.Estimate
	Cached   bool
	Err      error
}

// BatchResult holds the output of a batch analysis, in input order.
type BatchResult struct {
	Results     []ImageResult
	TotalImages int
	Analyzed    int
	CacheHits   int
	Failed      int
}

// Estimates returns the successful estimates in input order.
func (b *BatchResult) Estimates() []ImageResult {
	var out []ImageResult
	for _, r := range b.Results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}

// ProgressFunc is called during batch analysis to report progress.
// current is the number of images processed so far, total is the total count.
type ProgressFunc func(current, total int)

// AnalyzeDir discovers the images in dir and analyzes all of them.
func AnalyzeDir(ctx context.Context, dir string, analyzer vision.Analyzer, progressFn ProgressFunc) (*BatchResult, error) {
	images, err := source.ScanImages(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return AnalyzeImages(ctx, images, analyzer, progressFn), nil
}

// AnalyzeImages analyzes images with a bounded worker pool. A failing image
// is recorded in its result and does not stop the batch.
func AnalyzeImages(ctx context.Context, images []source.DiscoveredImage, analyzer vision.Analyzer, progressFn ProgressFunc) *BatchResult {
	result := &BatchResult{
		TotalImages: len(images),
		Results:     make([]ImageResult, len(images)),
	}
	if len(images) == 0 {
		return result
	}

	runPool(len(images), func(idx int) {
		img := images[idx]
		est, err := AnalyzeFile(ctx, analyzer, img.Path)
		result.Results[idx] = ImageResult{Image: img, Estimate: est, Err: err}
	}, func(n int) {
		if progressFn != nil {
			progressFn(n, len(images))
		}
	})

	for _, r := range result.Results {
		if r.Err != nil {
			result.Failed++
		} else {
			result.Analyzed++
		}
	}
	return result
}

// AnalyzeFile reads one image and sends it to the analyzer.
func AnalyzeFile(ctx context.Context, analyzer vision.Analyzer, path string) (model.Estimate, error) {
	mime := source.MimeType(path)
	if mime == "" {
		return model.Estimate{}, fmt.Errorf("%s: unsupported image type", path)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user or a scanned directory
	if err != nil {
		return model.Estimate{}, fmt.Errorf("reading image: %w", err)
	}
	est, err := analyzer.AnalyzeImage(ctx, data, mime)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("%s: %w", path, err)
	}
	return est, nil
}

// runPool calls work(i) for i in [0, n) on a bounded set of goroutines.
// done receives the running count of finished items.
func runPool(n int, work func(int), done func(int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > maxConcurrentRequests {
		numWorkers = maxConcurrentRequests
	}
	if numWorkers > n {
		numWorkers = n
	}

	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	var processed atomic.Int64

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				work(idx)
				done(int(processed.Add(1)))
			}
		}()
	}
	wg.Wait()
}
