package daemon

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/source"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a file must stay quiet before it is analyzed, so
// half-copied photos are not sent.
const settleDelay = 750 * time.Millisecond

const inboxTimeout = 90 * time.Second

// inbox watches a directory and logs every new meal photo at a 100% portion.
type inbox struct {
	dir     string
	svc     *Service
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	pending  map[string]*time.Timer
	inflight map[string]bool
	done     map[string]time.Time // path -> mtime already logged
}

func newInbox(dir string, svc *Service) (*inbox, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &inbox{
		dir:     dir,
		svc:     svc,
		watcher: w,
		pending:  make(map[string]*time.Timer),
		inflight: make(map[string]bool),
		done:     make(map[string]time.Time),
	}, nil
}

// Close stops the watcher and any pending analysis timers.
func (in *inbox) Close() error {
	in.mu.Lock()
	for p, t := range in.pending {
		t.Stop()
		delete(in.pending, p)
	}
	in.mu.Unlock()
	return in.watcher.Close()
}

// Watch handles watcher events until ctx is canceled or the watcher closes.
func (in *inbox) Watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if !source.IsImage(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				in.forget(event.Name)
			case event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0:
				in.schedule(ctx, event.Name)
			}
		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("mealradar serve: inbox watcher: %v", err)
		}
	}
}

// schedule (re)starts the settle timer for path.
func (in *inbox) schedule(ctx context.Context, path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.pending[path]; ok {
		t.Stop()
	}
	in.pending[path] = time.AfterFunc(settleDelay, func() {
		in.mu.Lock()
		delete(in.pending, path)
		in.mu.Unlock()
		in.process(ctx, path)
	})
}

// forget drops a deleted photo's pending work and cached estimate. Entries
// already logged from it stay in the log.
func (in *inbox) forget(path string) {
	in.mu.Lock()
	if t, ok := in.pending[path]; ok {
		t.Stop()
		delete(in.pending, path)
	}
	delete(in.done, path)
	in.mu.Unlock()

	if err := in.svc.cfg.Journal.Store().ForgetAnalysis(path); err != nil {
		log.Printf("mealradar serve: forgetting %s: %v", filepath.Base(path), err)
	}
}

// process analyzes one photo through the analysis cache and logs it.
func (in *inbox) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// renamed away before it settled
		return
	}

	in.mu.Lock()
	if seen, ok := in.done[path]; ok && seen.Equal(info.ModTime()) {
		in.mu.Unlock()
		return
	}
	if in.inflight[path] {
		in.mu.Unlock()
		// Check again once the running analysis has finished.
		in.schedule(ctx, path)
		return
	}
	in.inflight[path] = true
	in.mu.Unlock()
	defer func() {
		in.mu.Lock()
		delete(in.inflight, path)
		in.mu.Unlock()
	}()

	img := source.DiscoveredImage{
		Path:     path,
		Name:     filepath.Base(path),
		MimeType: source.MimeType(path),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}

	actx, cancel := context.WithTimeout(ctx, inboxTimeout)
	defer cancel()
	j := in.svc.cfg.Journal
	res, err := pipeline.AnalyzeImagesWithCache(actx, []source.DiscoveredImage{img}, in.svc.cfg.Analyzer, j.Store(), nil)
	if err != nil {
		in.fail(path, err)
		return
	}
	r := res.Results[0]
	if r.Err != nil {
		in.fail(path, r.Err)
		return
	}

	entry, err := j.Log(r.Estimate, pipeline.DefaultPortion, model.SourceVision)
	if err != nil {
		in.fail(path, err)
		return
	}

	in.mu.Lock()
	in.done[path] = info.ModTime()
	in.mu.Unlock()

	in.svc.mu.Lock()
	in.svc.inboxLogged++
	in.svc.mu.Unlock()

	log.Printf("mealradar serve: logged %q (%.0f kcal) from %s", entry.MealName, entry.Calories, img.Name)
	in.svc.refresh("inbox", &entry)
}

func (in *inbox) fail(path string, err error) {
	in.svc.mu.Lock()
	in.svc.lastError = err.Error()
	in.svc.mu.Unlock()
	log.Printf("mealradar serve: analyzing %s: %v", filepath.Base(path), err)
}
