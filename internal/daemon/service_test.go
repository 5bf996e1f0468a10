package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/mealradar/internal/config"
	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/journal"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/store"
	"github.com/theirongolddev/mealradar/internal/tui/theme"
)

type fakeAnalyzer struct {
	est   model.Estimate
	calls int
}

func (f *fakeAnalyzer) AnalyzeImage(_ context.Context, _ []byte, _ string) (model.Estimate, error) {
	f.calls++
	return f.est, nil
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "log.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	t.Cleanup(func() { theme.SetActive(theme.DefaultName) })

	cfg.Journal = journal.New(st, &config.MemoryPrefs{})
	s := New(cfg)
	s.refresh("startup", nil)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Entries: 2,
		Totals:  model.MacroTotals{Calories: 500, Protein: 20, Carbohydrates: 60, Fat: 10},
	}
	curr := Snapshot{
		Entries: 3,
		Totals:  model.MacroTotals{Calories: 800.5, Protein: 35, Carbohydrates: 60, Fat: 18},
	}

	delta := diffSnapshots(prev, curr)
	if delta.Entries != 1 {
		t.Fatalf("Entries delta = %d, want 1", delta.Entries)
	}
	if math.Abs(delta.Calories-300.5) > 1e-9 {
		t.Fatalf("Calories delta = %.2f, want 300.50", delta.Calories)
	}
	if delta.Protein != 15 || delta.Carbs != 0 || delta.Fat != 8 {
		t.Fatalf("macro delta = %+v, want protein 15 carbs 0 fat 8", delta)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a non-zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestService(t, Config{})
	w := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q, want 200 ok", w.Code, w.Body.String())
	}
}

func TestLogAppendUpdatesDashboard(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/v1/log", `{"mealName":"Pasta","calories":200,"protein":10,"portion":50}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /v1/log = %d %s, want 201", w.Code, w.Body.String())
	}
	var entry model.FoodEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decoding entry: %v", err)
	}
	if entry.Calories != 100 || entry.Protein != 5 {
		t.Fatalf("entry = %+v, want 100 kcal / 5 g protein", entry)
	}
	if entry.Source != model.SourceManual {
		t.Fatalf("entry.Source = %q, want %q", entry.Source, model.SourceManual)
	}

	w = do(t, h, http.MethodGet, "/v1/dashboard", "")
	var dash model.Dashboard
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decoding dashboard: %v", err)
	}
	if dash.Totals.Calories != 100 || dash.Entries != 1 {
		t.Fatalf("dashboard totals = %v kcal / %d entries, want 100 / 1", dash.Totals.Calories, dash.Entries)
	}

	s.mu.RLock()
	last := s.events[len(s.events)-1]
	s.mu.RUnlock()
	if last.Type != EventLogChanged || last.Entry == nil || last.Entry.ID != entry.ID {
		t.Fatalf("last event = %+v, want log_changed for %s", last, entry.ID)
	}
}

func TestLogAppendRejectsBadInput(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"mealName":`, http.StatusBadRequest},
		{"unknown field", `{"mealName":"A","kcal":3}`, http.StatusBadRequest},
		{"missing name", `{"calories":100}`, http.StatusUnprocessableEntity},
		{"negative fat", `{"mealName":"A","fat":-1}`, http.StatusUnprocessableEntity},
		{"portion too big", `{"mealName":"A","portion":301}`, http.StatusUnprocessableEntity},
		{"huge protein", `{"mealName":"A","protein":1.7e308}`, http.StatusUnprocessableEntity},
		{"calories over limit", `{"mealName":"A","calories":1000001}`, http.StatusUnprocessableEntity},
		{"unknown source", `{"mealName":"A","source":"fax"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/log", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if errorBody(t, w) == "" {
				t.Fatal("error message is empty")
			}
		})
	}

	w := do(t, h, http.MethodGet, "/v1/log", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("log after rejected posts = %s, want []", w.Body.String())
	}
}

func TestLogReset(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	do(t, h, http.MethodPost, "/v1/log", `{"mealName":"Toast","calories":150}`)
	w := do(t, h, http.MethodDelete, "/v1/log", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE /v1/log = %d, want 204", w.Code)
	}
	if st := s.snapshotStatus(); st.Summary.Entries != 0 || st.ChangeCount != 2 {
		t.Fatalf("status after reset = %d entries / %d changes, want 0 / 2", st.Summary.Entries, st.ChangeCount)
	}
}

func TestGoalsRoundTrip(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/v1/goals", "")
	var g model.DailyGoals
	_ = json.Unmarshal(w.Body.Bytes(), &g)
	if g != model.DefaultGoals() {
		t.Fatalf("default goals = %+v, want %+v", g, model.DefaultGoals())
	}

	w = do(t, h, http.MethodPut, "/v1/goals", `{"calories":1800,"protein":120,"carbohydrates":200,"fat":60}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /v1/goals = %d %s", w.Code, w.Body.String())
	}
	if got := s.cfg.Journal.Goals().Calories; got != 1800 {
		t.Fatalf("saved calories = %v, want 1800", got)
	}

	for _, body := range []string{
		`{"calories":-1,"protein":120,"carbohydrates":200,"fat":60}`,
		`{"calories":1800,"protein":1.7e308,"carbohydrates":200,"fat":60}`,
	} {
		w = do(t, h, http.MethodPut, "/v1/goals", body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("PUT %s status = %d, want 422", body, w.Code)
		}
	}
	if got := s.cfg.Journal.Goals().Protein; got != 120 {
		t.Fatalf("protein after rejected puts = %v, want 120", got)
	}

	w = do(t, h, http.MethodGet, "/v1/chart.svg?width=400&height=250", "")
	if strings.Contains(w.Body.String(), "NaN") {
		t.Fatal("chart contains NaN coordinates")
	}
}

func TestThemeUnknownKeyLeavesThemeUnchanged(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	w := do(t, h, http.MethodPut, "/v1/theme", `{"theme":"forest"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT forest = %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPut, "/v1/theme", `{"theme":"plaid"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("PUT plaid = %d, want 422", w.Code)
	}

	w = do(t, h, http.MethodGet, "/v1/theme", "")
	var resp ThemeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding theme: %v", err)
	}
	if resp.Theme != "forest" {
		t.Fatalf("theme = %q, want forest", resp.Theme)
	}
	if len(resp.Available) != len(theme.All) {
		t.Fatalf("available = %v, want %d themes", resp.Available, len(theme.All))
	}
}

func TestThemeConcurrentPuts(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	keys := []string{"forest", "sunset"}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if w := do(t, h, http.MethodPut, "/v1/theme", `{"theme":"`+key+`"}`); w.Code != http.StatusOK {
				t.Errorf("PUT %s = %d %s", key, w.Code, w.Body.String())
			}
		}(keys[i%len(keys)])
	}
	wg.Wait()

	w := do(t, h, http.MethodGet, "/v1/theme", "")
	var resp ThemeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding theme: %v", err)
	}
	if resp.Theme != theme.Active.Name {
		t.Fatalf("saved theme = %q, active theme = %q", resp.Theme, theme.Active.Name)
	}
}

func TestChartSVG(t *testing.T) {
	s := newTestService(t, Config{})
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/v1/chart.svg?width=400&height=250", "")
	if w.Code != http.StatusOK {
		t.Fatalf("chart = %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("<svg")) {
		t.Fatalf("body does not start with <svg: %.60s", w.Body.String())
	}

	// Same inputs, same bytes.
	again := do(t, h, http.MethodGet, "/v1/chart.svg?width=400&height=250", "")
	if !bytes.Equal(w.Body.Bytes(), again.Body.Bytes()) {
		t.Fatal("identical chart requests produced different SVG")
	}

	if w := do(t, h, http.MethodGet, "/v1/chart.svg?width=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad width status = %d, want 400", w.Code)
	}
}

func TestBarcodeStatusMapping(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/product/3017620422003.json":
			_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Nutella","nutriments":{"energy-kcal_100g":539,"proteins_100g":6.3}}}`))
		case "/api/v2/product/12345678.json":
			_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Water","nutriments":{}}}`))
		default:
			_, _ = w.Write([]byte(`{"status":0}`))
		}
	}))
	t.Cleanup(upstream.Close)

	s := newTestService(t, Config{FoodFacts: foodfacts.NewClient(upstream.URL)})
	h := s.Handler()

	tests := []struct {
		code string
		want int
	}{
		{"3017620422003", http.StatusOK},
		{"12345678", http.StatusUnprocessableEntity},
		{"87654321", http.StatusNotFound},
		{"12ab", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := do(t, h, http.MethodGet, "/v1/barcode/"+tt.code, "")
		if w.Code != tt.want {
			t.Fatalf("barcode %s status = %d, want %d (%s)", tt.code, w.Code, tt.want, w.Body.String())
		}
	}

	if entries, _ := s.cfg.Journal.Entries(); len(entries) != 0 {
		t.Fatalf("barcode lookup logged %d entries, want 0", len(entries))
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestService(t, Config{})
	w := do(t, s.Handler(), http.MethodGet, "/v1/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if errorBody(t, w) == "" {
		t.Fatal("error message is empty")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestService(t, Config{AllowedOrigins: []string{"http://localhost:5173"}})

	r := httptest.NewRequest(http.MethodOptions, "/v1/log", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want the configured origin", got)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	writeSSE(&buf, Event{ID: 7, Type: EventLogChanged})

	out := buf.String()
	if !strings.HasPrefix(out, "event: log_changed\ndata: {") {
		t.Fatalf("SSE frame = %q", out)
	}
	if !strings.HasSuffix(out, "}\n\n") {
		t.Fatalf("SSE frame not terminated by a blank line: %q", out)
	}
}

func TestInboxProcessLogsOncePerFile(t *testing.T) {
	analyzer := &fakeAnalyzer{est: model.Estimate{MealName: "Ramen", Calories: 650, Protein: 25}}
	dir := t.TempDir()
	s := newTestService(t, Config{Analyzer: analyzer, InboxDir: dir})

	in, err := newInbox(dir, s)
	if err != nil {
		t.Fatalf("newInbox: %v", err)
	}
	t.Cleanup(func() { _ = in.Close() })

	photo := filepath.Join(dir, "ramen.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	in.process(ctx, photo)
	in.process(ctx, photo)

	entries, err := s.cfg.Journal.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].MealName != "Ramen" || entries[0].Source != model.SourceVision {
		t.Fatalf("entry = %+v, want Ramen from vision", entries[0])
	}
	if analyzer.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", analyzer.calls)
	}
	if st := s.snapshotStatus(); st.InboxLogged != 1 {
		t.Fatalf("InboxLogged = %d, want 1", st.InboxLogged)
	}
}

// blockingAnalyzer holds every analysis until release is closed.
type blockingAnalyzer struct {
	est     model.Estimate
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingAnalyzer) AnalyzeImage(ctx context.Context, _ []byte, _ string) (model.Estimate, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-b.release:
		return b.est, nil
	case <-ctx.Done():
		return model.Estimate{}, ctx.Err()
	}
}

func TestInboxProcessSkipsPhotoAlreadyInFlight(t *testing.T) {
	analyzer := &blockingAnalyzer{
		est:     model.Estimate{MealName: "Curry", Calories: 720},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	dir := t.TempDir()
	s := newTestService(t, Config{Analyzer: analyzer, InboxDir: dir})

	in, err := newInbox(dir, s)
	if err != nil {
		t.Fatalf("newInbox: %v", err)
	}
	t.Cleanup(func() { _ = in.Close() })

	photo := filepath.Join(dir, "curry.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	first := make(chan struct{})
	go func() {
		in.process(ctx, photo)
		close(first)
	}()
	select {
	case <-analyzer.started:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not start")
	}

	// A second settle timer firing mid-analysis must not analyze again.
	in.process(ctx, photo)
	in.mu.Lock()
	_, requeued := in.pending[photo]
	in.mu.Unlock()
	if !requeued {
		t.Error("overlapping process did not requeue the photo")
	}

	close(analyzer.release)
	<-first

	if n := analyzer.calls.Load(); n != 1 {
		t.Fatalf("analyzer calls = %d, want 1", n)
	}
	entries, err := s.cfg.Journal.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	// The requeued check finds the photo already logged.
	in.process(ctx, photo)
	if entries, _ := s.cfg.Journal.Entries(); len(entries) != 1 {
		t.Fatalf("entries after requeue = %d, want 1", len(entries))
	}
}

func TestInboxForgetDropsCachedAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{est: model.Estimate{MealName: "Salad", Calories: 300}}
	dir := t.TempDir()
	s := newTestService(t, Config{Analyzer: analyzer, InboxDir: dir})

	in, err := newInbox(dir, s)
	if err != nil {
		t.Fatalf("newInbox: %v", err)
	}
	t.Cleanup(func() { _ = in.Close() })

	photo := filepath.Join(dir, "salad.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o600); err != nil {
		t.Fatal(err)
	}
	in.process(context.Background(), photo)

	st := s.cfg.Journal.Store()
	if n, err := st.AnalysisCount(); err != nil || n != 1 {
		t.Fatalf("AnalysisCount = %d, %v; want 1", n, err)
	}

	in.forget(photo)

	if n, err := st.AnalysisCount(); err != nil || n != 0 {
		t.Fatalf("AnalysisCount after forget = %d, %v; want 0", n, err)
	}
	if entries, _ := s.cfg.Journal.Entries(); len(entries) != 1 {
		t.Fatalf("entries = %d, want logged meal kept", len(entries))
	}
}

func TestInboxWatchPicksUpNewPhoto(t *testing.T) {
	analyzer := &fakeAnalyzer{est: model.Estimate{MealName: "Tacos", Calories: 480}}
	dir := t.TempDir()
	s := newTestService(t, Config{Analyzer: analyzer, InboxDir: dir})

	in, err := newInbox(dir, s)
	if err != nil {
		t.Fatalf("newInbox: %v", err)
	}
	t.Cleanup(func() { _ = in.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go in.Watch(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tacos.png"), []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if entries, _ := s.cfg.Journal.Entries(); len(entries) == 1 {
			if entries[0].MealName != "Tacos" {
				t.Fatalf("logged %q, want Tacos", entries[0].MealName)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("photo was not logged within 5s")
}
