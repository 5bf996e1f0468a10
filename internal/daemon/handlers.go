package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/pipeline"
	"github.com/theirongolddev/mealradar/internal/radar"
	"github.com/theirongolddev/mealradar/internal/tui/theme"

	"github.com/gorilla/mux"
)

const (
	maxRequestBody = 64 << 10
	barcodeTimeout = 15 * time.Second

	defaultChartWidth  = 400
	defaultChartHeight = 250
	maxChartSide       = 4000
)

// LogRequest is the body of POST /v1/log: an estimate plus an optional
// portion percentage (default 100).
type LogRequest struct {
	model.Estimate
	Portion *float64 `json:"portion,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// ThemeResponse is served at /v1/theme.
type ThemeResponse struct {
	Theme       string        `json:"theme"`
	DisplayName string        `json:"displayName"`
	Palette     model.Palette `json:"palette"`
	Available   []string      `json:"available"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	dash, err := s.cfg.Journal.Dashboard()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleListLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.cfg.Journal.Entries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		entries = pipeline.FilterByName(entries, q)
	}
	if entries == nil {
		entries = []model.FoodEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateLogRequest(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	entry, err := s.cfg.Journal.Log(req.Estimate, *req.Portion, req.Source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.refresh("log", &entry)
	writeJSON(w, http.StatusCreated, entry)
}

// validateLogRequest fills defaults and rejects estimates that would
// corrupt the totals.
func validateLogRequest(req *LogRequest) error {
	req.MealName = strings.TrimSpace(req.MealName)
	if req.MealName == "" {
		return errors.New("mealName is required")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"calories", req.Calories},
		{"protein", req.Protein},
		{"carbohydrates", req.Carbohydrates},
		{"fat", req.Fat},
		{"sugar", req.Sugar},
	} {
		if err := model.CheckAmount(f.v); err != nil {
			return fmt.Errorf("%s %w", f.name, err)
		}
	}

	if req.Portion == nil {
		p := float64(pipeline.DefaultPortion)
		req.Portion = &p
	}
	if *req.Portion < pipeline.MinPortion || *req.Portion > pipeline.MaxPortion {
		return fmt.Errorf("portion must be between %d and %d", pipeline.MinPortion, pipeline.MaxPortion)
	}

	switch req.Source {
	case "":
		req.Source = model.SourceManual
	case model.SourceVision, model.SourceBarcode, model.SourceManual, model.SourceImport:
	default:
		return fmt.Errorf("unknown source %q", req.Source)
	}
	return nil
}

func (s *Service) handleResetLog(w http.ResponseWriter, _ *http.Request) {
	if err := s.cfg.Journal.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.refresh("reset", nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetGoals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Journal.Goals())
}

func (s *Service) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var g model.DailyGoals
	if err := decodeJSON(r, &g); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.cfg.Journal.SetGoals(g); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.refresh("goals", nil)
	writeJSON(w, http.StatusOK, s.cfg.Journal.Goals())
}

func (s *Service) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.themeResponse())
}

func (s *Service) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// SetTheme writes the process-wide active theme.
	s.mu.Lock()
	_, ok, err := s.cfg.Journal.SetTheme(strings.TrimSpace(req.Theme))
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("unknown theme %q", req.Theme))
		return
	}
	writeJSON(w, http.StatusOK, s.themeResponse())
}

func (s *Service) themeResponse() ThemeResponse {
	t := s.cfg.Journal.Theme()
	resp := ThemeResponse{
		Theme:       t.Name,
		DisplayName: t.DisplayName,
		Palette:     t.Palette(),
	}
	for _, th := range theme.All {
		resp.Available = append(resp.Available, th.Name)
	}
	return resp
}

func (s *Service) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := intParam(q.Get("width"), defaultChartWidth)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("width: %w", err))
		return
	}
	height, err := intParam(q.Get("height"), defaultChartHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("height: %w", err))
		return
	}
	animate := q.Get("animate") == "1" || q.Get("animate") == "true"

	dash, err := s.cfg.Journal.Dashboard()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	svg := radar.RenderSVG(float64(width), float64(height), radar.Input{
		Data:    dash.MacroSeries,
		Goals:   dash.GoalSeries,
		Palette: s.cfg.Journal.Theme().Palette(),
	}, animate)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(svg)
}

func (s *Service) handleBarcode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ctx, cancel := context.WithTimeout(r.Context(), barcodeTimeout)
	defer cancel()

	est, err := s.cfg.FoodFacts.Lookup(ctx, code)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, foodfacts.ErrInvalidBarcode):
			status = http.StatusBadRequest
		case errors.Is(err, foodfacts.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, foodfacts.ErrIncomplete):
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, errors.New(foodfacts.UserMessage(code, err)))
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n <= 0 || n > maxChartSide {
		return 0, fmt.Errorf("must be between 1 and %d", maxChartSide)
	}
	return n, nil
}
