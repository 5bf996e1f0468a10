// Package daemon provides the long-running mealradar HTTP service: a JSON
// API over the food log, an SVG chart endpoint, a server-sent event stream
// of log changes, and an optional photo inbox.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/mealradar/internal/foodfacts"
	"github.com/theirongolddev/mealradar/internal/journal"
	"github.com/theirongolddev/mealradar/internal/model"
	"github.com/theirongolddev/mealradar/internal/vision"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Config controls the service runtime behavior.
type Config struct {
	Journal   *journal.Journal
	Analyzer  vision.Analyzer // nil disables photo analysis and the inbox
	FoodFacts *foodfacts.Client

	Addr           string
	InboxDir       string
	AllowedOrigins []string
	EventsBuffer   int
}

// Snapshot is a compact dashboard state for status and event payloads.
type Snapshot struct {
	At               time.Time         `json:"at"`
	Entries          int               `json:"entries"`
	Totals           model.MacroTotals `json:"totals"`
	Goals            model.DailyGoals  `json:"goals"`
	CaloriesProgress float64           `json:"calories_progress"`
}

// Delta captures the change between two snapshots.
type Delta struct {
	Entries  int     `json:"entries"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbohydrates"`
	Fat      float64 `json:"fat"`
}

func (d Delta) isZero() bool {
	return d.Entries == 0 &&
		d.Calories == 0 &&
		d.Protein == 0 &&
		d.Carbs == 0 &&
		d.Fat == 0
}

// Event is emitted whenever the log or the goals change.
type Event struct {
	ID        int64            `json:"id"`
	Type      string           `json:"type"`
	Reason    string           `json:"reason,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Snapshot  Snapshot         `json:"snapshot"`
	Delta     Delta            `json:"delta"`
	Entry     *model.FoodEntry `json:"entry,omitempty"`
}

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventLogChanged = "log_changed"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastChangeAt    time.Time `json:"last_change_at"`
	ChangeCount     int64     `json:"change_count"`
	InboxDir        string    `json:"inbox_dir,omitempty"`
	InboxLogged     int64     `json:"inbox_logged"`
	Vision          bool      `json:"vision"`
	Theme           string    `json:"theme"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the service runtime and HTTP API.
type Service struct {
	cfg Config

	mu           sync.RWMutex
	startedAt    time.Time
	lastChangeAt time.Time
	changeCount  int64
	inboxLogged  int64
	lastError    string
	hasSnapshot  bool
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8917"
	}
	if cfg.FoodFacts == nil {
		cfg.FoodFacts = foodfacts.NewClient("")
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API wrapped in the CORS policy.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	v1.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	v1.HandleFunc("/log", s.handleListLog).Methods(http.MethodGet)
	v1.HandleFunc("/log", s.handleAppendLog).Methods(http.MethodPost)
	v1.HandleFunc("/log", s.handleResetLog).Methods(http.MethodDelete)

	v1.HandleFunc("/goals", s.handleGetGoals).Methods(http.MethodGet)
	v1.HandleFunc("/goals", s.handlePutGoals).Methods(http.MethodPut)
	v1.HandleFunc("/theme", s.handleGetTheme).Methods(http.MethodGet)
	v1.HandleFunc("/theme", s.handlePutTheme).Methods(http.MethodPut)

	v1.HandleFunc("/chart.svg", s.handleChart).Methods(http.MethodGet)
	v1.HandleFunc("/barcode/{code}", s.handleBarcode).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// Run starts the HTTP endpoints and the inbox watcher until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.refresh("startup", nil)

	if s.cfg.InboxDir != "" {
		if s.cfg.Analyzer == nil {
			log.Printf("mealradar serve: inbox %s disabled: no Gemini API key", s.cfg.InboxDir)
		} else {
			inbox, err := newInbox(s.cfg.InboxDir, s)
			if err != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
				return fmt.Errorf("watching inbox: %w", err)
			}
			defer func() { _ = inbox.Close() }()
			go inbox.Watch(ctx)
			log.Printf("mealradar serve: watching %s for meal photos", s.cfg.InboxDir)
		}
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("mealradar http server: %w", err)
	}
}

// refresh re-aggregates the log and publishes the change. The first call
// publishes a snapshot event; later calls publish log_changed when anything
// moved.
func (s *Service) refresh(reason string, entry *model.FoodEntry) {
	dash, err := s.cfg.Journal.Dashboard()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		log.Printf("mealradar serve: reading log: %v", err)
		return
	}

	now := time.Now()
	snap := snapshotFromDashboard(dash, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Reason:    reason,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() || prev.Goals != snap.Goals {
			s.nextEventID++
			s.changeCount++
			s.lastChangeAt = now
			ev = Event{
				ID:        s.nextEventID,
				Type:      EventLogChanged,
				Reason:    reason,
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
				Entry:     entry,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromDashboard(d model.Dashboard, at time.Time) Snapshot {
	return Snapshot{
		At:               at,
		Entries:          d.Entries,
		Totals:           d.Totals,
		Goals:            d.Goals,
		CaloriesProgress: d.CaloriesProgress,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Entries:  curr.Entries - prev.Entries,
		Calories: curr.Totals.Calories - prev.Totals.Calories,
		Protein:  curr.Totals.Protein - prev.Totals.Protein,
		Carbs:    curr.Totals.Carbohydrates - prev.Totals.Carbohydrates,
		Fat:      curr.Totals.Fat - prev.Totals.Fat,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastChangeAt:    s.lastChangeAt,
		ChangeCount:     s.changeCount,
		InboxDir:        s.cfg.InboxDir,
		InboxLogged:     s.inboxLogged,
		Vision:          s.cfg.Analyzer != nil,
		Theme:           s.cfg.Journal.Theme().Name,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
