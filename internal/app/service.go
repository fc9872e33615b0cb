// Package service wires the data source, the load workers and the view state,
// and notifies render sinks of every change.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	eventqueue "github.com/okian/bassboard/internal/adapters/mq/queue"
	workerpool "github.com/okian/bassboard/internal/adapters/mq/worker"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/viewstate"
	"github.com/okian/bassboard/pkg/logger"
	"github.com/okian/bassboard/pkg/metrics"
)

// Load policies for the non-current tabs of a newly selected event.
const (
	PolicyEager = "eager"
	PolicyLazy  = "lazy"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 64
	idlePollInterval   = 10 * time.Millisecond
)

// Status messages shown by render sinks.
const (
	msgLoadingEvents = "Loading events…"
	msgLoadedEvents  = "Loaded %d events."
	msgEventsError   = "Error loading events: %v"
	msgLoadingDetail = "Loading event detail…"
	msgDetailError   = "Error loading event detail: %v"
)

// Pending sink notifications.
const (
	dirtyStatus uint32 = 1 << iota
	dirtyView
)

// Source fetches events and leaderboards.
type Source interface {
	Events(ctx context.Context) ([]model.Event, error)
	Leaderboard(ctx context.Context, eventID string, tab model.Tab) (model.Board, error)
}

// Status is the user-visible status line.
type Status struct {
	Message string    `json:"message"`
	Error   bool      `json:"error"`
	At      time.Time `json:"at"`
}

// Sink renders service state. Methods are called from worker goroutines and
// must not block for long.
type Sink interface {
	Events(events []model.Event)
	View(s viewstate.Snapshot)
	Status(st Status)
}

// Service implements the dashboard controller.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     Source
	view       *viewstate.ViewState
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	sinks      []Sink

	// Configuration
	workerCount int
	queueSize   int
	tabs        []model.Tab
	defaultTab  model.Tab
	loadPolicy  string

	// State
	dataMu  sync.RWMutex
	events  []model.Event
	status  Status
	started bool
	cancel  context.CancelFunc

	// Notification
	notifyMu sync.Mutex
	dirty    atomic.Uint32

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the data source.
func WithSource(src Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithSink adds a render sink.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithTabs sets the enabled tabs in display order.
func WithTabs(tabs ...model.Tab) Option {
	return func(s *Service) {
		if len(tabs) > 0 {
			s.tabs = slices.Clone(tabs)
		}
	}
}

// WithDefaultTab sets the tab shown first.
func WithDefaultTab(tab model.Tab) Option {
	return func(s *Service) {
		if tab != "" {
			s.defaultTab = tab
		}
	}
}

// WithLoadPolicy sets "eager" or "lazy" loading of non-current tabs.
func WithLoadPolicy(policy string) Option {
	return func(s *Service) {
		if policy == PolicyEager || policy == PolicyLazy {
			s.loadPolicy = policy
		}
	}
}

// WithWorkerCount sets the number of fetch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued loads.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		tabs:        slices.Clone(model.AllTabs),
		defaultTab:  model.TabTotal,
		loadPolicy:  PolicyEager,
		events:      []model.Event{},
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.view = viewstate.New(
		viewstate.WithTabs(s.tabs...),
		viewstate.WithDefaultTab(s.defaultTab),
	)
	return s
}

// AddSink registers a sink after construction.
func (s *Service) AddSink(sink Sink) {
	if sink == nil {
		return
	}
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// Start starts the load workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}
	s.logger.Info(ctx, "starting dashboard service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.source, s,
		workerpool.WithLogger(s.logger.Named("worker")))
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("loadPolicy", s.loadPolicy),
	)
	return nil
}

// Stop shuts down the workers. Loads still in flight are cancelled and their
// failures are not shown.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping dashboard service...")
	pool, cancel := s.workerPool, s.cancel
	s.started = false
	s.mu.Unlock()

	// Workers call back into the service, so s.mu must not be held here.
	if cancel != nil {
		cancel()
	}
	if pool != nil {
		_ = pool.Shutdown(context.Background())
	}
	s.logger.Info(context.Background(), "dashboard service stopped")
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// LoadEvents refreshes the events list. The previous list is kept on error.
func (s *Service) LoadEvents(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}
	s.setStatus(msgLoadingEvents, false)

	events, err := s.source.Events(ctx)
	if err != nil {
		s.logger.Warn(ctx, "loading events failed", logger.Error(err))
		s.setStatus(fmt.Sprintf(msgEventsError, err), true)
		return fmt.Errorf("load events: %w", err)
	}

	s.dataMu.Lock()
	s.events = events
	s.dataMu.Unlock()
	metrics.UpdateEventsListed(len(events))

	for _, sink := range s.sinkList() {
		sink.Events(slices.Clone(events))
	}
	s.setStatus(fmt.Sprintf(msgLoadedEvents, len(events)), false)
	return nil
}

// SelectEvent opens the detail view of eventID and queues its loads: the
// current tab first, then, under the eager policy, every other tab.
func (s *Service) SelectEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrEmptyEventID
	}
	if !s.isStarted() {
		return ErrNotStarted
	}

	ticket := s.view.SelectEvent(eventID)
	metrics.RecordSelection("event")
	metrics.ResetBoardRows()
	s.logger.Debug(ctx, "event selected",
		logger.String("event_id", eventID),
		logger.Any("generation", ticket.Generation),
	)
	s.setStatus(msgLoadingDetail, false)

	err := s.enqueue(ctx, ticket)
	if err == nil && s.loadPolicy == PolicyEager {
		for _, tab := range s.tabs {
			if t, ok := s.view.Request(tab); ok {
				if err = s.enqueue(ctx, t); err != nil {
					break
				}
			}
		}
	}
	s.notifyView()
	return err
}

// SelectTab makes tab current and queues its load when it is not loaded yet.
func (s *Service) SelectTab(ctx context.Context, tab model.Tab) error {
	if !s.view.HasTab(tab) {
		return fmt.Errorf("%w: %q", model.ErrUnknownTab, tab)
	}

	ticket, need := s.view.SelectTab(tab)
	metrics.RecordSelection("tab")

	var err error
	if need {
		if !s.isStarted() {
			s.view.Fail(ticket)
			return ErrNotStarted
		}
		s.setStatus(msgLoadingDetail, false)
		err = s.enqueue(ctx, ticket)
	}
	s.notifyView()
	return err
}

// SelectRow selects a row of the current tab. Out of range indexes are
// ignored and reported as false.
func (s *Service) SelectRow(ctx context.Context, index int) bool {
	if !s.view.SelectRow(index) {
		metrics.RecordRowSelectionIgnored()
		s.logger.Debug(ctx, "row selection ignored", logger.Int("index", index))
		return false
	}
	metrics.RecordSelection("row")
	s.notifyView()
	return true
}

// Back returns to the events view and clears the status line.
func (s *Service) Back(_ context.Context) {
	s.view.Back()
	metrics.ResetBoardRows()
	s.setStatus("", false)
	s.notifyView()
}

func (s *Service) enqueue(ctx context.Context, t viewstate.Ticket) error {
	if s.eventQueue.Enqueue(ctx, t) {
		return nil
	}
	s.view.Fail(t)
	s.setStatus(fmt.Sprintf(msgDetailError, ErrQueueFull), true)
	return ErrQueueFull
}

// Current reports whether a queued load still matches the selection.
func (s *Service) Current(t viewstate.Ticket) bool {
	return s.view.Current(t)
}

// Apply stores a loaded board. Stale boards are dropped and counted.
func (s *Service) Apply(ctx context.Context, t viewstate.Ticket, b model.Board) error {
	if err := s.view.Apply(t, b); err != nil {
		if errors.Is(err, viewstate.ErrEventMismatch) {
			s.logger.Warn(ctx, "leaderboard is for another event",
				logger.String("event_id", t.EventID),
				logger.String("board_event_id", b.EventID),
				logger.String("tab", string(t.Tab)),
			)
			metrics.RecordErrorByComponent("service", "event_mismatch")
			if t.Tab == s.view.Tab() {
				s.setStatus(fmt.Sprintf(msgDetailError, err), true)
			}
			s.notifyView()
			return err
		}
		if errors.Is(err, viewstate.ErrStaleResponse) {
			metrics.RecordStaleDiscarded(string(t.Tab))
			s.logger.Debug(ctx, "discarding stale response",
				logger.String("ticket_event_id", t.EventID),
				logger.String("board_event_id", b.EventID),
				logger.String("current_event_id", s.view.EventID()),
				logger.String("tab", string(t.Tab)),
			)
		}
		return err
	}

	metrics.UpdateBoardRows(string(t.Tab), len(b.Rows))
	if t.Tab == s.view.Tab() {
		s.setStatus("", false)
	}
	s.notifyView()
	return nil
}

// Fail records a failed load. Failures for stale tickets are not shown.
func (s *Service) Fail(ctx context.Context, t viewstate.Ticket, err error) {
	current := s.view.Current(t)
	s.view.Fail(t)
	if !current {
		metrics.RecordStaleDiscarded(string(t.Tab))
		return
	}
	if errors.Is(err, context.Canceled) && !s.isStarted() {
		s.logger.Debug(ctx, "load cancelled by shutdown",
			logger.String("event_id", t.EventID),
			logger.String("tab", string(t.Tab)),
		)
		return
	}
	s.logger.Warn(ctx, "loading leaderboard failed",
		logger.String("event_id", t.EventID),
		logger.String("tab", string(t.Tab)),
		logger.Error(err),
	)
	if t.Tab == s.view.Tab() {
		s.setStatus(fmt.Sprintf(msgDetailError, err), true)
	}
	s.notifyView()
}

// WaitIdle blocks until no load is pending for the selected event.
func (s *Service) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()
	for {
		if !s.anyPending() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) anyPending() bool {
	for _, tab := range s.tabs {
		if s.view.Pending(tab) {
			return true
		}
	}
	return false
}

// Events returns the last loaded events list.
func (s *Service) Events() []model.Event {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return slices.Clone(s.events)
}

// Event looks up an event of the last loaded list.
func (s *Service) Event(id string) (model.Event, bool) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// Snapshot returns the current view.
func (s *Service) Snapshot() viewstate.Snapshot {
	return s.view.Snapshot()
}

// Tabs returns the enabled tabs.
func (s *Service) Tabs() []model.Tab {
	return slices.Clone(s.tabs)
}

// Status returns the status line.
func (s *Service) Status() Status {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.status
}

func (s *Service) setStatus(msg string, isErr bool) {
	st := Status{Message: msg, Error: isErr, At: time.Now()}
	s.dataMu.Lock()
	s.status = st
	s.dataMu.Unlock()
	s.publish(dirtyStatus)
}

func (s *Service) notifyView() {
	s.publish(dirtyView)
}

// publish marks what changed and delivers it unless another goroutine is
// already delivering, in which case that goroutine picks the change up.
// Only one goroutine talks to the sinks at a time and it always reads the
// latest state, so a slow delivery can never land after a newer one.
func (s *Service) publish(what uint32) {
	s.dirty.Or(what)
	for s.dirty.Load() != 0 {
		if !s.notifyMu.TryLock() {
			return
		}
		for d := s.dirty.Swap(0); d != 0; d = s.dirty.Swap(0) {
			s.deliver(d)
		}
		s.notifyMu.Unlock()
	}
}

func (s *Service) deliver(what uint32) {
	sinks := s.sinkList()
	if len(sinks) == 0 {
		return
	}
	if what&dirtyStatus != 0 {
		st := s.Status()
		for _, sink := range sinks {
			sink.Status(st)
		}
	}
	if what&dirtyView != 0 {
		snap := s.view.Snapshot()
		for _, sink := range sinks {
			sink.View(snap)
		}
	}
}

func (s *Service) sinkList() []Sink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sinks)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.view.Snapshot()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"loadPolicy":  s.loadPolicy,
		"view":        snap.View,
		"eventID":     snap.EventID,
		"tab":         snap.Tab,
		"generation":  snap.Generation,
		"events":      len(s.Events()),
	}

	if s.started {
		stats["queueLength"] = s.eventQueue.Len(context.Background())
	}

	return stats
}
