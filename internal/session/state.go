package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"jtools/internal/catalog"
	"jtools/internal/duplicates"
	"jtools/internal/favorites"
	"jtools/internal/logging"
	"jtools/internal/resolution"
	"jtools/internal/services"
)

// ErrBusy is returned when a workflow is started while another is running.
var ErrBusy = services.ErrBusy

const defaultEventBuffer = 64

// Options configures a State.
type Options struct {
	Logger *slog.Logger
	// EventBuffer is the capacity of the events channel.
	EventBuffer int
	// RealtimeLogs forwards workflow log records as EventLog events.
	RealtimeLogs bool
	// DetailedLogs lowers the forwarded log level to debug.
	DetailedLogs bool
	// Favorites configures the synchronizer used by export and import.
	// Progress is overridden to publish events.
	Favorites favorites.Options
}

// Status describes the running workflow, if any.
type Status struct {
	Running  bool
	Workflow Workflow
	RunID    string
	Started  time.Time
	// Dropped counts progress and log events discarded because the event
	// buffer was full.
	Dropped uint64
}

// State serializes workflows and publishes their events.
type State struct {
	opts    Options
	logger  *slog.Logger
	events  chan Event
	dropped atomic.Uint64

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs an idle State.
func New(opts Options) *State {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &State{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "session"),
		events: make(chan Event, opts.EventBuffer),
	}
}

// Events returns the channel every workflow publishes to. Progress and log
// events are dropped when the channel is full; started and terminal events
// are always delivered, so the channel must be drained.
func (s *State) Events() <-chan Event {
	return s.events
}

// Status returns a copy of the current run status.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.Dropped = s.dropped.Load()
	return status
}

// Cancel stops the running workflow. It is a no-op when idle.
func (s *State) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the running workflow, if any, has published its terminal
// event.
func (s *State) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// StartConnect tests the connection and lists the server's users.
func (s *State) StartConnect(ctx context.Context, c catalog.Catalog) (string, error) {
	return s.start(ctx, WorkflowConnect, func(ctx context.Context, _ *run) (any, error) {
		if err := c.TestConnection(ctx); err != nil {
			return nil, err
		}
		return c.ListUsers(ctx)
	})
}

// StartExport exports the user's favorites.
func (s *State) StartExport(ctx context.Context, c catalog.Catalog, userID string) (string, error) {
	return s.start(ctx, WorkflowExport, func(ctx context.Context, r *run) (any, error) {
		return favorites.NewSynchronizer(c, r.favoritesOptions()).Export(ctx, userID)
	})
}

// StartImport applies snapshot to the user's favorites.
func (s *State) StartImport(ctx context.Context, c catalog.Catalog, userID string, snapshot favorites.Snapshot) (string, error) {
	return s.start(ctx, WorkflowImport, func(ctx context.Context, r *run) (any, error) {
		return favorites.NewSynchronizer(c, r.favoritesOptions()).Import(ctx, userID, snapshot)
	})
}

// StartDuplicateScan scans the user's library for duplicates.
func (s *State) StartDuplicateScan(ctx context.Context, c catalog.Catalog, userID string) (string, error) {
	return s.start(ctx, WorkflowDuplicates, func(ctx context.Context, r *run) (any, error) {
		return duplicates.NewScanner(c, r.logger).Scan(ctx, userID)
	})
}

// StartResolutionScan lists the user's movies below criteria.
func (s *State) StartResolutionScan(ctx context.Context, c catalog.Catalog, userID string, criteria resolution.Criteria) (string, error) {
	return s.start(ctx, WorkflowResolution, func(ctx context.Context, r *run) (any, error) {
		return resolution.NewScanner(c, r.logger).Scan(ctx, userID, criteria)
	})
}

// StartStatistics computes resolution bucket statistics for the user's library.
func (s *State) StartStatistics(ctx context.Context, c catalog.Catalog, userID string) (string, error) {
	return s.start(ctx, WorkflowStatistics, func(ctx context.Context, r *run) (any, error) {
		return resolution.NewScanner(c, r.logger).Stats(ctx, userID)
	})
}

type workFunc func(context.Context, *run) (any, error)

type run struct {
	state    *State
	id       string
	workflow Workflow
	logger   *slog.Logger
}

func (s *State) start(parent context.Context, workflow Workflow, work workFunc) (string, error) {
	if parent == nil {
		parent = context.Background()
	}

	s.mu.Lock()
	if s.status.Running {
		current := s.status.Workflow
		s.mu.Unlock()
		return "", services.Wrap(ErrBusy, "session", string(workflow), fmt.Sprintf("%s is still running", current), nil)
	}
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(services.WithRequestID(parent, id))
	done := make(chan struct{})
	s.status = Status{Running: true, Workflow: workflow, RunID: id, Started: time.Now()}
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	r := &run{state: s, id: id, workflow: workflow}
	r.logger = s.runLogger(r)

	s.publish(Event{RunID: id, Workflow: workflow, Type: EventStarted}, true)
	s.logger.Debug("workflow started", logging.String("workflow", string(workflow)), logging.String("run_id", id))

	go func() {
		defer close(done)
		defer cancel()

		result, err := work(ctx, r)

		// Release the guard before the terminal event so a consumer that
		// reacts to it can start the next workflow.
		s.mu.Lock()
		s.status = Status{}
		s.cancel = nil
		s.mu.Unlock()

		event := Event{RunID: id, Workflow: workflow, Type: EventFinished, Result: result}
		if err != nil {
			event.Type = EventFailed
			event.Err = err
			event.Result = partialResult(result)
		}
		s.publish(event, true)
	}()
	return id, nil
}

// partialResult keeps only results that are meaningful after a failure.
func partialResult(result any) any {
	if outcome, ok := result.(favorites.Outcome); ok {
		return outcome
	}
	return nil
}

func (s *State) runLogger(r *run) *slog.Logger {
	if !s.opts.RealtimeLogs {
		return s.opts.Logger
	}
	level := slog.LevelInfo
	if s.opts.DetailedLogs {
		level = slog.LevelDebug
	}
	sink := logging.NewSinkHandler(func(entry logging.Entry) {
		s.publish(Event{RunID: r.id, Workflow: r.workflow, Type: EventLog, Log: &entry}, false)
	}, level)
	return logging.TeeLogger(s.opts.Logger, sink)
}

func (r *run) favoritesOptions() favorites.Options {
	opts := r.state.opts.Favorites
	opts.Logger = r.logger
	opts.Progress = func(p favorites.Progress) {
		r.state.publish(Event{RunID: r.id, Workflow: r.workflow, Type: EventProgress, Progress: &p}, false)
	}
	return opts
}

func (s *State) publish(event Event, required bool) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	if required {
		s.events <- event
		return
	}
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
}
