package favorites

import (
	"context"
	"log/slog"
	"time"

	"jtools/internal/catalog"
	"jtools/internal/logging"
	"jtools/internal/services"
	"jtools/internal/textutil"
)

// MinItemDelay is the pause after every imported item.
const MinItemDelay = 200 * time.Millisecond

// Options configures a Synchronizer.
type Options struct {
	// ItemDelay is the pause after each import item; values below
	// MinItemDelay are raised to it.
	ItemDelay time.Duration
	// Progress, when set, is called after each import item.
	Progress func(Progress)
	// Sleep waits between items. It defaults to a context-aware timer.
	Sleep func(context.Context, time.Duration) error
	// Now stamps exports. It defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Synchronizer exports and imports favorites through a catalog.
type Synchronizer struct {
	catalog   catalog.Catalog
	itemDelay time.Duration
	progress  func(Progress)
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
	logger    *slog.Logger
}

// NewSynchronizer constructs a Synchronizer.
func NewSynchronizer(c catalog.Catalog, opts Options) *Synchronizer {
	s := &Synchronizer{
		catalog:   c,
		itemDelay: max(opts.ItemDelay, MinItemDelay),
		progress:  opts.Progress,
		sleep:     opts.Sleep,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = logging.NewComponentLogger(s.logger, "favorites")
	return s
}

// Export collects the user's favorite movies and people. A listing that
// fails leaves its field empty; only cancellation is returned as an error.
func (s *Synchronizer) Export(ctx context.Context, userID string) (Snapshot, error) {
	ctx = services.WithUserID(services.WithOperation(ctx, "export"), userID)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("export started", logging.String(logging.FieldEventType, "export_started"))

	movies, err := s.catalog.ListFavoriteMovies(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}
		logging.WarnWithContext(logger, "favorite movies unavailable; exporting none", "export_movies_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Describe(err)),
			logging.String(logging.FieldImpact, "snapshot will not contain movies"),
		)
		movies = nil
	}

	people, err := s.catalog.ListFavoritePeople(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}
		logging.WarnWithContext(logger, "favorite people unavailable; exporting none", "export_people_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Describe(err)),
			logging.String(logging.FieldImpact, "snapshot will not contain people"),
		)
		people = nil
	} else if len(people) == 0 {
		logger.Warn("no favorite people found; check the user id and token permissions",
			logging.String(logging.FieldEventType, "export_people_empty"),
		)
	}

	snapshot := Snapshot{
		ExportDate:     s.now().Local().Format(ExportDateLayout),
		ServerURL:      s.catalog.ServerURL(),
		UserID:         userID,
		FavoriteMovies: movies,
		FavoritePeople: people,
	}
	logger.Info("export complete",
		logging.String(logging.FieldEventType, "export_complete"),
		logging.Int("movies", len(movies)),
		logging.Int("people", len(people)),
	)
	return snapshot, nil
}

// Import marks every snapshot item as favorite for userID, movies first.
// On cancellation the partial outcome is returned with ctx.Err().
func (s *Synchronizer) Import(ctx context.Context, userID string, snapshot Snapshot) (Outcome, error) {
	ctx = services.WithUserID(services.WithOperation(ctx, "import"), userID)
	logger := logging.WithContext(ctx, s.logger)

	outcome := Outcome{
		TotalMovies: len(snapshot.FavoriteMovies),
		TotalPeople: len(snapshot.FavoritePeople),
	}
	run := importRun{
		sync:    s,
		userID:  userID,
		outcome: &outcome,
		overall: outcome.Total(),
		sampler: logging.NewProgressSampler(10),
		logger:  logger,
	}
	logger.Info("import started",
		logging.String(logging.FieldEventType, "import_started"),
		logging.Int("movies", outcome.TotalMovies),
		logging.Int("people", outcome.TotalPeople),
		logging.String("source_server", snapshot.ServerURL),
	)

	for i, movie := range snapshot.FavoriteMovies {
		if err := ctx.Err(); err != nil {
			return run.cancelled(err)
		}
		imported := s.importMovie(ctx, logger, userID, movie)
		if err := run.finish(ctx, KindMovie, i, outcome.TotalMovies, movie.Name, imported); err != nil {
			return run.cancelled(err)
		}
	}
	for i, person := range snapshot.FavoritePeople {
		if err := ctx.Err(); err != nil {
			return run.cancelled(err)
		}
		imported := s.importPerson(ctx, logger, userID, person)
		if err := run.finish(ctx, KindPerson, i, outcome.TotalPeople, person.Name, imported); err != nil {
			return run.cancelled(err)
		}
	}

	logger.Info("import complete",
		logging.String(logging.FieldEventType, "import_complete"),
		logging.Int("imported_movies", outcome.ImportedMovies),
		logging.Int("failed_movies", outcome.FailedMovies),
		logging.Int("imported_people", outcome.ImportedPeople),
		logging.Int("failed_people", outcome.FailedPeople),
	)
	return outcome, nil
}

type importRun struct {
	sync      *Synchronizer
	userID    string
	outcome   *Outcome
	completed int
	overall   int
	sampler   *logging.ProgressSampler
	logger    *slog.Logger
}

// finish records an attempted item, reports progress, and waits the item
// delay. A non-nil error means the context ended; the interrupted item is
// not recorded.
func (r *importRun) finish(ctx context.Context, kind Kind, index, total int, name string, imported bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.outcome.record(kind, name, imported)
	r.completed++
	if !imported {
		r.logger.Warn("favorite not imported",
			logging.String(logging.FieldEventType, "import_item_failed"),
			logging.String("kind", string(kind)),
			logging.String("name", name),
		)
	}
	if r.sampler.ShouldLog("import", r.completed, r.overall) {
		r.logger.Info("import progress",
			logging.Int("completed", r.completed),
			logging.Int("total", r.overall),
		)
	}
	if r.sync.progress != nil {
		r.sync.progress(Progress{
			Kind:      kind,
			Index:     index + 1,
			Total:     total,
			Name:      name,
			Imported:  imported,
			Completed: r.completed,
			Overall:   r.overall,
		})
	}
	return r.sync.sleep(ctx, r.sync.itemDelay)
}

func (r *importRun) cancelled(err error) (Outcome, error) {
	logging.WarnWithContext(r.logger, "import cancelled", "import_cancelled",
		logging.Int("completed", r.completed),
		logging.Int("total", r.overall),
		logging.String(logging.FieldImpact, "remaining favorites were not imported"),
	)
	return *r.outcome, err
}

func (s *Synchronizer) importMovie(ctx context.Context, logger *slog.Logger, userID string, movie catalog.Movie) bool {
	logger = logger.With(logging.String("kind", string(KindMovie)), logging.String("name", movie.Name))
	logState(logger, StatePending)

	err := s.catalog.SetMovieFavorite(ctx, userID, movie.ID, true)
	if err == nil {
		logState(logger, StateIDMatched)
		return true
	}
	logState(logger, StateIDFailed, logging.Error(err))
	if ctx.Err() != nil {
		return false
	}

	results, err := s.catalog.SearchMoviesByName(ctx, movie.Name)
	logState(logger, StateSearched, logging.Int("results", len(results)))
	if err != nil {
		logState(logger, StateUnmatched, logging.Error(err))
		return false
	}
	for _, candidate := range results {
		if candidate.Name == movie.Name || catalog.Deref(candidate.OriginalTitle) == movie.Name {
			logState(logger, StateNameMatched, logging.String("matched_id", candidate.ID))
			if err := s.catalog.SetMovieFavorite(ctx, userID, candidate.ID, true); err != nil {
				logState(logger, StateFailed, logging.Error(err))
				return false
			}
			logState(logger, StateImported)
			return true
		}
	}

	names := make([]string, 0, len(results))
	for _, candidate := range results {
		names = append(names, candidate.Name)
	}
	logUnmatched(logger, movie.Name, names)
	return false
}

func (s *Synchronizer) importPerson(ctx context.Context, logger *slog.Logger, userID string, person catalog.Person) bool {
	logger = logger.With(logging.String("kind", string(KindPerson)), logging.String("name", person.Name))
	logState(logger, StatePending)

	err := s.catalog.SetPersonFavorite(ctx, userID, person.ID, true)
	if err == nil {
		logState(logger, StateIDMatched)
		return true
	}
	logState(logger, StateIDFailed, logging.Error(err))
	if ctx.Err() != nil {
		return false
	}

	results, err := s.catalog.SearchPeopleByName(ctx, person.Name)
	logState(logger, StateSearched, logging.Int("results", len(results)))
	if err != nil {
		logState(logger, StateUnmatched, logging.Error(err))
		return false
	}
	for _, candidate := range results {
		if candidate.Name == person.Name {
			logState(logger, StateNameMatched, logging.String("matched_id", candidate.ID))
			if err := s.catalog.SetPersonFavorite(ctx, userID, candidate.ID, true); err != nil {
				logState(logger, StateFailed, logging.Error(err))
				return false
			}
			logState(logger, StateImported)
			return true
		}
	}

	names := make([]string, 0, len(results))
	for _, candidate := range results {
		names = append(names, candidate.Name)
	}
	logUnmatched(logger, person.Name, names)
	return false
}

func logState(logger *slog.Logger, state State, attrs ...logging.Attr) {
	logger.Debug("import item", append([]any{logging.String("state", string(state))}, logging.Args(attrs...)...)...)
}

// logUnmatched records the unmatched state with the closest search result,
// if any, so near misses (casing, punctuation) are visible in debug logs.
func logUnmatched(logger *slog.Logger, name string, candidates []string) {
	idx, score := textutil.Closest(name, candidates)
	if idx < 0 {
		logState(logger, StateUnmatched)
		return
	}
	logState(logger, StateUnmatched,
		logging.String("closest", candidates[idx]),
		logging.Float64("similarity", score),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
