package resolution

import (
	"context"
	"log/slog"

	"jtools/internal/catalog"
	"jtools/internal/logging"
	"jtools/internal/services"
)

// Scanner runs resolution filters against a user's library.
type Scanner struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewScanner constructs a Scanner.
func NewScanner(c catalog.Catalog, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{catalog: c, logger: logging.NewComponentLogger(logger, "resolution")}
}

// Scan fetches the library and filters it by criteria. A library that
// cannot be fetched is treated as empty; the returned error is only set
// when ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, userID string, criteria Criteria) (FilterResult, error) {
	movies, err := s.library(ctx, userID)
	if err != nil {
		return Filter(nil, criteria), err
	}
	result := Filter(movies, criteria)
	logging.WithContext(ctx, s.logger).Info("resolution filter complete",
		logging.String(logging.FieldEventType, "resolution_scan_complete"),
		logging.Int("total_movies", result.TotalMovies),
		logging.Int("matches", len(result.Matches)),
		logging.Int("max_width", criteria.MaxWidth),
		logging.Int("max_height", criteria.MaxHeight),
		logging.Bool("include_unknown", criteria.IncludeUnknown),
	)
	return result, nil
}

// Stats fetches the library and computes bucket statistics.
func (s *Scanner) Stats(ctx context.Context, userID string) (Stats, error) {
	movies, err := s.library(ctx, userID)
	if err != nil {
		return Statistics(nil), err
	}
	return Statistics(movies), nil
}

func (s *Scanner) library(ctx context.Context, userID string) ([]catalog.Movie, error) {
	ctx = services.WithOperation(ctx, "resolution scan")
	logger := logging.WithContext(ctx, s.logger)
	movies, err := s.catalog.ListAllMovies(ctx, userID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logging.WarnWithContext(logger, "library fetch failed; treating as empty", "library_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Describe(err)),
		)
		return nil, nil
	}
	logger.Debug("library fetched", logging.Int("movies", len(movies)))
	return movies, nil
}
