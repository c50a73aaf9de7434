package duplicates

import (
	"context"
	"log/slog"

	"jtools/internal/catalog"
	"jtools/internal/logging"
	"jtools/internal/services"
)

// Scanner detects duplicates in a user's library.
type Scanner struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewScanner constructs a Scanner.
func NewScanner(c catalog.Catalog, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{catalog: c, logger: logging.NewComponentLogger(logger, "duplicates")}
}

// Scan fetches the whole library and groups duplicates. A fetch failure is
// logged and yields an empty result; only cancellation is returned as an error.
func (s *Scanner) Scan(ctx context.Context, userID string) (ScanResult, error) {
	ctx = services.WithOperation(ctx, "duplicate scan")
	logger := logging.WithContext(ctx, s.logger)

	movies, err := s.catalog.ListAllMovies(ctx, userID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Detect(nil), ctxErr
		}
		logging.WarnWithContext(logger, "library fetch failed; treating as empty", "library_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Describe(err)),
		)
		movies = nil
	}

	result := Detect(movies)
	logger.Info("duplicate scan complete",
		logging.String(logging.FieldEventType, "duplicate_scan_complete"),
		logging.Int("total_movies", result.TotalMoviesScanned),
		logging.Int("groups", len(result.Groups)),
		logging.Int("excess_copies", result.TotalDuplicateExcess),
	)
	return result, nil
}
