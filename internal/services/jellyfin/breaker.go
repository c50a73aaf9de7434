package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"jtools/internal/catalog"
	"jtools/internal/logging"
	"jtools/internal/services"
)

var _ catalog.Catalog = (*BreakerClient)(nil)

// BreakerSettings tunes the circuit breaker placed in front of a Client.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 10 requests
// and lets trial requests through again after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerClient wraps a catalog with a circuit breaker on the connection test
// and listing calls, so a dead server fails fast instead of costing one
// timeout per listing page.
type BreakerClient struct {
	next   catalog.Catalog
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

// NewBreakerClient wraps next with circuit breaker protection.
func NewBreakerClient(next catalog.Catalog, settings BreakerSettings, logger *slog.Logger) *BreakerClient {
	logger = componentLogger(logger)
	defaults := DefaultBreakerSettings()
	if settings.MaxRequests == 0 {
		settings.MaxRequests = defaults.MaxRequests
	}
	if settings.Interval <= 0 {
		settings.Interval = defaults.Interval
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.MinRequests == 0 {
		settings.MinRequests = defaults.MinRequests
	}
	if settings.FailureRatio <= 0 || settings.FailureRatio > 1 {
		settings.FailureRatio = defaults.FailureRatio
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "jellyfin-api",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio < settings.FailureRatio {
				return false
			}
			logging.WarnWithContext(logger, "jellyfin circuit opening", "circuit_open",
				logging.Int64("failures", int64(counts.TotalFailures)),
				logging.Float64("failure_ratio", ratio),
				logging.String(logging.FieldErrorHint, "verify the Jellyfin server is reachable"),
				logging.String(logging.FieldImpact, "remaining requests fail fast until the server recovers"),
			)
			return true
		},
		// Stale item ids and cancellations say nothing about server health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, services.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	})

	return &BreakerClient{next: next, cb: cb, logger: logger}
}

// State reports the breaker state name (closed, half-open, open).
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

func (b *BreakerClient) execute(operation string, fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		return nil, services.Wrap(services.ErrConnectivity, component, operation, "request rejected by circuit breaker", err)
	}
	return result, err
}

func executeTyped[T any](b *BreakerClient, operation string, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.execute(operation, func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T for %s", result, operation)
	}
	return typed, nil
}

func (b *BreakerClient) ServerURL() string {
	return b.next.ServerURL()
}

func (b *BreakerClient) TestConnection(ctx context.Context) error {
	_, err := b.execute("test connection", func() (any, error) {
		return nil, b.next.TestConnection(ctx)
	})
	return err
}

func (b *BreakerClient) ListUsers(ctx context.Context) ([]catalog.User, error) {
	return executeTyped(b, "list users", func() ([]catalog.User, error) {
		return b.next.ListUsers(ctx)
	})
}

func (b *BreakerClient) ListAllMovies(ctx context.Context, userID string) ([]catalog.Movie, error) {
	return executeTyped(b, "list movies", func() ([]catalog.Movie, error) {
		return b.next.ListAllMovies(ctx, userID)
	})
}

func (b *BreakerClient) ListFavoriteMovies(ctx context.Context, userID string) ([]catalog.Movie, error) {
	return executeTyped(b, "list favorite movies", func() ([]catalog.Movie, error) {
		return b.next.ListFavoriteMovies(ctx, userID)
	})
}

func (b *BreakerClient) ListFavoritePeople(ctx context.Context, userID string) ([]catalog.Person, error) {
	return executeTyped(b, "list favorite people", func() ([]catalog.Person, error) {
		return b.next.ListFavoritePeople(ctx, userID)
	})
}

// Favorite toggles and searches bypass the breaker. Import attempts every
// item once, so an open circuit must not fail items that were never sent.

func (b *BreakerClient) SetMovieFavorite(ctx context.Context, userID, movieID string, favorite bool) error {
	return b.next.SetMovieFavorite(ctx, userID, movieID, favorite)
}

func (b *BreakerClient) SetPersonFavorite(ctx context.Context, userID, personID string, favorite bool) error {
	return b.next.SetPersonFavorite(ctx, userID, personID, favorite)
}

func (b *BreakerClient) SearchMoviesByName(ctx context.Context, name string) ([]catalog.Movie, error) {
	return b.next.SearchMoviesByName(ctx, name)
}

func (b *BreakerClient) SearchPeopleByName(ctx context.Context, name string) ([]catalog.Person, error) {
	return b.next.SearchPeopleByName(ctx, name)
}
