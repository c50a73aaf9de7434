package catalog

import "context"

// Catalog is the remote catalog a workflow reads favorites from and writes
// favorite flags to. Implementations return errors tagged with the services
// markers; callers decide whether a failure degrades to an empty result.
type Catalog interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListAllMovies(ctx context.Context, userID string) ([]Movie, error)
	ListFavoriteMovies(ctx context.Context, userID string) ([]Movie, error)
	ListFavoritePeople(ctx context.Context, userID string) ([]Person, error)
	SetMovieFavorite(ctx context.Context, userID, movieID string, favorite bool) error
	SetPersonFavorite(ctx context.Context, userID, personID string, favorite bool) error
	SearchMoviesByName(ctx context.Context, name string) ([]Movie, error)
	SearchPeopleByName(ctx context.Context, name string) ([]Person, error)
	TestConnection(ctx context.Context) error
	ServerURL() string
}
