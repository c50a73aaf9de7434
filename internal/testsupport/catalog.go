package testsupport

import (
	"context"
	"sync"

	"jtools/internal/catalog"
	"jtools/internal/services"
)

// Fake catalog method names used as keys for Errors and in Calls.
const (
	MethodListUsers          = "ListUsers"
	MethodListAllMovies      = "ListAllMovies"
	MethodListFavoriteMovies = "ListFavoriteMovies"
	MethodListFavoritePeople = "ListFavoritePeople"
	MethodSetMovieFavorite   = "SetMovieFavorite"
	MethodSetPersonFavorite  = "SetPersonFavorite"
	MethodSearchMovies       = "SearchMoviesByName"
	MethodSearchPeople       = "SearchPeopleByName"
	MethodTestConnection     = "TestConnection"
)

// Call records one invocation of the fake.
type Call struct {
	Method   string
	UserID   string
	Arg      string
	Favorite bool
}

// FakeCatalog is a scripted in-memory catalog.Catalog.
//
// Set-favorite calls succeed only for ids listed in KnownMovieIDs /
// KnownPersonIDs (nil accepts every id); other ids fail with
// services.ErrNotFound, the way a server rejects ids issued elsewhere.
type FakeCatalog struct {
	mu sync.Mutex

	URL            string
	Users          []catalog.User
	Library        []catalog.Movie
	FavoriteMovies []catalog.Movie
	FavoritePeople []catalog.Person
	MovieSearch    map[string][]catalog.Movie
	PeopleSearch   map[string][]catalog.Person
	KnownMovieIDs  map[string]bool
	KnownPersonIDs map[string]bool
	// Errors forces a method to fail with the given error.
	Errors map[string]error
	// OnCall runs before every method, outside the lock.
	OnCall func(Call)

	calls        []Call
	markedMovies []string
	markedPeople []string
}

var _ catalog.Catalog = (*FakeCatalog)(nil)

// NewFakeCatalog returns an empty fake that accepts every id.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{URL: "http://jellyfin.test"}
}

func (f *FakeCatalog) record(call Call) error {
	if f.OnCall != nil {
		f.OnCall(call)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if err, ok := f.Errors[call.Method]; ok {
		return err
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeCatalog) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how often method was invoked.
func (f *FakeCatalog) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MarkedMovies returns movie ids successfully marked favorite, in order.
func (f *FakeCatalog) MarkedMovies() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.markedMovies...)
}

// MarkedPeople returns person ids successfully marked favorite, in order.
func (f *FakeCatalog) MarkedPeople() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.markedPeople...)
}

func (f *FakeCatalog) ServerURL() string { return f.URL }

func (f *FakeCatalog) TestConnection(ctx context.Context) error {
	if err := f.record(Call{Method: MethodTestConnection}); err != nil {
		return err
	}
	return ctx.Err()
}

func (f *FakeCatalog) ListUsers(ctx context.Context) ([]catalog.User, error) {
	if err := f.record(Call{Method: MethodListUsers}); err != nil {
		return nil, err
	}
	return f.Users, ctx.Err()
}

func (f *FakeCatalog) ListAllMovies(ctx context.Context, userID string) ([]catalog.Movie, error) {
	if err := f.record(Call{Method: MethodListAllMovies, UserID: userID}); err != nil {
		return nil, err
	}
	return f.Library, ctx.Err()
}

func (f *FakeCatalog) ListFavoriteMovies(ctx context.Context, userID string) ([]catalog.Movie, error) {
	if err := f.record(Call{Method: MethodListFavoriteMovies, UserID: userID}); err != nil {
		return nil, err
	}
	return f.FavoriteMovies, ctx.Err()
}

func (f *FakeCatalog) ListFavoritePeople(ctx context.Context, userID string) ([]catalog.Person, error) {
	if err := f.record(Call{Method: MethodListFavoritePeople, UserID: userID}); err != nil {
		return nil, err
	}
	return f.FavoritePeople, ctx.Err()
}

func (f *FakeCatalog) SetMovieFavorite(ctx context.Context, userID, movieID string, favorite bool) error {
	if err := f.record(Call{Method: MethodSetMovieFavorite, UserID: userID, Arg: movieID, Favorite: favorite}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.KnownMovieIDs != nil && !f.KnownMovieIDs[movieID] {
		return services.Wrap(services.ErrNotFound, "fake", "set movie favorite", movieID, nil)
	}
	if favorite {
		f.markedMovies = append(f.markedMovies, movieID)
	}
	return nil
}

func (f *FakeCatalog) SetPersonFavorite(ctx context.Context, userID, personID string, favorite bool) error {
	if err := f.record(Call{Method: MethodSetPersonFavorite, UserID: userID, Arg: personID, Favorite: favorite}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.KnownPersonIDs != nil && !f.KnownPersonIDs[personID] {
		return services.Wrap(services.ErrNotFound, "fake", "set person favorite", personID, nil)
	}
	if favorite {
		f.markedPeople = append(f.markedPeople, personID)
	}
	return nil
}

func (f *FakeCatalog) SearchMoviesByName(ctx context.Context, name string) ([]catalog.Movie, error) {
	if err := f.record(Call{Method: MethodSearchMovies, Arg: name}); err != nil {
		return nil, err
	}
	return f.MovieSearch[name], ctx.Err()
}

func (f *FakeCatalog) SearchPeopleByName(ctx context.Context, name string) ([]catalog.Person, error) {
	if err := f.record(Call{Method: MethodSearchPeople, Arg: name}); err != nil {
		return nil, err
	}
	return f.PeopleSearch[name], ctx.Err()
}
