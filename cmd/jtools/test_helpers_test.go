package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"jtools/internal/catalog"
	"jtools/internal/config"
	"jtools/internal/testsupport"
)

const testToken = "test-token"

// fakeJellyfin serves the subset of the Jellyfin API the commands use.
type fakeJellyfin struct {
	mu             sync.Mutex
	users          []catalog.User
	library        []catalog.Movie
	favoriteMovies []catalog.Movie
	favoritePeople []catalog.Person
	people         []catalog.Person
	marked         []string

	server *httptest.Server
}

func newFakeJellyfin(t *testing.T) *fakeJellyfin {
	t.Helper()
	f := &fakeJellyfin{
		users: []catalog.User{
			{ID: "user-1", Name: "alice"},
			{ID: "user-2", Name: "bob", HasPassword: true},
		},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeJellyfin) URL() string {
	return f.server.URL
}

func (f *fakeJellyfin) Marked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.marked...)
}

func (f *fakeJellyfin) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Emby-Token") != testToken {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	query := r.URL.Query()
	switch {
	case path == "/System/Info":
		writeTestJSON(w, catalog.SystemInfo{ServerName: "fake", Version: "10.9.0", ID: "srv"})
	case path == "/Users":
		writeTestJSON(w, f.users)
	case strings.Contains(path, "/FavoriteItems/"):
		id := path[strings.LastIndex(path, "/")+1:]
		if !f.knownItem(id) {
			http.NotFound(w, r)
			return
		}
		f.marked = append(f.marked, id)
		writeTestJSON(w, catalog.UserData{IsFavorite: r.Method == http.MethodPost})
	case strings.HasPrefix(path, "/Users/") && strings.HasSuffix(path, "/Items"):
		if query.Get("Filters") == "IsFavorite" {
			writeTestJSON(w, page(f.favoriteMovies))
			return
		}
		writeTestJSON(w, page(f.library))
	case path == "/Persons":
		writeTestJSON(w, page(f.favoritePeople))
	case path == "/Items":
		term := query.Get("searchTerm")
		if query.Get("IncludeItemTypes") == "Person" {
			writeTestJSON(w, page(matchingPeople(f.people, term)))
			return
		}
		writeTestJSON(w, page(matchingMovies(f.library, term)))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeJellyfin) knownItem(id string) bool {
	for _, movie := range f.library {
		if movie.ID == id {
			return true
		}
	}
	for _, person := range f.people {
		if person.ID == id {
			return true
		}
	}
	return false
}

func matchingMovies(movies []catalog.Movie, term string) []catalog.Movie {
	var out []catalog.Movie
	for _, movie := range movies {
		if strings.Contains(strings.ToLower(movie.Name), strings.ToLower(term)) {
			out = append(out, movie)
		}
	}
	return out
}

func matchingPeople(people []catalog.Person, term string) []catalog.Person {
	var out []catalog.Person
	for _, person := range people {
		if strings.Contains(strings.ToLower(person.Name), strings.ToLower(term)) {
			out = append(out, person)
		}
	}
	return out
}

func page[T any](items []T) catalog.ItemsResponse[T] {
	if items == nil {
		items = []T{}
	}
	return catalog.ItemsResponse[T]{Items: items, TotalRecordCount: len(items)}
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// setupConfig writes a config pointing at server and returns its path.
func setupConfig(t *testing.T, server string, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithServer(server)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Connection.APIToken = testToken
	return cfg, testsupport.SaveConfig(t, cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args, configPath)
}

func runCLIWithInput(t *testing.T, input string, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
