package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jtools/internal/catalog"
	"jtools/internal/config"
	"jtools/internal/favorites"
	"jtools/internal/services"
	"jtools/internal/testsupport"
)

func TestViewRendersSnapshotOffline(t *testing.T) {
	testsupport.NewConfig(t)
	overview := strings.Repeat("a", 150)
	heat := testsupport.NewMovie("m1", "Heat", testsupport.WithYear(1995), testsupport.WithRating(8.3), testsupport.WithRuntime(102_000_000_000))
	heat.Overview = &overview
	heat.People = []catalog.PersonRef{
		{Name: "Al Pacino", Type: catalog.Ptr("Actor")},
		{Name: "Michael Mann", Type: catalog.Ptr("Director")},
		{Name: "Robert De Niro", Type: catalog.Ptr("Actor")},
	}
	input := writeSnapshot(t, favorites.Snapshot{
		ExportDate:     "2026-01-02T03:04:05.000",
		ServerURL:      "http://jellyfin.test",
		UserID:         "user-1",
		FavoriteMovies: []catalog.Movie{heat, testsupport.NewMovie("m2", "Ronin")},
		FavoritePeople: []catalog.Person{testsupport.NewPerson("p1", "Jean Reno")},
	})

	out, _, err := runCLI(t, []string{"view", "-i", input, "-l", "1"}, "")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	requireContains(t, out, "Movies: 2  People: 1")
	requireContains(t, out, "1. Heat (1995)")
	requireContains(t, out, "rating 8.3")
	requireContains(t, out, "Actors: Al Pacino, Robert De Niro")
	requireContains(t, out, strings.Repeat("a", 100)+"...")
	requireNotContains(t, out, strings.Repeat("a", 101))
	requireContains(t, out, "... and 1 more")
	requireContains(t, out, "Jean Reno")

	out, _, err = runCLI(t, []string{"view", "-i", input, "--people"}, "")
	if err != nil {
		t.Fatalf("view --people: %v", err)
	}
	requireNotContains(t, out, "Favorite movies")
	requireContains(t, out, "Favorite people")
}

func TestViewRejectsInvalidSnapshot(t *testing.T) {
	testsupport.NewConfig(t)
	input := filepath.Join(t.TempDir(), "snapshot.json")
	testsupport.WriteFile(t, input, []byte(`{"favoriteMovies": []}`))

	_, _, err := runCLI(t, []string{"view", "-i", input}, "")
	if got := services.Classify(err); got != services.CategoryFile {
		t.Fatalf("category = %q, want %q (err %v)", got, services.CategoryFile, err)
	}
}

func TestConfigShowMasksToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Connection.APIToken = "0123456789abcdef"
	configPath := testsupport.SaveConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Config path: "+configPath)
	requireContains(t, out, "0123456789...")
	requireNotContains(t, out, "0123456789abcdef")
	requireContains(t, out, "http://jellyfin.test")
}

func TestConfigSaveValidatesAndPersists(t *testing.T) {
	testsupport.NewConfig(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")

	_, _, err := runCLI(t, []string{"config", "save", "--server", "ftp://example", "--token", "abc"}, configPath)
	if got := services.Classify(err); got != services.CategoryConfig {
		t.Fatalf("category = %q, want %q (err %v)", got, services.CategoryConfig, err)
	}
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		t.Fatalf("invalid connection should not be saved: %v", statErr)
	}

	out, _, err := runCLI(t, []string{"config", "save", "--server", "http://media.local:8096/", "--token", "secret-token-123", "--user", "user-9"}, configPath)
	if err != nil {
		t.Fatalf("config save: %v", err)
	}
	requireContains(t, out, "Saved configuration to "+configPath)
	requireNotContains(t, out, "secret-token-123")

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected saved config to exist")
	}
	if cfg.Connection.ServerURL != "http://media.local:8096" || cfg.Connection.APIToken != "secret-token-123" || cfg.Connection.UserID != "user-9" {
		t.Fatalf("unexpected saved connection: %+v", cfg.Connection)
	}
}

func TestConfigSaveWithoutTokenFailsWhenNotInteractive(t *testing.T) {
	testsupport.NewConfig(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")

	_, _, err := runCLI(t, []string{"config", "save", "--server", "http://media.local"}, configPath)
	if got := services.Classify(err); got != services.CategoryConfig {
		t.Fatalf("category = %q, want %q (err %v)", got, services.CategoryConfig, err)
	}
}

func TestConfigPathAndDelete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := testsupport.SaveConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "path"}, configPath)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != configPath {
		t.Fatalf("config path = %q, want %q", strings.TrimSpace(out), configPath)
	}

	out, _, err = runCLI(t, []string{"config", "delete"}, configPath)
	if err != nil {
		t.Fatalf("config delete: %v", err)
	}
	requireContains(t, out, "Removed "+configPath)
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Fatalf("config still present: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "delete"}, configPath)
	if err != nil {
		t.Fatalf("second config delete: %v", err)
	}
	requireContains(t, out, "No configuration files found")
}

func TestPrintErrorAddsHint(t *testing.T) {
	var buf strings.Builder
	printError(&buf, services.Wrap(services.ErrConnectivity, "jellyfin", "list users", "status 500", nil))
	requireContains(t, buf.String(), "Error: ")
	requireContains(t, buf.String(), "Hint: verify the Jellyfin server is reachable")
}

func TestDefaultExportName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	tests := []struct {
		user, want string
	}{
		{"Alice Smith", "jellyfin-favorites-alice_smith-20240309-140507.json"},
		{"../../etc", "jellyfin-favorites-etc-20240309-140507.json"},
		{"", "jellyfin-favorites-unknown-20240309-140507.json"},
	}
	for _, tt := range tests {
		if got := defaultExportName(tt.user, now); got != tt.want {
			t.Errorf("defaultExportName(%q) = %q, want %q", tt.user, got, tt.want)
		}
	}
}
