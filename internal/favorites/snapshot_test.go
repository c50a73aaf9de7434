package favorites_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"jtools/internal/catalog"
	"jtools/internal/favorites"
	"jtools/internal/services"
	"jtools/internal/testsupport"
)

func sampleSnapshot() favorites.Snapshot {
	return favorites.Snapshot{
		ExportDate: "2024-01-01T12:00:00.000",
		ServerURL:  "http://old.example:8096",
		UserID:     "u1",
		FavoriteMovies: []catalog.Movie{
			testsupport.NewMovie("m1", "Heat", testsupport.WithYear(1995), testsupport.WithRating(8.3), testsupport.WithOriginalTitle("Heat")),
			{
				ID:       "m2",
				Name:     "Alien",
				Genres:   []string{"Horror", "Science Fiction"},
				UserData: &catalog.UserData{IsFavorite: true, PlayCount: 2},
				People:   []catalog.PersonRef{{Name: "Sigourney Weaver", Role: catalog.Ptr("Ripley"), Type: catalog.Ptr("Actor")}},
			},
		},
		FavoritePeople: []catalog.Person{testsupport.NewPerson("p1", "Al Pacino")},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := sampleSnapshot()
	data, err := favorites.Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	text := string(data)
	for _, key := range []string{`"exportDate"`, `"serverUrl"`, `"userId"`, `"favoriteMovies"`, `"Name": "Heat"`, `"ProductionYear": 1995`} {
		if !strings.Contains(text, key) {
			t.Fatalf("encoded snapshot missing %s:\n%s", key, text)
		}
	}
	if strings.Contains(text, `"Width"`) || strings.Contains(text, `"Overview"`) {
		t.Fatalf("absent fields should be omitted:\n%s", text)
	}
	if !strings.Contains(text, "\n  ") {
		t.Fatal("expected indented output")
	}

	decoded, err := favorites.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	data := []byte(`{
  "exportDate": "2024-01-01T12:00:00",
  "serverUrl": "http://x",
  "userId": "u",
  "appVersion": "9.9",
  "favoriteMovies": [{"Id": "m1", "Name": "Heat", "ImageTags": {"Primary": "abc"}}]
}`)
	snapshot, err := favorites.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(snapshot.FavoriteMovies) != 1 || snapshot.FavoriteMovies[0].Name != "Heat" || len(snapshot.FavoritePeople) != 0 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if got := snapshot.ExportTime(); !got.IsZero() {
		t.Fatalf("expected zero time for legacy layout, got %v", got)
	}
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"empty", "  "},
		{"malformed", `{"exportDate": `},
		{"array", `[]`},
		{"missing user", `{"exportDate":"d","serverUrl":"s"}`},
		{"wrong type", `{"exportDate":"d","serverUrl":"s","userId":"u","favoriteMovies":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := favorites.Decode([]byte(tt.data)); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestWriteAndReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "favorites.json")
	original := sampleSnapshot()
	if err := favorites.WriteFile(path, original); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := favorites.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Fatalf("file round trip mismatch: %+v", loaded)
	}

	if _, err := favorites.ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}
}

func TestExportTimeParsesLayout(t *testing.T) {
	t.Parallel()

	s := favorites.Snapshot{ExportDate: "2024-03-05T07:08:09.123"}
	got := s.ExportTime()
	want := time.Date(2024, 3, 5, 7, 8, 9, 123_000_000, time.Local)
	if !got.Equal(want) {
		t.Fatalf("ExportTime = %v, want %v", got, want)
	}
}
