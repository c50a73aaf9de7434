package favorites

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"jtools/internal/catalog"
	"jtools/internal/fileutil"
	"jtools/internal/services"
)

// ExportDateLayout is the local date-time layout of Snapshot.ExportDate.
const ExportDateLayout = "2006-01-02T15:04:05.000"

// Snapshot is a portable export of one user's favorites.
type Snapshot struct {
	ExportDate     string           `json:"exportDate"`
	ServerURL      string           `json:"serverUrl"`
	UserID         string           `json:"userId"`
	FavoriteMovies []catalog.Movie  `json:"favoriteMovies,omitempty"`
	FavoritePeople []catalog.Person `json:"favoritePeople,omitempty"`
}

// ExportTime parses ExportDate. The zero time is returned when it does not
// use ExportDateLayout.
func (s Snapshot) ExportTime() time.Time {
	t, err := time.ParseInLocation(ExportDateLayout, s.ExportDate, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// snapshotEnvelope distinguishes absent required keys from empty values.
type snapshotEnvelope struct {
	ExportDate     *string          `json:"exportDate"`
	ServerURL      *string          `json:"serverUrl"`
	UserID         *string          `json:"userId"`
	FavoriteMovies []catalog.Movie  `json:"favoriteMovies"`
	FavoritePeople []catalog.Person `json:"favoritePeople"`
}

// Encode renders the snapshot as indented JSON.
func Encode(snapshot Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a snapshot. Unknown keys are ignored; malformed JSON or a
// missing exportDate, serverUrl, or userId is a services.ErrValidation.
func Decode(data []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, services.Wrap(services.ErrValidation, "favorites", "decode snapshot", "empty input", nil)
	}
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, services.Wrap(services.ErrValidation, "favorites", "decode snapshot", "malformed JSON", err)
	}
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"exportDate", env.ExportDate},
		{"serverUrl", env.ServerURL},
		{"userId", env.UserID},
	} {
		if field.value == nil {
			return Snapshot{}, services.Wrap(services.ErrValidation, "favorites", "decode snapshot",
				fmt.Sprintf("missing field %q", field.name), nil)
		}
	}
	return Snapshot{
		ExportDate:     *env.ExportDate,
		ServerURL:      *env.ServerURL,
		UserID:         *env.UserID,
		FavoriteMovies: env.FavoriteMovies,
		FavoritePeople: env.FavoritePeople,
	}, nil
}

// ReadFile loads and decodes a snapshot file.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, services.Wrap(services.ErrValidation, "favorites", "read snapshot", path, err)
	}
	snapshot, err := Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snapshot, nil
}

// WriteFile encodes the snapshot and writes it atomically.
func WriteFile(path string, snapshot Snapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrValidation, "favorites", "write snapshot", path, err)
	}
	return nil
}
