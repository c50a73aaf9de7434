package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"jtools/internal/catalog"
)

// MovieOption customizes a fixture movie.
type MovieOption func(*catalog.Movie)

// NewMovie builds a movie fixture with the given id and name.
func NewMovie(id, name string, opts ...MovieOption) catalog.Movie {
	movie := catalog.Movie{ID: id, Name: name}
	for _, opt := range opts {
		opt(&movie)
	}
	return movie
}

// WithResolution sets movie-level dimensions.
func WithResolution(width, height int) MovieOption {
	return func(m *catalog.Movie) {
		m.Width = catalog.Ptr(width)
		m.Height = catalog.Ptr(height)
	}
}

// WithSource appends a media source with the given dimensions and size.
// A zero size leaves the size absent.
func WithSource(width, height int, size int64) MovieOption {
	return func(m *catalog.Movie) {
		src := catalog.MediaSource{
			ID:     m.ID + "-src",
			Width:  catalog.Ptr(width),
			Height: catalog.Ptr(height),
		}
		if size > 0 {
			src.Size = catalog.Ptr(size)
		}
		m.MediaSources = append(m.MediaSources, src)
	}
}

// WithVideoStream appends a media source whose only dimensions live on its
// first video stream.
func WithVideoStream(width, height int) MovieOption {
	return func(m *catalog.Movie) {
		m.MediaSources = append(m.MediaSources, catalog.MediaSource{
			ID: m.ID + "-src",
			MediaStreams: []catalog.MediaStream{
				{Index: 0, Type: catalog.Ptr("Audio"), Codec: catalog.Ptr("aac")},
				{Index: 1, Type: catalog.Ptr(catalog.StreamTypeVideo), Codec: catalog.Ptr("hevc"), Width: catalog.Ptr(width), Height: catalog.Ptr(height)},
			},
		})
	}
}

// WithSize sets the movie-level size in bytes.
func WithSize(size int64) MovieOption {
	return func(m *catalog.Movie) { m.Size = catalog.Ptr(size) }
}

// WithBitrate sets the movie-level bitrate.
func WithBitrate(bitrate int64) MovieOption {
	return func(m *catalog.Movie) { m.Bitrate = catalog.Ptr(bitrate) }
}

// WithRating sets the community rating.
func WithRating(rating float64) MovieOption {
	return func(m *catalog.Movie) { m.CommunityRating = catalog.Ptr(rating) }
}

// WithYear sets the production year.
func WithYear(year int) MovieOption {
	return func(m *catalog.Movie) { m.ProductionYear = catalog.Ptr(year) }
}

// WithOriginalTitle sets the original title.
func WithOriginalTitle(title string) MovieOption {
	return func(m *catalog.Movie) { m.OriginalTitle = catalog.Ptr(title) }
}

// WithRuntime sets the runtime in ticks.
func WithRuntime(ticks int64) MovieOption {
	return func(m *catalog.Movie) { m.RunTimeTicks = catalog.Ptr(ticks) }
}

// NewPerson builds a person fixture.
func NewPerson(id, name string) catalog.Person {
	return catalog.Person{ID: id, Name: name, Type: catalog.Ptr("Actor")}
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
