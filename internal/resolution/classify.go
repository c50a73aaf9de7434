package resolution

import (
	"fmt"

	"jtools/internal/catalog"
)

// Source names the record level a resolution was read from.
type Source string

const (
	SourceMovie       Source = "movie"
	SourceMediaSource Source = "mediaSource"
	SourceMediaStream Source = "mediaStream"
	SourceUnknown     Source = "unknown"
)

// UnknownLabel is the display label of a movie without dimensions.
const UnknownLabel = "unknown"

// Info is the classification of a single movie.
type Info struct {
	Width          *int   `json:"width,omitempty"`
	Height         *int   `json:"height,omitempty"`
	DisplayLabel   string `json:"displayResolution"`
	BelowThreshold bool   `json:"isLowResolution"`
	Source         Source `json:"source"`
}

// Known reports whether both dimensions were resolved.
func (i Info) Known() bool {
	return i.Width != nil && i.Height != nil
}

// Area returns width*height, or zero when unresolved.
func (i Info) Area() int64 {
	if !i.Known() {
		return 0
	}
	return int64(*i.Width) * int64(*i.Height)
}

// Resolve returns the movie's dimensions without comparing them to a threshold.
func Resolve(movie catalog.Movie) Info {
	if movie.Width != nil && movie.Height != nil {
		return known(*movie.Width, *movie.Height, SourceMovie)
	}
	src, ok := movie.PrimarySource()
	if !ok {
		return unknown()
	}
	if src.Width != nil && src.Height != nil {
		return known(*src.Width, *src.Height, SourceMediaSource)
	}
	if stream, ok := src.FirstVideoStream(); ok && stream.Width != nil && stream.Height != nil {
		return known(*stream.Width, *stream.Height, SourceMediaStream)
	}
	return unknown()
}

// Classify resolves the movie's dimensions and marks it below threshold when
// either dimension is smaller than the maximum. Unresolved movies are below
// threshold only when includeUnknown is set.
func Classify(movie catalog.Movie, maxWidth, maxHeight int, includeUnknown bool) Info {
	info := Resolve(movie)
	if !info.Known() {
		info.BelowThreshold = includeUnknown
		return info
	}
	info.BelowThreshold = *info.Width < maxWidth || *info.Height < maxHeight
	return info
}

func known(width, height int, source Source) Info {
	return Info{
		Width:        &width,
		Height:       &height,
		DisplayLabel: fmt.Sprintf("%dx%d", width, height),
		Source:       source,
	}
}

func unknown() Info {
	return Info{DisplayLabel: UnknownLabel, Source: SourceUnknown}
}
