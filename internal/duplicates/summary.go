package duplicates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"jtools/internal/catalog"
	"jtools/internal/resolution"
)

const ticksPerSecond = 10_000_000

// TechSummary renders the known technical attributes of a movie as
// "1920x1080 | MKV | 4.4 GiB | H264".
func TechSummary(movie catalog.Movie) string {
	parts := make([]string, 0, 4)
	if info := resolution.Resolve(movie); info.Known() {
		parts = append(parts, info.DisplayLabel)
	}
	if container, ok := movie.EffectiveContainer(); ok {
		parts = append(parts, strings.ToUpper(container))
	}
	if size, ok := movie.EffectiveSize(); ok {
		parts = append(parts, humanize.IBytes(uint64(max(size, 0))))
	}
	if codec, ok := movie.EffectiveVideoCodec(); ok {
		parts = append(parts, strings.ToUpper(codec))
	}
	if len(parts) == 0 {
		return "incomplete metadata"
	}
	return strings.Join(parts, " | ")
}

// Field is one labelled line of DisplayInfo.
type Field struct {
	Label string
	Value string
}

// DisplayInfo returns the descriptive fields shown next to a duplicate.
func DisplayInfo(movie catalog.Movie) []Field {
	originalTitle := "none"
	if movie.OriginalTitle != nil && *movie.OriginalTitle != "" {
		originalTitle = *movie.OriginalTitle
	}
	year := "unknown"
	if movie.ProductionYear != nil {
		year = strconv.Itoa(*movie.ProductionYear)
	}
	genres := strings.Join(movie.Genres, ", ")
	if genres == "" {
		genres = "unknown"
	}
	rating := "none"
	if movie.CommunityRating != nil {
		rating = strconv.FormatFloat(*movie.CommunityRating, 'f', 1, 64)
	}
	return []Field{
		{Label: "Name", Value: movie.Name},
		{Label: "Original title", Value: originalTitle},
		{Label: "Year", Value: year},
		{Label: "Genres", Value: genres},
		{Label: "Rating", Value: rating},
		{Label: "Runtime", Value: FormatRuntime(movie.RunTimeTicks)},
		{Label: "ID", Value: movie.ID},
	}
}

// FormatRuntime renders runtime ticks (100ns units) as "1h 56m" or "45m".
func FormatRuntime(ticks *int64) string {
	if ticks == nil {
		return "unknown"
	}
	minutes := *ticks / ticksPerSecond / 60
	if hours := minutes / 60; hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
