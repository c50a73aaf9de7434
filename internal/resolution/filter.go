package resolution

import (
	"time"

	"jtools/internal/catalog"
)

// Criteria selects the maximum resolution for Filter.
type Criteria struct {
	MaxWidth       int
	MaxHeight      int
	IncludeUnknown bool
}

// CriteriaFromPreset builds criteria from a preset.
func CriteriaFromPreset(p Preset, includeUnknown bool) Criteria {
	return Criteria{MaxWidth: p.Width, MaxHeight: p.Height, IncludeUnknown: includeUnknown}
}

// Match is a movie kept by Filter with its classification.
type Match struct {
	Movie catalog.Movie `json:"movie"`
	Info  Info          `json:"resolution"`
}

// FilterResult is the outcome of a filter run.
type FilterResult struct {
	Criteria    Criteria  `json:"-"`
	TotalMovies int       `json:"totalMovies"`
	Matches     []Match   `json:"filteredMovies"`
	ScanTime    time.Time `json:"scanDate"`
}

// Movies returns the matched movies in library order.
func (r FilterResult) Movies() []catalog.Movie {
	out := make([]catalog.Movie, 0, len(r.Matches))
	for _, m := range r.Matches {
		out = append(out, m.Movie)
	}
	return out
}

// Filter classifies every movie and keeps those below the criteria.
func Filter(movies []catalog.Movie, criteria Criteria) FilterResult {
	result := FilterResult{
		Criteria:    criteria,
		TotalMovies: len(movies),
		Matches:     make([]Match, 0),
		ScanTime:    time.Now(),
	}
	for _, movie := range movies {
		info := Classify(movie, criteria.MaxWidth, criteria.MaxHeight, criteria.IncludeUnknown)
		if info.BelowThreshold {
			result.Matches = append(result.Matches, Match{Movie: movie, Info: info})
		}
	}
	return result
}

// Stats counts movies per resolution bucket.
type Stats struct {
	TotalMovies  int            `json:"totalMovies"`
	Counts       map[string]int `json:"resolutionCounts"`
	UnknownCount int            `json:"unknownCount"`
}

// Statistics buckets every movie with resolved dimensions.
func Statistics(movies []catalog.Movie) Stats {
	stats := Stats{TotalMovies: len(movies), Counts: make(map[string]int)}
	for _, movie := range movies {
		info := Resolve(movie)
		if !info.Known() {
			stats.UnknownCount++
			continue
		}
		stats.Counts[Bucket(*info.Width, *info.Height)]++
	}
	return stats
}

// Labels returns the non-empty bucket labels in ascending order.
func (s Stats) Labels() []string {
	labels := make([]string, 0, len(s.Counts))
	for label, count := range s.Counts {
		if count > 0 {
			labels = append(labels, label)
		}
	}
	SortBuckets(labels)
	return labels
}
