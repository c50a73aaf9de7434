package duplicates

import (
	"sort"

	"jtools/internal/catalog"
	"jtools/internal/resolution"
)

// rank orders members best first: resolution area, size, bitrate, rating,
// runtime, and year descending, then shorter names first.
func rank(members []catalog.Movie) []catalog.Movie {
	ranked := make([]catalog.Movie, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return better(ranked[i], ranked[j])
	})
	return ranked
}

func better(a, b catalog.Movie) bool {
	if x, y := resolution.Resolve(a).Area(), resolution.Resolve(b).Area(); x != y {
		return x > y
	}
	if x, y := size(a), size(b); x != y {
		return x > y
	}
	if x, y := bitrate(a), bitrate(b); x != y {
		return x > y
	}
	if x, y := catalog.Deref(a.CommunityRating), catalog.Deref(b.CommunityRating); x != y {
		return x > y
	}
	if x, y := catalog.Deref(a.RunTimeTicks), catalog.Deref(b.RunTimeTicks); x != y {
		return x > y
	}
	if x, y := catalog.Deref(a.ProductionYear), catalog.Deref(b.ProductionYear); x != y {
		return x > y
	}
	return len([]rune(a.Name)) < len([]rune(b.Name))
}

func size(m catalog.Movie) int64 {
	v, _ := m.EffectiveSize()
	return v
}

func bitrate(m catalog.Movie) int64 {
	v, _ := m.EffectiveBitrate()
	return v
}

// RecommendForDeletion returns every member except the best ranked one, in
// ranked order. Groups with fewer than two members return nil.
func RecommendForDeletion(group Group) []catalog.Movie {
	if group.Count() < 2 {
		return nil
	}
	return rank(group.Members)[1:]
}

// Keep returns the member the ranking would keep.
func Keep(group Group) (catalog.Movie, bool) {
	if group.Count() == 0 {
		return catalog.Movie{}, false
	}
	return rank(group.Members)[0], true
}
