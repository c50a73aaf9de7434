package duplicates

import (
	"sort"
	"time"

	"jtools/internal/catalog"
)

// Group is a set of movies sharing a normalized title.
type Group struct {
	Key                string          `json:"key"`
	RepresentativeName string          `json:"name"`
	Members            []catalog.Movie `json:"movies"`
}

// Count returns the number of members.
func (g Group) Count() int {
	return len(g.Members)
}

// ScanResult is the outcome of a duplicate scan.
type ScanResult struct {
	TotalMoviesScanned   int       `json:"totalMovies"`
	Groups               []Group   `json:"duplicateGroups"`
	TotalDuplicateExcess int       `json:"totalDuplicates"`
	ScanTime             time.Time `json:"scanDate"`
}

// Detect groups movies by normalized title. Singleton groups are dropped.
// Members are sorted by name; groups are sorted by size, largest first, with
// ties kept in the order their key was first seen.
func Detect(movies []catalog.Movie) ScanResult {
	byKey := make(map[string][]catalog.Movie)
	var order []string
	for _, movie := range movies {
		key := NormalizeTitle(movie.Name)
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], movie)
	}

	result := ScanResult{
		TotalMoviesScanned: len(movies),
		Groups:             make([]Group, 0),
		ScanTime:           time.Now(),
	}
	for _, key := range order {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Name < members[j].Name
		})
		result.Groups = append(result.Groups, Group{
			Key:                key,
			RepresentativeName: members[0].Name,
			Members:            members,
		})
		result.TotalDuplicateExcess += len(members) - 1
	}
	sort.SliceStable(result.Groups, func(i, j int) bool {
		return result.Groups[i].Count() > result.Groups[j].Count()
	})
	return result
}
