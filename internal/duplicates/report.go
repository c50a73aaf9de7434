package duplicates

import (
	"time"

	"jtools/internal/catalog"
)

// Report is the JSON document written by the duplicates command.
type Report struct {
	ScanDate        string        `json:"scanDate"`
	ServerURL       string        `json:"serverUrl,omitempty"`
	TotalMovies     int           `json:"totalMovies"`
	TotalDuplicates int           `json:"totalDuplicates"`
	Groups          []ReportGroup `json:"duplicateGroups"`
}

// ReportGroup is one duplicate group with its recommendation.
type ReportGroup struct {
	Name   string        `json:"name"`
	Count  int           `json:"count"`
	Keep   ReportEntry   `json:"keep"`
	Delete []ReportEntry `json:"delete"`
}

// ReportEntry identifies one copy in a group.
type ReportEntry struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Path    *string `json:"path,omitempty"`
	Summary string  `json:"summary"`
}

// BuildReport converts a scan result into its report form.
func BuildReport(result ScanResult, serverURL string) Report {
	report := Report{
		ScanDate:        result.ScanTime.Local().Format(time.RFC3339),
		ServerURL:       serverURL,
		TotalMovies:     result.TotalMoviesScanned,
		TotalDuplicates: result.TotalDuplicateExcess,
		Groups:          make([]ReportGroup, 0, len(result.Groups)),
	}
	for _, group := range result.Groups {
		ranked := rank(group.Members)
		entry := ReportGroup{
			Name:   group.RepresentativeName,
			Count:  group.Count(),
			Keep:   reportEntry(ranked[0]),
			Delete: make([]ReportEntry, 0, len(ranked)-1),
		}
		for _, movie := range ranked[1:] {
			entry.Delete = append(entry.Delete, reportEntry(movie))
		}
		report.Groups = append(report.Groups, entry)
	}
	return report
}

func reportEntry(movie catalog.Movie) ReportEntry {
	return ReportEntry{ID: movie.ID, Name: movie.Name, Path: movie.Path, Summary: TechSummary(movie)}
}
