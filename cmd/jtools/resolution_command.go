package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jtools/internal/favorites"
	"jtools/internal/resolution"
	"jtools/internal/services"
)

func newResolutionCommand(ctx *commandContext) *cobra.Command {
	var flags connectionFlags
	var preset string
	var width, height int
	var includeUnknown bool
	var statsOnly bool
	var output string

	cmd := &cobra.Command{
		Use:   "resolution",
		Short: "List movies below a resolution threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, label, err := resolutionCriteria(preset, width, height, includeUnknown)
			if err != nil {
				return err
			}
			r, err := ctx.connect(cmd, flags)
			if err != nil {
				return err
			}
			userID, err := r.userID()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if statsOnly {
				result, err := r.run(cmd.Context(), func(runCtx context.Context) (string, error) {
					return r.state.StartStatistics(runCtx, r.catalog, userID)
				}, nil)
				if err != nil {
					return err
				}
				stats, _ := result.(resolution.Stats)
				printResolutionStats(out, stats)
				return nil
			}

			result, err := r.run(cmd.Context(), func(runCtx context.Context) (string, error) {
				return r.state.StartResolutionScan(runCtx, r.catalog, userID, criteria)
			}, nil)
			if err != nil {
				return err
			}
			filtered, _ := result.(resolution.FilterResult)

			fmt.Fprintf(out, "Threshold: %s (include unknown: %s)\n", label, yesNo(criteria.IncludeUnknown))
			fmt.Fprintf(out, "Total movies: %d\n", filtered.TotalMovies)
			fmt.Fprintf(out, "Below threshold: %d\n", len(filtered.Matches))
			if len(filtered.Matches) == 0 {
				fmt.Fprintln(out, "No movies below the threshold")
			} else {
				fmt.Fprintln(out, renderMatches(filtered.Matches))
			}

			if target := strings.TrimSpace(output); target != "" {
				snapshot := favorites.Snapshot{
					ExportDate:     filtered.ScanTime.Format(favorites.ExportDateLayout),
					ServerURL:      r.catalog.ServerURL(),
					UserID:         userID,
					FavoriteMovies: filtered.Movies(),
				}
				if err := favorites.WriteFile(target, snapshot); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved %d movies to %s\n", len(snapshot.FavoriteMovies), target)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "Threshold preset (480p, 720p, 1080p, 4k; default 1080p)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Custom maximum width (requires --height)")
	cmd.Flags().IntVar(&height, "height", 0, "Custom maximum height (requires --width)")
	cmd.Flags().BoolVar(&includeUnknown, "include-unknown", false, "Include movies whose resolution is unknown")
	cmd.Flags().BoolVar(&statsOnly, "stats-only", false, "Only print resolution statistics")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the matches as a snapshot file")
	return cmd
}

// resolutionCriteria picks custom dimensions when both are given and a preset
// otherwise.
func resolutionCriteria(preset string, width, height int, includeUnknown bool) (resolution.Criteria, string, error) {
	custom := width != 0 || height != 0
	switch {
	case custom && strings.TrimSpace(preset) != "":
		return resolution.Criteria{}, "", services.Wrap(services.ErrConfiguration, "cli", "resolution", "use either --preset or --width/--height", nil)
	case custom && (width <= 0 || height <= 0):
		return resolution.Criteria{}, "", services.Wrap(services.ErrConfiguration, "cli", "resolution", "--width and --height must both be positive", nil)
	case custom:
		criteria := resolution.Criteria{MaxWidth: width, MaxHeight: height, IncludeUnknown: includeUnknown}
		return criteria, describeThreshold(width, height), nil
	}
	p, err := resolution.LookupPreset(preset)
	if err != nil {
		return resolution.Criteria{}, "", services.Wrap(services.ErrConfiguration, "cli", "resolution", err.Error(), nil)
	}
	return resolution.CriteriaFromPreset(p, includeUnknown), fmt.Sprintf("%s (%s)", p.Name, describeThreshold(p.Width, p.Height)), nil
}

func renderMatches(matches []resolution.Match) string {
	rows := make([][]string, 0, len(matches))
	for _, match := range matches {
		year := "unknown"
		if match.Movie.ProductionYear != nil {
			year = strconv.Itoa(*match.Movie.ProductionYear)
		}
		size := "unknown"
		if bytes, ok := match.Movie.EffectiveSize(); ok {
			size = humanize.IBytes(uint64(max(bytes, 0)))
		}
		rows = append(rows, []string{match.Movie.Name, year, match.Info.DisplayLabel, string(match.Info.Source), size})
	}
	return renderTable(
		[]string{"Name", "Year", "Resolution", "Source", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight},
	)
}

func printResolutionStats(out io.Writer, stats resolution.Stats) {
	fmt.Fprintf(out, "Total movies: %d\n", stats.TotalMovies)
	fmt.Fprintf(out, "Unknown resolution: %d\n", stats.UnknownCount)
	labels := stats.Labels()
	if len(labels) == 0 {
		return
	}
	rows := make([][]string, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []string{label, strconv.Itoa(stats.Counts[label])})
	}
	fmt.Fprintln(out, renderTable([]string{"Resolution", "Movies"}, rows, []columnAlignment{alignLeft, alignRight}))
}
