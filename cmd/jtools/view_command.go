package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jtools/internal/catalog"
	"jtools/internal/duplicates"
	"jtools/internal/favorites"
)

const (
	overviewPreviewLength = 100
	viewActorLimit        = 3
)

func newViewCommand(_ *commandContext) *cobra.Command {
	var input string
	var showMovies, showPeople bool
	var limit int

	cmd := &cobra.Command{
		Use:         "view",
		Short:       "Render a snapshot file without contacting a server",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := favorites.ReadFile(input)
			if err != nil {
				return err
			}
			if !showMovies && !showPeople {
				showMovies, showPeople = true, true
			}

			out := cmd.OutOrStdout()
			exported := snapshot.ExportDate
			if t := snapshot.ExportTime(); !t.IsZero() {
				exported = fmt.Sprintf("%s (%s)", snapshot.ExportDate, humanize.Time(t))
			}
			fmt.Fprintf(out, "Exported: %s\n", exported)
			fmt.Fprintf(out, "Server: %s\n", snapshot.ServerURL)
			fmt.Fprintf(out, "User: %s\n", snapshot.UserID)
			fmt.Fprintf(out, "Movies: %d  People: %d\n", len(snapshot.FavoriteMovies), len(snapshot.FavoritePeople))

			if showMovies {
				printMovies(out, snapshot.FavoriteMovies, limit)
			}
			if showPeople {
				printPeople(out, snapshot.FavoritePeople, limit)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Snapshot file to render")
	cmd.Flags().BoolVar(&showMovies, "movies", false, "Show movies only")
	cmd.Flags().BoolVar(&showPeople, "people", false, "Show people only")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum entries per section (0 for all)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func printMovies(out io.Writer, movies []catalog.Movie, limit int) {
	fmt.Fprintf(out, "\nFavorite movies\n")
	if len(movies) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	shown := visible(len(movies), limit)
	for i, movie := range movies[:shown] {
		heading := movie.Name
		if movie.ProductionYear != nil {
			heading += " (" + strconv.Itoa(*movie.ProductionYear) + ")"
		}
		fmt.Fprintf(out, "%d. %s\n", i+1, heading)

		details := make([]string, 0, 3)
		if movie.CommunityRating != nil {
			details = append(details, "rating "+strconv.FormatFloat(*movie.CommunityRating, 'f', 1, 64))
		}
		if movie.RunTimeTicks != nil {
			details = append(details, duplicates.FormatRuntime(movie.RunTimeTicks))
		}
		if len(movie.Genres) > 0 {
			details = append(details, strings.Join(movie.Genres, ", "))
		}
		if len(details) > 0 {
			fmt.Fprintf(out, "   %s\n", strings.Join(details, " | "))
		}
		if actors := actorNames(movie.People, viewActorLimit); len(actors) > 0 {
			fmt.Fprintf(out, "   Actors: %s\n", strings.Join(actors, ", "))
		}
		if overview := catalog.Deref(movie.Overview); overview != "" {
			fmt.Fprintf(out, "   %s\n", truncate(overview, overviewPreviewLength))
		}
	}
	printRemainder(out, len(movies), shown)
}

func printPeople(out io.Writer, people []catalog.Person, limit int) {
	fmt.Fprintf(out, "\nFavorite people\n")
	if len(people) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	shown := visible(len(people), limit)
	rows := make([][]string, 0, shown)
	for _, person := range people[:shown] {
		kind := catalog.Deref(person.Type)
		if kind == "" {
			kind = "unknown"
		}
		rows = append(rows, []string{person.Name, kind, catalog.Deref(person.Role)})
	}
	fmt.Fprintln(out, renderTable([]string{"Name", "Type", "Role"}, rows, nil))
	printRemainder(out, len(people), shown)
}

// actorNames returns up to limit names of actors credited on a movie.
func actorNames(people []catalog.PersonRef, limit int) []string {
	names := make([]string, 0, limit)
	for _, person := range people {
		if len(names) == limit {
			break
		}
		if person.Type != nil && *person.Type != "Actor" {
			continue
		}
		names = append(names, person.Name)
	}
	return names
}

func visible(total, limit int) int {
	if limit <= 0 || limit > total {
		return total
	}
	return limit
}

func printRemainder(out io.Writer, total, shown int) {
	if total > shown {
		fmt.Fprintf(out, "  ... and %d more\n", total-shown)
	}
}
