package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"jtools/internal/catalog"
	"jtools/internal/duplicates"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var flags connectionFlags
	var output string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Find duplicate movies and recommend which copies to delete",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := ctx.connect(cmd, flags)
			if err != nil {
				return err
			}
			userID, err := r.userID()
			if err != nil {
				return err
			}

			result, err := r.run(cmd.Context(), func(runCtx context.Context) (string, error) {
				return r.state.StartDuplicateScan(runCtx, r.catalog, userID)
			}, nil)
			if err != nil {
				return err
			}
			scan, _ := result.(duplicates.ScanResult)
			report := duplicates.BuildReport(scan, r.catalog.ServerURL())

			if target := strings.TrimSpace(output); target != "" {
				if err := writeJSONFile(target, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", target)
			}
			if asJSON {
				return writeJSON(cmd, report)
			}
			printDuplicates(cmd.OutOrStdout(), scan)
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write a JSON report to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printDuplicates(out io.Writer, scan duplicates.ScanResult) {
	fmt.Fprintf(out, "Scanned %d movies\n", scan.TotalMoviesScanned)
	if len(scan.Groups) == 0 {
		fmt.Fprintln(out, "No duplicates found")
		return
	}
	fmt.Fprintf(out, "Found %d duplicate groups (%d extra copies)\n", len(scan.Groups), scan.TotalDuplicateExcess)
	for _, group := range scan.Groups {
		fmt.Fprintf(out, "\n%s (%d copies)\n", group.RepresentativeName, group.Count())
		rows := make([][]string, 0, group.Count())
		if keep, ok := duplicates.Keep(group); ok {
			rows = append(rows, duplicateRow("keep", keep))
		}
		for _, movie := range duplicates.RecommendForDeletion(group) {
			rows = append(rows, duplicateRow("delete", movie))
		}
		fmt.Fprintln(out, renderTable([]string{"Action", "Name", "Details", "Path"}, rows, nil))
	}
}

func duplicateRow(action string, movie catalog.Movie) []string {
	path := catalog.Deref(movie.Path)
	if path == "" {
		path = "unknown"
	}
	return []string{action, movie.Name, duplicates.TechSummary(movie), path}
}
