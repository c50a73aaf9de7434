package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"jtools/internal/config"
	"jtools/internal/favorites"
	"jtools/internal/services"
)

const importLockFile = "import.lock"

func newImportCommand(ctx *commandContext) *cobra.Command {
	var flags connectionFlags
	var input string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Mark the favorites from a snapshot file on a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := favorites.ReadFile(input)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSnapshotSummary(out, snapshot)

			r, err := ctx.connect(cmd, flags)
			if err != nil {
				return err
			}
			userID, err := r.userID()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Importing into user %s (%s)\n", r.userName(userID), userID)

			if !assumeYes {
				ok, err := confirm(cmd, "Proceed with import? [y/N]: ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Import cancelled")
					return nil
				}
			}

			unlock, err := acquireImportLock()
			if err != nil {
				return err
			}
			defer unlock()

			bar := newImportProgress(cmd.ErrOrStderr(), len(snapshot.FavoriteMovies)+len(snapshot.FavoritePeople))
			result, runErr := r.run(cmd.Context(), func(runCtx context.Context) (string, error) {
				return r.state.StartImport(runCtx, r.catalog, userID, snapshot)
			}, bar.update)
			bar.finish()

			if outcome, ok := result.(favorites.Outcome); ok {
				printOutcome(out, outcome)
			}
			return runErr
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Snapshot file to import")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// acquireImportLock keeps two imports from toggling favorites concurrently.
func acquireImportLock() (func(), error) {
	dir, err := config.StateDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, importLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock import: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrBusy, "cli", "import", "another import is running", nil)
	}
	return func() { _ = lock.Unlock() }, nil
}

func printSnapshotSummary(out io.Writer, snapshot favorites.Snapshot) {
	fmt.Fprintf(out, "Snapshot: %d movies, %d people\n", len(snapshot.FavoriteMovies), len(snapshot.FavoritePeople))
	fmt.Fprintf(out, "Exported: %s\n", snapshot.ExportDate)
	fmt.Fprintf(out, "Source server: %s\n", snapshot.ServerURL)
}

func printOutcome(out io.Writer, outcome favorites.Outcome) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Category", "Imported", "Failed", "Total"},
		[][]string{
			{"Movies", fmt.Sprint(outcome.ImportedMovies), fmt.Sprint(outcome.FailedMovies), fmt.Sprint(outcome.TotalMovies)},
			{"People", fmt.Sprint(outcome.ImportedPeople), fmt.Sprint(outcome.FailedPeople), fmt.Sprint(outcome.TotalPeople)},
		},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	if !outcome.Complete() {
		fmt.Fprintf(out, "Stopped after %d of %d items\n", outcome.Processed(), outcome.Total())
	}
	if len(outcome.Errors) > 0 {
		fmt.Fprintf(out, "Failed items (%d):\n", len(outcome.Errors))
		for _, msg := range outcome.Errors {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	}
}

// importProgress draws a progress bar when stderr is a terminal and does
// nothing otherwise.
type importProgress struct {
	bar *progressbar.ProgressBar
}

func newImportProgress(w io.Writer, total int) *importProgress {
	if total <= 0 || !isTerminal(w) {
		return &importProgress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &importProgress{bar: bar}
}

func (p *importProgress) update(progress favorites.Progress) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("%-6s %s", progress.Kind, truncate(progress.Name, 32)))
	_ = p.bar.Set(progress.Completed)
}

func (p *importProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
