package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jtools/internal/catalog"
	"jtools/internal/duplicates"
	"jtools/internal/favorites"
	"jtools/internal/resolution"
	"jtools/internal/services"
	"jtools/internal/session"
	"jtools/internal/testsupport"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func collect(t *testing.T, s *session.State) []session.Event {
	t.Helper()
	var events []session.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
			if ev.Terminal() {
				return events
			}
		case <-timeout:
			t.Fatalf("timed out waiting for terminal event; got %d events", len(events))
		}
	}
}

func terminal(events []session.Event) session.Event {
	return events[len(events)-1]
}

func TestExportPublishesSnapshot(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.FavoriteMovies = []catalog.Movie{testsupport.NewMovie("m1", "Heat")}
	s := session.New(session.Options{Favorites: favorites.Options{Sleep: noSleep}})

	runID, err := s.StartExport(context.Background(), fake, "u1")
	if err != nil {
		t.Fatalf("StartExport: %v", err)
	}
	events := collect(t, s)
	if events[0].Type != session.EventStarted || events[0].RunID != runID {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	last := terminal(events)
	if last.Type != session.EventFinished || last.Workflow != session.WorkflowExport {
		t.Fatalf("unexpected terminal event: %+v", last)
	}
	snapshot, ok := last.Result.(favorites.Snapshot)
	if !ok || len(snapshot.FavoriteMovies) != 1 || snapshot.UserID != "u1" {
		t.Fatalf("unexpected result: %#v", last.Result)
	}
}

func TestImportPublishesProgressAndOutcome(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	s := session.New(session.Options{Favorites: favorites.Options{Sleep: noSleep}})
	snapshot := favorites.Snapshot{
		FavoriteMovies: []catalog.Movie{testsupport.NewMovie("m1", "Heat"), testsupport.NewMovie("m2", "Alien")},
	}

	if _, err := s.StartImport(context.Background(), fake, "u1", snapshot); err != nil {
		t.Fatalf("StartImport: %v", err)
	}
	events := collect(t, s)
	var progress int
	for _, ev := range events {
		if ev.Type == session.EventProgress {
			progress++
			if ev.Progress == nil || ev.Progress.Overall != 2 {
				t.Fatalf("unexpected progress event: %+v", ev)
			}
		}
	}
	if progress != 2 {
		t.Fatalf("expected 2 progress events, got %d", progress)
	}
	outcome, ok := terminal(events).Result.(favorites.Outcome)
	if !ok || outcome.ImportedMovies != 2 {
		t.Fatalf("unexpected outcome: %#v", terminal(events).Result)
	}
}

func TestSecondWorkflowIsRejectedWhileRunning(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	release := make(chan struct{})
	var once sync.Once
	fake.OnCall = func(call testsupport.Call) {
		if call.Method == testsupport.MethodListAllMovies {
			once.Do(func() { <-release })
		}
	}
	s := session.New(session.Options{})

	if _, err := s.StartDuplicateScan(context.Background(), fake, "u1"); err != nil {
		t.Fatalf("StartDuplicateScan: %v", err)
	}
	if status := s.Status(); !status.Running || status.Workflow != session.WorkflowDuplicates {
		t.Fatalf("unexpected status: %+v", status)
	}
	_, err := s.StartExport(context.Background(), fake, "u1")
	if !errors.Is(err, session.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if services.Classify(err) != services.CategoryBusy {
		t.Fatalf("unexpected category for %v", err)
	}

	close(release)
	last := terminal(collect(t, s))
	if _, ok := last.Result.(duplicates.ScanResult); !ok {
		t.Fatalf("unexpected result %#v", last.Result)
	}
	s.Wait()
	if s.Status().Running {
		t.Fatal("expected idle state after completion")
	}
	if _, err := s.StartStatistics(context.Background(), fake, "u1"); err != nil {
		t.Fatalf("expected new workflow to start after completion: %v", err)
	}
	if _, ok := terminal(collect(t, s)).Result.(resolution.Stats); !ok {
		t.Fatal("expected statistics result")
	}
}

func TestCancelStopsImport(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	var s *session.State
	fake.OnCall = func(call testsupport.Call) {
		if call.Method == testsupport.MethodSetMovieFavorite && call.Arg == "m2" {
			s.Cancel()
		}
	}
	s = session.New(session.Options{Favorites: favorites.Options{Sleep: noSleep}})
	snapshot := favorites.Snapshot{FavoriteMovies: []catalog.Movie{
		testsupport.NewMovie("m1", "Heat"),
		testsupport.NewMovie("m2", "Alien"),
		testsupport.NewMovie("m3", "Ronin"),
	}}

	if _, err := s.StartImport(context.Background(), fake, "u1", snapshot); err != nil {
		t.Fatalf("StartImport: %v", err)
	}
	last := terminal(collect(t, s))
	if last.Type != session.EventFailed || !errors.Is(last.Err, context.Canceled) {
		t.Fatalf("expected cancelled failure, got %+v", last)
	}
	outcome, ok := last.Result.(favorites.Outcome)
	if !ok || outcome.ImportedMovies != 1 || outcome.Complete() {
		t.Fatalf("expected partial outcome, got %#v", last.Result)
	}
}

func TestConnectFailureIsReported(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.Errors = map[string]error{
		testsupport.MethodTestConnection: services.Wrap(services.ErrConnectivity, "fake", "test", "refused", nil),
	}
	s := session.New(session.Options{})

	if _, err := s.StartConnect(context.Background(), fake); err != nil {
		t.Fatalf("StartConnect: %v", err)
	}
	last := terminal(collect(t, s))
	if last.Type != session.EventFailed || !errors.Is(last.Err, services.ErrConnectivity) || last.Result != nil {
		t.Fatalf("unexpected terminal event: %+v", last)
	}
}

func TestRealtimeLogsArePublished(t *testing.T) {
	fake := testsupport.NewFakeCatalog()
	fake.Library = []catalog.Movie{testsupport.NewMovie("m1", "Heat", testsupport.WithResolution(720, 480))}
	s := session.New(session.Options{RealtimeLogs: true, EventBuffer: 256})

	if _, err := s.StartResolutionScan(context.Background(), fake, "u1", resolution.Criteria{MaxWidth: 1920, MaxHeight: 1080}); err != nil {
		t.Fatalf("StartResolutionScan: %v", err)
	}
	events := collect(t, s)
	var sawLog bool
	for _, ev := range events {
		if ev.Type == session.EventLog && ev.Log != nil && ev.Log.Message == "resolution filter complete" {
			sawLog = true
			if ev.Log.Component != "resolution" {
				t.Fatalf("unexpected component %q", ev.Log.Component)
			}
			if ev.Log.Fields["correlation_id"] != ev.RunID {
				t.Fatalf("expected run id as correlation id, got %v", ev.Log.Fields)
			}
		}
	}
	if !sawLog {
		t.Fatalf("expected a log event, got %+v", events)
	}
	result, ok := terminal(events).Result.(resolution.FilterResult)
	if !ok || len(result.Matches) != 1 {
		t.Fatalf("unexpected result: %#v", terminal(events).Result)
	}
}
