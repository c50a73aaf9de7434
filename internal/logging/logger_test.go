package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jtools/internal/config"
	"jtools/internal/services"
)

func TestNewConsoleWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	NewComponentLogger(logger, "favorites").Info("imported movie", String("name", "The Thing"), Int("index", 3))

	out := buf.String()
	for _, fragment := range []string{"INFO", "favorites: imported movie", `name="The Thing"`, "index=3"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component should be rendered as a prefix, got %q", out)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info line should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello", String("key", "value"))
	out := buf.String()
	if !strings.Contains(out, `"ts":`) || !strings.Contains(out, `"level":"info"`) || !strings.Contains(out, `"key":"value"`) {
		t.Fatalf("unexpected json output: %s", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "jtools.log")
	logger, err := New(Options{Writer: &buf, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("to both")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to both"`) {
		t.Fatalf("expected json record in file, got %q", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Fatalf("expected console record, got %q", buf.String())
	}
}

func TestNewFromConfigDetailedLogsEnableDebug(t *testing.T) {
	cfg := config.Default()
	cfg.UI.ShowDetailedLogs = true
	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug enabled when detailed logs are requested")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithOperation(context.Background(), "export")
	ctx = services.WithUserID(ctx, "u1")
	WithContext(ctx, logger).Info("started")
	out := buf.String()
	if !strings.Contains(out, "operation=export") || !strings.Contains(out, "user_id=u1") {
		t.Fatalf("missing context fields: %q", out)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	WarnWithContext(logger, "export partial", "export_partial", Error(errors.New("boom")))
	out := buf.String()
	for _, key := range []string{"event_type=export_partial", "error_hint=", "impact="} {
		if !strings.Contains(out, key) {
			t.Fatalf("expected %q in %q", key, out)
		}
	}
}

func TestTeeHandlerDuplicatesRecords(t *testing.T) {
	var a, b bytes.Buffer
	h := TeeHandler(nil, slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	slog.New(h).With("k", "v").Info("twice")
	if !strings.Contains(a.String(), "twice") || !strings.Contains(b.String(), "twice") {
		t.Fatalf("expected record in both handlers: %q / %q", a.String(), b.String())
	}
	if !strings.Contains(b.String(), `"k":"v"`) {
		t.Fatalf("expected attrs to propagate: %q", b.String())
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when no handlers remain")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if TeeHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestSinkHandlerForwardsEntries(t *testing.T) {
	var entries []Entry
	logger := slog.New(NewSinkHandler(func(e Entry) { entries = append(entries, e) }, slog.LevelInfo))
	NewComponentLogger(logger, "import").Debug("skipped")
	NewComponentLogger(logger, "import").WithGroup("item").Info("imported", String("name", "Heat"))

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Component != "import" || got.Message != "imported" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Fields["item.name"] != "Heat" {
		t.Fatalf("expected grouped field, got %v", got.Fields)
	}
}
