package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"jtools/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConnectivity, "jellyfin", "list users", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConnectivity) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"jellyfin", "list users", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Category
	}{
		{"nil", nil, services.CategoryNone},
		{"config", services.Wrap(services.ErrConfiguration, "config", "validate", "bad url", nil), services.CategoryConfig},
		{"connectivity", services.Wrap(services.ErrConnectivity, "jellyfin", "get", "", errors.New("refused")), services.CategoryConnectivity},
		{"not found", services.Wrap(services.ErrNotFound, "jellyfin", "get", "", nil), services.CategoryConnectivity},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), services.CategoryConnectivity},
		{"file", services.Wrap(services.ErrValidation, "favorites", "decode", "", nil), services.CategoryFile},
		{"cancelled", fmt.Errorf("import: %w", context.Canceled), services.CategoryCancelled},
		{"busy", services.ErrBusy, services.CategoryBusy},
		{"unknown", errors.New("other"), services.CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeReturnsHintForKnownCategories(t *testing.T) {
	if hint := services.Describe(services.Wrap(services.ErrConfiguration, "", "", "x", nil)); hint == "" {
		t.Fatal("expected hint for configuration error")
	}
	if hint := services.Describe(errors.New("other")); hint != "" {
		t.Fatalf("expected no hint for unknown error, got %q", hint)
	}
}
