package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnectivity  = errors.New("connectivity failure")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrBusy          = errors.New("operation already running")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category is the user-facing failure class of an error.
type Category string

const (
	CategoryNone         Category = ""
	CategoryConfig       Category = "config_invalid"
	CategoryConnectivity Category = "connectivity_failure"
	CategoryFile         Category = "file_error"
	CategoryCancelled    Category = "cancelled"
	CategoryBusy         Category = "busy"
	CategoryUnknown      Category = "unknown"
)

// Classify maps an error to the category surfaced to users.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, context.Canceled):
		return CategoryCancelled
	case errors.Is(err, ErrConfiguration):
		return CategoryConfig
	case errors.Is(err, ErrConnectivity), errors.Is(err, ErrTimeout), errors.Is(err, ErrNotFound), errors.Is(err, context.DeadlineExceeded):
		return CategoryConnectivity
	case errors.Is(err, ErrValidation):
		return CategoryFile
	case errors.Is(err, ErrBusy):
		return CategoryBusy
	default:
		return CategoryUnknown
	}
}

// Describe returns a short hint for the category of err, suitable for CLI output.
func Describe(err error) string {
	switch Classify(err) {
	case CategoryConfig:
		return "check the server URL and API token (jtools config show)"
	case CategoryConnectivity:
		return "verify the Jellyfin server is reachable and the API token is valid"
	case CategoryFile:
		return "verify the file exists and contains a jtools snapshot"
	case CategoryBusy:
		return "wait for the running operation to finish"
	default:
		return ""
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
