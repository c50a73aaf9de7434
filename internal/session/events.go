package session

import (
	"time"

	"jtools/internal/favorites"
	"jtools/internal/logging"
)

// Workflow names a runnable operation.
type Workflow string

const (
	WorkflowConnect    Workflow = "connect"
	WorkflowExport     Workflow = "export"
	WorkflowImport     Workflow = "import"
	WorkflowDuplicates Workflow = "duplicates"
	WorkflowResolution Workflow = "resolution"
	WorkflowStatistics Workflow = "statistics"
)

// EventType classifies an Event.
type EventType string

const (
	EventStarted  EventType = "started"
	EventProgress EventType = "progress"
	EventLog      EventType = "log"
	EventFinished EventType = "finished"
	EventFailed   EventType = "failed"
)

// Event is one notification from a running workflow.
//
// Result is set on EventFinished and holds the workflow's value:
// []catalog.User (connect), favorites.Snapshot (export), favorites.Outcome
// (import), duplicates.ScanResult, resolution.FilterResult, or
// resolution.Stats. A cancelled import reports EventFailed with the partial
// outcome in Result.
type Event struct {
	RunID    string
	Workflow Workflow
	Type     EventType
	Time     time.Time
	Progress *favorites.Progress
	Log      *logging.Entry
	Result   any
	Err      error
}

// Terminal reports whether the event ends its run.
func (e Event) Terminal() bool {
	return e.Type == EventFinished || e.Type == EventFailed
}
