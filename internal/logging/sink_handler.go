package logging

import (
	"context"
	"log/slog"
	"time"
)

// Entry is a log record flattened for delivery to an in-process consumer such
// as an interactive front end.
type Entry struct {
	Time      time.Time
	Level     slog.Level
	Component string
	Message   string
	Fields    map[string]string
}

// SinkFunc receives flattened log entries. It must not block.
type SinkFunc func(Entry)

type sinkHandler struct {
	sink   SinkFunc
	level  slog.Leveler
	preset []kv
	groups []string
}

// NewSinkHandler returns a handler that forwards records at or above level to sink.
func NewSinkHandler(sink SinkFunc, level slog.Leveler) slog.Handler {
	if sink == nil {
		return NoopHandler{}
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &sinkHandler{sink: sink, level: level}
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *sinkHandler) Handle(_ context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(h.preset))
	kvs = append(kvs, h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})
	component, kvs := extractComponent(kvs)

	entry := Entry{
		Time:      record.Time,
		Level:     record.Level,
		Component: component,
		Message:   record.Message,
	}
	if len(kvs) > 0 {
		entry.Fields = make(map[string]string, len(kvs))
		for _, item := range kvs {
			entry.Fields[item.key] = attrString(item.value)
		}
	}
	h.sink(entry)
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = append([]kv(nil), h.preset...)
	flattenAttrs(&clone.preset, h.groups, attrs)
	return &clone
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
