package logs

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Record is one line of the JSON log file.
type Record struct {
	Time      time.Time      `json:"ts"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Component string         `json:"component,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

var reservedKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "component": {}, "run_id": {},
}

// ParseRecord decodes a JSON log line. Lines that are not JSON objects are
// returned as an info record carrying the raw text.
func ParseRecord(line string) Record {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{Level: "info", Message: line}
	}
	rec := Record{
		Level:     stringValue(raw["level"]),
		Message:   stringValue(raw["msg"]),
		Component: stringValue(raw["component"]),
		RunID:     stringValue(raw["run_id"]),
	}
	if ts := stringValue(raw["ts"]); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Time = parsed
		}
	}
	for key, value := range raw {
		if _, ok := reservedKeys[key]; ok {
			continue
		}
		if rec.Attrs == nil {
			rec.Attrs = make(map[string]any)
		}
		rec.Attrs[key] = value
	}
	return rec
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// SlogLevel maps the record's level name back to a slog level; unknown names
// are treated as info.
func (r Record) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(r.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// AttrKeys returns the extra attribute names in sorted order.
func (r Record) AttrKeys() []string {
	keys := make([]string, 0, len(r.Attrs))
	for key := range r.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Filter selects records. The zero Filter matches everything.
type Filter struct {
	RunID    string
	MinLevel slog.Level
	// HasMinLevel enables MinLevel; the zero slog.Level is info.
	HasMinLevel bool
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec Record) bool {
	if runID := strings.TrimSpace(f.RunID); runID != "" && rec.RunID != runID {
		return false
	}
	if f.HasMinLevel && rec.SlogLevel() < f.MinLevel {
		return false
	}
	return true
}
