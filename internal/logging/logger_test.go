package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autolink/internal/config"
	"autolink/internal/logging"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("file message", logging.String(logging.FieldEntryKey, "smith2020"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "autolink.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("log file is not JSON: %v (%q)", err, content)
	}
	if record["msg"] != "file message" || record["entry_key"] != "smith2020" || record["level"] != "info" {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "scanner")
	component.Warn("root unreadable",
		logging.String(logging.FieldRoot, "/no such dir"),
		logging.Error(errors.New("permission denied")),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"WARN  scanner: root unreadable", `root="/no such dir"`, `error="permission denied"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "run-42")
	logging.WithContext(ctx, logger).Info("contextual log")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"run_id":"run-42"`) {
		t.Fatalf("expected run_id in %q", content)
	}

	if _, ok := logging.RunIDFromContext(logging.WithRunID(context.Background(), "  ")); ok {
		t.Fatal("blank run IDs must not be stored")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "identity check failed", "identity_check_failed",
		logging.String(logging.FieldImpact, "possible duplicate link"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldEventType] != "identity_check_failed" {
		t.Fatalf("missing event type: %#v", record)
	}
	if record[logging.FieldErrorHint] != "run `autolink logs --run <id>` for details" {
		t.Fatalf("missing default hint: %#v", record)
	}
	if record[logging.FieldImpact] != "possible duplicate link" {
		t.Fatalf("impact overridden: %#v", record)
	}
}

func TestErrorWithContextLogsAtErrorLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "error.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.ErrorWithContext(logger, "link run interrupted", "link_run_interrupted",
		logging.Error(context.Canceled),
		logging.String(logging.FieldErrorHint, "rerun the link command"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["level"] != "error" || record[logging.FieldEventType] != "link_run_interrupted" {
		t.Fatalf("unexpected record: %#v", record)
	}
	if record[logging.FieldErrorHint] != "rerun the link command" {
		t.Fatalf("hint overridden: %#v", record)
	}
	if record[logging.FieldImpact] != "run stopped before every entry was linked" {
		t.Fatalf("missing default impact: %#v", record)
	}

	logging.ErrorWithContext(nil, "ignored", "ignored")
}

func TestConsoleLoggerLiftsRunAndEntry(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-run.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "0123456789abcdef")
	linker := logging.WithContext(ctx, logging.NewComponentLogger(logger, "linker"))
	linker.Info("links applied",
		logging.String(logging.FieldEntryKey, "smith2020"),
		logging.Int("added", 2),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO  linker [run 01234567 smith2020]: links applied added=2") {
		t.Fatalf("unexpected console line %q", line)
	}
	if strings.Contains(line, "run_id=") || strings.Contains(line, "entry_key=") {
		t.Fatalf("run and entry should only appear in the prefix, got %q", line)
	}
}
