package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autolink/internal/logs"
	"autolink/internal/testsupport"
)

func TestLogsFiltersByRun(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, env.root, "paper.pdf")
	mustRunCLI(t, env, "entry", "add", "k", "--file", "paper.pdf")

	var run linkOutput
	decodeJSON(t, mustRunCLI(t, env, "link", "--dry-run", "--json"), &run)

	content := fmt.Sprintf(
		"{\"ts\":\"2026-01-02T03:04:05Z\",\"level\":\"info\",\"msg\":\"link run started\",\"run_id\":%q}\n"+
			"{\"ts\":\"2026-01-02T03:04:06Z\",\"level\":\"info\",\"msg\":\"unrelated\",\"run_id\":\"other\"}\n"+
			"{\"ts\":\"2026-01-02T03:04:07Z\",\"level\":\"warn\",\"msg\":\"directory skipped\",\"component\":\"scanner\",\"run_id\":%q,\"path\":\"/x\"}\n",
		run.RunID, run.RunID,
	)
	logPath := filepath.Join(env.logDir, "autolink.log")
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := mustRunCLI(t, env, "logs", "--run", run.RunID[:8])
	requireContains(t, out, "link run started")
	requireContains(t, out, "[scanner] directory skipped path=/x")
	if strings.Contains(out, "unrelated") {
		t.Fatalf("expected other runs to be filtered out:\n%s", out)
	}

	out = mustRunCLI(t, env, "logs", "--level", "warn", "--json")
	var rec logs.Record
	decodeJSON(t, out, &rec)
	if rec.Message != "directory skipped" || rec.RunID != run.RunID {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, _, err := runCLI(t, env, "logs", "--level", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
