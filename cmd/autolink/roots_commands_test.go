package main

import (
	"path/filepath"
	"testing"

	"autolink/internal/scan"
	"autolink/internal/testsupport"
)

func TestRootsSetListAndCheck(t *testing.T) {
	env := setupCLITestEnv(t)
	attachments := filepath.Join(filepath.Dir(env.libraryDB), "attachments")
	testsupport.MkdirAll(t, attachments)

	mustRunCLI(t, env, "roots", "set", "attachments")

	var dirs []string
	decodeJSON(t, mustRunCLI(t, env, "roots", "list", "--json"), &dirs)
	if len(dirs) != 2 || dirs[0] != attachments || dirs[1] != env.root {
		t.Fatalf("unexpected roots: %v", dirs)
	}

	out := mustRunCLI(t, env, "roots", "check")
	requireContains(t, out, "[OK]")

	mustRunCLI(t, env, "roots", "set", filepath.Join(env.baseDir, "gone"))
	out, _, err := runCLI(t, env, "roots", "check")
	if err == nil {
		t.Fatal("expected roots check to fail for a missing directory")
	}
	requireContains(t, out, "does not exist")

	requireContains(t, mustRunCLI(t, env, "roots", "set"), "Cleared")
}

func TestScanListsFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteTree(t, env.root, "b.pdf", "sub/a.txt")

	var result scanOutput
	decodeJSON(t, mustRunCLI(t, env, "scan", "--json"), &result)
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %+v", result.Files)
	}
	want := []scan.DiscoveredFile{
		{AbsolutePath: filepath.Join(env.root, "b.pdf"), Name: "b.pdf", Root: env.root},
		{AbsolutePath: filepath.Join(env.root, "sub", "a.txt"), Name: "a.txt", Root: env.root},
	}
	for i, file := range want {
		if result.Files[i] != file {
			t.Fatalf("file %d = %+v, want %+v", i, result.Files[i], file)
		}
	}

	requireContains(t, mustRunCLI(t, env, "scan"), "2 files in 1 roots")
}

func TestTypesList(t *testing.T) {
	env := setupCLITestEnv(t)
	out := mustRunCLI(t, env, "types", "list")
	requireContains(t, out, "PDF")
	requireContains(t, out, "application/pdf")
}
