package roots_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"autolink/internal/config"
	"autolink/internal/roots"
)

func TestResolveOrderAndDedup(t *testing.T) {
	base := t.TempDir()
	libraryPath := filepath.Join(base, "db", "library.db")
	cfg := config.Roots{
		Directories:       []string{filepath.Join(base, "papers"), filepath.Join(base, "db", "attachments"), filepath.Join(base, "extra") + "/"},
		IncludeLibraryDir: true,
	}

	got, err := roots.Resolve(cfg, []string{"attachments", filepath.Join(base, "papers")}, libraryPath)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []string{
		filepath.Join(base, "db", "attachments"),
		filepath.Join(base, "papers"),
		filepath.Join(base, "extra"),
		filepath.Join(base, "db"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveWithoutLibraryDir(t *testing.T) {
	base := t.TempDir()
	got, err := roots.Resolve(config.Roots{Directories: []string{base}}, nil, filepath.Join(base, "lib.db"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{base}) {
		t.Fatalf("Resolve = %v", got)
	}
}

func TestResolveExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := roots.Override([]string{"~/refs", "  "})
	if err != nil {
		t.Fatalf("Override returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{filepath.Join(home, "refs")}) {
		t.Fatalf("Override = %v", got)
	}
}

func TestResolveRelativeConfiguredDirectory(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	got, err := roots.Resolve(config.Roots{Directories: []string{"papers"}}, nil, "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{filepath.Join(wd, "papers")}) {
		t.Fatalf("Resolve = %v", got)
	}
}
