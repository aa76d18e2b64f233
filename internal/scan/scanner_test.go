package scan_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"autolink/internal/fsys"
	"autolink/internal/scan"
)

var errDenied = errors.New("permission denied")

// deniedFS fails ReadDir for the listed directories.
type deniedFS struct {
	fsys.FS
	denied map[string]bool
}

func (d deniedFS) ReadDir(name string) ([]fs.FileInfo, error) {
	if d.denied[name] {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errDenied}
	}
	return d.FS.ReadDir(name)
}

func newMemFS(t *testing.T, files ...string) *fsys.BillyFS {
	t.Helper()
	mem := memfs.New()
	for _, f := range files {
		if err := util.WriteFile(mem, f, []byte(f), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return fsys.NewBilly(mem)
}

func paths(files []scan.DiscoveredFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.AbsolutePath)
	}
	return out
}

func TestScanWalksRecursivelyAndSorts(t *testing.T) {
	mfs := newMemFS(t,
		"/lib/b.pdf",
		"/lib/sub/deeper/c.txt",
		"/lib/a.pdf",
		"/other/z.pdf",
	)
	res, err := scan.New(mfs).Scan(context.Background(), []string{"/other", "/lib"})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []string{"/lib/a.pdf", "/lib/b.pdf", "/lib/sub/deeper/c.txt", "/other/z.pdf"}
	if got := paths(res.Files); !reflect.DeepEqual(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Files[2].Name != "c.txt" || res.Files[2].Root != "/lib" {
		t.Fatalf("unexpected file record: %+v", res.Files[2])
	}
}

func TestScanUnreadableRootProducesOneError(t *testing.T) {
	base := newMemFS(t, "/good/paper.pdf", "/bad/hidden.pdf")
	dfs := deniedFS{FS: base, denied: map[string]bool{"/bad": true}}

	res, err := scan.New(dfs).Scan(context.Background(), []string{"/bad", "/good", "/missing"})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := paths(res.Files); !reflect.DeepEqual(got, []string{"/good/paper.pdf"}) {
		t.Fatalf("files = %v", got)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", res.Errors)
	}
	if res.Errors[0].Path != "/bad" || !errors.Is(res.Errors[0], errDenied) {
		t.Fatalf("unexpected first error: %v", res.Errors[0])
	}
	if res.Errors[1].Path != "/missing" || !errors.Is(res.Errors[1], fs.ErrNotExist) {
		t.Fatalf("unexpected second error: %v", res.Errors[1])
	}
}

func TestScanSkipsUnreadableNestedDirectory(t *testing.T) {
	base := newMemFS(t, "/lib/a.pdf", "/lib/locked/b.pdf", "/lib/open/c.pdf")
	dfs := deniedFS{FS: base, denied: map[string]bool{"/lib/locked": true}}

	res, err := scan.New(dfs).Scan(context.Background(), []string{"/lib"})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := paths(res.Files); !reflect.DeepEqual(got, []string{"/lib/a.pdf", "/lib/open/c.pdf"}) {
		t.Fatalf("files = %v", got)
	}
	if len(res.Errors) != 1 || res.Errors[0].Path != "/lib/locked" {
		t.Fatalf("errors = %v", res.Errors)
	}
}

func TestScanRootThatIsAFile(t *testing.T) {
	mfs := newMemFS(t, "/lib/a.pdf")
	res, err := scan.New(mfs).Scan(context.Background(), []string{"/lib/a.pdf"})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(res.Files) != 0 || len(res.Errors) != 1 || !errors.Is(res.Errors[0], scan.ErrNotDirectory) {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestScanDeduplicatesNestedRoots(t *testing.T) {
	mfs := newMemFS(t, "/lib/a.pdf", "/lib/sub/b.pdf")
	res, err := scan.New(mfs, scan.WithConcurrency(1)).Scan(context.Background(), []string{"/lib", "/lib/sub", "/lib/"})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := paths(res.Files); !reflect.DeepEqual(got, []string{"/lib/a.pdf", "/lib/sub/b.pdf"}) {
		t.Fatalf("files = %v", got)
	}
	if res.Files[1].Root != "/lib" {
		t.Fatalf("expected first root to own the file, got %q", res.Files[1].Root)
	}
}

func TestScanCancelledBeforeStart(t *testing.T) {
	mfs := newMemFS(t, "/lib/a.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := scan.New(mfs).Scan(ctx, []string{"/lib"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestScanSymlinksOnRealFilesystem(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	outside := filepath.Join(dir, "outside")
	for _, d := range []string{root, outside, filepath.Join(root, "sub")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	write := func(p string) {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write(filepath.Join(root, "sub", "paper.pdf"))
	write(filepath.Join(outside, "target.pdf"))
	write(filepath.Join(outside, "not-descended.pdf"))

	mustLink := func(target, link string) {
		if err := os.Symlink(target, link); err != nil {
			t.Fatalf("symlink: %v", err)
		}
	}
	mustLink(filepath.Join(outside, "target.pdf"), filepath.Join(root, "linked.pdf"))
	mustLink(outside, filepath.Join(root, "dirlink"))
	mustLink(filepath.Join(dir, "nowhere"), filepath.Join(root, "broken.pdf"))
	mustLink(root, filepath.Join(root, "sub", "cycle"))

	res, err := scan.New(fsys.OS()).Scan(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	want := []string{
		filepath.Join(root, "linked.pdf"),
		filepath.Join(root, "sub", "paper.pdf"),
	}
	if got := paths(res.Files); !reflect.DeepEqual(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for _, f := range res.Files {
		if strings.Contains(f.AbsolutePath, "not-descended") {
			t.Fatalf("symlinked directory was descended: %s", f.AbsolutePath)
		}
	}
}
