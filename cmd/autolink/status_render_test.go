package main

import (
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Root directory", statusError, "/x (error: does not exist)", false)
	if !strings.Contains(plain, "[ERROR] /x") || strings.Contains(plain, "\x1b[") {
		t.Fatalf("unexpected plain line %q", plain)
	}
	colored := renderStatusLine("Root directory", statusOK, "ok", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected green line, got %q", colored)
	}
}

func TestShouldColorizeNonTerminal(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected no color for non-file writer")
	}
}
