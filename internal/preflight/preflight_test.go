package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectory_Missing(t *testing.T) {
	result := CheckOutputDirectory("out", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckOutputDirectory_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckOutputDirectory("out", filepath.Join(f, "sub"))
	if result.Passed {
		t.Fatal("expected failure when ancestor is a file")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "samples.dat")
	if err := os.WriteFile(f, []byte("ra dec\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckFileReadable("samples", f); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckFileReadable("samples", dir); result.Passed {
		t.Fatal("expected failure for directory")
	}
	if result := CheckFileReadable("samples", filepath.Join(dir, "nope")); result.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func TestRunAllAndFailed(t *testing.T) {
	dir := t.TempDir()
	samples := filepath.Join(dir, "samples.dat")
	if err := os.WriteFile(samples, []byte("ra dec\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), Paths{
		Samples:   samples,
		OutputDir: filepath.Join(dir, "out"),
		History:   filepath.Join(dir, "state", "history.db"),
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if err := Failed(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	results = RunAll(context.Background(), Paths{Injection: filepath.Join(dir, "missing.xml")})
	err := Failed(results)
	if err == nil || !strings.Contains(err.Error(), "Injection file") {
		t.Fatalf("expected injection failure, got %v", err)
	}
}
