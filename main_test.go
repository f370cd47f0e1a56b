package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createSampleProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "a.js", "export function foo() {}\n")
	writeTestFile(t, dir, "b.js", "import { foo } from './a.js';\nfoo();\n")
	return dir
}

func TestRunScan(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "project:") {
		t.Error("missing project header")
	}
	if !strings.Contains(out, "files[2]") {
		t.Errorf("expected 2 files, got:\n%s", out)
	}
	if !strings.Contains(out, "b.js,a.js,import") {
		t.Errorf("missing dependency row:\n%s", out)
	}
	if !strings.Contains(out, `"export:foo",1`) {
		t.Errorf("missing export term:\n%s", out)
	}
}

func TestRunScanMaxFiles(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-n", "1", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "files[1]") {
		t.Errorf("expected 1 file, got:\n%s", stdout.String())
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-V"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "codemodel") {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRunFreshBootstrap(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"fresh", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "bootstrap-required") {
		t.Errorf("expected bootstrap-required, got:\n%s", out)
	}
	if !strings.Contains(out, `"status": "missing"`) {
		t.Errorf("expected missing status, got:\n%s", out)
	}
}

func TestRunBadRoot(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr); err == nil {
		t.Error("missing root must fail")
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	got := reorderArgs([]string{"/repo", "-n", "5", "-V"})
	want := []string{"-n", "5", "-V", "/repo"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}
