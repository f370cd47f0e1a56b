package vcs

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func gitOrSkip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "test"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	return dir
}

func commitFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"add", name},
		{"commit", "-m", "add " + name},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
}

func TestLastCommitTime(t *testing.T) {
	t.Parallel()
	gitOrSkip(t)

	dir := initRepo(t)
	commitFile(t, dir, "a.js", "const a = 1;\n")

	g := &Git{Root: dir}
	ts, err := g.LastCommitTime()
	if err != nil {
		t.Fatalf("LastCommitTime: %v", err)
	}
	if d := time.Since(ts); d < 0 || d > time.Hour {
		t.Errorf("commit time implausible: %v", ts)
	}
}

func TestChangedSince(t *testing.T) {
	t.Parallel()
	gitOrSkip(t)

	dir := initRepo(t)
	commitFile(t, dir, "a.js", "const a = 1;\n")

	g := &Git{Root: dir}
	paths, err := g.ChangedSince(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ChangedSince: %v", err)
	}
	found := false
	for _, p := range paths {
		if p == "a.js" {
			found = true
		}
	}
	if !found {
		t.Errorf("a.js not in changed set: %v", paths)
	}
}

func TestWorkingChanges(t *testing.T) {
	t.Parallel()
	gitOrSkip(t)

	dir := initRepo(t)
	commitFile(t, dir, "a.js", "const a = 1;\n")

	if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte("const a = 2;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fresh.js"), []byte("const f = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g := &Git{Root: dir}
	paths, err := g.WorkingChanges()
	if err != nil {
		t.Fatalf("WorkingChanges: %v", err)
	}
	got := make(map[string]bool)
	for _, p := range paths {
		got[p] = true
	}
	if !got["a.js"] {
		t.Errorf("modified file missing: %v", paths)
	}
	if !got["fresh.js"] {
		t.Errorf("untracked file missing: %v", paths)
	}
}

func TestUnavailableOutsideRepo(t *testing.T) {
	t.Parallel()
	gitOrSkip(t)

	g := &Git{Root: t.TempDir()}
	if _, err := g.LastCommitTime(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
