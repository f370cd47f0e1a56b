// Package vcs provides the read-only git queries freshness checks need.
// Every query degrades to ErrUnavailable instead of failing hard: a
// project that is not under version control must never block the caller.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable means history could not be read: not a repository, git
// missing, or the command timed out.
var ErrUnavailable = errors.New("version control history unavailable")

const commandTimeout = 10 * time.Second

// Git runs read-only queries against one repository root.
type Git struct {
	Root string
}

func (g *Git) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: git %s: %v", ErrUnavailable, args[0], err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// LastCommitTime returns the timestamp of the most recent commit.
func (g *Git) LastCommitTime() (time.Time, error) {
	out, err := g.run("log", "-1", "--format=%ct")
	if err != nil {
		return time.Time{}, err
	}
	secs, convErr := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	if convErr != nil {
		return time.Time{}, fmt.Errorf("%w: bad commit timestamp %q", ErrUnavailable, out)
	}
	return time.Unix(secs, 0), nil
}

// ChangedSince returns the paths touched by commits after t.
func (g *Git) ChangedSince(t time.Time) ([]string, error) {
	out, err := g.run("log", "--since="+t.Format(time.RFC3339), "--name-only", "--pretty=format:")
	if err != nil {
		return nil, err
	}
	return splitPaths(out), nil
}

// WorkingChanges returns the paths with uncommitted changes relative to
// the current checkout.
func (g *Git) WorkingChanges() ([]string, error) {
	out, err := g.run("diff", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	paths := splitPaths(out)

	// untracked files are changes too
	if out, err = g.run("ls-files", "--others", "--exclude-standard"); err == nil {
		paths = append(paths, splitPaths(out)...)
	}
	return paths, nil
}

func splitPaths(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
