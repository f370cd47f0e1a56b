// Package freshness keeps the persisted model synchronized with the
// project's version-control history: it classifies the model as
// missing/fresh/stale/unknown and patches it in place for changed files
// instead of forcing a full rebuild.
package freshness

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/karowan/codemodel/internal/instance"
	"github.com/karowan/codemodel/internal/lang"
	"github.com/karowan/codemodel/internal/model"
)

// History is the read-only view of version control the checker needs.
// *vcs.Git satisfies it; tests substitute a stub.
type History interface {
	LastCommitTime() (time.Time, error)
	ChangedSince(t time.Time) ([]string, error)
	WorkingChanges() ([]string, error)
}

// Checker drives freshness checks and incremental updates for one
// project/model pair. A full build and an incremental update must not run
// concurrently against the same model dir; the load-mutate-save cycle is
// not transactional against external writers.
type Checker struct {
	ProjectRoot string
	Store       *instance.Store
	History     History
	Warn        io.Writer
}

func (c *Checker) warnf(format string, args ...any) {
	if c.Warn != nil {
		fmt.Fprintf(c.Warn, format, args...)
	}
}

// CheckFreshness compares the persisted model's timestamp against the
// project's commit history. Version-control failures report unknown, never
// an error: the caller proceeds as if fresh.
func (c *Checker) CheckFreshness() *model.FreshnessReport {
	modTime, exists := c.Store.ModTime()
	if !exists {
		return &model.FreshnessReport{
			Status: model.StatusMissing,
			Reason: "no persisted model; full build required",
		}
	}

	report := &model.FreshnessReport{
		ModelExists: true,
		ModelTime:   modTime.Unix(),
	}

	commitTime, err := c.History.LastCommitTime()
	if err != nil {
		report.Status = model.StatusUnknown
		report.Reason = "version-control history unavailable; assuming current"
		return report
	}
	report.VCSTime = commitTime.Unix()

	if !modTime.Before(commitTime) {
		report.Status = model.StatusFresh
		report.Reason = "model is at least as new as the latest commit"
		return report
	}

	changed, err := c.changedSourceFiles(modTime)
	if err != nil {
		report.Status = model.StatusUnknown
		report.Reason = "could not list changed files; assuming current"
		return report
	}
	if len(changed) == 0 {
		report.Status = model.StatusFresh
		report.Reason = "newer commits touched no tracked source files"
		return report
	}

	report.Status = model.StatusStale
	report.Stale = true
	report.ChangedFiles = changed
	report.Reason = fmt.Sprintf("%d source files changed since the model was written", len(changed))
	return report
}

// changedSourceFiles unions committed and uncommitted changes since t,
// deduplicated and filtered to recognized source extensions.
func (c *Checker) changedSourceFiles(t time.Time) ([]string, error) {
	committed, err := c.History.ChangedSince(t)
	if err != nil {
		return nil, err
	}
	working, err := c.History.WorkingChanges()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var changed []string
	for _, p := range append(committed, working...) {
		p = filepath.ToSlash(p)
		if !lang.IsSourceExt(filepath.Ext(p)) {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		changed = append(changed, p)
	}
	return changed, nil
}

// IncrementalUpdate patches the persisted model for the given changed
// files: removed files lose their artifact and every touching edge,
// existing artifacts get a shallow size refresh, new files get a minimal
// stub with a heuristic kind. The model is saved once, at the end.
func (c *Checker) IncrementalUpdate(changedFiles []string) (*model.UpdateSummary, error) {
	in, err := c.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	summary := &model.UpdateSummary{}
	for _, changed := range changedFiles {
		rel, abs, ok := c.resolveWithinRoot(changed)
		if !ok {
			c.warnf("Warning: skipping %s: outside project root\n", changed)
			continue
		}

		info, statErr := os.Stat(abs)
		switch {
		case statErr != nil:
			// gone from disk: drop the artifact and its edges atomically
			removed := false
			if _, present := in.Artifacts[rel]; present {
				delete(in.Artifacts, rel)
				removed = true
			}
			kept := in.Dependencies[:0]
			for _, edge := range in.Dependencies {
				if edge.From == rel || edge.To == rel {
					removed = true
					continue
				}
				kept = append(kept, edge)
			}
			in.Dependencies = kept
			if removed {
				summary.Removed = append(summary.Removed, rel)
			}

		case in.Artifacts[rel] != nil:
			// shallow refresh: richer fields are the populate stage's job
			in.Artifacts[rel].Size = info.Size()
			summary.Modified = append(summary.Modified, rel)

		default:
			stub := &model.ArtifactEntry{
				Path: rel,
				Kind: lang.ClassifyKind(rel),
				Size: info.Size(),
			}
			if content, readErr := os.ReadFile(abs); readErr == nil {
				stub.ContentHash = xxhash.Sum64(content)
			}
			in.Artifacts[rel] = stub
			summary.Added = append(summary.Added, rel)
		}
	}

	in.RecomputeStats()
	if err := c.Store.Save(in); err != nil {
		return nil, fmt.Errorf("saving model: %w", err)
	}

	summary.TotalChanged = len(summary.Added) + len(summary.Modified) + len(summary.Removed)
	summary.NewArtifactCount = in.Stats.ArtifactCount
	summary.NewDependencyCount = in.Stats.DependencyCount
	return summary, nil
}

// resolveWithinRoot resolves a changed-file path against the project root
// and rejects anything escaping it (a malformed or malicious entry in the
// changed list must not mutate the model).
func (c *Checker) resolveWithinRoot(changed string) (rel, abs string, ok bool) {
	abs = changed
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(c.ProjectRoot, changed)
	}
	abs = filepath.Clean(abs)

	r, err := filepath.Rel(c.ProjectRoot, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", "", false
	}
	return filepath.ToSlash(r), abs, true
}

// EnsureFresh is the entry point callers use before relying on the model.
// force signals that a rebuild is wanted regardless of state; autoUpdate
// lets a stale model be patched in place.
func (c *Checker) EnsureFresh(force, autoUpdate bool) (*model.EnsureResult, error) {
	if force {
		return &model.EnsureResult{
			Freshness: &model.FreshnessReport{
				Status: model.StatusForceRefresh,
				Reason: "refresh forced by caller",
			},
			Action: model.ActionRebuildRequired,
		}, nil
	}

	report := c.CheckFreshness()
	switch {
	case report.Status == model.StatusMissing:
		return &model.EnsureResult{Freshness: report, Action: model.ActionBootstrap}, nil

	case report.Status == model.StatusStale && autoUpdate && len(report.ChangedFiles) > 0:
		summary, err := c.IncrementalUpdate(report.ChangedFiles)
		if err != nil {
			return nil, err
		}
		report.Status = model.StatusRefreshed
		report.Stale = false
		return &model.EnsureResult{
			Freshness: report,
			Action:    model.ActionIncremental,
			Update:    summary,
		}, nil

	case report.Status == model.StatusStale:
		return &model.EnsureResult{Freshness: report, Action: model.ActionStale}, nil

	default:
		return &model.EnsureResult{Freshness: report, Action: model.ActionNone}, nil
	}
}
