// Package discover walks a project tree, runs structural extraction on
// every source file and aggregates the results into the raw-artifact /
// import-graph / term-frequency bundle a populate stage consumes.
package discover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/karowan/codemodel/internal/extract"
	"github.com/karowan/codemodel/internal/lang"
	"github.com/karowan/codemodel/internal/model"
)

// Result is the output of one discovery pass. Each pass owns a freshly
// constructed bundle; nothing here is shared between passes.
type Result struct {
	Files         []model.FileInfo
	RawArtifacts  []model.RawArtifact
	ImportGraph   model.ImportGraph
	TermFrequency model.TermFrequency
	DirectoryTree model.DirectoryTree
}

// Discover runs one full discovery pass under root. excludes and includes
// follow the pattern rules of newExcluder / compileIncludes. Warnings for
// skipped files go to warn; only a structurally invalid root is an error.
//
// Files are processed strictly sequentially, so the accumulating maps need
// no synchronization.
func Discover(root string, excludes, includes []string, warn io.Writer) (*Result, error) {
	if warn == nil {
		warn = io.Discard
	}
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("project root must be absolute: %s", root)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	excluder := newExcluder(excludes)
	includeRes, err := compileIncludes(includes)
	if err != nil {
		return nil, err
	}
	gi := loadGitignore(root)

	res := &Result{
		ImportGraph:   make(model.ImportGraph),
		TermFrequency: make(model.TermFrequency),
		DirectoryTree: make(model.DirectoryTree),
	}

	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		name := d.Name()

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || excluder.excludes(name, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if excluder.excludes(name, rel) {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !lang.IsRecognizedExt(ext) {
			return nil
		}
		if len(includeRes) > 0 && !matchesAny(includeRes, rel) {
			return nil
		}

		var size int64
		if fi, statErr := d.Info(); statErr == nil {
			size = fi.Size()
		}
		res.Files = append(res.Files, model.FileInfo{RelPath: rel, Ext: ext, Size: size})

		addPathTerms(res.TermFrequency, rel)
		insertTreePath(res.DirectoryTree, rel)

		if !lang.IsSourceExt(ext) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			fmt.Fprintf(warn, "Warning: %s: %v\n", rel, readErr)
			return nil
		}

		art := model.RawArtifact{
			Path:             rel,
			StructuralRecord: extract.Extract(content, rel),
			ModuleDoc:        extract.ModuleDoc(content),
			ContentHash:      xxhash.Sum64(content),
		}
		res.RawArtifacts = append(res.RawArtifacts, art)

		if targets := resolveImports(art.Path, art.Imports); len(targets) > 0 {
			res.ImportGraph[art.Path] = targets
		}
		addArtifactTerms(res.TermFrequency, &art)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	return res, nil
}

// excluder applies exclude patterns: a bare name excludes that directory
// or file name anywhere in the tree; a pattern containing a separator or
// wildcard is matched verbatim against the relative path.
type excluder struct {
	names map[string]struct{}
	globs []string
}

func newExcluder(patterns []string) *excluder {
	e := &excluder{names: make(map[string]struct{})}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "/\\*?[") {
			e.globs = append(e.globs, filepath.ToSlash(p))
		} else {
			e.names[p] = struct{}{}
		}
	}
	return e
}

func (e *excluder) excludes(name, rel string) bool {
	if _, ok := e.names[name]; ok {
		return true
	}
	return e.matchesGlob(rel)
}

func (e *excluder) matchesGlob(rel string) bool {
	for _, g := range e.globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// compileIncludes turns simple glob patterns into anchored case-insensitive
// regexes: * matches anything, everything else is literal.
func compileIncludes(patterns []string) ([]*regexp.Regexp, error) {
	var res []*regexp.Regexp
	for _, p := range patterns {
		if p == "" {
			continue
		}
		expr := "(?i)^" + strings.ReplaceAll(regexp.QuoteMeta(filepath.ToSlash(p)), `\*`, ".*") + "$"
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func matchesAny(res []*regexp.Regexp, rel string) bool {
	for _, re := range res {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// insertTreePath nests rel's segments into the directory tree; the leaf
// file maps to nil.
func insertTreePath(tree model.DirectoryTree, rel string) {
	segments := strings.Split(rel, "/")
	node := tree
	for i, seg := range segments {
		if i == len(segments)-1 {
			node[seg] = nil
			return
		}
		child, ok := node[seg]
		if !ok || child == nil {
			child = make(model.DirectoryTree)
			node[seg] = child
		}
		node = child
	}
}
