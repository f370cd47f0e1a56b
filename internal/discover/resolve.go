package discover

import (
	"path"
	"strings"

	"github.com/karowan/codemodel/internal/lang"
	"github.com/karowan/codemodel/internal/model"
)

// resolveImports filters an artifact's imports to relative sources and
// resolves each against the artifact's own directory. Targets keep
// declaration order. External package sources are not edges; they are
// counted in the term table instead.
func resolveImports(artifactPath string, imports []model.Import) []string {
	var targets []string
	for _, imp := range imports {
		if !isRelativeSource(imp.Source) {
			continue
		}
		if target, ok := ResolveImportPath(artifactPath, imp.Source); ok {
			targets = append(targets, target)
		}
	}
	return targets
}

func isRelativeSource(source string) bool {
	return strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}

// ResolveImportPath resolves a relative import source against the
// importing file's directory, appending the default source extension when
// the target has none. Returns false for a target that escapes the
// project root.
func ResolveImportPath(fromPath, source string) (string, bool) {
	resolved := path.Join(path.Dir(fromPath), source)
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return "", false
	}
	if path.Ext(resolved) == "" {
		resolved += lang.DefaultSourceExt
	}
	return resolved, true
}
