// Package lang holds the recognized-extension registry and filename
// heuristics shared by discovery and the incremental updater.
package lang

import (
	"path"
	"strings"
)

// DefaultSourceExt is appended to extensionless relative import targets.
const DefaultSourceExt = ".js"

// sourceExts are the script extensions that get structural extraction.
var sourceExts = map[string]struct{}{
	".js":  {},
	".jsx": {},
	".mjs": {},
	".cjs": {},
	".ts":  {},
	".tsx": {},
}

// recognizedExts is the full set kept by discovery: source plus the
// markup/config extensions tracked for file inventory only.
var recognizedExts = map[string]struct{}{
	".json": {},
	".md":   {},
	".html": {},
	".css":  {},
	".yml":  {},
	".yaml": {},
}

func init() {
	for ext := range sourceExts {
		recognizedExts[ext] = struct{}{}
	}
}

// IsSourceExt reports whether ext (including the dot) gets extraction.
func IsSourceExt(ext string) bool {
	_, ok := sourceExts[strings.ToLower(ext)]
	return ok
}

// IsRecognizedExt reports whether ext is kept by discovery at all.
func IsRecognizedExt(ext string) bool {
	_, ok := recognizedExts[strings.ToLower(ext)]
	return ok
}

// ClassifyKind infers an artifact kind from a project-relative path, used
// when the incremental updater creates a stub for a brand-new file. Order
// matters: test beats the rest, config beats naming conventions.
func ClassifyKind(relPath string) string {
	base := path.Base(relPath)
	lower := strings.ToLower(base)
	stem := strings.TrimSuffix(lower, path.Ext(lower))

	switch {
	case strings.HasSuffix(stem, ".test"), strings.HasSuffix(stem, ".spec"),
		strings.HasSuffix(stem, "-test"), strings.HasSuffix(stem, "-spec"):
		return "test"
	case strings.Contains(stem, "config") || strings.HasSuffix(lower, ".json") ||
		strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml"):
		return "config"
	case stem == "index":
		return "barrel"
	case strings.Contains(stem, "view") || strings.Contains(stem, "component") ||
		strings.Contains(stem, "page"):
		return "view"
	case strings.Contains(stem, "service") || strings.Contains(stem, "client") ||
		strings.Contains(stem, "api"):
		return "service"
	case strings.Contains(stem, "model") || strings.Contains(stem, "schema") ||
		strings.Contains(stem, "entity"):
		return "model"
	case strings.Contains(stem, "util") || strings.Contains(stem, "helper"):
		return "util"
	default:
		return "module"
	}
}
