package discover

import (
	"path"
	"strings"
	"unicode"

	"github.com/karowan/codemodel/internal/model"
)

// Term namespaces. Counts are order-independent; insertion order follows
// the walk order of the pass that owns the table.
const (
	termDir         = "dir:"
	termNaming      = "naming:"
	termSuffix      = "suffix:"
	termExport      = "export:"
	termPackage     = "pkg:"
	termClass       = "class:"
	termClassSuffix = "classSuffix:"
)

// addPathTerms records the directory and naming-convention terms for one
// kept file.
func addPathTerms(tf model.TermFrequency, rel string) {
	dir := path.Dir(rel)
	for dir != "." && dir != "/" {
		tf[termDir+path.Base(dir)]++
		dir = path.Dir(dir)
	}

	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))

	tf[termNaming+namingConvention(stem)]++
	if stem == "index" {
		tf[termNaming+"index"]++
	}

	if suffix := trailingSegment(stem); suffix != "" {
		tf[termSuffix+suffix]++
	}
}

// addArtifactTerms records the symbol-level terms for one extracted
// artifact: exports, external packages, classes and class-name suffixes.
func addArtifactTerms(tf model.TermFrequency, art *model.RawArtifact) {
	for _, name := range art.Exports {
		tf[termExport+name]++
	}
	for _, imp := range art.Imports {
		if imp.Source != "" && !isRelativeSource(imp.Source) {
			tf[termPackage+imp.Source]++
		}
	}
	for _, name := range art.Classes {
		tf[termClass+name]++
		if suffix := classSuffix(name); suffix != "" {
			tf[termClassSuffix+suffix]++
		}
	}
}

func namingConvention(stem string) string {
	switch {
	case strings.Contains(stem, "-"):
		return "kebab-case"
	case stem != strings.ToLower(stem):
		return "PascalOrCamel"
	default:
		return "lowercase"
	}
}

// trailingSegment returns the final -xxx or .xxx segment of a base name
// (user-model -> model, user.test -> test), or "".
func trailingSegment(stem string) string {
	if i := strings.LastIndexAny(stem, "-."); i >= 0 && i+1 < len(stem) {
		return stem[i+1:]
	}
	return ""
}

// classSuffix returns the trailing capitalized word of a class name when
// it follows a lowercase letter: SessionManager -> Manager. Single-word
// names yield "".
func classSuffix(name string) string {
	runes := []rune(name)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			return string(runes[i:])
		}
	}
	return ""
}
