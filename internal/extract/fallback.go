package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/karowan/codemodel/internal/model"
)

// The regex fallback trades precision for robustness: it re-derives
// imports, exports, classes and functions from raw text when the syntax
// tree is unusable. It misses computed or multi-line constructs and can
// match inside strings; the Discoverer prefers some structural signal over
// none for a file the parser rejects.

var (
	reImportFrom = regexp.MustCompile(`(?m)^\s*import\s+(.+?)\s+from\s*['"]([^'"]+)['"]`)
	reImportBare = regexp.MustCompile(`(?m)^\s*import\s*['"]([^'"]+)['"]`)
	reRequire    = regexp.MustCompile(`(?m)(?:const|let|var)\s+(\{[^}]*\}|[A-Za-z_$][\w$]*)\s*=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)

	reFunction = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?(async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(([^)]*)\)`)
	reArrow    = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(async\s+)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`)

	reClass = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][\w$]*)(?:\s+extends\s+([A-Za-z_$][\w$.]*))?`)

	reExportDecl       = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function\s*\*?|class|const|let|var)\s+([A-Za-z_$][\w$]*)`)
	reExportClause     = regexp.MustCompile(`(?m)^\s*export\s*\{([^}]*)\}`)
	reModuleExportProp = regexp.MustCompile(`(?:module\.)?exports\.([A-Za-z_$][\w$]*)\s*=`)
	reModuleExportObj  = regexp.MustCompile(`module\.exports\s*=\s*\{([^}]*)\}`)

	reIdent = regexp.MustCompile(`[A-Za-z_$][\w$]*`)
)

// Fallback derives a StructuralRecord by pattern matching over raw text.
// reason records why the primary parse was abandoned.
func Fallback(content []byte, reason string) model.StructuralRecord {
	text := string(content)
	offsets := lineOffsets(text)
	docs := scanDocComments(content)

	rec := model.StructuralRecord{
		Strategy:   model.StrategyRegex,
		ParseError: reason,
	}

	for _, m := range reImportFrom.FindAllStringSubmatchIndex(text, -1) {
		clause := text[m[2]:m[3]]
		rec.Imports = append(rec.Imports, model.Import{
			Source:     text[m[4]:m[5]],
			Specifiers: parseImportClause(clause),
		})
	}
	for _, m := range reImportBare.FindAllStringSubmatchIndex(text, -1) {
		rec.Imports = append(rec.Imports, model.Import{Source: text[m[2]:m[3]]})
	}
	for _, m := range reRequire.FindAllStringSubmatchIndex(text, -1) {
		binding := text[m[2]:m[3]]
		imp := model.Import{Source: text[m[4]:m[5]]}
		if strings.HasPrefix(binding, "{") {
			imp.Specifiers = identList(strings.Trim(binding, "{}"))
		} else {
			imp.Specifiers = []string{binding}
		}
		rec.Imports = append(rec.Imports, imp)
	}

	for _, m := range reFunction.FindAllStringSubmatchIndex(text, -1) {
		startLine := lineAt(offsets, m[0])
		fd := model.FunctionDetail{
			Name:       text[m[4]:m[5]],
			IsAsync:    m[2] >= 0,
			StartLine:  startLine,
			EndLine:    startLine,
			DocComment: docs[startLine],
			Params:     identList(text[m[6]:m[7]]),
		}
		rec.FunctionDetails = append(rec.FunctionDetails, fd)
	}
	for _, m := range reArrow.FindAllStringSubmatchIndex(text, -1) {
		startLine := lineAt(offsets, m[0])
		fd := model.FunctionDetail{
			Name:       text[m[2]:m[3]],
			IsAsync:    m[4] >= 0,
			StartLine:  startLine,
			EndLine:    startLine,
			DocComment: docs[startLine],
		}
		rec.FunctionDetails = append(rec.FunctionDetails, fd)
	}

	for _, m := range reClass.FindAllStringSubmatchIndex(text, -1) {
		startLine := lineAt(offsets, m[0])
		cd := model.ClassDetail{
			Name:       text[m[2]:m[3]],
			StartLine:  startLine,
			EndLine:    startLine,
			DocComment: docs[startLine],
		}
		if m[4] >= 0 {
			cd.Superclass = text[m[4]:m[5]]
		}
		rec.ClassDetails = append(rec.ClassDetails, cd)
	}

	seen := make(map[string]struct{})
	addExport := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		rec.Exports = append(rec.Exports, name)
	}
	for _, m := range reExportDecl.FindAllStringSubmatch(text, -1) {
		addExport(m[1])
	}
	for _, m := range reExportClause.FindAllStringSubmatch(text, -1) {
		for _, name := range identList(m[1]) {
			addExport(name)
		}
	}
	for _, m := range reModuleExportObj.FindAllStringSubmatch(text, -1) {
		for _, name := range identList(m[1]) {
			addExport(name)
		}
	}
	for _, m := range reModuleExportProp.FindAllStringSubmatch(text, -1) {
		addExport(m[1])
	}

	rec.FunctionDetails = dedupFunctions(rec.FunctionDetails)
	rec.ClassDetails = dedupClasses(rec.ClassDetails)
	for _, f := range rec.FunctionDetails {
		if f.Name != "" {
			rec.Functions = append(rec.Functions, f.Name)
		}
	}
	for _, c := range rec.ClassDetails {
		if c.Name != "" {
			rec.Classes = append(rec.Classes, c.Name)
		}
	}
	return rec
}

// parseImportClause splits "a, { b, c as d }, * as e" into bound names.
func parseImportClause(clause string) []string {
	var names []string
	clause = strings.TrimSpace(clause)

	if star := strings.Index(clause, "* as "); star >= 0 {
		rest := clause[star+len("* as "):]
		if id := reIdent.FindString(rest); id != "" {
			names = append(names, id)
		}
		clause = clause[:star]
	}

	if open := strings.Index(clause, "{"); open >= 0 {
		inner := clause[open+1:]
		if close := strings.Index(inner, "}"); close >= 0 {
			inner = inner[:close]
		}
		for _, seg := range strings.Split(inner, ",") {
			names = append(names, aliasName(seg)...)
		}
		clause = clause[:open]
	}

	// whatever remains is a default import name
	for _, seg := range strings.Split(clause, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if id := reIdent.FindString(seg); id == seg {
			names = append(names, seg)
		}
	}
	return names
}

// aliasName resolves "a as b" to b, plain "a" to a.
func aliasName(seg string) []string {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return nil
	}
	parts := strings.Fields(seg)
	if len(parts) == 3 && parts[1] == "as" {
		return []string{parts[2]}
	}
	if id := reIdent.FindString(seg); id != "" {
		return []string{id}
	}
	return nil
}

// identList pulls the first identifier out of each comma segment,
// resolving "a as b" / "a: b" renames to the local name.
func identList(s string) []string {
	var names []string
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" || strings.HasPrefix(seg, "...") {
			if strings.HasPrefix(seg, "...") {
				if id := reIdent.FindString(seg); id != "" {
					names = append(names, "..."+id)
				}
			}
			continue
		}
		if len(strings.Fields(seg)) == 3 && strings.Fields(seg)[1] == "as" {
			names = append(names, strings.Fields(seg)[2])
			continue
		}
		if colon := strings.Index(seg, ":"); colon >= 0 {
			if id := reIdent.FindString(seg[colon+1:]); id != "" {
				names = append(names, id)
				continue
			}
		}
		if id := reIdent.FindString(seg); id != "" {
			names = append(names, id)
		}
	}
	return names
}

// lineOffsets returns the starting byte offset of each line.
func lineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// lineAt converts a byte offset to a 1-based line number.
func lineAt(offsets []int, pos int) int {
	return sort.Search(len(offsets), func(i int) bool { return offsets[i] > pos })
}
