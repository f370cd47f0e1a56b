// Package toon implements TOON (Token-Oriented Object Notation) encoding
// of a scan report: compact tabular output for agent and human consumption.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/karowan/codemodel/internal/discover"
	"github.com/karowan/codemodel/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode renders the discovery bundle as TOON tables. Files are ordered by
// rank descending (path ascending on ties); everything else is sorted for
// stable output.
func Encode(projectName string, res *discover.Result, ranks map[string]float64, edges []model.DependencyEdge) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(projectName)))

	files := append([]model.FileInfo(nil), res.Files...)
	sort.SliceStable(files, func(i, j int) bool {
		ri, rj := ranks[files[i].RelPath], ranks[files[j].RelPath]
		if ri != rj {
			return ri > rj
		}
		return files[i].RelPath < files[j].RelPath
	})
	var fileRows [][]string
	for _, f := range files {
		fileRows = append(fileRows, []string{
			f.RelPath,
			f.Ext,
			fmt.Sprintf("%d", f.Size),
			fmt.Sprintf("%.4f", ranks[f.RelPath]),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "ext", "size", "rank"}, fileRows))

	var artRows [][]string
	for i := range res.RawArtifacts {
		a := &res.RawArtifacts[i]
		artRows = append(artRows, []string{
			a.Path,
			strings.Join(a.Exports, " "),
			strings.Join(a.Classes, " "),
			strings.Join(a.Functions, " "),
			string(a.Strategy),
		})
	}
	parts = append(parts, formatTabular("artifacts", []string{"path", "exports", "classes", "functions", "strategy"}, artRows))

	var depRows [][]string
	for _, e := range edges {
		depRows = append(depRows, []string{e.From, e.To, e.Kind})
	}
	parts = append(parts, formatTabular("dependencies", []string{"from", "to", "kind"}, depRows))

	type termCount struct {
		term  string
		count int
	}
	terms := make([]termCount, 0, len(res.TermFrequency))
	for term, count := range res.TermFrequency {
		terms = append(terms, termCount{term, count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].count != terms[j].count {
			return terms[i].count > terms[j].count
		}
		return terms[i].term < terms[j].term
	})
	var termRows [][]string
	for _, tc := range terms {
		termRows = append(termRows, []string{tc.term, fmt.Sprintf("%d", tc.count)})
	}
	parts = append(parts, formatTabular("terms", []string{"term", "count"}, termRows))

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
