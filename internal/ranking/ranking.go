// Package ranking trims a scan report to its highest-ranked files.
package ranking

import (
	"sort"

	"github.com/karowan/codemodel/internal/discover"
	"github.com/karowan/codemodel/internal/model"
)

// SelectTop returns a copy of res limited to the maxFiles highest-ranked
// files, with artifacts and edges filtered to the surviving paths. The
// term table and directory tree describe the whole project and are kept
// as is. maxFiles <= 0 keeps everything.
func SelectTop(res *discover.Result, ranks map[string]float64, edges []model.DependencyEdge, maxFiles int) (*discover.Result, []model.DependencyEdge) {
	if maxFiles <= 0 || maxFiles >= len(res.Files) {
		return res, edges
	}

	files := append([]model.FileInfo(nil), res.Files...)
	sort.SliceStable(files, func(i, j int) bool {
		ri, rj := ranks[files[i].RelPath], ranks[files[j].RelPath]
		if ri != rj {
			return ri > rj
		}
		return files[i].RelPath < files[j].RelPath
	})
	files = files[:maxFiles]

	selected := make(map[string]struct{}, maxFiles)
	for _, f := range files {
		selected[f.RelPath] = struct{}{}
	}

	out := &discover.Result{
		Files:         files,
		TermFrequency: res.TermFrequency,
		DirectoryTree: res.DirectoryTree,
		ImportGraph:   make(model.ImportGraph),
	}
	for _, a := range res.RawArtifacts {
		if _, ok := selected[a.Path]; ok {
			out.RawArtifacts = append(out.RawArtifacts, a)
		}
	}
	for from, targets := range res.ImportGraph {
		if _, ok := selected[from]; !ok {
			continue
		}
		var kept []string
		for _, to := range targets {
			if _, ok := selected[to]; ok {
				kept = append(kept, to)
			}
		}
		if len(kept) > 0 {
			out.ImportGraph[from] = kept
		}
	}

	var keptEdges []model.DependencyEdge
	for _, e := range edges {
		_, fromOK := selected[e.From]
		_, toOK := selected[e.To]
		if fromOK && toOK {
			keptEdges = append(keptEdges, e)
		}
	}
	return out, keptEdges
}
