// Package graph turns a resolved import graph into dependency edges and
// ranks artifacts by import centrality with PageRank.
package graph

import (
	"math"
	"sort"

	"github.com/karowan/codemodel/internal/model"
)

// EdgeKindImport is the only edge kind discovery produces; the populate
// stage may add others later.
const EdgeKindImport = "import"

// BuildEdges flattens an import graph into dependency edges, sorted for
// deterministic output.
func BuildEdges(ig model.ImportGraph) []model.DependencyEdge {
	var edges []model.DependencyEdge
	for from, targets := range ig {
		for _, to := range targets {
			edges = append(edges, model.DependencyEdge{From: from, To: to, Kind: EdgeKindImport})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// Rank computes PageRank over the given node paths using dependency edges
// (an importer distributes rank to what it imports). With no edges every
// node gets the uniform rank.
func Rank(paths []string, edges []model.DependencyEdge) map[string]float64 {
	if len(paths) == 0 {
		return nil
	}

	nodes := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		nodes[p] = struct{}{}
	}

	if len(edges) == 0 {
		uniform := 1.0 / float64(len(paths))
		ranks := make(map[string]float64, len(paths))
		for p := range nodes {
			ranks[p] = uniform
		}
		return ranks
	}

	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for _, e := range edges {
		if _, ok := nodes[e.From]; !ok {
			continue
		}
		if _, ok := nodes[e.To]; !ok {
			continue
		}
		outEdges[e.From] = append(outEdges[e.From], e.To)
		outDegree[e.From]++
	}

	return pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			deg := float64(outDegree[src])
			contrib := alpha * rank[src] / deg
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}
