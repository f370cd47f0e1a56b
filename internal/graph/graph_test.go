package graph

import (
	"math"
	"testing"

	"github.com/karowan/codemodel/internal/model"
)

func TestBuildEdges(t *testing.T) {
	t.Parallel()

	ig := model.ImportGraph{
		"b.js": {"a.js"},
		"c.js": {"a.js", "b.js"},
	}
	edges := BuildEdges(ig)
	if len(edges) != 3 {
		t.Fatalf("edges: %+v", edges)
	}
	// deterministic order regardless of map iteration
	if edges[0].From != "b.js" || edges[0].To != "a.js" {
		t.Errorf("edges[0]: %+v", edges[0])
	}
	if edges[1].From != "c.js" || edges[1].To != "a.js" {
		t.Errorf("edges[1]: %+v", edges[1])
	}
	for _, e := range edges {
		if e.Kind != EdgeKindImport {
			t.Errorf("kind = %q", e.Kind)
		}
	}
}

func TestRankUniformWithoutEdges(t *testing.T) {
	t.Parallel()

	ranks := Rank([]string{"a.js", "b.js"}, nil)
	if len(ranks) != 2 {
		t.Fatalf("ranks: %v", ranks)
	}
	for p, r := range ranks {
		if math.Abs(r-0.5) > 1e-9 {
			t.Errorf("rank[%s] = %f, want 0.5", p, r)
		}
	}
}

func TestRankFavorsImportedFile(t *testing.T) {
	t.Parallel()

	paths := []string{"a.js", "b.js", "c.js"}
	edges := []model.DependencyEdge{
		{From: "b.js", To: "a.js", Kind: EdgeKindImport},
		{From: "c.js", To: "a.js", Kind: EdgeKindImport},
	}
	ranks := Rank(paths, edges)
	if ranks["a.js"] <= ranks["b.js"] || ranks["a.js"] <= ranks["c.js"] {
		t.Errorf("imported module should rank highest: %v", ranks)
	}

	var sum float64
	for _, r := range ranks {
		sum += r
	}
	if math.Abs(sum-1.0) > 1e-3 {
		t.Errorf("ranks should sum to ~1, got %f", sum)
	}
}

func TestRankIgnoresEdgesToUnknownNodes(t *testing.T) {
	t.Parallel()

	ranks := Rank([]string{"a.js"}, []model.DependencyEdge{
		{From: "a.js", To: "ghost.js", Kind: EdgeKindImport},
	})
	if len(ranks) != 1 {
		t.Fatalf("ranks: %v", ranks)
	}
	if _, ok := ranks["ghost.js"]; ok {
		t.Error("unknown target must not receive rank")
	}
}
