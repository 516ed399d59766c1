package importance

import (
	"errors"
	"testing"

	"github.com/ritzau/looprank/pkg/rank"
	"gonum.org/v1/gonum/mat"
)

func TestCreateImportanceGraph(t *testing.T) {
	// Process: FT -> PV, PV -> TT. The controller closes TT -> FT.
	variables := []string{"FT", "PV", "TT"}
	open := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	})
	closed := mat.NewDense(3, 3, []float64{
		0, 0, 1,
		1, 0, 0,
		0, 1, 0,
	})
	gains := mat.NewDense(3, 3, []float64{
		0, 0, -0.5,
		2, 0, 0,
		0, 1.5, 0,
	})
	ranks, err := rank.NewDict(variables, []float64{0.5, 0.3, 0.2})
	if err != nil {
		t.Fatalf("NewDict() error = %v", err)
	}

	closedGraph, openGraph, err := CreateImportanceGraph(variables, closed, open, gains, ranks)
	if err != nil {
		t.Fatalf("CreateImportanceGraph() error = %v", err)
	}

	if len(closedGraph.Edges) != 3 || len(openGraph.Edges) != 2 {
		t.Fatalf("Expected 3 closed and 2 open edges, got %d and %d", len(closedGraph.Edges), len(openGraph.Edges))
	}

	tests := []struct {
		source, target string
		loop           int
		weight         float64
	}{
		{"TT", "FT", 1, -0.5},
		{"FT", "PV", 0, 2},
		{"PV", "TT", 0, 1.5},
	}
	for _, tt := range tests {
		e, ok := closedGraph.Edge(tt.source, tt.target)
		if !ok {
			t.Errorf("Edge %s->%s missing", tt.source, tt.target)
			continue
		}
		if v, _ := e.ControlLoop(); v != tt.loop {
			t.Errorf("Edge %s->%s controlloop = %d, want %d", tt.source, tt.target, v, tt.loop)
		}
		if e.Weight != tt.weight {
			t.Errorf("Edge %s->%s weight = %g, want %g", tt.source, tt.target, e.Weight, tt.weight)
		}
	}

	for _, v := range variables {
		n, ok := closedGraph.Node(v)
		if !ok {
			t.Fatalf("Node %s missing", v)
		}
		want, _ := ranks.Score(v)
		if got, ok := n.Importance(); !ok || got != want {
			t.Errorf("Node %s importance = %g, want %g", v, got, want)
		}
	}

	// The open-loop graph carries no annotations
	for _, e := range openGraph.Edges {
		if _, ok := e.ControlLoop(); ok {
			t.Errorf("Open edge %s->%s should not be annotated", e.Source, e.Target)
		}
	}
	for _, n := range openGraph.Nodes {
		if _, ok := n.Importance(); ok {
			t.Errorf("Open node %s should not be annotated", n.ID)
		}
	}
}

func TestCreateImportanceGraph_SameConnections(t *testing.T) {
	variables := []string{"a", "b"}
	conn := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	ranks, _ := rank.NewDict(variables, []float64{0.5, 0.5})

	closedGraph, _, err := CreateImportanceGraph(variables, conn, conn, conn, ranks)
	if err != nil {
		t.Fatalf("CreateImportanceGraph() error = %v", err)
	}
	for _, e := range closedGraph.Edges {
		if v, _ := e.ControlLoop(); v != 0 {
			t.Errorf("Edge %s->%s in both graphs should have controlloop 0", e.Source, e.Target)
		}
	}
}

func TestCreateImportanceGraph_IsolatedNodesLeftOut(t *testing.T) {
	variables := []string{"a", "b", "c"}
	conn := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0, 0,
	})
	ranks, _ := rank.NewDict([]string{"a", "b"}, []float64{0.5, 0.5})

	closedGraph, _, err := CreateImportanceGraph(variables, conn, conn, conn, ranks)
	if err != nil {
		t.Fatalf("CreateImportanceGraph() error = %v", err)
	}
	if _, ok := closedGraph.Node("c"); ok {
		t.Error("Isolated node c should not be in the graph")
	}
}

func TestCreateImportanceGraph_Errors(t *testing.T) {
	variables := []string{"a", "b"}
	conn := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	ranks, _ := rank.NewDict([]string{"a"}, []float64{1})

	if _, _, err := CreateImportanceGraph(variables, conn, conn, conn, ranks); !errors.Is(err, ErrMissingRank) {
		t.Errorf("Expected ErrMissingRank, got %v", err)
	}
	if _, _, err := CreateImportanceGraph(variables, mat.NewDense(3, 3, nil), conn, conn, ranks); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}
