// Package importance annotates signal-flow graphs with importance scores and
// control-loop membership for export.
package importance

import (
	"errors"
	"fmt"

	"github.com/ritzau/looprank/pkg/model"
	"github.com/ritzau/looprank/pkg/rank"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch = errors.New("matrix shape does not match variable list")
	ErrMissingRank   = errors.New("node has no rank")
)

// CreateImportanceGraph builds the closed-loop and open-loop graphs of a
// system. A nonzero entry [row, col] of a connection matrix is the edge
// variables[col] -> variables[row], weighted by gains[row, col].
//
// Closed-loop edges that are absent from the open-loop graph are closed by a
// controller and get controlloop=1, all others controlloop=0. Every node of
// the closed-loop graph carries its score from ranks as importance. The
// open-loop graph is returned without annotations.
func CreateImportanceGraph(variables []string, closed, open, gains mat.Matrix, ranks rank.Dict) (*model.Graph, *model.Graph, error) {
	n := len(variables)
	for _, m := range []mat.Matrix{closed, open, gains} {
		r, c := m.Dims()
		if r != n || c != n {
			return nil, nil, fmt.Errorf("%w: matrix is %dx%d, want %dx%d", ErrShapeMismatch, r, c, n, n)
		}
	}

	openGraph := model.NewGraph()
	forEachNonzero(open, func(row, col int) {
		openGraph.AddEdge(&model.Edge{
			Source: variables[col],
			Target: variables[row],
			Weight: gains.At(row, col),
		})
	})

	closedGraph := model.NewGraph()
	forEachNonzero(closed, func(row, col int) {
		source, target := variables[col], variables[row]
		loop := 0
		if !openGraph.HasEdge(source, target) {
			loop = 1
		}
		closedGraph.AddEdge(&model.Edge{
			Source: source,
			Target: target,
			Weight: gains.At(row, col),
			Metadata: map[string]interface{}{
				model.KeyControlLoop: loop,
			},
		})
	})

	for _, node := range closedGraph.Nodes {
		score, ok := ranks.Score(node.ID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingRank, node.ID)
		}
		node.Metadata[model.KeyImportance] = score
	}

	return closedGraph, openGraph, nil
}

// forEachNonzero visits nonzero entries row by row
func forEachNonzero(m mat.Matrix, fn func(row, col int)) {
	r, c := m.Dims()
	for row := 0; row < r; row++ {
		for col := 0; col < c; col++ {
			if m.At(row, col) != 0 {
				fn(row, col)
			}
		}
	}
}
