package graph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ritzau/looprank/pkg/logging"
	"gonum.org/v1/gonum/mat"
)

// Dummy node name prefixes for the two ranking directions
const (
	ForwardPrefix  = "DV_forward"
	BackwardPrefix = "DV_backward"
)

var (
	ErrShapeMismatch     = errors.New("matrix shape does not match variable list")
	ErrDuplicateVariable = errors.New("duplicate variable")
)

// Case is the matrix form of a (possibly dummy-augmented) graph. Row and
// column i of both matrices belong to Variables[i].
type Case struct {
	Connections *mat.Dense
	Gains       *mat.Dense
	Variables   []string
	Dummies     int // Number of dummy nodes appended after the original nodes
}

// NewCase derives the connection and gain matrices of g without augmenting it
func NewCase(g *Graph) (*Case, error) {
	if g.Len() == 0 {
		return nil, fmt.Errorf("%w: empty graph", ErrShapeMismatch)
	}
	connections, gains := g.Matrices()
	return &Case{
		Connections: connections,
		Gains:       gains,
		Variables:   g.Nodes(),
	}, nil
}

// BuildGraph constructs the graph described by a connection and gain matrix.
// A nonzero connections[row, col] adds the edge variables[col] -> variables[row]
// weighted by gains[row, col]. Every variable becomes a node, connected or not.
func BuildGraph(variables []string, gains, connections mat.Matrix) (*Graph, error) {
	n := len(variables)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty variable list", ErrShapeMismatch)
	}
	if err := checkSquare("gain", gains, n); err != nil {
		return nil, err
	}
	if err := checkSquare("connection", connections, n); err != nil {
		return nil, err
	}

	g := New()
	for _, v := range variables {
		if g.HasNode(v) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateVariable, v)
		}
		g.AddNode(v)
	}

	for col, source := range variables {
		for row, sink := range variables {
			if connections.At(row, col) != 0 {
				g.SetEdge(source, sink, gains.At(row, col))
			}
		}
	}

	return g, nil
}

// BuildCase gives every node with an out-degree of exactly one a second
// outgoing edge to a fresh dummy sink weighted by dummyWeight, then returns the
// matrix form of the augmented graph. Dummies are named prefix1, prefix2, ...
// in node order. The input graph is left untouched.
func BuildCase(dummyWeight float64, g *Graph, prefix string) (*Case, error) {
	augmented := g.Clone()

	counter := 1
	dummies := 0
	for _, node := range g.Nodes() {
		if augmented.OutDegree(node) != 1 {
			continue
		}
		name := prefix + strconv.Itoa(counter)
		for augmented.HasNode(name) {
			counter++
			name = prefix + strconv.Itoa(counter)
		}
		augmented.SetEdge(node, name, dummyWeight)
		counter++
		dummies++
	}

	c, err := NewCase(augmented)
	if err != nil {
		return nil, err
	}
	c.Dummies = dummies

	logging.Debug("augmented graph with dummy sinks",
		"prefix", prefix, "nodes", g.Len(), "dummies", dummies)
	return c, nil
}

// RankForward builds the graph as given and augments it with dummy sinks
func RankForward(variables []string, gains, connections mat.Matrix, dummyWeight float64) (*Case, error) {
	g, err := BuildGraph(variables, gains, connections)
	if err != nil {
		return nil, err
	}
	return BuildCase(dummyWeight, g, ForwardPrefix)
}

// RankBackward builds the graph with every edge reversed, by transposing both
// matrices, and augments it with dummy sinks
func RankBackward(variables []string, gains, connections mat.Matrix, dummyWeight float64) (*Case, error) {
	g, err := BuildGraph(variables, gains.T(), connections.T())
	if err != nil {
		return nil, err
	}
	return BuildCase(dummyWeight, g, BackwardPrefix)
}

func checkSquare(name string, m mat.Matrix, n int) error {
	r, c := m.Dims()
	if r != n || c != n {
		return fmt.Errorf("%w: %s matrix is %dx%d, want %dx%d", ErrShapeMismatch, name, r, c, n, n)
	}
	return nil
}
