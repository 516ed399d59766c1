package output

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/ritzau/looprank/pkg/model"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/iterator"
)

// WriteGraphJSON writes the graph as indented JSON
func WriteGraphJSON(w io.Writer, g *model.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// ReadGraphJSON reads a graph written by WriteGraphJSON
func ReadGraphJSON(r io.Reader) (*model.Graph, error) {
	g := model.NewGraph()
	if err := json.NewDecoder(r).Decode(g); err != nil {
		return nil, err
	}
	return g, nil
}

// WriteGraphDOT writes the graph in Graphviz DOT format. Nodes carry their
// importance and control loop edges are drawn red.
func WriteGraphDOT(w io.Writer, g *model.Graph, name string) error {
	b, err := dot.Marshal(newDOTGraph(g), name, "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// dotGraph presents a model.Graph as a gonum directed graph. Node IDs follow
// the order nodes were added in.
type dotGraph struct {
	nodes []graph.Node
	from  map[int64][]graph.Node
	to    map[int64][]graph.Node
	edges map[[2]int64]*dotEdge
}

func newDOTGraph(g *model.Graph) *dotGraph {
	d := &dotGraph{
		from:  make(map[int64][]graph.Node),
		to:    make(map[int64][]graph.Node),
		edges: make(map[[2]int64]*dotEdge),
	}

	ids := make(map[string]*dotNode, len(g.Nodes))
	for i, n := range g.Nodes {
		node := &dotNode{id: int64(i), node: n}
		ids[n.ID] = node
		d.nodes = append(d.nodes, node)
	}
	for _, e := range g.Edges {
		from, to := ids[e.Source], ids[e.Target]
		d.from[from.id] = append(d.from[from.id], to)
		d.to[to.id] = append(d.to[to.id], from)
		d.edges[[2]int64{from.id, to.id}] = &dotEdge{from: from, to: to, edge: e}
	}
	return d
}

func (g *dotGraph) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(g.nodes)) {
		return nil
	}
	return g.nodes[id]
}

func (g *dotGraph) Nodes() graph.Nodes {
	return iterator.NewOrderedNodes(g.nodes)
}

func (g *dotGraph) From(id int64) graph.Nodes {
	return iterator.NewOrderedNodes(g.from[id])
}

func (g *dotGraph) To(id int64) graph.Nodes {
	return iterator.NewOrderedNodes(g.to[id])
}

func (g *dotGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

func (g *dotGraph) HasEdgeFromTo(uid, vid int64) bool {
	_, ok := g.edges[[2]int64{uid, vid}]
	return ok
}

func (g *dotGraph) Edge(uid, vid int64) graph.Edge {
	e, ok := g.edges[[2]int64{uid, vid}]
	if !ok {
		return nil
	}
	return e
}

func (g *dotGraph) DOTAttributers() (graphAttrs, nodeAttrs, edgeAttrs encoding.Attributer) {
	return attributes{{Key: "rankdir", Value: "LR"}}, attributes{{Key: "shape", Value: "box"}}, attributes(nil)
}

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute {
	return a
}

type dotNode struct {
	id   int64
	node *model.Node
}

func (n *dotNode) ID() int64     { return n.id }
func (n *dotNode) DOTID() string { return n.node.ID }

func (n *dotNode) Attributes() []encoding.Attribute {
	score, ok := n.node.Importance()
	if !ok {
		return nil
	}
	return []encoding.Attribute{{Key: model.KeyImportance, Value: strconv.FormatFloat(score, 'g', 6, 64)}}
}

type dotEdge struct {
	from, to *dotNode
	edge     *model.Edge
}

func (e *dotEdge) From() graph.Node { return e.from }
func (e *dotEdge) To() graph.Node   { return e.to }

func (e *dotEdge) ReversedEdge() graph.Edge {
	return &dotEdge{from: e.to, to: e.from, edge: e.edge}
}

func (e *dotEdge) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "label", Value: formatFloat(e.edge.Weight)}}
	if loop, ok := e.edge.ControlLoop(); ok && loop == 1 {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "red"})
	}
	return attrs
}
