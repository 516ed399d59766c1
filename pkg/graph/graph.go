package graph

import (
	"sort"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// Edge is a weighted directed edge between two named nodes
type Edge struct {
	Source string
	Sink   string
	Weight float64
}

// Graph is a weighted directed graph over named nodes. Node IDs are assigned
// in insertion order, so iteration over nodes and edges is deterministic.
type Graph struct {
	graph *simple.WeightedDirectedGraph
	names []string          // Node names indexed by graph ID
	ids   map[string]int64  // Map from node name to graph ID
	loops map[int64]float64 // Self-loop weights; simple graphs do not hold self edges
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		graph: simple.NewWeightedDirectedGraph(0, 0),
		ids:   make(map[string]int64),
		loops: make(map[int64]float64),
	}
}

// AddNode adds a node to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if _, exists := g.ids[name]; exists {
		return
	}

	id := int64(len(g.names))
	g.ids[name] = id
	g.names = append(g.names, name)
	g.graph.AddNode(simple.Node(id))
}

// SetEdge adds or replaces the edge source -> sink, creating missing nodes
func (g *Graph) SetEdge(source, sink string, weight float64) {
	g.AddNode(source)
	g.AddNode(sink)

	sourceID := g.ids[source]
	sinkID := g.ids[sink]
	if sourceID == sinkID {
		g.loops[sourceID] = weight
		return
	}

	edge := g.graph.NewWeightedEdge(g.graph.Node(sourceID), g.graph.Node(sinkID), weight)
	g.graph.SetWeightedEdge(edge)
}

// HasNode reports whether the named node exists
func (g *Graph) HasNode(name string) bool {
	_, exists := g.ids[name]
	return exists
}

// HasEdge reports whether the edge source -> sink exists
func (g *Graph) HasEdge(source, sink string) bool {
	_, ok := g.Weight(source, sink)
	return ok
}

// Weight returns the weight of the edge source -> sink
func (g *Graph) Weight(source, sink string) (float64, bool) {
	sourceID, ok := g.ids[source]
	if !ok {
		return 0, false
	}
	sinkID, ok := g.ids[sink]
	if !ok {
		return 0, false
	}

	if sourceID == sinkID {
		w, ok := g.loops[sourceID]
		return w, ok
	}

	edge := g.graph.WeightedEdge(sourceID, sinkID)
	if edge == nil {
		return 0, false
	}
	return edge.Weight(), true
}

// OutDegree returns the number of edges leaving the node, self-loop included
func (g *Graph) OutDegree(name string) int {
	id, ok := g.ids[name]
	if !ok {
		return 0
	}
	degree := g.graph.From(id).Len()
	if _, loop := g.loops[id]; loop {
		degree++
	}
	return degree
}

// InDegree returns the number of edges entering the node, self-loop included
func (g *Graph) InDegree(name string) int {
	id, ok := g.ids[name]
	if !ok {
		return 0
	}
	degree := g.graph.To(id).Len()
	if _, loop := g.loops[id]; loop {
		degree++
	}
	return degree
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.names)
}

// Nodes returns the node names in insertion order
func (g *Graph) Nodes() []string {
	nodes := make([]string, len(g.names))
	copy(nodes, g.names)
	return nodes
}

// Name returns the node name for a graph ID
func (g *Graph) Name(id int64) string {
	if id < 0 || id >= int64(len(g.names)) {
		return ""
	}
	return g.names[id]
}

// Successors returns the sinks of all edges leaving the node, in node order
func (g *Graph) Successors(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}

	var ids []int64
	if _, loop := g.loops[id]; loop {
		ids = append(ids, id)
	}
	iter := g.graph.From(id)
	for iter.Next() {
		ids = append(ids, iter.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	successors := make([]string, len(ids))
	for i, sid := range ids {
		successors[i] = g.names[sid]
	}
	return successors
}

// Edges returns all edges ordered by source node, then sink node
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, source := range g.names {
		for _, sink := range g.Successors(source) {
			w, _ := g.Weight(source, sink)
			edges = append(edges, Edge{Source: source, Sink: sink, Weight: w})
		}
	}
	return edges
}

// Directed returns the underlying gonum graph. Self-loops are not part of it.
func (g *Graph) Directed() gonumgraph.Directed {
	return g.graph
}

// Clone returns an independent copy with the same node order
func (g *Graph) Clone() *Graph {
	c := New()
	for _, name := range g.names {
		c.AddNode(name)
	}
	for _, e := range g.Edges() {
		c.SetEdge(e.Source, e.Sink, e.Weight)
	}
	return c
}

// Matrices derives the connection and gain matrices of the graph. Row i and
// column i belong to the i-th node; entry [sink, source] describes the edge
// source -> sink. The graph must not be empty.
func (g *Graph) Matrices() (connections, gains *mat.Dense) {
	n := len(g.names)
	connections = mat.NewDense(n, n, nil)
	gains = mat.NewDense(n, n, nil)

	for _, e := range g.Edges() {
		row := int(g.ids[e.Sink])
		col := int(g.ids[e.Source])
		connections.Set(row, col, 1)
		gains.Set(row, col, e.Weight)
	}
	return connections, gains
}
