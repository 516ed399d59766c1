package model

// Metadata keys set by the importance annotator
const (
	KeyImportance  = "importance"
	KeyControlLoop = "controlloop"
)

// Graph is an exportable directed graph with per-node and per-edge metadata.
// Nodes and edges keep the order they were added in.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	nodeIndex map[string]int
	edgeIndex map[[2]string]int
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make([]*Node, 0),
		Edges:     make([]*Edge, 0),
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]int),
	}
}

// Node is a process variable (or dummy sink) in the graph.
type Node struct {
	ID       string                 `json:"id"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Edge is a weighted signal-flow connection from Source to Target.
type Edge struct {
	Source   string                 `json:"source"`
	Target   string                 `json:"target"`
	Weight   float64                `json:"weight"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AddNode adds a node to the graph. If a node with the same ID exists, its
// metadata is merged into the existing node.
func (g *Graph) AddNode(node *Node) {
	g.ensureIndex()
	if node.Metadata == nil {
		node.Metadata = make(map[string]interface{})
	}
	if i, exists := g.nodeIndex[node.ID]; exists {
		for k, v := range node.Metadata {
			g.Nodes[i].Metadata[k] = v
		}
		return
	}
	g.nodeIndex[node.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the graph, adding missing endpoints. An existing
// edge between the same nodes takes the new weight and merged metadata.
func (g *Graph) AddEdge(edge *Edge) {
	g.ensureIndex()
	if edge.Metadata == nil {
		edge.Metadata = make(map[string]interface{})
	}
	g.AddNode(&Node{ID: edge.Source})
	g.AddNode(&Node{ID: edge.Target})

	key := [2]string{edge.Source, edge.Target}
	if i, exists := g.edgeIndex[key]; exists {
		g.Edges[i].Weight = edge.Weight
		for k, v := range edge.Metadata {
			g.Edges[i].Metadata[k] = v
		}
		return
	}
	g.edgeIndex[key] = len(g.Edges)
	g.Edges = append(g.Edges, edge)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	g.ensureIndex()
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return g.Nodes[i], true
}

// Edge returns the edge from source to target.
func (g *Graph) Edge(source, target string) (*Edge, bool) {
	g.ensureIndex()
	i, ok := g.edgeIndex[[2]string{source, target}]
	if !ok {
		return nil, false
	}
	return g.Edges[i], true
}

// HasEdge reports whether the edge from source to target exists.
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.Edge(source, target)
	return ok
}

// Importance returns the importance score annotated on the node, if any.
func (n *Node) Importance() (float64, bool) {
	v, ok := n.Metadata[KeyImportance].(float64)
	return v, ok
}

// ControlLoop returns the control-loop flag annotated on the edge, if any.
func (e *Edge) ControlLoop() (int, bool) {
	switch v := e.Metadata[KeyControlLoop].(type) {
	case int:
		return v, true
	case float64:
		// JSON round trips turn ints into floats
		return int(v), true
	}
	return 0, false
}

// ensureIndex rebuilds the lookup maps, e.g. after JSON decoding.
func (g *Graph) ensureIndex() {
	if g.nodeIndex != nil && len(g.nodeIndex) == len(g.Nodes) && len(g.edgeIndex) == len(g.Edges) {
		return
	}
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Metadata == nil {
			n.Metadata = make(map[string]interface{})
		}
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[[2]string]int, len(g.Edges))
	for i, e := range g.Edges {
		if e.Metadata == nil {
			e.Metadata = make(map[string]interface{})
		}
		g.edgeIndex[[2]string{e.Source, e.Target}] = i
	}
}
