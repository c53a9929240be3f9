package graph

// VertexLink is an edge together with the vertex at its other end.
type VertexLink struct {
	Edge   EdgeID
	Vertex *Vertex
}

// Vertex connects edges meeting at one point. It is a construction helper: connecting
// two vertices links the new edge to every edge already leaving the destination and to
// every edge already arriving at the source.
type Vertex struct {
	out []VertexLink
	in  []VertexLink
}

func NewVertex() *Vertex {
	return &Vertex{}
}

func (v *Vertex) ConnectTo(g *Graph, dest *Vertex, edge EdgeID) error {
	if _, err := g.edge(edge); err != nil {
		return err
	}

	v.out = append(v.out, VertexLink{Edge: edge, Vertex: dest})
	dest.in = append(dest.in, VertexLink{Edge: edge, Vertex: v})

	for _, n := range dest.out {
		if err := g.Next(edge, n.Edge, Start); err != nil {
			return err
		}
	}
	for _, n := range v.in {
		if err := g.Prev(edge, n.Edge, End); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vertex) OutLinks() []VertexLink {
	return v.out
}

func (v *Vertex) InLinks() []VertexLink {
	return v.in
}
