package grid

import (
	"log"

	"github.com/katalvlaran/lvlath/core"
)

// AdjacencyTolerance is the largest Manhattan distance at which a spliced
// node (spot or work location) is considered next to a path cell. It is a
// little over one cell so that spots stored with fractional coordinates still
// attach to the cell they were drawn beside.
const AdjacencyTolerance = 1.5

// stepWeight is the cost of moving between two neighbouring cells.
const stepWeight int64 = 1

// Graph is a directed, unit-weighted graph over grid points. Vertices are
// keyed by Point.String(). A Graph is built once per request and never
// mutated afterwards.
type Graph struct {
	g      *core.Graph
	points map[string]Point
	order  []Point
	path   map[Point]struct{}
	degree map[Point]int
}

func newGraph() *Graph {
	return &Graph{
		g:      core.NewGraph(core.WithDirected(true), core.WithWeighted()),
		points: make(map[string]Point),
		path:   make(map[Point]struct{}),
		degree: make(map[Point]int),
	}
}

// Build rasterizes the segments into unit cells and splices in the special
// nodes. Segments must already be valid; invalid ones are skipped.
func Build(segments []Segment, special ...Point) *Graph {
	g := newGraph()

	for _, s := range segments {
		if s.Validate() != nil {
			continue
		}
		cells := s.cells()
		for _, c := range cells {
			g.addNode(c)
			g.path[c] = struct{}{}
		}
		for i := 1; i < len(cells); i++ {
			a, b := cells[i-1], cells[i]
			switch s.Direction {
			case OneWayForward:
				g.addEdge(a, b)
			case OneWayBackward:
				g.addEdge(b, a)
			case Bidirectional:
				g.addEdge(a, b)
				g.addEdge(b, a)
			}
		}
	}

	for _, p := range special {
		g.splice(p)
	}
	return g
}

// splice attaches p to every path cell in line with it and within the
// adjacency tolerance. Points already on the path are left as they are.
func (g *Graph) splice(p Point) {
	if _, onPath := g.path[p]; onPath {
		return
	}
	g.addNode(p)
	for _, c := range g.order {
		if _, isPath := g.path[c]; !isPath {
			continue
		}
		if c.aligned(p) && c.Manhattan(p) <= AdjacencyTolerance {
			g.addEdge(p, c)
			g.addEdge(c, p)
		}
	}
}

func (g *Graph) addNode(p Point) {
	key := p.String()
	if _, ok := g.points[key]; ok {
		return
	}
	if err := g.g.AddVertex(key); err != nil {
		log.Printf("Skipping grid node %s: %v", key, err)
		return
	}
	g.points[key] = p
	g.order = append(g.order, p)
}

// addEdge links from to to once; overlapping segments reuse the edge.
func (g *Graph) addEdge(from, to Point) {
	f, t := from.String(), to.String()
	if g.g.HasEdge(f, t) {
		return
	}
	if _, err := g.g.AddEdge(f, t, stepWeight); err != nil {
		log.Printf("Skipping grid edge %s -> %s: %v", f, t, err)
		return
	}
	g.degree[from]++
	g.degree[to]++
}

// Has reports whether p is a node of the graph.
func (g *Graph) Has(p Point) bool {
	_, ok := g.points[p.String()]
	return ok
}

// OnPath reports whether p was produced by rasterizing a segment.
func (g *Graph) OnPath(p Point) bool {
	_, ok := g.path[p]
	return ok
}

// Neighbors returns the nodes reachable from p in one step.
func (g *Graph) Neighbors(p Point) []Point {
	key := p.String()
	if !g.Has(p) {
		return nil
	}
	edges, err := g.g.Neighbors(key)
	if err != nil {
		return nil
	}
	var out []Point
	for _, e := range edges {
		if e.From != key {
			continue
		}
		if n, ok := g.points[e.To]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Degree counts edges leaving and entering p.
func (g *Graph) Degree(p Point) int {
	return g.degree[p]
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []Point {
	out := make([]Point, len(g.order))
	copy(out, g.order)
	return out
}

func (g *Graph) point(key string) (Point, bool) {
	p, ok := g.points[key]
	return p, ok
}
