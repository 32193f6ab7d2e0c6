package grid

import (
	"log"
	"math"

	"github.com/katalvlaran/lvlath/dijkstra"
)

// Unreachable is the distance reported when no path exists.
const Unreachable = math.MaxInt

// ShortestPath returns the number of unit steps from origin to target, or
// Unreachable.
func ShortestPath(g *Graph, origin, target Point) int {
	if g == nil || !g.Has(target) {
		return Unreachable
	}
	d, ok := Distances(g, origin)[target]
	if !ok {
		return Unreachable
	}
	return d
}

// Distances runs Dijkstra once from origin and returns the hop count to every
// reachable node. Nodes missing from the result are unreachable.
func Distances(g *Graph, origin Point) map[Point]int {
	out := make(map[Point]int)
	if g == nil || !g.Has(origin) {
		return out
	}

	dist, _, err := dijkstra.Dijkstra(g.g, dijkstra.Source(origin.String()))
	if err != nil {
		log.Printf("Failed to compute distances from %s: %v", origin, err)
		return out
	}
	for key, d := range dist {
		if d == math.MaxInt64 || d < 0 {
			continue
		}
		if p, ok := g.point(key); ok {
			out[p] = int(d)
		}
	}
	return out
}
