package allocation

import (
	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
	"parking-allocator/internal/store"
)

// compatible keeps vacant spots of the requested category, preserving order.
func compatible(spots []model.Spot, occupied map[uint]struct{}, vt model.VehicleType) []model.Spot {
	var out []model.Spot
	for _, s := range spots {
		if _, taken := occupied[s.ID]; taken {
			continue
		}
		if s.Category != vt {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SelectBestSpot returns the vacant spot of type vt closest to origin along
// the graph, with its distance. Candidates missing from the graph or not
// reachable from origin are skipped. On equal distance the spot that comes
// first in spots wins.
func SelectBestSpot(spots []model.Spot, occupied map[uint]struct{}, vt model.VehicleType, origin grid.Point, g *grid.Graph) (model.Spot, int, bool) {
	candidates := compatible(spots, occupied, vt)
	if len(candidates) == 0 {
		return model.Spot{}, grid.Unreachable, false
	}

	dist := grid.Distances(g, origin)
	var best model.Spot
	bestDist, found := grid.Unreachable, false
	for _, c := range candidates {
		d, ok := dist[store.SpotPoint(c)]
		if !ok {
			continue
		}
		if d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, bestDist, found
}

// ResolveOrigin picks the work location when it is connected to the graph,
// and the entrance otherwise.
func ResolveOrigin(g *grid.Graph, entrance grid.Point, workLocation *grid.Point) grid.Point {
	if workLocation != nil && g.Degree(*workLocation) > 0 {
		return *workLocation
	}
	return entrance
}
