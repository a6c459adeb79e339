package walkroute

import (
	"math"

	"github.com/paulmach/osm"
)

// DistanceEpsilon is tolerance (meters) under which two candidates are compared by time instead of distance
const DistanceEpsilon = 0.1

// Diversifier produces structurally distinct alternatives by Yen's k shortest paths algorithm
type Diversifier struct {
	solver *Solver
	// Policy is used for spur searches and for candidate metrics
	Policy    *WaitPolicy
	StartTime float64
}

// NewDiversifier returns diversifier with signal aware spur searches
func NewDiversifier(solver *Solver, policy *WaitPolicy) *Diversifier {
	return &Diversifier{
		solver: solver,
		Policy: policy,
	}
}

// lessByDistance compares routes by distance first and by total time when distances are within DistanceEpsilon
func lessByDistance(a, b Route) bool {
	if math.Abs(a.DistanceMeters-b.DistanceMeters) > DistanceEpsilon {
		return a.DistanceMeters < b.DistanceMeters
	}
	return a.TotalSeconds() < b.TotalSeconds()
}

// KShortest returns up to k routes from start to goal. First one is base path (solved when base is nil),
// others are alternatives in acceptance order. No two returned routes share edge set
func (div *Diversifier) KShortest(start, goal osm.NodeID, base []EdgeID, k int) []Route {
	if k <= 0 {
		return nil
	}
	walker := div.solver.walker
	if base == nil {
		res := div.solver.ShortestPath(start, goal, WithSignalAware(div.Policy), WithStartTime(div.StartTime))
		if !res.Found() {
			return nil
		}
		base = res.Edges
	}
	baseRoute, err := walker.Walk(start, base, div.StartTime, div.Policy)
	if err != nil || baseRoute.Goal != goal || !baseRoute.IsFinite() {
		return nil
	}
	accepted := []Route{baseRoute.WithClass(ROUTE_FASTEST)}
	seen := map[string]struct{}{
		edgeSetSignature(baseRoute.Edges): {},
	}
	candidates := []Route{}

	for i := 1; i < k; i++ {
		prev := accepted[len(accepted)-1]
		for j := 0; j < len(prev.Edges); j++ {
			spurNode := prev.Nodes[j]
			root := prev.Edges[:j]
			forbidden := div.forbiddenFor(accepted, prev, j)

			rootRoute, err := walker.Walk(start, root, div.StartTime, div.Policy)
			if err != nil {
				continue
			}
			spur := div.solver.ShortestPath(
				spurNode, goal,
				WithForbiddenEdges(forbidden),
				WithSignalAware(div.Policy),
				WithStartTime(div.StartTime+rootRoute.TotalSeconds()),
			)
			if !spur.Found() {
				continue
			}
			total := joinEdges(root, spur.Edges)
			candidate, err := walker.Walk(start, total, div.StartTime, div.Policy)
			if err != nil || candidate.Goal != goal || !candidate.IsFinite() {
				continue
			}
			sig := edgeSetSignature(candidate.Edges)
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}
			candidates = append(candidates, candidate.WithClass(ROUTE_ALTERNATIVE))
		}
		if len(candidates) == 0 {
			break
		}
		best := 0
		for c := 1; c < len(candidates); c++ {
			if lessByDistance(candidates[c], candidates[best]) {
				best = c
			}
		}
		accepted = append(accepted, candidates[best])
		candidates = append(candidates[:best], candidates[best+1:]...)
	}
	return accepted
}

// forbiddenFor collects edges excluded from spur search at j-th node of prev:
// next edges of accepted paths sharing the root, root edges and edges touching root nodes other than spur node
func (div *Diversifier) forbiddenFor(accepted []Route, prev Route, j int) map[EdgeID]struct{} {
	graph := div.solver.walker.Graph
	root := prev.Edges[:j]
	forbidden := make(map[EdgeID]struct{})
	for _, path := range accepted {
		if len(path.Edges) > j && sameEdges(path.Edges[:j], root) {
			forbidden[path.Edges[j]] = struct{}{}
		}
	}
	for _, id := range root {
		forbidden[id] = struct{}{}
	}
	for _, node := range prev.Nodes[:j] {
		for _, adj := range graph.Neighbors(node) {
			forbidden[adj.Edge] = struct{}{}
		}
	}
	return forbidden
}

// joinEdges concatenates root and spur skipping spur edges which repeat the tail of root
func joinEdges(root, spur []EdgeID) []EdgeID {
	total := make([]EdgeID, 0, len(root)+len(spur))
	total = append(total, root...)
	for _, id := range spur {
		if len(total) > 0 && total[len(total)-1] == id {
			continue
		}
		total = append(total, id)
	}
	return total
}

func sameEdges(a, b []EdgeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
