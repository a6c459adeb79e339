package walkroute

import (
	"container/heap"
	"math"

	"github.com/paulmach/osm"
)

// PathResult is an outcome of single shortest path search.
// Unreachable goal is reported as Cost = +Inf with no edges
type PathResult struct {
	Edges []EdgeID
	// Cost is travel plus wait time (seconds)
	Cost float64
	// Arrival is clock time at goal (seconds)
	Arrival float64
}

// Found reports whether goal was reached
func (result PathResult) Found() bool {
	return !math.IsInf(result.Cost, 1)
}

func noPath() PathResult {
	return PathResult{Cost: math.Inf(1), Arrival: math.Inf(1)}
}

type bearingConstraint struct {
	target    float64
	tolerance float64
}

type pathOptions struct {
	forbidden map[EdgeID]struct{}
	bearing   *bearingConstraint
	policy    *WaitPolicy
	startTime float64
}

// PathOption configures single solver invocation
type PathOption func(*pathOptions)

// WithForbiddenEdges excludes edges from traversal
func WithForbiddenEdges(forbidden map[EdgeID]struct{}) PathOption {
	return func(opts *pathOptions) {
		opts.forbidden = forbidden
	}
}

// WithBearing keeps only edges heading within tolerance (degrees) of target bearing
func WithBearing(target, tolerance float64) PathOption {
	return func(opts *pathOptions) {
		opts.bearing = &bearingConstraint{target: target, tolerance: tolerance}
	}
}

// WithSignalAware adds wait time of the policy to edge cost during relaxation. Nil policy disables waits
func WithSignalAware(policy *WaitPolicy) PathOption {
	return func(opts *pathOptions) {
		opts.policy = policy
	}
}

// WithStartTime sets clock time (seconds) at start node
func WithStartTime(seconds float64) PathOption {
	return func(opts *pathOptions) {
		opts.startTime = seconds
	}
}

// Solver is Dijkstra-based shortest path solver over static graph
type Solver struct {
	walker *Walker
}

// NewSolver returns solver evaluating edges by given walker
func NewSolver(walker *Walker) *Solver {
	return &Solver{walker: walker}
}

// Walker returns walker used by solver
func (solver *Solver) Walker() *Walker {
	return solver.walker
}

// ShortestPath finds least time path from start to goal
func (solver *Solver) ShortestPath(start, goal osm.NodeID, options ...PathOption) PathResult {
	opts := pathOptions{}
	for _, option := range options {
		option(&opts)
	}
	graph := solver.walker.Graph
	if !graph.HasNode(start) || !graph.HasNode(goal) {
		return noPath()
	}
	if start == goal {
		return PathResult{Edges: []EdgeID{}, Cost: 0, Arrival: opts.startTime}
	}
	if opts.bearing != nil && !graph.HasCoordinates() {
		opts.bearing = nil
	}

	r := &runner{
		solver:   solver,
		opts:     opts,
		goal:     goal,
		dist:     map[osm.NodeID]float64{start: 0},
		prevEdge: make(map[osm.NodeID]EdgeID),
		visited:  make(map[osm.NodeID]bool),
	}
	heap.Init(&r.pq)
	heap.Push(&r.pq, &nodeItem{id: start, dist: 0})
	r.process()

	cost, ok := r.dist[goal]
	if !ok || !r.visited[goal] {
		return noPath()
	}
	edges, ok := r.reconstruct(start)
	if !ok {
		return noPath()
	}
	return PathResult{Edges: edges, Cost: cost, Arrival: opts.startTime + cost}
}

type runner struct {
	solver   *Solver
	opts     pathOptions
	goal     osm.NodeID
	dist     map[osm.NodeID]float64
	prevEdge map[osm.NodeID]EdgeID
	visited  map[osm.NodeID]bool
	pq       nodePQ
}

func (r *runner) process() {
	graph := r.solver.walker.Graph
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*nodeItem)
		u := item.id
		if r.visited[u] {
			continue
		}
		r.visited[u] = true
		if u == r.goal {
			return
		}
		for _, adj := range graph.Neighbors(u) {
			if r.visited[adj.Node] {
				continue
			}
			if _, ok := r.opts.forbidden[adj.Edge]; ok {
				continue
			}
			if !r.eligible(u, adj.Node) {
				continue
			}
			edge := graph.Edge(adj.Edge)
			travel, wait := r.solver.walker.step(edge, r.opts.startTime+item.dist, r.opts.policy)
			if math.IsInf(travel, 1) {
				continue
			}
			alt := item.dist + travel + wait
			if best, ok := r.dist[adj.Node]; !ok || alt < best {
				r.dist[adj.Node] = alt
				r.prevEdge[adj.Node] = adj.Edge
				heap.Push(&r.pq, &nodeItem{id: adj.Node, dist: alt})
			}
		}
	}
}

// eligible checks bearing constraint for move u->v. Edges with unknown geometry are always eligible
func (r *runner) eligible(u, v osm.NodeID) bool {
	if r.opts.bearing == nil {
		return true
	}
	graph := r.solver.walker.Graph
	b, ok := graph.nodeBearing(u, v)
	if !ok {
		return true
	}
	if bearingWithin(b, r.opts.bearing.target, r.opts.bearing.tolerance) {
		return true
	}
	b, ok = graph.nodeBearing(v, r.goal)
	if !ok {
		return v == r.goal
	}
	return bearingWithin(b, r.opts.bearing.target, r.opts.bearing.tolerance)
}

// reconstruct walks predecessor edges from goal back to start
func (r *runner) reconstruct(start osm.NodeID) ([]EdgeID, bool) {
	graph := r.solver.walker.Graph
	reversed := []EdgeID{}
	current := r.goal
	for current != start {
		id, ok := r.prevEdge[current]
		if !ok {
			return nil, false
		}
		reversed = append(reversed, id)
		prev, ok := graph.Edge(id).Key.Other(current)
		if !ok {
			return nil, false
		}
		current = prev
		if len(reversed) > graph.EdgesNum() {
			return nil, false
		}
	}
	edges := make([]EdgeID, len(reversed))
	for i, id := range reversed {
		edges[len(reversed)-1-i] = id
	}
	return edges, true
}

type nodeItem struct {
	id   osm.NodeID
	dist float64
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist == pq[j].dist {
		return pq[i].id < pq[j].id
	}
	return pq[i].dist < pq[j].dist
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x interface{}) {
	*pq = append(*pq, x.(*nodeItem))
}

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
