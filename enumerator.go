package walkroute

import (
	"math"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// DefaultMaxDesignatedSignals bounds enumeration size: 2^n - 1 subsets are walked for n designated signals
const DefaultMaxDesignatedSignals = 10

// EnumerationResult is an outcome of signal subset enumeration
type EnumerationResult struct {
	// Routes are distinct by edge set, in subset then ordering order
	Routes            []Route
	SubsetsConsidered int
	// Truncated is set when enumeration stopped because of MaxRoutes
	Truncated bool
}

// Enumerator builds routes forced through chosen ordered subsets of designated signals
type Enumerator struct {
	walker *Walker
	legs   LegSolver

	PermutationCap       int
	MaxRoutes            int
	MaxDesignatedSignals int
	// ExpectedWaitPerSignal is wait (seconds) added per signal of subset. Mean expected wait of designated signals is used when zero
	ExpectedWaitPerSignal float64
	// IgnoreSignals charges no wait for designated signals
	IgnoreSignals bool
}

// NewEnumerator returns enumerator with default caps
func NewEnumerator(walker *Walker, legs LegSolver) *Enumerator {
	return &Enumerator{
		walker:               walker,
		legs:                 legs,
		PermutationCap:       DefaultPermutationCap,
		MaxDesignatedSignals: DefaultMaxDesignatedSignals,
	}
}

// resolveDesignated maps keys onto graph edges dropping duplicates
func (enum *Enumerator) resolveDesignated(designated []EdgeKey) ([]*Edge, error) {
	edges := make([]*Edge, 0, len(designated))
	seen := make(map[EdgeID]struct{}, len(designated))
	for _, key := range designated {
		edge, ok := enum.walker.Graph.EdgeByKey(key)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownEdge, "Designated signal '%s'", key.Normalize())
		}
		if _, ok := seen[edge.ID]; ok {
			continue
		}
		seen[edge.ID] = struct{}{}
		edges = append(edges, edge)
	}
	return edges, nil
}

// PerSignalWait returns wait (seconds) charged for every signal of subset
func (enum *Enumerator) PerSignalWait(signals []*Edge) float64 {
	if enum.IgnoreSignals {
		return 0
	}
	if enum.ExpectedWaitPerSignal > 0 {
		return enum.ExpectedWaitPerSignal
	}
	if len(signals) == 0 {
		return 0
	}
	sum := 0.0
	for _, edge := range signals {
		sum += ExpectedWait{}.Wait(edge, 0)
	}
	return sum / float64(len(signals))
}

// Enumerate walks every non-empty subset of designated signals and its orderings
func (enum *Enumerator) Enumerate(start, goal osm.NodeID, designated []EdgeKey) (EnumerationResult, error) {
	result := EnumerationResult{Routes: []Route{}}
	signals, err := enum.resolveDesignated(designated)
	if err != nil {
		return result, err
	}
	maxSignals := enum.MaxDesignatedSignals
	if maxSignals <= 0 {
		maxSignals = DefaultMaxDesignatedSignals
	}
	if len(signals) > maxSignals {
		return result, errors.Wrapf(ErrTooManySignals, "Got %d, maximum is %d", len(signals), maxSignals)
	}
	perSignal := enum.PerSignalWait(signals)
	seen := map[string]struct{}{}

	for _, subset := range Subsets(len(signals)) {
		result.SubsetsConsidered++
		chosen := make([]*Edge, len(subset))
		for i, idx := range subset {
			chosen[i] = signals[idx]
		}
		for _, ordering := range Orderings(len(chosen), enum.PermutationCap) {
			ordered := make([]*Edge, len(ordering))
			for i, idx := range ordering {
				ordered[i] = chosen[idx]
			}
			route, ok := enum.build(start, goal, ordered)
			if !ok {
				continue
			}
			sig := edgeSetSignature(route.Edges)
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}
			route.WaitSeconds = perSignal * float64(len(chosen))
			route.Class = ROUTE_ENUMERATED
			result.Routes = append(result.Routes, route)
			if enum.MaxRoutes > 0 && len(result.Routes) >= enum.MaxRoutes {
				result.Truncated = true
				return result, nil
			}
		}
	}
	return result, nil
}

// build assembles start -> signals (in order) -> goal and verifies that every signal is traversed
func (enum *Enumerator) build(start, goal osm.NodeID, signals []*Edge) (Route, bool) {
	edges := []EdgeID{}
	current := start
	for _, signal := range signals {
		leg, exit, ok := enum.enterSignal(current, signal)
		if !ok {
			return Route{}, false
		}
		edges = append(edges, leg...)
		edges = append(edges, signal.ID)
		current = exit
	}
	leg, ok := enum.legs.Leg(current, goal)
	if !ok {
		return Route{}, false
	}
	edges = append(edges, leg...)

	route, err := enum.walker.Walk(start, edges, 0, nil)
	if err != nil || route.Goal != goal || !route.IsFinite() {
		return Route{}, false
	}
	route.Via = make([]EdgeKey, 0, len(signals))
	for _, signal := range signals {
		if !route.ContainsEdge(signal.ID) && !route.ContainsKey(signal.Key) {
			return Route{}, false
		}
		route.Via = append(route.Via, signal.Key)
	}
	return route, true
}

// enterSignal returns leg from current node to the cheaper reachable endpoint of signal edge and the opposite endpoint
func (enum *Enumerator) enterSignal(current osm.NodeID, signal *Edge) ([]EdgeID, osm.NodeID, bool) {
	var (
		bestLeg  []EdgeID
		bestExit osm.NodeID
		bestCost = math.Inf(1)
		found    bool
	)
	for _, entry := range []osm.NodeID{signal.Key.Source, signal.Key.Target} {
		leg, ok := enum.legs.Leg(current, entry)
		if !ok {
			continue
		}
		cost := enum.legCost(leg)
		if cost < bestCost {
			exit, _ := signal.Key.Other(entry)
			bestLeg, bestExit, bestCost, found = leg, exit, cost, true
		}
	}
	return bestLeg, bestExit, found
}

func (enum *Enumerator) legCost(leg []EdgeID) float64 {
	total := 0.0
	for _, id := range leg {
		total += enum.walker.Cost.TravelSeconds(enum.walker.Graph.Edge(id))
	}
	return total
}
