package walkroute

import (
	"math"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// Plan is a set of classified routes for one start/goal pair
type Plan struct {
	Start osm.NodeID
	Goal  osm.NodeID
	// Routes are ordered as: references, alternatives, enumerated. Every metric is finite
	Routes            []Route
	SubsetsConsidered int
	Truncated         bool
}

// Planner runs the whole pipeline: base path, references, alternatives, enumeration and classification
type Planner struct {
	graph       *Graph
	cfg         *Configuration
	walker      *Walker
	solver      *Solver
	diversifier *Diversifier
	enumerator  *Enumerator
	designated  []EdgeKey
}

// NewPlanner prepares planner for the graph. Graph must not be mutated afterwards
func NewPlanner(graph *Graph, cfg *Configuration) (*Planner, error) {
	if graph == nil || graph.EdgesNum() == 0 {
		return nil, ErrNoGraph
	}
	if cfg == nil {
		cfg = DefaultConfiguration()
	}
	err := cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "Bad configuration")
	}
	var legs LegSolver
	if cfg.UseContraction {
		legs, err = NewContractionLegs(graph, cfg.CostModel(), cfg.Verbose)
		if err != nil {
			return nil, errors.Wrap(err, "Can't prepare contraction hierarchies")
		}
	}
	return newPlanner(graph, cfg, legs), nil
}

// newPlanner wires components. Dijkstra legs are used when legs is nil
func newPlanner(graph *Graph, cfg *Configuration, legs LegSolver) *Planner {
	mode, _ := ParseArrivalMode(cfg.ArrivalMode)
	designated, _ := cfg.DesignatedKeys()

	walker := NewWalker(graph, cfg.CostModel())
	walker.ArrivalMode = mode
	solver := NewSolver(walker)
	if legs == nil {
		legs = NewDijkstraLegs(solver)
	}
	enumerator := NewEnumerator(walker, legs)
	enumerator.PermutationCap = cfg.PermutationCap
	enumerator.MaxRoutes = cfg.MaxRoutes
	enumerator.MaxDesignatedSignals = cfg.MaxDesignatedSignals
	enumerator.ExpectedWaitPerSignal = cfg.ExpectedWaitPerSignal
	enumerator.IgnoreSignals = cfg.IgnoreSignals

	planner := &Planner{
		graph:      graph,
		cfg:        cfg,
		walker:     walker,
		solver:     solver,
		enumerator: enumerator,
		designated: designated,
	}
	planner.diversifier = NewDiversifier(solver, planner.policy())
	planner.diversifier.StartTime = cfg.StartTime
	return planner
}

// WithWalkingSpeed returns planner sharing graph and configuration but walking at another speed.
// Contraction hierarchies are shared: uniform speed change keeps the order of leg costs
func (planner *Planner) WithWalkingSpeed(speed float64) (*Planner, error) {
	cfg := *planner.cfg
	cfg.WalkingSpeed = speed
	err := cfg.CostModel().Validate()
	if err != nil {
		return nil, err
	}
	var legs LegSolver
	if contraction, ok := planner.enumerator.legs.(*ContractionLegs); ok {
		legs = contraction
	}
	return newPlanner(planner.graph, &cfg, legs), nil
}

// Configuration returns configuration of the planner
func (planner *Planner) Configuration() *Configuration {
	return planner.cfg
}

// Graph returns underlying graph
func (planner *Planner) Graph() *Graph {
	return planner.graph
}

// Walker returns walker configured for the planner
func (planner *Planner) Walker() *Walker {
	return planner.walker
}

// policy returns deterministic wait policy used for base and reference searches
func (planner *Planner) policy() *WaitPolicy {
	return planner.waitPolicy(DeterministicWait{})
}

// waitPolicy wraps strategy with configured crosswalk wait. Signals are ignored when configuration says so
func (planner *Planner) waitPolicy(strategy WaitStrategy) *WaitPolicy {
	if planner.cfg.IgnoreSignals {
		strategy = NoWait{}
	}
	policy := NewWaitPolicy(strategy)
	policy.CrosswalkSeconds = planner.cfg.CrosswalkWaitSeconds
	return policy
}

// attachWorstWait re-walks every route meeting each signal at its worst moment.
// Signals count here even when they are ignored for search
func (planner *Planner) attachWorstWait(routes []Route) {
	worst := NewWaitPolicy(WorstCaseWait{})
	worst.CrosswalkSeconds = planner.cfg.CrosswalkWaitSeconds
	for i := range routes {
		walked, err := planner.walker.Walk(routes[i].Start, routes[i].Edges, planner.cfg.StartTime, worst)
		if err != nil {
			routes[i].WorstWaitSeconds = routes[i].WaitSeconds
			continue
		}
		routes[i].WorstWaitSeconds = walked.WaitSeconds
	}
}

func (planner *Planner) searchOptions(policy *WaitPolicy, extra ...PathOption) []PathOption {
	options := []PathOption{WithSignalAware(policy), WithStartTime(planner.cfg.StartTime)}
	if planner.cfg.Bearing != nil {
		options = append(options, WithBearing(planner.cfg.Bearing.Target, planner.cfg.Bearing.Tolerance))
	}
	return append(options, extra...)
}

// search solves with bearing constraint and falls back to unconstrained search when it gives no path
func (planner *Planner) search(start, goal osm.NodeID, policy *WaitPolicy, extra ...PathOption) PathResult {
	res := planner.solver.ShortestPath(start, goal, planner.searchOptions(policy, extra...)...)
	if res.Found() || planner.cfg.Bearing == nil {
		return res
	}
	options := append([]PathOption{WithSignalAware(policy), WithStartTime(planner.cfg.StartTime)}, extra...)
	return planner.solver.ShortestPath(start, goal, options...)
}

// Plan computes classified routes from start to goal. Unreachable goal gives plan without routes
func (planner *Planner) Plan(start, goal osm.NodeID) (*Plan, error) {
	if !planner.graph.HasNode(start) {
		return nil, errors.Wrapf(ErrUnknownNode, "Start node %d", start)
	}
	if !planner.graph.HasNode(goal) {
		return nil, errors.Wrapf(ErrUnknownNode, "Goal node %d", goal)
	}
	if start == goal {
		return nil, ErrSameEndpoints
	}
	plan := &Plan{Start: start, Goal: goal, Routes: []Route{}}
	policy := planner.policy()

	base := planner.search(start, goal, policy)
	if !base.Found() {
		return plan, nil
	}

	references := []Route{}
	alternatives := []Route{}
	yen := planner.diversifier.KShortest(start, goal, base.Edges, planner.cfg.K)
	if len(yen) == 0 {
		fastest, err := planner.walker.Walk(start, base.Edges, planner.cfg.StartTime, policy)
		if err != nil {
			return nil, errors.Wrap(err, "Can't evaluate base path")
		}
		yen = []Route{fastest.WithClass(ROUTE_FASTEST)}
	}
	references = append(references, yen[0])
	alternatives = append(alternatives, yen[1:]...)

	if noSignal, ok := planner.noSignalRoute(start, goal, policy); ok {
		references = append(references, noSignal)
	}

	enumerated := []Route{}
	if len(planner.designated) > 0 {
		res, err := planner.enumerator.Enumerate(start, goal, planner.designated)
		if err != nil {
			return nil, errors.Wrap(err, "Can't enumerate signal subsets")
		}
		enumerated = res.Routes
		plan.SubsetsConsidered = res.SubsetsConsidered
		plan.Truncated = res.Truncated

		if oneSignal, ok := planner.oneSignalRoute(start, goal); ok {
			references = append(references, oneSignal)
		}
	}

	withAlternatives := Classifier{
		References: references,
		PoolClass:  ROUTE_ALTERNATIVE,
	}.Classify(alternatives)
	plan.Routes = Classifier{
		References: withAlternatives,
		PoolClass:  ROUTE_ENUMERATED,
		RetainBest: !planner.cfg.RetainAllEnumerated,
	}.Classify(enumerated)
	planner.attachWorstWait(plan.Routes)
	return plan, nil
}

// noSignalRoute is the fastest route which does not cross any signal
func (planner *Planner) noSignalRoute(start, goal osm.NodeID, policy *WaitPolicy) (Route, bool) {
	forbidden := make(map[EdgeID]struct{})
	for _, id := range planner.graph.SignalEdges() {
		forbidden[id] = struct{}{}
	}
	res := planner.search(start, goal, policy, WithForbiddenEdges(forbidden))
	if !res.Found() {
		return Route{}, false
	}
	route, err := planner.walker.Walk(start, res.Edges, planner.cfg.StartTime, policy)
	if err != nil || !route.IsFinite() {
		return Route{}, false
	}
	return route.WithClass(ROUTE_NO_SIGNAL), true
}

// oneSignalRoute is the fastest route forced through exactly one designated signal.
// That crossing is simulated deterministically, every other signal uses expected wait
func (planner *Planner) oneSignalRoute(start, goal osm.NodeID) (Route, bool) {
	signals, err := planner.enumerator.resolveDesignated(planner.designated)
	if err != nil {
		return Route{}, false
	}
	var (
		best  Route
		found bool
	)
	bestTime := math.Inf(1)
	for _, signal := range signals {
		candidate, ok := planner.enumerator.build(start, goal, []*Edge{signal})
		if !ok {
			continue
		}
		policy := planner.waitPolicy(ExpectedWait{})
		if !planner.cfg.IgnoreSignals {
			policy = policy.WithOverride(signal.ID, DeterministicWait{})
		}
		route, err := planner.walker.Walk(start, candidate.Edges, planner.cfg.StartTime, policy)
		if err != nil || !route.IsFinite() {
			continue
		}
		if route.TotalSeconds() < bestTime {
			best, bestTime, found = route, route.TotalSeconds(), true
		}
	}
	if !found {
		return Route{}, false
	}
	return best.WithClass(ROUTE_ONE_SIGNAL), true
}

// ReferenceWait computes total wait (seconds) on edges where signal phases are relative to reference signal
func (planner *Planner) ReferenceWait(keys []EdgeKey, reference EdgeKey) (float64, error) {
	return planner.walker.ReferenceWait(keys, reference)
}
