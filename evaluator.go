package walkroute

import (
	"math"
	"strings"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// ArrivalMode defines which moment is treated as arrival at signalized edge
type ArrivalMode uint16

const (
	// ARRIVAL_EDGE_ENTRY evaluates signal at the moment pedestrian reaches the edge
	ARRIVAL_EDGE_ENTRY = ArrivalMode(iota + 1)
	// ARRIVAL_EDGE_EXIT evaluates signal after the edge has been walked
	ARRIVAL_EDGE_EXIT
)

func (iotaIdx ArrivalMode) String() string {
	return [...]string{"entry", "exit"}[iotaIdx-1]
}

// ParseArrivalMode parses 'entry' or 'exit'. Empty string gives default mode
func ParseArrivalMode(s string) (ArrivalMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "entry":
		return ARRIVAL_EDGE_ENTRY, nil
	case "exit":
		return ARRIVAL_EDGE_EXIT, nil
	default:
		return ARRIVAL_EDGE_ENTRY, errors.Errorf("Unknown arrival mode '%s'", s)
	}
}

// arrival returns moment used for wait estimation given time t at edge start and travel time of the edge
func (mode ArrivalMode) arrival(t, travel float64) float64 {
	if mode == ARRIVAL_EDGE_EXIT {
		return t + travel
	}
	return t
}

// Walker computes metrics of edge sequences. Wait is always accumulated into elapsed time before next edge
type Walker struct {
	Graph       *Graph
	Cost        CostModel
	ArrivalMode ArrivalMode
}

// NewWalker returns walker with ARRIVAL_EDGE_ENTRY mode
func NewWalker(graph *Graph, cost CostModel) *Walker {
	return &Walker{
		Graph:       graph,
		Cost:        cost,
		ArrivalMode: ARRIVAL_EDGE_ENTRY,
	}
}

// step returns travel and wait time (seconds) for walking edge which is reached at time t
func (walker *Walker) step(edge *Edge, t float64, policy *WaitPolicy) (float64, float64) {
	travel := walker.Cost.TravelSeconds(edge)
	if math.IsInf(travel, 1) {
		return travel, 0
	}
	return travel, policy.Wait(edge, walker.ArrivalMode.arrival(t, travel))
}

// Walk evaluates edges as a walk from start beginning at startSeconds.
// Returns ErrBrokenWalk if consecutive edges do not share endpoint and ErrUntraversable for impassable edge
func (walker *Walker) Walk(start osm.NodeID, edges []EdgeID, startSeconds float64, policy *WaitPolicy) (Route, error) {
	route := Route{
		Start: start,
		Goal:  start,
		Edges: make([]EdgeID, 0, len(edges)),
		Nodes: make([]osm.NodeID, 0, len(edges)+1),
		Keys:  make([]EdgeKey, 0, len(edges)),
	}
	route.Nodes = append(route.Nodes, start)
	current := start
	t := startSeconds
	for i, id := range edges {
		if int(id) < 0 || int(id) >= walker.Graph.EdgesNum() {
			return Route{}, errors.Wrapf(ErrUnknownEdge, "Edge #%d at position %d", id, i)
		}
		edge := walker.Graph.Edge(id)
		next, ok := edge.Key.Other(current)
		if !ok {
			return Route{}, errors.Wrapf(ErrBrokenWalk, "Edge '%s' at position %d is not incident to node %d", edge.Key, i, current)
		}
		travel, wait := walker.step(edge, t, policy)
		if math.IsInf(travel, 1) {
			return Route{}, errors.Wrapf(ErrUntraversable, "Edge '%s'", edge.Key)
		}
		t += travel + wait
		route.DistanceMeters += edge.DistanceMeters
		route.TravelSeconds += travel
		route.WaitSeconds += wait
		if edge.IsSignal {
			route.SignalCount++
		}
		route.Edges = append(route.Edges, id)
		route.Keys = append(route.Keys, edge.Key)
		route.Nodes = append(route.Nodes, next)
		current = next
	}
	route.Goal = current
	return route, nil
}

// ReferenceWait returns total signal wait (seconds) along edges where every signal phase is taken relative to the reference signal.
// Unknown keys are skipped. Crosswalks do not wait
func (walker *Walker) ReferenceWait(keys []EdgeKey, reference EdgeKey) (float64, error) {
	refEdge, ok := walker.Graph.EdgeByKey(reference)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownEdge, "Reference edge '%s'", reference.Normalize())
	}
	if !refEdge.IsSignal {
		return 0, errors.Errorf("Reference edge '%s' is not a signal", refEdge.Key)
	}
	refPhase := 0.0
	if refEdge.Signal != nil {
		refPhase = refEdge.Signal.Phase
	}
	policy := &WaitPolicy{Default: ReferencePhaseWait{ReferencePhase: refPhase}}
	total := 0.0
	t := 0.0
	for _, key := range keys {
		edge, ok := walker.Graph.EdgeByKey(key)
		if !ok {
			continue
		}
		travel, wait := walker.step(edge, t, policy)
		if math.IsInf(travel, 1) {
			continue
		}
		t += travel + wait
		total += wait
	}
	return total, nil
}
