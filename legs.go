package walkroute

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/LdDl/ch"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// LegSolver finds unconstrained path between two waypoints
type LegSolver interface {
	Leg(from, to osm.NodeID) ([]EdgeID, bool)
}

// DijkstraLegs solves legs with plain Dijkstra ignoring signals
type DijkstraLegs struct {
	solver *Solver
}

// NewDijkstraLegs returns leg solver on top of given solver
func NewDijkstraLegs(solver *Solver) *DijkstraLegs {
	return &DijkstraLegs{solver: solver}
}

func (legs *DijkstraLegs) Leg(from, to osm.NodeID) ([]EdgeID, bool) {
	res := legs.solver.ShortestPath(from, to)
	if !res.Found() {
		return nil, false
	}
	return res.Edges, true
}

// ContractionLegs solves legs on contraction hierarchies prepared from travel times of the graph
type ContractionLegs struct {
	graph *Graph
	ch    *ch.Graph
	mu    sync.Mutex
}

// NewContractionLegs prepares contraction hierarchies. Impassable edges are not added
func NewContractionLegs(graph *Graph, cost CostModel, verbose bool) (*ContractionLegs, error) {
	chGraph := ch.Graph{}
	for _, edge := range graph.Edges() {
		weight := cost.TravelSeconds(edge)
		if math.IsInf(weight, 1) {
			continue
		}
		source := int64(edge.Key.Source)
		target := int64(edge.Key.Target)
		err := chGraph.CreateVertex(source)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create source vertex")
		}
		err = chGraph.CreateVertex(target)
		if err != nil {
			return nil, errors.Wrap(err, "Can't create target vertex")
		}
		err = chGraph.AddEdge(source, target, weight)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add edge in direct direction")
		}
		err = chGraph.AddEdge(target, source, weight)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add edge in reverse direction")
		}
	}
	st := time.Now()
	chGraph.PrepareContractionHierarchies()
	if verbose {
		slog.Info("contraction hierarchies prepared", "vertices", len(chGraph.Vertices), "elapsed", time.Since(st))
	}
	return &ContractionLegs{
		graph: graph,
		ch:    &chGraph,
	}, nil
}

func (legs *ContractionLegs) Leg(from, to osm.NodeID) ([]EdgeID, bool) {
	if !legs.graph.HasNode(from) || !legs.graph.HasNode(to) {
		return nil, false
	}
	if from == to {
		return []EdgeID{}, true
	}
	legs.mu.Lock()
	cost, vertices := legs.ch.ShortestPath(int64(from), int64(to))
	legs.mu.Unlock()
	if cost < 0 || len(vertices) < 2 {
		return nil, false
	}
	edges := make([]EdgeID, 0, len(vertices)-1)
	for i := 1; i < len(vertices); i++ {
		id, ok := legs.graph.EdgeIndex(osm.NodeID(vertices[i-1]), osm.NodeID(vertices[i]))
		if !ok {
			return nil, false
		}
		edges = append(edges, id)
	}
	return edges, true
}
