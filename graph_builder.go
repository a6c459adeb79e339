package walkroute

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// EdgeRecord is a row of edges attributes source
type EdgeRecord struct {
	From           osm.NodeID
	To             osm.NodeID
	DistanceMeters float64
	Gradient       float64
	IsSignal       bool
	IsCrosswalk    bool
}

// SignalRecord is a row of signal timing source
type SignalRecord struct {
	From                osm.NodeID
	To                  osm.NodeID
	Cycle               float64
	Green               float64
	Phase               float64
	ExpectedWaitMinutes float64
	HasExpectedWait     bool
}

// NodeRecord is a row of node coordinates source
type NodeRecord struct {
	ID  osm.NodeID
	Lon float64
	Lat float64
}

// GraphBuilder accumulates records of different sources and produces immutable Graph.
// Records are merged by normalized key: last writer wins for every field
type GraphBuilder struct {
	edges     []*Edge
	index     map[EdgeKey]EdgeID
	nodes     map[osm.NodeID]*Node
	endpoints map[osm.NodeID]struct{}
}

// NewGraphBuilder returns empty builder
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		edges:     []*Edge{},
		index:     make(map[EdgeKey]EdgeID),
		nodes:     make(map[osm.NodeID]*Node),
		endpoints: make(map[osm.NodeID]struct{}),
	}
}

// EdgesNum returns number of edges registered so far
func (builder *GraphBuilder) EdgesNum() int {
	return len(builder.edges)
}

// ensureEdge returns existing edge for (u, v) or creates placeholder
func (builder *GraphBuilder) ensureEdge(u, v osm.NodeID) *Edge {
	key := NormalizeEdgeKey(u, v)
	if id, ok := builder.index[key]; ok {
		return builder.edges[id]
	}
	edge := &Edge{
		ID:  EdgeID(len(builder.edges)),
		Key: key,
	}
	builder.edges = append(builder.edges, edge)
	builder.index[key] = edge.ID
	builder.endpoints[key.Source] = struct{}{}
	builder.endpoints[key.Target] = struct{}{}
	return edge
}

// HasEndpoint checks if node is an endpoint of some registered edge
func (builder *GraphBuilder) HasEndpoint(id osm.NodeID) bool {
	_, ok := builder.endpoints[id]
	return ok
}

// AddWeight registers edge (u, v) coming from weights-only source. Distance and gradient stay zero until attributes are provided
func (builder *GraphBuilder) AddWeight(u, v osm.NodeID) EdgeID {
	return builder.ensureEdge(u, v).ID
}

// AddAttributes registers edge with its physical attributes
func (builder *GraphBuilder) AddAttributes(record EdgeRecord) EdgeID {
	edge := builder.ensureEdge(record.From, record.To)
	edge.DistanceMeters = record.DistanceMeters
	edge.Gradient = record.Gradient
	edge.IsSignal = record.IsSignal
	edge.IsCrosswalk = record.IsCrosswalk
	return edge.ID
}

// AddSignalTiming attaches signal timing to existing edge. Returns ErrUnknownEdge if edge has not been registered
func (builder *GraphBuilder) AddSignalTiming(record SignalRecord) error {
	key := NormalizeEdgeKey(record.From, record.To)
	id, ok := builder.index[key]
	if !ok {
		return errors.Wrapf(ErrUnknownEdge, "Can't attach signal timing to '%s'", key)
	}
	builder.edges[id].Signal = &SignalTiming{
		Cycle:               record.Cycle,
		Green:               record.Green,
		Phase:               record.Phase,
		ExpectedWaitMinutes: record.ExpectedWaitMinutes,
		HasExpectedWait:     record.HasExpectedWait,
	}
	return nil
}

// SetNodeCoordinates attaches coordinates to node
func (builder *GraphBuilder) SetNodeCoordinates(record NodeRecord) {
	builder.nodes[record.ID] = &Node{
		ID:      record.ID,
		Geom:    orb.Point{record.Lon, record.Lat},
		HasGeom: true,
	}
}

// Build produces read-only graph. Returns ErrNoGraph when no edges were registered
func (builder *GraphBuilder) Build() (*Graph, error) {
	if len(builder.edges) == 0 {
		return nil, ErrNoGraph
	}
	graph := &Graph{
		edges:     make([]*Edge, len(builder.edges)),
		index:     make(map[EdgeKey]EdgeID, len(builder.index)),
		nodes:     make(map[osm.NodeID]*Node, len(builder.nodes)),
		adjacency: make(map[osm.NodeID][]Adjacent),
	}
	for i, edge := range builder.edges {
		cp := *edge
		if edge.Signal != nil {
			timing := *edge.Signal
			cp.Signal = &timing
		}
		graph.edges[i] = &cp
		graph.index[cp.Key] = cp.ID
		u, v := cp.Key.Source, cp.Key.Target
		graph.adjacency[u] = append(graph.adjacency[u], Adjacent{Node: v, Edge: cp.ID})
		if u != v {
			graph.adjacency[v] = append(graph.adjacency[v], Adjacent{Node: u, Edge: cp.ID})
		}
		for _, id := range []osm.NodeID{u, v} {
			if _, ok := graph.nodes[id]; ok {
				continue
			}
			if node, ok := builder.nodes[id]; ok {
				nodeCopy := *node
				graph.nodes[id] = &nodeCopy
				graph.hasGeom = true
			} else {
				graph.nodes[id] = &Node{ID: id}
			}
		}
	}
	return graph, nil
}
