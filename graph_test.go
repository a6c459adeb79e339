package walkroute

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridOptions toggles parts of the 3x3 fixture:
//
//	1 - 2 - 3
//	|   |   |
//	4 - 5 - 6
//	|   |   |
//	7 - 8 - 9
type gridOptions struct {
	signals     bool
	crosswalk   bool
	coordinates bool
}

func buildGraph(t *testing.T, edges []EdgeRecord, signals []SignalRecord, nodes []NodeRecord) *Graph {
	t.Helper()
	builder := NewGraphBuilder()
	for _, edge := range edges {
		builder.AddAttributes(edge)
	}
	for _, signal := range signals {
		require.NoError(t, builder.AddSignalTiming(signal))
	}
	for _, node := range nodes {
		builder.SetNodeCoordinates(node)
	}
	graph, err := builder.Build()
	require.NoError(t, err)
	return graph
}

func gridGraph(t *testing.T, opts gridOptions) *Graph {
	t.Helper()
	pairs := [][2]osm.NodeID{
		{1, 2}, {2, 3}, {4, 5}, {5, 6}, {7, 8}, {8, 9},
		{1, 4}, {4, 7}, {2, 5}, {5, 8}, {3, 6}, {6, 9},
	}
	edges := make([]EdgeRecord, 0, len(pairs))
	for _, pair := range pairs {
		record := EdgeRecord{From: pair[0], To: pair[1], DistanceMeters: 100}
		switch {
		case opts.signals && (pair == [2]osm.NodeID{2, 5} || pair == [2]osm.NodeID{5, 6}):
			record.IsSignal = true
		case opts.crosswalk && pair == [2]osm.NodeID{4, 5}:
			record.IsCrosswalk = true
		}
		edges = append(edges, record)
	}
	signals := []SignalRecord{}
	if opts.signals {
		signals = append(signals,
			SignalRecord{From: 2, To: 5, Cycle: 60, Green: 30, Phase: 0},
			SignalRecord{From: 6, To: 5, Cycle: 90, Green: 45, Phase: 10},
		)
	}
	nodes := []NodeRecord{}
	if opts.coordinates {
		for id := 1; id <= 9; id++ {
			row := float64((id - 1) / 3)
			col := float64((id - 1) % 3)
			nodes = append(nodes, NodeRecord{
				ID:  osm.NodeID(id),
				Lon: 139.60 + 0.001*col,
				Lat: 35.90 - 0.001*row,
			})
		}
	}
	return buildGraph(t, edges, signals, nodes)
}

func edgeID(t *testing.T, graph *Graph, u, v osm.NodeID) EdgeID {
	t.Helper()
	id, ok := graph.EdgeIndex(u, v)
	require.True(t, ok, "edge %d-%d", u, v)
	return id
}

func pathIDs(t *testing.T, graph *Graph, nodes ...osm.NodeID) []EdgeID {
	t.Helper()
	ids := make([]EdgeID, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		ids = append(ids, edgeID(t, graph, nodes[i-1], nodes[i]))
	}
	return ids
}

func TestGraphBuilderMerge(t *testing.T) {
	builder := NewGraphBuilder()
	first := builder.AddWeight(5, 3)
	second := builder.AddAttributes(EdgeRecord{From: 3, To: 5, DistanceMeters: 42, Gradient: 0.02, IsSignal: true})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, builder.EdgesNum())
	assert.True(t, builder.HasEndpoint(3))
	assert.True(t, builder.HasEndpoint(5))
	assert.False(t, builder.HasEndpoint(4))

	require.NoError(t, builder.AddSignalTiming(SignalRecord{From: 5, To: 3, Cycle: 100, Green: 40, Phase: 7}))

	// Later attributes replace earlier ones
	builder.AddAttributes(EdgeRecord{From: 5, To: 3, DistanceMeters: 50, IsSignal: true})

	graph, err := builder.Build()
	require.NoError(t, err)
	edge, ok := graph.EdgeByKey(EdgeKey{Source: 5, Target: 3})
	require.True(t, ok)
	assert.Equal(t, EdgeKey{Source: 3, Target: 5}, edge.Key)
	assert.Equal(t, 50.0, edge.DistanceMeters)
	assert.Equal(t, 0.0, edge.Gradient)
	require.NotNil(t, edge.Signal)
	assert.Equal(t, 7.0, edge.Signal.Phase)
	assert.Equal(t, 60.0, edge.Signal.Red())
	assert.Equal(t, IS_SIGNAL, edge.ControlType())
}

func TestGraphBuilderErrors(t *testing.T) {
	builder := NewGraphBuilder()
	_, err := builder.Build()
	assert.True(t, errors.Is(err, ErrNoGraph))

	err = builder.AddSignalTiming(SignalRecord{From: 1, To: 2, Cycle: 60, Green: 30})
	assert.True(t, errors.Is(err, ErrUnknownEdge))
}

func TestGraphIsImmutableCopy(t *testing.T) {
	builder := NewGraphBuilder()
	builder.AddAttributes(EdgeRecord{From: 1, To: 2, DistanceMeters: 10})
	graph, err := builder.Build()
	require.NoError(t, err)

	builder.AddAttributes(EdgeRecord{From: 1, To: 2, DistanceMeters: 99})
	builder.AddAttributes(EdgeRecord{From: 2, To: 3, DistanceMeters: 1})
	assert.Equal(t, 1, graph.EdgesNum())
	assert.Equal(t, 10.0, graph.Edge(0).DistanceMeters)
}

func TestGraphAdjacency(t *testing.T) {
	graph := gridGraph(t, gridOptions{signals: true, crosswalk: true})
	assert.Equal(t, 12, graph.EdgesNum())
	assert.Len(t, graph.Neighbors(5), 4)
	assert.Len(t, graph.Neighbors(1), 2)
	assert.True(t, graph.HasNode(9))
	assert.False(t, graph.HasNode(10))
	assert.False(t, graph.HasCoordinates())
	assert.Equal(t, []osm.NodeID{1, 2, 3, 4, 5, 6, 7, 8, 9}, graph.NodeIDs())

	signals := graph.SignalEdges()
	require.Len(t, signals, 2)
	// Ascending edge index: 5-6 is registered before 2-5
	assert.Less(t, signals[0], signals[1])
	assert.Equal(t, EdgeKey{Source: 5, Target: 6}, graph.Edge(signals[0]).Key)
	assert.Equal(t, EdgeKey{Source: 2, Target: 5}, graph.Edge(signals[1]).Key)

	crosswalk, ok := graph.EdgeByKey(EdgeKey{Source: 5, Target: 4})
	require.True(t, ok)
	assert.Equal(t, IS_CROSSWALK, crosswalk.ControlType())
	assert.Equal(t, "crosswalk", crosswalk.ControlType().String())

	_, ok = graph.EdgeIndex(1, 5)
	assert.False(t, ok)
}

func TestGraphCoordinates(t *testing.T) {
	graph := gridGraph(t, gridOptions{coordinates: true})
	assert.True(t, graph.HasCoordinates())
	node, ok := graph.Node(5)
	require.True(t, ok)
	assert.True(t, node.HasGeom)
	assert.InDelta(t, 139.601, node.Geom.Lon(), 1e-9)
	assert.InDelta(t, 35.899, node.Geom.Lat(), 1e-9)
}
