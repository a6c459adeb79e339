package walkroute

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gridDesignated = []EdgeKey{{Source: 2, Target: 5}, {Source: 6, Target: 5}}

func TestEnumerate(t *testing.T) {
	graph := gridGraph(t, gridOptions{signals: true})
	walker := NewWalker(graph, NewCostModel(80))
	enum := NewEnumerator(walker, NewDijkstraLegs(NewSolver(walker)))

	res, err := enum.Enumerate(1, 9, gridDesignated)
	require.NoError(t, err)
	assert.Equal(t, 3, res.SubsetsConsidered)
	assert.False(t, res.Truncated)
	require.NotEmpty(t, res.Routes)

	// Mean of 30^2/120 and 45^2/180
	perSignal := (7.5 + 11.25) / 2
	seen := map[string]bool{}
	for _, route := range res.Routes {
		assert.Equal(t, ROUTE_ENUMERATED, route.Class)
		assert.EqualValues(t, 1, route.Start)
		assert.EqualValues(t, 9, route.Goal)
		require.NotEmpty(t, route.Via)
		for _, key := range route.Via {
			assert.True(t, route.ContainsKey(key), "route must cross %s", key)
		}
		assert.InDelta(t, perSignal*float64(len(route.Via)), route.WaitSeconds, 1e-9)
		sig := edgeSetSignature(route.Edges)
		assert.False(t, seen[sig])
		seen[sig] = true
	}
}

func TestEnumerateLimits(t *testing.T) {
	graph := gridGraph(t, gridOptions{signals: true})
	walker := NewWalker(graph, NewCostModel(80))
	enum := NewEnumerator(walker, NewDijkstraLegs(NewSolver(walker)))

	enum.MaxRoutes = 1
	res, err := enum.Enumerate(1, 9, gridDesignated)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Routes, 1)
	assert.Equal(t, 1, res.SubsetsConsidered)

	enum.MaxRoutes = 0
	enum.MaxDesignatedSignals = 1
	_, err = enum.Enumerate(1, 9, gridDesignated)
	assert.True(t, errors.Is(err, ErrTooManySignals))

	// Duplicated keys count once
	res, err = enum.Enumerate(1, 9, []EdgeKey{{Source: 2, Target: 5}, {Source: 5, Target: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SubsetsConsidered)

	_, err = enum.Enumerate(1, 9, []EdgeKey{{Source: 1, Target: 9}})
	assert.True(t, errors.Is(err, ErrUnknownEdge))

	empty, err := enum.Enumerate(1, 9, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Routes)
	assert.Equal(t, 0, empty.SubsetsConsidered)
}

func TestEnumerateFixedWait(t *testing.T) {
	graph := gridGraph(t, gridOptions{signals: true})
	walker := NewWalker(graph, NewCostModel(80))
	enum := NewEnumerator(walker, NewDijkstraLegs(NewSolver(walker)))
	enum.ExpectedWaitPerSignal = 20

	res, err := enum.Enumerate(1, 9, gridDesignated)
	require.NoError(t, err)
	for _, route := range res.Routes {
		assert.InDelta(t, 20.0*float64(len(route.Via)), route.WaitSeconds, 1e-9)
	}
}

func TestEnumerateUnreachableSignal(t *testing.T) {
	graph := buildGraph(t,
		[]EdgeRecord{
			{From: 1, To: 2, DistanceMeters: 100},
			{From: 2, To: 3, DistanceMeters: 100},
			{From: 7, To: 8, DistanceMeters: 100, IsSignal: true},
		},
		[]SignalRecord{{From: 7, To: 8, Cycle: 60, Green: 30}},
		nil,
	)
	walker := NewWalker(graph, NewCostModel(80))
	enum := NewEnumerator(walker, NewDijkstraLegs(NewSolver(walker)))
	res, err := enum.Enumerate(1, 3, []EdgeKey{{Source: 7, Target: 8}})
	require.NoError(t, err)
	assert.Empty(t, res.Routes)
	assert.Equal(t, 1, res.SubsetsConsidered)
}

func TestContractionLegs(t *testing.T) {
	graph := gridGraph(t, gridOptions{signals: true})
	walker := NewWalker(graph, NewCostModel(80))
	dijkstra := NewDijkstraLegs(NewSolver(walker))
	contraction, err := NewContractionLegs(graph, walker.Cost, false)
	require.NoError(t, err)

	enum := NewEnumerator(walker, dijkstra)
	for _, from := range graph.NodeIDs() {
		for _, to := range graph.NodeIDs() {
			expected, ok := dijkstra.Leg(from, to)
			require.True(t, ok)
			actual, ok := contraction.Leg(from, to)
			require.True(t, ok, "leg %d -> %d", from, to)
			assert.InDelta(t, enum.legCost(expected), enum.legCost(actual), 1e-6, "leg %d -> %d", from, to)

			route, err := walker.Walk(from, actual, 0, nil)
			require.NoError(t, err)
			assert.Equal(t, to, route.Goal)
		}
	}
	_, ok := contraction.Leg(1, 42)
	assert.False(t, ok)

	withCH := NewEnumerator(walker, contraction)
	res, err := withCH.Enumerate(1, 9, gridDesignated)
	require.NoError(t, err)
	assert.Equal(t, 3, res.SubsetsConsidered)
	assert.NotEmpty(t, res.Routes)
}
