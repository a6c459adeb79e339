package walkroute

import (
	"math"

	"github.com/paulmach/osm"
)

type RouteClass uint16

const (
	ROUTE_FASTEST = RouteClass(iota + 1)
	ROUTE_NO_SIGNAL
	ROUTE_ONE_SIGNAL
	ROUTE_ALTERNATIVE
	ROUTE_ENUMERATED
)

func (iotaIdx RouteClass) String() string {
	return [...]string{"fastest", "no_signal", "one_signal", "alternative", "enumerated"}[iotaIdx-1]
}

// Route is a contiguous walk over the graph with aggregated metrics
type Route struct {
	Start osm.NodeID
	Goal  osm.NodeID
	// Edges in walk order
	Edges []EdgeID
	// Nodes visited in walk order, len(Nodes) == len(Edges) + 1
	Nodes []osm.NodeID
	Keys  []EdgeKey
	// Via lists designated signals the route was forced through
	Via            []EdgeKey
	DistanceMeters float64
	TravelSeconds  float64
	WaitSeconds    float64
	// WorstWaitSeconds is wait when every signal is met at its worst moment
	WorstWaitSeconds float64
	SignalCount      int
	Class            RouteClass
}

// TotalSeconds returns travel plus wait time
func (route Route) TotalSeconds() float64 {
	return route.TravelSeconds + route.WaitSeconds
}

// TotalMinutes returns travel plus wait time in minutes
func (route Route) TotalMinutes() float64 {
	return route.TotalSeconds() / 60.0
}

// TotalWorstSeconds returns travel time plus worst-case wait
func (route Route) TotalWorstSeconds() float64 {
	return route.TravelSeconds + route.WorstWaitSeconds
}

// WaitMinutes returns wait time in minutes
func (route Route) WaitMinutes() float64 {
	return route.WaitSeconds / 60.0
}

// HasSignal reports whether route crosses at least one signal
func (route Route) HasSignal() bool {
	return route.SignalCount > 0
}

// IsFinite reports whether every metric of the route is finite
func (route Route) IsFinite() bool {
	for _, v := range []float64{route.DistanceMeters, route.TravelSeconds, route.WaitSeconds, route.WorstWaitSeconds} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// WithClass returns copy of the route tagged with given class
func (route Route) WithClass(class RouteClass) Route {
	route.Class = class
	return route
}

// ContainsEdge checks if route traverses given edge
func (route Route) ContainsEdge(id EdgeID) bool {
	for _, e := range route.Edges {
		if e == id {
			return true
		}
	}
	return false
}

// ContainsKey checks if route traverses edge with given endpoints
func (route Route) ContainsKey(key EdgeKey) bool {
	key = key.Normalize()
	for _, k := range route.Keys {
		if k == key {
			return true
		}
	}
	return false
}
