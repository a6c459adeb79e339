package walkroute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// EdgeID is an index of edge in graph's edge storage
type EdgeID int

// EdgeKey identifies undirected edge. Smaller node ID is always stored first
type EdgeKey struct {
	Source osm.NodeID
	Target osm.NodeID
}

// NormalizeEdgeKey returns key for unordered pair (u, v)
func NormalizeEdgeKey(u, v osm.NodeID) EdgeKey {
	if u > v {
		return EdgeKey{Source: v, Target: u}
	}
	return EdgeKey{Source: u, Target: v}
}

// Normalize returns normalized copy of the key
func (key EdgeKey) Normalize() EdgeKey {
	return NormalizeEdgeKey(key.Source, key.Target)
}

// Other returns opposite endpoint for given node. Second value is false when node is not an endpoint
func (key EdgeKey) Other(node osm.NodeID) (osm.NodeID, bool) {
	switch node {
	case key.Source:
		return key.Target, true
	case key.Target:
		return key.Source, true
	}
	return 0, false
}

// String returns key in 'u-v' form
func (key EdgeKey) String() string {
	return fmt.Sprintf("%d-%d", key.Source, key.Target)
}

// ParseEdgeKey parses 'u-v' (optionally suffixed with '.geojson') into normalized key
func ParseEdgeKey(s string) (EdgeKey, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".geojson")
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return EdgeKey{}, fmt.Errorf("Bad edge key '%s'", s)
	}
	u, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return EdgeKey{}, errors.Wrapf(err, "Can't parse source of edge key '%s'", s)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return EdgeKey{}, errors.Wrapf(err, "Can't parse target of edge key '%s'", s)
	}
	return NormalizeEdgeKey(osm.NodeID(u), osm.NodeID(v)), nil
}

// SignalTiming is fixed-time plan of signalized crossing (seconds)
type SignalTiming struct {
	Cycle float64
	Green float64
	Phase float64
	// ExpectedWaitMinutes is precomputed expected wait. Used instead of closed form when HasExpectedWait is set
	ExpectedWaitMinutes float64
	HasExpectedWait     bool
}

// Red returns duration of red interval
func (timing *SignalTiming) Red() float64 {
	return timing.Cycle - timing.Green
}

// Edge is undirected street segment
type Edge struct {
	ID             EdgeID
	Key            EdgeKey
	DistanceMeters float64
	// Gradient is signed fraction: 0.05 means 5% incline. Applied regardless of walking direction
	Gradient    float64
	IsSignal    bool
	IsCrosswalk bool
	Signal      *SignalTiming
}

// ControlType returns kind of crossing control for the edge
func (edge *Edge) ControlType() ControlType {
	if edge.IsSignal {
		return IS_SIGNAL
	}
	if edge.IsCrosswalk {
		return IS_CROSSWALK
	}
	return NOT_SIGNAL
}

// hasTiming reports whether edge is signalized with usable timing
func (edge *Edge) hasTiming() bool {
	return edge.IsSignal && edge.Signal != nil && edge.Signal.Cycle > 0
}
