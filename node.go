package walkroute

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Node is a street network vertex
type Node struct {
	ID osm.NodeID
	// Geom is (lon, lat). Valid only when HasGeom is set
	Geom    orb.Point
	HasGeom bool
}

type ControlType uint16

const (
	NOT_SIGNAL = ControlType(iota + 1)
	IS_SIGNAL
	IS_CROSSWALK
)

func (iotaIdx ControlType) String() string {
	return [...]string{"common", "signal", "crosswalk"}[iotaIdx-1]
}
