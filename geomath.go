package walkroute

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
)

// bearing returns initial bearing from p to q (degrees, [0, 360))
func bearing(p, q orb.Point) float64 {
	return normalizeAngle(geo.Bearing(p, q))
}

// normalizeAngle brings angle to [0, 360)
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// angleDiff returns smallest absolute difference between two bearings (degrees, [0, 180])
func angleDiff(a, b float64) float64 {
	d := math.Abs(normalizeAngle(a) - normalizeAngle(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// bearingWithin checks if bearing lies within tolerance of target
func bearingWithin(b, target, tolerance float64) bool {
	return angleDiff(b, target) <= tolerance
}

// nodeBearing returns bearing between two graph nodes. Second value is false if any of nodes has no coordinates
func (graph *Graph) nodeBearing(from, to osm.NodeID) (float64, bool) {
	p, ok := graph.nodes[from]
	if !ok || !p.HasGeom {
		return 0, false
	}
	q, ok := graph.nodes[to]
	if !ok || !q.HasGeom {
		return 0, false
	}
	if p.Geom == q.Geom {
		return 0, false
	}
	return bearing(p.Geom, q.Geom), true
}

// RouteGeometry returns polyline of route nodes. Nodes without coordinates are skipped
func (graph *Graph) RouteGeometry(route Route) orb.LineString {
	line := make(orb.LineString, 0, len(route.Nodes))
	for _, id := range route.Nodes {
		node, ok := graph.nodes[id]
		if !ok || !node.HasGeom {
			continue
		}
		line = append(line, node.Geom)
	}
	return line
}

// EdgeGeometry returns segment of edge in Source->Target direction
func (graph *Graph) EdgeGeometry(id EdgeID) (orb.LineString, bool) {
	edge := graph.edges[id]
	p, ok := graph.nodes[edge.Key.Source]
	if !ok || !p.HasGeom {
		return nil, false
	}
	q, ok := graph.nodes[edge.Key.Target]
	if !ok || !q.HasGeom {
		return nil, false
	}
	return orb.LineString{p.Geom, q.Geom}, true
}

// geometryLength returns spherical length of polyline (meters)
func geometryLength(line orb.LineString) float64 {
	if len(line) < 2 {
		return 0
	}
	return geo.LengthHaversine(line)
}
