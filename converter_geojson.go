package walkroute

import (
	"log/slog"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

func toCoordinates(line orb.LineString) [][]float64 {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i].Lon(), line[i].Lat()}
	}
	return pts2d
}

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(line orb.LineString) string {
	b, err := geojson.NewLineStringGeometry(toCoordinates(line)).MarshalJSON()
	if err != nil {
		slog.Warn("can't convert geometry to geojson format", slog.String("error", err.Error()))
		return ""
	}
	return string(b)
}

// PrepareGeoJSONRoute returns route as GeoJSON Feature with its metrics in properties.
// Geometry is omitted when route nodes have no coordinates
func PrepareGeoJSONRoute(graph *Graph, route Route) *geojson.Feature {
	var geometry *geojson.Geometry
	line := graph.RouteGeometry(route)
	if len(line) >= 2 {
		geometry = geojson.NewLineStringGeometry(toCoordinates(line))
	}
	feature := geojson.NewFeature(geometry)
	feature.SetProperty("class", route.Class.String())
	feature.SetProperty("start", int64(route.Start))
	feature.SetProperty("goal", int64(route.Goal))
	feature.SetProperty("total_distance", route.DistanceMeters)
	feature.SetProperty("total_time", route.TotalMinutes())
	feature.SetProperty("total_wait_time", route.WaitMinutes())
	feature.SetProperty("total_worst_wait_time", route.WorstWaitSeconds/60.0)
	feature.SetProperty("has_signal", route.HasSignal())
	keys := make([]string, len(route.Keys))
	for i, key := range route.Keys {
		keys[i] = key.String()
	}
	feature.SetProperty("edges", keys)
	return feature
}

// PrepareGeoJSONRoutes wraps routes into FeatureCollection
func PrepareGeoJSONRoutes(graph *Graph, routes []Route) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, route := range routes {
		fc.AddFeature(PrepareGeoJSONRoute(graph, route))
	}
	return fc.MarshalJSON()
}
