package walkroute

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// GeomFormat is text encoding of geometry column in CSV exports
type GeomFormat uint16

const (
	GEOM_WKT = GeomFormat(iota + 1)
	GEOM_GEOJSON
)

func (iotaIdx GeomFormat) String() string {
	return [...]string{"wkt", "geojson"}[iotaIdx-1]
}

// ParseGeomFormat parses 'wkt' or 'geojson'. Empty string gives WKT
func ParseGeomFormat(s string) (GeomFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wkt":
		return GEOM_WKT, nil
	case "geojson":
		return GEOM_GEOJSON, nil
	default:
		return GEOM_WKT, errors.Errorf("Unknown geometry format '%s'", s)
	}
}

// Linestring encodes line. Empty string for degenerate lines
func (format GeomFormat) Linestring(line orb.LineString) string {
	if len(line) < 2 {
		return ""
	}
	if format == GEOM_GEOJSON {
		return PrepareGeoJSONLinestring(line)
	}
	return PrepareWKTLinestring(line)
}

// RouteOutput is serializable representation of route
type RouteOutput struct {
	// UserPref lists edges as '<u>-<v>.geojson', one per line, in walk order
	UserPref      string  `json:"userPref"`
	TotalDistance float64 `json:"totalDistance"`
	// TotalTime is minutes including wait
	TotalTime float64 `json:"totalTime"`
	// TotalWaitTime is minutes
	TotalWaitTime float64 `json:"totalWaitTime"`
	// TotalWorstWaitTime is minutes when every signal is met at its worst moment
	TotalWorstWaitTime float64 `json:"totalWorstWaitTime"`
	TotalTimeWithWorst float64 `json:"totalTimeWithWorst"`
	Class              string  `json:"class"`
	HasSignal          bool    `json:"hasSignal"`
	SignalCount        int     `json:"signalCount"`
}

// NewRouteOutput converts route into its serializable form
func NewRouteOutput(route Route) RouteOutput {
	names := make([]string, len(route.Keys))
	for i, key := range route.Keys {
		names[i] = key.String() + ".geojson"
	}
	return RouteOutput{
		UserPref:      strings.Join(names, "\n"),
		TotalDistance: route.DistanceMeters,
		TotalTime:     route.TotalMinutes(),
		TotalWaitTime: route.WaitMinutes(),

		TotalWorstWaitTime: route.WorstWaitSeconds / 60.0,
		TotalTimeWithWorst: route.TotalWorstSeconds() / 60.0,
		Class:              route.Class.String(),
		HasSignal:          route.HasSignal(),
		SignalCount:        route.SignalCount,
	}
}

// NewRouteOutputs converts every route of plan
func NewRouteOutputs(routes []Route) []RouteOutput {
	outputs := make([]RouteOutput, len(routes))
	for i, route := range routes {
		outputs[i] = NewRouteOutput(route)
	}
	return outputs
}

// ExportRoutesToCSV writes routes into ';' separated file
func ExportRoutesToCSV(graph *Graph, routes []Route, fname string, format GeomFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	return WriteRoutesCSV(graph, routes, file, format)
}

// WriteRoutesCSV writes routes with their geometry (empty when coordinates are unknown)
func WriteRoutesCSV(graph *Graph, routes []Route, w io.Writer, format GeomFormat) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	err := writer.Write([]string{"id", "class", "start_node", "goal_node", "edges", "total_distance_m", "total_time_min", "total_wait_min", "total_worst_wait_min", "total_time_with_worst_min", "signals", "geom_length_m", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for i, route := range routes {
		keys := make([]string, len(route.Keys))
		for j, key := range route.Keys {
			keys[j] = key.String()
		}
		line := graph.RouteGeometry(route)
		err = writer.Write([]string{
			fmt.Sprintf("%d", i),
			route.Class.String(),
			fmt.Sprintf("%d", route.Start),
			fmt.Sprintf("%d", route.Goal),
			strings.Join(keys, ","),
			fmt.Sprintf("%f", route.DistanceMeters),
			fmt.Sprintf("%f", route.TotalMinutes()),
			fmt.Sprintf("%f", route.WaitMinutes()),
			fmt.Sprintf("%f", route.WorstWaitSeconds/60.0),
			fmt.Sprintf("%f", route.TotalWorstSeconds()/60.0),
			fmt.Sprintf("%d", route.SignalCount),
			fmt.Sprintf("%f", geometryLength(line)),
			format.Linestring(line),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write route")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush routes")
}

// ExportEdgesToCSV writes every edge of the graph into ';' separated file
func (graph *Graph) ExportEdgesToCSV(fname string, format GeomFormat) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	return graph.WriteEdgesCSV(file, format)
}

// WriteEdgesCSV writes edges with their crossing control and signal timing
func (graph *Graph) WriteEdgesCSV(w io.Writer, format GeomFormat) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	err := writer.Write([]string{"id", "source_node", "target_node", "length_meters", "gradient", "control_type", "cycle", "green", "phase", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	for _, edge := range graph.edges {
		cycle, green, phase := "", "", ""
		if edge.Signal != nil {
			cycle = fmt.Sprintf("%f", edge.Signal.Cycle)
			green = fmt.Sprintf("%f", edge.Signal.Green)
			phase = fmt.Sprintf("%f", edge.Signal.Phase)
		}
		geom := ""
		if line, ok := graph.EdgeGeometry(edge.ID); ok {
			geom = format.Linestring(line)
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", edge.ID),
			fmt.Sprintf("%d", edge.Key.Source),
			fmt.Sprintf("%d", edge.Key.Target),
			fmt.Sprintf("%f", edge.DistanceMeters),
			fmt.Sprintf("%f", edge.Gradient),
			edge.ControlType().String(),
			cycle,
			green,
			phase,
			geom,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush edges")
}
