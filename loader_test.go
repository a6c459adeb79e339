package walkroute

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/osm/osmxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attributeRow lays fields out as DefaultAttributeColumns expects
func attributeRow(from, to, distance, gradient, signal, crosswalk string) string {
	fields := make([]string, 16)
	fields[0], fields[1], fields[2], fields[4], fields[8], fields[15] = from, to, distance, gradient, signal, crosswalk
	return strings.Join(fields, ",")
}

func TestLoadWeights(t *testing.T) {
	builder := NewGraphBuilder()
	input := "1,2,10\n2,3,10\n\nbad,3,1\n4\n0,5,1\n3,4,x\n"
	stats, err := LoadWeights(builder, strings.NewReader(input), "weights", false)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 6, Loaded: 2, Skipped: 4}, stats)
	assert.Equal(t, 2, builder.EdgesNum())
}

func TestLoadAttributes(t *testing.T) {
	builder := NewGraphBuilder()
	builder.AddWeight(2, 1)
	rows := []string{
		"from,to,distance,x,gradient,x,x,x,signal,x,x,x,x,x,x,crosswalk",
		attributeRow("1", "2", "100", "0.05", "1", "0"),
		attributeRow("2", "3", "50", "0", "0", "1"),
		attributeRow("3", "4", "-5", "0", "0", "0"),
		attributeRow("3", "4", "20", "steep", "0", "0"),
		attributeRow("5", "6", "NaN", "0", "0", "0"),
		attributeRow("5", "6", "+Inf", "0", "0", "0"),
		attributeRow("5", "6", "10", "-Inf", "0", "0"),
		attributeRow("5", "6", "10", "nan", "0", "0"),
		"5,6,7",
	}
	stats, err := LoadAttributes(builder, strings.NewReader(strings.Join(rows, "\n")), "attributes", DefaultAttributeColumns, false)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 9, Loaded: 2, Skipped: 7}, stats)

	graph, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, graph.EdgesNum())
	first, ok := graph.EdgeByKey(EdgeKey{Source: 1, Target: 2})
	require.True(t, ok)
	assert.Equal(t, EdgeID(0), first.ID)
	assert.Equal(t, 100.0, first.DistanceMeters)
	assert.Equal(t, 0.05, first.Gradient)
	assert.True(t, first.IsSignal)
	second, ok := graph.EdgeByKey(EdgeKey{Source: 3, Target: 2})
	require.True(t, ok)
	assert.True(t, second.IsCrosswalk)
	assert.False(t, second.IsSignal)
}

func TestLoadAttributesShortRows(t *testing.T) {
	builder := NewGraphBuilder()
	columns := AttributeColumns{From: 0, To: 1, Distance: 2, Gradient: 3, IsSignal: 4, IsCrosswalk: 5}
	input := "header\n1,2,10,0\n2,3,10,0,true\n"
	stats, err := LoadAttributes(builder, strings.NewReader(input), "attributes", columns, false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded)
	graph, err := builder.Build()
	require.NoError(t, err)
	edge, _ := graph.EdgeByKey(EdgeKey{Source: 2, Target: 3})
	assert.True(t, edge.IsSignal)
	assert.False(t, edge.IsCrosswalk)
}

func TestLoadSignals(t *testing.T) {
	builder := NewGraphBuilder()
	builder.AddAttributes(EdgeRecord{From: 1, To: 2, DistanceMeters: 100, IsSignal: true})
	builder.AddAttributes(EdgeRecord{From: 2, To: 3, DistanceMeters: 100, IsSignal: true})
	input := strings.Join([]string{
		"edge,cycle,green,phase,expected",
		"2-1,60,30,5",
		"2,3,90,45,0,0.5",
		"1-2,60,70",
		"7-8,60,30",
		"x-y,1,1",
		"1-2,NaN,30",
		"1-2,60,Inf",
	}, "\n")
	stats, err := LoadSignals(builder, strings.NewReader(input), "signals", false)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 7, Loaded: 2, Skipped: 5}, stats)

	graph, err := builder.Build()
	require.NoError(t, err)
	first, _ := graph.EdgeByKey(EdgeKey{Source: 1, Target: 2})
	require.NotNil(t, first.Signal)
	assert.Equal(t, SignalTiming{Cycle: 60, Green: 30, Phase: 5}, *first.Signal)
	second, _ := graph.EdgeByKey(EdgeKey{Source: 2, Target: 3})
	require.NotNil(t, second.Signal)
	assert.True(t, second.Signal.HasExpectedWait)
	assert.InDelta(t, 30.0, ExpectedWait{}.Wait(second, 0), 1e-9)
}

func TestLoadSignalsLogsPlainError(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)
	buf := bytes.Buffer{}
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	builder := NewGraphBuilder()
	builder.AddAttributes(EdgeRecord{From: 1, To: 2, DistanceMeters: 100, IsSignal: true})
	stats, err := LoadSignals(builder, strings.NewReader("edge,cycle,green\n7-8,60,30\n"), "signals", false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)

	logged := buf.String()
	assert.Contains(t, logged, "signal timing skipped")
	assert.Contains(t, logged, ErrUnknownEdge.Error())
	// No stack trace frames
	assert.NotContains(t, logged, ".go:")
	assert.NotContains(t, logged, `\n\t`)
}

func TestLoadNodes(t *testing.T) {
	builder := NewGraphBuilder()
	stats, err := LoadNodesCSV(builder, strings.NewReader("id,lon,lat\n1,139.6,35.9\n2,abc,35.9\n3,139.7,35.8\n"), "nodes", false)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 3, Loaded: 2, Skipped: 1}, stats)

	headless := NewGraphBuilder()
	stats, err = LoadNodesCSV(headless, strings.NewReader("1,139.6,35.9\n"), "nodes", false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)

	fc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":1},"geometry":{"type":"Point","coordinates":[139.6,35.9]}},
		{"type":"Feature","id":"2","properties":{},"geometry":{"type":"Point","coordinates":[139.7,35.8]}},
		{"type":"Feature","properties":{"id":3},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}},
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,1]}}
	]}`
	builder = NewGraphBuilder()
	builder.AddWeight(1, 2)
	stats, err = LoadNodesGeoJSON(builder, strings.NewReader(fc), "nodes.geojson", false)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Rows: 4, Loaded: 2, Skipped: 2}, stats)
	graph, err := builder.Build()
	require.NoError(t, err)
	node, ok := graph.Node(2)
	require.True(t, ok)
	assert.True(t, node.HasGeom)
	assert.Equal(t, 139.7, node.Geom.Lon())

	_, err = LoadNodesGeoJSON(NewGraphBuilder(), strings.NewReader("{"), "broken.geojson", false)
	assert.Error(t, err)
}

func TestScanNodesOSM(t *testing.T) {
	builder := NewGraphBuilder()
	builder.AddWeight(1, 2)
	data := `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
	<node id="1" lat="35.9" lon="139.6"/>
	<node id="50" lat="1" lon="1"/>
	<node id="2" lat="35.8" lon="139.7"/>
	<way id="7"><nd ref="1"/><nd ref="2"/></way>
</osm>`
	scanner := osmxml.New(context.Background(), strings.NewReader(data))
	defer scanner.Close()
	stats, err := scanNodes(builder, scanner, "sample.osm", false)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Loaded)

	graph, err := builder.Build()
	require.NoError(t, err)
	assert.True(t, graph.HasCoordinates())
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		fname := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(fname, []byte(content), 0o644))
		return fname
	}
	files := FilesConfiguration{
		Weights: write("result.csv", "1,2,1\n2,3,1\n3,4,1\n"),
		Attributes: write("attributes.csv", strings.Join([]string{
			"header",
			attributeRow("1", "2", "100", "0", "0", "0"),
			attributeRow("2", "3", "100", "0", "1", "0"),
		}, "\n")),
		Signals: write("signals.csv", "edge,cycle,green,phase\n2-3,60,30,0\n"),
		Nodes:   write("nodes.csv", "1,139.6,35.9\n2,139.601,35.9\n"),
	}
	graph, err := LoadGraph(files, false)
	require.NoError(t, err)
	assert.Equal(t, 3, graph.EdgesNum())
	assert.Equal(t, []EdgeID{1}, graph.SignalEdges())
	assert.True(t, graph.HasCoordinates())

	// Weights-only edge keeps zero distance
	edge, ok := graph.EdgeByKey(EdgeKey{Source: 3, Target: 4})
	require.True(t, ok)
	assert.Equal(t, 0.0, edge.DistanceMeters)

	_, err = LoadGraph(FilesConfiguration{Attributes: filepath.Join(dir, "missing.csv")}, false)
	assert.Error(t, err)
	_, err = LoadGraph(FilesConfiguration{}, false)
	assert.Error(t, err)
	_, err = ReadNodes(NewGraphBuilder(), filepath.Join(dir, "nodes.txt"), false)
	assert.Error(t, err)
}
