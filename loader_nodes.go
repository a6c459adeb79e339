package walkroute

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// ReadNodes picks node loader by file extension: .csv, .geojson/.json, .osm/.xml/.pbf
func ReadNodes(builder *GraphBuilder, fname string, verbose bool) (LoadStats, error) {
	ext := strings.ToLower(filepath.Ext(fname))
	switch ext {
	case ".csv":
		return ReadNodesCSV(builder, fname, verbose)
	case ".geojson", ".json":
		return ReadNodesGeoJSON(builder, fname, verbose)
	case ".osm", ".xml", ".pbf":
		return ReadNodesOSM(builder, fname, verbose)
	default:
		return LoadStats{}, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, fname)
	}
}

// ReadNodesCSV reads 'id,lon,lat' rows. Optional header is detected by non-numeric first field
func ReadNodesCSV(builder *GraphBuilder, fname string, verbose bool) (LoadStats, error) {
	file, err := openSource(fname)
	if err != nil {
		return LoadStats{}, err
	}
	defer file.Close()
	return LoadNodesCSV(builder, file, fname, verbose)
}

// LoadNodesCSV is ReadNodesCSV for arbitrary reader
func LoadNodesCSV(builder *GraphBuilder, r io.Reader, source string, verbose bool) (LoadStats, error) {
	st := time.Now()
	stats := LoadStats{}
	rows := newRowReader(r, source, &stats)
	first := true
	for {
		record, ok, err := rows.next()
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}
		if first {
			first = false
			if _, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64); err != nil {
				stats.Rows--
				continue
			}
		}
		if len(record) < 3 {
			rows.skip("not enough columns")
			continue
		}
		id, err := parseNodeID(record[0])
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		lon, err := parseFloat(record[1])
		if err != nil {
			rows.skip("bad longitude")
			continue
		}
		lat, err := parseFloat(record[2])
		if err != nil {
			rows.skip("bad latitude")
			continue
		}
		builder.SetNodeCoordinates(NodeRecord{ID: id, Lon: lon, Lat: lat})
		stats.Loaded++
	}
	rows.finish(verbose, st)
	return stats, nil
}

// ReadNodesGeoJSON reads Point features of FeatureCollection. Node ID is taken from 'id' property or feature ID
func ReadNodesGeoJSON(builder *GraphBuilder, fname string, verbose bool) (LoadStats, error) {
	file, err := openSource(fname)
	if err != nil {
		return LoadStats{}, err
	}
	defer file.Close()
	return LoadNodesGeoJSON(builder, file, fname, verbose)
}

// LoadNodesGeoJSON is ReadNodesGeoJSON for arbitrary reader
func LoadNodesGeoJSON(builder *GraphBuilder, r io.Reader, source string, verbose bool) (LoadStats, error) {
	st := time.Now()
	stats := LoadStats{}
	data, err := io.ReadAll(r)
	if err != nil {
		return stats, errors.Wrapf(err, "Can't read '%s'", source)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return stats, errors.Wrapf(err, "Can't parse '%s'", source)
	}
	rows := &rowReader{source: source, stats: &stats}
	for _, feature := range fc.Features {
		stats.Rows++
		if feature.Geometry == nil || !feature.Geometry.IsPoint() || len(feature.Geometry.Point) < 2 {
			rows.skip("not a point")
			continue
		}
		id, err := featureNodeID(feature)
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		builder.SetNodeCoordinates(NodeRecord{
			ID:  id,
			Lon: feature.Geometry.Point[0],
			Lat: feature.Geometry.Point[1],
		})
		stats.Loaded++
	}
	rows.finish(verbose, st)
	return stats, nil
}

func featureNodeID(feature *geojson.Feature) (osm.NodeID, error) {
	value, ok := feature.Properties["id"]
	if !ok || value == nil {
		value = feature.ID
	}
	switch v := value.(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, errors.Errorf("Bad node ID %v", v)
		}
		return osm.NodeID(v), nil
	case json.Number:
		return parseNodeID(v.String())
	case string:
		return parseNodeID(v)
	default:
		return 0, errors.New("Feature has no node ID")
	}
}

// OSMScanner is common interface of osmxml and osmpbf scanners
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// ReadNodesOSM takes coordinates of graph nodes from OSM file. Nodes which are not edge endpoints are ignored
func ReadNodesOSM(builder *GraphBuilder, fname string, verbose bool) (LoadStats, error) {
	file, err := openSource(fname)
	if err != nil {
		return LoadStats{}, err
	}
	defer file.Close()

	var scanner OSMScanner
	ext := filepath.Ext(fname)
	switch ext {
	case ".osm", ".xml":
		scanner = osmxml.New(context.Background(), file)
	case ".pbf":
		scanner = osmpbf.New(context.Background(), file, 4)
	default:
		return LoadStats{}, fmt.Errorf("File extension '%s' for file '%s' is not handled yet", ext, fname)
	}
	defer scanner.Close()
	return scanNodes(builder, scanner, fname, verbose)
}

func scanNodes(builder *GraphBuilder, scanner OSMScanner, source string, verbose bool) (LoadStats, error) {
	st := time.Now()
	stats := LoadStats{}
	for scanner.Scan() {
		obj := scanner.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		stats.Rows++
		node := obj.(*osm.Node)
		if !builder.HasEndpoint(node.ID) {
			continue
		}
		builder.SetNodeCoordinates(NodeRecord{ID: node.ID, Lon: node.Lon, Lat: node.Lat})
		stats.Loaded++
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrapf(err, "Can't scan '%s'", source)
	}
	rows := &rowReader{source: source, stats: &stats}
	rows.finish(verbose, st)
	return stats, nil
}
