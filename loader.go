package walkroute

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// LoadGraph reads every configured source and builds the graph.
// Order of merging: weights, attributes, signal timings, node coordinates
func LoadGraph(files FilesConfiguration, verbose bool) (*Graph, error) {
	st := time.Now()
	builder := NewGraphBuilder()
	if files.Weights != "" {
		_, err := ReadWeightsCSV(builder, files.Weights, verbose)
		if err != nil {
			return nil, errors.Wrap(err, "Can't load weights")
		}
	}
	if files.Attributes != "" {
		_, err := ReadAttributesCSV(builder, files.Attributes, DefaultAttributeColumns, verbose)
		if err != nil {
			return nil, errors.Wrap(err, "Can't load edge attributes")
		}
	}
	if files.Signals != "" {
		_, err := ReadSignalsCSV(builder, files.Signals, verbose)
		if err != nil {
			return nil, errors.Wrap(err, "Can't load signal timings")
		}
	}
	if files.Nodes != "" {
		_, err := ReadNodes(builder, files.Nodes, verbose)
		if err != nil {
			return nil, errors.Wrap(err, "Can't load node coordinates")
		}
	}
	graph, err := builder.Build()
	if err != nil {
		return nil, err
	}
	if verbose {
		slog.Info("graph built", "edges", graph.EdgesNum(), "signals", len(graph.SignalEdges()), "coordinates", graph.HasCoordinates(), "elapsed", time.Since(st))
	}
	return graph, nil
}
