package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Masaki-Aoki-soft/walkroute"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

var (
	cfgFile        = flag.String("config", "", "Filename of YAML configuration. Flags below override its values")
	weightsFile    = flag.String("weights", "", "Filename of headerless 'from,to,weight' CSV file")
	attributesFile = flag.String("attributes", "", "Filename of edges attributes CSV file (distance, gradient, signal and crosswalk flags)")
	signalsFile    = flag.String("signals", "", "Filename of signal timings CSV file")
	nodesFile      = flag.String("nodes", "", "Filename of node coordinates. Expected extensions: csv / geojson / osm / pbf")
	start          = flag.Int64("start", 0, "Start node ID")
	goal           = flag.Int64("goal", 0, "Goal node ID")
	speed          = flag.Float64("speed", 0, "Walking speed (meters per minute)")
	k              = flag.Int("k", -1, "Number of k-shortest alternatives (including base path)")
	designated     = flag.String("designated", "", "Designated signals for enumeration (separated by commas). E.g.: 10-11,25-26")
	arrival        = flag.String("arrival", "", "Signal arrival mode. Expected values: entry / exit")
	doContraction  = flag.Bool("contract", false, "Use contraction hierarchies for enumeration legs?")
	retainAll      = flag.Bool("all", false, "Keep every enumerated route instead of the best one?")
	noSignal       = flag.Bool("nosignal", false, "Treat every signal as always green while searching?")
	out            = flag.String("out", "", "Filename of 'Comma-Separated Values' (CSV) formatted file for routes")
	edgesOut       = flag.String("edges", "", "Filename of 'Comma-Separated Values' (CSV) formatted file for prepared graph edges")
	geomFormat     = flag.String("geomf", "wkt", "Format of output geometry in CSV files. Expected values: wkt / geojson")
	geojsonOut     = flag.String("geojson", "", "Filename of GeoJSON FeatureCollection for routes")
	refEdge        = flag.String("ref", "", "Reference signal 'u-v'. When set, total wait of route from -route file is computed instead of planning")
	routeFile      = flag.String("route", "result2.txt", "File with route edges ('u-v.geojson' per line) for -ref mode")
	verbose        = flag.Bool("verbose", false, "Print progress information?")
)

func main() {

	flag.Parse()

	cfg, err := prepareConfiguration()
	if err != nil {
		slog.Error("bad configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	graph, err := walkroute.LoadGraph(cfg.Files, cfg.Verbose)
	if err != nil {
		slog.Error("can't load graph", slog.String("error", err.Error()))
		os.Exit(1)
	}

	format, err := walkroute.ParseGeomFormat(*geomFormat)
	if err != nil {
		slog.Error("bad geometry format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *edgesOut != "" {
		err = graph.ExportEdgesToCSV(*edgesOut, format)
		if err != nil {
			slog.Error("can't export edges", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	planner, err := walkroute.NewPlanner(graph, cfg)
	if err != nil {
		slog.Error("can't prepare planner", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *refEdge != "" {
		err = printReferenceWait(planner)
		if err != nil {
			slog.Error("can't compute reference wait", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	st := time.Now()
	plan, err := planner.Plan(osm.NodeID(*start), osm.NodeID(*goal))
	if err != nil {
		slog.Error("can't plan routes", "start", *start, "goal", *goal, slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Verbose {
		slog.Info("routes planned", "routes", len(plan.Routes), "subsets", plan.SubsetsConsidered, "truncated", plan.Truncated, "elapsed", time.Since(st))
	}

	if *out != "" {
		err = walkroute.ExportRoutesToCSV(graph, plan.Routes, *out, format)
		if err != nil {
			slog.Error("can't export routes", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if *geojsonOut != "" {
		b, err := walkroute.PrepareGeoJSONRoutes(graph, plan.Routes)
		if err == nil {
			err = os.WriteFile(*geojsonOut, b, 0644)
		}
		if err != nil {
			slog.Error("can't export geojson", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	err = enc.Encode(walkroute.NewRouteOutputs(plan.Routes))
	if err != nil {
		slog.Error("can't encode routes", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func prepareConfiguration() (*walkroute.Configuration, error) {
	cfg := walkroute.DefaultConfiguration()
	if *cfgFile != "" {
		var err error
		cfg, err = walkroute.LoadConfiguration(*cfgFile)
		if err != nil {
			return nil, err
		}
	}
	if *weightsFile != "" {
		cfg.Files.Weights = *weightsFile
	}
	if *attributesFile != "" {
		cfg.Files.Attributes = *attributesFile
	}
	if *signalsFile != "" {
		cfg.Files.Signals = *signalsFile
	}
	if *nodesFile != "" {
		cfg.Files.Nodes = *nodesFile
	}
	if *speed > 0 {
		cfg.WalkingSpeed = *speed
	}
	if *k >= 0 {
		cfg.K = *k
	}
	if *designated != "" {
		cfg.DesignatedSignals = strings.Split(*designated, ",")
	}
	if *arrival != "" {
		cfg.ArrivalMode = *arrival
	}
	if *doContraction {
		cfg.UseContraction = true
	}
	if *retainAll {
		cfg.RetainAllEnumerated = true
	}
	if *noSignal {
		cfg.IgnoreSignals = true
	}
	if *verbose {
		cfg.Verbose = true
	}
	return cfg, cfg.Validate()
}

func printReferenceWait(planner *walkroute.Planner) error {
	reference, err := walkroute.ParseEdgeKey(*refEdge)
	if err != nil {
		return err
	}
	file, err := os.Open(*routeFile)
	if err != nil {
		return errors.Wrap(err, "Can't open route file")
	}
	defer file.Close()
	keys := []walkroute.EdgeKey{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, err := walkroute.ParseEdgeKey(line)
		if err != nil {
			slog.Warn("skip route line", "line", line, slog.String("error", err.Error()))
			continue
		}
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "Can't read route file")
	}
	wait, err := planner.ReferenceWait(keys, reference)
	if err != nil {
		return err
	}
	fmt.Printf("{\"totalWaitTime\": %.6f}\n", wait/60.0)
	return nil
}
