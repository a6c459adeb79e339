package walkroute

import (
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// LoadStats describes outcome of reading single source
type LoadStats struct {
	Rows    int
	Loaded  int
	Skipped int
}

// AttributeColumns are zero-based positions of fields in attributes CSV
type AttributeColumns struct {
	From        int
	To          int
	Distance    int
	Gradient    int
	IsSignal    int
	IsCrosswalk int
}

// DefaultAttributeColumns is a layout of street attributes export
var DefaultAttributeColumns = AttributeColumns{
	From:        0,
	To:          1,
	Distance:    2,
	Gradient:    4,
	IsSignal:    8,
	IsCrosswalk: 15,
}

// rowReader iterates non-empty CSV rows and counts malformed ones
type rowReader struct {
	reader *csv.Reader
	source string
	stats  *LoadStats
}

func newRowReader(r io.Reader, source string, stats *LoadStats) *rowReader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	return &rowReader{reader: reader, source: source, stats: stats}
}

// next returns next non-empty row. Second value is false at the end of input
func (rr *rowReader) next() ([]string, bool, error) {
	for {
		record, err := rr.reader.Read()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				rr.stats.Rows++
				rr.skip(err.Error())
				continue
			}
			return nil, false, errors.Wrapf(err, "Can't read '%s'", rr.source)
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		rr.stats.Rows++
		return record, true, nil
	}
}

func (rr *rowReader) skip(reason string) {
	rr.stats.Skipped++
	slog.Debug("skip row", "source", rr.source, "row", rr.stats.Rows, "reason", reason)
}

func (rr *rowReader) finish(verbose bool, st time.Time) {
	if rr.stats.Skipped > 0 {
		slog.Warn("malformed rows skipped", "source", rr.source, "skipped", rr.stats.Skipped, "rows", rr.stats.Rows)
	}
	if verbose {
		slog.Info("source loaded", "source", rr.source, "loaded", rr.stats.Loaded, "elapsed", time.Since(st))
	}
}

func parseNodeID(s string) (osm.NodeID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.Errorf("Node ID must be positive, got %d", v)
	}
	return osm.NodeID(v), nil
}

// parseFloat accepts finite numbers only
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("Number must be finite, got '%s'", s)
	}
	return v, nil
}

// parseFlag treats '1' and 'true' as set. Missing column means unset
func parseFlag(record []string, col int) bool {
	if col < 0 || col >= len(record) {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(record[col]))
	return v == "1" || v == "true"
}

func openSource(fname string) (*os.File, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open '%s'", fname)
	}
	return file, nil
}

// ReadWeightsCSV registers edges listed in headerless 'from,to,weight' file
func ReadWeightsCSV(builder *GraphBuilder, fname string, verbose bool) (LoadStats, error) {
	file, err := openSource(fname)
	if err != nil {
		return LoadStats{}, err
	}
	defer file.Close()
	return LoadWeights(builder, file, fname, verbose)
}

// LoadWeights is ReadWeightsCSV for arbitrary reader
func LoadWeights(builder *GraphBuilder, r io.Reader, source string, verbose bool) (LoadStats, error) {
	st := time.Now()
	stats := LoadStats{}
	rows := newRowReader(r, source, &stats)
	for {
		record, ok, err := rows.next()
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}
		if len(record) < 3 {
			rows.skip("not enough columns")
			continue
		}
		from, err := parseNodeID(record[0])
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		to, err := parseNodeID(record[1])
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		if _, err := parseFloat(record[2]); err != nil {
			rows.skip(err.Error())
			continue
		}
		builder.AddWeight(from, to)
		stats.Loaded++
	}
	rows.finish(verbose, st)
	return stats, nil
}

// ReadAttributesCSV registers edges with distance, gradient and crossing flags. First row is a header
func ReadAttributesCSV(builder *GraphBuilder, fname string, columns AttributeColumns, verbose bool) (LoadStats, error) {
	file, err := openSource(fname)
	if err != nil {
		return LoadStats{}, err
	}
	defer file.Close()
	return LoadAttributes(builder, file, fname, columns, verbose)
}

// LoadAttributes is ReadAttributesCSV for arbitrary reader
func LoadAttributes(builder *GraphBuilder, r io.Reader, source string, columns AttributeColumns, verbose bool) (LoadStats, error) {
	st := time.Now()
	stats := LoadStats{}
	rows := newRowReader(r, source, &stats)
	header := true
	required := maxInt(columns.From, columns.To, columns.Distance, columns.Gradient) + 1
	for {
		record, ok, err := rows.next()
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}
		if header {
			header = false
			stats.Rows--
			continue
		}
		if len(record) < required {
			rows.skip("not enough columns")
			continue
		}
		from, err := parseNodeID(record[columns.From])
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		to, err := parseNodeID(record[columns.To])
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		distance, err := parseFloat(record[columns.Distance])
		if err != nil || distance < 0 {
			rows.skip("bad distance")
			continue
		}
		gradient, err := parseFloat(record[columns.Gradient])
		if err != nil {
			rows.skip("bad gradient")
			continue
		}
		builder.AddAttributes(EdgeRecord{
			From:           from,
			To:             to,
			DistanceMeters: distance,
			Gradient:       gradient,
			IsSignal:       parseFlag(record, columns.IsSignal),
			IsCrosswalk:    parseFlag(record, columns.IsCrosswalk),
		})
		stats.Loaded++
	}
	rows.finish(verbose, st)
	return stats, nil
}

// ReadSignalsCSV attaches signal timing. First row is a header. Rows are either
// 'u-v,cycle,green,phase[,expected_wait_min]' or 'u,v,cycle,green,phase[,expected_wait_min]'.
// Rows referencing unknown edges are skipped
func ReadSignalsCSV(builder *GraphBuilder, fname string, verbose bool) (LoadStats, error) {
	file, err := openSource(fname)
	if err != nil {
		return LoadStats{}, err
	}
	defer file.Close()
	return LoadSignals(builder, file, fname, verbose)
}

// LoadSignals is ReadSignalsCSV for arbitrary reader
func LoadSignals(builder *GraphBuilder, r io.Reader, source string, verbose bool) (LoadStats, error) {
	st := time.Now()
	stats := LoadStats{}
	rows := newRowReader(r, source, &stats)
	header := true
	for {
		record, ok, err := rows.next()
		if err != nil {
			return stats, err
		}
		if !ok {
			break
		}
		if header {
			header = false
			stats.Rows--
			continue
		}
		signal, err := parseSignalRow(record)
		if err != nil {
			rows.skip(err.Error())
			continue
		}
		err = builder.AddSignalTiming(signal)
		if err != nil {
			slog.Warn("signal timing skipped", "source", source, "edge", NormalizeEdgeKey(signal.From, signal.To).String(), slog.String("error", err.Error()))
			stats.Skipped++
			continue
		}
		stats.Loaded++
	}
	rows.finish(verbose, st)
	return stats, nil
}

func parseSignalRow(fields []string) (SignalRecord, error) {
	record := SignalRecord{}
	var rest []string
	if strings.Contains(fields[0], "-") {
		key, err := ParseEdgeKey(fields[0])
		if err != nil {
			return record, err
		}
		record.From, record.To = key.Source, key.Target
		rest = fields[1:]
	} else {
		if len(fields) < 2 {
			return record, errors.New("not enough columns")
		}
		from, err := parseNodeID(fields[0])
		if err != nil {
			return record, err
		}
		to, err := parseNodeID(fields[1])
		if err != nil {
			return record, err
		}
		record.From, record.To = from, to
		rest = fields[2:]
	}
	if len(rest) < 2 {
		return record, errors.New("not enough columns")
	}
	cycle, err := parseFloat(rest[0])
	if err != nil {
		return record, errors.Wrap(err, "bad cycle")
	}
	green, err := parseFloat(rest[1])
	if err != nil {
		return record, errors.Wrap(err, "bad green")
	}
	if cycle <= 0 || green < 0 || green > cycle {
		return record, errors.Errorf("inconsistent timing: cycle=%f green=%f", cycle, green)
	}
	record.Cycle, record.Green = cycle, green
	if len(rest) > 2 && strings.TrimSpace(rest[2]) != "" {
		record.Phase, err = parseFloat(rest[2])
		if err != nil {
			return record, errors.Wrap(err, "bad phase")
		}
	}
	if len(rest) > 3 && strings.TrimSpace(rest[3]) != "" {
		record.ExpectedWaitMinutes, err = parseFloat(rest[3])
		if err != nil {
			return record, errors.Wrap(err, "bad expected wait")
		}
		record.HasExpectedWait = true
	}
	return record, nil
}

func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
