package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/macrowatch/liquidrun/internal/series"
)

// Common column headers, tried in order, case-insensitive.
var (
	dateColumns  = []string{"date", "datetime", "timestamp", "time"}
	valueColumns = []string{"value", "close", "price", "level"}
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// CSVLoader reads one indicator per file from Dir, named <name>.csv.
// Output is sorted by date with duplicate dates collapsed (last row
// wins). Unparseable rows are skipped and counted in the log.
type CSVLoader struct {
	Dir  string
	Gate RateGate
	Log  zerolog.Logger
}

// NewCSVLoader reads indicator files from dir.
func NewCSVLoader(dir string, log zerolog.Logger) *CSVLoader {
	return &CSVLoader{Dir: dir, Log: log.With().Str("component", "csv_loader").Logger()}
}

// Load reads <Dir>/<name>.csv into a series. A missing file yields a
// NotFoundError.
func (l *CSVLoader) Load(ctx context.Context, name string) (series.Series, error) {
	if l.Gate != nil {
		if err := l.Gate.Acquire(ctx); err != nil {
			return series.Series{}, fmt.Errorf("acquiring rate gate: %w", err)
		}
	}
	s, err := l.load(name)
	if l.Gate != nil {
		if err != nil && !IsNotFound(err) {
			l.Gate.RecordFailure()
		} else {
			l.Gate.RecordSuccess()
		}
	}
	return s, err
}

func (l *CSVLoader) load(name string) (series.Series, error) {
	path := filepath.Join(l.Dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return series.Series{}, &NotFoundError{Name: name}
		}
		return series.Series{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return series.Series{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) < 2 {
		return series.Series{}, &NotFoundError{Name: name}
	}

	dateIdx, valueIdx, err := detectColumns(records[0])
	if err != nil {
		return series.Series{}, fmt.Errorf("%s: %w", path, err)
	}

	byDate := make(map[time.Time]float64)
	skipped := 0
	for _, row := range records[1:] {
		if dateIdx >= len(row) || valueIdx >= len(row) {
			skipped++
			continue
		}
		t, ok := parseDate(row[dateIdx])
		if !ok {
			skipped++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			skipped++
			continue
		}
		byDate[t] = v
	}
	if skipped > 0 {
		l.Log.Warn().Str("indicator", name).Int("skipped", skipped).Msg("dropped unparseable rows")
	}
	if len(byDate) == 0 {
		return series.Series{}, &NotFoundError{Name: name}
	}

	times := make([]time.Time, 0, len(byDate))
	for t := range byDate {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	values := make([]float64, len(times))
	for i, t := range times {
		values[i] = byDate[t]
	}

	l.Log.Debug().Str("indicator", name).Int("points", len(times)).Msg("loaded")
	return series.New(name, times, values), nil
}

// detectColumns finds the date and value columns in a header row,
// falling back to columns 0 and 1.
func detectColumns(header []string) (dateIdx, valueIdx int, err error) {
	dateIdx, valueIdx = -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if dateIdx < 0 && contains(dateColumns, name) {
			dateIdx = i
		}
		if valueIdx < 0 && contains(valueColumns, name) {
			valueIdx = i
		}
	}
	if dateIdx < 0 && valueIdx < 0 && len(header) >= 2 {
		return 0, 1, nil
	}
	if dateIdx < 0 || valueIdx < 0 {
		return 0, 0, fmt.Errorf("could not detect date and value columns in header %v", header)
	}
	return dateIdx, valueIdx, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
