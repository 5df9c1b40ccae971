// Package table is the tabular output contract of the engine: one row
// per (scenario, process, grid point), plus CSV and JSON writers in the
// shape consumed by external tooling.
package table

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// Row is a single sample: the value of one process for one scenario at
// one grid point. Rows are immutable once produced.
type Row struct {
	Scenario int     `json:"scenario"`
	Process  string  `json:"process_name"`
	Time     float64 `json:"time"`
	Value    float64 `json:"value"`
}

// WriteCSV writes a header followed by one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "process_name", "time", "value"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Scenario),
			r.Process,
			strconv.FormatFloat(r.Time, 'g', -1, 64),
			strconv.FormatFloat(r.Value, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Series extracts the time-ordered values of one process in one
// scenario; used by terminal plotting.
func Series(rows []Row, process string, scenario int) (times, values []float64) {
	for _, r := range rows {
		if r.Process == process && r.Scenario == scenario {
			times = append(times, r.Time)
			values = append(values, r.Value)
		}
	}
	return times, values
}

// Mean averages one process across all scenarios per grid point.
// Truncated scenarios contribute only up to their last emitted row.
func Mean(rows []Row, process string) (times, values []float64) {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, r := range rows {
		if r.Process != process {
			continue
		}
		if _, seen := sums[r.Time]; !seen {
			times = append(times, r.Time)
		}
		sums[r.Time] += r.Value
		counts[r.Time]++
	}
	values = make([]float64, len(times))
	for i, t := range times {
		values[i] = sums[t] / float64(counts[t])
	}
	return times, values
}
