package models

import (
	"sort"
	"time"
)

// TimestampLayout is the wall-clock format every Reading carries.
const TimestampLayout = "2006-01-02 15:04:05"

// TimestampColumn is the trailing column of every Table.
const TimestampColumn = "timestamp"

// Reading is one sensor sample. Once recorded it is never mutated; the buffer
// only hands out copies.
type Reading struct {
	Values    map[string]float64 `json:"values"`
	Timestamp string             `json:"timestamp"`
}

// NewReading copies values so the caller keeps ownership of its map.
func NewReading(values map[string]float64, at time.Time) Reading {
	r := Reading{Values: make(map[string]float64, len(values))}
	for k, v := range values {
		r.Values[k] = v
	}
	r.Timestamp = at.Format(TimestampLayout)
	return r
}

// Value returns the field value and whether the reading has it.
func (r Reading) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Fields returns the reading's field names in sorted order.
func (r Reading) Fields() []string {
	names := make([]string, 0, len(r.Values))
	for k := range r.Values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (r Reading) Clone() Reading {
	c := Reading{Timestamp: r.Timestamp}
	if r.Values != nil {
		c.Values = make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			c.Values[k] = v
		}
	}
	return c
}

// Time parses the timestamp in the local zone.
func (r Reading) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
}

// FieldSpec describes one generated metric.
type FieldSpec struct {
	Name string  `json:"name"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Unit string  `json:"unit"`
}

// Table is the data-grid view of a snapshot. Cells hold float64 for metric
// columns, nil where a reading lacks the field, and string for the timestamp.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// TrendLine is an ordinary least-squares fit of a metric against its index
// position in the snapshot.
type TrendLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at index i.
func (t TrendLine) At(i int) float64 {
	return t.Slope*float64(i) + t.Intercept
}

// Points evaluates the line at indices 0..n-1.
func (t TrendLine) Points(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}

// TrendView is what hosts render for one field: the fitted line when enough
// points exist, otherwise the reason there is none yet.
type TrendView struct {
	Field     string     `json:"field"`
	Points    int        `json:"points"`
	Available bool       `json:"available"`
	Trend     *TrendLine `json:"trend,omitempty"`
	Fitted    []float64  `json:"fitted,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// Update is pushed to live listeners after every recorded reading.
type Update struct {
	Reading Reading   `json:"reading"`
	Length  int       `json:"length"`
	Trend   TrendView `json:"trend"`
}
