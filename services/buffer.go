package services

import (
	"sort"
	"sync"

	"sensor-dashboard/models"
)

// DefaultCapacity is the history length the dashboards keep.
const DefaultCapacity = 5

// RollingBuffer is a fixed-capacity FIFO history of readings, oldest first.
// It is safe for concurrent use: readers always get a consistent copy.
type RollingBuffer struct {
	mu       sync.RWMutex
	readings []models.Reading
	head     int // index of the oldest reading
	count    int
}

// NewRollingBuffer returns an empty buffer holding at most capacity readings.
func NewRollingBuffer(capacity int) (*RollingBuffer, error) {
	if capacity <= 0 {
		return nil, &ConfigError{Capacity: capacity}
	}
	return &RollingBuffer{
		readings: make([]models.Reading, capacity),
	}, nil
}

// Append stores a copy of r, evicting the oldest reading when full.
func (b *RollingBuffer) Append(r models.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(r.Clone())
}

func (b *RollingBuffer) appendLocked(r models.Reading) {
	size := len(b.readings)
	if b.count < size {
		b.readings[(b.head+b.count)%size] = r
		b.count++
		return
	}
	b.readings[b.head] = r
	b.head = (b.head + 1) % size
}

// Snapshot returns every held reading, oldest first. Later appends do not
// affect the returned slice.
func (b *RollingBuffer) Snapshot() []models.Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *RollingBuffer) snapshotLocked() []models.Reading {
	out := make([]models.Reading, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.readings[(b.head+i)%len(b.readings)].Clone()
	}
	return out
}

// AsTable lays the snapshot out as rows. Columns are the requested fields in
// order followed by the timestamp. With no fields requested, every field seen
// in the snapshot is used in sorted order.
func (b *RollingBuffer) AsTable(fields ...string) models.Table {
	snap := b.Snapshot()
	if len(fields) == 0 {
		fields = FieldsOf(snap)
	}

	columns := make([]string, 0, len(fields)+1)
	columns = append(columns, fields...)
	columns = append(columns, models.TimestampColumn)

	rows := make([][]any, 0, len(snap))
	for _, r := range snap {
		row := make([]any, 0, len(columns))
		for _, f := range fields {
			if v, ok := r.Value(f); ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, r.Timestamp)
		rows = append(rows, row)
	}
	return models.Table{Columns: columns, Rows: rows}
}

// Latest returns the newest reading.
func (b *RollingBuffer) Latest() (models.Reading, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return models.Reading{}, false
	}
	return b.readings[(b.head+b.count-1)%len(b.readings)].Clone(), true
}

// Len returns the number of held readings.
func (b *RollingBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Capacity returns the fixed maximum length.
func (b *RollingBuffer) Capacity() int {
	return len(b.readings)
}

// Reset replaces the contents with readings, keeping only the newest
// Capacity() of them.
func (b *RollingBuffer) Reset(readings []models.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.readings {
		b.readings[i] = models.Reading{}
	}
	b.head, b.count = 0, 0
	for _, r := range readings {
		b.appendLocked(r.Clone())
	}
}

// ValuesOf extracts one field from a snapshot, skipping readings without it.
func ValuesOf(field string, snapshot []models.Reading) []float64 {
	out := make([]float64, 0, len(snapshot))
	for _, r := range snapshot {
		if v, ok := r.Value(field); ok {
			out = append(out, v)
		}
	}
	return out
}

// FieldsOf returns the sorted union of field names in a snapshot.
func FieldsOf(snapshot []models.Reading) []string {
	seen := make(map[string]struct{})
	for _, r := range snapshot {
		for k := range r.Values {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
