package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sensor-dashboard/models"
)

// Generator produces one reading per call. The sampler owns the cadence; a
// generator never touches the buffer.
type Generator interface {
	Generate(ctx context.Context) (models.Reading, error)
}

// ValuePlaces is the number of decimals generated values are rounded to.
const ValuePlaces = 1

// ErrSequenceExhausted is returned by a non-looping SequenceGenerator once
// every reading has been handed out.
var ErrSequenceExhausted = errors.New("generator: sequence exhausted")

// DefaultFields are the Antarctic lab ranges the dashboard ships with.
func DefaultFields() []models.FieldSpec {
	return []models.FieldSpec{
		{Name: "temperature", Low: -18, High: -16, Unit: "°C"},
		{Name: "humidity", Low: 60, High: 100, Unit: "%"},
	}
}

// Round rounds v to the given number of decimals, ties to even. The exact
// binary value is rounded, so 16.05 (stored as 16.0500000000000007) rounds up
// while a true tie such as -16.25 goes to -16.2.
func Round(v float64, places int32) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 64, 64))
	if err != nil {
		d = decimal.NewFromFloat(v)
	}
	f, _ := d.RoundBank(places).Float64()
	return f
}

// RandomGenerator draws every field uniformly from its [Low, High] range.
type RandomGenerator struct {
	mu     sync.Mutex
	fields []models.FieldSpec
	rng    *rand.Rand
	now    func() time.Time
}

// NewRandomGenerator validates the field ranges. A nil rng is seeded from the
// clock; a nil now uses time.Now.
func NewRandomGenerator(fields []models.FieldSpec, rng *rand.Rand, now func() time.Time) (*RandomGenerator, error) {
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &RandomGenerator{
		fields: append([]models.FieldSpec(nil), fields...),
		rng:    rng,
		now:    now,
	}, nil
}

// Generate implements Generator.
func (g *RandomGenerator) Generate(ctx context.Context) (models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return models.Reading{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	values := make(map[string]float64, len(g.fields))
	for _, f := range g.fields {
		v := f.Low + g.rng.Float64()*(f.High-f.Low)
		values[f.Name] = Round(v, ValuePlaces)
	}
	return models.NewReading(values, g.now()), nil
}

// ValidateFields checks names are present and unique and ranges are ordered.
func ValidateFields(fields []models.FieldSpec) error {
	if len(fields) == 0 {
		return fmt.Errorf("generator: at least one field is required")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("generator: field name is required")
		}
		if f.Name == models.TimestampColumn {
			return fmt.Errorf("generator: field name %q is reserved", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("generator: duplicate field %q", f.Name)
		}
		if f.Low > f.High {
			return fmt.Errorf("generator: field %q has low %v above high %v", f.Name, f.Low, f.High)
		}
		seen[f.Name] = true
	}
	return nil
}

// SequenceGenerator replays fixed values in order. Readings without a
// timestamp are stamped with the clock.
type SequenceGenerator struct {
	mu       sync.Mutex
	readings []models.Reading
	next     int
	loop     bool
	now      func() time.Time
}

// NewSequenceGenerator returns a deterministic generator. When loop is false
// it fails with ErrSequenceExhausted after the last reading.
func NewSequenceGenerator(readings []models.Reading, loop bool) *SequenceGenerator {
	cp := make([]models.Reading, len(readings))
	for i, r := range readings {
		cp[i] = r.Clone()
	}
	return &SequenceGenerator{readings: cp, loop: loop, now: time.Now}
}

// Generate implements Generator.
func (g *SequenceGenerator) Generate(ctx context.Context) (models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return models.Reading{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.readings) == 0 {
		return models.Reading{}, ErrSequenceExhausted
	}
	if g.next >= len(g.readings) {
		if !g.loop {
			return models.Reading{}, ErrSequenceExhausted
		}
		g.next = 0
	}
	r := g.readings[g.next].Clone()
	g.next++
	if r.Timestamp == "" {
		r.Timestamp = g.now().Format(models.TimestampLayout)
	}
	return r, nil
}
