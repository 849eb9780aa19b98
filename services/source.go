package services

import (
	"fmt"
	"math/rand"
	"time"

	"sensor-dashboard/models"
)

// Reading sources.
const (
	SourceRandom = "random"
	SourceHost   = "host"
	SourceHTTP   = "http"
)

// NewSourceGenerator builds the generator for source and returns the field
// specs its readings carry. seed 0 seeds the random source from the clock.
func NewSourceGenerator(source, url string, fields []models.FieldSpec, seed int64) (Generator, []models.FieldSpec, error) {
	switch source {
	case SourceHost:
		specs := hostSpecs(fields)
		names := make([]string, len(specs))
		for i, f := range specs {
			names[i] = f.Name
		}
		gen, err := NewHostGenerator(names)
		return gen, specs, err

	case SourceHTTP:
		if url == "" {
			return nil, nil, fmt.Errorf("source %s: url is required", source)
		}
		return NewHTTPGenerator(url), fields, nil

	case SourceRandom, "":
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		gen, err := NewRandomGenerator(fields, rand.New(rand.NewSource(seed)), time.Now)
		return gen, fields, err

	default:
		return nil, nil, fmt.Errorf("unknown source %q", source)
	}
}

var hostUnits = map[string]string{
	"cpu":         "%",
	"memory":      "%",
	"swap":        "%",
	"temperature": "°C",
}

// baseHostFields are sampled in host mode whatever else is configured; every
// machine can report them.
var baseHostFields = []string{"cpu", "memory"}

// hostSpecs keeps the configured fields that name a host probe and adds the
// base fields. With no match every probe is sampled.
func hostSpecs(fields []models.FieldSpec) []models.FieldSpec {
	known := make(map[string]bool)
	for _, name := range HostFields() {
		known[name] = true
	}

	var specs []models.FieldSpec
	seen := make(map[string]bool)
	for _, f := range fields {
		if known[f.Name] && !seen[f.Name] {
			if f.Unit == "" {
				f.Unit = hostUnits[f.Name]
			}
			specs = append(specs, f)
			seen[f.Name] = true
		}
	}

	extra := baseHostFields
	if len(specs) == 0 {
		extra = HostFields()
	}
	for _, name := range extra {
		if !seen[name] {
			specs = append(specs, models.FieldSpec{Name: name, Low: 0, High: 100, Unit: hostUnits[name]})
			seen[name] = true
		}
	}
	return specs
}
