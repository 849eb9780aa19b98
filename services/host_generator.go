package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"sensor-dashboard/models"
)

// Probe reads one live value from the host.
type Probe func(ctx context.Context) (float64, error)

// HostProbes are the metrics a HostGenerator can sample.
func HostProbes() map[string]Probe {
	return map[string]Probe{
		"cpu": func(ctx context.Context) (float64, error) {
			pct, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(pct) == 0 {
				return 0, fmt.Errorf("no cpu samples")
			}
			return pct[0], nil
		},
		"memory": func(ctx context.Context) (float64, error) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return vm.UsedPercent, nil
		},
		"swap": func(ctx context.Context) (float64, error) {
			sw, err := mem.SwapMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return sw.UsedPercent, nil
		},
		"temperature": func(ctx context.Context) (float64, error) {
			temps, err := host.SensorsTemperaturesWithContext(ctx)
			if len(temps) == 0 {
				if err == nil {
					err = fmt.Errorf("no temperature sensors")
				}
				return 0, err
			}
			var sum float64
			for _, t := range temps {
				sum += t.Temperature
			}
			return sum / float64(len(temps)), nil
		},
	}
}

// HostFields lists the metric names HostProbes provides, sorted.
func HostFields() []string {
	names := make([]string, 0, 4)
	for k := range HostProbes() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// HostGenerator samples live machine metrics instead of fabricating them.
// A probe that fails leaves its field out of that reading.
type HostGenerator struct {
	fields []string
	probes map[string]Probe
	now    func() time.Time
}

// NewHostGenerator returns a generator for the named host metrics.
func NewHostGenerator(fields []string) (*HostGenerator, error) {
	return newHostGenerator(fields, HostProbes(), time.Now)
}

func newHostGenerator(fields []string, probes map[string]Probe, now func() time.Time) (*HostGenerator, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("host generator: at least one field is required")
	}
	for _, f := range fields {
		if _, ok := probes[f]; !ok {
			return nil, fmt.Errorf("host generator: unknown field %q", f)
		}
	}
	return &HostGenerator{fields: fields, probes: probes, now: now}, nil
}

// Generate implements Generator.
func (g *HostGenerator) Generate(ctx context.Context) (models.Reading, error) {
	values := make(map[string]float64, len(g.fields))
	var lastErr error
	for _, f := range g.fields {
		v, err := g.probes[f](ctx)
		if err != nil {
			lastErr = fmt.Errorf("host generator: %s: %w", f, err)
			continue
		}
		values[f] = Round(v, ValuePlaces)
	}
	if len(values) == 0 {
		return models.Reading{}, lastErr
	}
	return models.NewReading(values, g.now()), nil
}
