package services

import (
	"context"
	"testing"

	"sensor-dashboard/models"
)

func TestNewSourceGeneratorRandom(t *testing.T) {
	gen, specs, err := NewSourceGenerator(SourceRandom, "", DefaultFields(), 7)
	if err != nil {
		t.Fatalf("NewSourceGenerator: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("specs = %v", specs)
	}
	r, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := r.Value("temperature"); !ok {
		t.Fatalf("reading lacks temperature: %#v", r)
	}
}

func specNames(specs []models.FieldSpec) map[string]string {
	out := make(map[string]string, len(specs))
	for _, f := range specs {
		out[f.Name] = f.Unit
	}
	return out
}

func TestNewSourceGeneratorHostFallsBackToAllProbes(t *testing.T) {
	_, specs, err := NewSourceGenerator(SourceHost, "", []models.FieldSpec{{Name: "humidity", Low: 0, High: 1}}, 0)
	if err != nil {
		t.Fatalf("NewSourceGenerator: %v", err)
	}
	if len(specs) != len(HostFields()) {
		t.Fatalf("specs = %v, want every host field", specs)
	}
}

func TestNewSourceGeneratorHostKeepsKnownFieldsAndBaseProbes(t *testing.T) {
	fields := []models.FieldSpec{{Name: "temperature", Low: -18, High: -16, Unit: "°C"}, {Name: "humidity", Low: 60, High: 100}}
	_, specs, err := NewSourceGenerator(SourceHost, "", fields, 0)
	if err != nil {
		t.Fatalf("NewSourceGenerator: %v", err)
	}
	if specs[0].Name != "temperature" || specs[0].Unit != "°C" {
		t.Fatalf("configured field should come first, got %v", specs)
	}
	names := specNames(specs)
	if len(names) != 3 || names["cpu"] != "%" || names["memory"] != "%" {
		t.Fatalf("specs = %v, want temperature, cpu and memory", specs)
	}
	if _, ok := names["humidity"]; ok {
		t.Fatalf("humidity is not a host metric: %v", specs)
	}
}

// Hosts without temperature sensors (containers, most VMs) must still record
// readings with the default fields.
func TestNewSourceGeneratorHostDefaultFieldsStillSample(t *testing.T) {
	gen, specs, err := NewSourceGenerator(SourceHost, "", DefaultFields(), 0)
	if err != nil {
		t.Fatalf("NewSourceGenerator: %v", err)
	}
	if len(specs) < 2 {
		t.Fatalf("expected several host probes, got %v", specs)
	}

	r, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := r.Value("memory"); !ok {
		t.Fatalf("reading lacks memory: %#v", r)
	}
}

func TestHostSpecsNoDuplicates(t *testing.T) {
	specs := hostSpecs([]models.FieldSpec{{Name: "cpu", Unit: "pct"}, {Name: "cpu"}})
	names := specNames(specs)
	if len(specs) != 2 || names["cpu"] != "pct" || names["memory"] != "%" {
		t.Fatalf("unexpected specs: %v", specs)
	}
}

func TestNewSourceGeneratorErrors(t *testing.T) {
	if _, _, err := NewSourceGenerator(SourceHTTP, "", DefaultFields(), 0); err == nil {
		t.Fatalf("expected error for http without url")
	}
	if _, _, err := NewSourceGenerator("serial", "", DefaultFields(), 0); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
