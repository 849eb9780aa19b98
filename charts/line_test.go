package charts

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"sensor-dashboard/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func snapshot(n int) []models.Reading {
	out := make([]models.Reading, n)
	for i := range out {
		out[i] = models.Reading{
			Values:    map[string]float64{"temperature": -17 + 0.1*float64(i)},
			Timestamp: fmt.Sprintf("2026-10-16 12:00:%02d", i*3),
		}
	}
	return out
}

func TestRenderLineWithTrend(t *testing.T) {
	var buf bytes.Buffer
	err := RenderLine(&buf, "temperature", snapshot(5), Options{Unit: "°C", ShowTrend: true})
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestRenderLineWithoutTrend(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLine(&buf, "temperature", snapshot(3), Options{}); err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestRenderLineNoData(t *testing.T) {
	var buf bytes.Buffer
	err := RenderLine(&buf, "humidity", snapshot(3), Options{ShowTrend: true})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written without data")
	}
}

func TestPointsSkipsMissingField(t *testing.T) {
	snap := snapshot(3)
	delete(snap[1].Values, "temperature")

	xs, ys, ticks := points("temperature", snap)
	if len(xs) != 2 || xs[1] != 1 || ys[1] != snap[2].Values["temperature"] {
		t.Fatalf("unexpected points xs=%v ys=%v", xs, ys)
	}
	if ticks[1].Label != "12:00:06" {
		t.Fatalf("tick label = %q, want 12:00:06", ticks[1].Label)
	}
}

func TestPad(t *testing.T) {
	if lo, hi := pad(5, 5); lo != 4 || hi != 6 {
		t.Fatalf("flat range padded to %v..%v, want 4..6", lo, hi)
	}
	if lo, hi := pad(0, 10); lo != -1 || hi != 11 {
		t.Fatalf("range padded to %v..%v, want -1..11", lo, hi)
	}
}
