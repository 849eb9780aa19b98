package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"sensor-dashboard/models"
	"sensor-dashboard/services"
)

func reading(i int) models.Reading {
	return models.Reading{
		Values:    map[string]float64{"temperature": -17 + 0.1*float64(i), "humidity": 60 + float64(i)},
		Timestamp: fmt.Sprintf("2026-10-16 12:00:%02d", i),
	}
}

func newTestApp(t *testing.T, n int) App {
	t.Helper()
	buf, err := services.NewRollingBuffer(5)
	if err != nil {
		t.Fatalf("NewRollingBuffer: %v", err)
	}
	readings := make([]models.Reading, n)
	for i := range readings {
		readings[i] = reading(i + 1)
	}
	sampler, err := services.NewSampler(services.SamplerConfig{
		Buffer:     buf,
		Generator:  services.NewSequenceGenerator(readings, false),
		TrendField: "temperature",
	})
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return NewApp(buf, sampler, services.DefaultFields())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

func TestAppInitSamplesAndSchedulesTick(t *testing.T) {
	a := newTestApp(t, 3)

	msg := a.Init()()
	sampled, ok := msg.(sampledMsg)
	if !ok {
		t.Fatalf("Init produced %T, want sampledMsg", msg)
	}
	if sampled.err != nil {
		t.Fatalf("sample failed: %v", sampled.err)
	}

	a, cmd := step(t, a, sampled)
	if cmd == nil {
		t.Fatalf("expected the next tick to be scheduled")
	}
	if a.samples != 1 || a.buffer.Len() != 1 {
		t.Fatalf("samples=%d len=%d, want 1/1", a.samples, a.buffer.Len())
	}
	if n := strings.Count(a.View(), "collecting data (1/2)"); n != 1 {
		t.Fatalf("expected one warm-up notice for the trend field, got %d:\n%s", n, a.View())
	}
}

func TestAppManualSampleDoesNotReschedule(t *testing.T) {
	a := newTestApp(t, 3)

	a, cmd := step(t, a, runes("s"))
	if cmd == nil {
		t.Fatalf("expected a sample command")
	}
	msg := cmd()
	if s, ok := msg.(sampledMsg); !ok || !s.manual {
		t.Fatalf("expected a manual sampledMsg, got %#v", msg)
	}
	if _, cmd = step(t, a, msg); cmd != nil {
		t.Fatalf("manual sample must not schedule a tick")
	}
}

func TestAppShowsTrendOnceWarm(t *testing.T) {
	a := newTestApp(t, 3)
	for i := 0; i < 3; i++ {
		a, _ = step(t, a, a.sample(true)())
	}

	view := a.View()
	if n := strings.Count(view, "/reading from"); n != 1 {
		t.Fatalf("expected one trend summary (temperature only), got %d:\n%s", n, view)
	}

	a, _ = step(t, a, runes("t"))
	if !strings.Contains(a.View(), "trend hidden") {
		t.Fatalf("expected trend to be hidden after toggle")
	}
}

func TestAppRecordsSampleError(t *testing.T) {
	a := newTestApp(t, 0)
	a, _ = step(t, a, a.sample(false)())
	if a.lastErr == nil {
		t.Fatalf("expected the exhausted sequence to surface")
	}
	if !strings.Contains(a.View(), "last sample failed") {
		t.Fatalf("expected error line in view")
	}
}

func TestAppQuit(t *testing.T) {
	a := newTestApp(t, 1)
	_, cmd := step(t, a, runes("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestRenderTable(t *testing.T) {
	table := models.Table{
		Columns: []string{"temperature", "humidity", models.TimestampColumn},
		Rows: [][]any{
			{-17.04, nil, "2026-10-16 12:00:01"},
		},
	}
	out := renderTable(table)
	for _, want := range []string{"-17.0", " - ", "2026-10-16 12:00:01"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}

	empty := renderTable(models.Table{Columns: []string{"temperature", models.TimestampColumn}})
	if !strings.Contains(empty, "no readings yet") {
		t.Fatalf("expected empty notice:\n%s", empty)
	}
}
