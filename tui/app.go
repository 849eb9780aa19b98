// Package tui is the terminal host of the dashboard: it drives the same
// sampler and buffer as the HTTP service from a Bubble Tea tick.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sensor-dashboard/models"
	"sensor-dashboard/services"
)

type tickMsg time.Time

type sampledMsg struct {
	update models.Update
	err    error
	manual bool
}

// App is the Bubble Tea model.
type App struct {
	buffer  *services.RollingBuffer
	sampler *services.Sampler
	fields  []models.FieldSpec

	showTrend bool
	showHelp  bool
	lastErr   error
	samples   int
	width     int

	keys KeyMap
	help help.Model
}

func NewApp(buffer *services.RollingBuffer, sampler *services.Sampler, fields []models.FieldSpec) App {
	return App{
		buffer:    buffer,
		sampler:   sampler,
		fields:    fields,
		showTrend: true,
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

// Init samples immediately; later samples follow the sampler interval.
func (a App) Init() tea.Cmd {
	return a.sample(false)
}

func (a App) sample(manual bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		u, err := a.sampler.Tick(ctx)
		return sampledMsg{update: u, err: err, manual: manual}
	}
}

func (a App) tick() tea.Cmd {
	return tea.Tick(a.sampler.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Sample):
			return a, a.sample(true)
		case key.Matches(msg, a.keys.ToggleTrend):
			a.showTrend = !a.showTrend
		case key.Matches(msg, a.keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
		}

	case tickMsg:
		return a, a.sample(false)

	case sampledMsg:
		a.lastErr = msg.err
		if msg.err == nil {
			a.samples++
		}
		// manual samples do not start a second tick chain
		if !msg.manual {
			return a, a.tick()
		}
	}
	return a, nil
}

func (a App) View() string {
	snapshot := a.buffer.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sensor dashboard"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d readings · every %s · %d sampled",
		len(snapshot), a.buffer.Capacity(), a.sampler.Interval(), a.samples)))
	b.WriteString("\n\n")

	panels := make([]string, 0, len(a.fields))
	for _, f := range a.fields {
		panels = append(panels, a.fieldPanel(f, snapshot))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n\n")

	b.WriteString(renderTable(a.buffer.AsTable(fieldNames(a.fields)...)))
	b.WriteString("\n")

	if a.lastErr != nil {
		b.WriteString(errStyle.Render("last sample failed: " + a.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

var titleCase = cases.Title(language.English)

func (a App) fieldPanel(f models.FieldSpec, snapshot []models.Reading) string {
	var lines []string

	head := titleCase.String(f.Name)
	latest := "--"
	if len(snapshot) > 0 {
		if v, ok := snapshot[len(snapshot)-1].Value(f.Name); ok {
			latest = fmt.Sprintf("%.1f %s", v, f.Unit)
		}
	}

	spark := Sparkline{Values: services.ValuesOf(f.Name, snapshot)}

	// only the sampler's trend field carries a fitted line
	if f.Name != a.sampler.TrendField() {
		lines = append(lines, head, valueStyle.Render(strings.TrimSpace(latest)), spark.Render())
		return panelStyle.Width(30).Render(strings.Join(lines, "\n"))
	}

	view := services.DescribeTrend(f.Name, snapshot)
	if a.showTrend && view.Available {
		spark.Trend = view.Trend
		head += " " + TrendArrow(view.Trend.Slope)
	}
	lines = append(lines, head, valueStyle.Render(strings.TrimSpace(latest)), spark.Render())

	switch {
	case !a.showTrend:
		lines = append(lines, dimStyle.Render("trend hidden"))
	case view.Available:
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%+.3f/reading from %.2f", view.Trend.Slope, view.Trend.Intercept)))
	default:
		lines = append(lines, dimStyle.Render(fmt.Sprintf("collecting data (%d/%d)", view.Points, services.MinTrendPoints)))
	}

	return panelStyle.Width(30).Render(strings.Join(lines, "\n"))
}

func fieldNames(fields []models.FieldSpec) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// renderTable prints a Table as aligned text, newest reading last.
func renderTable(t models.Table) string {
	const colWidth = 14

	var b strings.Builder
	for i, c := range t.Columns {
		w := colWidth
		if i == len(t.Columns)-1 {
			w = 0
		}
		b.WriteString(headStyle.Render(c))
		b.WriteString(strings.Repeat(" ", max(1, w-lipgloss.Width(c))))
	}
	b.WriteString("\n")

	if len(t.Rows) == 0 {
		b.WriteString(dimStyle.Render("no readings yet"))
		b.WriteString("\n")
		return b.String()
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			s := formatCell(cell)
			b.WriteString(s)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", max(1, colWidth-len(s))))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatCell(cell any) string {
	switch v := cell.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%.1f", v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
