package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sensor-dashboard/models"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// flatSlope is the slope below which a trend is shown as steady.
const flatSlope = 1e-3

// Sparkline draws one block per reading. With a trend, blocks above the
// fitted line take the rising colour and blocks below it the falling one.
type Sparkline struct {
	Values []float64
	Trend  *models.TrendLine
}

func (s Sparkline) Render() string {
	if len(s.Values) == 0 {
		return ""
	}

	lo, hi := s.Values[0], s.Values[0]
	for _, v := range s.Values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	above := lipgloss.NewStyle().Foreground(colorRising)
	below := lipgloss.NewStyle().Foreground(colorFalling)
	plain := lipgloss.NewStyle().Foreground(colorPrimary)

	var b strings.Builder
	for i, v := range s.Values {
		level := int((v - lo) / span * float64(len(sparkBlocks)-1))
		if level < 0 {
			level = 0
		}
		if level >= len(sparkBlocks) {
			level = len(sparkBlocks) - 1
		}
		block := string(sparkBlocks[level])

		switch {
		case s.Trend == nil:
			b.WriteString(plain.Render(block))
		case v >= s.Trend.At(i):
			b.WriteString(above.Render(block))
		default:
			b.WriteString(below.Render(block))
		}
	}
	return b.String()
}

// TrendArrow summarises a slope as a coloured arrow.
func TrendArrow(slope float64) string {
	switch {
	case slope > flatSlope:
		return lipgloss.NewStyle().Foreground(colorRising).Render("↗")
	case slope < -flatSlope:
		return lipgloss.NewStyle().Foreground(colorFalling).Render("↘")
	default:
		return lipgloss.NewStyle().Foreground(colorFlat).Render("→")
	}
}
