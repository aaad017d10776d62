package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(Active.Text).Align(lipgloss.Center)
}

func headerStyle() lipgloss.Style { return lipgloss.NewStyle().Bold(true).Foreground(Active.Accent) }
func valueStyle() lipgloss.Style  { return lipgloss.NewStyle().Foreground(Active.Text) }
func mutedStyle() lipgloss.Style  { return lipgloss.NewStyle().Foreground(Active.TextMuted) }
func dimStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(Active.TextDim) }

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil

	// Left lists the columns rendered left-aligned. Column 0 is
	// left-aligned when Left is nil.
	Left []int
}

// Separator is a row value that renders as a horizontal rule.
var Separator = []string{"---"}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Active.Border).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle().Render(title))
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		for _, row := range t.Rows {
			numCols = max(numCols, len(row))
		}
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			if isSeparator(row) {
				continue
			}
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	left := make([]bool, numCols)
	if t.Left == nil {
		left[0] = true
	}
	for _, i := range t.Left {
		if i >= 0 && i < numCols {
			left[i] = true
		}
	}

	dim := dimStyle()
	var b strings.Builder
	writeRule := func(l, mid, r string) {
		var line strings.Builder
		line.WriteString(l)
		for i, w := range widths {
			line.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				line.WriteString(mid)
			}
		}
		line.WriteString(r)
		b.WriteString(dim.Render(line.String()))
		b.WriteString("\n")
	}

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle().Render(t.Title))
		b.WriteString("\n")
	}

	writeRule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dim.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle().Render(" " + pad(h, widths[i], left[i]) + " "))
			b.WriteString(dim.Render("│"))
		}
		b.WriteString("\n")
		writeRule("├", "┼", "┤")
	}

	value := valueStyle()
	for _, row := range t.Rows {
		if isSeparator(row) {
			writeRule("├", "┼", "┤")
			continue
		}

		b.WriteString(dim.Render("│"))
		for i := range numCols {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(value.Render(" " + pad(cell, widths[i], left[i]) + " "))
			b.WriteString(dim.Render("│"))
		}
		b.WriteString("\n")
	}

	writeRule("╰", "┴", "╯")
	return b.String()
}

// RenderSparkline generates a unicode block sparkline from a series of
// values, scaled between the series minimum and maximum.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return "  " + label
	}
	barLen := min(max(int(value/maxValue*float64(maxWidth)), 0), maxWidth)
	return "  " + label + " " + mutedStyle().Render(strings.Repeat("█", barLen))
}

// Amount colors a formatted amount by its sign.
func Amount(formatted string, negative bool) string {
	color := Active.Positive
	if negative {
		color = Active.Negative
	}
	return lipgloss.NewStyle().Foreground(color).Render(formatted)
}

// Warn renders a warning line.
func Warn(msg string) string {
	return lipgloss.NewStyle().Foreground(Active.Warn).Render(msg)
}

// Muted renders secondary text.
func Muted(msg string) string {
	return mutedStyle().Render(msg)
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == Separator[0]
}

func pad(s string, width int, left bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}
