package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/taxcurve/internal/domain"
)

const yAxisWidth = 10

// CurveChart plots cumulative liability against income as terminal text.
// Samples are placed by income, not by index, since brackets are sampled
// at different spacings.
type CurveChart struct {
	Width  int
	Height int
}

// Render draws the curve from the origin through every sample
func (c *CurveChart) Render(points []domain.CurvePoint) string {
	if len(points) == 0 {
		return LabelStyle.Render("No data to display")
	}
	width := c.Width - yAxisWidth - 2
	height := c.Height
	if width < 10 {
		width = 10
	}
	if height < 4 {
		height = 4
	}

	last := points[len(points)-1]
	maxIncome := last.Income.InexactFloat64()
	maxOwed := last.CumulativeOwed.InexactFloat64()
	if maxIncome <= 0 {
		maxIncome = 1
	}
	if maxOwed <= 0 {
		maxOwed = 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(income, owed float64) (int, int) {
		x := int(math.Round(income / maxIncome * float64(width-1)))
		y := height - 1 - int(math.Round(owed/maxOwed*float64(height-1)))
		return x, y
	}

	prevX, prevY := toCell(0, 0)
	for _, p := range points {
		x, y := toCell(p.Income.InexactFloat64(), p.CumulativeOwed.InexactFloat64())
		drawLine(grid, prevX, prevY, x, y, '·')
		grid[y][x] = '●'
		prevX, prevY = x, y
	}

	var out strings.Builder
	axisStyle := LabelStyle.Width(yAxisWidth).Align(lipgloss.Right)
	for i, row := range grid {
		label := ""
		switch i {
		case 0:
			label = formatChartValue(maxOwed)
		case height / 2:
			label = formatChartValue(maxOwed / 2)
		case height - 1:
			label = formatChartValue(0)
		}
		out.WriteString(axisStyle.Render(label))
		out.WriteString(" │")
		out.WriteString(ChartLineStyle.Render(string(row)))
		out.WriteString("\n")
	}

	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", width))
	out.WriteString("\n")

	left := formatChartValue(0)
	right := formatChartValue(maxIncome)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth+2))
	out.WriteString(LabelStyle.Render(left + strings.Repeat(" ", gap) + right))
	out.WriteString("\n")
	return out.String()
}

// drawLine connects two cells with Bresenham's algorithm
func drawLine(grid [][]rune, x0, y0, x1, y1 int, char rune) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	x, y := x0, y0
	for {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x] == ' ' {
			grid[y][x] = char
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// formatChartValue abbreviates axis values
func formatChartValue(value float64) string {
	switch {
	case math.Abs(value) >= 1000000:
		return fmt.Sprintf("$%.1fM", value/1000000)
	case math.Abs(value) >= 1000:
		return fmt.Sprintf("$%.0fK", value/1000)
	default:
		return fmt.Sprintf("$%.0f", value)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
