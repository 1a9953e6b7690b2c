package watchtui

import (
	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
)

// trendWindow is the number of most recent instructions the sparkline
// tracks, grounded on the teacher's fixed 5-minute rolling window idea
// (internal/gc/tui/trends.go) but expressed as an instruction count since
// there is no wall-clock axis here.
const trendWindow = 120

var stackDepthStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#228B22"))

// stackDepthTrend wraps an ntcharts sparkline tracking operand-stack depth
// across the most recently executed instructions.
type stackDepthTrend struct {
	chart sparkline.Model
}

func newStackDepthTrend(width, height int) *stackDepthTrend {
	chart := sparkline.New(width, height)
	chart.Style = stackDepthStyle
	return &stackDepthTrend{chart: chart}
}

func (t *stackDepthTrend) push(depth int) {
	t.chart.Push(float64(depth))
	t.chart.Draw()
}

func (t *stackDepthTrend) Resize(width, height int) {
	t.chart.Resize(width, height)
}

func (t *stackDepthTrend) View() string {
	return t.chart.View()
}
