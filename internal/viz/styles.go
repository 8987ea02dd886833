package viz

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1).
			Width(40)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ccccdd"))

	statusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	statusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	statusDone = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8888ff"))

	statusError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	graphStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666688"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666688")).
			Italic(true)

	goalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffd700"))
)

// populationColors cycle through the scatter layers, one per population.
var populationColors = []lipgloss.Color{
	"#00ccff",
	"#ff66cc",
	"#88ff44",
	"#ff8844",
	"#ccccff",
	"#44ffcc",
}

// layerStyles builds the canvas style table: layer 0 is background, layer 1
// the goal ring, layer 2+i the i-th population.
func layerStyles(populations int) []lipgloss.Style {
	styles := make([]lipgloss.Style, 2+populations)
	styles[1] = goalStyle
	for i := 0; i < populations; i++ {
		styles[2+i] = lipgloss.NewStyle().Foreground(populationColors[i%len(populationColors)])
	}
	return styles
}

func populationStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(populationColors[i%len(populationColors)])
}
