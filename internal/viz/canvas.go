package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// pixelMap maps a sub-cell (row, col) to its braille dot bit. Every terminal
// cell carries a 2x4 dot grid, so a canvas resolves Width*2 by Height*4
// plottable points.
var pixelMap = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille scatter canvas with a world-coordinate window. Points
// land on numbered layers and each layer renders in its own style, so
// overlapping populations stay tellable apart. Layer 0 is unowned background.
type Canvas struct {
	Width  int
	Height int

	cells  [][]rune
	layers [][]uint8

	x0, y0 float64
	sx, sy float64
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{Width: width, Height: height}
	c.cells = make([][]rune, height)
	c.layers = make([][]uint8, height)
	for i := range c.cells {
		c.cells[i] = make([]rune, width)
		c.layers[i] = make([]uint8, width)
	}
	c.Window(-1, -1, 1, 1)
	c.Clear()
	return c
}

// Window sets the world rectangle the canvas displays. A degenerate span
// falls back to one world unit so the mapping stays finite.
func (c *Canvas) Window(x0, y0, x1, y1 float64) {
	if x1-x0 <= 0 {
		x1 = x0 + 1
	}
	if y1-y0 <= 0 {
		y1 = y0 + 1
	}
	c.x0, c.y0 = x0, y0
	c.sx = float64(c.Width*2-1) / (x1 - x0)
	c.sy = float64(c.Height*4-1) / (y1 - y0)
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = ' '
			c.layers[i][j] = 0
		}
	}
}

// Plot marks a world-coordinate point on the given layer. Points outside the
// window are dropped. World y points up, terminal rows run down.
func (c *Canvas) Plot(x, y float64, layer uint8) {
	px := int(math.Round((x - c.x0) * c.sx))
	py := c.Height*4 - 1 - int(math.Round((y-c.y0)*c.sy))
	c.set(px, py, layer)
}

// Ring draws a world-coordinate circle outline, stepping densely enough that
// neighboring dots connect at sub-pixel scale.
func (c *Canvas) Ring(cx, cy, r float64, layer uint8) {
	if r <= 0 {
		return
	}
	steps := int(2 * math.Pi * r * math.Max(c.sx, c.sy))
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		th := 2 * math.Pi * float64(i) / float64(steps)
		c.Plot(cx+r*math.Cos(th), cy+r*math.Sin(th), layer)
	}
}

func (c *Canvas) set(px, py int, layer uint8) {
	if px < 0 || py < 0 || px >= c.Width*2 || py >= c.Height*4 {
		return
	}
	row, col := py/4, px/2
	if c.cells[row][col] == ' ' {
		c.cells[row][col] = 0x2800
	}
	c.cells[row][col] |= pixelMap[py%4][px%2]
	// Cells shared between layers go to the last writer.
	c.layers[row][col] = layer
}

// String renders the canvas without styling.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

// Styled renders the canvas with each cell colored by its layer's style.
// Runs of one layer render as a single styled span; layer 0 and layers past
// the style slice render plain.
func (c *Canvas) Styled(styles []lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j := 0; j < len(row); {
			layer := c.layers[i][j]
			k := j
			for k < len(row) && c.layers[i][k] == layer {
				k++
			}
			run := string(row[j:k])
			if layer > 0 && int(layer) < len(styles) {
				b.WriteString(styles[layer].Render(run))
			} else {
				b.WriteString(run)
			}
			j = k
		}
	}
	return b.String()
}
