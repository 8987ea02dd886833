package viz

import (
	"strings"
	"testing"
)

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Window(0, 0, 1, 1)

	c.Plot(0, 0, 1)
	rows := strings.Split(c.String(), "\n")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if got := []rune(rows[1])[0]; got != 0x2840 {
		t.Errorf("bottom-left cell = %U, want %U", got, rune(0x2840))
	}

	c.Plot(1, 1, 1)
	if top := []rune(strings.Split(c.String(), "\n")[0]); top[3] == ' ' {
		t.Error("top-right cell still blank after plotting the window corner")
	}
}

func TestCanvasClipsOutsideWindow(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Window(-1, -1, 1, 1)
	c.Plot(5, 0, 1)
	c.Plot(0, -3, 2)

	if got := c.String(); strings.ContainsFunc(got, func(r rune) bool { return r != ' ' && r != '\n' }) {
		t.Errorf("canvas not blank: %q", got)
	}
}

func TestCanvasRing(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Window(-2, -2, 2, 2)
	c.Ring(0, 0, 1, 1)

	marked := 0
	for _, r := range c.String() {
		if r != ' ' && r != '\n' {
			marked++
		}
	}
	if marked < 8 {
		t.Errorf("ring marked %d cells, want at least 8", marked)
	}
}

func TestCanvasStyledKeepsContent(t *testing.T) {
	c := NewCanvas(6, 2)
	c.Window(0, 0, 1, 1)
	c.Plot(0.1, 0.5, 2)
	c.Plot(0.9, 0.5, 3)

	styled := c.Styled(layerStyles(2))
	for _, r := range c.String() {
		if r == ' ' || r == '\n' {
			continue
		}
		if !strings.ContainsRune(styled, r) {
			t.Errorf("styled output lost rune %U", r)
		}
	}
}
