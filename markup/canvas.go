package markup

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// canvas is a grid of terminal cells. Every slot holds one grapheme
// cluster; a cluster wider than one cell is followed by empty slots.
type canvas struct {
	slots [][]string
	width int
}

func newCanvas(height, width int) *canvas {
	c := &canvas{slots: make([][]string, height), width: width}
	for r := range c.slots {
		c.slots[r] = make([]string, width)
		for i := range c.slots[r] {
			c.slots[r][i] = " "
		}
	}
	return c
}

// canvasFromLines lays out lines cell by cell, padding short lines with
// spaces
func canvasFromLines(lines []string) *canvas {
	rows := make([][]string, len(lines))
	width := 0
	for i, line := range lines {
		rows[i] = layoutLine(line)
		width = max(width, len(rows[i]))
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], " ")
		}
	}
	return &canvas{slots: rows, width: width}
}

func layoutLine(line string) []string {
	var out []string
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		cluster := g.Str()
		out = append(out, cluster)
		for i := 1; i < clusterWidth(cluster); i++ {
			out = append(out, "")
		}
	}
	return out
}

// clusterWidth is the number of terminal cells a grapheme cluster takes
func clusterWidth(cluster string) int {
	if cluster == "\t" {
		return 1
	}
	w := runewidth.StringWidth(cluster)
	if w == 0 {
		w = uniseg.StringWidth(cluster)
	}
	return max(w, 1)
}

// displayWidth returns the number of terminal cells s takes
func displayWidth(s string) int {
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w += clusterWidth(g.Str())
	}
	return w
}

func (c *canvas) height() int { return len(c.slots) }

// at returns the cluster at (row, col), "" for a wide cluster's tail and
// for slots outside the canvas
func (c *canvas) at(row, col int) string {
	if row < 0 || row >= len(c.slots) || col < 0 || col >= c.width {
		return ""
	}
	return c.slots[row][col]
}

func (c *canvas) set(row, col int, s string) {
	if row < 0 || row >= len(c.slots) || col < 0 || col >= c.width {
		return
	}
	c.slots[row][col] = s
}

// write places s starting at (row, col)
func (c *canvas) write(row, col int, s string) {
	for _, slot := range layoutLine(s) {
		c.set(row, col, slot)
		col++
	}
}

// region returns the text inside the rectangle with corners (top, left)
// and (bottom, right), borders excluded
func (c *canvas) region(top, left, bottom, right int) []string {
	var lines []string
	for r := top + 1; r < bottom; r++ {
		var sb strings.Builder
		for col := left + 1; col < right; col++ {
			sb.WriteString(c.at(r, col))
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func (c *canvas) String() string {
	var sb strings.Builder
	for i, row := range c.slots {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row, ""))
	}
	return sb.String()
}
