package canvas

import (
	"strings"

	"github.com/dshills/termcore/internal/renderer/core"
)

// LineCanvas accumulates line declarations and resolves them into glyphs.
type LineCanvas struct {
	lines      []StraightLine
	exclusions []core.Rect
	bounds     core.Rect
	fill       *FillPair
}

// New creates an empty canvas.
func New() *LineCanvas {
	return &LineCanvas{}
}

// AddLine declares a line. See StraightLine for the meaning of length.
func (c *LineCanvas) AddLine(start core.Point, length int, orientation Orientation, style LineStyle) {
	c.add(StraightLine{
		Start:       start,
		Length:      length,
		Orientation: orientation,
		Style:       style,
	})
}

// AddStyledLine declares a line carrying an explicit attribute.
func (c *LineCanvas) AddStyledLine(start core.Point, length int, orientation Orientation, style LineStyle, attr core.Style) {
	c.add(StraightLine{
		Start:       start,
		Length:      length,
		Orientation: orientation,
		Style:       style,
		Attr:        &attr,
	})
}

func (c *LineCanvas) add(l StraightLine) {
	c.lines = append(c.lines, l)
	c.bounds = c.bounds.Union(l.Bounds())
}

// Lines returns a copy of the declared lines in declaration order.
func (c *LineCanvas) Lines() []StraightLine {
	out := make([]StraightLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// RemoveLastLine removes and returns the most recently declared line.
func (c *LineCanvas) RemoveLastLine() (StraightLine, bool) {
	if len(c.lines) == 0 {
		return StraightLine{}, false
	}
	last := c.lines[len(c.lines)-1]
	c.lines = c.lines[:len(c.lines)-1]
	c.recomputeBounds()
	return last, true
}

// Clear removes all lines and exclusions and resets bounds to empty.
func (c *LineCanvas) Clear() {
	c.lines = nil
	c.exclusions = nil
	c.bounds = core.Rect{}
}

// Bounds returns the smallest rectangle enclosing every declared line.
// It is empty iff no lines are declared.
func (c *LineCanvas) Bounds() core.Rect {
	return c.bounds
}

// Merge adds all of other's lines and exclusions to c.
func (c *LineCanvas) Merge(other *LineCanvas) {
	if other == nil {
		return
	}
	for _, l := range other.lines {
		c.add(l)
	}
	c.exclusions = append(c.exclusions, other.exclusions...)
}

// Exclude hides cells inside r from GetMap and GetCellMap.
// Bounds are unaffected.
func (c *LineCanvas) Exclude(r core.Rect) {
	if r.IsEmpty() {
		return
	}
	c.exclusions = append(c.exclusions, r)
}

// ClearExclusions removes every excluded region.
func (c *LineCanvas) ClearExclusions() {
	c.exclusions = nil
}

// SetFill sets the fill used to color cells in GetCellMap. A configured
// fill takes precedence over per-line attributes. Passing nil removes it.
func (c *LineCanvas) SetFill(fill *FillPair) {
	c.fill = fill
}

// Fill returns the configured fill, or nil.
func (c *LineCanvas) Fill() *FillPair {
	return c.fill
}

// GetMap resolves every occupied cell to a glyph.
func (c *LineCanvas) GetMap() map[core.Point]rune {
	cells := c.collect()
	out := make(map[core.Point]rune, len(cells))
	for p, intersects := range cells {
		if r, ok := resolveRune(intersects); ok {
			out[p] = r
		}
	}
	return out
}

// GetCellMap resolves every occupied cell to a glyph and a style.
//
// The style comes from the fill when one is configured, even if a line at
// the cell carries its own attribute. Without a fill, the first declared
// line with an attribute wins, then the default style.
func (c *LineCanvas) GetCellMap() map[core.Point]core.Cell {
	cells := c.collect()
	out := make(map[core.Point]core.Cell, len(cells))
	for p, intersects := range cells {
		r, ok := resolveRune(intersects)
		if !ok {
			continue
		}
		out[p] = core.NewStyledCell(r, c.styleAt(p, intersects))
	}
	return out
}

func (c *LineCanvas) styleAt(p core.Point, intersects []intersection) core.Style {
	if c.fill != nil {
		return c.fill.Style(p)
	}
	for _, in := range intersects {
		if in.line.Attr != nil {
			return *in.line.Attr
		}
	}
	return core.DefaultStyle()
}

// String renders the canvas as rows of text covering Bounds. Unoccupied
// cells are spaces; rows are exactly Bounds().Width() runes wide.
func (c *LineCanvas) String() string {
	if c.bounds.IsEmpty() {
		return ""
	}
	m := c.GetMap()
	var b strings.Builder
	for y := c.bounds.Top; y < c.bounds.Bottom; y++ {
		if y > c.bounds.Top {
			b.WriteByte('\n')
		}
		for x := c.bounds.Left; x < c.bounds.Right; x++ {
			if r, ok := m[core.Pt(x, y)]; ok {
				b.WriteRune(r)
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// collect rasterizes every visible line into per-cell intersections,
// preserving declaration order within each cell.
func (c *LineCanvas) collect() map[core.Point][]intersection {
	cells := make(map[core.Point][]intersection)
	for i := range c.lines {
		l := &c.lines[i]
		if l.Style == LineNone {
			continue
		}
		for _, p := range l.Cells() {
			if c.excluded(p) {
				continue
			}
			cells[p] = append(cells[p], intersection{dirs: l.directionsAt(p), line: l})
		}
	}
	return cells
}

func (c *LineCanvas) excluded(p core.Point) bool {
	for _, r := range c.exclusions {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

func (c *LineCanvas) recomputeBounds() {
	c.bounds = core.Rect{}
	for _, l := range c.lines {
		c.bounds = c.bounds.Union(l.Bounds())
	}
}
