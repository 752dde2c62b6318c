package canvas

import (
	"fmt"
	"strings"

	"github.com/dshills/termcore/internal/renderer/core"
)

// Orientation is the axis a line runs along.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// ParseOrientation parses "horizontal"/"h" or "vertical"/"v".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation %q", s)
}

// LineStyle selects the glyph family a line is drawn with.
type LineStyle int

const (
	LineNone LineStyle = iota
	LineSingle
	LineDouble
	LineHeavy
	LineRounded
	LineDashed
	LineDotted
	LineHeavyDashed
	LineHeavyDotted
)

var lineStyleNames = [...]string{
	LineNone:        "none",
	LineSingle:      "single",
	LineDouble:      "double",
	LineHeavy:       "heavy",
	LineRounded:     "rounded",
	LineDashed:      "dashed",
	LineDotted:      "dotted",
	LineHeavyDashed: "heavy-dashed",
	LineHeavyDotted: "heavy-dotted",
}

// String returns the style name.
func (s LineStyle) String() string {
	if s < 0 || int(s) >= len(lineStyleNames) {
		return "unknown"
	}
	return lineStyleNames[s]
}

// ParseLineStyle parses a style name as produced by LineStyle.String.
func ParseLineStyle(s string) (LineStyle, error) {
	name := strings.ReplaceAll(strings.ToLower(s), "_", "-")
	for i, n := range lineStyleNames {
		if n == name {
			return LineStyle(i), nil
		}
	}
	return LineNone, fmt.Errorf("unknown line style %q", s)
}

// isHeavy reports whether the style belongs to the heavy family.
func (s LineStyle) isHeavy() bool {
	return s == LineHeavy || s == LineHeavyDashed || s == LineHeavyDotted
}

// StraightLine is a declared segment.
//
// Length 0 marks a single cell that the line passes through in both
// directions of its axis; this forces junctions without drawing a visible
// run. Positive lengths extend right/down from Start, negative lengths
// extend left/up, so Start is always one end of the line.
type StraightLine struct {
	Start       core.Point
	Length      int
	Orientation Orientation
	Style       LineStyle

	// Attr, when non-nil, colors the cells this line touches unless the
	// canvas has a fill configured.
	Attr *core.Style
}

// span returns the inclusive range of the line along its axis.
func (l StraightLine) span() (lo, hi int) {
	s := l.Start.X
	if l.Orientation == Vertical {
		s = l.Start.Y
	}
	switch {
	case l.Length > 0:
		return s, s + l.Length - 1
	case l.Length < 0:
		return s + l.Length + 1, s
	default:
		return s, s
	}
}

// end returns the axis coordinate of the far end of the line.
func (l StraightLine) end() int {
	lo, hi := l.span()
	if l.Length < 0 {
		return lo
	}
	return hi
}

// Bounds returns the rectangle of cells the line occupies.
func (l StraightLine) Bounds() core.Rect {
	lo, hi := l.span()
	if l.Orientation == Vertical {
		return core.RectFromSize(l.Start.X, lo, 1, hi-lo+1)
	}
	return core.RectFromSize(lo, l.Start.Y, hi-lo+1, 1)
}

// Cells returns the occupied cells in axis order.
func (l StraightLine) Cells() []core.Point {
	lo, hi := l.span()
	cells := make([]core.Point, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if l.Orientation == Vertical {
			cells = append(cells, core.Pt(l.Start.X, i))
		} else {
			cells = append(cells, core.Pt(i, l.Start.Y))
		}
	}
	return cells
}

// directionsAt returns the directions the line extends from p, or 0 when
// the line does not occupy p.
func (l StraightLine) directionsAt(p core.Point) direction {
	var pos, cross, fixed int
	var back, fwd direction
	if l.Orientation == Vertical {
		pos, cross, fixed = p.Y, p.X, l.Start.X
		back, fwd = dirUp, dirDown
	} else {
		pos, cross, fixed = p.X, p.Y, l.Start.Y
		back, fwd = dirLeft, dirRight
	}
	if cross != fixed {
		return 0
	}
	lo, hi := l.span()
	if pos < lo || pos > hi {
		return 0
	}

	start := l.Start.X
	if l.Orientation == Vertical {
		start = l.Start.Y
	}
	switch {
	case l.Length == 0:
		return back | fwd
	case pos == start && l.Length > 0:
		return fwd
	case pos == start:
		return back
	case pos == l.end() && l.Length > 0:
		return back
	case pos == l.end():
		return fwd
	default:
		return back | fwd
	}
}

// String describes the line for diagnostics.
func (l StraightLine) String() string {
	return fmt.Sprintf("%s %s %s len=%d", l.Start, l.Orientation, l.Style, l.Length)
}
