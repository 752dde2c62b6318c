// Package canvas resolves declared line segments into box-drawing glyphs.
//
// A LineCanvas accumulates StraightLine declarations (start point, signed
// length, orientation, style) and produces a sparse map from grid
// coordinate to glyph. Where lines meet, the glyph is chosen from the set of
// directions the lines extend from that cell and the weight of each axis:
//
//	c := canvas.New()
//	c.AddLine(core.Pt(0, 0), 5, canvas.Horizontal, canvas.LineSingle)
//	c.AddLine(core.Pt(0, 0), 3, canvas.Vertical, canvas.LineSingle)
//	c.AddLine(core.Pt(2, 0), 3, canvas.Vertical, canvas.LineDouble)
//	fmt.Println(c)
//
//	┌─╥──
//	│ ║
//	│ ║
//
// Resolution is a pure function of the lines present at a cell. The only
// order-dependent choices are the style of a plain bar when several
// non-rounded styles overlap (the first declared wins) and which line's
// explicit attribute colors a cell.
//
// A LineCanvas performs no I/O and has no size limit; callers clip the
// resulting map to a viewport before rendering. It is not safe for
// concurrent use.
package canvas
