package canvas

import "github.com/dshills/termcore/internal/renderer/core"

// Fill yields a color for a grid position.
type Fill interface {
	Color(p core.Point) core.Color
}

// SolidFill colors every position the same.
type SolidFill struct {
	C core.Color
}

// Color implements Fill.
func (f SolidFill) Color(core.Point) core.Color {
	return f.C
}

// GradientFill interpolates evenly spaced color stops across Span along
// Orientation. Positions before or after the span take the end colors.
type GradientFill struct {
	Span        core.Rect
	Orientation Orientation
	Stops       []core.Color
}

// NewGradientFill creates a gradient across span.
func NewGradientFill(span core.Rect, orientation Orientation, stops ...core.Color) *GradientFill {
	return &GradientFill{Span: span, Orientation: orientation, Stops: stops}
}

// Color implements Fill.
func (g *GradientFill) Color(p core.Point) core.Color {
	switch len(g.Stops) {
	case 0:
		return core.ColorDefault
	case 1:
		return g.Stops[0]
	}

	pos, length := p.X-g.Span.Left, g.Span.Width()
	if g.Orientation == Vertical {
		pos, length = p.Y-g.Span.Top, g.Span.Height()
	}
	if length <= 1 || pos <= 0 {
		return g.Stops[0]
	}
	if pos >= length-1 {
		return g.Stops[len(g.Stops)-1]
	}

	// Position along the whole gradient, in units of segments.
	segments := len(g.Stops) - 1
	t := float64(pos) / float64(length-1) * float64(segments)
	i := int(t)
	return g.Stops[i].Blend(g.Stops[i+1], t-float64(i))
}

// FillPair combines foreground and background fills into a style.
// A nil side leaves that color at the terminal default.
type FillPair struct {
	Foreground Fill
	Background Fill
}

// NewFillPair creates a fill pair.
func NewFillPair(fg, bg Fill) *FillPair {
	return &FillPair{Foreground: fg, Background: bg}
}

// Style returns the color pair at p.
func (f *FillPair) Style(p core.Point) core.Style {
	s := core.DefaultStyle()
	if f.Foreground != nil {
		s.Foreground = f.Foreground.Color(p)
	}
	if f.Background != nil {
		s.Background = f.Background.Color(p)
	}
	return s
}
