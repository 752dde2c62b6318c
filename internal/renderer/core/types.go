// Package core holds the grid, color and cell types shared by the canvas
// and the renderer.
package core

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Attribute is a set of text rendition flags.
type Attribute uint16

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrStrikethrough
)

// Has reports whether any flag of attr is set.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color is a 24-bit color, a palette index, or the terminal default.
type Color struct {
	R, G, B uint8

	// Indexed colors keep the palette index in R.
	Indexed bool
	Default bool
}

// ColorDefault is the terminal's own foreground or background.
var ColorDefault = Color{Default: true}

// Named 24-bit colors.
var (
	ColorBlack = Color{}
	ColorWhite = Color{R: 255, G: 255, B: 255}
	ColorRed   = Color{R: 255}
	ColorGreen = Color{G: 255}
	ColorBlue  = Color{B: 255}
	ColorGray  = Color{R: 128, G: 128, B: 128}
)

// ColorFromRGB returns a 24-bit color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex returns a palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#RRGGBB" or "#RGB"; the leading '#' is optional.
func ColorFromHex(hex string) (Color, error) {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return ColorFromRGB(r, g, b), nil
}

func (c Color) IsDefault() bool {
	return c.Default
}

// canonical zeroes the fields a color's kind ignores.
func (c Color) canonical() Color {
	switch {
	case c.Default:
		return ColorDefault
	case c.Indexed:
		return Color{R: c.R, Indexed: true}
	}
	return Color{R: c.R, G: c.G, B: c.B}
}

// Equals compares colors, ignoring fields unused by their kind.
func (c Color) Equals(other Color) bool {
	return c.canonical() == other.canonical()
}

// String returns "default", "idx(N)" or "#RRGGBB".
func (c Color) String() string {
	switch {
	case c.Default:
		return "default"
	case c.Indexed:
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend interpolates toward other in Lab space; amount 0 is c and 1 is
// other. Palette and default colors cannot be interpolated and snap to the
// nearer end.
func (c Color) Blend(other Color, amount float64) Color {
	if c.Indexed || other.Indexed || c.Default || other.Default {
		if amount < 0.5 {
			return c
		}
		return other
	}
	if amount <= 0 {
		return c
	}
	if amount >= 1 {
		return other
	}
	r, g, b := c.colorful().BlendLab(other.colorful(), amount).Clamped().RGB255()
	return ColorFromRGB(r, g, b)
}

// Style is a color pair plus attributes.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle uses the terminal's default colors with no attributes.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle returns a style with the given colors.
func NewStyle(fg, bg Color) Style {
	return Style{Foreground: fg, Background: bg}
}

func (s Style) Equals(other Style) bool {
	return s.Attributes == other.Attributes &&
		s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background)
}

func (s Style) IsDefault() bool {
	return s.Equals(DefaultStyle())
}

// Cell is one grid position: a glyph, its column width and its style.
// A wide glyph is followed by a continuation cell of width 0.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell is a blank in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// NewStyledCell returns a cell for r, measuring its width.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// IsContinuation reports whether c is the right half of a wide glyph.
func (c Cell) IsContinuation() bool {
	return c.Rune == 0 && c.Width == 0
}

func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width && c.Style.Equals(other.Style)
}

// RuneWidth returns the number of columns r occupies: 0 for control
// characters, 2 for wide characters, 1 otherwise.
func RuneWidth(r rune) int {
	if r < 0x20 || r == 0x7F {
		return 0
	}
	return min(2, uniseg.StringWidth(string(r)))
}

// Point is a grid coordinate. X grows right and Y grows down; both may be
// negative.
type Point struct {
	X, Y int
}

// Pt returns Point{x, y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect is a half-open region: Top and Left are inside, Bottom and Right
// are not.
type Rect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize returns the rectangle with corner (x, y) and the given size.
func RectFromSize(x, y, width, height int) Rect {
	return Rect{Top: y, Left: x, Bottom: y + height, Right: x + width}
}

func (r Rect) Width() int {
	return max(0, r.Right-r.Left)
}

func (r Rect) Height() int {
	return max(0, r.Bottom-r.Top)
}

func (r Rect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Intersect returns the overlap of r and other, or the zero Rect when
// they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return Rect{}
	}
	return out
}

// Union returns the bounding box of r and other. Empty rectangles are
// ignored.
func (r Rect) Union(other Rect) Rect {
	switch {
	case r.IsEmpty():
		return other
	case other.IsEmpty():
		return r
	}
	return Rect{
		Top:    min(r.Top, other.Top),
		Left:   min(r.Left, other.Left),
		Bottom: max(r.Bottom, other.Bottom),
		Right:  max(r.Right, other.Right),
	}
}

// String returns "[x,y wxh]".
func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.Left, r.Top, r.Width(), r.Height())
}
