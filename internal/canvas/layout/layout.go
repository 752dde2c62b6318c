// Package layout loads declarative line layouts and applies them to a
// LineCanvas.
//
// A layout is a TOML or YAML document:
//
//	[[lines]]
//	x = 0
//	y = 0
//	length = 20
//	orientation = "horizontal"
//	style = "double"
//	fg = "#ffcc00"
//
//	[[exclude]]
//	x = 2
//	y = 0
//	width = 7
//	height = 1
//
//	[fill]
//	orientation = "horizontal"
//	fg = ["#ff0000", "#0000ff"]
//
// The format is chosen by file extension.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/termcore/internal/canvas"
	"github.com/dshills/termcore/internal/renderer/core"
)

// ErrUnsupportedFormat is returned for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported layout format")

// Format identifies the layout encoding.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return FormatTOML, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// LineSpec is one declared line.
type LineSpec struct {
	X           int    `toml:"x" yaml:"x"`
	Y           int    `toml:"y" yaml:"y"`
	Length      int    `toml:"length" yaml:"length"`
	Orientation string `toml:"orientation" yaml:"orientation"`
	Style       string `toml:"style" yaml:"style"`
	Fg          string `toml:"fg" yaml:"fg"`
	Bg          string `toml:"bg" yaml:"bg"`
}

// RectSpec is an excluded region.
type RectSpec struct {
	X      int `toml:"x" yaml:"x"`
	Y      int `toml:"y" yaml:"y"`
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// FillSpec configures a canvas fill. Each side is a list of gradient stops;
// one stop is a solid color, an empty list leaves the default color.
type FillSpec struct {
	Orientation string   `toml:"orientation" yaml:"orientation"`
	Fg          []string `toml:"fg" yaml:"fg"`
	Bg          []string `toml:"bg" yaml:"bg"`
}

// Layout is a parsed layout document.
type Layout struct {
	Lines   []LineSpec `toml:"lines" yaml:"lines"`
	Exclude []RectSpec `toml:"exclude" yaml:"exclude"`
	Fill    *FillSpec  `toml:"fill" yaml:"fill"`

	// DefaultStyle is used for lines that do not name a style.
	DefaultStyle canvas.LineStyle `toml:"-" yaml:"-"`
}

// ParseError represents an error while parsing or validating a layout.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("layout %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads and parses the layout at path.
func Load(path string) (*Layout, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", path, err)
	}
	return Parse(path, data, format)
}

// Parse decodes layout data. source is used in error messages.
func Parse(source string, data []byte, format Format) (*Layout, error) {
	l := &Layout{DefaultStyle: canvas.LineSingle}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, l)
	default:
		err = toml.Unmarshal(data, l)
	}
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}

	if err := l.validate(source); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Layout) validate(source string) error {
	for i, ls := range l.Lines {
		if _, _, err := ls.resolve(canvas.LineSingle); err != nil {
			return &ParseError{Path: source, Message: fmt.Sprintf("line %d: %v", i, err), Err: err}
		}
	}
	if l.Fill != nil {
		if _, err := l.Fill.resolve(); err != nil {
			return &ParseError{Path: source, Message: fmt.Sprintf("fill: %v", err), Err: err}
		}
	}
	return nil
}

// Apply declares the layout's lines, exclusions and fill on c.
func (l *Layout) Apply(c *canvas.LineCanvas) {
	for _, ls := range l.Lines {
		line, attr, err := ls.resolve(l.DefaultStyle)
		if err != nil {
			continue
		}
		if attr != nil {
			c.AddStyledLine(line.Start, line.Length, line.Orientation, line.Style, *attr)
		} else {
			c.AddLine(line.Start, line.Length, line.Orientation, line.Style)
		}
	}
	for _, r := range l.Exclude {
		c.Exclude(core.RectFromSize(r.X, r.Y, r.Width, r.Height))
	}
	if l.Fill != nil {
		if fill, err := l.Fill.resolve(); err == nil {
			fill.bind(c.Bounds())
			c.SetFill(fill.pair)
		}
	}
}

func (ls LineSpec) resolve(defaultStyle canvas.LineStyle) (canvas.StraightLine, *core.Style, error) {
	line := canvas.StraightLine{
		Start:  core.Pt(ls.X, ls.Y),
		Length: ls.Length,
		Style:  defaultStyle,
	}

	orientation, err := canvas.ParseOrientation(ls.Orientation)
	if err != nil {
		return line, nil, err
	}
	line.Orientation = orientation

	if ls.Style != "" {
		style, err := canvas.ParseLineStyle(ls.Style)
		if err != nil {
			return line, nil, err
		}
		line.Style = style
	}

	if ls.Fg == "" && ls.Bg == "" {
		return line, nil, nil
	}
	attr := core.DefaultStyle()
	if ls.Fg != "" {
		if attr.Foreground, err = core.ColorFromHex(ls.Fg); err != nil {
			return line, nil, err
		}
	}
	if ls.Bg != "" {
		if attr.Background, err = core.ColorFromHex(ls.Bg); err != nil {
			return line, nil, err
		}
	}
	return line, &attr, nil
}

// resolvedFill holds a fill whose gradient spans are bound to canvas bounds.
type resolvedFill struct {
	pair      *canvas.FillPair
	gradients []*canvas.GradientFill
}

func (fs *FillSpec) resolve() (*resolvedFill, error) {
	orientation := canvas.Horizontal
	if fs.Orientation != "" {
		o, err := canvas.ParseOrientation(fs.Orientation)
		if err != nil {
			return nil, err
		}
		orientation = o
	}

	rf := &resolvedFill{pair: &canvas.FillPair{}}
	side := func(stops []string) (canvas.Fill, error) {
		switch len(stops) {
		case 0:
			return nil, nil
		case 1:
			c, err := core.ColorFromHex(stops[0])
			if err != nil {
				return nil, err
			}
			return canvas.SolidFill{C: c}, nil
		}
		colors := make([]core.Color, 0, len(stops))
		for _, s := range stops {
			c, err := core.ColorFromHex(s)
			if err != nil {
				return nil, err
			}
			colors = append(colors, c)
		}
		g := canvas.NewGradientFill(core.Rect{}, orientation, colors...)
		rf.gradients = append(rf.gradients, g)
		return g, nil
	}

	var err error
	if rf.pair.Foreground, err = side(fs.Fg); err != nil {
		return nil, err
	}
	if rf.pair.Background, err = side(fs.Bg); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *resolvedFill) bind(span core.Rect) {
	for _, g := range rf.gradients {
		g.Span = span
	}
}
