package canvas

import (
	"maps"
	"testing"

	"github.com/dshills/termcore/internal/renderer/core"
)

func addBox(c *LineCanvas, x, y, w, h int, style LineStyle) {
	c.AddLine(core.Pt(x, y), w, Horizontal, style)
	c.AddLine(core.Pt(x, y+h-1), w, Horizontal, style)
	c.AddLine(core.Pt(x, y), h, Vertical, style)
	c.AddLine(core.Pt(x+w-1, y), h, Vertical, style)
}

func TestZeroLengthHorizontal(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 0, Horizontal, LineSingle)

	m := c.GetMap()
	if len(m) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(m))
	}
	if r := m[core.Pt(0, 0)]; r != '─' {
		t.Errorf("expected '─', got %q", r)
	}
}

func TestZeroLengthVertical(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 0, Vertical, LineSingle)

	m := c.GetMap()
	if len(m) != 1 {
		t.Fatalf("expected 1 cell, got %d", len(m))
	}
	if r := m[core.Pt(0, 0)]; r != '│' {
		t.Errorf("expected '│', got %q", r)
	}
}

func TestZeroLengthCrossing(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 0, Horizontal, LineSingle)
	c.AddLine(core.Pt(0, 0), 0, Vertical, LineSingle)

	if r := c.GetMap()[core.Pt(0, 0)]; r != '┼' {
		t.Errorf("expected '┼', got %q", r)
	}
}

func TestMixedStyleTeeJunctions(t *testing.T) {
	tests := []struct {
		name      string
		runOrient Orientation
		runLength int
		runStyle  LineStyle
		stubStyle LineStyle
		want      rune
	}{
		{"right single/single", Horizontal, 1, LineSingle, LineSingle, '├'},
		{"right double/single", Horizontal, 1, LineDouble, LineSingle, '╞'},
		{"right single/double", Horizontal, 1, LineSingle, LineDouble, '╟'},
		{"right double/double", Horizontal, 1, LineDouble, LineDouble, '╠'},
		{"left single/single", Horizontal, -1, LineSingle, LineSingle, '┤'},
		{"left double/single", Horizontal, -1, LineDouble, LineSingle, '╡'},
		{"left single/double", Horizontal, -1, LineSingle, LineDouble, '╢'},
		{"left double/double", Horizontal, -1, LineDouble, LineDouble, '╣'},
		{"down single/single", Vertical, 1, LineSingle, LineSingle, '┬'},
		{"down single/double", Vertical, 1, LineSingle, LineDouble, '╤'},
		{"down double/single", Vertical, 1, LineDouble, LineSingle, '╥'},
		{"down double/double", Vertical, 1, LineDouble, LineDouble, '╦'},
		{"up single/single", Vertical, -1, LineSingle, LineSingle, '┴'},
		{"up single/double", Vertical, -1, LineSingle, LineDouble, '╧'},
		{"up double/single", Vertical, -1, LineDouble, LineSingle, '╨'},
		{"up double/double", Vertical, -1, LineDouble, LineDouble, '╩'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubOrient := Vertical
			if tt.runOrient == Vertical {
				stubOrient = Horizontal
			}

			c := New()
			c.AddLine(core.Pt(0, 0), tt.runLength, tt.runOrient, tt.runStyle)
			c.AddLine(core.Pt(0, 0), 0, stubOrient, tt.stubStyle)

			if r := c.GetMap()[core.Pt(0, 0)]; r != tt.want {
				t.Errorf("expected %q, got %q", tt.want, r)
			}
		})
	}
}

func TestGetMapIdempotent(t *testing.T) {
	c := New()
	addBox(c, 0, 0, 4, 3, LineDouble)
	c.AddLine(core.Pt(1, 0), 3, Vertical, LineSingle)

	first := c.GetMap()
	second := c.GetMap()
	if !maps.Equal(first, second) {
		t.Error("GetMap should return identical results when lines are unchanged")
	}
}

func TestOrderIndependence(t *testing.T) {
	lines := []StraightLine{
		{Start: core.Pt(0, 0), Length: 5, Orientation: Horizontal, Style: LineSingle},
		{Start: core.Pt(0, 4), Length: 5, Orientation: Horizontal, Style: LineSingle},
		{Start: core.Pt(0, 0), Length: 5, Orientation: Vertical, Style: LineSingle},
		{Start: core.Pt(4, 0), Length: 5, Orientation: Vertical, Style: LineSingle},
		{Start: core.Pt(2, 0), Length: 5, Orientation: Vertical, Style: LineDouble},
		{Start: core.Pt(0, 2), Length: 5, Orientation: Horizontal, Style: LineHeavy},
	}

	forward := New()
	for _, l := range lines {
		forward.AddLine(l.Start, l.Length, l.Orientation, l.Style)
	}
	backward := New()
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i]
		backward.AddLine(l.Start, l.Length, l.Orientation, l.Style)
	}

	if !maps.Equal(forward.GetMap(), backward.GetMap()) {
		t.Errorf("expected same map regardless of order\nforward:\n%s\nbackward:\n%s", forward, backward)
	}
}

func TestBoxString(t *testing.T) {
	tests := []struct {
		style LineStyle
		want  string
	}{
		{LineSingle, "┌─┐\n│ │\n└─┘"},
		{LineDouble, "╔═╗\n║ ║\n╚═╝"},
		{LineHeavy, "┏━┓\n┃ ┃\n┗━┛"},
		{LineRounded, "╭─╮\n│ │\n╰─╯"},
		{LineDashed, "┌╌┐\n╎ ╎\n└╌┘"},
	}

	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			c := New()
			addBox(c, 0, 0, 3, 3, tt.style)
			if got := c.String(); got != tt.want {
				t.Errorf("expected\n%s\ngot\n%s", tt.want, got)
			}
		})
	}
}

func TestNegativeLengthBox(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(2, 0), -3, Horizontal, LineSingle)
	c.AddLine(core.Pt(2, 2), -3, Horizontal, LineSingle)
	c.AddLine(core.Pt(0, 2), -3, Vertical, LineSingle)
	c.AddLine(core.Pt(2, 2), -3, Vertical, LineSingle)

	want := "┌─┐\n│ │\n└─┘"
	if got := c.String(); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestCrossString(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 1), 3, Horizontal, LineSingle)
	c.AddLine(core.Pt(1, 0), 3, Vertical, LineSingle)

	want := " │ \n─┼─\n │ "
	if got := c.String(); got != want {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestJunctionWeights(t *testing.T) {
	tests := []struct {
		name   string
		hStyle LineStyle
		vStyle LineStyle
		want   rune
	}{
		{"single", LineSingle, LineSingle, '┼'},
		{"double", LineDouble, LineDouble, '╬'},
		{"heavy", LineHeavy, LineHeavy, '╋'},
		{"heavy horizontal", LineHeavy, LineSingle, '┿'},
		{"heavy vertical", LineSingle, LineHeavy, '╂'},
		{"double horizontal heavy vertical", LineDouble, LineHeavy, '╪'},
		{"heavy horizontal double vertical", LineHeavy, LineDouble, '╫'},
		{"dashed is light", LineDashed, LineDotted, '┼'},
		{"heavy dashed is heavy", LineHeavyDashed, LineHeavyDotted, '╋'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.AddLine(core.Pt(0, 1), 3, Horizontal, tt.hStyle)
			c.AddLine(core.Pt(1, 0), 3, Vertical, tt.vStyle)
			if r := c.GetMap()[core.Pt(1, 1)]; r != tt.want {
				t.Errorf("expected %q, got %q", tt.want, r)
			}
		})
	}
}

func TestRoundedPrecedence(t *testing.T) {
	t.Run("mixed corner is not rounded", func(t *testing.T) {
		c := New()
		c.AddLine(core.Pt(0, 0), 3, Horizontal, LineRounded)
		c.AddLine(core.Pt(0, 0), 3, Vertical, LineSingle)
		if r := c.GetMap()[core.Pt(0, 0)]; r != '┌' {
			t.Errorf("expected '┌', got %q", r)
		}
	})

	t.Run("mixed corner ignores declaration order", func(t *testing.T) {
		c := New()
		c.AddLine(core.Pt(0, 0), 3, Vertical, LineSingle)
		c.AddLine(core.Pt(0, 0), 3, Horizontal, LineRounded)
		if r := c.GetMap()[core.Pt(0, 0)]; r != '┌' {
			t.Errorf("expected '┌', got %q", r)
		}
	})

	t.Run("tee is never rounded", func(t *testing.T) {
		c := New()
		c.AddLine(core.Pt(0, 0), 3, Horizontal, LineRounded)
		c.AddLine(core.Pt(1, 0), 2, Vertical, LineRounded)
		if r := c.GetMap()[core.Pt(1, 0)]; r != '┬' {
			t.Errorf("expected '┬', got %q", r)
		}
	})

	t.Run("cross is never rounded", func(t *testing.T) {
		c := New()
		c.AddLine(core.Pt(0, 0), 0, Horizontal, LineRounded)
		c.AddLine(core.Pt(0, 0), 0, Vertical, LineRounded)
		if r := c.GetMap()[core.Pt(0, 0)]; r != '┼' {
			t.Errorf("expected '┼', got %q", r)
		}
	})

	t.Run("single cell corner", func(t *testing.T) {
		c := New()
		c.AddLine(core.Pt(0, 0), 1, Horizontal, LineRounded)
		c.AddLine(core.Pt(0, 0), 1, Vertical, LineRounded)
		if r := c.GetMap()[core.Pt(0, 0)]; r != '╭' {
			t.Errorf("expected '╭', got %q", r)
		}
	})
}

func TestBarStyleFirstDeclaredWins(t *testing.T) {
	tests := []struct {
		name   string
		styles []LineStyle
		want   string
	}{
		{"double first", []LineStyle{LineDouble, LineSingle}, "═══"},
		{"single first", []LineStyle{LineSingle, LineDouble}, "───"},
		{"rounded skipped", []LineStyle{LineRounded, LineDashed}, "╌╌╌"},
		{"all rounded", []LineStyle{LineRounded, LineRounded}, "───"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for _, s := range tt.styles {
				c.AddLine(core.Pt(0, 0), 3, Horizontal, s)
			}
			if got := c.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestVerticalDotted(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 2, Vertical, LineDotted)
	if got := c.String(); got != "┆\n┆" {
		t.Errorf("expected dotted bar, got %q", got)
	}
}

func TestBounds(t *testing.T) {
	c := New()
	if !c.Bounds().IsEmpty() {
		t.Fatal("new canvas should have empty bounds")
	}

	c.AddLine(core.Pt(0, 0), 0, Horizontal, LineSingle)
	if got := c.Bounds(); got != core.RectFromSize(0, 0, 1, 1) {
		t.Errorf("expected 1x1 at origin, got %v", got)
	}

	c.AddLine(core.Pt(5, 5), -3, Horizontal, LineSingle)
	if got := c.Bounds(); got != core.RectFromSize(0, 0, 6, 6) {
		t.Errorf("expected [0,0 6x6], got %v", got)
	}

	c.AddLine(core.Pt(2, 2), -4, Vertical, LineSingle)
	want := core.Rect{Top: -1, Left: 0, Bottom: 6, Right: 6}
	if got := c.Bounds(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	c.Clear()
	if !c.Bounds().IsEmpty() {
		t.Errorf("expected empty bounds after Clear, got %v", c.Bounds())
	}
	if len(c.GetMap()) != 0 {
		t.Error("expected empty map after Clear")
	}
}

func TestNoneStyleOccupiesBoundsOnly(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 3, Horizontal, LineNone)

	if c.Bounds().Width() != 3 {
		t.Errorf("expected width 3, got %d", c.Bounds().Width())
	}
	if len(c.GetMap()) != 0 {
		t.Errorf("expected no glyphs, got %v", c.GetMap())
	}
	if got := c.String(); got != "   " {
		t.Errorf("expected blank row, got %q", got)
	}
}

func TestFarCoordinates(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(-100000, 250000), 2, Horizontal, LineSingle)

	m := c.GetMap()
	if m[core.Pt(-100000, 250000)] != '─' || m[core.Pt(-99999, 250000)] != '─' {
		t.Errorf("unexpected map %v", m)
	}
}

func TestRemoveLastLine(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 2, Horizontal, LineSingle)
	c.AddLine(core.Pt(0, 0), 5, Vertical, LineSingle)

	l, ok := c.RemoveLastLine()
	if !ok {
		t.Fatal("expected a line to be removed")
	}
	if l.Orientation != Vertical || l.Length != 5 {
		t.Errorf("removed wrong line: %v", l)
	}
	if got := c.Bounds(); got != core.RectFromSize(0, 0, 2, 1) {
		t.Errorf("expected bounds to shrink, got %v", got)
	}

	c.RemoveLastLine()
	if _, ok := c.RemoveLastLine(); ok {
		t.Error("expected false on empty canvas")
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	c.AddLine(core.Pt(0, 0), 2, Horizontal, LineSingle)

	lines := c.Lines()
	lines[0].Style = LineDouble
	if c.Lines()[0].Style != LineSingle {
		t.Error("Lines should return a copy")
	}
}

func TestMerge(t *testing.T) {
	top := New()
	top.AddLine(core.Pt(0, 0), 3, Horizontal, LineSingle)
	left := New()
	left.AddLine(core.Pt(0, 0), 3, Vertical, LineSingle)
	left.Exclude(core.RectFromSize(0, 2, 1, 1))

	top.Merge(left)

	m := top.GetMap()
	if m[core.Pt(0, 0)] != '┌' {
		t.Errorf("expected '┌' after merge, got %q", m[core.Pt(0, 0)])
	}
	if _, ok := m[core.Pt(0, 2)]; ok {
		t.Error("merged exclusion should hide (0,2)")
	}
	if got := top.Bounds(); got != core.RectFromSize(0, 0, 3, 3) {
		t.Errorf("expected merged bounds, got %v", got)
	}
}

func TestExclude(t *testing.T) {
	c := New()
	addBox(c, 0, 0, 3, 3, LineSingle)
	c.Exclude(core.RectFromSize(1, 0, 1, 1))

	want := "┌ ┐\n│ │\n└─┘"
	if got := c.String(); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
	if got := c.Bounds(); got != core.RectFromSize(0, 0, 3, 3) {
		t.Errorf("exclusions should not change bounds, got %v", got)
	}

	c.ClearExclusions()
	if c.GetMap()[core.Pt(1, 0)] != '─' {
		t.Error("expected cell to return after ClearExclusions")
	}
}

func TestGetCellMapLineAttribute(t *testing.T) {
	red := core.NewStyle(core.ColorRed, core.ColorBlack)

	c := New()
	c.AddLine(core.Pt(0, 0), 3, Horizontal, LineSingle)
	c.AddStyledLine(core.Pt(0, 0), 3, Vertical, LineSingle, red)

	cells := c.GetCellMap()
	if cell := cells[core.Pt(0, 0)]; cell.Rune != '┌' || !cell.Style.Equals(red) {
		t.Errorf("expected red '┌', got %q %v", cell.Rune, cell.Style)
	}
	if cell := cells[core.Pt(2, 0)]; !cell.Style.IsDefault() {
		t.Errorf("expected default style for unstyled line, got %v", cell.Style)
	}
	if cell := cells[core.Pt(0, 2)]; !cell.Style.Equals(red) {
		t.Errorf("expected red on vertical line, got %v", cell.Style)
	}
}

func TestGetCellMapFillOverridesLineAttribute(t *testing.T) {
	red := core.NewStyle(core.ColorRed, core.ColorBlack)

	c := New()
	c.AddStyledLine(core.Pt(0, 0), 3, Horizontal, LineSingle, red)
	c.SetFill(NewFillPair(SolidFill{C: core.ColorBlue}, SolidFill{C: core.ColorWhite}))

	want := core.NewStyle(core.ColorBlue, core.ColorWhite)
	for p, cell := range c.GetCellMap() {
		if !cell.Style.Equals(want) {
			t.Errorf("cell %v: fill should win over line attribute, got %v", p, cell.Style)
		}
	}

	c.SetFill(nil)
	if c.Fill() != nil {
		t.Error("expected no fill after SetFill(nil)")
	}
	if cell := c.GetCellMap()[core.Pt(1, 0)]; !cell.Style.Equals(red) {
		t.Errorf("expected line attribute once fill removed, got %v", cell.Style)
	}
}

func TestGetCellMapMatchesGetMap(t *testing.T) {
	c := New()
	addBox(c, 0, 0, 4, 4, LineHeavy)
	c.AddLine(core.Pt(0, 2), 4, Horizontal, LineSingle)

	runes := c.GetMap()
	cells := c.GetCellMap()
	if len(runes) != len(cells) {
		t.Fatalf("expected %d cells, got %d", len(runes), len(cells))
	}
	for p, r := range runes {
		if cells[p].Rune != r {
			t.Errorf("cell %v: expected %q, got %q", p, r, cells[p].Rune)
		}
		if cells[p].Width != 1 {
			t.Errorf("cell %v: expected width 1, got %d", p, cells[p].Width)
		}
	}
}
