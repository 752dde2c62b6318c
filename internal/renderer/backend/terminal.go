package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/termcore/internal/renderer/core"
)

// Terminal implements Backend on a tcell screen.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal creates a terminal backend on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a tcell
// simulation screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// locked runs fn with exclusive access to the screen.
func (t *Terminal) locked(fn func(s tcell.Screen)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.screen)
}

func (t *Terminal) Init() error {
	var err error
	t.locked(func(s tcell.Screen) { err = s.Init() })
	return err
}

func (t *Terminal) Shutdown() {
	t.locked(func(s tcell.Screen) { s.Fini() })
}

func (t *Terminal) Size() (width, height int) {
	t.locked(func(s tcell.Screen) { width, height = s.Size() })
	return width, height
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	style := toTcellStyle(cell.Style)
	t.locked(func(s tcell.Screen) { s.SetContent(x, y, cell.Rune, nil, style) })
}

func (t *Terminal) GetCell(x, y int) core.Cell {
	var r rune
	var style tcell.Style
	t.locked(func(s tcell.Screen) { r, _, style, _ = s.GetContent(x, y) })
	return core.Cell{Rune: r, Width: core.RuneWidth(r), Style: fromTcellStyle(style)}
}

// Fill sets every on-screen cell of rect to cell.
func (t *Terminal) Fill(rect core.Rect, cell core.Cell) {
	style := toTcellStyle(cell.Style)
	t.locked(func(s tcell.Screen) {
		w, h := s.Size()
		clip := rect.Intersect(core.RectFromSize(0, 0, w, h))
		for y := clip.Top; y < clip.Bottom; y++ {
			for x := clip.Left; x < clip.Right; x++ {
				s.SetContent(x, y, cell.Rune, nil, style)
			}
		}
	})
}

func (t *Terminal) Clear() {
	t.locked(func(s tcell.Screen) { s.Clear() })
}

func (t *Terminal) Show() {
	t.locked(func(s tcell.Screen) { s.Show() })
}

// PollEvent blocks for the next screen event. It does not hold the lock
// so that drawing can continue while waiting.
func (t *Terminal) PollEvent() Event {
	return fromTcellEvent(t.screen.PollEvent())
}

// PostEvent queues a key or interrupt event. Other event types are
// ignored, as is a full queue.
func (t *Terminal) PostEvent(event Event) {
	var ev tcell.Event
	switch event.Type {
	case EventKey:
		ev = tcell.NewEventKey(toTcellKey(event.Key), event.Rune, tcell.ModNone)
	case EventInterrupt:
		ev = tcell.NewEventInterrupt(nil)
	default:
		return
	}
	_ = t.screen.PostEvent(ev)
}

func (t *Terminal) HasTrueColor() bool {
	var colors int
	t.locked(func(s tcell.Screen) { colors = s.Colors() })
	return colors > 256
}

// attrTable pairs cell attributes with tcell attribute bits. Underline is
// handled separately because tcell tracks an underline style with it.
var attrTable = []struct {
	attr core.Attribute
	mask tcell.AttrMask
}{
	{core.AttrBold, tcell.AttrBold},
	{core.AttrDim, tcell.AttrDim},
	{core.AttrItalic, tcell.AttrItalic},
	{core.AttrBlink, tcell.AttrBlink},
	{core.AttrReverse, tcell.AttrReverse},
	{core.AttrStrikethrough, tcell.AttrStrikeThrough},
}

func toTcellStyle(s core.Style) tcell.Style {
	var mask tcell.AttrMask
	for _, a := range attrTable {
		if s.Attributes.Has(a.attr) {
			mask |= a.mask
		}
	}
	style := tcell.StyleDefault.
		Foreground(toTcellColor(s.Foreground)).
		Background(toTcellColor(s.Background)).
		Attributes(mask)
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	return style
}

func fromTcellStyle(ts tcell.Style) core.Style {
	fg, bg, mask := ts.Decompose()
	attrs := core.AttrNone
	for _, a := range attrTable {
		if mask&a.mask != 0 {
			attrs |= a.attr
		}
	}
	if mask&tcell.AttrUnderline != 0 {
		attrs |= core.AttrUnderline
	}
	return core.Style{
		Foreground: fromTcellColor(fg),
		Background: fromTcellColor(bg),
		Attributes: attrs,
	}
}

func toTcellColor(c core.Color) tcell.Color {
	if c.IsDefault() {
		return tcell.ColorDefault
	}
	if c.Indexed {
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// fromTcellColor maps a tcell color back. Palette colors carry only the
// valid bit on top of their index.
func fromTcellColor(tc tcell.Color) core.Color {
	switch {
	case tc == tcell.ColorDefault:
		return core.ColorDefault
	case tc&tcell.ColorIsRGB == 0:
		return core.ColorFromIndex(uint8(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}

func fromTcellEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case nil:
		return Event{Type: EventClosed}
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: fromTcellKey(e.Key()), Rune: e.Rune()}
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}
	}
	return Event{Type: EventNone}
}

var keyTable = map[tcell.Key]Key{
	tcell.KeyRune:   KeyRune,
	tcell.KeyEscape: KeyEscape,
	tcell.KeyEnter:  KeyEnter,
	tcell.KeyCtrlC:  KeyCtrlC,
}

func fromTcellKey(k tcell.Key) Key {
	if key, ok := keyTable[k]; ok {
		return key
	}
	return KeyOther
}

func toTcellKey(k Key) tcell.Key {
	for tk, key := range keyTable {
		if key == k {
			return tk
		}
	}
	return tcell.KeyRune
}
