// Package backend provides the display surface the renderer draws to.
package backend

import (
	"strings"

	"github.com/dshills/termcore/internal/renderer/core"
)

// EventType identifies an event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventInterrupt

	// EventClosed is returned once the backend has shut down.
	EventClosed
)

// Event is a key press, resize or wakeup delivered by a backend.
type Event struct {
	Type EventType

	Key  Key
	Rune rune // set when Key is KeyRune

	Width, Height int // set for EventResize
}

// Key is the subset of keys the command line tools react to.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyCtrlC
	KeyOther
)

// Backend is a cell-addressed display surface with an event queue.
// Coordinates outside the surface are ignored by writes and read back as
// empty cells.
type Backend interface {
	// Init prepares the surface. It must be called first.
	Init() error
	// Shutdown restores the display.
	Shutdown()

	Size() (width, height int)
	SetCell(x, y int, cell core.Cell)
	GetCell(x, y int) core.Cell
	// Fill sets every cell of rect that lies on the surface.
	Fill(rect core.Rect, cell core.Cell)
	Clear()
	// Show makes pending writes visible.
	Show()

	// PollEvent blocks for the next event. Events the backend does not
	// translate are returned as EventNone.
	PollEvent() Event
	PostEvent(event Event)

	HasTrueColor() bool
}

// NullBackend is an in-memory surface for tests and off-screen rendering.
// It is not safe for concurrent drawing.
type NullBackend struct {
	width, height int
	cells         []core.Cell // row-major
	shows         int
	events        chan Event
}

// NewNullBackend creates a width x height surface. Call Init before use.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{width: width, height: height, events: make(chan Event, 64)}
}

func (b *NullBackend) Init() error {
	b.reset()
	return nil
}

func (b *NullBackend) reset() {
	b.cells = make([]core.Cell, b.width*b.height)
	for i := range b.cells {
		b.cells[i] = core.EmptyCell()
	}
}

// index returns the slice index of (x, y), or -1 when off the surface.
func (b *NullBackend) index(x, y int) int {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return -1
	}
	return y*b.width + x
}

func (b *NullBackend) Shutdown() {}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	if i := b.index(x, y); i >= 0 {
		b.cells[i] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	if i := b.index(x, y); i >= 0 {
		return b.cells[i]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.Rect, cell core.Cell) {
	clip := rect.Intersect(core.RectFromSize(0, 0, b.width, b.height))
	for y := clip.Top; y < clip.Bottom; y++ {
		for x := clip.Left; x < clip.Right; x++ {
			b.cells[b.index(x, y)] = cell
		}
	}
}

func (b *NullBackend) Clear() {
	b.reset()
}

func (b *NullBackend) Show() {
	b.shows++
}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

// PostEvent queues event, dropping it when the queue is full.
func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
	}
}

func (b *NullBackend) HasTrueColor() bool { return true }

// ShowCount returns how many times Show was called.
func (b *NullBackend) ShowCount() int {
	return b.shows
}

// Resize changes the surface size, discarding its contents, and queues a
// resize event.
func (b *NullBackend) Resize(width, height int) {
	b.width, b.height = width, height
	b.reset()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}

// String renders the surface as text rows with trailing spaces trimmed.
func (b *NullBackend) String() string {
	rows := make([]string, b.height)
	for y := range rows {
		var sb strings.Builder
		for _, c := range b.cells[y*b.width : (y+1)*b.width] {
			if !c.IsContinuation() {
				sb.WriteRune(c.Rune)
			}
		}
		rows[y] = strings.TrimRight(sb.String(), " ")
	}
	return strings.Join(rows, "\n")
}
