package backend

import (
	"testing"

	"github.com/dshills/termcore/internal/renderer/core"
)

func TestNullBackendInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
}

func TestNullBackendSetGetCell(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	cell := core.NewStyledCell('X', core.NewStyle(core.ColorRed, core.ColorDefault))
	b.SetCell(10, 5, cell)

	got := b.GetCell(10, 5)
	if !got.Equals(cell) {
		t.Errorf("cell mismatch: expected %+v, got %+v", cell, got)
	}

	// Out of bounds should be ignored/return empty
	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)

	empty := b.GetCell(-1, 0)
	if !empty.Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestNullBackendFill(t *testing.T) {
	b := NewNullBackend(20, 10)
	b.Init()

	cell := core.NewStyledCell('.', core.DefaultStyle())
	b.Fill(core.Rect{Top: -2, Left: 15, Bottom: 3, Right: 40}, cell)

	if got := b.GetCell(19, 0); !got.Equals(cell) {
		t.Error("cell inside clipped rect should be filled")
	}
	if got := b.GetCell(14, 0); got.Equals(cell) {
		t.Error("cell left of rect should not be filled")
	}
	if got := b.GetCell(15, 3); got.Equals(cell) {
		t.Error("cell below rect should not be filled")
	}

	b.Clear()
	if got := b.GetCell(19, 0); !got.Equals(core.EmptyCell()) {
		t.Error("expected Clear to reset cells")
	}
}

func TestNullBackendString(t *testing.T) {
	b := NewNullBackend(4, 2)
	b.Init()
	b.SetCell(0, 0, core.NewStyledCell('┌', core.DefaultStyle()))
	b.SetCell(1, 0, core.NewStyledCell('─', core.DefaultStyle()))
	b.SetCell(1, 1, core.NewStyledCell('x', core.DefaultStyle()))

	want := "┌─\n x"
	if got := b.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(10, 10)
	b.Init()

	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: 'q'})
	ev := b.PollEvent()
	if ev.Type != EventKey || ev.Rune != 'q' {
		t.Errorf("expected key q, got %+v", ev)
	}

	b.Resize(30, 5)
	ev = b.PollEvent()
	if ev.Type != EventResize || ev.Width != 30 || ev.Height != 5 {
		t.Errorf("expected resize 30x5, got %+v", ev)
	}
	if w, h := b.Size(); w != 30 || h != 5 {
		t.Errorf("expected size 30x5, got %dx%d", w, h)
	}
}
