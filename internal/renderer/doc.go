// Package renderer draws resolved line-canvas cells onto a display backend.
//
// The canvas produces a sparse map of grid coordinates to cells and has no
// notion of a screen; the Compositor translates that map into backend
// coordinates and clips it to a viewport:
//
//	┌─────────────────────────────────────────┐
//	│   canvas.LineCanvas  (GetCellMap)       │
//	├─────────────────────────────────────────┤
//	│   Compositor  (offset, viewport clip)   │
//	├─────────────────────────────────────────┤
//	│   backend.Backend                       │
//	├─────────────────────────────────────────┤
//	│   Terminal (tcell) │ NullBackend        │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	be, _ := backend.NewTerminal()
//	be.Init()
//	comp := renderer.NewCompositor(be)
//	comp.Render(c, comp.CenterOffset(c.Bounds()))
package renderer
