package renderer

import (
	"github.com/dshills/termcore/internal/canvas"
	"github.com/dshills/termcore/internal/logging"
	"github.com/dshills/termcore/internal/renderer/backend"
	"github.com/dshills/termcore/internal/renderer/core"
)

// Compositor draws cell maps onto a backend, clipped to Viewport.
type Compositor struct {
	Backend  backend.Backend
	Viewport core.Rect

	logger     *logging.Logger
	frameCount uint64
}

// NewCompositor creates a compositor whose viewport covers the whole
// backend.
func NewCompositor(be backend.Backend) *Compositor {
	c := &Compositor{Backend: be, logger: logging.NullLogger}
	c.Resize(be.Size())
	return c
}

// SetLogger sets the logger.
func (c *Compositor) SetLogger(l *logging.Logger) {
	c.logger = logging.OrNull(l).WithComponent("compositor")
}

// Resize sets the viewport to the full width x height surface.
func (c *Compositor) Resize(width, height int) {
	c.Viewport = core.RectFromSize(0, 0, width, height)
}

// Draw writes each cell translated by offset, skipping cells outside the
// viewport, then shows the frame. It returns the number of cells drawn.
func (c *Compositor) Draw(cells map[core.Point]core.Cell, offset core.Point) int {
	drawn := 0
	for p, cell := range cells {
		dst := p.Add(offset)
		if !c.Viewport.Contains(dst) {
			continue
		}
		c.Backend.SetCell(dst.X, dst.Y, cell)
		drawn++
	}
	c.Backend.Show()
	c.frameCount++
	c.logger.Debug("frame %d: drew %d of %d cells", c.frameCount, drawn, len(cells))
	return drawn
}

// Render clears the viewport and draws the canvas.
func (c *Compositor) Render(lc *canvas.LineCanvas, offset core.Point) int {
	c.Backend.Fill(c.Viewport, core.EmptyCell())
	return c.Draw(lc.GetCellMap(), offset)
}

// CenterOffset returns the offset that centers bounds in the viewport.
// Content larger than the viewport is aligned to its top-left corner.
func (c *Compositor) CenterOffset(bounds core.Rect) core.Point {
	center := func(size, avail, origin, start int) int {
		if size >= avail {
			return origin - start
		}
		return origin + (avail-size)/2 - start
	}
	return core.Pt(
		center(bounds.Width(), c.Viewport.Width(), c.Viewport.Left, bounds.Left),
		center(bounds.Height(), c.Viewport.Height(), c.Viewport.Top, bounds.Top),
	)
}

// FrameCount returns the number of frames drawn.
func (c *Compositor) FrameCount() uint64 {
	return c.frameCount
}
