package overlay

import (
	"errors"
	"image"
	"io"

	"github.com/gogpu/gg"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
)

// Canvas is a Renderer backed by a gg drawing context at native
// resolution.
type Canvas struct {
	dc  *gg.Context
	err error
}

// NewCanvas returns a transparent canvas of the given native size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{dc: gg.NewContext(width, height)}
}

// Render is NewCanvas followed by Project.
func Render(st editor.State, width, height int) *Canvas {
	c := NewCanvas(width, height)
	Project(c, st)
	if err := c.Err(); err != nil {
		logging.Logger().Warn("overlay render", "err", err)
	}
	return c
}

func (c *Canvas) Width() int  { return c.dc.Width() }
func (c *Canvas) Height() int { return c.dc.Height() }

func (c *Canvas) Clear() { c.dc.Clear() }

func (c *Canvas) DrawRect(r geom.Rect, st Style) {
	if st.Fill > 0 {
		c.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		c.setColor(st.Color, st.Fill)
		c.record(c.dc.Fill())
	}
	if st.LineWidth > 0 {
		c.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		c.setStroke(st)
		c.record(c.dc.Stroke())
	}
}

func (c *Canvas) DrawPath(pts []geom.Point, st Style) {
	if len(pts) < 2 || st.LineWidth <= 0 {
		return
	}
	c.trace(pts)
	c.setStroke(st)
	c.record(c.dc.Stroke())
}

func (c *Canvas) FillPath(pts []geom.Point, st Style) {
	if len(pts) < 3 || st.Fill <= 0 {
		return
	}
	c.trace(pts)
	c.dc.ClosePath()
	c.setColor(st.Color, st.Fill)
	c.record(c.dc.Fill())
}

func (c *Canvas) trace(pts []geom.Point) {
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
}

func (c *Canvas) setColor(s string, alpha float64) {
	col := model.ResolveColor(s, model.DefaultColor)
	c.dc.SetRGBA(float64(col.R)/255, float64(col.G)/255, float64(col.B)/255, alpha)
}

func (c *Canvas) setStroke(st Style) {
	c.setColor(st.Color, 1)
	c.dc.SetLineWidth(st.LineWidth)
	if len(st.Dash) > 0 {
		c.dc.SetDash(st.Dash...)
	} else {
		c.dc.ClearDash()
	}
}

func (c *Canvas) record(err error) {
	if err != nil {
		c.err = errors.Join(c.err, err)
	}
}

// Err returns every rasterisation error seen since the canvas was created.
func (c *Canvas) Err() error { return c.err }

// Image returns the rendered overlay.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the overlay as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// Close releases the drawing context.
func (c *Canvas) Close() error { return c.dc.Close() }
