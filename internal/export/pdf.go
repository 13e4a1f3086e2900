// Package export packages an annotated image for download.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageW   = 210.0
	pageH   = 297.0
	margin  = 15.0
	titleH  = 12.0
	lineMM  = 0.4
	labelPt = 7.0
)

// PDF writes a one-page document: a title line, the base image if given,
// and every annotation outline scaled from native pixels onto the page.
func PDF(w io.Writer, doc persist.Document, base image.Image) error {
	nw, nh := nativeSize(doc, base)
	if nw <= 0 || nh <= 0 {
		return fmt.Errorf("export %s: unknown image size", doc.Image.ID)
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(doc.Image.ID, true)
	p.SetCreator("medannot", true)
	p.AddPage()

	p.SetFont("Helvetica", "B", 12)
	p.Text(margin, margin+5, fmt.Sprintf("%s  (%d x %d px, %d annotations)", doc.Image.ID, int(nw), int(nh), len(doc.Annotations)))

	availW := pageW - 2*margin
	availH := pageH - 2*margin - titleH
	k := min(availW/nw, availH/nh)
	ox, oy := margin, margin+titleH
	toPage := func(pt geom.Point) gofpdf.PointType {
		return gofpdf.PointType{X: ox + pt.X*k, Y: oy + pt.Y*k}
	}

	if base != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, base); err != nil {
			return fmt.Errorf("encoding base image: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader("base", opts, &buf)
		p.ImageOptions("base", ox, oy, nw*k, nh*k, false, opts, 0, "")
	}

	p.SetLineWidth(lineMM)
	p.SetFont("Helvetica", "", labelPt)
	for _, s := range doc.Annotations {
		b, ok := s.Bounds()
		if !ok {
			continue
		}
		c := model.ResolveColor(s.Color, model.DefaultColor)
		p.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.SetTextColor(int(c.R), int(c.G), int(c.B))

		switch {
		case s.BBox != nil:
			tl := toPage(geom.Pt(s.BBox.X, s.BBox.Y))
			p.Rect(tl.X, tl.Y, s.BBox.Width*k, s.BBox.Height*k, "D")
		case len(s.Points) >= 2:
			pts := make([]gofpdf.PointType, len(s.Points))
			for i, pt := range s.Points {
				pts[i] = toPage(pt)
			}
			if pts[0] == pts[len(pts)-1] && len(pts) > 2 {
				p.Polygon(pts[:len(pts)-1], "D")
			} else {
				for i := 1; i < len(pts); i++ {
					p.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
				}
			}
		}
		if s.Label != "" {
			at := toPage(geom.Pt(b.X, b.Y))
			p.Text(at.X, at.Y-1, s.Label)
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// nativeSize prefers the stored image size, then the base image, then the
// extent of the annotations themselves.
func nativeSize(doc persist.Document, base image.Image) (w, h float64) {
	if doc.Image.Width > 0 && doc.Image.Height > 0 {
		return float64(doc.Image.Width), float64(doc.Image.Height)
	}
	if base != nil {
		b := base.Bounds()
		return float64(b.Dx()), float64(b.Dy())
	}
	for _, s := range doc.Annotations {
		if r, ok := s.Bounds(); ok {
			w = max(w, r.MaxX())
			h = max(h, r.MaxY())
		}
	}
	return w, h
}
