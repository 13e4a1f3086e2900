package overlay

import (
	"image"
	"math"

	"github.com/sprite-ai/medannot/internal/viewport"
	xdraw "golang.org/x/image/draw"
)

// Present scales a native-resolution image to the displayed size. Geometry
// is never recomputed here; only pixels are resampled.
func Present(src image.Image, size viewport.Size) *image.RGBA {
	w := max(1, int(math.Round(size.Width)))
	h := max(1, int(math.Round(size.Height)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// Composite draws overlay on top of base. base is resampled to the
// overlay's native size when the two differ; a nil base leaves the
// background transparent.
func Composite(base, overlay image.Image) *image.RGBA {
	ob := overlay.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, ob.Dx(), ob.Dy()))
	if base != nil {
		bb := base.Bounds()
		if bb.Size() == ob.Size() {
			xdraw.Copy(dst, image.Point{}, base, bb, xdraw.Src, nil)
		} else {
			xdraw.CatmullRom.Scale(dst, dst.Bounds(), base, bb, xdraw.Src, nil)
		}
	}
	xdraw.Copy(dst, image.Point{}, overlay, ob, xdraw.Over, nil)
	return dst
}
