package cli

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sprite-ai/medannot/internal/convert"
	"github.com/sprite-ai/medannot/internal/persist"
	"github.com/sprite-ai/medannot/internal/viewport"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// loadDocument reads arg as an annotations file (any format convert
// understands) when it names one, and as an image id in the configured
// store otherwise.
func loadDocument(ctx context.Context, arg string) (persist.Document, error) {
	if strings.HasSuffix(arg, ".json") {
		res, err := convert.LoadFile(arg, "", convert.Options{Palette: cfg.Editor.Palette})
		if err != nil {
			return persist.Document{}, err
		}
		if n := len(res.Documents); n != 1 {
			return persist.Document{}, fmt.Errorf("%s holds %d images; use import to store them first", arg, n)
		}
		return res.Documents[0], nil
	}

	repo, err := openRepository()
	if err != nil {
		return persist.Document{}, err
	}
	doc, err := repo.Load(ctx, arg)
	if err != nil {
		return persist.Document{}, fmt.Errorf("loading %s: %w", arg, err)
	}
	return doc, nil
}

// decodeImage reads a PNG, JPEG, BMP, TIFF or WebP file.
func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// parseSize reads "WxH".
func parseSize(s string) (viewport.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	w, werr := strconv.ParseFloat(ws, 64)
	h, herr := strconv.ParseFloat(hs, 64)
	if !ok || werr != nil || herr != nil || !validSide(w) || !validSide(h) {
		return viewport.Size{}, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
	}
	return viewport.Size{Width: w, Height: h}, nil
}

func validSide(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
