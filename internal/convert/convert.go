// Package convert reads annotation files written by other labeling tools
// and turns them into medannot documents. Geometry is taken as native
// pixels, which is what every supported format stores.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// Format names a supported input format.
type Format string

const (
	FormatNative  Format = "medannot"
	FormatLabelMe Format = "labelme"
	FormatCOCO    Format = "coco"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatNative, FormatLabelMe, FormatCOCO}

// Result is the outcome of one conversion.
type Result struct {
	Format    Format
	Documents []persist.Document
	Skipped   int // source shapes with no medannot equivalent
}

// Options tune a conversion.
type Options struct {
	// NewID generates shape ids for formats without usable ones.
	NewID func() string
	// Palette colors shapes by label, in order of first appearance.
	Palette []string
	// ImageID names the image when the source does not.
	ImageID string
}

func (o Options) withDefaults() Options {
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if len(o.Palette) == 0 {
		o.Palette = model.DefaultPalette
	}
	return o
}

// Detect guesses the format of data from its top-level JSON shape.
func Detect(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FormatNative
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return FormatNative
	}
	_, hasImages := probe["images"]
	_, hasAnnotations := probe["annotations"]
	_, hasShapes := probe["shapes"]
	_, hasImagePath := probe["imagePath"]
	switch {
	case hasImages && hasAnnotations:
		return FormatCOCO
	case hasShapes && hasImagePath:
		return FormatLabelMe
	default:
		return FormatNative
	}
}

// Decode converts data. An empty format is detected.
func Decode(data []byte, format Format, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if format == "" {
		format = Detect(data)
	}

	var (
		res *Result
		err error
	)
	switch format {
	case FormatNative:
		res, err = decodeNative(data, opts)
	case FormatLabelMe:
		res, err = decodeLabelMe(data, opts)
	case FormatCOCO:
		res, err = decodeCOCO(data, opts)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	res.Format = format
	return res, nil
}

// LoadFile reads and converts path. Images without a name of their own are
// named after the file.
func LoadFile(path string, format Format, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}
	if opts.ImageID == "" {
		opts.ImageID = stem(path)
	}
	return Decode(data, format, opts)
}

func decodeNative(data []byte, opts Options) (*Result, error) {
	doc, err := persist.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	if doc.Image.ID == "" {
		doc.Image.ID = opts.ImageID
	}
	return &Result{Documents: []persist.Document{doc}}, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// labelColors hands out palette colors per label.
type labelColors struct {
	palette []string
	byLabel map[string]string
}

func newLabelColors(palette []string) *labelColors {
	return &labelColors{palette: palette, byLabel: make(map[string]string)}
}

func (c *labelColors) get(label string) string {
	if col, ok := c.byLabel[label]; ok {
		return col
	}
	col := c.palette[len(c.byLabel)%len(c.palette)]
	c.byLabel[label] = col
	return col
}
