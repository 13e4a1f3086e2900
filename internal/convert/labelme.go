package convert

import (
	"encoding/json"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// LabelMe format (one file per image):
//   {"shapes": [{"label": "lesion", "points": [[x, y], ...], "shape_type": "polygon"}],
//    "imagePath": "scan.png", "imageWidth": 512, "imageHeight": 512}

type labelMeFile struct {
	Shapes      []labelMeShape `json:"shapes"`
	ImagePath   string         `json:"imagePath"`
	ImageWidth  int            `json:"imageWidth"`
	ImageHeight int            `json:"imageHeight"`
}

type labelMeShape struct {
	Label     string       `json:"label"`
	Points    [][2]float64 `json:"points"`
	ShapeType string       `json:"shape_type"`
}

func decodeLabelMe(data []byte, opts Options) (*Result, error) {
	var f labelMeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	img := model.ImageInfo{ID: opts.ImageID, Width: f.ImageWidth, Height: f.ImageHeight, Source: f.ImagePath}
	if f.ImagePath != "" {
		img.ID = stem(f.ImagePath)
	}

	res := &Result{}
	colors := newLabelColors(opts.Palette)
	shapes := []model.AnnotationShape{}
	for _, s := range f.Shapes {
		pts := make([]geom.Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = geom.Pt(p[0], p[1])
		}
		shape := model.AnnotationShape{ID: opts.NewID(), Color: colors.get(s.Label), Label: s.Label}

		switch {
		case s.ShapeType == "rectangle" && len(pts) == 2:
			r := geom.RectFromPoints(pts[0], pts[1])
			shape.Type, shape.BBox = model.ShapeBBox, &r
		case (s.ShapeType == "polygon" || s.ShapeType == "") && len(pts) >= 3:
			shape.Type, shape.Points = model.ShapePolygon, pts
		case s.ShapeType == "linestrip" && len(pts) >= 2:
			shape.Type, shape.Points = model.ShapeFreehand, pts
		default:
			res.Skipped++
			continue
		}
		shapes = append(shapes, shape)
	}

	res.Documents = []persist.Document{{Image: img, Annotations: shapes}}
	return res, nil
}
