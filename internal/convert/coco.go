package convert

import (
	"encoding/json"
	"sort"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
)

// COCO detection format (many images per file):
//   {"images": [{"id": 1, "file_name": "scan.png", "width": 512, "height": 512}],
//    "annotations": [{"id": 7, "image_id": 1, "category_id": 2,
//                     "bbox": [x, y, w, h], "segmentation": [[x1, y1, x2, y2, ...]]}],
//    "categories": [{"id": 2, "name": "lesion"}]}

type cocoFile struct {
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
	Categories  []cocoCategory   `json:"categories"`
}

type cocoImage struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoAnnotation struct {
	ID           int64           `json:"id"`
	ImageID      int64           `json:"image_id"`
	CategoryID   int64           `json:"category_id"`
	BBox         []float64       `json:"bbox"`
	Segmentation json.RawMessage `json:"segmentation"`
}

type cocoCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func decodeCOCO(data []byte, opts Options) (*Result, error) {
	var f cocoFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	categories := make(map[int64]string, len(f.Categories))
	for _, c := range f.Categories {
		categories[c.ID] = c.Name
	}

	byImage := make(map[int64][]cocoAnnotation)
	for _, a := range f.Annotations {
		byImage[a.ImageID] = append(byImage[a.ImageID], a)
	}

	res := &Result{}
	colors := newLabelColors(opts.Palette)
	for _, im := range f.Images {
		doc := persist.Document{
			Image:       model.ImageInfo{ID: stem(im.FileName), Width: im.Width, Height: im.Height, Source: im.FileName},
			Annotations: []model.AnnotationShape{},
		}
		anns := byImage[im.ID]
		sort.Slice(anns, func(i, j int) bool { return anns[i].ID < anns[j].ID })
		for _, a := range anns {
			label := categories[a.CategoryID]
			shape, ok := cocoShape(a)
			if !ok {
				res.Skipped++
				continue
			}
			shape.ID = opts.NewID()
			shape.Label = label
			shape.Color = colors.get(label)
			doc.Annotations = append(doc.Annotations, shape)
		}
		res.Documents = append(res.Documents, doc)
	}
	return res, nil
}

// cocoShape prefers the first polygon segmentation and falls back to the
// box. Run-length (crowd) masks have no vector form and use the box.
func cocoShape(a cocoAnnotation) (model.AnnotationShape, bool) {
	var polys [][]float64
	if len(a.Segmentation) > 0 && json.Unmarshal(a.Segmentation, &polys) == nil {
		for _, flat := range polys {
			if len(flat) < 6 || len(flat)%2 != 0 {
				continue
			}
			pts := make([]geom.Point, 0, len(flat)/2)
			for i := 0; i < len(flat); i += 2 {
				pts = append(pts, geom.Pt(flat[i], flat[i+1]))
			}
			return model.AnnotationShape{Type: model.ShapePolygon, Points: pts}, true
		}
	}
	if len(a.BBox) == 4 && a.BBox[2] > 0 && a.BBox[3] > 0 {
		r := geom.Rect{X: a.BBox[0], Y: a.BBox[1], Width: a.BBox[2], Height: a.BBox[3]}
		return model.AnnotationShape{Type: model.ShapeBBox, BBox: &r}, true
	}
	return model.AnnotationShape{}, false
}
