package persist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
)

func sampleShapes() []model.AnnotationShape {
	return []model.AnnotationShape{
		{ID: "a", Type: model.ShapeBBox, Color: "#ef4444", BBox: &geom.Rect{X: 1, Y: 2, Width: 30, Height: 40}},
		{ID: "b", Type: model.ShapeFreehand, Label: "vessel", Points: []geom.Point{geom.Pt(0, 0), geom.Pt(5, 5), geom.Pt(0, 0)}},
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"scan-001", true},
		{"ct_2024.slice4", true},
		{"", false},
		{"../etc", false},
		{"a/b", false},
		{`a\b`, false},
		{".hidden", false},
	}
	for _, tt := range tests {
		err := ValidateID(tt.id)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateID(%q) = %v, want ok=%v", tt.id, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidID) {
			t.Errorf("ValidateID(%q) error not ErrInvalidID: %v", tt.id, err)
		}
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(` [{"id":"x","type":"bbox","bbox":{"x":0,"y":0,"width":9,"height":9}}]`))
	if err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(doc.Annotations) != 1 {
		t.Errorf("got %d annotations", len(doc.Annotations))
	}

	doc, err = DecodeDocument([]byte(`{"image":{"id":"s1","width":10,"height":20},"annotations":[]}`))
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc.Image.Height != 20 {
		t.Errorf("image = %+v", doc.Image)
	}

	if _, err := DecodeDocument([]byte(`{"annotations":[{"type":"star"}]}`)); err == nil {
		t.Error("expected error for unknown shape type")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(ctx, "scan-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load before save = %v, want ErrNotFound", err)
	}

	img := model.ImageInfo{ID: "scan-1", Width: 512, Height: 256}
	res, err := s.SaveAnnotations(ctx, img, sampleShapes())
	if err != nil {
		t.Fatalf("SaveAnnotations: %v", err)
	}
	if res.AnnotationCount != 2 {
		t.Errorf("AnnotationCount = %d, want 2", res.AnnotationCount)
	}

	doc, err := s.Load(ctx, "scan-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Image != img {
		t.Errorf("image = %+v, want %+v", doc.Image, img)
	}
	if !reflect.DeepEqual(doc.Annotations, sampleShapes()) {
		t.Errorf("annotations = %+v", doc.Annotations)
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	ids, err := s.List(ctx)
	if err != nil || !reflect.DeepEqual(ids, []string{"scan-1"}) {
		t.Errorf("List = %v, %v", ids, err)
	}

	if err := s.Delete(ctx, "scan-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "scan-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.SaveAnnotations(context.Background(), model.ImageInfo{ID: "../escape"}, nil)
	if !errors.Is(err, ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", err)
	}
}

func TestHTTPClient(t *testing.T) {
	var saved Document
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/images", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string][]string{"images": {"scan-1"}})
	})
	mux.HandleFunc("GET /api/images/{id}/annotations", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "scan-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		json.NewEncoder(w).Encode(saved)
	})
	mux.HandleFunc("PUT /api/images/{id}/annotations", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(model.SaveResult{AnnotationCount: len(saved.Annotations), MaskRef: "masks/scan-1.png"})
	})
	mux.HandleFunc("DELETE /api/images/{id}/annotations", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "storage offline"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	c := NewHTTPClient(srv.URL+"/", nil)

	res, err := c.SaveAnnotations(ctx, model.ImageInfo{ID: "scan-1", Width: 8, Height: 8}, sampleShapes())
	if err != nil {
		t.Fatalf("SaveAnnotations: %v", err)
	}
	if res.AnnotationCount != 2 || res.MaskRef != "masks/scan-1.png" {
		t.Errorf("result = %+v", res)
	}

	doc, err := c.Load(ctx, "scan-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Annotations) != 2 || doc.Image.Width != 8 {
		t.Errorf("doc = %+v", doc)
	}

	if _, err := c.Load(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(other) = %v, want ErrNotFound", err)
	}

	ids, err := c.List(ctx)
	if err != nil || !reflect.DeepEqual(ids, []string{"scan-1"}) {
		t.Errorf("List = %v, %v", ids, err)
	}

	if err := c.Delete(ctx, "scan-1"); err == nil {
		t.Error("expected error from failing delete")
	}
}

var (
	_ Repository = (*FileStore)(nil)
	_ Repository = (*HTTPClient)(nil)
)
