// Package persist is the boundary to whatever stores annotations: a local
// directory of JSON documents or a remote medannot server.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sprite-ai/medannot/internal/model"
)

var (
	// ErrNotFound means no annotations were ever saved for the image.
	ErrNotFound = errors.New("annotations not found")
	// ErrInvalidID rejects image ids that cannot be used as a storage key.
	ErrInvalidID = errors.New("invalid image id")
)

// Document is the persisted form of one image's annotations.
type Document struct {
	Image       model.ImageInfo         `json:"image"`
	Annotations []model.AnnotationShape `json:"annotations"`
	UpdatedAt   time.Time               `json:"updated_at,omitzero"`
}

// Loader fetches the stored annotations of an image.
type Loader interface {
	Load(ctx context.Context, imageID string) (Document, error)
}

// Persister stores the full annotation list of an image.
type Persister interface {
	SaveAnnotations(ctx context.Context, img model.ImageInfo, shapes []model.AnnotationShape) (model.SaveResult, error)
}

// Deleter removes everything stored for an image.
type Deleter interface {
	Delete(ctx context.Context, imageID string) error
}

// Repository is a complete backend.
type Repository interface {
	Loader
	Persister
	Deleter
	List(ctx context.Context) ([]string, error)
}

// ValidateID checks that id is usable as a key in every backend.
func ValidateID(id string) error {
	if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// DecodeDocument parses either a full Document or a bare JSON array of
// shapes, which is what older exports contain.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Annotations); err != nil {
			return Document{}, fmt.Errorf("decoding annotations: %w", err)
		}
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding document: %w", err)
	}
	return doc, nil
}
