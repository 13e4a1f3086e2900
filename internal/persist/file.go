package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
)

// FileStore keeps one JSON document per image in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir is the storage directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Load(_ context.Context, imageID string) (Document, error) {
	if err := ValidateID(imageID); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(s.path(imageID))
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, fmt.Errorf("%s: %w", imageID, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("reading annotations: %w", err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return Document{}, err
	}
	if doc.Image.ID == "" {
		doc.Image.ID = imageID
	}
	return doc, nil
}

func (s *FileStore) SaveAnnotations(_ context.Context, img model.ImageInfo, shapes []model.AnnotationShape) (model.SaveResult, error) {
	if err := ValidateID(img.ID); err != nil {
		return model.SaveResult{}, err
	}
	doc := Document{Image: img, Annotations: model.CloneShapes(shapes), UpdatedAt: s.now().UTC()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return model.SaveResult{}, fmt.Errorf("encoding annotations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, "."+img.ID+"-*.tmp")
	if err != nil {
		return model.SaveResult{}, fmt.Errorf("writing annotations: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return model.SaveResult{}, fmt.Errorf("writing annotations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return model.SaveResult{}, fmt.Errorf("writing annotations: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(img.ID)); err != nil {
		os.Remove(tmp.Name())
		return model.SaveResult{}, fmt.Errorf("writing annotations: %w", err)
	}
	logging.Logger().Debug("annotations written", "image", img.ID, "count", len(shapes), "dir", s.dir)
	return model.SaveResult{AnnotationCount: len(shapes)}, nil
}

func (s *FileStore) Delete(_ context.Context, imageID string) error {
	if err := ValidateID(imageID); err != nil {
		return err
	}
	err := os.Remove(s.path(imageID))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", imageID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting annotations: %w", err)
	}
	return nil
}

// List returns the ids of all stored images, sorted.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing annotations: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
