package editor

import (
	"context"
	"errors"

	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
)

// ErrSaveInProgress is returned when a save is requested while another is
// still running.
var ErrSaveInProgress = errors.New("save already in progress")

// Saver persists the full annotation list for an image.
type Saver interface {
	SaveAnnotations(ctx context.Context, img model.ImageInfo, shapes []model.AnnotationShape) (model.SaveResult, error)
}

// SaveRequest is the payload captured when a save begins.
type SaveRequest struct {
	Image  model.ImageInfo
	Shapes []model.AnnotationShape
}

// Saving reports whether a save is running. Safe for concurrent use.
func (e *Editor) Saving() bool { return e.saving.Load() }

// BeginSave marks a save as running and captures the collection. Callers
// that run persistence themselves must call EndSave when it completes.
func (e *Editor) BeginSave() (SaveRequest, error) {
	if !e.saving.CompareAndSwap(false, true) {
		return SaveRequest{}, ErrSaveInProgress
	}
	return SaveRequest{Image: e.image, Shapes: e.store.Shapes()}, nil
}

// EndSave clears the running flag. Safe for concurrent use.
func (e *Editor) EndSave() { e.saving.Store(false) }

// Save hands the current collection to s on a new goroutine and returns
// immediately; editing may continue meanwhile. done, if non-nil, receives
// the outcome on that goroutine. Failures are passed through unretried.
func (e *Editor) Save(ctx context.Context, s Saver, done func(model.SaveResult, error)) error {
	req, err := e.BeginSave()
	if err != nil {
		return err
	}
	go func() {
		res, err := s.SaveAnnotations(ctx, req.Image, req.Shapes)
		e.EndSave()
		if err != nil {
			logging.Logger().Warn("save failed", "image", req.Image.ID, "err", err)
		} else {
			logging.Logger().Info("annotations saved", "image", req.Image.ID, "count", res.AnnotationCount)
		}
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}
