package api

import (
	"errors"
	"image/png"
	"net/http"

	"github.com/sprite-ai/medannot/internal/analysis"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/overlay"
	"github.com/sprite-ai/medannot/internal/persist"
	"github.com/sprite-ai/medannot/internal/viewport"
)

// maxRenderSide bounds server-side rasterisation.
const maxRenderSide = 8192

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Annotations ---

type listResponse struct {
	Images []string `json:"images"`
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	ids, err := s.repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Images: ids})
}

func (s *Server) handleGetAnnotations(w http.ResponseWriter, r *http.Request) {
	doc, err := s.repo.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if doc.Annotations == nil {
		doc.Annotations = []model.AnnotationShape{}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutAnnotations(w http.ResponseWriter, r *http.Request) {
	var doc persist.Document
	if err := readJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	doc.Image.ID = r.PathValue("id")

	res, err := s.repo.SaveAnnotations(r.Context(), doc.Image, doc.Annotations)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteAnnotations(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkResponse struct {
	Summary  string             `json:"summary"`
	Max      analysis.Severity  `json:"max_severity"`
	Findings []analysis.Finding `json:"findings"`
}

// handleCheck runs the validation passes over a stored document. Passes
// named in repeated ?skip= parameters are left out.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	doc, err := s.repo.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	res := analysis.Run(doc, r.URL.Query()["skip"])
	findings := res.Findings
	if findings == nil {
		findings = []analysis.Finding{}
	}
	writeJSON(w, http.StatusOK, checkResponse{Summary: res.Summary(), Max: res.MaxSeverity(), Findings: findings})
}

func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persist.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, persist.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Logger().Warn("repository", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Render ---

type renderRequest struct {
	Width         int                     `json:"width"`
	Height        int                     `json:"height"`
	Annotations   []model.AnnotationShape `json:"annotations"`
	Selected      []string                `json:"selected,omitempty"`
	DisplayWidth  int                     `json:"display_width,omitempty"`
	DisplayHeight int                     `json:"display_height,omitempty"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Width < 1 || req.Height < 1 || req.Width > maxRenderSide || req.Height > maxRenderSide {
		writeError(w, http.StatusBadRequest, "width and height must be between 1 and 8192")
		return
	}
	if req.DisplayWidth < 0 || req.DisplayHeight < 0 || req.DisplayWidth > maxRenderSide || req.DisplayHeight > maxRenderSide {
		writeError(w, http.StatusBadRequest, "display_width and display_height must be between 1 and 8192")
		return
	}

	canvas := overlay.Render(editor.State{Shapes: req.Annotations, Selected: req.Selected}, req.Width, req.Height)
	defer canvas.Close()

	img := canvas.Image()
	if req.DisplayWidth > 0 && req.DisplayHeight > 0 {
		img = overlay.Present(img, viewport.Size{Width: float64(req.DisplayWidth), Height: float64(req.DisplayHeight)})
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		logging.Logger().Warn("png encode", "err", err)
	}
}
