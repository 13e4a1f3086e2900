package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/logging"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/persist"
	"github.com/sprite-ai/medannot/internal/viewport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // local annotation tool; browsers load the UI from anywhere
	},
}

// WebSocket message types from client.
const (
	wsMsgOpen           = "open"
	wsMsgResize         = "resize"
	wsMsgPointerDown    = "pointer_down"
	wsMsgPointerMove    = "pointer_move"
	wsMsgPointerUp      = "pointer_up"
	wsMsgPointerLeave   = "pointer_leave"
	wsMsgSetTool        = "set_tool"
	wsMsgSetColor       = "set_color"
	wsMsgSetLabel       = "set_label"
	wsMsgRelabel        = "relabel_selected"
	wsMsgFinishPolygon  = "finish_polygon"
	wsMsgUndoVertex     = "undo_vertex"
	wsMsgClearPolygon   = "clear_polygon"
	wsMsgUndo           = "undo"
	wsMsgRedo           = "redo"
	wsMsgDeleteSelected = "delete_selected"
	wsMsgSelectAll      = "select_all"
	wsMsgClearSelection = "clear_selection"
	wsMsgSave           = "save"
)

// WebSocket message types to client.
const (
	wsMsgState = "state"
	wsMsgSaved = "saved"
	wsMsgError = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsOpen is the payload for "open". Annotations, when present, seed the
// editor instead of the stored document.
// wsSaved names the image a finished save belongs to, which may no longer be
// the open one.
type wsSaved struct {
	ImageID string `json:"image_id"`
	model.SaveResult
}

type wsOpen struct {
	ImageID       string                   `json:"image_id"`
	Width         int                      `json:"width"`
	Height        int                      `json:"height"`
	DisplayWidth  float64                  `json:"display_width"`
	DisplayHeight float64                  `json:"display_height"`
	Annotations   *[]model.AnnotationShape `json:"annotations,omitempty"`
}

// wsResize is the payload for "resize".
type wsResize struct {
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

// wsPointer is the payload for pointer messages, in displayed coordinates.
type wsPointer struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Extend bool    `json:"extend,omitempty"`
}

type wsTool struct {
	Tool editor.Tool `json:"tool"`
}

type wsColor struct {
	Color string `json:"color"`
}

type wsLabel struct {
	Label string `json:"label"`
}

// editSession is one connection's editor. mu serializes editor access and
// socket writes between the read loop and save completions.
type editSession struct {
	conn   *websocket.Conn
	repo   persist.Repository
	ed     *editor.Editor
	mapper viewport.Mapper
	opened bool
	mu     sync.Mutex
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()
	// The hijacked connection still carries the server's read/write timeouts.
	conn.NetConn().SetDeadline(time.Time{})

	session := &editSession{
		conn: conn,
		repo: s.repo,
		ed:   editor.New(s.editorOpts...),
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Logger().Warn("websocket read", "err", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			session.mu.Lock()
			sendWSError(conn, "invalid message format")
			session.mu.Unlock()
			continue
		}
		session.handle(r.Context(), msg)
	}
}

func (s *editSession) handle(ctx context.Context, msg wsMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Type == wsMsgOpen {
		if err := s.open(ctx, msg.Data); err != nil {
			sendWSError(s.conn, err.Error())
			return
		}
		s.sendState()
		return
	}
	if !s.opened {
		sendWSError(s.conn, "no image open")
		return
	}

	ed := s.ed
	switch msg.Type {
	case wsMsgResize:
		var req wsResize
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			sendWSError(s.conn, "invalid resize data")
			return
		}
		s.setDisplay(req.DisplayWidth, req.DisplayHeight)
	case wsMsgPointerDown, wsMsgPointerMove, wsMsgPointerUp, wsMsgPointerLeave:
		var p wsPointer
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &p); err != nil {
				sendWSError(s.conn, "invalid pointer data")
				return
			}
		}
		ev := editor.PointerEvent{Point: s.mapper.ToNative(geom.Pt(p.X, p.Y)), Extend: p.Extend}
		switch msg.Type {
		case wsMsgPointerDown:
			ed.PointerDown(ev)
		case wsMsgPointerMove:
			ed.PointerMove(ev)
		case wsMsgPointerUp:
			ed.PointerUp(ev)
		default:
			ed.PointerLeave(ev)
		}
	case wsMsgSetTool:
		var req wsTool
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			sendWSError(s.conn, "invalid set_tool data: "+err.Error())
			return
		}
		ed.SetTool(req.Tool)
	case wsMsgSetColor:
		var req wsColor
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			sendWSError(s.conn, "invalid set_color data")
			return
		}
		if _, err := model.ParseColor(req.Color); err != nil {
			sendWSError(s.conn, err.Error())
			return
		}
		ed.SetColor(req.Color)
	case wsMsgSetLabel, wsMsgRelabel:
		var req wsLabel
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			sendWSError(s.conn, "invalid label data")
			return
		}
		if msg.Type == wsMsgSetLabel {
			ed.SetLabel(req.Label)
		} else {
			ed.RelabelSelected(req.Label)
		}
	case wsMsgFinishPolygon:
		ed.FinishPolygon()
	case wsMsgUndoVertex:
		ed.UndoVertex()
	case wsMsgClearPolygon:
		ed.ClearPolygon()
	case wsMsgUndo:
		ed.Undo()
	case wsMsgRedo:
		ed.Redo()
	case wsMsgDeleteSelected:
		ed.DeleteSelected()
	case wsMsgSelectAll:
		ed.SelectAll()
	case wsMsgClearSelection:
		ed.ClearSelection()
	case wsMsgSave:
		if err := s.save(ctx); err != nil {
			sendWSError(s.conn, err.Error())
			return
		}
	default:
		sendWSError(s.conn, "unknown message type: "+msg.Type)
		return
	}
	s.sendState()
}

func (s *editSession) open(ctx context.Context, data json.RawMessage) error {
	var req wsOpen
	if err := json.Unmarshal(data, &req); err != nil {
		return errors.New("invalid open data")
	}
	if err := persist.ValidateID(req.ImageID); err != nil {
		return err
	}

	img := model.ImageInfo{ID: req.ImageID, Width: req.Width, Height: req.Height}
	var shapes []model.AnnotationShape
	if req.Annotations != nil {
		shapes = *req.Annotations
	} else {
		doc, err := s.repo.Load(ctx, req.ImageID)
		switch {
		case errors.Is(err, persist.ErrNotFound):
		case err != nil:
			return err
		default:
			shapes = doc.Annotations
			if img.Width == 0 || img.Height == 0 {
				img.Width, img.Height = doc.Image.Width, doc.Image.Height
			}
			img.Source = doc.Image.Source
		}
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.New("image width and height are required")
	}

	s.ed.Open(img, shapes)
	s.opened = true
	s.mapper = viewport.New(viewport.Size{}, viewport.Size{Width: float64(img.Width), Height: float64(img.Height)})
	s.setDisplay(req.DisplayWidth, req.DisplayHeight)
	return nil
}

// setDisplay updates the displayed surface size. Zero means unscaled.
func (s *editSession) setDisplay(w, h float64) {
	if w <= 0 || h <= 0 {
		w, h = s.mapper.Native.Width, s.mapper.Native.Height
	}
	s.mapper.Displayed = viewport.Size{Width: w, Height: h}
}

// save starts persistence in the background. Completion is reported with
// a "saved" (or "error") message followed by a fresh state.
func (s *editSession) save(ctx context.Context) error {
	req, err := s.ed.BeginSave()
	if err != nil {
		return err
	}
	go func() {
		res, err := s.repo.SaveAnnotations(context.WithoutCancel(ctx), req.Image, req.Shapes)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ed.EndSave()
		if err != nil {
			logging.Logger().Warn("save failed", "image", req.Image.ID, "err", err)
			sendWSError(s.conn, "save failed: "+err.Error())
		} else {
			logging.Logger().Info("annotations saved", "image", req.Image.ID, "count", res.AnnotationCount)
			sendWSMessage(s.conn, wsMsgSaved, wsSaved{ImageID: req.Image.ID, SaveResult: res})
		}
		s.sendState()
	}()
	return nil
}

func (s *editSession) sendState() {
	sendWSMessage(s.conn, wsMsgState, s.ed.State())
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		logging.Logger().Warn("ws marshal", "err", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		logging.Logger().Debug("ws write", "err", err)
	}
}

func sendWSError(conn *websocket.Conn, errMsg string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"message": errMsg})
}
