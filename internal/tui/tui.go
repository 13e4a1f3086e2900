// Package tui implements the Bubble Tea terminal annotation editor. The
// image is drawn as a character grid; the mouse drives the editor's
// pointer events and the keyboard its commands.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/medannot/internal/editor"
	"github.com/sprite-ai/medannot/internal/geom"
	"github.com/sprite-ai/medannot/internal/model"
	"github.com/sprite-ai/medannot/internal/overlay"
	"github.com/sprite-ai/medannot/internal/viewport"
)

// Layout. Terminal cells are roughly twice as tall as they are wide.
const (
	titleRows  = 1
	statusRows = 1
	cellAspect = 2.0
)

// saveDoneMsg carries the outcome of a background save.
type saveDoneMsg struct {
	res model.SaveResult
	err error
}

// Model is the top-level Bubble Tea model for the editor.
type Model struct {
	ed      *editor.Editor
	saver   editor.Saver
	palette []string

	// UI state
	width  int
	height int
	inside bool // last pointer sample was on the canvas

	showHelp bool
	labeling bool
	label    textinput.Model

	status    string
	statusErr bool

	saveDone      chan saveDoneMsg
	quitAfterSave bool
}

// New creates a TUI model around an editor that already has an image open.
// saver may be nil, in which case saving reports an error.
func New(ed *editor.Editor, saver editor.Saver, palette []string) Model {
	if len(palette) == 0 {
		palette = model.DefaultPalette
	}
	ti := textinput.New()
	ti.Prompt = "label: "
	ti.CharLimit = 64
	return Model{
		ed:       ed,
		saver:    saver,
		palette:  palette,
		label:    ti,
		saveDone: make(chan saveDoneMsg, 1),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		if !m.labeling && !m.showHelp {
			m.handleMouse(msg)
		}
		return m, nil

	case saveDoneMsg:
		if msg.err != nil {
			m.setStatus("save failed: "+msg.err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("saved %d annotations", msg.res.AnnotationCount), false)
		}
		if m.quitAfterSave {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.labeling {
			return m.updateLabel(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.ed
	switch {
	case key.Matches(msg, keys.Quit):
		if ed.Saving() {
			m.quitAfterSave = true
			m.setStatus("waiting for save to finish…", false)
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, keys.Select):
		ed.SetTool(editor.ToolSelect)
	case key.Matches(msg, keys.BBox):
		ed.SetTool(editor.ToolBBox)
	case key.Matches(msg, keys.Polygon):
		ed.SetTool(editor.ToolPolygon)
	case key.Matches(msg, keys.Freehand):
		ed.SetTool(editor.ToolFreehand)
	case key.Matches(msg, keys.Erase):
		ed.SetTool(editor.ToolErase)

	case key.Matches(msg, keys.Palette):
		if i := int(msg.String()[0] - '1'); i < len(m.palette) {
			ed.SetColor(m.palette[i])
		}

	case key.Matches(msg, keys.Finish):
		ed.FinishPolygon()
	case key.Matches(msg, keys.UndoVertex):
		ed.UndoVertex()
	case key.Matches(msg, keys.Cancel):
		if len(ed.PolygonPoints()) > 0 {
			ed.ClearPolygon()
		} else {
			ed.ClearSelection()
		}

	case key.Matches(msg, keys.Undo):
		ed.Undo()
	case key.Matches(msg, keys.Redo):
		ed.Redo()
	case key.Matches(msg, keys.Delete):
		ed.DeleteSelected()
	case key.Matches(msg, keys.SelectAll):
		ed.SelectAll()

	case key.Matches(msg, keys.Label):
		m.labeling = true
		m.label.SetValue(ed.Session().Label)
		m.label.CursorEnd()
		return m, m.label.Focus()

	case key.Matches(msg, keys.Save):
		return m.startSave()
	}
	return m, nil
}

// updateLabel feeds keys to the label prompt. Enter sets the session label
// and relabels the current selection.
func (m Model) updateLabel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v := strings.TrimSpace(m.label.Value())
		m.ed.SetLabel(v)
		m.ed.RelabelSelected(v)
		m.labeling = false
		m.label.Blur()
		return m, nil
	case tea.KeyEsc:
		m.labeling = false
		m.label.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.label, cmd = m.label.Update(msg)
	return m, cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	mp := m.mapper()
	pos := geom.Pt(float64(msg.X)+0.5, float64(msg.Y)+0.5)
	inside := mp.Contains(pos)
	ev := editor.PointerEvent{Point: mp.ToNative(pos), Extend: msg.Shift || msg.Ctrl}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && inside {
			m.ed.PointerDown(ev)
		}
	case tea.MouseActionMotion:
		if inside {
			m.ed.PointerMove(ev)
		} else if m.inside {
			m.ed.PointerLeave(ev)
		}
	case tea.MouseActionRelease:
		m.ed.PointerUp(ev)
	}
	m.inside = inside
}

func (m Model) startSave() (tea.Model, tea.Cmd) {
	if m.saver == nil {
		m.setStatus("no storage configured", true)
		return m, nil
	}
	ch := m.saveDone
	err := m.ed.Save(context.Background(), m.saver, func(res model.SaveResult, err error) {
		ch <- saveDoneMsg{res: res, err: err}
	})
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("saving…", false)
	return m, waitForSave(ch)
}

func waitForSave(ch <-chan saveDoneMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// mapper places the image, aspect preserved, inside the bordered canvas
// area below the title bar. Pointer positions are cell centres.
func (m Model) mapper() viewport.Mapper {
	img := m.ed.Image()
	native := viewport.Size{Width: float64(img.Width), Height: float64(img.Height)}
	cols, rows := m.canvasSize(native)
	return viewport.Mapper{
		Origin:    geom.Pt(1, titleRows+1),
		Displayed: viewport.Size{Width: float64(cols), Height: float64(rows)},
		Native:    native,
	}
}

func (m Model) canvasSize(native viewport.Size) (cols, rows int) {
	avail := viewport.Size{
		Width:  float64(m.width - 2),
		Height: float64(m.height-titleRows-statusRows-2) * cellAspect,
	}
	if avail.Width < 1 || avail.Height < 1 {
		return 0, 0
	}
	fit := viewport.Fit(native, avail)
	return max(int(math.Floor(fit.Width)), 1), max(int(math.Floor(fit.Height/cellAspect)), 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	mp := m.mapper()
	g := newGrid(int(mp.Displayed.Width), int(mp.Displayed.Height), mp.Native)
	overlay.Project(g, m.ed.State())
	canvas := canvasStyle.Render(g.String())

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitleBar(), canvas, m.renderStatusBar())
}

func (m Model) renderTitleBar() string {
	img := m.ed.Image()
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %dx%d", img.ID, img.Width, img.Height)))
	b.WriteString("  ")
	active := m.ed.Tool()
	for _, t := range editor.Tools {
		style := toolStyle
		if t == active {
			style = toolActiveStyle
		}
		b.WriteString(style.Render(" " + t.String() + " "))
	}
	b.WriteString("  ")
	current := m.ed.Session().Color
	for i, c := range m.palette {
		hex := model.HexString(model.ResolveColor(c, model.DefaultColor))
		mark := fmt.Sprintf("%d", i+1)
		if c == current {
			mark = "■"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(mark))
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	if m.labeling {
		return statusBarStyle.Width(m.width).Render(m.label.View())
	}
	st := m.ed.State()

	left := fmt.Sprintf("%d shapes  %d selected", len(st.Shapes), len(st.Selected))
	if n := len(st.Polygon); n > 0 {
		left += fmt.Sprintf("  %d vertices", n)
	}
	if st.Label != "" {
		left += "  label: " + st.Label
	}

	var right string
	switch {
	case st.Saving:
		right = statusSavingStyle.Render("saving…")
	case m.status != "" && m.statusErr:
		right = statusErrStyle.Render(m.status)
	case m.status != "":
		right = statusOKStyle.Render(m.status)
	}
	right += "  ? help "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("medannot: keyboard and mouse"))
	b.WriteString("\n\n")

	bindings := []key.Binding{
		keys.Select, keys.BBox, keys.Polygon, keys.Freehand, keys.Erase,
		keys.Palette, keys.Finish, keys.UndoVertex, keys.Cancel,
		keys.Undo, keys.Redo, keys.Delete, keys.SelectAll, keys.Label,
		keys.Save, keys.Help, keys.Quit,
	}
	for _, k := range bindings {
		h := k.Help()
		b.WriteString(fmt.Sprintf("  %s  %s\n", helpKeyStyle.Width(12).Render(h.Key), h.Desc))
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", helpKeyStyle.Width(12).Render("drag"), "draw or rubber-band select"))
	b.WriteString(fmt.Sprintf("  %s  %s\n", helpKeyStyle.Width(12).Render("shift+click"), "extend selection"))

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the editor. It returns once the user quits and any running
// save has finished.
func Run(ed *editor.Editor, saver editor.Saver, palette []string) error {
	m := New(ed, saver, palette)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
