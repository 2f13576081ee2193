package main

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/frudas24/bboxedit/internal/bbox"
	"github.com/frudas24/bboxedit/internal/editor"
)

const (
	// headerLines is the status line above the canvas border.
	headerLines = 1
	// footerLines holds the help and status lines below the canvas border.
	footerLines = 2
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62")).Padding(0, 1)
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// drag tracks a Modify-mode move of the selected rectangle.
type drag struct {
	id     string
	origin bbox.Rect
	fromX  float64
	fromY  float64
	dx, dy float64
}

// model is the terminal front-end state. The editor owns all annotation state.
type model struct {
	ed      *editor.Editor
	outPath string
	save    func(path string, records []editor.Record) error
	clip    func(text string) error

	width, height int
	cols, rows    int
	pressed       bool
	drag          *drag
	status        string
}

// newModel builds a model around ed. save persists committed records and clip
// places their JSON on the clipboard.
func newModel(ed *editor.Editor, outPath string, save func(string, []editor.Record) error, clip func(string) error) model {
	m := model{ed: ed, outPath: outPath, save: save, clip: clip}
	m.cols, m.rows = gridSize(ed.ImageSize(), ed.Scale())
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.fit()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

// fit rescales the editor so the whole image fits inside the terminal.
func (m *model) fit() {
	availCols := m.width - 2
	availRows := m.height - 2 - headerLines - footerLines
	if availCols <= 0 || availRows <= 0 {
		return
	}
	size := m.ed.ImageSize()
	scale := math.Min(float64(availCols)/size.W, float64(availRows*cellHeight)/size.H)
	m.ed.SetScale(scale)
	m.cols, m.rows = gridSize(size, scale)
}

// handleKey maps terminal keys onto editor operations.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "a":
		m.setMode(editor.ModeAdd)
	case "m":
		m.setMode(editor.ModeModify)
	case "tab":
		m.cycleLabel(1)
	case "shift+tab":
		m.cycleLabel(-1)
	case "delete", "backspace", "x":
		m.ed.HandleKey(editor.Key{Name: "Delete"})
	case "ctrl+z":
		m.ed.HandleKey(editor.Key{Name: "z", Ctrl: true})
	case " ":
		if records, ok := m.ed.HandleKey(editor.Key{Name: " "}); ok {
			m.afterCommit(records)
		}
	case "enter":
		m.afterCommit(m.ed.Commit())
	case "esc":
		m.ed.PointerLeave()
		m.pressed, m.drag = false, nil
	case "left", "right", "up", "down":
		m.nudge(key, false)
	case "shift+left", "shift+right", "shift+up", "shift+down":
		m.nudge(strings.TrimPrefix(key, "shift+"), true)
	}
	return m, nil
}

// setMode switches editor mode and drops any local drag.
func (m *model) setMode(mode editor.Mode) {
	if err := m.ed.SetMode(mode); err != nil {
		m.status = err.Error()
		return
	}
	m.pressed, m.drag = false, nil
}

// cycleLabel moves the active label by step through the label list.
func (m *model) cycleLabel(step int) {
	labels := m.ed.View().Labels
	idx := slices.Index(labels, m.ed.Label())
	next := labels[((idx+step)%len(labels)+len(labels))%len(labels)]
	if err := m.ed.SetLabel(next); err != nil {
		m.status = err.Error()
	}
}

// nudge moves (or with resize, grows) the selected rectangle by one cell.
func (m *model) nudge(dir string, resize bool) {
	id, ok := m.ed.Selected()
	if !ok {
		return
	}
	r, found := m.rect(id)
	if !found {
		return
	}
	scale := m.ed.Scale()
	dx, dy := bbox.ToImage(1, scale), bbox.ToImage(cellHeight, scale)
	var mx, my float64
	switch dir {
	case "left":
		mx = -dx
	case "right":
		mx = dx
	case "up":
		my = -dy
	case "down":
		my = dy
	}
	x, y, w, h := r.X+mx, r.Y+my, r.W, r.H
	if resize {
		x, y, w, h = r.X, r.Y, r.W+mx, r.H+my
	}
	if _, err := m.ed.ApplyMove(id, x, y, w, h); err != nil {
		m.status = err.Error()
	}
}

// rect finds a rectangle by id in the current sequence.
func (m *model) rect(id string) (bbox.Rect, bool) {
	for _, r := range m.ed.Rects() {
		if r.ID == id {
			return r, true
		}
	}
	return bbox.Rect{}, false
}

// handleMouse translates terminal mouse events to pointer events on the canvas.
func (m *model) handleMouse(msg tea.MouseMsg) {
	x, y, inside := m.canvasPoint(msg.X, msg.Y)
	switch msg.Type {
	case tea.MouseLeft:
		if !inside {
			return
		}
		m.pressed = true
		m.ed.PointerDown(x, y)
		m.drag = nil
		if m.ed.Mode() == editor.ModeModify {
			if id, ok := m.ed.Selected(); ok {
				if r, found := m.rect(id); found {
					m.drag = &drag{id: id, origin: r, fromX: x, fromY: y}
				}
			}
		}
	case tea.MouseMotion:
		if !m.pressed {
			return
		}
		if m.drag != nil {
			m.drag.dx, m.drag.dy = x-m.drag.fromX, y-m.drag.fromY
			return
		}
		if !inside {
			m.ed.PointerLeave()
			m.pressed = false
			return
		}
		m.ed.PointerMove(x, y)
	case tea.MouseRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		if d := m.drag; d != nil {
			m.drag = nil
			if d.dx == 0 && d.dy == 0 {
				return
			}
			g := m.dragged(d)
			if _, err := m.ed.ApplyMove(d.id, g.X, g.Y, g.W, g.H); err != nil {
				m.status = err.Error()
			}
			return
		}
		if !inside {
			m.ed.PointerLeave()
			return
		}
		if r, ok := m.ed.PointerUp(x, y); ok {
			m.status = fmt.Sprintf("added %s", r.Label)
		}
	}
}

// dragged returns the dragged rectangle in image space.
func (m *model) dragged(d *drag) bbox.Rect {
	scale := m.ed.Scale()
	return d.origin.WithGeometry(
		d.origin.X+bbox.ToImage(d.dx, scale),
		d.origin.Y+bbox.ToImage(d.dy, scale),
		d.origin.W,
		d.origin.H,
	)
}

// canvasPoint maps a terminal position to a rendered-space point on the canvas.
func (m *model) canvasPoint(tx, ty int) (float64, float64, bool) {
	cx, cy := tx-1, ty-headerLines-1
	x, y := toRendered(cx, cy)
	inside := cx >= 0 && cy >= 0 && cx < m.cols && cy < m.rows
	if inside {
		size, scale := m.ed.ImageSize(), m.ed.Scale()
		x, y = min(x, size.W*scale), min(y, size.H*scale)
	}
	return x, y, inside
}

// afterCommit saves committed records and copies them to the clipboard.
func (m *model) afterCommit(records []editor.Record) {
	if err := m.save(m.outPath, records); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("saved %d annotations to %s", len(records), m.outPath)
	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := m.clip(string(data)); err != nil {
		m.status += " (clipboard unavailable)"
		return
	}
	m.status += ", copied to clipboard"
}

// View implements tea.Model.
func (m model) View() string {
	v := m.ed.View()
	var ghost *bbox.Rect
	if m.drag != nil {
		g := m.dragged(m.drag)
		g.Stroke = m.ed.ColorFor(g.Label)
		ghost = &g
	}
	canvas := rasterize(v, m.cols, m.rows, ghost)

	header := titleStyle.Render("bboxedit") + " " + m.summary(v)
	body := canvasStyle.Render(strings.Join(canvas.lines(), "\n"))
	help := helpStyle.Render("a add · m modify · tab label · arrows move · shift+arrows resize · del delete · ctrl+z undo · enter commit · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, help, statusStyle.Render(m.status))
}

// summary describes mode, active label and selection.
func (m model) summary(v editor.View) string {
	label := paint("■ "+v.Label, v.Colors[v.Label])
	parts := []string{string(v.Mode), label, fmt.Sprintf("%d boxes", len(v.Rects))}
	if v.Selected != "" {
		parts = append(parts, "selected "+v.Selected)
	}
	if v.UndoDepth > 0 {
		parts = append(parts, fmt.Sprintf("undo %d (%s)", v.UndoDepth, v.LastUndo))
	}
	return strings.Join(parts, " | ")
}
