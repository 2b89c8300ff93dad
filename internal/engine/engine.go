package engine

import (
	"errors"
	"fmt"

	"github.com/apppaint/apppaint/internal/document"
)

var (
	ErrTooFewVertices = errors.New("polygon needs at least 3 points")
	ErrNoSelection    = errors.New("no shape selected")
	ErrUnknownTool    = errors.New("unknown tool")
)

// Tool is the active pointer tool: select, or one of the shape kinds.
type Tool string

const ToolSelect Tool = "Select"

func ParseTool(name string) (Tool, error) {
	if name == string(ToolSelect) || name == "" {
		return ToolSelect, nil
	}
	kind, err := document.ParseShapeKind(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return Tool(kind), nil
}

func (t Tool) Kind() (document.ShapeKind, bool) {
	k := document.ShapeKind(t)
	return k, k.Valid()
}

type ResultOp string

const (
	ResultNone    ResultOp = ""
	ResultCreated ResultOp = "created"
	ResultUpdated ResultOp = "updated"
	ResultDeleted ResultOp = "deleted"
)

// Result describes the shape a gesture committed, for the caller to persist.
type Result struct {
	Op    ResultOp       `json:"op,omitempty"`
	Index int            `json:"index"`
	Shape document.Shape `json:"shape"`
}

// Engine owns one interactive editing session over an ordered shape list.
// Index order is z-order: later shapes are drawn on top. An Engine is not
// safe for concurrent use.
type Engine struct {
	shapes   []document.Shape
	selected int

	tool  Tool
	style document.Style
	snap  bool

	canvasW, canvasH float64
	background       string

	drag  *Drag
	moved bool

	drawing    bool
	drawStart  document.Point
	drawEnd    document.Point
	polygon    PolygonBuilder
	newShapeID func() string
}

// NewEngine creates an empty session on a canvas of the given size.
func NewEngine(canvasW, canvasH float64) *Engine {
	return &Engine{
		selected:   -1,
		tool:       ToolSelect,
		style:      document.DefaultStyle(),
		canvasW:    canvasW,
		canvasH:    canvasH,
		background: "#FFFFFF",
	}
}

// SetIDGenerator sets the function that names shapes created in this session.
func (e *Engine) SetIDGenerator(fn func() string) { e.newShapeID = fn }

func (e *Engine) SetCanvas(w, h float64, background string) {
	e.canvasW, e.canvasH = w, h
	if background != "" {
		e.background = background
	}
}

func (e *Engine) Canvas() (float64, float64) { return e.canvasW, e.canvasH }

// --- Commands ---

// LoadShapes replaces the shape list and resets all interaction state.
func (e *Engine) LoadShapes(shapes []document.Shape) {
	e.shapes = make([]document.Shape, len(shapes))
	for i, s := range shapes {
		e.shapes[i] = s.Clone()
	}
	e.selected = -1
	e.resetGesture()
	e.polygon.Cancel()
}

func (e *Engine) Shapes() []document.Shape {
	out := make([]document.Shape, len(e.shapes))
	for i, s := range e.shapes {
		out[i] = s.Clone()
	}
	return out
}

// SetTool switches the pointer tool. Leaving the polygon tool discards a
// pending polygon; picking a drawing tool clears the selection.
func (e *Engine) SetTool(t Tool) error {
	if t != ToolSelect {
		if _, ok := t.Kind(); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTool, t)
		}
		e.selected = -1
	}
	if t != Tool(document.KindPolygon) {
		e.polygon.Cancel()
	}
	e.resetGesture()
	e.tool = t
	return nil
}

func (e *Engine) Tool() Tool { return e.tool }

func (e *Engine) SetStyle(st document.Style) error {
	if st.StrokeStyle == "" {
		st.StrokeStyle = document.StrokeSolid
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("set style: %w", err)
	}
	e.style = st
	return nil
}

func (e *Engine) Style() document.Style { return e.style }

// SetSnap toggles 45 degree line snapping and square rectangles.
func (e *Engine) SetSnap(enabled bool) { e.snap = enabled }

func (e *Engine) PointerDown(p document.Point) {
	switch e.tool {
	case ToolSelect:
		if ov, ok := e.Overlay(); ok && ov.HandleHit(p) {
			e.drag = BeginResize(e.shapes[e.selected], p)
			e.moved = false
			return
		}
		idx := HitTestShapes(e.shapes, p)
		if idx < 0 {
			e.ClearSelection()
			return
		}
		e.selected = idx
		e.drag = BeginMove(e.shapes[idx], p)
		e.moved = false

	case Tool(document.KindPolygon):
		if InCanvas(p, e.canvasW, e.canvasH) {
			e.polygon.AddVertex(p)
		}

	default:
		if !InCanvas(p, e.canvasW, e.canvasH) {
			return
		}
		e.drawing = true
		e.drawStart, e.drawEnd = p, p
	}
}

func (e *Engine) PointerMove(p document.Point) {
	switch {
	case e.drag != nil && e.selected >= 0:
		next := e.drag.Update(e.shapes[e.selected], p, e.canvasW, e.canvasH)
		if !samePoints(next.Points, e.shapes[e.selected].Points) {
			e.moved = true
		}
		e.shapes[e.selected] = next
	case e.drawing:
		e.drawEnd = ClampToCanvas(p, e.canvasW, e.canvasH)
	}
}

// PointerUp ends the gesture in progress and reports the shape it created
// or changed, if any.
func (e *Engine) PointerUp(p document.Point) Result {
	switch {
	case e.drag != nil && e.selected >= 0:
		e.PointerMove(p)
		moved := e.moved
		e.resetGesture()
		if !moved {
			return Result{Index: e.selected}
		}
		return Result{Op: ResultUpdated, Index: e.selected, Shape: e.shapes[e.selected].Clone()}

	case e.drawing:
		end := ClampToCanvas(p, e.canvasW, e.canvasH)
		start := e.drawStart
		e.resetGesture()
		kind, _ := e.tool.Kind()
		s, ok := ShapeFromDrag(kind, start, end, e.style, e.snap)
		if !ok {
			return Result{Index: -1}
		}
		return e.appendShape(s)
	}
	e.resetGesture()
	return Result{Index: e.selected}
}

// FinishPolygon commits the pending polygon. With fewer than three vertices
// the builder keeps its state and ErrTooFewVertices is returned.
func (e *Engine) FinishPolygon() (Result, error) {
	s, ok := e.polygon.Finish(e.style)
	if !ok {
		return Result{Index: -1}, ErrTooFewVertices
	}
	return e.appendShape(s), nil
}

func (e *Engine) CancelPolygon() { e.polygon.Cancel() }

// PendingPolygon exposes the builder for rendering and inspection.
func (e *Engine) PendingPolygon() *PolygonBuilder { return &e.polygon }

// Escape cancels a pending polygon or drawing gesture and clears the selection.
func (e *Engine) Escape() {
	e.polygon.Cancel()
	e.resetGesture()
	e.ClearSelection()
}

func (e *Engine) Select(index int) bool {
	if index < 0 || index >= len(e.shapes) {
		return false
	}
	e.selected = index
	return true
}

func (e *Engine) ClearSelection() {
	e.selected = -1
	e.drag = nil
}

// Selected returns the selected shape and its index.
func (e *Engine) Selected() (document.Shape, int, bool) {
	if e.selected < 0 || e.selected >= len(e.shapes) {
		return document.Shape{}, -1, false
	}
	return e.shapes[e.selected].Clone(), e.selected, true
}

// Overlay recomputes the selection overlay for the selected shape.
func (e *Engine) Overlay() (Overlay, bool) {
	if e.selected < 0 || e.selected >= len(e.shapes) {
		return Overlay{}, false
	}
	return ComputeOverlay(e.shapes[e.selected]), true
}

func (e *Engine) DeleteSelected() (Result, error) {
	if e.selected < 0 || e.selected >= len(e.shapes) {
		return Result{Index: -1}, ErrNoSelection
	}
	idx := e.selected
	removed := e.shapes[idx]
	e.shapes = append(e.shapes[:idx], e.shapes[idx+1:]...)
	e.selected = -1
	e.resetGesture()
	return Result{Op: ResultDeleted, Index: idx, Shape: removed}, nil
}

// UpdateSelectedStyle replaces the style of the selected shape.
func (e *Engine) UpdateSelectedStyle(st document.Style) (Result, error) {
	if e.selected < 0 || e.selected >= len(e.shapes) {
		return Result{Index: -1}, ErrNoSelection
	}
	if st.StrokeStyle == "" {
		st.StrokeStyle = document.StrokeSolid
	}
	if err := st.Validate(); err != nil {
		return Result{Index: e.selected}, fmt.Errorf("update style: %w", err)
	}
	e.shapes[e.selected].Style = st
	return Result{Op: ResultUpdated, Index: e.selected, Shape: e.shapes[e.selected].Clone()}, nil
}

// InsertShapes places copies of shapes centered on drop and appends them on
// top. The originals are left untouched.
func (e *Engine) InsertShapes(shapes []document.Shape, drop document.Point, templateID string) ([]Result, bool) {
	placed, ok := PlaceShapes(shapes, drop, templateID)
	if !ok {
		return nil, false
	}
	results := make([]Result, 0, len(placed))
	for _, s := range placed {
		results = append(results, e.appendShape(s))
	}
	return results, true
}

// UpsertShape replaces the shape with the same ID, or appends it.
func (e *Engine) UpsertShape(s document.Shape) int {
	if s.ID != "" {
		for i := range e.shapes {
			if e.shapes[i].ID == s.ID {
				e.shapes[i] = s.Clone()
				return i
			}
		}
	}
	e.shapes = append(e.shapes, s.Clone())
	return len(e.shapes) - 1
}

// RemoveShape deletes the shape with the given ID, keeping the selection on
// the same shape where it survives.
func (e *Engine) RemoveShape(id string) bool {
	for i := range e.shapes {
		if e.shapes[i].ID != id {
			continue
		}
		e.shapes = append(e.shapes[:i], e.shapes[i+1:]...)
		switch {
		case e.selected == i:
			e.selected = -1
			e.resetGesture()
		case e.selected > i:
			e.selected--
		}
		return true
	}
	return false
}

// --- Queries ---

// RenderCommands returns the full frame: background, shapes back to front,
// the in-progress gesture preview, pending polygon and selection overlay.
func (e *Engine) RenderCommands() []DrawCommand {
	commands := []DrawCommand{{
		Op:     "background",
		Fill:   e.background,
		Width:  e.canvasW,
		Height: e.canvasH,
	}}
	commands = append(commands, CompileDrawCommands(e.shapes)...)

	if e.drawing {
		kind, _ := e.tool.Kind()
		if s, ok := ShapeFromDrag(kind, e.drawStart, e.drawEnd, PreviewStyle(e.style), e.snap); ok {
			cmd := ShapeCommand(s)
			cmd.Op = "preview"
			commands = append(commands, cmd)
		}
	}
	if e.polygon.State() == BuilderBuilding {
		commands = append(commands, PolygonPreviewCommands(&e.polygon, PreviewStyle(e.style))...)
	}
	if ov, ok := e.Overlay(); ok {
		commands = append(commands, OverlayCommands(ov)...)
	}
	return commands
}

// Render returns RenderCommands as JSON.
func (e *Engine) Render() string {
	result, _ := DrawCommandsToJSON(e.RenderCommands())
	return result
}

// GetSelectionBounds returns the selection overlay box as JSON.
func (e *Engine) GetSelectionBounds() string {
	ov, _ := e.Overlay()
	return RectToJSON(ov.Box)
}

func (e *Engine) appendShape(s document.Shape) Result {
	if s.ID == "" && e.newShapeID != nil {
		s.ID = e.newShapeID()
	}
	e.shapes = append(e.shapes, s)
	return Result{Op: ResultCreated, Index: len(e.shapes) - 1, Shape: s.Clone()}
}

func (e *Engine) resetGesture() {
	e.drag = nil
	e.moved = false
	e.drawing = false
}

func samePoints(a, b []document.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
