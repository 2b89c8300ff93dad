package engine

import (
	"math"

	"github.com/apppaint/apppaint/internal/document"
)

const (
	// MinBoxSize is the smallest width or height a resize leaves on a boxed shape.
	MinBoxSize = 20.0
	// MinPolygonScale keeps a polygon resize from collapsing or mirroring it.
	MinPolygonScale = 0.1
)

// Move translates every control point of s by (dx, dy), clamping the shape's
// bounding box to the canvas [0, canvasW] x [0, canvasH]. A shape larger than
// the canvas is pinned to the origin on that axis.
func Move(s document.Shape, dx, dy, canvasW, canvasH float64) document.Shape {
	if len(s.Points) == 0 {
		return s.Clone()
	}
	box := BoundingBox(s.Points)
	x := clampAxis(box.X+dx, box.Width, canvasW)
	y := clampAxis(box.Y+dy, box.Height, canvasH)
	return shift(s, x-box.X, y-box.Y)
}

func clampAxis(pos, size, limit float64) float64 {
	return math.Max(0, math.Min(limit-size, pos))
}

func shift(s document.Shape, dx, dy float64) document.Shape {
	pts := make([]document.Point, len(s.Points))
	for i, p := range s.Points {
		pts[i] = p.Add(dx, dy)
	}
	return s.WithPoints(pts)
}

// Resize applies one resize step of (dx, dy) to s, dragging the handle away
// from the fixed anchor. Results are not clamped to the canvas.
func Resize(s document.Shape, dx, dy float64) document.Shape {
	switch {
	case s.Kind == document.KindLine && len(s.Points) >= 2:
		pts := append([]document.Point(nil), s.Points...)
		pts[1] = pts[1].Add(dx, dy)
		return s.WithPoints(pts)

	case s.Kind.IsBoxed() && len(s.Points) >= 2:
		box := BoundingBox(s.Points[:2])
		w := math.Max(MinBoxSize, box.Width+dx)
		h := math.Max(MinBoxSize, box.Height+dy)
		if s.Kind == document.KindCircle {
			side := math.Max(w, h)
			w, h = side, side
		}
		return s.WithPoints([]document.Point{
			{X: box.X, Y: box.Y},
			{X: box.X + w, Y: box.Y + h},
		})

	case s.Kind.IsPolygonal() && len(s.Points) > 0:
		box := BoundingBox(s.Points)
		sx, sy := 1.0, 1.0
		if box.Width > 0 {
			sx = math.Max(MinPolygonScale, (box.Width+dx)/box.Width)
		}
		if box.Height > 0 {
			sy = math.Max(MinPolygonScale, (box.Height+dy)/box.Height)
		}
		m := Translate(box.X, box.Y).Multiply(Scale(sx, sy)).Multiply(Translate(-box.X, -box.Y))
		return s.WithPoints(m.Apply(s.Points))
	}
	return s.Clone()
}

// DragMode distinguishes a move gesture from a resize gesture.
type DragMode int

const (
	DragNone DragMode = iota
	DragMove
	DragResize
)

// Drag tracks one pointer gesture on a selected shape. A move is applied as
// the cumulative delta from the gesture start against the original points; a
// resize is applied incrementally with the anchor advanced after each step.
// Everything but the geometry is taken from the current shape.
type Drag struct {
	Mode   DragMode
	origin []document.Point
	anchor document.Point
}

func BeginMove(s document.Shape, at document.Point) *Drag {
	return &Drag{Mode: DragMove, origin: s.Clone().Points, anchor: at}
}

func BeginResize(s document.Shape, at document.Point) *Drag {
	return &Drag{Mode: DragResize, origin: s.Clone().Points, anchor: at}
}

// Anchor returns the point the next delta is measured from.
func (d *Drag) Anchor() document.Point { return d.anchor }

// Update returns the shape for a pointer now at p. current is the shape as
// it stands after the previous update.
func (d *Drag) Update(current document.Shape, p document.Point, canvasW, canvasH float64) document.Shape {
	dx, dy := p.X-d.anchor.X, p.Y-d.anchor.Y
	switch d.Mode {
	case DragMove:
		return Move(current.WithPoints(d.origin), dx, dy, canvasW, canvasH)
	case DragResize:
		d.anchor = p
		return Resize(current, dx, dy)
	default:
		return current
	}
}
