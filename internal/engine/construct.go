package engine

import (
	"math"

	"github.com/apppaint/apppaint/internal/document"
)

const (
	// SnapAngleStep is the angle increment a snapped line is rotated onto.
	SnapAngleStep = 45.0

	minGesture = 0.01
)

// ShapeFromDrag builds a shape of kind from a press at start and a release
// at end. Polygons are built vertex by vertex and return false here.
func ShapeFromDrag(kind document.ShapeKind, start, end document.Point, style document.Style, snap bool) (document.Shape, bool) {
	s := document.Shape{Kind: kind, Style: style}
	switch kind {
	case document.KindLine:
		if snap {
			end = SnapToAngle(start, end, SnapAngleStep)
		}
		if math.Abs(end.X-start.X) < minGesture && math.Abs(end.Y-start.Y) < minGesture {
			end = start.Add(0.1, 0.1)
		}
		s.Points = []document.Point{start, end}
	case document.KindRectangle:
		if snap {
			s.Points = document.Normalize(document.KindCircle, []document.Point{start, end})
		} else {
			s.Points = document.Normalize(kind, []document.Point{start, end})
		}
	case document.KindEllipse, document.KindCircle:
		s.Points = document.Normalize(kind, []document.Point{start, end})
	case document.KindTriangle:
		s.Points = document.TriangleFromCorners(start, end)
	default:
		return document.Shape{}, false
	}
	return s, true
}

func InCanvas(p document.Point, w, h float64) bool {
	return p.X >= 0 && p.X <= w && p.Y >= 0 && p.Y <= h
}

func ClampToCanvas(p document.Point, w, h float64) document.Point {
	return document.Point{
		X: math.Max(0, math.Min(w, p.X)),
		Y: math.Max(0, math.Min(h, p.Y)),
	}
}

// PreviewStyle thins the stroke of a shape still being dragged out.
func PreviewStyle(st document.Style) document.Style {
	st.StrokeThickness = math.Max(1, st.StrokeThickness-1)
	return st
}
