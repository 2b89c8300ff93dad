package engine

import "github.com/apppaint/apppaint/internal/document"

// LineTolerance is the pick radius around a line segment.
const LineTolerance = 5.0

// HitTest reports whether p touches shape s.
func HitTest(s document.Shape, p document.Point) bool {
	if len(s.Points) < 2 {
		return false
	}
	switch s.Kind {
	case document.KindLine:
		return DistancePointToSegment(p, s.Points[0], s.Points[1]) <= LineTolerance
	case document.KindRectangle:
		return BoundingBox(s.Points[:2]).Contains(p.X, p.Y)
	case document.KindEllipse, document.KindCircle:
		return hitEllipse(BoundingBox(s.Points[:2]), p)
	case document.KindTriangle, document.KindPolygon:
		return PointInPolygon(p, s.Points)
	default:
		return false
	}
}

func hitEllipse(box Rect, p document.Point) bool {
	rx, ry := box.Width/2, box.Height/2
	if rx == 0 || ry == 0 {
		return false
	}
	cx, cy := box.Center()
	nx := (p.X - cx) / rx
	ny := (p.Y - cy) / ry
	return nx*nx+ny*ny <= 1
}

// HitTestShapes returns the index of the topmost shape under p, or -1.
// Shapes later in the slice are drawn above earlier ones.
func HitTestShapes(shapes []document.Shape, p document.Point) int {
	for i := len(shapes) - 1; i >= 0; i-- {
		if HitTest(shapes[i], p) {
			return i
		}
	}
	return -1
}
