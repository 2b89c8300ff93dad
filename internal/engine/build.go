package engine

import "github.com/apppaint/apppaint/internal/document"

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []interface{}

// bezierK approximates a quarter circle with one cubic bezier.
// k = 4 * (sqrt(2) - 1) / 3
const bezierK = 0.5522847498

// BuildPath generates canvas-space path commands for a shape.
func BuildPath(s document.Shape) []PathCommand {
	if len(s.Points) < 2 {
		return nil
	}
	switch {
	case s.Kind == document.KindLine:
		return linePath(s.Points[0], s.Points[1])
	case s.Kind == document.KindRectangle:
		return rectPath(BoundingBox(s.Points[:2]))
	case s.Kind == document.KindEllipse || s.Kind == document.KindCircle:
		return ellipsePath(BoundingBox(s.Points[:2]))
	case s.Kind.IsPolygonal():
		return polygonPath(s.Points, true)
	}
	return nil
}

func linePath(a, b document.Point) []PathCommand {
	return []PathCommand{
		{"M", a.X, a.Y},
		{"L", b.X, b.Y},
	}
}

func rectPath(r Rect) []PathCommand {
	return []PathCommand{
		{"M", r.X, r.Y},
		{"L", r.X + r.Width, r.Y},
		{"L", r.X + r.Width, r.Y + r.Height},
		{"L", r.X, r.Y + r.Height},
		{"Z"},
	}
}

// ellipsePath approximates the ellipse inscribed in r with four bezier curves.
func ellipsePath(r Rect) []PathCommand {
	cx, cy := r.Center()
	rx, ry := r.Width/2, r.Height/2
	kx, ky := rx*bezierK, ry*bezierK

	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

func polygonPath(pts []document.Point, closed bool) []PathCommand {
	path := make([]PathCommand, 0, len(pts)+1)
	for i, p := range pts {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	if closed {
		path = append(path, PathCommand{"Z"})
	}
	return path
}

func circlePath(c document.Point, radius float64) []PathCommand {
	return ellipsePath(Rect{X: c.X - radius, Y: c.Y - radius, Width: 2 * radius, Height: 2 * radius})
}
