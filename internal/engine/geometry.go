package engine

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/apppaint/apppaint/internal/document"
)

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func (r Rect) BottomRight() document.Point {
	return document.Point{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Inflate grows the rect by m on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}

func toVec(p document.Point) vec.Vec2 { return vec.Vec2{X: p.X, Y: p.Y} }

func fromVec(v vec.Vec2) document.Point { return document.Point{X: v.X, Y: v.Y} }

// DistancePointToSegment returns the distance from p to the closest point of
// segment ab. A zero-length segment measures to a.
func DistancePointToSegment(p, a, b document.Point) float64 {
	pv, av, bv := toVec(p), toVec(a), toVec(b)
	d := bv.Sub(av)
	lengthSquared := d.Dot(d)
	if lengthSquared == 0 {
		return pv.Sub(av).Length()
	}
	t := pv.Sub(av).Dot(d) / lengthSquared
	t = math.Max(0, math.Min(1, t))
	return pv.Sub(av.Add(d.Mul(t))).Length()
}

// PointInPolygon applies the even-odd rule. Points on the left or top edge of
// an axis-aligned polygon count as inside, points on the right or bottom edge
// as outside.
func PointInPolygon(p document.Point, vertices []document.Point) bool {
	inside := false
	n := len(vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

// BoundingBox returns the axis-aligned bounds of pts. pts must be non-empty.
func BoundingBox(pts []document.Point) Rect {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ShapesBounds returns the union bounds over every point of every shape, or
// false when there are no points at all.
func ShapesBounds(shapes []document.Shape) (Rect, bool) {
	var r Rect
	found := false
	for _, s := range shapes {
		if len(s.Points) == 0 {
			continue
		}
		b := BoundingBox(s.Points)
		if !found {
			r, found = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, found
}

func LineLength(a, b document.Point) float64 {
	return toVec(b).Sub(toVec(a)).Length()
}

// LineAngle returns the direction from a to b in degrees, in [0, 360).
func LineAngle(a, b document.Point) float64 {
	deg := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// SnapToAngle rotates end about start onto the nearest multiple of step
// degrees, keeping the segment length.
func SnapToAngle(start, end document.Point, step float64) document.Point {
	length := LineLength(start, end)
	if length == 0 || step <= 0 {
		return end
	}
	snapped := math.Round(LineAngle(start, end)/step) * step * math.Pi / 180
	dir := vec.Vec2{X: math.Cos(snapped), Y: math.Sin(snapped)}
	return fromVec(toVec(start).Add(dir.Mul(length)))
}
