package document

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// EncodePoints serializes points as [{"X":..,"Y":..},...].
func EncodePoints(pts []Point) (string, error) {
	if pts == nil {
		pts = []Point{}
	}
	data, err := json.Marshal(pts)
	if err != nil {
		return "", fmt.Errorf("encode points: %w", err)
	}
	return string(data), nil
}

func DecodePoints(data string) ([]Point, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var pts []Point
	if err := json.Unmarshal([]byte(data), &pts); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	return pts, nil
}

// ParseShapeKind maps a stored kind name to a ShapeKind. The legacy name
// "Oval" is read as an ellipse.
func ParseShapeKind(name string) (ShapeKind, error) {
	if strings.EqualFold(name, "Oval") {
		return KindEllipse, nil
	}
	for _, k := range Kinds {
		if strings.EqualFold(name, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, name)
}

func ParseStrokeStyle(name string) StrokeStyle {
	for _, s := range []StrokeStyle{StrokeSolid, StrokeDash, StrokeDot, StrokeDashDot, StrokeDashDotDot} {
		if strings.EqualFold(name, string(s)) {
			return s
		}
	}
	return StrokeSolid
}

// DecodeShape rebuilds a shape's geometry from its stored kind name and
// PointsData, normalizing it to the canonical form for that kind.
func DecodeShape(kindName, pointsData string) (ShapeKind, []Point, error) {
	kind, err := ParseShapeKind(kindName)
	if err != nil {
		return "", nil, err
	}
	pts, err := DecodePoints(pointsData)
	if err != nil {
		return "", nil, err
	}
	if kind == KindTriangle && len(pts) == 2 {
		pts = TriangleFromCorners(pts[0], pts[1])
	}
	if len(pts) < kind.MinPoints() {
		return "", nil, fmt.Errorf("%w: %s needs at least %d points, got %d", ErrInvalidShape, kind, kind.MinPoints(), len(pts))
	}
	return kind, Normalize(kind, pts), nil
}

// Normalize returns the canonical control points for kind: boxed kinds keep
// [topLeft, bottomRight], a circle is squared on its larger side. Other kinds
// are returned as a copy.
func Normalize(kind ShapeKind, pts []Point) []Point {
	if !kind.IsBoxed() || len(pts) < 2 {
		return append([]Point(nil), pts...)
	}
	a, b := pts[0], pts[1]
	left, top := math.Min(a.X, b.X), math.Min(a.Y, b.Y)
	w, h := math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)
	if kind == KindCircle {
		side := math.Max(w, h)
		w, h = side, side
	}
	return []Point{{X: left, Y: top}, {X: left + w, Y: top + h}}
}

// TriangleFromCorners builds an isosceles triangle inside the box spanned by
// start and end, apex on the start edge.
func TriangleFromCorners(start, end Point) []Point {
	return []Point{
		{X: (start.X + end.X) / 2, Y: start.Y},
		{X: start.X, Y: end.Y},
		{X: end.X, Y: end.Y},
	}
}
