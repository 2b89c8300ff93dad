package engine

import (
	"math"

	"github.com/apppaint/apppaint/internal/document"
)

const (
	MinFitScale = 0.1
	MaxFitScale = 5.0
)

// Fit is a uniform scale followed by a translation: p' = p*Scale + Offset.
type Fit struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

func (f Fit) Matrix() Matrix2D {
	return Translate(f.OffsetX, f.OffsetY).Multiply(Scale(f.Scale, f.Scale))
}

// ComputeAutoFit scales and centers shapes into a viewport leaving padding on
// every side. It returns false for an empty set or bounds with zero width or
// height.
func ComputeAutoFit(shapes []document.Shape, viewportW, viewportH, padding float64) (Fit, bool) {
	bounds, ok := ShapesBounds(shapes)
	if !ok || bounds.Width <= 0 || bounds.Height <= 0 {
		return Fit{}, false
	}

	scaleX := (viewportW - 2*padding) / bounds.Width
	scaleY := (viewportH - 2*padding) / bounds.Height
	scale := math.Max(MinFitScale, math.Min(MaxFitScale, math.Min(scaleX, scaleY)))

	return Fit{
		Scale:   scale,
		OffsetX: (viewportW-bounds.Width*scale)/2 - bounds.X*scale,
		OffsetY: (viewportH-bounds.Height*scale)/2 - bounds.Y*scale,
	}, true
}

// ApplyFit returns copies of shapes mapped through f, with stroke thickness
// scaled alongside the geometry.
func ApplyFit(shapes []document.Shape, f Fit) []document.Shape {
	m := f.Matrix()
	out := make([]document.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.WithPoints(m.Apply(s.Points))
		out[i].StrokeThickness = s.StrokeThickness * f.Scale
	}
	return out
}

// ComputePlacementOffset returns the translation that centers the union
// bounds of shapes on drop, or false when there is nothing to place.
func ComputePlacementOffset(shapes []document.Shape, drop document.Point) (document.Point, bool) {
	bounds, ok := ShapesBounds(shapes)
	if !ok {
		return document.Point{}, false
	}
	cx, cy := bounds.Center()
	return document.Point{X: drop.X - cx, Y: drop.Y - cy}, true
}

// PlaceShapes copies shapes centered on drop and re-parents them to
// templateID. Copies carry no ID so the store assigns fresh ones.
func PlaceShapes(shapes []document.Shape, drop document.Point, templateID string) ([]document.Shape, bool) {
	offset, ok := ComputePlacementOffset(shapes, drop)
	if !ok {
		return nil, false
	}
	out := make([]document.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = shift(s, offset.X, offset.Y)
		out[i].ID = ""
		out[i].TemplateID = templateID
	}
	return out, true
}
