package engine

import (
	"testing"

	"github.com/apppaint/apppaint/internal/document"
)

func TestComputeAutoFitCentering(t *testing.T) {
	shapes := []document.Shape{shape(document.KindRectangle, pt(0, 0), pt(100, 50))}

	fit, ok := ComputeAutoFit(shapes, 200, 200, 20)
	if !ok {
		t.Fatal("expected a fit")
	}
	if !approx(fit.Scale, 1.6) {
		t.Errorf("scale = %v, want 1.6", fit.Scale)
	}

	fitted := ApplyFit(shapes, fit)
	box := BoundingBox(fitted[0].Points)
	cx, cy := box.Center()
	if !approx(cx, 100) || !approx(cy, 100) {
		t.Errorf("fitted center = (%v,%v), want (100,100)", cx, cy)
	}
	if !approx(fitted[0].StrokeThickness, shapes[0].StrokeThickness*1.6) {
		t.Errorf("thickness = %v, want scaled", fitted[0].StrokeThickness)
	}
	if shapes[0].Points[1] != pt(100, 50) {
		t.Error("ApplyFit mutated its input")
	}
}

func TestComputeAutoFitClamp(t *testing.T) {
	tests := []struct {
		name   string
		shapes []document.Shape
		want   float64
	}{
		{"tiny content clamps to max", []document.Shape{shape(document.KindRectangle, pt(0, 0), pt(1, 1))}, MaxFitScale},
		{"huge content clamps to min", []document.Shape{shape(document.KindRectangle, pt(0, 0), pt(100000, 100000))}, MinFitScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, ok := ComputeAutoFit(tt.shapes, 200, 200, 20)
			if !ok {
				t.Fatal("expected a fit")
			}
			if !approx(fit.Scale, tt.want) {
				t.Errorf("scale = %v, want %v", fit.Scale, tt.want)
			}
		})
	}
}

func TestComputeAutoFitAborts(t *testing.T) {
	tests := []struct {
		name   string
		shapes []document.Shape
	}{
		{"empty", nil},
		{"horizontal line only", []document.Shape{shape(document.KindLine, pt(0, 10), pt(100, 10))}},
		{"vertical line only", []document.Shape{shape(document.KindLine, pt(10, 0), pt(10, 100))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ComputeAutoFit(tt.shapes, 200, 200, 20); ok {
				t.Error("expected auto-fit to abort")
			}
		})
	}
}

func TestComputeAutoFitUnionOfShapes(t *testing.T) {
	shapes := []document.Shape{
		shape(document.KindLine, pt(100, 100), pt(200, 100)),
		shape(document.KindRectangle, pt(150, 50), pt(300, 150)),
	}
	fit, ok := ComputeAutoFit(shapes, 400, 300, 0)
	if !ok {
		t.Fatal("expected a fit")
	}
	// content is 200x100: min(400/200, 300/100) = 2
	if !approx(fit.Scale, 2) {
		t.Errorf("scale = %v, want 2", fit.Scale)
	}
	x, y := fit.Matrix().TransformPoint(100, 50)
	if !approx(x, 0) || !approx(y, 50) {
		t.Errorf("top-left maps to (%v,%v), want (0,50)", x, y)
	}
}

func TestComputePlacementOffset(t *testing.T) {
	shapes := []document.Shape{
		shape(document.KindRectangle, pt(0, 0), pt(100, 100)),
		shape(document.KindLine, pt(25, 50), pt(75, 50)),
	}
	offset, ok := ComputePlacementOffset(shapes, pt(200, 200))
	if !ok {
		t.Fatal("expected an offset")
	}
	if offset != pt(150, 150) {
		t.Errorf("offset = %v, want (150,150)", offset)
	}

	placed, ok := PlaceShapes(shapes, pt(200, 200), "tmpl_dest")
	if !ok {
		t.Fatal("expected placed shapes")
	}
	bounds, _ := ShapesBounds(placed)
	cx, cy := bounds.Center()
	if cx != 200 || cy != 200 {
		t.Errorf("placed center = (%v,%v), want (200,200)", cx, cy)
	}
	for _, s := range placed {
		if s.TemplateID != "tmpl_dest" || s.ID != "" {
			t.Errorf("placed shape not re-parented: %+v", s)
		}
	}
	if shapes[0].Points[0] != pt(0, 0) {
		t.Error("PlaceShapes mutated its input")
	}
}

func TestPlacementEmpty(t *testing.T) {
	if _, ok := ComputePlacementOffset(nil, pt(1, 1)); ok {
		t.Error("expected no offset for empty set")
	}
	if _, ok := PlaceShapes(nil, pt(1, 1), "tmpl"); ok {
		t.Error("expected no placement for empty set")
	}
}
