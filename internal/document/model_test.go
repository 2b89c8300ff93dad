package document

import (
	"errors"
	"testing"
)

func TestShapeValidate(t *testing.T) {
	solid := Style{StrokeColor: "#000000", StrokeThickness: 2, StrokeStyle: StrokeSolid}

	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"line", Shape{Kind: KindLine, Points: []Point{{0, 0}, {10, 10}}, Style: solid}, false},
		{"line one point", Shape{Kind: KindLine, Points: []Point{{0, 0}}, Style: solid}, true},
		{"polygon two points", Shape{Kind: KindPolygon, Points: []Point{{0, 0}, {1, 1}}, Style: solid}, true},
		{"polygon three points", Shape{Kind: KindPolygon, Points: []Point{{0, 0}, {1, 1}, {2, 0}}, Style: solid}, false},
		{"triangle four points", Shape{Kind: KindTriangle, Points: []Point{{0, 0}, {1, 1}, {2, 0}, {3, 3}}, Style: solid}, true},
		{"zero thickness", Shape{Kind: KindRectangle, Points: []Point{{0, 0}, {1, 1}}, Style: Style{StrokeThickness: 0}}, true},
		{"filled without color", Shape{Kind: KindRectangle, Points: []Point{{0, 0}, {1, 1}}, Style: Style{StrokeThickness: 1, IsFilled: true}}, true},
		{"filled with color", Shape{Kind: KindRectangle, Points: []Point{{0, 0}, {1, 1}}, Style: Style{StrokeThickness: 1, IsFilled: true, FillColor: "#FFFFFF"}}, false},
		{"unknown kind", Shape{Kind: "Star", Points: []Point{{0, 0}, {1, 1}}, Style: solid}, true},
		{"unknown stroke style", Shape{Kind: KindLine, Points: []Point{{0, 0}, {1, 1}}, Style: Style{StrokeThickness: 1, StrokeStyle: "Wavy"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidShape) {
					t.Errorf("expected ErrInvalidShape, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDashPattern(t *testing.T) {
	tests := []struct {
		style StrokeStyle
		want  []float64
	}{
		{StrokeSolid, nil},
		{StrokeDash, []float64{4, 2}},
		{StrokeDot, []float64{1, 2}},
		{StrokeDashDot, []float64{4, 2, 1, 2}},
		{StrokeDashDotDot, []float64{4, 2, 1, 2, 1, 2}},
	}
	for _, tt := range tests {
		got := tt.style.DashPattern()
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.style, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.style, got, tt.want)
			}
		}
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	s := Shape{Kind: KindLine, Points: []Point{{1, 2}, {3, 4}}}
	c := s.Clone()
	c.Points[0].X = 99
	if s.Points[0].X != 1 {
		t.Errorf("clone shares points slice")
	}
}

func TestWithPointsKeepsReceiver(t *testing.T) {
	s := Shape{Kind: KindLine, Points: []Point{{1, 2}, {3, 4}}}
	pts := []Point{{5, 6}, {7, 8}}
	w := s.WithPoints(pts)
	if &w.Points[0] != &pts[0] {
		t.Errorf("WithPoints copied pts, want it adopted")
	}
	if s.Points[0] != (Point{1, 2}) {
		t.Errorf("receiver points = %v, want unchanged", s.Points)
	}
}

func TestProfileDefaultStyle(t *testing.T) {
	p := NewDefaultProfile("prof_test")
	st := p.DefaultStyle()
	if st.StrokeColor != "#000000" || st.StrokeThickness != 2 || st.FillColor != "#FFFFFF" {
		t.Errorf("unexpected style %+v", st)
	}
	if st.IsFilled {
		t.Error("default style should not be filled")
	}

	empty := Profile{}
	if got := empty.DefaultStyle(); got.StrokeThickness != 2 {
		t.Errorf("zero profile should fall back to thickness 2, got %v", got.StrokeThickness)
	}
}

func TestSampleTemplatesValid(t *testing.T) {
	n := 0
	templates := NewSampleTemplates("tmpl_a", "tmpl_b", func() string {
		n++
		return "shape_" + string(rune('a'+n))
	})
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	for _, tmpl := range templates {
		for _, s := range tmpl.Shapes {
			if err := s.Validate(); err != nil {
				t.Errorf("%s: invalid seed shape %s: %v", tmpl.Name, s.Kind, err)
			}
			if s.TemplateID != tmpl.ID {
				t.Errorf("seed shape parented to %q, want %q", s.TemplateID, tmpl.ID)
			}
		}
	}
	circle := templates[0].Shapes[1]
	if circle.Points[1] != (Point{600, 400}) {
		t.Errorf("seed circle not squared: %v", circle.Points)
	}
}

func TestNewTemplateFromProfile(t *testing.T) {
	p := &Profile{ID: "prof_x", DefaultCanvasWidth: 1024, DefaultCanvasHeight: 768, DefaultBackgroundColor: "#EEEEEE"}
	tmpl := NewTemplate("tmpl_x", "Drawing", p)
	if tmpl.Width != 1024 || tmpl.Height != 768 || tmpl.BackgroundColor != "#EEEEEE" || tmpl.ProfileID != "prof_x" {
		t.Errorf("unexpected template %+v", tmpl)
	}

	plain := NewTemplate("tmpl_y", "Drawing", nil)
	if plain.Width != 800 || plain.Height != 600 || plain.BackgroundColor != "#FFFFFF" {
		t.Errorf("unexpected defaults %+v", plain)
	}
}
