package template

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
	"github.com/apppaint/apppaint/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewService(st, Options{PreviewPadding: 20, ThumbnailSize: 100}), st
}

func rect(x1, y1, x2, y2 float64) document.Shape {
	return document.Shape{
		Kind:   document.KindRectangle,
		Points: []document.Point{{X: x1, Y: y1}, {X: x2, Y: y2}},
		Style:  document.DefaultStyle(),
	}
}

func TestCreateUsesActiveProfileDefaults(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	p := document.NewDefaultProfile("prof_1")
	p.DefaultCanvasWidth, p.DefaultCanvasHeight = 1024, 768
	p.DefaultBackgroundColor = "#EEEEEE"
	if err := st.CreateProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := st.SetActiveProfile(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	tmpl, err := svc.Create(ctx, Draft{Name: "  Sketch  "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tmpl.Name != "Sketch" || tmpl.Width != 1024 || tmpl.Height != 768 || tmpl.BackgroundColor != "#EEEEEE" {
		t.Errorf("got %+v, want profile defaults", tmpl)
	}
	if tmpl.ProfileID != p.ID {
		t.Errorf("ProfileID = %q, want %q", tmpl.ProfileID, p.ID)
	}
}

func TestCreateWithoutProfile(t *testing.T) {
	svc, _ := newTestService(t)

	tmpl, err := svc.Create(context.Background(), Draft{Name: "Plain"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tmpl.Width != 800 || tmpl.Height != 600 || tmpl.BackgroundColor != "#FFFFFF" {
		t.Errorf("got %vx%v %s, want 800x600 #FFFFFF", tmpl.Width, tmpl.Height, tmpl.BackgroundColor)
	}
}

func TestCreateUsesConfiguredCanvas(t *testing.T) {
	svc := NewService(store.NewMemory(), Options{CanvasWidth: 1280, CanvasHeight: 720})

	tmpl, err := svc.Create(context.Background(), Draft{Name: "Wide"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tmpl.Width != 1280 || tmpl.Height != 720 {
		t.Errorf("got %vx%v, want 1280x720", tmpl.Width, tmpl.Height)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Create(context.Background(), Draft{Name: " "}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("err = %v, want ErrNameRequired", err)
	}
}

func TestCreateRejectsInvalidShape(t *testing.T) {
	svc, _ := newTestService(t)
	bad := rect(0, 0, 10, 10)
	bad.StrokeThickness = 0

	_, err := svc.Create(context.Background(), Draft{Name: "Bad", Shapes: []document.Shape{bad}})
	if !errors.Is(err, document.ErrInvalidShape) {
		t.Errorf("err = %v, want ErrInvalidShape", err)
	}
}

func TestSaveDrawing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("unknown id creates", func(t *testing.T) {
		tmpl, err := svc.SaveDrawing(ctx, "tmpl_missing", Draft{Name: "New", Shapes: []document.Shape{rect(0, 0, 10, 10)}})
		if err != nil {
			t.Fatalf("SaveDrawing: %v", err)
		}
		if tmpl.ID == "tmpl_missing" || tmpl.ID == "" {
			t.Errorf("ID = %q, want a fresh id", tmpl.ID)
		}
		got, err := svc.Get(ctx, tmpl.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Shapes) != 1 || got.Shapes[0].ID == "" || got.Shapes[0].TemplateID != tmpl.ID {
			t.Errorf("stored shapes = %+v", got.Shapes)
		}
	})

	t.Run("existing id replaces shapes", func(t *testing.T) {
		tmpl, err := svc.Create(ctx, Draft{Name: "Drawing", Shapes: []document.Shape{rect(0, 0, 10, 10), rect(5, 5, 20, 20)}})
		if err != nil {
			t.Fatal(err)
		}
		keep := tmpl.Shapes[1]
		keep.Points = []document.Point{{X: 50, Y: 50}, {X: 60, Y: 60}}

		saved, err := svc.SaveDrawing(ctx, tmpl.ID, Draft{Name: "Renamed", Shapes: []document.Shape{keep}})
		if err != nil {
			t.Fatalf("SaveDrawing: %v", err)
		}
		if saved.ID != tmpl.ID || saved.Name != "Renamed" {
			t.Errorf("saved = %q %q", saved.ID, saved.Name)
		}

		got, err := svc.Get(ctx, tmpl.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Shapes) != 1 || got.Shapes[0].ID != keep.ID || got.Shapes[0].Points[0].X != 50 {
			t.Errorf("stored shapes = %+v, want only %s moved", got.Shapes, keep.ID)
		}
	})

	t.Run("invalid shape leaves drawing untouched", func(t *testing.T) {
		tmpl, err := svc.Create(ctx, Draft{Name: "Orig", Shapes: []document.Shape{rect(0, 0, 10, 10)}})
		if err != nil {
			t.Fatal(err)
		}
		bad := rect(0, 0, 5, 5)
		bad.StrokeThickness = 0

		_, err = svc.SaveDrawing(ctx, tmpl.ID, Draft{Name: "Renamed", Width: 300, Height: 300, Shapes: []document.Shape{bad}})
		if !errors.Is(err, document.ErrInvalidShape) {
			t.Fatalf("err = %v, want ErrInvalidShape", err)
		}

		got, err := svc.Get(ctx, tmpl.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Orig" || got.Width != tmpl.Width || got.Height != tmpl.Height || len(got.Shapes) != 1 {
			t.Errorf("stored = %q %vx%v with %d shapes, want unchanged", got.Name, got.Width, got.Height, len(got.Shapes))
		}
	})
}

func TestSaveShapeAsTemplate(t *testing.T) {
	svc, _ := newTestService(t)
	sh := rect(300, 300, 400, 350)
	sh.ID = "shape_existing"

	tmpl, err := svc.SaveShapeAsTemplate(context.Background(), "Box", sh)
	if err != nil {
		t.Fatalf("SaveShapeAsTemplate: %v", err)
	}
	if !tmpl.IsTemplate || tmpl.Width != 200 || tmpl.Height != 200 || tmpl.BackgroundColor != "#FFFFFF" {
		t.Errorf("template = %+v", tmpl)
	}
	if len(tmpl.Shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(tmpl.Shapes))
	}
	got := tmpl.Shapes[0]
	if got.ID == sh.ID {
		t.Errorf("shape kept source id %q", got.ID)
	}
	if got.Points[0] != sh.Points[0] || got.Points[1] != sh.Points[1] {
		t.Errorf("points = %v, want unchanged %v", got.Points, sh.Points)
	}
}

func TestInsert(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	source, err := svc.Create(ctx, Draft{Name: "Src", IsTemplate: true, Shapes: []document.Shape{rect(0, 0, 100, 50)}})
	if err != nil {
		t.Fatal(err)
	}
	target, err := svc.Create(ctx, Draft{Name: "Dst", Width: 800, Height: 600, Shapes: []document.Shape{rect(1, 1, 2, 2)}})
	if err != nil {
		t.Fatal(err)
	}
	empty, err := svc.Create(ctx, Draft{Name: "Empty", IsTemplate: true})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		sourceID   string
		drop       *document.Point
		wantCenter document.Point
		wantErr    error
	}{
		{"at drop point", source.ID, &document.Point{X: 200, Y: 100}, document.Point{X: 200, Y: 100}, nil},
		{"at canvas center", source.ID, nil, document.Point{X: 400, Y: 300}, nil},
		{"empty source", empty.ID, nil, document.Point{}, ErrEmptyTemplate},
		{"missing source", "tmpl_missing", nil, document.Point{}, ErrEmptyTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placed, err := svc.Insert(ctx, target.ID, tt.sourceID, tt.drop)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(placed) != 1 {
				t.Fatalf("placed %d shapes, want 1", len(placed))
			}
			b := engine.BoundingBox(placed[0].Points)
			cx, cy := b.Center()
			if math.Abs(cx-tt.wantCenter.X) > 1e-9 || math.Abs(cy-tt.wantCenter.Y) > 1e-9 {
				t.Errorf("center = (%v,%v), want %v", cx, cy, tt.wantCenter)
			}
			if placed[0].TemplateID != target.ID || placed[0].ID == source.Shapes[0].ID {
				t.Errorf("placed shape not re-parented: %+v", placed[0])
			}
		})
	}

	got, err := svc.Get(ctx, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Shapes) != 3 {
		t.Errorf("target has %d shapes, want 3", len(got.Shapes))
	}
	src, _ := svc.Get(ctx, source.ID)
	if src.Shapes[0].Points[0] != (document.Point{X: 0, Y: 0}) {
		t.Errorf("source shape moved: %v", src.Shapes[0].Points)
	}
}

func TestInsertMissingTarget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	source, err := svc.Create(ctx, Draft{Name: "Src", Shapes: []document.Shape{rect(0, 0, 10, 10)}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Insert(ctx, "tmpl_missing", source.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPreview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	fitted, err := svc.Create(ctx, Draft{Name: "Fit", Shapes: []document.Shape{rect(0, 0, 100, 100)}})
	if err != nil {
		t.Fatal(err)
	}
	line, err := svc.Create(ctx, Draft{Name: "Line", Shapes: []document.Shape{{
		Kind:   document.KindLine,
		Points: []document.Point{{X: 0, Y: 10}, {X: 50, Y: 10}},
		Style:  document.DefaultStyle(),
	}}})
	if err != nil {
		t.Fatal(err)
	}

	p, err := svc.Preview(ctx, fitted.ID, 240, 240)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !p.Fitted || math.Abs(p.Fit.Scale-2) > 1e-9 {
		t.Errorf("fit = %+v, want scale 2", p.Fit)
	}
	if len(p.Commands) != 1 || p.Shapes[0].Points[0] != (document.Point{X: 20, Y: 20}) {
		t.Errorf("fitted shapes = %v", p.Shapes[0].Points)
	}

	p, err = svc.Preview(ctx, line.ID, 240, 240)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Fitted {
		t.Errorf("degenerate set was fitted: %+v", p.Fit)
	}
	if p.Shapes[0].Points[1] != (document.Point{X: 50, Y: 10}) {
		t.Errorf("degenerate shapes changed: %v", p.Shapes[0].Points)
	}

	if _, err := svc.Preview(ctx, "tmpl_missing", 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestThumbnail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tmpl, err := svc.Create(ctx, Draft{Name: "Thumb", Shapes: []document.Shape{rect(0, 0, 100, 100)}})
	if err != nil {
		t.Fatal(err)
	}

	data, err := svc.Thumbnail(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Errorf("not a PNG: % x", data[:min(8, len(data))])
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tmpl, err := svc.Create(ctx, Draft{Name: "Gone"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, tmpl.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, tmpl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}
