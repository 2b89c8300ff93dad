package thumbnail

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/apppaint/apppaint/internal/document"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#00ff0080", color.RGBA{0, 255, 0, 128}, false},
		{"red", color.RGBA{255, 0, 0, 255}, false},
		{"  Blue ", color.RGBA{0, 0, 255, 255}, false},
		{"Transparent", color.RGBA{}, false},
		{"", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#GG0000", color.RGBA{}, true},
		{"nocolor", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func rgbaAt(t *testing.T, r *Renderer, shapes []document.Shape, x, y int) color.RGBA {
	t.Helper()
	return r.Draw(shapes, "#FFFFFF").RGBAAt(x, y)
}

func TestDrawFitsFilledRectangle(t *testing.T) {
	st := document.DefaultStyle()
	st.IsFilled = true
	st.FillColor = "#FF0000"
	shapes := []document.Shape{{
		Kind:   document.KindRectangle,
		Points: []document.Point{{X: 0, Y: 0}, {X: 100, Y: 100}},
		Style:  st,
	}}
	r := NewRenderer(200, 20)

	white := color.RGBA{255, 255, 255, 255}
	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"center is filled", 100, 100, color.RGBA{255, 0, 0, 255}},
		{"padding stays background", 5, 5, white},
		{"left edge is stroked", 20, 100, color.RGBA{0, 0, 0, 255}},
		{"outside bottom right", 195, 195, white},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rgbaAt(t, r, shapes, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestDrawDegenerateSetIsUnscaled(t *testing.T) {
	shapes := []document.Shape{{
		Kind:   document.KindLine,
		Points: []document.Point{{X: 0, Y: 50}, {X: 100, Y: 50}},
		Style:  document.DefaultStyle(),
	}}
	r := NewRenderer(200, 20)

	if got := rgbaAt(t, r, shapes, 50, 50); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("pixel on line = %v, want black", got)
	}
	if got := rgbaAt(t, r, shapes, 50, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel off line = %v, want white", got)
	}
}

func TestRenderEncodesPNG(t *testing.T) {
	data, err := NewRenderer(64, 4).Render(nil, "navy")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("bounds = %v, want 64x64", b)
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r != 0 || g != 0 || b>>8 != 128 {
		t.Errorf("background = (%d,%d,%d), want navy", r>>8, g>>8, b>>8)
	}
}

func TestDasherSplitsSegments(t *testing.T) {
	d := newDasher([]float64{4, 2}, 1)
	segs := d.split(document.Point{X: 0, Y: 0}, document.Point{X: 10, Y: 0})

	want := [][2]float64{{0, 4}, {6, 10}}
	if len(segs) != len(want) {
		t.Fatalf("got %d dashes, want %d: %v", len(segs), len(want), segs)
	}
	for i, w := range want {
		if segs[i][0].X != w[0] || segs[i][1].X != w[1] {
			t.Errorf("dash %d = %v..%v, want %v..%v", i, segs[i][0].X, segs[i][1].X, w[0], w[1])
		}
	}

	// The phase carries into the next segment: 10 consumed, next is an off gap of 2.
	next := d.split(document.Point{X: 10, Y: 0}, document.Point{X: 13, Y: 0})
	if len(next) != 1 || next[0][0].X != 12 || next[0][1].X != 13 {
		t.Errorf("continued dashes = %v, want one dash 12..13", next)
	}
}

func TestSolidDasherKeepsSegment(t *testing.T) {
	d := newDasher(nil, 3)
	segs := d.split(document.Point{X: 0, Y: 0}, document.Point{X: 5, Y: 5})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
}

func TestDasherBoundsDashCount(t *testing.T) {
	tests := []struct {
		name     string
		width    float64
		to       document.Point
		maxDash  int
		wantSegs int
	}{
		{"hairline floors dash length", 1e-18, document.Point{X: 100, Y: 0}, 100, -1},
		{"very long segment is solid", 1, document.Point{X: 1e12, Y: 0}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDasher(document.StrokeDash.DashPattern(), tt.width)
			segs := d.split(document.Point{}, tt.to)
			if len(segs) == 0 || len(segs) > tt.maxDash {
				t.Errorf("got %d dashes, want 1..%d", len(segs), tt.maxDash)
			}
			if tt.wantSegs > 0 && len(segs) != tt.wantSegs {
				t.Errorf("got %d dashes, want %d", len(segs), tt.wantSegs)
			}
		})
	}
}

func TestDrawThinDashedStrokeReturns(t *testing.T) {
	st := document.DefaultStyle()
	st.StrokeThickness = 1e-18
	st.StrokeStyle = document.StrokeDash
	shape := document.Shape{
		Kind:   document.KindLine,
		Points: []document.Point{{X: 0, Y: 0}, {X: 100, Y: 50}},
		Style:  st,
	}
	if err := shape.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	done := make(chan struct{})
	go func() {
		NewRenderer(100, 10).Draw([]document.Shape{shape}, "#FFFFFF")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Draw did not return for a dashed hairline")
	}
}
