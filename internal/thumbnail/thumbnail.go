// Package thumbnail rasterizes shape sets to small PNG previews.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/vector"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
)

const (
	// ellipseSegments is the number of chords used to flatten an ellipse outline.
	ellipseSegments = 64

	// minDash is the shortest dash or gap drawn, in pixels.
	minDash = 0.5
	// maxDashes caps the dashes per segment; longer runs are drawn solid.
	maxDashes = 4096
)

var transparent = color.RGBA{}

// ParseColor accepts CSS color names, #RRGGBB and #RRGGBBAA.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if name == "transparent" {
		return transparent, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	if !strings.HasPrefix(name, "#") || (len(name) != 7 && len(name) != 9) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	var channels [4]uint8
	channels[3] = 255
	for i := 0; 1+2*i < len(name); i++ {
		v, err := strconv.ParseUint(name[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		channels[i] = uint8(v)
	}
	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}

func colorOr(s string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// Renderer draws shapes into a square image. It is not safe for concurrent
// use; it keeps its rasterizer between calls.
type Renderer struct {
	Size    int
	Padding float64

	raster *vector.Rasterizer
}

func NewRenderer(size int, padding float64) *Renderer {
	return &Renderer{
		Size:    size,
		Padding: padding,
		raster:  vector.NewRasterizer(size, size),
	}
}

// Render fits shapes into the renderer's square and encodes the result as PNG.
// A set whose bounds are degenerate is drawn unscaled.
func (r *Renderer) Render(shapes []document.Shape, background string) ([]byte, error) {
	img := r.Draw(shapes, background)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw is Render without the PNG encoding.
func (r *Renderer) Draw(shapes []document.Shape, background string) *image.RGBA {
	size := float64(r.Size)
	img := image.NewRGBA(image.Rect(0, 0, r.Size, r.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorOr(background, color.RGBA{255, 255, 255, 255})), image.Point{}, draw.Src)

	if fit, ok := engine.ComputeAutoFit(shapes, size, size, r.Padding); ok {
		shapes = engine.ApplyFit(shapes, fit)
	}

	for _, s := range shapes {
		outline, closed := outlineOf(s)
		if len(outline) < 2 {
			continue
		}
		if s.IsFilled && closed {
			r.fill(img, outline, colorOr(s.FillColor, transparent))
		}
		r.stroke(img, outline, closed, s.StrokeThickness, s.StrokeStyle.DashPattern(), colorOr(s.StrokeColor, color.RGBA{A: 255}))
	}
	return img
}

func (r *Renderer) fill(dst *image.RGBA, pts []document.Point, c color.RGBA) {
	if c.A == 0 {
		return
	}
	r.raster.Reset(r.Size, r.Size)
	r.raster.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.raster.LineTo(float32(p.X), float32(p.Y))
	}
	r.raster.ClosePath()
	r.raster.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// stroke draws every visible dash as a quad with square caps. All quads wind
// the same way, so overlaps saturate instead of cancelling.
func (r *Renderer) stroke(dst *image.RGBA, pts []document.Point, closed bool, width float64, dash []float64, c color.RGBA) {
	if c.A == 0 || width <= 0 {
		return
	}
	if closed {
		pts = append(pts[:len(pts):len(pts)], pts[0])
	}

	r.raster.Reset(r.Size, r.Size)
	d := newDasher(dash, width)
	for i := 1; i < len(pts); i++ {
		for _, seg := range d.split(pts[i-1], pts[i]) {
			r.quad(seg[0], seg[1], width/2)
		}
	}
	r.raster.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *Renderer) quad(a, b document.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length*half, dy/length*half
	// Extend both ends by half the width so joints are covered.
	a = document.Point{X: a.X - ux, Y: a.Y - uy}
	b = document.Point{X: b.X + ux, Y: b.Y + uy}
	nx, ny := -uy, ux

	r.raster.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	r.raster.LineTo(float32(b.X+nx), float32(b.Y+ny))
	r.raster.LineTo(float32(b.X-nx), float32(b.Y-ny))
	r.raster.LineTo(float32(a.X-nx), float32(a.Y-ny))
	r.raster.ClosePath()
}

// outlineOf flattens a shape into a polyline, reporting whether it is closed.
func outlineOf(s document.Shape) ([]document.Point, bool) {
	switch s.Kind {
	case document.KindLine:
		return s.Points[:2], false
	case document.KindRectangle:
		b := engine.BoundingBox(s.Points)
		return []document.Point{
			{X: b.X, Y: b.Y},
			{X: b.X + b.Width, Y: b.Y},
			{X: b.X + b.Width, Y: b.Y + b.Height},
			{X: b.X, Y: b.Y + b.Height},
		}, true
	case document.KindEllipse, document.KindCircle:
		b := engine.BoundingBox(s.Points)
		cx, cy := b.Center()
		rx, ry := b.Width/2, b.Height/2
		out := make([]document.Point, ellipseSegments)
		for i := range out {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			out[i] = document.Point{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)}
		}
		return out, true
	default:
		return s.Points, true
	}
}

// dasher splits segments into the visible parts of a dash pattern whose
// lengths are multiples of the stroke width. The phase carries across
// segments of one outline.
type dasher struct {
	pattern  []float64
	shortest float64
	index    int
	left     float64
}

func newDasher(pattern []float64, width float64) *dasher {
	if len(pattern) == 0 {
		return &dasher{}
	}
	scaled := make([]float64, len(pattern))
	shortest := math.Inf(1)
	for i, v := range pattern {
		scaled[i] = math.Max(v*width, minDash)
		shortest = math.Min(shortest, scaled[i])
	}
	return &dasher{pattern: scaled, shortest: shortest, left: scaled[0]}
}

func (d *dasher) split(a, b document.Point) [][2]document.Point {
	if len(d.pattern) == 0 {
		return [][2]document.Point{{a, b}}
	}
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if length == 0 {
		return nil
	}
	if length/d.shortest > maxDashes {
		return [][2]document.Point{{a, b}}
	}

	var out [][2]document.Point
	at := func(t float64) document.Point {
		return document.Point{X: a.X + (b.X-a.X)*t/length, Y: a.Y + (b.Y-a.Y)*t/length}
	}
	for pos := 0.0; pos < length; {
		step := math.Min(d.left, length-pos)
		if d.index%2 == 0 {
			out = append(out, [2]document.Point{at(pos), at(pos + step)})
		}
		pos += step
		d.left -= step
		if d.left <= 0 {
			d.index = (d.index + 1) % len(d.pattern)
			d.left = d.pattern[d.index]
		}
	}
	return out
}
