package engine

import "github.com/apppaint/apppaint/internal/document"

type BuilderState int

const (
	BuilderIdle BuilderState = iota
	BuilderBuilding
)

func (s BuilderState) String() string {
	if s == BuilderBuilding {
		return "building"
	}
	return "idle"
}

// Edge is a preview segment between two committed polygon vertices.
type Edge struct {
	A document.Point `json:"a"`
	B document.Point `json:"b"`
}

// PolygonBuilder accumulates clicked vertices into a pending polygon.
// The zero value is an idle builder.
type PolygonBuilder struct {
	vertices []document.Point
	edges    []Edge
}

func (b *PolygonBuilder) State() BuilderState {
	if len(b.vertices) == 0 {
		return BuilderIdle
	}
	return BuilderBuilding
}

// AddVertex appends p, starting a polygon if the builder is idle.
func (b *PolygonBuilder) AddVertex(p document.Point) {
	if n := len(b.vertices); n > 0 {
		b.edges = append(b.edges, Edge{A: b.vertices[n-1], B: p})
	}
	b.vertices = append(b.vertices, p)
}

func (b *PolygonBuilder) Vertices() []document.Point {
	return append([]document.Point(nil), b.vertices...)
}

func (b *PolygonBuilder) PreviewEdges() []Edge {
	return append([]Edge(nil), b.edges...)
}

// Finish emits the pending polygon and resets the builder. With fewer than
// three vertices it returns false and leaves the builder untouched.
func (b *PolygonBuilder) Finish(style document.Style) (document.Shape, bool) {
	if len(b.vertices) < document.KindPolygon.MinPoints() {
		return document.Shape{}, false
	}
	s := document.Shape{
		Kind:   document.KindPolygon,
		Points: b.vertices,
		Style:  style,
	}
	b.vertices, b.edges = nil, nil
	return s, true
}

// Cancel discards any pending vertices.
func (b *PolygonBuilder) Cancel() {
	b.vertices, b.edges = nil, nil
}
