package engine

import (
	"testing"

	"github.com/apppaint/apppaint/internal/document"
)

func TestPolygonBuilderRejectsTwoVertices(t *testing.T) {
	var b PolygonBuilder
	if b.State() != BuilderIdle {
		t.Fatalf("zero builder state = %s", b.State())
	}

	b.AddVertex(pt(0, 0))
	b.AddVertex(pt(10, 0))
	if b.State() != BuilderBuilding {
		t.Fatalf("state = %s, want building", b.State())
	}

	if _, ok := b.Finish(document.DefaultStyle()); ok {
		t.Fatal("finish with 2 vertices should fail")
	}
	if b.State() != BuilderBuilding || len(b.Vertices()) != 2 {
		t.Errorf("failed finish changed state: %s, %v", b.State(), b.Vertices())
	}

	b.AddVertex(pt(5, 10))
	s, ok := b.Finish(document.DefaultStyle())
	if !ok {
		t.Fatal("finish with 3 vertices should succeed")
	}
	if s.Kind != document.KindPolygon || len(s.Points) != 3 {
		t.Errorf("unexpected shape %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("finished polygon invalid: %v", err)
	}
	if b.State() != BuilderIdle || len(b.Vertices()) != 0 || len(b.PreviewEdges()) != 0 {
		t.Error("builder not reset after finish")
	}
}

func TestPolygonBuilderPreviewEdges(t *testing.T) {
	var b PolygonBuilder
	b.AddVertex(pt(0, 0))
	if len(b.PreviewEdges()) != 0 {
		t.Error("single vertex should have no edges")
	}
	b.AddVertex(pt(10, 0))
	b.AddVertex(pt(10, 10))

	edges := b.PreviewEdges()
	want := []Edge{{A: pt(0, 0), B: pt(10, 0)}, {A: pt(10, 0), B: pt(10, 10)}}
	if len(edges) != len(want) {
		t.Fatalf("edges = %v", edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestPolygonBuilderCancel(t *testing.T) {
	var b PolygonBuilder
	b.Cancel()
	if b.State() != BuilderIdle {
		t.Error("cancel on idle builder should stay idle")
	}

	b.AddVertex(pt(0, 0))
	b.AddVertex(pt(1, 1))
	b.AddVertex(pt(2, 0))
	b.Cancel()
	if b.State() != BuilderIdle || len(b.Vertices()) != 0 || len(b.PreviewEdges()) != 0 {
		t.Error("cancel did not discard pending state")
	}
	if _, ok := b.Finish(document.DefaultStyle()); ok {
		t.Error("finish after cancel should fail")
	}
}

func TestPolygonBuilderVerticesAreCopies(t *testing.T) {
	var b PolygonBuilder
	b.AddVertex(pt(1, 1))
	v := b.Vertices()
	v[0] = pt(99, 99)
	if b.Vertices()[0] != pt(1, 1) {
		t.Error("Vertices exposes internal state")
	}
}
