package engine

import "github.com/apppaint/apppaint/internal/document"

const (
	// OverlayMargin inflates the selection box of lines and polygons.
	OverlayMargin = 5.0
	// HandleRadius is the pick radius of the resize handle, drawn as a 12 unit circle.
	HandleRadius = 6.0
)

// Overlay is the selection decoration for one shape.
type Overlay struct {
	Box    Rect           `json:"box"`
	Handle document.Point `json:"handle"`
}

// ComputeOverlay derives the selection box and resize handle anchor from the
// shape's current points. Polygonal shapes get an inflated box with the
// handle on the uninflated bottom-right corner.
func ComputeOverlay(s document.Shape) Overlay {
	if len(s.Points) == 0 {
		return Overlay{}
	}
	box := BoundingBox(s.Points)
	switch {
	case s.Kind == document.KindLine && len(s.Points) >= 2:
		return Overlay{Box: box.Inflate(OverlayMargin), Handle: s.Points[1]}
	case s.Kind.IsPolygonal():
		return Overlay{Box: box.Inflate(OverlayMargin), Handle: box.BottomRight()}
	default:
		return Overlay{Box: box, Handle: box.BottomRight()}
	}
}

// HandleHit reports whether p grabs the resize handle.
func (o Overlay) HandleHit(p document.Point) bool {
	return LineLength(o.Handle, p) <= HandleRadius
}
