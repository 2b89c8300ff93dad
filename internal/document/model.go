package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidShape = errors.New("invalid shape")

// Point is a canvas coordinate. The JSON field names match the stored
// PointsData column.
type Point struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

type ShapeKind string

const (
	KindLine      ShapeKind = "Line"
	KindRectangle ShapeKind = "Rectangle"
	KindEllipse   ShapeKind = "Ellipse"
	KindCircle    ShapeKind = "Circle"
	KindTriangle  ShapeKind = "Triangle"
	KindPolygon   ShapeKind = "Polygon"
)

// Kinds lists every shape kind in toolbar order.
var Kinds = []ShapeKind{KindLine, KindRectangle, KindEllipse, KindCircle, KindTriangle, KindPolygon}

// MinPoints returns the number of control points a shape of this kind needs.
func (k ShapeKind) MinPoints() int {
	switch k {
	case KindTriangle, KindPolygon:
		return 3
	default:
		return 2
	}
}

func (k ShapeKind) Valid() bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsBoxed reports whether the kind is stored as two normalized corners.
func (k ShapeKind) IsBoxed() bool {
	return k == KindRectangle || k == KindEllipse || k == KindCircle
}

// IsPolygonal reports whether the kind is a closed vertex list.
func (k ShapeKind) IsPolygonal() bool {
	return k == KindTriangle || k == KindPolygon
}

type StrokeStyle string

const (
	StrokeSolid      StrokeStyle = "Solid"
	StrokeDash       StrokeStyle = "Dash"
	StrokeDot        StrokeStyle = "Dot"
	StrokeDashDot    StrokeStyle = "DashDot"
	StrokeDashDotDot StrokeStyle = "DashDotDot"
)

// DashPattern returns the dash array in stroke-thickness units, or nil for a solid stroke.
func (s StrokeStyle) DashPattern() []float64 {
	switch s {
	case StrokeDash:
		return []float64{4, 2}
	case StrokeDot:
		return []float64{1, 2}
	case StrokeDashDot:
		return []float64{4, 2, 1, 2}
	case StrokeDashDotDot:
		return []float64{4, 2, 1, 2, 1, 2}
	default:
		return nil
	}
}

func (s StrokeStyle) Valid() bool {
	switch s {
	case StrokeSolid, StrokeDash, StrokeDot, StrokeDashDot, StrokeDashDotDot:
		return true
	}
	return false
}

type Style struct {
	StrokeColor     string      `json:"strokeColor"`
	FillColor       string      `json:"fillColor,omitempty"`
	StrokeThickness float64     `json:"strokeThickness"`
	StrokeStyle     StrokeStyle `json:"strokeStyle"`
	IsFilled        bool        `json:"isFilled"`
}

func DefaultStyle() Style {
	return Style{
		StrokeColor:     "#000000",
		StrokeThickness: 2,
		StrokeStyle:     StrokeSolid,
	}
}

func (s Style) Validate() error {
	if !(s.StrokeThickness > 0) || math.IsInf(s.StrokeThickness, 0) {
		return fmt.Errorf("%w: stroke thickness must be positive, got %v", ErrInvalidShape, s.StrokeThickness)
	}
	if s.StrokeStyle != "" && !s.StrokeStyle.Valid() {
		return fmt.Errorf("%w: unknown stroke style %q", ErrInvalidShape, s.StrokeStyle)
	}
	if s.IsFilled && s.FillColor == "" {
		return fmt.Errorf("%w: filled shape needs a fill color", ErrInvalidShape)
	}
	return nil
}

// Shape is a primitive on a drawing. Geometry is replaced wholesale by the
// engine's transforms; Kind never changes after construction.
type Shape struct {
	ID         string    `json:"id,omitempty"`
	TemplateID string    `json:"templateId,omitempty"`
	Kind       ShapeKind `json:"kind"`
	Points     []Point   `json:"points"`
	Style
	CreatedAt time.Time `json:"createdAt"`
}

func (s Shape) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, s.Kind)
	}
	if len(s.Points) < s.Kind.MinPoints() {
		return fmt.Errorf("%w: %s needs at least %d points, got %d", ErrInvalidShape, s.Kind, s.Kind.MinPoints(), len(s.Points))
	}
	if s.Kind == KindTriangle && len(s.Points) != 3 {
		return fmt.Errorf("%w: triangle needs exactly 3 points, got %d", ErrInvalidShape, len(s.Points))
	}
	for _, p := range s.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("%w: non-finite point", ErrInvalidShape)
		}
	}
	return s.Style.Validate()
}

// WithPoints returns a copy of s carrying pts. The new shape takes
// ownership of pts, so callers must not modify it afterwards.
func (s Shape) WithPoints(pts []Point) Shape {
	s.Points = pts
	return s
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

type Template struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Width           float64   `json:"width"`
	Height          float64   `json:"height"`
	BackgroundColor string    `json:"backgroundColor"`
	IsTemplate      bool      `json:"isTemplate"`
	ProfileID       string    `json:"profileId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	ModifiedAt      time.Time `json:"modifiedAt"`
	Shapes          []Shape   `json:"shapes"`
}

type Theme string

const (
	ThemeLight  Theme = "Light"
	ThemeDark   Theme = "Dark"
	ThemeSystem Theme = "System"
)

type Profile struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Theme                  Theme           `json:"theme"`
	DefaultCanvasWidth     float64         `json:"defaultCanvasWidth"`
	DefaultCanvasHeight    float64         `json:"defaultCanvasHeight"`
	DefaultStrokeColor     string          `json:"defaultStrokeColor"`
	DefaultFillColor       string          `json:"defaultFillColor"`
	DefaultBackgroundColor string          `json:"defaultBackgroundColor"`
	DefaultStrokeThickness float64         `json:"defaultStrokeThickness"`
	CustomSettings         json.RawMessage `json:"customSettings,omitempty"`
	IsActive               bool            `json:"isActive"`
	CreatedAt              time.Time       `json:"createdAt"`
	ModifiedAt             time.Time       `json:"modifiedAt"`
}

// DefaultStyle is the drawing style a new session starts with under this profile.
func (p Profile) DefaultStyle() Style {
	st := DefaultStyle()
	if p.DefaultStrokeColor != "" {
		st.StrokeColor = p.DefaultStrokeColor
	}
	if p.DefaultStrokeThickness > 0 {
		st.StrokeThickness = p.DefaultStrokeThickness
	}
	st.FillColor = p.DefaultFillColor
	return st
}
