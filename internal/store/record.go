package store

import (
	"fmt"
	"time"

	"github.com/apppaint/apppaint/internal/document"
)

// shapeRecord is a shape as stored in the shapes table.
type shapeRecord struct {
	ID          string
	TemplateID  string
	Kind        string
	PointsData  string
	Color       string
	Thickness   float64
	StrokeStyle string
	IsFilled    bool
	FillColor   string
	CreatedAt   time.Time
}

func newShapeRecord(s document.Shape) (shapeRecord, error) {
	if err := s.Validate(); err != nil {
		return shapeRecord{}, fmt.Errorf("store shape %s: %w", s.ID, err)
	}
	data, err := document.EncodePoints(s.Points)
	if err != nil {
		return shapeRecord{}, err
	}
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	style := s.StrokeStyle
	if style == "" {
		style = document.StrokeSolid
	}
	return shapeRecord{
		ID:          s.ID,
		TemplateID:  s.TemplateID,
		Kind:        string(s.Kind),
		PointsData:  data,
		Color:       s.StrokeColor,
		Thickness:   s.StrokeThickness,
		StrokeStyle: string(style),
		IsFilled:    s.IsFilled,
		FillColor:   s.FillColor,
		CreatedAt:   createdAt,
	}, nil
}

func (r shapeRecord) shape() (document.Shape, error) {
	kind, pts, err := document.DecodeShape(r.Kind, r.PointsData)
	if err != nil {
		return document.Shape{}, fmt.Errorf("load shape %s: %w", r.ID, err)
	}
	return document.Shape{
		ID:         r.ID,
		TemplateID: r.TemplateID,
		Kind:       kind,
		Points:     pts,
		Style: document.Style{
			StrokeColor:     r.Color,
			FillColor:       r.FillColor,
			StrokeThickness: r.Thickness,
			StrokeStyle:     document.ParseStrokeStyle(r.StrokeStyle),
			IsFilled:        r.IsFilled,
		},
		CreatedAt: r.CreatedAt,
	}, nil
}
