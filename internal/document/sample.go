package document

import "time"

// NewDefaultProfile returns the profile seeded into an empty store.
func NewDefaultProfile(id string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:                     id,
		Name:                   "Default Profile",
		Theme:                  ThemeSystem,
		DefaultCanvasWidth:     800,
		DefaultCanvasHeight:    600,
		DefaultStrokeColor:     "#000000",
		DefaultFillColor:       "#FFFFFF",
		DefaultBackgroundColor: "#FFFFFF",
		DefaultStrokeThickness: 2,
		IsActive:               true,
		CreatedAt:              now,
		ModifiedAt:             now,
	}
}

// NewSampleTemplates returns the two starter templates seeded alongside the
// default profile. newShapeID is called once per shape.
func NewSampleTemplates(firstID, secondID string, newShapeID func() string) []*Template {
	now := time.Now().UTC()

	first := &Template{
		ID:              firstID,
		Name:            "Sample Template 1",
		Width:           800,
		Height:          600,
		BackgroundColor: "#F0F0F0",
		IsTemplate:      true,
		CreatedAt:       now,
		ModifiedAt:      now,
	}
	first.Shapes = []Shape{
		{
			ID:         newShapeID(),
			TemplateID: firstID,
			Kind:       KindRectangle,
			Points:     []Point{{X: 100, Y: 100}, {X: 300, Y: 250}},
			Style: Style{
				StrokeColor:     "#FF0000",
				FillColor:       "#FFCCCC",
				StrokeThickness: 3,
				StrokeStyle:     StrokeSolid,
				IsFilled:        true,
			},
			CreatedAt: now,
		},
		{
			ID:         newShapeID(),
			TemplateID: firstID,
			Kind:       KindCircle,
			Points:     Normalize(KindCircle, []Point{{X: 500, Y: 300}, {X: 600, Y: 300}}),
			Style: Style{
				StrokeColor:     "#0000FF",
				StrokeThickness: 2,
				StrokeStyle:     StrokeSolid,
			},
			CreatedAt: now,
		},
	}

	second := &Template{
		ID:              secondID,
		Name:            "Sample Template 2",
		Width:           1024,
		Height:          768,
		BackgroundColor: "#E8F4F8",
		IsTemplate:      true,
		CreatedAt:       now,
		ModifiedAt:      now,
	}
	second.Shapes = []Shape{
		{
			ID:         newShapeID(),
			TemplateID: secondID,
			Kind:       KindLine,
			Points:     []Point{{X: 50, Y: 50}, {X: 400, Y: 400}},
			Style: Style{
				StrokeColor:     "#00FF00",
				StrokeThickness: 5,
				StrokeStyle:     StrokeSolid,
			},
			CreatedAt: now,
		},
	}

	return []*Template{first, second}
}

// NewTemplate returns an empty drawing sized from the profile, or 800x600 on white.
func NewTemplate(id, name string, p *Profile) *Template {
	now := time.Now().UTC()
	t := &Template{
		ID:              id,
		Name:            name,
		Width:           800,
		Height:          600,
		BackgroundColor: "#FFFFFF",
		CreatedAt:       now,
		ModifiedAt:      now,
		Shapes:          []Shape{},
	}
	if p != nil {
		t.ProfileID = p.ID
		if p.DefaultCanvasWidth > 0 && p.DefaultCanvasHeight > 0 {
			t.Width, t.Height = p.DefaultCanvasWidth, p.DefaultCanvasHeight
		}
		if p.DefaultBackgroundColor != "" {
			t.BackgroundColor = p.DefaultBackgroundColor
		}
	}
	return t
}
