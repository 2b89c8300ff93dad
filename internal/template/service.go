package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
	"github.com/apppaint/apppaint/internal/store"
	"github.com/apppaint/apppaint/internal/thumbnail"
	"github.com/apppaint/apppaint/internal/typeid"
)

var (
	ErrNotFound      = errors.New("template not found")
	ErrEmptyTemplate = errors.New("template has no shapes")
	ErrNameRequired  = errors.New("name is required")
)

const (
	shapeTemplateSize       = 200
	shapeTemplateBackground = "#FFFFFF"
)

// Options are the service's rendering and canvas defaults.
type Options struct {
	// CanvasWidth and CanvasHeight size new templates when no profile applies.
	CanvasWidth    float64
	CanvasHeight   float64
	PreviewPadding float64
	ThumbnailSize  int
}

type Service struct {
	store store.Store
	opts  Options
}

func NewService(st store.Store, opts Options) *Service {
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = 200
	}
	return &Service{store: st, opts: opts}
}

// Draft carries the fields a caller may set on a template. Zero values take
// the active profile's defaults.
type Draft struct {
	Name            string           `json:"name"`
	Width           float64          `json:"width"`
	Height          float64          `json:"height"`
	BackgroundColor string           `json:"backgroundColor"`
	IsTemplate      bool             `json:"isTemplate"`
	ProfileID       string           `json:"profileId"`
	Shapes          []document.Shape `json:"shapes"`
}

// Preview is a template's shapes fitted into a viewport.
type Preview struct {
	Fit      engine.Fit           `json:"fit"`
	Fitted   bool                 `json:"fitted"`
	Shapes   []document.Shape     `json:"shapes"`
	Commands []engine.DrawCommand `json:"commands"`
	Bounds   *engine.Rect         `json:"bounds,omitempty"`
}

func (s *Service) List(ctx context.Context, filter store.TemplateFilter) ([]document.Template, error) {
	templates, err := s.store.ListTemplates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func (s *Service) Get(ctx context.Context, id string) (*document.Template, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// Create stores a new template built from d. Shapes in d are assigned fresh IDs.
func (s *Service) Create(ctx context.Context, d Draft) (*document.Template, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	t, err := s.newTemplate(ctx, name, d.ProfileID)
	if err != nil {
		return nil, err
	}
	applyDraft(t, d)
	t.Shapes = assignShapeIDs(t.ID, d.Shapes, true)

	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	slog.Debug("template created", "template", t.ID, "shapes", len(t.Shapes))
	return t, nil
}

// SaveDrawing writes the template's fields and replaces its shapes. An id
// that is empty or unknown creates a new record instead.
func (s *Service) SaveDrawing(ctx context.Context, id string, d Draft) (*document.Template, error) {
	if id == "" {
		return s.Create(ctx, d)
	}
	existing, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.Create(ctx, d)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	// Nothing is written unless every shape is valid.
	if err := validateShapes(d.Shapes); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(d.Name); name != "" {
		existing.Name = name
	}
	if d.ProfileID != "" {
		existing.ProfileID = d.ProfileID
	}
	applyDraft(existing, d)
	existing.ModifiedAt = time.Now().UTC()
	existing.Shapes = assignShapeIDs(existing.ID, d.Shapes, false)

	if err := s.store.UpdateTemplate(ctx, existing); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	if err := s.store.ReplaceShapes(ctx, existing.ID, existing.Shapes); err != nil {
		return nil, fmt.Errorf("replace shapes: %w", err)
	}
	slog.Debug("drawing saved", "template", existing.ID, "shapes", len(existing.Shapes))
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// SaveShapeAsTemplate stores one shape, coordinates untouched, as a reusable
// 200x200 template.
func (s *Service) SaveShapeAsTemplate(ctx context.Context, name string, shape document.Shape) (*document.Template, error) {
	return s.Create(ctx, Draft{
		Name:            name,
		Width:           shapeTemplateSize,
		Height:          shapeTemplateSize,
		BackgroundColor: shapeTemplateBackground,
		IsTemplate:      true,
		Shapes:          []document.Shape{shape},
	})
}

// Insert copies the source template's shapes into the target drawing,
// centered on drop or on the target's canvas center when drop is nil.
func (s *Service) Insert(ctx context.Context, targetID, sourceID string, drop *document.Point) ([]document.Shape, error) {
	source, err := s.store.GetTemplate(ctx, sourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmptyTemplate
		}
		return nil, fmt.Errorf("get source template: %w", err)
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	at := document.Point{X: target.Width / 2, Y: target.Height / 2}
	if drop != nil {
		at = *drop
	}
	placed, ok := engine.PlaceShapes(source.Shapes, at, target.ID)
	if !ok {
		return nil, ErrEmptyTemplate
	}
	placed = assignShapeIDs(target.ID, placed, true)

	if err := s.store.AddShapes(ctx, target.ID, placed); err != nil {
		return nil, fmt.Errorf("add shapes: %w", err)
	}
	target.Shapes = nil
	target.ModifiedAt = time.Now().UTC()
	if err := s.store.UpdateTemplate(ctx, target); err != nil {
		return nil, fmt.Errorf("touch template: %w", err)
	}
	slog.Debug("template inserted", "source", source.ID, "target", target.ID, "shapes", len(placed))
	return placed, nil
}

// Preview fits the template's shapes into a viewport. Zero viewport sizes
// fall back to the template's own canvas.
func (s *Service) Preview(ctx context.Context, id string, width, height float64) (*Preview, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		width, height = t.Width, t.Height
	}

	p := &Preview{Shapes: t.Shapes}
	if bounds, ok := engine.ShapesBounds(t.Shapes); ok {
		p.Bounds = &bounds
	}
	if fit, ok := engine.ComputeAutoFit(t.Shapes, width, height, s.opts.PreviewPadding); ok {
		p.Fit, p.Fitted = fit, true
		p.Shapes = engine.ApplyFit(t.Shapes, fit)
	}
	p.Commands = engine.CompileDrawCommands(p.Shapes)
	return p, nil
}

// Thumbnail renders the template as a square PNG.
func (s *Service) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Padding shrinks with the canvas so thumbnails keep the preview's proportions.
	padding := s.opts.PreviewPadding
	if side := math.Max(t.Width, t.Height); side > 0 {
		padding = padding * float64(s.opts.ThumbnailSize) / side
	}
	png, err := thumbnail.NewRenderer(s.opts.ThumbnailSize, padding).Render(t.Shapes, t.BackgroundColor)
	if err != nil {
		return nil, fmt.Errorf("render thumbnail: %w", err)
	}
	return png, nil
}

func (s *Service) newTemplate(ctx context.Context, name, profileID string) (*document.Template, error) {
	var (
		p   *document.Profile
		err error
	)
	if profileID != "" {
		p, err = s.store.GetProfile(ctx, profileID)
	} else {
		p, err = s.store.GetActiveProfile(ctx)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	t := document.NewTemplate(typeid.NewTemplateID(), name, p)
	if p == nil && s.opts.CanvasWidth > 0 && s.opts.CanvasHeight > 0 {
		t.Width, t.Height = s.opts.CanvasWidth, s.opts.CanvasHeight
	}
	return t, nil
}

func validateShapes(shapes []document.Shape) error {
	for i, sh := range shapes {
		if err := sh.Validate(); err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return nil
}

func applyDraft(t *document.Template, d Draft) {
	if d.Width > 0 && d.Height > 0 {
		t.Width, t.Height = d.Width, d.Height
	}
	if d.BackgroundColor != "" {
		t.BackgroundColor = d.BackgroundColor
	}
	t.IsTemplate = d.IsTemplate
}

// assignShapeIDs parents copies of shapes to templateID. Shapes without an ID,
// or every shape when fresh is set, get a new one.
func assignShapeIDs(templateID string, shapes []document.Shape, fresh bool) []document.Shape {
	now := time.Now().UTC()
	out := make([]document.Shape, len(shapes))
	for i, sh := range shapes {
		sh = sh.Clone()
		if fresh || sh.ID == "" {
			sh.ID = typeid.NewShapeID()
		}
		if sh.CreatedAt.IsZero() {
			sh.CreatedAt = now
		}
		sh.TemplateID = templateID
		out[i] = sh
	}
	return out
}
