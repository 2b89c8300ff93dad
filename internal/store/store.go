package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/apppaint/apppaint/internal/config"
	"github.com/apppaint/apppaint/internal/document"
)

var ErrNotFound = errors.New("not found")

// TemplateFilter narrows ListTemplates. A nil IsTemplate lists drawings and
// templates alike.
type TemplateFilter struct {
	IsTemplate *bool
}

// Store persists templates, their shapes and profiles. Shape order within a
// template is its z-order and is preserved across reads.
type Store interface {
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]document.Template, error)
	// GetTemplate returns the template with its shapes.
	GetTemplate(ctx context.Context, id string) (*document.Template, error)
	CreateTemplate(ctx context.Context, t *document.Template) error
	// UpdateTemplate writes the template's own fields; shapes are untouched.
	UpdateTemplate(ctx context.Context, t *document.Template) error
	DeleteTemplate(ctx context.Context, id string) error

	// ReplaceShapes swaps the template's shape list for shapes in one transaction.
	ReplaceShapes(ctx context.Context, templateID string, shapes []document.Shape) error
	// AddShapes appends shapes on top of the template's existing ones.
	AddShapes(ctx context.Context, templateID string, shapes []document.Shape) error
	UpdateShape(ctx context.Context, s document.Shape) error
	DeleteShape(ctx context.Context, id string) error

	ListProfiles(ctx context.Context) ([]document.Profile, error)
	GetProfile(ctx context.Context, id string) (*document.Profile, error)
	GetActiveProfile(ctx context.Context) (*document.Profile, error)
	CreateProfile(ctx context.Context, p *document.Profile) error
	UpdateProfile(ctx context.Context, p *document.Profile) error
	DeleteProfile(ctx context.Context, id string) error
	// SetActiveProfile marks id active and every other profile inactive.
	SetActiveProfile(ctx context.Context, id string) error

	Close() error
}

// Open connects the store selected by cfg.StoreDriver and applies its schema.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
