package store

import (
	"context"
	"fmt"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/typeid"
)

// Seed installs the default profile and sample templates when the store has
// no profiles yet. It reports whether anything was written.
func Seed(ctx context.Context, s Store) (bool, error) {
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		return false, fmt.Errorf("list profiles: %w", err)
	}
	if len(profiles) > 0 {
		return false, nil
	}

	if err := s.CreateProfile(ctx, document.NewDefaultProfile(typeid.NewProfileID())); err != nil {
		return false, fmt.Errorf("seed profile: %w", err)
	}
	for _, t := range document.NewSampleTemplates(typeid.NewTemplateID(), typeid.NewTemplateID(), typeid.NewShapeID) {
		if err := s.CreateTemplate(ctx, t); err != nil {
			return false, fmt.Errorf("seed template %q: %w", t.Name, err)
		}
	}
	return true, nil
}
