package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/store"
	"github.com/apppaint/apppaint/internal/typeid"
)

var (
	ErrNotFound       = errors.New("profile not found")
	ErrActiveProfile  = errors.New("cannot delete the active profile")
	ErrInvalidProfile = errors.New("invalid profile")
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns the active profile first, then the rest newest first.
func (s *Service) List(ctx context.Context) ([]document.Profile, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].IsActive != profiles[j].IsActive {
			return profiles[i].IsActive
		}
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles, nil
}

func (s *Service) Get(ctx context.Context, id string) (*document.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Active returns the active profile, or ErrNotFound when none is set.
func (s *Service) Active(ctx context.Context) (*document.Profile, error) {
	p, err := s.store.GetActiveProfile(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active profile: %w", err)
	}
	return p, nil
}

// Create stores p under a new ID. Unset defaults are filled from the default
// profile. The first profile becomes active; later ones start inactive.
func (s *Service) Create(ctx context.Context, p document.Profile) (*document.Profile, error) {
	if err := normalize(&p); err != nil {
		return nil, err
	}

	_, err := s.store.GetActiveProfile(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p.IsActive = true
	case err != nil:
		return nil, fmt.Errorf("get active profile: %w", err)
	default:
		p.IsActive = false
	}

	now := time.Now().UTC()
	p.ID = typeid.NewProfileID()
	p.CreatedAt, p.ModifiedAt = now, now

	if err := s.store.CreateProfile(ctx, &p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	slog.Debug("profile created", "profile", p.ID, "active", p.IsActive)
	return &p, nil
}

// Update replaces the editable fields of profile id. Activation is only
// changed through SetActive.
func (s *Service) Update(ctx context.Context, id string, p document.Profile) (*document.Profile, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := normalize(&p); err != nil {
		return nil, err
	}

	p.ID = existing.ID
	p.IsActive = existing.IsActive
	p.CreatedAt = existing.CreatedAt
	p.ModifiedAt = time.Now().UTC()

	if err := s.store.UpdateProfile(ctx, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.IsActive {
		return ErrActiveProfile
	}
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// SetActive makes id the only active profile.
func (s *Service) SetActive(ctx context.Context, id string) (*document.Profile, error) {
	if err := s.store.SetActiveProfile(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set active profile: %w", err)
	}
	slog.Info("profile activated", "profile", id)
	return s.Get(ctx, id)
}

// SessionStyle returns the style a new editing session starts with: that of
// profileID, of the active profile when profileID is empty, or the built-in
// default when neither exists.
func (s *Service) SessionStyle(ctx context.Context, profileID string) (document.Style, error) {
	var (
		p   *document.Profile
		err error
	)
	if profileID != "" {
		p, err = s.Get(ctx, profileID)
	} else {
		p, err = s.Active(ctx)
	}
	if errors.Is(err, ErrNotFound) {
		return document.DefaultStyle(), nil
	}
	if err != nil {
		return document.Style{}, err
	}
	return p.DefaultStyle(), nil
}

func normalize(p *document.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	switch p.Theme {
	case "":
		p.Theme = document.ThemeSystem
	case document.ThemeLight, document.ThemeDark, document.ThemeSystem:
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidProfile, p.Theme)
	}
	if p.DefaultCanvasWidth < 0 || p.DefaultCanvasHeight < 0 || p.DefaultStrokeThickness < 0 {
		return fmt.Errorf("%w: sizes must not be negative", ErrInvalidProfile)
	}

	d := document.NewDefaultProfile("")
	if p.DefaultCanvasWidth == 0 || p.DefaultCanvasHeight == 0 {
		p.DefaultCanvasWidth, p.DefaultCanvasHeight = d.DefaultCanvasWidth, d.DefaultCanvasHeight
	}
	if p.DefaultStrokeThickness == 0 {
		p.DefaultStrokeThickness = d.DefaultStrokeThickness
	}
	if p.DefaultStrokeColor == "" {
		p.DefaultStrokeColor = d.DefaultStrokeColor
	}
	if p.DefaultFillColor == "" {
		p.DefaultFillColor = d.DefaultFillColor
	}
	if p.DefaultBackgroundColor == "" {
		p.DefaultBackgroundColor = d.DefaultBackgroundColor
	}
	return nil
}
