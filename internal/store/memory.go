package store

import (
	"context"
	"sort"
	"sync"

	"github.com/apppaint/apppaint/internal/document"
)

// Memory is an in-process Store. It is used by tests and by the "memory"
// driver for throwaway sessions.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]document.Template
	shapes    map[string][]document.Shape
	profiles  map[string]document.Profile
}

func NewMemory() *Memory {
	return &Memory{
		templates: make(map[string]document.Template),
		shapes:    make(map[string][]document.Shape),
		profiles:  make(map[string]document.Profile),
	}
}

func (m *Memory) ListTemplates(ctx context.Context, filter TemplateFilter) ([]document.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]document.Template, 0, len(m.templates))
	for _, t := range m.templates {
		if filter.IsTemplate != nil && t.IsTemplate != *filter.IsTemplate {
			continue
		}
		t.Shapes = nil
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModifiedAt.Equal(out[j].ModifiedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ModifiedAt.After(out[j].ModifiedAt)
	})
	return out, nil
}

func (m *Memory) GetTemplate(ctx context.Context, id string) (*document.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Shapes = cloneShapes(m.shapes[id])
	return &t, nil
}

func (m *Memory) CreateTemplate(ctx context.Context, t *document.Template) error {
	if err := validateShapes(t.Shapes); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *t
	stored.Shapes = nil
	m.templates[t.ID] = stored
	m.shapes[t.ID] = parented(t.ID, t.Shapes)
	return nil
}

func (m *Memory) UpdateTemplate(ctx context.Context, t *document.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[t.ID]; !ok {
		return ErrNotFound
	}
	stored := *t
	stored.Shapes = nil
	m.templates[t.ID] = stored
	return nil
}

func (m *Memory) DeleteTemplate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	delete(m.shapes, id)
	return nil
}

func (m *Memory) ReplaceShapes(ctx context.Context, templateID string, shapes []document.Shape) error {
	if err := validateShapes(shapes); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[templateID]; !ok {
		return ErrNotFound
	}
	m.shapes[templateID] = parented(templateID, shapes)
	return nil
}

func (m *Memory) AddShapes(ctx context.Context, templateID string, shapes []document.Shape) error {
	if err := validateShapes(shapes); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[templateID]; !ok {
		return ErrNotFound
	}
	m.shapes[templateID] = append(m.shapes[templateID], parented(templateID, shapes)...)
	return nil
}

func (m *Memory) UpdateShape(ctx context.Context, s document.Shape) error {
	if err := validateShapes([]document.Shape{s}); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for tid, list := range m.shapes {
		for i := range list {
			if list[i].ID == s.ID {
				s.TemplateID = tid
				s.CreatedAt = list[i].CreatedAt
				list[i] = s.Clone()
				return nil
			}
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteShape(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for tid, list := range m.shapes {
		for i := range list {
			if list[i].ID == id {
				m.shapes[tid] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

func (m *Memory) ListProfiles(ctx context.Context) ([]document.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]document.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetProfile(ctx context.Context, id string) (*document.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) GetActiveProfile(ctx context.Context) (*document.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		if p.IsActive {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateProfile(ctx context.Context, p *document.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.ID] = *p
	return nil
}

func (m *Memory) UpdateProfile(ctx context.Context, p *document.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.ID]; !ok {
		return ErrNotFound
	}
	m.profiles[p.ID] = *p
	return nil
}

func (m *Memory) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, id)
	for tid, t := range m.templates {
		if t.ProfileID == id {
			t.ProfileID = ""
			m.templates[tid] = t
		}
	}
	return nil
}

func (m *Memory) SetActiveProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; !ok {
		return ErrNotFound
	}
	for pid, p := range m.profiles {
		p.IsActive = pid == id
		m.profiles[pid] = p
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func validateShapes(shapes []document.Shape) error {
	for _, s := range shapes {
		if _, err := newShapeRecord(s); err != nil {
			return err
		}
	}
	return nil
}

func parented(templateID string, shapes []document.Shape) []document.Shape {
	out := cloneShapes(shapes)
	for i := range out {
		out[i].TemplateID = templateID
	}
	return out
}

func cloneShapes(shapes []document.Shape) []document.Shape {
	out := make([]document.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}
