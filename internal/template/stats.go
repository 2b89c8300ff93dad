package template

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/store"
)

const recentDrawings = 10

// KindStat is one shape kind's share of all drawing shapes.
type KindStat struct {
	Kind       document.ShapeKind `json:"kind"`
	Count      int                `json:"count"`
	Percentage int                `json:"percentage"`
}

// Stats summarizes drawings for the dashboard. Reusable templates are not
// counted, nor are their shapes.
type Stats struct {
	TotalDrawings           int                 `json:"totalDrawings"`
	TotalShapes             int                 `json:"totalShapes"`
	TotalProfiles           int                 `json:"totalProfiles"`
	AverageShapesPerDrawing float64             `json:"averageShapesPerDrawing"`
	ShapeKinds              []KindStat          `json:"shapeKinds"`
	RecentDrawings          []document.Template `json:"recentDrawings"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	drawingsOnly := false
	drawings, err := s.store.ListTemplates(ctx, store.TemplateFilter{IsTemplate: &drawingsOnly})
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	stats := &Stats{
		TotalDrawings:  len(drawings),
		TotalProfiles:  len(profiles),
		ShapeKinds:     []KindStat{},
		RecentDrawings: []document.Template{},
	}

	counts := make(map[document.ShapeKind]int)
	for _, d := range drawings {
		full, err := s.store.GetTemplate(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("get drawing %s: %w", d.ID, err)
		}
		for _, sh := range full.Shapes {
			counts[sh.Kind]++
		}
		stats.TotalShapes += len(full.Shapes)
	}

	if stats.TotalDrawings > 0 {
		avg := float64(stats.TotalShapes) / float64(stats.TotalDrawings)
		stats.AverageShapesPerDrawing = math.Round(avg*10) / 10
	}

	for kind, n := range counts {
		stats.ShapeKinds = append(stats.ShapeKinds, KindStat{
			Kind:       kind,
			Count:      n,
			Percentage: int(math.Round(float64(n) / float64(stats.TotalShapes) * 100)),
		})
	}
	sort.Slice(stats.ShapeKinds, func(i, j int) bool {
		a, b := stats.ShapeKinds[i], stats.ShapeKinds[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Kind < b.Kind
	})

	sort.SliceStable(drawings, func(i, j int) bool {
		return drawings[i].CreatedAt.After(drawings[j].CreatedAt)
	})
	if len(drawings) > recentDrawings {
		drawings = drawings[:recentDrawings]
	}
	stats.RecentDrawings = append(stats.RecentDrawings, drawings...)
	return stats, nil
}
