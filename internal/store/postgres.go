package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apppaint/apppaint/internal/document"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id                       TEXT PRIMARY KEY,
	name                     TEXT NOT NULL,
	theme                    TEXT NOT NULL DEFAULT 'System',
	default_canvas_width     DOUBLE PRECISION NOT NULL DEFAULT 800,
	default_canvas_height    DOUBLE PRECISION NOT NULL DEFAULT 600,
	default_stroke_color     TEXT NOT NULL DEFAULT '#000000',
	default_fill_color       TEXT NOT NULL DEFAULT '#FFFFFF',
	default_background_color TEXT NOT NULL DEFAULT '#FFFFFF',
	default_stroke_thickness DOUBLE PRECISION NOT NULL DEFAULT 2,
	custom_settings          TEXT NOT NULL DEFAULT '',
	is_active                BOOLEAN NOT NULL DEFAULT FALSE,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS templates (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	width            DOUBLE PRECISION NOT NULL DEFAULT 800,
	height           DOUBLE PRECISION NOT NULL DEFAULT 600,
	background_color TEXT NOT NULL DEFAULT '#FFFFFF',
	is_template      BOOLEAN NOT NULL DEFAULT FALSE,
	profile_id       TEXT REFERENCES profiles(id) ON DELETE SET NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS shapes (
	id               TEXT PRIMARY KEY,
	template_id      TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	shape_type       TEXT NOT NULL,
	points_data      TEXT NOT NULL,
	color            TEXT NOT NULL,
	stroke_thickness DOUBLE PRECISION NOT NULL,
	stroke_style     TEXT NOT NULL DEFAULT 'Solid',
	is_filled        BOOLEAN NOT NULL DEFAULT FALSE,
	fill_color       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS shapes_template_position_idx ON shapes (template_id, position);
`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

const pgTemplateColumns = `id, name, width, height, background_color, is_template, profile_id, created_at, modified_at`

func scanPgTemplate(row pgx.Row) (*document.Template, error) {
	var t document.Template
	var profileID *string
	if err := row.Scan(&t.ID, &t.Name, &t.Width, &t.Height, &t.BackgroundColor, &t.IsTemplate, &profileID, &t.CreatedAt, &t.ModifiedAt); err != nil {
		return nil, err
	}
	if profileID != nil {
		t.ProfileID = *profileID
	}
	return &t, nil
}

func (p *Postgres) ListTemplates(ctx context.Context, filter TemplateFilter) ([]document.Template, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+pgTemplateColumns+`
		FROM templates
		WHERE $1::boolean IS NULL OR is_template = $1
		ORDER BY modified_at DESC, id`, filter.IsTemplate)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []document.Template{}
	for rows.Next() {
		t, err := scanPgTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (p *Postgres) GetTemplate(ctx context.Context, id string) (*document.Template, error) {
	t, err := scanPgTemplate(p.pool.QueryRow(ctx, `SELECT `+pgTemplateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, template_id, shape_type, points_data, color, stroke_thickness, stroke_style, is_filled, fill_color, created_at
		FROM shapes
		WHERE template_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list shapes: %w", err)
	}
	defer rows.Close()

	t.Shapes = []document.Shape{}
	for rows.Next() {
		var rec shapeRecord
		if err := rows.Scan(&rec.ID, &rec.TemplateID, &rec.Kind, &rec.PointsData, &rec.Color, &rec.Thickness, &rec.StrokeStyle, &rec.IsFilled, &rec.FillColor, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shape: %w", err)
		}
		s, err := rec.shape()
		if err != nil {
			return nil, err
		}
		t.Shapes = append(t.Shapes, s)
	}
	return t, rows.Err()
}

func (p *Postgres) CreateTemplate(ctx context.Context, t *document.Template) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO templates (`+pgTemplateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, t.Width, t.Height, t.BackgroundColor, t.IsTemplate, nullable(t.ProfileID), t.CreatedAt, t.ModifiedAt)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	if err := pgInsertShapes(ctx, tx, t.ID, 0, t.Shapes); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) UpdateTemplate(ctx context.Context, t *document.Template) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE templates
		SET name = $2, width = $3, height = $4, background_color = $5, is_template = $6, profile_id = $7, modified_at = $8
		WHERE id = $1`,
		t.ID, t.Name, t.Width, t.Height, t.BackgroundColor, t.IsTemplate, nullable(t.ProfileID), t.ModifiedAt)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ReplaceShapes(ctx context.Context, templateID string, shapes []document.Shape) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := pgTouchTemplate(ctx, tx, templateID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM shapes WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("clear shapes: %w", err)
	}
	if err := pgInsertShapes(ctx, tx, templateID, 0, shapes); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) AddShapes(ctx context.Context, templateID string, shapes []document.Shape) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := pgTouchTemplate(ctx, tx, templateID); err != nil {
		return err
	}
	var next int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM shapes WHERE template_id = $1`, templateID).Scan(&next); err != nil {
		return fmt.Errorf("next shape position: %w", err)
	}
	if err := pgInsertShapes(ctx, tx, templateID, next, shapes); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) UpdateShape(ctx context.Context, s document.Shape) error {
	rec, err := newShapeRecord(s)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE shapes
		SET shape_type = $2, points_data = $3, color = $4, stroke_thickness = $5, stroke_style = $6, is_filled = $7, fill_color = $8
		WHERE id = $1`,
		rec.ID, rec.Kind, rec.PointsData, rec.Color, rec.Thickness, rec.StrokeStyle, rec.IsFilled, rec.FillColor)
	if err != nil {
		return fmt.Errorf("update shape: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteShape(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM shapes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shape: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const pgProfileColumns = `id, name, theme, default_canvas_width, default_canvas_height, default_stroke_color,
	default_fill_color, default_background_color, default_stroke_thickness, custom_settings, is_active, created_at, modified_at`

func scanPgProfile(row pgx.Row) (*document.Profile, error) {
	var p document.Profile
	var custom string
	if err := row.Scan(&p.ID, &p.Name, &p.Theme, &p.DefaultCanvasWidth, &p.DefaultCanvasHeight, &p.DefaultStrokeColor,
		&p.DefaultFillColor, &p.DefaultBackgroundColor, &p.DefaultStrokeThickness, &custom, &p.IsActive, &p.CreatedAt, &p.ModifiedAt); err != nil {
		return nil, err
	}
	if custom != "" {
		p.CustomSettings = json.RawMessage(custom)
	}
	return &p, nil
}

func (p *Postgres) ListProfiles(ctx context.Context) ([]document.Profile, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+pgProfileColumns+` FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []document.Profile{}
	for rows.Next() {
		prof, err := scanPgProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *prof)
	}
	return profiles, rows.Err()
}

func (p *Postgres) GetProfile(ctx context.Context, id string) (*document.Profile, error) {
	prof, err := scanPgProfile(p.pool.QueryRow(ctx, `SELECT `+pgProfileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return prof, nil
}

func (p *Postgres) GetActiveProfile(ctx context.Context) (*document.Profile, error) {
	prof, err := scanPgProfile(p.pool.QueryRow(ctx, `SELECT `+pgProfileColumns+` FROM profiles WHERE is_active LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active profile: %w", err)
	}
	return prof, nil
}

func (p *Postgres) CreateProfile(ctx context.Context, prof *document.Profile) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO profiles (`+pgProfileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		prof.ID, prof.Name, prof.Theme, prof.DefaultCanvasWidth, prof.DefaultCanvasHeight, prof.DefaultStrokeColor,
		prof.DefaultFillColor, prof.DefaultBackgroundColor, prof.DefaultStrokeThickness, string(prof.CustomSettings),
		prof.IsActive, prof.CreatedAt, prof.ModifiedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateProfile(ctx context.Context, prof *document.Profile) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE profiles
		SET name = $2, theme = $3, default_canvas_width = $4, default_canvas_height = $5, default_stroke_color = $6,
			default_fill_color = $7, default_background_color = $8, default_stroke_thickness = $9, custom_settings = $10,
			is_active = $11, modified_at = $12
		WHERE id = $1`,
		prof.ID, prof.Name, prof.Theme, prof.DefaultCanvasWidth, prof.DefaultCanvasHeight, prof.DefaultStrokeColor,
		prof.DefaultFillColor, prof.DefaultBackgroundColor, prof.DefaultStrokeThickness, string(prof.CustomSettings),
		prof.IsActive, prof.ModifiedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteProfile(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetActiveProfile(ctx context.Context, id string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE profiles SET is_active = TRUE, modified_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("activate profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE profiles SET is_active = FALSE WHERE id <> $1 AND is_active`, id); err != nil {
		return fmt.Errorf("deactivate profiles: %w", err)
	}
	return tx.Commit(ctx)
}

func pgTouchTemplate(ctx context.Context, tx pgx.Tx, templateID string) error {
	tag, err := tx.Exec(ctx, `UPDATE templates SET modified_at = $2 WHERE id = $1`, templateID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func pgInsertShapes(ctx context.Context, tx pgx.Tx, templateID string, start int, shapes []document.Shape) error {
	if len(shapes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, s := range shapes {
		s.TemplateID = templateID
		rec, err := newShapeRecord(s)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO shapes (id, template_id, position, shape_type, points_data, color, stroke_thickness, stroke_style, is_filled, fill_color, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			rec.ID, rec.TemplateID, start+i, rec.Kind, rec.PointsData, rec.Color, rec.Thickness, rec.StrokeStyle, rec.IsFilled, rec.FillColor, rec.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert shapes: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
