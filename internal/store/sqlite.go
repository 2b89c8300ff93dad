package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/apppaint/apppaint/internal/document"
)

const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS profiles (
	id                       TEXT PRIMARY KEY,
	name                     TEXT NOT NULL,
	theme                    TEXT NOT NULL DEFAULT 'System',
	default_canvas_width     REAL NOT NULL DEFAULT 800,
	default_canvas_height    REAL NOT NULL DEFAULT 600,
	default_stroke_color     TEXT NOT NULL DEFAULT '#000000',
	default_fill_color       TEXT NOT NULL DEFAULT '#FFFFFF',
	default_background_color TEXT NOT NULL DEFAULT '#FFFFFF',
	default_stroke_thickness REAL NOT NULL DEFAULT 2,
	custom_settings          TEXT NOT NULL DEFAULT '',
	is_active                INTEGER NOT NULL DEFAULT 0,
	created_at               TEXT NOT NULL,
	modified_at              TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS templates (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	width            REAL NOT NULL DEFAULT 800,
	height           REAL NOT NULL DEFAULT 600,
	background_color TEXT NOT NULL DEFAULT '#FFFFFF',
	is_template      INTEGER NOT NULL DEFAULT 0,
	profile_id       TEXT REFERENCES profiles(id) ON DELETE SET NULL,
	created_at       TEXT NOT NULL,
	modified_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shapes (
	id               TEXT PRIMARY KEY,
	template_id      TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	shape_type       TEXT NOT NULL,
	points_data      TEXT NOT NULL,
	color            TEXT NOT NULL,
	stroke_thickness REAL NOT NULL,
	stroke_style     TEXT NOT NULL DEFAULT 'Solid',
	is_filled        INTEGER NOT NULL DEFAULT 0,
	fill_color       TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS shapes_template_position_idx ON shapes (template_id, position);
`

// SQLite is a Store backed by an embedded SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and applies the schema.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

type rowScanner interface {
	Scan(dest ...any) error
}

const sqliteTemplateColumns = `id, name, width, height, background_color, is_template, profile_id, created_at, modified_at`

func scanSQLiteTemplate(row rowScanner) (*document.Template, error) {
	var t document.Template
	var profileID sql.NullString
	var createdAt, modifiedAt string
	if err := row.Scan(&t.ID, &t.Name, &t.Width, &t.Height, &t.BackgroundColor, &t.IsTemplate, &profileID, &createdAt, &modifiedAt); err != nil {
		return nil, err
	}
	t.ProfileID = profileID.String
	t.CreatedAt = parseTime(createdAt)
	t.ModifiedAt = parseTime(modifiedAt)
	return &t, nil
}

func (s *SQLite) ListTemplates(ctx context.Context, filter TemplateFilter) ([]document.Template, error) {
	query := `SELECT ` + sqliteTemplateColumns + ` FROM templates`
	var args []any
	if filter.IsTemplate != nil {
		query += ` WHERE is_template = ?`
		args = append(args, *filter.IsTemplate)
	}
	query += ` ORDER BY modified_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []document.Template{}
	for rows.Next() {
		t, err := scanSQLiteTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *SQLite) GetTemplate(ctx context.Context, id string) (*document.Template, error) {
	t, err := scanSQLiteTemplate(s.db.QueryRowContext(ctx, `SELECT `+sqliteTemplateColumns+` FROM templates WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, shape_type, points_data, color, stroke_thickness, stroke_style, is_filled, fill_color, created_at
		FROM shapes
		WHERE template_id = ?
		ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("list shapes: %w", err)
	}
	defer rows.Close()

	t.Shapes = []document.Shape{}
	for rows.Next() {
		var rec shapeRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.TemplateID, &rec.Kind, &rec.PointsData, &rec.Color, &rec.Thickness, &rec.StrokeStyle, &rec.IsFilled, &rec.FillColor, &createdAt); err != nil {
			return nil, fmt.Errorf("scan shape: %w", err)
		}
		rec.CreatedAt = parseTime(createdAt)
		shape, err := rec.shape()
		if err != nil {
			return nil, err
		}
		t.Shapes = append(t.Shapes, shape)
	}
	return t, rows.Err()
}

func (s *SQLite) CreateTemplate(ctx context.Context, t *document.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (`+sqliteTemplateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Width, t.Height, t.BackgroundColor, t.IsTemplate, nullString(t.ProfileID), formatTime(t.CreatedAt), formatTime(t.ModifiedAt))
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	if err := sqliteInsertShapes(ctx, tx, t.ID, 0, t.Shapes); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) UpdateTemplate(ctx context.Context, t *document.Template) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name = ?, width = ?, height = ?, background_color = ?, is_template = ?, profile_id = ?, modified_at = ?
		WHERE id = ?`,
		t.Name, t.Width, t.Height, t.BackgroundColor, t.IsTemplate, nullString(t.ProfileID), formatTime(t.ModifiedAt), t.ID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) ReplaceShapes(ctx context.Context, templateID string, shapes []document.Shape) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := sqliteTouchTemplate(ctx, tx, templateID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shapes WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("clear shapes: %w", err)
	}
	if err := sqliteInsertShapes(ctx, tx, templateID, 0, shapes); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) AddShapes(ctx context.Context, templateID string, shapes []document.Shape) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := sqliteTouchTemplate(ctx, tx, templateID); err != nil {
		return err
	}
	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM shapes WHERE template_id = ?`, templateID).Scan(&next); err != nil {
		return fmt.Errorf("next shape position: %w", err)
	}
	if err := sqliteInsertShapes(ctx, tx, templateID, next, shapes); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) UpdateShape(ctx context.Context, shape document.Shape) error {
	rec, err := newShapeRecord(shape)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE shapes
		SET shape_type = ?, points_data = ?, color = ?, stroke_thickness = ?, stroke_style = ?, is_filled = ?, fill_color = ?
		WHERE id = ?`,
		rec.Kind, rec.PointsData, rec.Color, rec.Thickness, rec.StrokeStyle, rec.IsFilled, rec.FillColor, rec.ID)
	if err != nil {
		return fmt.Errorf("update shape: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) DeleteShape(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shapes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shape: %w", err)
	}
	return requireRow(res)
}

const sqliteProfileColumns = `id, name, theme, default_canvas_width, default_canvas_height, default_stroke_color,
	default_fill_color, default_background_color, default_stroke_thickness, custom_settings, is_active, created_at, modified_at`

func scanSQLiteProfile(row rowScanner) (*document.Profile, error) {
	var p document.Profile
	var custom, createdAt, modifiedAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Theme, &p.DefaultCanvasWidth, &p.DefaultCanvasHeight, &p.DefaultStrokeColor,
		&p.DefaultFillColor, &p.DefaultBackgroundColor, &p.DefaultStrokeThickness, &custom, &p.IsActive, &createdAt, &modifiedAt); err != nil {
		return nil, err
	}
	if custom != "" {
		p.CustomSettings = json.RawMessage(custom)
	}
	p.CreatedAt = parseTime(createdAt)
	p.ModifiedAt = parseTime(modifiedAt)
	return &p, nil
}

func (s *SQLite) ListProfiles(ctx context.Context) ([]document.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteProfileColumns+` FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []document.Profile{}
	for rows.Next() {
		p, err := scanSQLiteProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *SQLite) GetProfile(ctx context.Context, id string) (*document.Profile, error) {
	p, err := scanSQLiteProfile(s.db.QueryRowContext(ctx, `SELECT `+sqliteProfileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *SQLite) GetActiveProfile(ctx context.Context) (*document.Profile, error) {
	p, err := scanSQLiteProfile(s.db.QueryRowContext(ctx, `SELECT `+sqliteProfileColumns+` FROM profiles WHERE is_active = 1 LIMIT 1`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active profile: %w", err)
	}
	return p, nil
}

func (s *SQLite) CreateProfile(ctx context.Context, p *document.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+sqliteProfileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Theme), p.DefaultCanvasWidth, p.DefaultCanvasHeight, p.DefaultStrokeColor,
		p.DefaultFillColor, p.DefaultBackgroundColor, p.DefaultStrokeThickness, string(p.CustomSettings),
		p.IsActive, formatTime(p.CreatedAt), formatTime(p.ModifiedAt))
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateProfile(ctx context.Context, p *document.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET name = ?, theme = ?, default_canvas_width = ?, default_canvas_height = ?, default_stroke_color = ?,
			default_fill_color = ?, default_background_color = ?, default_stroke_thickness = ?, custom_settings = ?,
			is_active = ?, modified_at = ?
		WHERE id = ?`,
		p.Name, string(p.Theme), p.DefaultCanvasWidth, p.DefaultCanvasHeight, p.DefaultStrokeColor,
		p.DefaultFillColor, p.DefaultBackgroundColor, p.DefaultStrokeThickness, string(p.CustomSettings),
		p.IsActive, formatTime(p.ModifiedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) SetActiveProfile(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 1, modified_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("activate profile: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 0 WHERE id <> ? AND is_active = 1`, id); err != nil {
		return fmt.Errorf("deactivate profiles: %w", err)
	}
	return tx.Commit()
}

func sqliteTouchTemplate(ctx context.Context, tx *sql.Tx, templateID string) error {
	res, err := tx.ExecContext(ctx, `UPDATE templates SET modified_at = ? WHERE id = ?`, formatTime(time.Now()), templateID)
	if err != nil {
		return fmt.Errorf("touch template: %w", err)
	}
	return requireRow(res)
}

func sqliteInsertShapes(ctx context.Context, tx *sql.Tx, templateID string, start int, shapes []document.Shape) error {
	if len(shapes) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shapes (id, template_id, position, shape_type, points_data, color, stroke_thickness, stroke_style, is_filled, fill_color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare shape insert: %w", err)
	}
	defer stmt.Close()

	for i, shape := range shapes {
		shape.TemplateID = templateID
		rec, err := newShapeRecord(shape)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.TemplateID, start+i, rec.Kind, rec.PointsData, rec.Color,
			rec.Thickness, rec.StrokeStyle, rec.IsFilled, rec.FillColor, formatTime(rec.CreatedAt)); err != nil {
			return fmt.Errorf("insert shape: %w", err)
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
