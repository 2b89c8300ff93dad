package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
	"github.com/apppaint/apppaint/internal/store"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrEmptyTemplate  = errors.New("template has no shapes")
)

// ShapeStore is the persistence a session needs. store.Store satisfies it.
type ShapeStore interface {
	GetTemplate(ctx context.Context, id string) (*document.Template, error)
	AddShapes(ctx context.Context, templateID string, shapes []document.Shape) error
	UpdateShape(ctx context.Context, s document.Shape) error
	DeleteShape(ctx context.Context, id string) error
}

// Session is one connection's editing state over a drawing. It is driven by
// a single goroutine.
type Session struct {
	template *document.Template
	store    ShapeStore
	engine   *engine.Engine
}

// Outcome is what handling one message produced: replies for the sender and
// committed changes for the rest of the room.
type Outcome struct {
	Replies []*Message
	Commits []engine.Result
}

// NewSession loads the drawing and starts an engine over its shapes.
func NewSession(ctx context.Context, st ShapeStore, templateID string, style document.Style, newShapeID func() string) (*Session, error) {
	t, err := st.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	e := engine.NewEngine(t.Width, t.Height)
	e.SetCanvas(t.Width, t.Height, t.BackgroundColor)
	e.SetIDGenerator(newShapeID)
	e.LoadShapes(t.Shapes)
	if err := e.SetStyle(style); err != nil {
		e.SetStyle(document.DefaultStyle())
	}

	return &Session{template: t, store: st, engine: e}, nil
}

func (s *Session) Engine() *engine.Engine { return s.engine }

func (s *Session) Welcome(clientID string) *WelcomePayload {
	return &WelcomePayload{
		ClientID:   clientID,
		TemplateID: s.template.ID,
		Name:       s.template.Name,
		Width:      s.template.Width,
		Height:     s.template.Height,
		Background: s.template.BackgroundColor,
		Tool:       s.engine.Tool(),
		Style:      s.engine.Style(),
		Shapes:     s.engine.Shapes(),
	}
}

// RenderMessage snapshots the current frame.
func (s *Session) RenderMessage() (*Message, error) {
	_, selected, _ := s.engine.Selected()
	return newMessage(TypeRender, RenderPayload{
		Commands: s.engine.RenderCommands(),
		Selected: selected,
		Polygon:  s.engine.PendingPolygon().State().String(),
	})
}

// Handle applies one client message. Every handled message is answered
// with a fresh render, after any shape.* replies.
func (s *Session) Handle(ctx context.Context, msg *Message) (Outcome, error) {
	var (
		results []engine.Result
		err     error
	)

	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Outcome{}, fmt.Errorf("decode pointer: %w", err)
		}
		pt := document.Point{X: p.X, Y: p.Y}
		switch msg.Type {
		case TypePointerDown:
			s.engine.PointerDown(pt)
		case TypePointerMove:
			s.engine.PointerMove(pt)
		default:
			results = append(results, s.engine.PointerUp(pt))
		}

	case TypeToolSet:
		var p ToolPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Outcome{}, fmt.Errorf("decode tool: %w", err)
		}
		tool, perr := engine.ParseTool(p.Tool)
		if perr != nil {
			return Outcome{}, perr
		}
		err = s.engine.SetTool(tool)

	case TypeStyleSet, TypeSelectionStyle:
		var p StylePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Outcome{}, fmt.Errorf("decode style: %w", err)
		}
		if msg.Type == TypeStyleSet {
			err = s.engine.SetStyle(p.Style)
			break
		}
		var r engine.Result
		r, err = s.engine.UpdateSelectedStyle(p.Style)
		results = append(results, r)

	case TypeSnapSet:
		var p SnapPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Outcome{}, fmt.Errorf("decode snap: %w", err)
		}
		s.engine.SetSnap(p.Enabled)

	case TypePolygonFinish:
		var r engine.Result
		r, err = s.engine.FinishPolygon()
		results = append(results, r)

	case TypePolygonCancel:
		s.engine.CancelPolygon()

	case TypeKeyEscape:
		s.engine.Escape()

	case TypeSelectionDelete:
		var r engine.Result
		r, err = s.engine.DeleteSelected()
		results = append(results, r)

	case TypeTemplateInsert:
		var p InsertPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Outcome{}, fmt.Errorf("decode insert: %w", err)
		}
		results, err = s.insert(ctx, p)

	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	if err != nil {
		return Outcome{}, err
	}

	return s.commit(ctx, results)
}

func (s *Session) insert(ctx context.Context, p InsertPayload) ([]engine.Result, error) {
	source, err := s.store.GetTemplate(ctx, p.TemplateID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTemplate, p.TemplateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load source template: %w", err)
	}
	w, h := s.engine.Canvas()
	drop := document.Point{X: w / 2, Y: h / 2}
	if p.X != nil && p.Y != nil {
		drop = document.Point{X: *p.X, Y: *p.Y}
	}
	results, ok := s.engine.InsertShapes(source.Shapes, drop, s.template.ID)
	if !ok {
		return nil, ErrEmptyTemplate
	}
	return results, nil
}

// commit persists each change and builds the sender's replies.
func (s *Session) commit(ctx context.Context, results []engine.Result) (Outcome, error) {
	var out Outcome
	var created []document.Shape

	for _, r := range results {
		var (
			typ     string
			payload interface{}
			err     error
		)
		switch r.Op {
		case engine.ResultCreated:
			r.Shape.TemplateID = s.template.ID
			if r.Shape.CreatedAt.IsZero() {
				r.Shape.CreatedAt = time.Now().UTC()
			}
			s.engine.UpsertShape(r.Shape)
			created = append(created, r.Shape)
			typ, payload = TypeShapeCreated, ShapePayload{Index: r.Index, Shape: r.Shape}
		case engine.ResultUpdated:
			r.Shape.TemplateID = s.template.ID
			err = s.store.UpdateShape(ctx, r.Shape)
			typ, payload = TypeShapeUpdated, ShapePayload{Index: r.Index, Shape: r.Shape}
		case engine.ResultDeleted:
			err = s.store.DeleteShape(ctx, r.Shape.ID)
			typ, payload = TypeShapeDeleted, ShapeDeletedPayload{ShapeID: r.Shape.ID}
		default:
			continue
		}
		if err != nil {
			s.rollback(ctx, results)
			return Outcome{}, fmt.Errorf("persist %s shape: %w", r.Op, err)
		}

		reply, err := newMessage(typ, payload)
		if err != nil {
			return Outcome{}, err
		}
		out.Replies = append(out.Replies, reply)
		out.Commits = append(out.Commits, r)
	}

	if len(created) > 0 {
		if err := s.store.AddShapes(ctx, s.template.ID, created); err != nil {
			s.rollback(ctx, results)
			return Outcome{}, fmt.Errorf("persist created shapes: %w", err)
		}
	}

	render, err := s.RenderMessage()
	if err != nil {
		return Outcome{}, err
	}
	out.Replies = append(out.Replies, render)
	return out, nil
}

// rollback undoes results the store did not take. Created shapes are
// dropped; everything else is reloaded from the store when it answers.
func (s *Session) rollback(ctx context.Context, results []engine.Result) {
	for _, r := range results {
		if r.Op == engine.ResultCreated {
			s.engine.RemoveShape(r.Shape.ID)
		}
	}
	t, err := s.store.GetTemplate(ctx, s.template.ID)
	if err != nil {
		slog.Warn("reload shapes after failed commit", "template", s.template.ID, "error", err)
		return
	}
	s.engine.LoadShapes(t.Shapes)
}

// ApplyRemote folds another participant's committed change into this
// session's engine.
func (s *Session) ApplyRemote(op OpBroadcastPayload) {
	switch op.Op {
	case engine.ResultCreated, engine.ResultUpdated:
		s.engine.UpsertShape(op.Shape)
	case engine.ResultDeleted:
		s.engine.RemoveShape(op.Shape.ID)
	}
}
