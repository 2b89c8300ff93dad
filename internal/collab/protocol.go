package collab

import (
	"encoding/json"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
)

type Message struct {
	Type       string          `json:"type"`
	TemplateID string          `json:"templateId,omitempty"`
	ClientID   string          `json:"clientId,omitempty"`
	ProfileID  string          `json:"profileId,omitempty"`
	Seq        int64           `json:"seq,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client -> server
	TypePointerDown     = "pointer.down"
	TypePointerMove     = "pointer.move"
	TypePointerUp       = "pointer.up"
	TypeToolSet         = "tool.set"
	TypeStyleSet        = "style.set"
	TypeSnapSet         = "snap.set"
	TypePolygonFinish   = "polygon.finish"
	TypePolygonCancel   = "polygon.cancel"
	TypeKeyEscape       = "key.escape"
	TypeSelectionDelete = "selection.delete"
	TypeSelectionStyle  = "selection.style"
	TypeTemplateInsert  = "template.insert"

	// Server -> client
	TypeWelcome      = "welcome"
	TypeRender       = "render"
	TypeShapeCreated = "shape.created"
	TypeShapeUpdated = "shape.updated"
	TypeShapeDeleted = "shape.deleted"
	TypeOpBroadcast  = "op.broadcast"
	TypeError        = "error"

	// Both directions
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type StylePayload struct {
	Style document.Style `json:"style"`
}

type SnapPayload struct {
	Enabled bool `json:"enabled"`
}

// InsertPayload drops a template onto the drawing. Without x and y the
// template lands on the canvas center.
type InsertPayload struct {
	TemplateID string   `json:"templateId"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
}

type WelcomePayload struct {
	ClientID   string           `json:"clientId"`
	TemplateID string           `json:"templateId"`
	Name       string           `json:"name"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Background string           `json:"background"`
	Tool       engine.Tool      `json:"tool"`
	Style      document.Style   `json:"style"`
	Shapes     []document.Shape `json:"shapes"`
}

type RenderPayload struct {
	Commands []engine.DrawCommand `json:"commands"`
	Selected int                  `json:"selected"`
	Polygon  string               `json:"polygon"`
}

type ShapePayload struct {
	Index int            `json:"index"`
	Shape document.Shape `json:"shape"`
}

type ShapeDeletedPayload struct {
	ShapeID string `json:"shapeId"`
}

// OpBroadcastPayload tells the rest of a room that a participant committed
// a shape change.
type OpBroadcastPayload struct {
	Op        engine.ResultOp `json:"op"`
	Shape     document.Shape  `json:"shape"`
	ClientID  string          `json:"clientId"`
	ServerSeq int64           `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

func newMessage(typ string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
