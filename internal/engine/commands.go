package engine

import (
	"encoding/json"

	"github.com/apppaint/apppaint/internal/document"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "background", "path", "preview", "marker", "selection", "handle"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Path        []PathCommand `json:"path,omitempty"`        // Path data
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Dash pattern in stroke-width units
	Width       float64       `json:"width,omitempty"`       // Canvas width for "background"
	Height      float64       `json:"height,omitempty"`      // Canvas height for "background"
}

const (
	markerRadius   = 3.0
	selectionColor = "#0078D7"
	previewColor   = "#808080"
)

// ShapeCommand compiles one finished shape into a "path" command.
func ShapeCommand(s document.Shape) DrawCommand {
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    s.ID,
		Path:        BuildPath(s),
		Stroke:      s.StrokeColor,
		StrokeWidth: s.StrokeThickness,
		Dash:        s.StrokeStyle.DashPattern(),
	}
	if s.IsFilled && s.Kind != document.KindLine {
		cmd.Fill = s.FillColor
	}
	return cmd
}

// CompileDrawCommands generates draw commands for shapes in painter's order
// (back to front).
func CompileDrawCommands(shapes []document.Shape) []DrawCommand {
	commands := make([]DrawCommand, 0, len(shapes))
	for _, s := range shapes {
		commands = append(commands, ShapeCommand(s))
	}
	return commands
}

// OverlayCommands draws the selection box and resize handle.
func OverlayCommands(o Overlay) []DrawCommand {
	return []DrawCommand{
		{
			Op:          "selection",
			Path:        rectPath(o.Box),
			Stroke:      selectionColor,
			StrokeWidth: 1,
			Dash:        document.StrokeDash.DashPattern(),
		},
		{
			Op:          "handle",
			Path:        circlePath(o.Handle, HandleRadius),
			Fill:        "#FFFFFF",
			Stroke:      selectionColor,
			StrokeWidth: 2,
		},
	}
}

// PolygonPreviewCommands draws the pending vertices and the edges between them.
func PolygonPreviewCommands(b *PolygonBuilder, st document.Style) []DrawCommand {
	var commands []DrawCommand
	for _, e := range b.PreviewEdges() {
		commands = append(commands, DrawCommand{
			Op:          "preview",
			Path:        linePath(e.A, e.B),
			Stroke:      st.StrokeColor,
			StrokeWidth: st.StrokeThickness,
			Dash:        st.StrokeStyle.DashPattern(),
		})
	}
	for _, v := range b.Vertices() {
		commands = append(commands, DrawCommand{
			Op:   "marker",
			Path: circlePath(v, markerRadius),
			Fill: previewColor,
		})
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
