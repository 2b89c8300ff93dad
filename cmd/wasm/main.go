//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/apppaint/apppaint/internal/document"
	"github.com/apppaint/apppaint/internal/engine"
	"github.com/apppaint/apppaint/internal/typeid"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(800, 600)
	eng.SetIDGenerator(typeid.NewShapeID)

	apppaintEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	apppaintEngine.Set("loadShapes", js.FuncOf(loadShapes))
	apppaintEngine.Set("setCanvas", js.FuncOf(setCanvas))
	apppaintEngine.Set("setTool", js.FuncOf(setTool))
	apppaintEngine.Set("setStyle", js.FuncOf(setStyle))
	apppaintEngine.Set("setSnap", js.FuncOf(setSnap))
	apppaintEngine.Set("pointerDown", js.FuncOf(pointerDown))
	apppaintEngine.Set("pointerMove", js.FuncOf(pointerMove))
	apppaintEngine.Set("pointerUp", js.FuncOf(pointerUp))
	apppaintEngine.Set("finishPolygon", js.FuncOf(finishPolygon))
	apppaintEngine.Set("cancelPolygon", js.FuncOf(cancelPolygon))
	apppaintEngine.Set("escape", js.FuncOf(escape))
	apppaintEngine.Set("deleteSelected", js.FuncOf(deleteSelected))
	apppaintEngine.Set("updateSelectedStyle", js.FuncOf(updateSelectedStyle))
	apppaintEngine.Set("insertShapes", js.FuncOf(insertShapes))

	// --- Queries (frontend ← engine) ---
	apppaintEngine.Set("render", js.FuncOf(render))
	apppaintEngine.Set("hitTest", js.FuncOf(hitTest))
	apppaintEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	apppaintEngine.Set("getShapes", js.FuncOf(getShapes))
	apppaintEngine.Set("getTool", js.FuncOf(getTool))

	js.Global().Set("apppaintEngine", apppaintEngine)
	js.Global().Set("apppaintWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okValue() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// toJSON returns v as a JSON string, the form results cross into JS in.
func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}

func pointArg(args []js.Value) (document.Point, bool) {
	if len(args) < 2 {
		return document.Point{}, false
	}
	return document.Point{X: args[0].Float(), Y: args[1].Float()}, true
}

func styleArg(args []js.Value) (document.Style, error) {
	var st document.Style
	if len(args) < 1 {
		return st, document.ErrInvalidShape
	}
	err := json.Unmarshal([]byte(args[0].String()), &st)
	return st, err
}

// --- Command Handlers ---

func loadShapes(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing shapes JSON"})
	}
	var shapes []document.Shape
	if err := json.Unmarshal([]byte(args[0].String()), &shapes); err != nil {
		return errorValue(err)
	}
	eng.LoadShapes(shapes)
	return okValue()
}

func setCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	background := "#FFFFFF"
	if len(args) > 2 && args[2].Type() == js.TypeString {
		background = args[2].String()
	}
	eng.SetCanvas(args[0].Float(), args[1].Float(), background)
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	tool, err := engine.ParseTool(args[0].String())
	if err != nil {
		return errorValue(err)
	}
	if err := eng.SetTool(tool); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func setStyle(this js.Value, args []js.Value) interface{} {
	st, err := styleArg(args)
	if err != nil {
		return errorValue(err)
	}
	if err := eng.SetStyle(st); err != nil {
		return errorValue(err)
	}
	return okValue()
}

func setSnap(this js.Value, args []js.Value) interface{} {
	eng.SetSnap(len(args) > 0 && args[0].Truthy())
	return nil
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if p, ok := pointArg(args); ok {
		eng.PointerDown(p)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if p, ok := pointArg(args); ok {
		eng.PointerMove(p)
	}
	return nil
}

// pointerUp returns the committed change as JSON.
func pointerUp(this js.Value, args []js.Value) interface{} {
	p, ok := pointArg(args)
	if !ok {
		return nil
	}
	return toJSON(eng.PointerUp(p))
}

func finishPolygon(this js.Value, args []js.Value) interface{} {
	r, err := eng.FinishPolygon()
	if err != nil {
		return errorValue(err)
	}
	return toJSON(r)
}

func cancelPolygon(this js.Value, args []js.Value) interface{} {
	eng.CancelPolygon()
	return nil
}

func escape(this js.Value, args []js.Value) interface{} {
	eng.Escape()
	return nil
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	r, err := eng.DeleteSelected()
	if err != nil {
		return errorValue(err)
	}
	return toJSON(r)
}

func updateSelectedStyle(this js.Value, args []js.Value) interface{} {
	st, err := styleArg(args)
	if err != nil {
		return errorValue(err)
	}
	r, err := eng.UpdateSelectedStyle(st)
	if err != nil {
		return errorValue(err)
	}
	return toJSON(r)
}

// insertShapes places a template's shapes centered on (x, y).
func insertShapes(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "missing shapes or drop point"})
	}
	var shapes []document.Shape
	if err := json.Unmarshal([]byte(args[0].String()), &shapes); err != nil {
		return errorValue(err)
	}
	results, ok := eng.InsertShapes(shapes, document.Point{X: args[1].Float(), Y: args[2].Float()}, "")
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "template has no shapes"})
	}
	return toJSON(results)
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	p, ok := pointArg(args)
	if !ok {
		return js.ValueOf(-1)
	}
	return js.ValueOf(engine.HitTestShapes(eng.Shapes(), p))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getShapes(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Shapes())
}

func getTool(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(eng.Tool()))
}
