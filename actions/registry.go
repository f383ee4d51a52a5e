// Package actions defines the declarative schema for GUI-agent actions and
// compiles completed parameter sets into the canonical command strings that
// trained agents emit and downstream interpreters consume.
//
// The package has two responsibilities:
//   - A read-only registry describing, per action kind, which input fields an
//     annotation needs (name, kind, label, placeholder, select options) and
//     how a completed field set renders into the line-oriented command syntax
//     (for example click(point='<point>1710 100</point>')).
//   - A coordinate normalizer that splits a single free-text coordinate entry
//     into discrete x/y components (see coordinates.go).
//
// Command Grammar:
//
//	Every compiled command uses a functional-call-like syntax:
//	kind(arg1='value1', arg2='value2', ...). Coordinate pairs are wrapped as
//	<point>x y</point>. This grammar is the wire format existing datasets were
//	trained against and must be reproduced byte for byte.
//
// Known Limitation:
//
//	Interpolated values are rendered verbatim. A content or key value that
//	itself contains a single quote produces a malformed, but not rejected,
//	command string. Escaping would break compatibility with datasets already
//	exported in this grammar, so the permissive behavior is preserved and
//	consumers are expected to sanitize where it matters.
//
// All registry data is immutable after package initialization, so every
// function here is safe for concurrent use without synchronization.
package actions

import "fmt"

// FieldKind categorizes an input slot so the presentation layer knows which
// widget to render for it.
type FieldKind string

const (
	// FieldCoordinate is a single pixel coordinate component.
	FieldCoordinate FieldKind = "coordinate"
	// FieldText is free-form text.
	FieldText FieldKind = "text"
	// FieldSelect is a choice among enumerated options.
	FieldSelect FieldKind = "select"
)

// FieldSpec describes one named input slot required to compile an action.
// Label and Placeholder are passed through to the presentation layer
// unchanged; they carry no weight in compilation.
type FieldSpec struct {
	Name        string    `json:"name"`
	Kind        FieldKind `json:"kind"`
	Label       string    `json:"label"`
	Placeholder string    `json:"placeholder,omitempty"`

	// Options and Default are set only for FieldSelect. Default is always a
	// member of Options and is applied by the presentation layer when the
	// operator made no explicit choice.
	Options []string `json:"options,omitempty"`
	Default string   `json:"default,omitempty"`

	// Optional fields may be absent from the parameter set; the renderer
	// substitutes a documented default instead of signaling incomplete.
	Optional bool `json:"optional,omitempty"`
}

// Params maps field names to operator-entered values for one compilation.
// Compile never mutates the map it is given.
type Params map[string]string

// ActionDefinition declares the input schema and rendering rule for one
// action kind. Definitions are created once at init and never mutated.
type ActionDefinition struct {
	Description string      `json:"description"`
	Fields      []FieldSpec `json:"fields"`

	render func(Params) string
}

// Point-based single-coordinate actions: click(point='<point>x y</point>').
func formatPoint(kind, x, y string) string {
	return fmt.Sprintf("%s(point='<point>%s %s</point>')", kind, x, y)
}

// Content actions: type(content='...') and finished(content='...').
func formatContent(kind, content string) string {
	return fmt.Sprintf("%s(content='%s')", kind, content)
}

// Key actions: hotkey/press/keydown/keyup(key='...').
func formatKey(kind, key string) string {
	return fmt.Sprintf("%s(key='%s')", kind, key)
}

// Region actions spanning two points: drag and select.
func formatRegion(kind, x1, y1, x2, y2 string) string {
	return fmt.Sprintf("%s(start_point='<point>%s %s</point>', end_point='<point>%s %s</point>')",
		kind, x1, y1, x2, y2)
}

// formatScroll renders the scroll command. The pixels argument is the only
// unquoted value in the grammar and defaults to 100 when the operator left
// it empty.
func formatScroll(x, y, direction, pixels string) string {
	if pixels == "" {
		pixels = DefaultScrollPixels
	}
	return fmt.Sprintf("scroll(point='<point>%s %s</point>', direction='%s', pixels=%s)",
		x, y, direction, pixels)
}

// DefaultScrollPixels is substituted for a missing scroll pixel count.
const DefaultScrollPixels = "100"

func coordinateFields(xLabel, yLabel, xPlaceholder, yPlaceholder string) []FieldSpec {
	return []FieldSpec{
		{Name: "x", Kind: FieldCoordinate, Label: xLabel, Placeholder: xPlaceholder},
		{Name: "y", Kind: FieldCoordinate, Label: yLabel, Placeholder: yPlaceholder},
	}
}

func regionFields() []FieldSpec {
	return []FieldSpec{
		{Name: "x1", Kind: FieldCoordinate, Label: "Start X", Placeholder: "100"},
		{Name: "y1", Kind: FieldCoordinate, Label: "Start Y", Placeholder: "100"},
		{Name: "x2", Kind: FieldCoordinate, Label: "End X", Placeholder: "500"},
		{Name: "y2", Kind: FieldCoordinate, Label: "End Y", Placeholder: "500"},
	}
}

func pointDefinition(kind, description string) ActionDefinition {
	return ActionDefinition{
		Description: description,
		Fields:      coordinateFields("X coordinate", "Y coordinate", "1710", "100"),
		render: func(p Params) string {
			return formatPoint(kind, p["x"], p["y"])
		},
	}
}

func keyDefinition(kind, description, placeholder string) ActionDefinition {
	return ActionDefinition{
		Description: description,
		Fields: []FieldSpec{
			{Name: "key", Kind: FieldText, Label: keyLabel(kind), Placeholder: placeholder},
		},
		render: func(p Params) string {
			return formatKey(kind, p["key"])
		},
	}
}

func keyLabel(kind string) string {
	if kind == "hotkey" {
		return "Key combination"
	}
	return "Key name"
}

func regionDefinition(kind, description string) ActionDefinition {
	return ActionDefinition{
		Description: description,
		Fields:      regionFields(),
		render: func(p Params) string {
			return formatRegion(kind, p["x1"], p["y1"], p["x2"], p["y2"])
		},
	}
}

// Kinds lists every registered action kind in presentation order. The order
// matches the registry's declaration order and drives default rendering in
// form UIs; it never changes at runtime.
var Kinds = []string{
	"click",
	"left_double",
	"right_single",
	"hover",
	"type",
	"hotkey",
	"press",
	"keydown",
	"keyup",
	"drag",
	"select",
	"scroll",
	"finished",
}

// registry is the fixed action table. It is populated once here and treated
// as read-only everywhere else, which is what makes Lookup and Compile safe
// for concurrent callers.
var registry = map[string]ActionDefinition{
	"click":        pointDefinition("click", "Single left click"),
	"left_double":  pointDefinition("left_double", "Double left click"),
	"right_single": pointDefinition("right_single", "Single right click"),
	"hover":        pointDefinition("hover", "Hover over element"),

	"type": {
		Description: "Type text",
		Fields: []FieldSpec{
			{Name: "content", Kind: FieldText, Label: "Text to type", Placeholder: "Hello World"},
		},
		render: func(p Params) string { return formatContent("type", p["content"]) },
	},

	"hotkey":  keyDefinition("hotkey", "Keyboard shortcut (space-separated)", "ctrl c"),
	"press":   keyDefinition("press", "Press single key", "enter"),
	"keydown": keyDefinition("keydown", "Press and hold key", "shift"),
	"keyup":   keyDefinition("keyup", "Release key", "shift"),

	"drag":   regionDefinition("drag", "Drag from start to end"),
	"select": regionDefinition("select", "Select/highlight area"),

	"scroll": {
		Description: "Scroll in direction",
		Fields: []FieldSpec{
			{Name: "x", Kind: FieldCoordinate, Label: "X coordinate", Placeholder: "800"},
			{Name: "y", Kind: FieldCoordinate, Label: "Y coordinate", Placeholder: "600"},
			{Name: "direction", Kind: FieldSelect, Label: "Direction", Options: []string{"up", "down", "left", "right"}, Default: "down"},
			{Name: "pixels", Kind: FieldText, Label: "Pixels", Placeholder: "100", Optional: true},
		},
		render: func(p Params) string {
			return formatScroll(p["x"], p["y"], p["direction"], p["pixels"])
		},
	},

	"finished": {
		Description: "Task completed",
		Fields: []FieldSpec{
			{Name: "content", Kind: FieldText, Label: "Completion message", Placeholder: "Task completed successfully"},
		},
		render: func(p Params) string { return formatContent("finished", p["content"]) },
	},
}

// Lookup returns the definition for kind. An unknown kind is not an error at
// this layer: ok=false tells the caller to fall back to the free-form custom
// action path.
func Lookup(kind string) (ActionDefinition, bool) {
	def, ok := registry[kind]
	return def, ok
}

// Definitions returns the registered definitions keyed by kind. The result
// shares the immutable registry data; callers must not modify field slices.
func Definitions() map[string]ActionDefinition {
	out := make(map[string]ActionDefinition, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Compile renders kind and params into the canonical command string.
//
// For a registered kind, every required declared field must carry a non-empty
// value; otherwise Compile reports ok=false ("incomplete") and the caller is
// expected to re-prompt rather than treat it as a fault. Optional fields
// (currently only scroll's pixels) fall back to their documented default.
//
// For an unknown kind, Compile returns the literal placeholder "kind(...)"
// with ok=true — a visibly unfinished command the caller must recognize as
// "not yet specified". Compile never mutates params and is deterministic:
// identical inputs yield byte-identical output.
func Compile(kind string, params Params) (string, bool) {
	def, ok := registry[kind]
	if !ok {
		return fmt.Sprintf("%s(...)", kind), true
	}

	for _, field := range def.Fields {
		if field.Optional {
			continue
		}
		if params[field.Name] == "" {
			return "", false
		}
	}

	return def.render(params), true
}
