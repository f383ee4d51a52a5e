package actions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKinds_MatchRegistry validates that the ordered kind list and the
// registry table stay in sync.
func TestKinds_MatchRegistry(t *testing.T) {
	assert.Len(t, Kinds, len(registry))
	for _, kind := range Kinds {
		_, ok := Lookup(kind)
		assert.True(t, ok, "kind %q listed but not registered", kind)
	}
}

// TestLookup validates registry lookup for known and unknown kinds.
func TestLookup(t *testing.T) {
	t.Run("KnownKind", func(t *testing.T) {
		def, ok := Lookup("click")
		require.True(t, ok)
		assert.Equal(t, "Single left click", def.Description)
		require.Len(t, def.Fields, 2)
		assert.Equal(t, "x", def.Fields[0].Name)
		assert.Equal(t, "y", def.Fields[1].Name)
		assert.Equal(t, FieldCoordinate, def.Fields[0].Kind)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, ok := Lookup("teleport")
		assert.False(t, ok)
	})
}

// TestFieldSpec_Invariants validates the declared schema invariants: unique
// field names per definition and select defaults that are members of their
// option lists.
func TestFieldSpec_Invariants(t *testing.T) {
	for kind, def := range Definitions() {
		seen := map[string]bool{}
		for _, field := range def.Fields {
			assert.False(t, seen[field.Name], "%s: duplicate field %q", kind, field.Name)
			seen[field.Name] = true

			if field.Kind == FieldSelect {
				assert.NotEmpty(t, field.Options, "%s/%s: select without options", kind, field.Name)
				assert.Contains(t, field.Options, field.Default,
					"%s/%s: default not in options", kind, field.Name)
			}
		}
	}
}

// TestCompile_PointActions validates the point grammar for all four
// single-coordinate kinds.
func TestCompile_PointActions(t *testing.T) {
	for _, kind := range []string{"click", "left_double", "right_single", "hover"} {
		t.Run(kind, func(t *testing.T) {
			out, ok := Compile(kind, Params{"x": "1710", "y": "100"})
			require.True(t, ok)
			assert.Equal(t, fmt.Sprintf("%s(point='<point>1710 100</point>')", kind), out)
		})
	}
}

// TestCompile_ContentActions validates the content grammar for type and
// finished.
func TestCompile_ContentActions(t *testing.T) {
	out, ok := Compile("type", Params{"content": "google.com"})
	require.True(t, ok)
	assert.Equal(t, "type(content='google.com')", out)

	out, ok = Compile("finished", Params{"content": "Task completed successfully"})
	require.True(t, ok)
	assert.Equal(t, "finished(content='Task completed successfully')", out)
}

// TestCompile_KeyActions validates the key grammar for all four key kinds.
func TestCompile_KeyActions(t *testing.T) {
	cases := map[string]string{
		"hotkey":  "ctrl c",
		"press":   "enter",
		"keydown": "shift",
		"keyup":   "shift",
	}
	for kind, key := range cases {
		t.Run(kind, func(t *testing.T) {
			out, ok := Compile(kind, Params{"key": key})
			require.True(t, ok)
			assert.Equal(t, fmt.Sprintf("%s(key='%s')", kind, key), out)
		})
	}
}

// TestCompile_RegionActions validates the start/end point grammar for drag
// and select.
func TestCompile_RegionActions(t *testing.T) {
	params := Params{"x1": "100", "y1": "100", "x2": "500", "y2": "500"}

	out, ok := Compile("drag", params)
	require.True(t, ok)
	assert.Equal(t, "drag(start_point='<point>100 100</point>', end_point='<point>500 500</point>')", out)

	out, ok = Compile("select", params)
	require.True(t, ok)
	assert.Equal(t, "select(start_point='<point>100 100</point>', end_point='<point>500 500</point>')", out)
}

// TestCompile_Scroll validates the scroll grammar including the unquoted
// pixels argument and its default.
func TestCompile_Scroll(t *testing.T) {
	t.Run("PixelsDefault", func(t *testing.T) {
		out, ok := Compile("scroll", Params{"x": "800", "y": "600", "direction": "down"})
		require.True(t, ok)
		assert.Equal(t, "scroll(point='<point>800 600</point>', direction='down', pixels=100)", out)
	})

	t.Run("PixelsExplicit", func(t *testing.T) {
		out, ok := Compile("scroll", Params{"x": "800", "y": "600", "direction": "up", "pixels": "250"})
		require.True(t, ok)
		assert.Equal(t, "scroll(point='<point>800 600</point>', direction='up', pixels=250)", out)
	})

	t.Run("MissingDirectionIsIncomplete", func(t *testing.T) {
		_, ok := Compile("scroll", Params{"x": "800", "y": "600"})
		assert.False(t, ok)
	})
}

// TestCompile_Incomplete validates that dropping any single required field
// of any kind yields the incomplete signal instead of a command string.
func TestCompile_Incomplete(t *testing.T) {
	complete := map[string]Params{
		"click":        {"x": "1", "y": "2"},
		"left_double":  {"x": "1", "y": "2"},
		"right_single": {"x": "1", "y": "2"},
		"hover":        {"x": "1", "y": "2"},
		"type":         {"content": "hi"},
		"hotkey":       {"key": "ctrl c"},
		"press":        {"key": "enter"},
		"keydown":      {"key": "shift"},
		"keyup":        {"key": "shift"},
		"drag":         {"x1": "1", "y1": "2", "x2": "3", "y2": "4"},
		"select":       {"x1": "1", "y1": "2", "x2": "3", "y2": "4"},
		"scroll":       {"x": "1", "y": "2", "direction": "down", "pixels": "100"},
		"finished":     {"content": "done"},
	}

	for kind, params := range complete {
		def, ok := Lookup(kind)
		require.True(t, ok)

		for _, field := range def.Fields {
			if field.Optional {
				continue
			}

			t.Run(kind+"/missing_"+field.Name, func(t *testing.T) {
				partial := Params{}
				for k, v := range params {
					if k != field.Name {
						partial[k] = v
					}
				}
				out, ok := Compile(kind, partial)
				assert.False(t, ok)
				assert.Empty(t, out)
			})

			t.Run(kind+"/empty_"+field.Name, func(t *testing.T) {
				partial := Params{}
				for k, v := range params {
					partial[k] = v
				}
				partial[field.Name] = ""
				_, ok := Compile(kind, partial)
				assert.False(t, ok)
			})
		}
	}
}

// TestCompile_UnknownKind validates the opaque placeholder fallback for
// kinds outside the registry.
func TestCompile_UnknownKind(t *testing.T) {
	out, ok := Compile("unknown_kind", Params{})
	assert.True(t, ok)
	assert.Equal(t, "unknown_kind(...)", out)

	out, ok = Compile("wait_for_element", Params{"irrelevant": "x"})
	assert.True(t, ok)
	assert.Equal(t, "wait_for_element(...)", out)
}

// TestCompile_DoesNotMutateParams validates that compilation leaves the
// caller's parameter map untouched, including the defaulted scroll pixels.
func TestCompile_DoesNotMutateParams(t *testing.T) {
	params := Params{"x": "800", "y": "600", "direction": "down"}
	_, ok := Compile("scroll", params)
	require.True(t, ok)

	assert.Equal(t, Params{"x": "800", "y": "600", "direction": "down"}, params)
	_, present := params["pixels"]
	assert.False(t, present)
}

// TestCompile_Idempotent validates byte-identical output for repeated calls
// with identical input.
func TestCompile_Idempotent(t *testing.T) {
	params := Params{"x": "1710", "y": "100"}
	first, ok := Compile("click", params)
	require.True(t, ok)
	second, ok := Compile("click", params)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

// TestCompile_VerbatimInterpolation documents the known quoting limitation:
// embedded single quotes pass through unescaped.
func TestCompile_VerbatimInterpolation(t *testing.T) {
	out, ok := Compile("type", Params{"content": "it's here"})
	require.True(t, ok)
	assert.Equal(t, "type(content='it's here')", out)
}
