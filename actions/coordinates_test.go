package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseCoordinates validates the delimiter priority and trimming rules
// for every entry convention operators actually use.
func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		first  string
		second string
	}{
		{"CommaSeparated", "38,38", "38", "38"},
		{"CommaWithSpace", "38, 38", "38", "38"},
		{"SpaceAroundComma", " 1710 , 100 ", "1710", "100"},
		{"SpaceSeparated", "38 38", "38", "38"},
		{"MultipleSpaces", "38   38", "38", "38"},
		{"SingleValue", "38", "38", ""},
		{"SingleValuePadded", "  38  ", "38", ""},
		{"TrailingComma", "38,", "38", ""},
		{"LeadingComma", ",38", "", "38"},
		{"CommaBeatsSpace", "38 38,40", "38 38", "40"},
		{"FirstCommaWins", "10,20,30", "10", "20,30"},
		{"ExtraSpaceTokensDropped", "10 20 30", "10", "20"},
		{"Empty", "", "", ""},
		{"OnlySpaces", "   ", "", ""},
		{"NonNumericPassesThrough", "abc def", "abc", "def"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first, second := ParseCoordinates(tc.input)
			assert.Equal(t, tc.first, first)
			assert.Equal(t, tc.second, second)
		})
	}
}
