package actions

import "strings"

// ParseCoordinates splits one free-text coordinate entry into up to two
// components. Operators type coordinates inconsistently ("1710,100",
// "1710 100", or a single value copied from a tool that already concatenated
// both), so the split logic lives in exactly one place with one documented
// priority: the first comma wins, then whitespace, then the whole input.
//
// Rules, in order:
//   - Input contains a comma: split at the first comma only. first is the
//     trimmed text before it, second the trimmed text after it ("" when
//     nothing follows).
//   - Input contains whitespace: first and second are the first two
//     whitespace-separated tokens; second is "" when there is only one.
//   - Otherwise first is the trimmed whole input and second is "".
//
// second == "" means the second component is absent. No numeric validation
// happens here; components stay strings and the caller decides what to do
// with non-numeric content. Every input, including the empty string, yields
// a deterministic result — there is no failure mode.
func ParseCoordinates(input string) (first, second string) {
	if before, after, found := strings.Cut(input, ","); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}

	fields := strings.Fields(input)
	switch len(fields) {
	case 0:
		return strings.TrimSpace(input), ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], fields[1]
	}
}
