package dcs

import "fmt"

// Standard DCS codes. A code's designator is its octal rendering, so
// code 19 is "D023". Receivers only report codes from this list.
var standardCodes = []int{
	19, 21, 22, 25, 26, 30, 35, 39, 41, 43,
	44, 53, 57, 58, 59, 60, 76, 77, 78, 82,
	85, 89, 90, 92, 99, 101, 106, 109, 110, 114,
	117, 122, 124, 133, 138, 140, 147, 149, 150, 163,
	164, 165, 166, 169, 170, 173, 177, 179, 181, 182,
	185, 188, 198, 201, 205, 213, 217, 218, 227, 230,
	233, 238, 244, 245, 249, 265, 266, 267, 275, 281,
	282, 293, 294, 298, 300, 301, 306, 308, 309, 310,
	323, 326, 334, 339, 342, 346, 358, 373, 390, 394,
	404, 407, 409, 410, 428, 434, 436, 451, 458, 467,
	473, 474, 476, 483, 492,
}

var codeSet = func() map[int]struct{} {
	m := make(map[int]struct{}, len(standardCodes))
	for _, c := range standardCodes {
		m[c] = struct{}{}
	}
	return m
}()

// ValidCode reports whether code is one of the standard DCS codes.
func ValidCode(code int) bool {
	_, ok := codeSet[code]
	return ok
}

// Codes returns the standard DCS code list in ascending order.
func Codes() []int {
	out := make([]int, len(standardCodes))
	copy(out, standardCodes)
	return out
}

// FormatCode renders a code as its user-facing designator, octal with a
// "D" prefix and an "N" suffix for inverted polarity: FormatCode(19, true)
// is "D023N".
func FormatCode(code int, inverted bool) string {
	if inverted {
		return fmt.Sprintf("D%03oN", code)
	}
	return fmt.Sprintf("D%03o", code)
}
