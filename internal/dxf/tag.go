package dxf

import (
	"strconv"
	"strings"
)

// Tag is one group-code/value pair, the atomic unit of a DXF file.
// The code tells the reader what the value means: 0 introduces a new
// entity or structural keyword, 8 is a layer name, 10/20/30 are X/Y/Z
// coordinates, and so on.
type Tag struct {
	Code  int
	Value string

	// Line is the 1-based line number of the code line in the input.
	Line int
}

// Float parses the value as a float64. Malformed numbers read as 0,
// matching permissive CAD readers.
func (t Tag) Float() float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	return f
}

// Int parses the value as an int. Malformed numbers read as 0.
func (t Tag) Int() int {
	i, _ := strconv.Atoi(strings.TrimSpace(t.Value))
	return i
}

// Text returns the value with surrounding whitespace removed.
func (t Tag) Text() string {
	return strings.TrimSpace(t.Value)
}

// isEntityStart reports whether the tag introduces a new record.
func (t Tag) isEntityStart() bool {
	return t.Code == 0
}
