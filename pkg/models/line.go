// Package models defines the data shared by every typesplit stage: loaded
// sources, classified lines, the three-way partition they accumulate into,
// and the sink used to report human-readable text.
package models

import (
	"strconv"
)

// Kind tags a classified line.
type Kind int

const (
	// Integer lines match -?[0-9]+ and fit in an int64
	Integer Kind = iota
	// Float lines match the fixed-point/exponential grammar and fit in a float64
	Float
	// String is everything else, verbatim
	String
)

// Kinds lists every kind in output order.
var Kinds = []Kind{Integer, Float, String}

// Name returns the partition name used for output files and metrics labels.
func (k Kind) Name() string {
	switch k {
	case Integer:
		return "integers"
	case Float:
		return "floats"
	case String:
		return "strings"
	default:
		return "unknown"
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Line is a classified input line. Only the field matching Kind is set.
type Line struct {
	Kind  Kind
	Int   int64
	Float float64
	Text  string
}

// IntLine builds an Integer line.
func IntLine(v int64) Line { return Line{Kind: Integer, Int: v} }

// FloatLine builds a Float line.
func FloatLine(v float64) Line { return Line{Kind: Float, Float: v} }

// TextLine builds a String line.
func TextLine(s string) Line { return Line{Kind: String, Text: s} }

// String returns the line's output form.
func (l Line) String() string {
	switch l.Kind {
	case Integer:
		return FormatInt(l.Int)
	case Float:
		return FormatFloat(l.Float)
	default:
		return l.Text
	}
}

// FormatInt renders an integer as plain decimal.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat renders a float as its shortest round-tripping representation.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
