// Package classify maps a single line of text to an integer, a float or a
// plain string.
//
// The grammar is fixed:
//
//	integer  -?[0-9]+
//	float    [-+]?[0-9]*\.[0-9]+([eE][-+]?[0-9]+)?
//
// Anything else is a string. A line that matches a numeric grammar but does
// not fit the target type is rejected; it never falls through to a later
// category.
package classify

import (
	"math"
	"regexp"
	"strconv"

	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/models"
)

var (
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^[-+]?[0-9]*\.[0-9]+(?:[eE][-+]?[0-9]+)?$`)
)

// Reason values reported on rejected lines.
const (
	ReasonIntegerRange = "integer_range"
	ReasonFloatRange   = "float_range"
	ReasonSyntax       = "syntax"
)

// Classify tags line. The returned error is a data error carrying the
// "reason" and "line" details; the Line is zero in that case.
func Classify(line string) (models.Line, error) {
	if integerPattern.MatchString(line) {
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return models.Line{}, reject(err, line, "integer")
		}
		return models.IntLine(v), nil
	}

	if floatPattern.MatchString(line) {
		v, err := strconv.ParseFloat(line, 64)
		if err == nil && (math.IsInf(v, 0) || math.IsNaN(v)) {
			err = strconv.ErrRange
		}
		if err != nil {
			return models.Line{}, reject(err, line, "float")
		}
		return models.FloatLine(v), nil
	}

	return models.TextLine(line), nil
}

func reject(err error, line, kind string) error {
	reason := ReasonSyntax
	if errors.Is(err, strconv.ErrRange) {
		reason = ReasonIntegerRange
		if kind == "float" {
			reason = ReasonFloatRange
		}
	}
	return errors.Wrap(err, errors.ErrorTypeData, "cannot parse "+kind).
		WithDetail("line", line).
		WithDetail("reason", reason)
}

// Reason extracts the rejection reason from an error returned by Classify.
func Reason(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		if r, ok := e.Detail("reason"); ok {
			if s, ok := r.(string); ok {
				return s
			}
		}
	}
	return ReasonSyntax
}
