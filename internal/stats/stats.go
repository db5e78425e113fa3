// Package stats computes and renders the aggregate statistics of a
// classified partition.
package stats

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/typesplit/pkg/config"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/json"
	"github.com/ajitpratap0/typesplit/pkg/models"
)

// IntegerStats aggregates the integer partition. Sum wraps on overflow.
type IntegerStats struct {
	Count int
	Min   int64
	Max   int64
	Sum   int64
	Mean  float64
}

// FloatStats aggregates the float partition using IEEE-754 arithmetic.
type FloatStats struct {
	Count int
	Min   float64
	Max   float64
	Sum   float64
	Mean  float64
}

// Extreme is a string together with its length in characters.
type Extreme struct {
	Value  string `json:"value" yaml:"value"`
	Length int    `json:"length" yaml:"length"`
}

// StringStats aggregates the string partition. On ties the first
// shortest and the first longest string win.
type StringStats struct {
	Count    int
	Shortest Extreme
	Longest  Extreme
}

// Report is the full set of statistics for one run. Aggregates of an empty
// partition are zero and are never rendered.
type Report struct {
	Integers IntegerStats
	Floats   FloatStats
	Strings  StringStats
}

// Compute aggregates p.
func Compute(p models.Partition) Report {
	var r Report

	if n := len(p.Integers); n > 0 {
		s := IntegerStats{Count: n, Min: p.Integers[0], Max: p.Integers[0]}
		for _, v := range p.Integers {
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
			s.Sum += v
		}
		s.Mean = float64(s.Sum) / float64(n)
		r.Integers = s
	}

	if n := len(p.Floats); n > 0 {
		s := FloatStats{Count: n, Min: p.Floats[0], Max: p.Floats[0]}
		for _, v := range p.Floats {
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
			s.Sum += v
		}
		s.Mean = s.Sum / float64(n)
		r.Floats = s
	}

	if n := len(p.Strings); n > 0 {
		first := extreme(p.Strings[0])
		s := StringStats{Count: n, Shortest: first, Longest: first}
		for _, v := range p.Strings[1:] {
			e := extreme(v)
			if e.Length < s.Shortest.Length {
				s.Shortest = e
			}
			if e.Length > s.Longest.Length {
				s.Longest = e
			}
		}
		r.Strings = s
	}

	return r
}

func extreme(s string) Extreme {
	return Extreme{Value: s, Length: utf8.RuneCountInString(s)}
}

// Render writes r to sink at the given level and format. Level none writes
// nothing.
func Render(sink models.Sink, r Report, level config.StatsLevel, format config.StatsFormat) error {
	if level == config.StatsNone || level == "" {
		return nil
	}
	if level != config.StatsShort && level != config.StatsFull {
		return errors.New(errors.ErrorTypeValidation, "unknown stats level").
			WithDetail("level", string(level))
	}

	full := level == config.StatsFull
	switch format {
	case config.FormatText, "":
		renderText(sink, r, full)
		return nil
	case config.FormatJSON:
		buf, err := json.MarshalToBuffer(document(r, full), "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to encode statistics as json")
		}
		defer json.PutBuffer(buf)
		emit(sink, buf.Bytes())
		return nil
	case config.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(document(r, full)); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to encode statistics as yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to encode statistics as yaml")
		}
		emit(sink, buf.Bytes())
		return nil
	default:
		return errors.New(errors.ErrorTypeValidation, "unknown stats format").
			WithDetail("format", string(format))
	}
}

func renderText(sink models.Sink, r Report, full bool) {
	sink.Line("Integers:")
	sink.Line(fmt.Sprintf("  count: %d", r.Integers.Count))
	if full && r.Integers.Count > 0 {
		sink.Line("  min: " + models.FormatInt(r.Integers.Min))
		sink.Line("  max: " + models.FormatInt(r.Integers.Max))
		sink.Line("  sum: " + models.FormatInt(r.Integers.Sum))
		sink.Line("  mean: " + models.FormatFloat(r.Integers.Mean))
	}

	sink.Line("Floats:")
	sink.Line(fmt.Sprintf("  count: %d", r.Floats.Count))
	if full && r.Floats.Count > 0 {
		sink.Line("  min: " + models.FormatFloat(r.Floats.Min))
		sink.Line("  max: " + models.FormatFloat(r.Floats.Max))
		sink.Line("  sum: " + models.FormatFloat(r.Floats.Sum))
		sink.Line("  mean: " + models.FormatFloat(r.Floats.Mean))
	}

	sink.Line("Strings:")
	sink.Line(fmt.Sprintf("  count: %d", r.Strings.Count))
	if full && r.Strings.Count > 0 {
		sink.Line(fmt.Sprintf("  shortest: %q (%d chars)", r.Strings.Shortest.Value, r.Strings.Shortest.Length))
		sink.Line(fmt.Sprintf("  longest: %q (%d chars)", r.Strings.Longest.Value, r.Strings.Longest.Length))
	}
}

func emit(sink models.Sink, data []byte) {
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		sink.Line(line)
	}
}
