package stats

import (
	"math"

	"github.com/ajitpratap0/typesplit/pkg/models"
)

// The machine-readable views omit aggregates that the level or an empty
// partition suppresses, mirroring the text report. Non-finite floats are
// rendered as strings since JSON has no literal for them.

type numericDoc struct {
	Count int         `json:"count" yaml:"count"`
	Min   interface{} `json:"min,omitempty" yaml:"min,omitempty"`
	Max   interface{} `json:"max,omitempty" yaml:"max,omitempty"`
	Sum   interface{} `json:"sum,omitempty" yaml:"sum,omitempty"`
	Mean  interface{} `json:"mean,omitempty" yaml:"mean,omitempty"`
}

type stringDoc struct {
	Count    int      `json:"count" yaml:"count"`
	Shortest *Extreme `json:"shortest,omitempty" yaml:"shortest,omitempty"`
	Longest  *Extreme `json:"longest,omitempty" yaml:"longest,omitempty"`
}

type reportDoc struct {
	Integers numericDoc `json:"integers" yaml:"integers"`
	Floats   numericDoc `json:"floats" yaml:"floats"`
	Strings  stringDoc  `json:"strings" yaml:"strings"`
}

func document(r Report, full bool) reportDoc {
	doc := reportDoc{
		Integers: numericDoc{Count: r.Integers.Count},
		Floats:   numericDoc{Count: r.Floats.Count},
		Strings:  stringDoc{Count: r.Strings.Count},
	}
	if !full {
		return doc
	}

	if s := r.Integers; s.Count > 0 {
		doc.Integers.Min, doc.Integers.Max, doc.Integers.Sum = s.Min, s.Max, s.Sum
		doc.Integers.Mean = floatValue(s.Mean)
	}
	if s := r.Floats; s.Count > 0 {
		doc.Floats.Min, doc.Floats.Max = floatValue(s.Min), floatValue(s.Max)
		doc.Floats.Sum, doc.Floats.Mean = floatValue(s.Sum), floatValue(s.Mean)
	}
	if s := r.Strings; s.Count > 0 {
		shortest, longest := s.Shortest, s.Longest
		doc.Strings.Shortest = &shortest
		doc.Strings.Longest = &longest
	}
	return doc
}

func floatValue(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return models.FormatFloat(v)
	}
	return v
}
