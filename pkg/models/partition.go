package models

// Partition holds classified values in the order the merge emitted them.
// A Partition belongs to a single run; it grows during the merge and is
// read-only afterwards.
type Partition struct {
	Integers []int64
	Floats   []float64
	Strings  []string
}

// Add appends a classified line to the matching sequence.
func (p *Partition) Add(l Line) {
	switch l.Kind {
	case Integer:
		p.Integers = append(p.Integers, l.Int)
	case Float:
		p.Floats = append(p.Floats, l.Float)
	default:
		p.Strings = append(p.Strings, l.Text)
	}
}

// Len returns the number of values of the given kind.
func (p *Partition) Len(k Kind) int {
	switch k {
	case Integer:
		return len(p.Integers)
	case Float:
		return len(p.Floats)
	case String:
		return len(p.Strings)
	default:
		return 0
	}
}

// Total returns the number of values across all kinds.
func (p *Partition) Total() int {
	return len(p.Integers) + len(p.Floats) + len(p.Strings)
}

// Values returns the output forms of the given kind, in emission order.
func (p *Partition) Values(k Kind) []string {
	switch k {
	case Integer:
		out := make([]string, len(p.Integers))
		for i, v := range p.Integers {
			out[i] = FormatInt(v)
		}
		return out
	case Float:
		out := make([]string, len(p.Floats))
		for i, v := range p.Floats {
			out[i] = FormatFloat(v)
		}
		return out
	case String:
		out := make([]string, len(p.Strings))
		copy(out, p.Strings)
		return out
	default:
		return nil
	}
}
