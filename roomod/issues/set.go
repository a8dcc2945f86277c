package issues

import (
	"sort"
)

// Set is an unordered collection of issue kinds for a single submission evaluation. The zero value is an empty set.
type Set struct {
	m map[Kind]bool
}

func NewSet(kinds ...Kind) Set {
	s := Set{m: make(map[Kind]bool, len(kinds))}
	for _, k := range kinds {
		s.m[k] = true
	}
	return s
}

func (s Set) Has(k Kind) bool {
	return s.m[k]
}

func (s Set) Len() int {
	return len(s.m)
}

// With returns a new set containing the receiver's kinds plus the provided ones.
func (s Set) With(kinds ...Kind) Set {
	out := Set{m: make(map[Kind]bool, len(s.m)+len(kinds))}
	for k := range s.m {
		out.m[k] = true
	}
	for _, k := range kinds {
		out.m[k] = true
	}
	return out
}

// Kinds returns the members sorted lexically by name, not by registry ID.
func (s Set) Kinds() []Kind {
	out := make([]Kind, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s Set) Strings() []string {
	kinds := s.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
