package group

// Set is an unordered collection of group labels
type Set map[string]struct{}

// NewSet creates a set from the given labels
func NewSet(labels ...string) Set {
	s := make(Set, len(labels))
	for _, label := range labels {
		s[label] = struct{}{}
	}
	return s
}

// Has reports whether the label is in the set
func (s Set) Has(label string) bool {
	_, exists := s[label]
	return exists
}

// Intersect returns the labels present in both sets
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set)
	for label := range small {
		if large.Has(label) {
			out[label] = struct{}{}
		}
	}
	return out
}

// Difference returns the labels in s that are not in other
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for label := range s {
		if !other.Has(label) {
			out[label] = struct{}{}
		}
	}
	return out
}

// Sorted returns the labels in ascending order
func (s Set) Sorted() []string {
	l := make([]string, 0, len(s))
	for label := range s {
		l = append(l, label)
	}
	SortLabels(l)
	return l
}
