package group

import (
	"math"
	"sort"
	"strconv"
)

// Index maps each group label to the row indices bearing that label. Labels are kept in the
// order they were first encountered so iteration is reproducible run to run.
type Index struct {
	labels []string
	rows   map[string][]int
	n      int
}

// NewIndex builds the leave-one-group-out index for a column of group labels, one label per
// row. Every row index appears in exactly one group and rows keep their original order.
func NewIndex(labels []string) *Index {
	ix := &Index{
		labels: make([]string, 0),
		rows:   make(map[string][]int),
		n:      len(labels),
	}
	for i, label := range labels {
		if _, exists := ix.rows[label]; !exists {
			ix.labels = append(ix.labels, label)
		}
		ix.rows[label] = append(ix.rows[label], i)
	}
	return ix
}

// Labels returns the group labels in discovery order
func (ix *Index) Labels() []string {
	l := make([]string, len(ix.labels))
	copy(l, ix.labels)
	return l
}

// Sorted returns the group labels in ascending order. Labels that both parse as numbers are
// compared numerically.
func (ix *Index) Sorted() []string {
	l := ix.Labels()
	SortLabels(l)
	return l
}

// Rows returns the row indices of a group. Unknown groups return nil.
func (ix *Index) Rows(label string) []int {
	r, exists := ix.rows[label]
	if !exists {
		return nil
	}
	out := make([]int, len(r))
	copy(out, r)
	return out
}

// Has reports whether the label is a group in the index
func (ix *Index) Has(label string) bool {
	_, exists := ix.rows[label]
	return exists
}

// Len is the number of groups
func (ix *Index) Len() int {
	return len(ix.labels)
}

// NumRows is the number of rows the index was built from
func (ix *Index) NumRows() int {
	return ix.n
}

// Set returns the group labels as a set
func (ix *Index) Set() Set {
	return NewSet(ix.labels...)
}

// SortLabels sorts labels in place, numerically when both labels are numbers and
// lexically otherwise.
func SortLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return Less(labels[i], labels[j])
	})
}

// Less orders two group labels
func Less(a, b string) bool {
	fa, numA := parseNumber(a)
	fb, numB := parseNumber(b)
	switch {
	case numA && numB:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case numA:
		// numbers sort ahead of text
		return true
	case numB:
		return false
	}
	return a < b
}

// parseNumber reports a label as numeric when it parses as an ordered float. NaN labels sort
// as text.
func parseNumber(label string) (float64, bool) {
	f, err := strconv.ParseFloat(label, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
