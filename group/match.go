package group

// Match is the outcome of comparing training groups against evaluation groups. Supported rows
// belong to evaluation groups that were seen during training, unsupported rows to groups that
// were not.
type Match struct {
	Matched Set

	// MatchedLabels and UnsupportedLabels follow evaluation discovery order
	MatchedLabels     []string
	UnsupportedLabels []string

	Supported   []int
	Unsupported []int
}

// MatchGroups intersects the training and evaluation groups and splits the evaluation rows
// into supported and unsupported rows. Evaluation groups are walked in discovery order so the
// row lists are deterministic.
func MatchGroups(train, eval *Index) Match {
	m := Match{
		Matched:           train.Set().Intersect(eval.Set()),
		MatchedLabels:     make([]string, 0),
		UnsupportedLabels: make([]string, 0),
		Supported:         make([]int, 0),
		Unsupported:       make([]int, 0),
	}
	for _, label := range eval.labels {
		rows := eval.rows[label]
		if m.Matched.Has(label) {
			m.MatchedLabels = append(m.MatchedLabels, label)
			m.Supported = append(m.Supported, rows...)
			continue
		}
		m.UnsupportedLabels = append(m.UnsupportedLabels, label)
		m.Unsupported = append(m.Unsupported, rows...)
	}
	return m
}

// FitMode controls which training rows are used to fit a model
type FitMode int

const (
	// FitAll fits on every training row
	FitAll FitMode = iota

	// FitMatchedOnly fits only on training groups that also appear in the evaluation set
	FitMatchedOnly
)

func (f FitMode) String() string {
	switch f {
	case FitAll:
		return "fit_all"
	case FitMatchedOnly:
		return "fit_matched_only"
	}
	return "unknown"
}

// FitRows returns the training rows to fit on. With FitMatchedOnly the rows of each matched
// group are returned with groups in training discovery order and rows in row order; groups
// outside the matched set are dropped entirely. With FitAll every row is returned.
func FitRows(train *Index, matched Set, mode FitMode) []int {
	if mode != FitMatchedOnly {
		rows := make([]int, train.n)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}

	rows := make([]int, 0, train.n)
	for _, label := range train.labels {
		if !matched.Has(label) {
			continue
		}
		rows = append(rows, train.rows[label]...)
	}
	return rows
}
