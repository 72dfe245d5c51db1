package extrapolate

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-extrapolate/dataset"
	"github.com/aouyang1/go-extrapolate/group"
	"github.com/aouyang1/go-extrapolate/plot"
)

var (
	ErrNoGroupingFeature      = errors.New("no grouping feature configured")
	ErrNoEvalTarget           = errors.New("evaluation dataset has no target data")
	ErrNegativeOutlyingGroups = errors.New("number of outlying groups to mark must be non-negative")
	ErrNegativeStepSize       = errors.New("step size must be non-negative")
)

// Options configures a grouped extrapolation run
type Options struct {
	// GroupingFeature names the column whose values define groups. Required.
	GroupingFeature string `json:"grouping_feature"`

	// LabelFeature names the column used to name per group plots. Defaults to the grouping
	// feature.
	LabelFeature string `json:"label_feature"`

	// NumericFeature is the x axis of per group measured and predicted plots. Defaults to the
	// first input feature.
	NumericFeature string `json:"numeric_feature"`

	// TargetErrorFeature optionally names the column holding the measurement error of the
	// target.
	TargetErrorFeature string `json:"target_error_feature,omitempty"`

	// PlotFilter is a semicolon delimited list of field,operator,value triplets. Rows matching
	// any triplet are hidden from plots and filtered statistics but still fit and predicted.
	PlotFilter string `json:"plot_filter,omitempty"`

	// FitOnlyOnMatchedGroups fits only on training groups present in the evaluation set
	FitOnlyOnMatchedGroups bool `json:"fit_only_on_matched_groups"`

	// MarkOutlyingGroups is the number of highest error groups to label
	MarkOutlyingGroups int `json:"mark_outlying_groups"`

	// StepSize rounds predicted versus measured axes to multiples of the step when positive
	StepSize float64 `json:"step_size"`

	XLabel      string `json:"xlabel"`
	YLabel      string `json:"ylabel"`
	SplitXLabel string `json:"split_xlabel"`
	SplitYLabel string `json:"split_ylabel"`

	PlotFormat plot.Format `json:"plot_format"`
}

// NewDefaultOptions returns options with every optional field set. The grouping feature must
// still be provided.
func NewDefaultOptions() *Options {
	return &Options{
		MarkOutlyingGroups: 2,
		StepSize:           0,
		XLabel:             "Measured",
		YLabel:             "Predicted",
		SplitYLabel:        "Measured or predicted",
		PlotFormat:         plot.FormatHTML,
	}
}

// Validate runs basic validation on the options and fills in defaults. A malformed plot filter
// is reported here, before any data is read.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.GroupingFeature == "" {
		return nil, ErrNoGroupingFeature
	}
	if o.LabelFeature == "" {
		o.LabelFeature = o.GroupingFeature
	}
	if o.MarkOutlyingGroups < 0 {
		return nil, fmt.Errorf("got %d, %w", o.MarkOutlyingGroups, ErrNegativeOutlyingGroups)
	}
	if o.StepSize < 0 {
		return nil, fmt.Errorf("got %f, %w", o.StepSize, ErrNegativeStepSize)
	}
	if o.XLabel == "" {
		o.XLabel = "Measured"
	}
	if o.YLabel == "" {
		o.YLabel = "Predicted"
	}
	if o.SplitYLabel == "" {
		o.SplitYLabel = "Measured or predicted"
	}

	format, err := plot.ParseFormat(string(o.PlotFormat))
	if err != nil {
		return nil, err
	}
	o.PlotFormat = format

	if _, err := o.Filters(); err != nil {
		return nil, err
	}
	return o, nil
}

// Filters parses the plot filter expression
func (o *Options) Filters() ([]dataset.Filter, error) {
	filters, err := dataset.ParseFilters(o.PlotFilter)
	if err != nil {
		return nil, fmt.Errorf("unable to parse plot filter, %w", err)
	}
	return filters, nil
}

// FitMode returns the training row selection mode
func (o *Options) FitMode() group.FitMode {
	if o.FitOnlyOnMatchedGroups {
		return group.FitMatchedOnly
	}
	return group.FitAll
}
