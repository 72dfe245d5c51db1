package cv

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/aouyang1/go-extrapolate/evaluate"
	"github.com/aouyang1/go-extrapolate/group"
	mat_ "github.com/aouyang1/go-extrapolate/mat"
	"github.com/aouyang1/go-extrapolate/model"
	"github.com/aouyang1/go-extrapolate/stats"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/mat"
)

// LeaveOneGroupOutResult holds the held out prediction of every row and the error statistics of
// each group. Rows of skipped groups are predicted as NaN.
type LeaveOneGroupOutResult struct {
	Measured  []float64      `json:"measured"`
	Predicted []float64      `json:"predicted"`
	RMSE      float64        `json:"rmse"`
	PerGroup  stats.PerGroup `json:"per_group"`
	Skipped   []string       `json:"skipped_groups"`
}

// MarshalJSON encodes the predictions of skipped groups as null
func (r *LeaveOneGroupOutResult) MarshalJSON() ([]byte, error) {
	type alias LeaveOneGroupOutResult
	return json.Marshal(struct {
		*alias
		Predicted []stats.NullFloat `json:"predicted"`
	}{
		alias:     (*alias)(r),
		Predicted: stats.NewNullFloats(r.Predicted),
	})
}

// LeaveOneGroupOut fits the model on every group but one and predicts the held out group, once
// per group in discovery order. A group that leaves no training rows is skipped.
func LeaveOneGroupOut(m model.Model, x mat.Matrix, y []float64, idx *group.Index) (*LeaveOneGroupOutResult, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	n, _ := x.Dims()
	if n != len(y) || n != idx.NumRows() {
		return nil, fmt.Errorf("got %d rows, %d targets and %d group labels, %w", n, len(y), idx.NumRows(), ErrLenMismatch)
	}

	res := &LeaveOneGroupOutResult{
		Measured:  append([]float64(nil), y...),
		Predicted: make([]float64, n),
		Skipped:   make([]string, 0),
	}
	for i := range res.Predicted {
		res.Predicted[i] = math.NaN()
	}

	evaluated := 0
	for _, label := range idx.Labels() {
		test := idx.Rows(label)
		train := group.FitRows(idx, idx.Set().Difference(group.NewSet(label)), group.FitMatchedOnly)
		if len(train) == 0 {
			slog.Warn("skipping group with no training rows left", "group", label)
			res.Skipped = append(res.Skipped, label)
			continue
		}

		trainX, err := mat_.SelectRows(x, train)
		if err != nil {
			return nil, fmt.Errorf("unable to select training rows for group %s, %w", label, err)
		}
		testX, err := mat_.SelectRows(x, test)
		if err != nil {
			return nil, fmt.Errorf("unable to select held out rows for group %s, %w", label, err)
		}
		testY := mat_.Take(y, test)

		r, err := evaluate.Evaluate(m, trainX, mat_.Take(y, train), testX, testY, nil, allRows(len(test)))
		if err != nil {
			return nil, fmt.Errorf("unable to evaluate held out group %s, %w", label, err)
		}
		for i, row := range test {
			res.Predicted[row] = r.Predictions.Predicted[i]
		}
		slog.Debug("held out group", "group", label, "rows", len(test), "rmse", r.Scores.Overall)
		evaluated++
	}
	if evaluated == 0 {
		return nil, ErrNoGroupsFound
	}

	rmse, err := stats.RMSE(res.Predicted, res.Measured)
	if err != nil {
		return nil, fmt.Errorf("unable to compute overall rmse, %w", err)
	}
	res.RMSE = rmse
	res.PerGroup = stats.ComputePerGroup(idx, res.Predicted, res.Measured, nil)

	slog.Info("leave one group out cross validation",
		"groups", idx.Len(),
		"skipped", len(res.Skipped),
		"rmse", res.RMSE,
	)
	return res, nil
}
