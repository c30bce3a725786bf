package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/core/model"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// ImputeStrategy selects the per-column statistic SimpleImputer fills
// missing cells with.
type ImputeStrategy string

const (
	// StrategyMean fills missing cells with the column mean.
	StrategyMean ImputeStrategy = "mean"

	// StrategyMedian fills missing cells with the column median.
	StrategyMedian ImputeStrategy = "median"
)

// SimpleImputer replaces missing values (NaN) with a per-column statistic
// learned during Fit. After Transform the output contains no NaN.
type SimpleImputer struct {
	state *model.StateManager

	// Strategy selects the fill statistic.
	Strategy ImputeStrategy

	// Statistics holds the learned per-column fill values.
	Statistics []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	logger log.Logger
}

// NewSimpleImputer creates a SimpleImputer with the given strategy.
func NewSimpleImputer(strategy ImputeStrategy) *SimpleImputer {
	return &SimpleImputer{
		state:    model.NewStateManager(),
		Strategy: strategy,
		logger: log.GetLoggerWithName("preprocessing").With(
			log.ModelNameKey, "SimpleImputer",
		),
	}
}

// IsFitted reports whether Fit has run.
func (im *SimpleImputer) IsFitted() bool {
	return im.state.IsFitted()
}

// Fit learns the per-column fill statistic from the observed (non-NaN)
// values of X.
//
// Errors:
//   - ModelError(ErrEmptyData): if X is empty
//   - ModelError(ErrAllMissing): if some column has no observed value
//   - ValidationError: if the strategy is unknown
func (im *SimpleImputer) Fit(X mat.Matrix) (err error) {
	defer sgerrors.Recover(&err, "SimpleImputer.Fit")

	if im.Strategy != StrategyMean && im.Strategy != StrategyMedian {
		return sgerrors.NewValidationError("strategy", "must be mean or median", string(im.Strategy))
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return sgerrors.NewModelError("SimpleImputer.Fit", "empty data", sgerrors.ErrEmptyData)
	}

	im.NFeatures = c
	im.Statistics = make([]float64, c)

	for j := 0; j < c; j++ {
		observed := make([]float64, 0, r)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}

		if len(observed) == 0 {
			return sgerrors.NewModelError("SimpleImputer.Fit",
				fmt.Sprintf("column %d has no observed values", j), sgerrors.ErrAllMissing)
		}

		switch im.Strategy {
		case StrategyMean:
			sum := 0.0
			for _, v := range observed {
				sum += v
			}
			im.Statistics[j] = sum / float64(len(observed))
		case StrategyMedian:
			im.Statistics[j] = median(observed)
		}
	}

	im.state.SetDimensions(c, r)
	im.state.SetFitted()

	im.logger.Debug("Imputer fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Transform returns a copy of X with every NaN replaced by the fitted
// column statistic.
func (im *SimpleImputer) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer sgerrors.Recover(&err, "SimpleImputer.Transform")
	if err := im.state.RequireFitted("SimpleImputer", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != im.NFeatures {
		return nil, sgerrors.NewDimensionError("SimpleImputer.Transform", im.NFeatures, c, 1)
	}

	filled := 0
	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = im.Statistics[j]
				filled++
			}
			result.Set(i, j, v)
		}
	}

	if filled > 0 {
		im.logger.Debug("Missing values imputed",
			log.OperationKey, log.OperationTransform,
			"cells_filled", filled,
		)
	}
	return result, nil
}

// FitTransform fits the imputer and transforms X in one step.
func (im *SimpleImputer) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := im.Fit(X); err != nil {
		return nil, err
	}
	return im.Transform(X)
}

// ImputeVector fills NaN entries of a target vector with the fitted
// statistic of a single-column imputer.
func (im *SimpleImputer) ImputeVector(y *mat.VecDense) (*mat.VecDense, error) {
	if err := im.state.RequireFitted("SimpleImputer", "ImputeVector"); err != nil {
		return nil, err
	}
	if im.NFeatures != 1 {
		return nil, sgerrors.NewDimensionError("SimpleImputer.ImputeVector", 1, im.NFeatures, 1)
	}

	out := mat.NewVecDense(y.Len(), nil)
	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		if math.IsNaN(v) {
			v = im.Statistics[0]
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// median returns the median of values; the slice is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
