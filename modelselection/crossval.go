package modelselection

import (
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/traitlab/surveyreg/metrics"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// Regressor is the estimator contract the cross-validation driver works
// against. Implementations follow the Fit/Predict pattern over gonum
// matrices; Predict returns an n×1 matrix of predictions.
type Regressor interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// CVResult stores per-fold resample metrics for one model.
type CVResult struct {
	ModelName string
	Folds     []metrics.Summary
	FitTimes  []time.Duration
}

// MeanRMSE returns the mean RMSE across folds.
func (cv *CVResult) MeanRMSE() float64 {
	return stat.Mean(collect(cv.Folds, func(s metrics.Summary) float64 { return s.RMSE }), nil)
}

// StdRMSE returns the sample standard deviation of RMSE across folds.
func (cv *CVResult) StdRMSE() float64 {
	if len(cv.Folds) <= 1 {
		return 0
	}
	return stat.StdDev(collect(cv.Folds, func(s metrics.Summary) float64 { return s.RMSE }), nil)
}

// MeanMAE returns the mean MAE across folds.
func (cv *CVResult) MeanMAE() float64 {
	return stat.Mean(collect(cv.Folds, func(s metrics.Summary) float64 { return s.MAE }), nil)
}

// MeanR2 returns the mean R² across folds.
func (cv *CVResult) MeanR2() float64 {
	return stat.Mean(collect(cv.Folds, func(s metrics.Summary) float64 { return s.R2 }), nil)
}

func collect(folds []metrics.Summary, f func(metrics.Summary) float64) []float64 {
	out := make([]float64, len(folds))
	for i, s := range folds {
		out[i] = f(s)
	}
	return out
}

// CrossValidate fits a fresh model per fold and scores it on the fold's
// test indices. The fold set is taken as given so every model in a
// comparison sees identical resamples.
//
// newModel must return an unfitted instance; fitting is sequential and
// deterministic for seeded models.
func CrossValidate(name string, newModel func() Regressor, X mat.Matrix, y *mat.VecDense, folds []CVFold) (*CVResult, error) {
	if len(folds) == 0 {
		return nil, sgerrors.NewValueError("CrossValidate", "no folds supplied")
	}

	logger := log.GetLoggerWithName("modelselection").With(
		log.ModelNameKey, name,
	)

	result := &CVResult{
		ModelName: name,
		Folds:     make([]metrics.Summary, len(folds)),
		FitTimes:  make([]time.Duration, len(folds)),
	}

	for i, fold := range folds {
		if len(fold.TrainIndices) == 0 || len(fold.TestIndices) == 0 {
			return nil, sgerrors.NewValueError("CrossValidate", "fold with empty train or test set")
		}

		trainX, trainY := Subset(X, y, fold.TrainIndices)
		testX, testY := Subset(X, y, fold.TestIndices)

		m := newModel()

		start := time.Now()
		if err := m.Fit(trainX, trainY); err != nil {
			return nil, sgerrors.Wrapf(err, "fold %d training failed", i)
		}
		result.FitTimes[i] = time.Since(start)

		pred, err := m.Predict(testX)
		if err != nil {
			return nil, sgerrors.Wrapf(err, "fold %d prediction failed", i)
		}

		summary, err := metrics.Evaluate(testY, predVec(pred))
		if err != nil {
			return nil, sgerrors.Wrapf(err, "fold %d scoring failed", i)
		}
		result.Folds[i] = summary

		logger.Debug("Fold scored",
			log.FoldKey, i,
			log.RMSEKey, summary.RMSE,
			log.MAEKey, summary.MAE,
			log.R2ScoreKey, summary.R2,
		)
	}

	logger.Info("Cross-validation finished",
		"n_folds", len(folds),
		log.RMSEKey, result.MeanRMSE(),
		log.MAEKey, result.MeanMAE(),
		log.R2ScoreKey, result.MeanR2(),
	)
	return result, nil
}

// predVec flattens an n×1 prediction matrix to a vector.
func predVec(pred mat.Matrix) *mat.VecDense {
	r, _ := pred.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, pred.At(i, 0))
	}
	return v
}
