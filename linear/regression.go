// Package linear provides the linear model families the study compares:
// ordinary least squares and elastic net regression.
//
// Both estimators follow the Fit/Predict pattern over gonum matrices and
// compose a core/model.StateManager for fitted-state tracking. Coefficients
// are exposed for inspection once fitted.
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/core/model"
	"github.com/traitlab/surveyreg/core/parallel"
	"github.com/traitlab/surveyreg/metrics"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// LinearRegression is an ordinary least squares regression model.
type LinearRegression struct {
	State     *model.StateManager // State manager (composition instead of embedding)
	Weights   *mat.VecDense       // Model coefficients
	Intercept float64             // Model intercept
	NFeatures int                 // Number of features
	logger    log.Logger
}

// NewLinearRegression creates a new untrained ordinary least squares model.
// The model solves the normal equations (X^T X) w = X^T y and must be
// trained with Fit before making predictions.
func NewLinearRegression() *LinearRegression {
	lr := &LinearRegression{
		State: model.NewStateManager(),
	}

	lr.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "LinearRegression",
		log.ComponentKey, "linear",
	)

	return lr
}

// Fit trains the model on X (n_samples × n_features) and y (n_samples × 1).
//
// Errors:
//   - ModelError(ErrEmptyData): if X or y are empty
//   - DimensionError: if the sample counts of X and y differ
//   - ModelError(ErrSingularMatrix): if X^T X cannot be inverted
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer sgerrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	lr.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	if r == 0 || c == 0 {
		return sgerrors.NewModelError("LinearRegression.Fit", "empty data", sgerrors.ErrEmptyData)
	}

	if ry != r {
		return sgerrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}

	if cy != 1 {
		return sgerrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// Prepend a column of 1s for the intercept term: X_design = [1, X].
	XDesign := mat.NewDense(r, c+1, nil)

	// Sequential below this row count; the copy is memory bound.
	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XDesign.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XDesign.Set(i, j+1, X.At(i, j))
			}
		}
	})

	// Solve the normal equations (X^T X)^(-1) X^T y.
	var XT mat.Dense
	XT.CloneFrom(XDesign.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XDesign)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return sgerrors.NewModelError("LinearRegression.Fit", "singular matrix", sgerrors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	weights := mat.NewVecDense(c+1, nil)
	weights.MulVec(&XTXInv, &XTy)

	lr.Intercept = weights.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, weights.AtVec(i+1))
	}

	lr.State.SetFitted()
	lr.State.SetDimensions(lr.NFeatures, r)

	lr.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	return nil
}

// Predict computes y_pred = X * weights + intercept for each row of X.
//
// Errors:
//   - NotFittedError: if the model has not been trained
//   - DimensionError: if X has a different feature count than training data
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer sgerrors.Recover(&err, "LinearRegression.Predict")
	if err := lr.State.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, sgerrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Score returns the R² coefficient of determination on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	yVec := mat.NewVecDense(r, nil)
	predVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, pred.At(i, 0))
	}

	return metrics.R2Score(yVec, predVec)
}

// Coefficients returns a copy of the learned weights.
func (lr *LinearRegression) Coefficients() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}
