// Package metrics provides evaluation metrics for regression models.
//
// The package implements the standard error metrics used to compare model
// holdout performance:
//
//   - MSE: Mean Squared Error
//   - RMSE: Root Mean Squared Error (square root of MSE)
//   - MAE: Mean Absolute Error
//   - R²: coefficient of determination
//
// All metrics operate on gonum vectors. R² is reported as an explicit error
// when the true values carry no variance, never as Inf or NaN.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

// MSE calculates the Mean Squared Error between true and predicted values.
//
// MSE measures the average squared difference between predictions and actual
// values. Lower values indicate better model performance.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, sgerrors.NewValueError("MSE", "empty vector")
	}

	if yPred.Len() != n {
		return 0, sgerrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE calculates the Root Mean Squared Error between true and predicted
// values. RMSE is the square root of MSE, expressed in the same units as the
// target variable.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
//
// MAE is more robust to outliers than MSE as it does not square the
// differences.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, sgerrors.NewValueError("MAE", "empty vector")
	}

	if yPred.Len() != n {
		return 0, sgerrors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += math.Abs(diff)
	}

	return sum / float64(n), nil
}

// R2Score calculates the coefficient of determination (R²).
//
// R² = 1 - SSE/SST where SSE is the residual sum of squares and SST is the
// total sum of squares, i.e. (n-1) times the sample variance of yTrue.
// Values range up to 1, where 1 indicates perfect predictions, 0 indicates
// predictions no better than the mean, and negative values indicate worse
// than mean predictions.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
//   - UndefinedMetricError: if all yTrue values are identical (SST = 0)
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, sgerrors.NewValueError("R2Score", "empty vector")
	}

	if yPred.Len() != n {
		return 0, sgerrors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var sst, sse float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		sst += (yTrueVal - yMean) * (yTrueVal - yMean)
		sse += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	// R² is undefined when yTrue has no variance.
	if sst == 0 {
		return 0, sgerrors.NewUndefinedMetricError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}

	return 1 - sse/sst, nil
}

// Summary bundles the three holdout metrics reported per model.
type Summary struct {
	MAE  float64
	RMSE float64
	R2   float64
}

// Evaluate computes MAE, RMSE and R² for one prediction vector.
// It fails if any individual metric is undefined for the inputs.
func Evaluate(yTrue, yPred *mat.VecDense) (Summary, error) {
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Summary{}, err
	}

	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		return Summary{}, err
	}

	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		return Summary{}, err
	}

	return Summary{MAE: mae, RMSE: rmse, R2: r2}, nil
}
