package linear_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/linear"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

const epsilon = 1e-8

func TestLinearRegression_SimpleLine(t *testing.T) {
	// y = 2x + 1
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	coefs := lr.Coefficients()
	require.Len(t, coefs, 1)
	assert.InDelta(t, 2.0, coefs[0], epsilon)
	assert.InDelta(t, 1.0, lr.Intercept, epsilon)

	XNew := mat.NewDense(2, 1, []float64{5, 6})
	pred, err := lr.Predict(XNew)
	require.NoError(t, err)

	assert.InDelta(t, 11.0, pred.At(0, 0), epsilon)
	assert.InDelta(t, 13.0, pred.At(1, 0), epsilon)
}

func TestLinearRegression_MultipleFeatures(t *testing.T) {
	// y = 1 + 2*x1 - 3*x2
	X := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 1,
	})
	y := mat.NewDense(5, 1, []float64{1, 3, -2, 0, 2})

	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	coefs := lr.Coefficients()
	require.Len(t, coefs, 2)
	assert.InDelta(t, 2.0, coefs[0], 1e-6)
	assert.InDelta(t, -3.0, coefs[1], 1e-6)
	assert.InDelta(t, 1.0, lr.Intercept, 1e-6)
}

func TestLinearRegression_NotFitted(t *testing.T) {
	lr := linear.NewLinearRegression()

	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)

	var nf *sgerrors.NotFittedError
	assert.True(t, sgerrors.As(err, &nf))
}

func TestLinearRegression_DimensionMismatch(t *testing.T) {
	// Full-rank fixture: the column difference is not constant, so neither
	// column is collinear with the intercept.
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 5, 5, 6})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	_, err := lr.Predict(mat.NewDense(2, 3, nil))
	require.Error(t, err)

	var de *sgerrors.DimensionError
	assert.True(t, sgerrors.As(err, &de))
}

func TestLinearRegression_SampleCountMismatch(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(2, 1, []float64{1, 2})

	err := linear.NewLinearRegression().Fit(X, y)
	assert.Error(t, err)
}

func TestLinearRegression_SingularMatrix(t *testing.T) {
	// Two identical columns make X^T X singular.
	X := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	err := linear.NewLinearRegression().Fit(X, y)
	assert.Error(t, err)
}

func TestLinearRegression_InterceptCollinearColumn(t *testing.T) {
	// x2 = x1 + 1 is collinear with the intercept column, so the design
	// matrix is rank deficient even though the raw columns differ.
	X := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	err := linear.NewLinearRegression().Fit(X, y)
	require.Error(t, err)
	assert.True(t, sgerrors.Is(err, sgerrors.ErrSingularMatrix))
}

func TestLinearRegression_Score(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	r2, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, epsilon)
}

func TestLinearRegression_PredictionsAreFinite(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	lr := linear.NewLinearRegression()
	require.NoError(t, lr.Fit(X, y))

	pred, err := lr.Predict(X)
	require.NoError(t, err)

	r, _ := pred.Dims()
	for i := 0; i < r; i++ {
		assert.False(t, math.IsNaN(pred.At(i, 0)))
		assert.False(t, math.IsInf(pred.At(i, 0), 0))
	}
}
