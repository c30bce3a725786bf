package ensemble_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/ensemble"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

// stepData builds a piecewise-constant target, the kind of structure trees
// capture exactly.
func stepData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		X.Set(i, 0, x)
		if x < float64(n)/2 {
			y.Set(i, 0, 1.0)
		} else {
			y.Set(i, 0, 5.0)
		}
	}
	return X, y
}

func TestGradientBoosting_FitsStepFunction(t *testing.T) {
	X, y := stepData(40)

	gb := ensemble.NewGradientBoosting(
		ensemble.WithNEstimators(50),
		ensemble.WithLearningRate(0.3),
		ensemble.WithMaxDepth(2),
	)
	require.NoError(t, gb.Fit(X, y))
	assert.Equal(t, 50, gb.NTrees())

	pred, err := gb.Predict(X)
	require.NoError(t, err)

	r, _ := y.Dims()
	for i := 0; i < r; i++ {
		assert.InDelta(t, y.At(i, 0), pred.At(i, 0), 0.2,
			"row %d: expected %v got %v", i, y.At(i, 0), pred.At(i, 0))
	}
}

func TestGradientBoosting_MoreTreesReduceTrainError(t *testing.T) {
	X, y := stepData(40)

	small := ensemble.NewGradientBoosting(ensemble.WithNEstimators(2), ensemble.WithLearningRate(0.1))
	large := ensemble.NewGradientBoosting(ensemble.WithNEstimators(100), ensemble.WithLearningRate(0.1))

	require.NoError(t, small.Fit(X, y))
	require.NoError(t, large.Fit(X, y))

	assert.Less(t, trainSSE(t, large, X, y), trainSSE(t, small, X, y))
}

func trainSSE(t *testing.T, gb *ensemble.GradientBoosting, X, y *mat.Dense) float64 {
	t.Helper()
	pred, err := gb.Predict(X)
	require.NoError(t, err)

	r, _ := y.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		d := pred.At(i, 0) - y.At(i, 0)
		sum += d * d
	}
	return sum
}

func TestGradientBoosting_SubsampleDeterministicForSeed(t *testing.T) {
	X, y := stepData(40)

	newModel := func() *ensemble.GradientBoosting {
		return ensemble.NewGradientBoosting(
			ensemble.WithNEstimators(20),
			ensemble.WithSubsample(0.6),
			ensemble.WithSeed(7),
		)
	}

	a, b := newModel(), newModel()
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	predA, err := a.Predict(X)
	require.NoError(t, err)
	predB, err := b.Predict(X)
	require.NoError(t, err)

	assert.True(t, mat.Equal(predA, predB))
}

func TestGradientBoosting_ConstantTarget(t *testing.T) {
	X := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		y.Set(i, 0, 3.0)
	}

	gb := ensemble.NewGradientBoosting(ensemble.WithNEstimators(10))
	require.NoError(t, gb.Fit(X, y))

	pred, err := gb.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.InDelta(t, 3.0, pred.At(i, 0), 1e-9)
	}
}

func TestGradientBoosting_NotFitted(t *testing.T) {
	gb := ensemble.NewGradientBoosting()

	_, err := gb.Predict(mat.NewDense(1, 1, []float64{1}))
	require.Error(t, err)

	var nf *sgerrors.NotFittedError
	assert.True(t, sgerrors.As(err, &nf))
}

func TestGradientBoosting_InvalidParams(t *testing.T) {
	X, y := stepData(10)

	tests := []struct {
		name string
		gb   *ensemble.GradientBoosting
	}{
		{"zero estimators", ensemble.NewGradientBoosting(ensemble.WithNEstimators(0))},
		{"zero learning rate", ensemble.NewGradientBoosting(ensemble.WithLearningRate(0))},
		{"zero depth", ensemble.NewGradientBoosting(ensemble.WithMaxDepth(0))},
		{"zero min leaf", ensemble.NewGradientBoosting(ensemble.WithMinSamplesLeaf(0))},
		{"subsample above one", ensemble.NewGradientBoosting(ensemble.WithSubsample(1.5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.gb.Fit(X, y)
			require.Error(t, err)

			var ve *sgerrors.ValidationError
			assert.True(t, sgerrors.As(err, &ve))
		})
	}
}

func TestGradientBoosting_DimensionMismatch(t *testing.T) {
	X, y := stepData(10)

	gb := ensemble.NewGradientBoosting(ensemble.WithNEstimators(5))
	require.NoError(t, gb.Fit(X, y))

	_, err := gb.Predict(mat.NewDense(2, 3, nil))
	require.Error(t, err)

	var de *sgerrors.DimensionError
	assert.True(t, sgerrors.As(err, &de))
}

func TestGradientBoosting_PredictionsAreFinite(t *testing.T) {
	X, y := stepData(20)

	gb := ensemble.NewGradientBoosting(ensemble.WithNEstimators(30))
	require.NoError(t, gb.Fit(X, y))

	pred, err := gb.Predict(X)
	require.NoError(t, err)

	r, _ := pred.Dims()
	for i := 0; i < r; i++ {
		assert.False(t, math.IsNaN(pred.At(i, 0)))
		assert.False(t, math.IsInf(pred.At(i, 0), 0))
	}
}
