package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

func TestNotFittedError(t *testing.T) {
	err := sgerrors.NewNotFittedError("LinearRegression", "Predict")
	require.Error(t, err)

	var nf *sgerrors.NotFittedError
	require.True(t, sgerrors.As(err, &nf))
	assert.Equal(t, "LinearRegression", nf.ModelName)
	assert.Equal(t, "Predict", nf.Method)
	assert.Contains(t, err.Error(), "not fitted")
}

func TestDimensionError(t *testing.T) {
	err := sgerrors.NewDimensionError("Fit", 5, 3, 1)

	var de *sgerrors.DimensionError
	require.True(t, sgerrors.As(err, &de))
	assert.Equal(t, 5, de.Expected)
	assert.Equal(t, 3, de.Got)
	assert.Contains(t, err.Error(), "features")

	rowErr := sgerrors.NewDimensionError("Fit", 10, 8, 0)
	assert.Contains(t, rowErr.Error(), "rows")
}

func TestValidationError(t *testing.T) {
	err := sgerrors.NewValidationError("alpha", "must be non-negative", -1.0)

	var ve *sgerrors.ValidationError
	require.True(t, sgerrors.As(err, &ve))
	assert.Equal(t, "alpha", ve.ParamName)
	assert.Contains(t, err.Error(), "alpha")
}

func TestModelError_Unwrap(t *testing.T) {
	err := sgerrors.NewModelError("Fit", "singular matrix", sgerrors.ErrSingularMatrix)

	assert.True(t, sgerrors.Is(err, sgerrors.ErrSingularMatrix))
	assert.Contains(t, err.Error(), "singular matrix")
}

func TestUndefinedMetricError(t *testing.T) {
	err := sgerrors.NewUndefinedMetricError("R2Score", "no variance")

	var ue *sgerrors.UndefinedMetricError
	require.True(t, sgerrors.As(err, &ue))
	assert.Equal(t, "R2Score", ue.Metric)
}

func TestWarn_HandlerReceivesWarning(t *testing.T) {
	// Clear the zerolog hook so the plain handler runs, then restore it to
	// no-op for other tests.
	sgerrors.SetZerologWarnFunc(nil)
	defer sgerrors.SetZerologWarnFunc(func(error) {})

	var got error
	sgerrors.SetWarningHandler(func(w error) { got = w })
	defer sgerrors.SetWarningHandler(nil)

	warning := sgerrors.NewConvergenceWarning("SVR", 100, "")
	sgerrors.Warn(warning)

	require.Error(t, got)
	var cw *sgerrors.ConvergenceWarning
	require.True(t, sgerrors.As(got, &cw))
	assert.Equal(t, "SVR", cw.Algorithm)
	assert.Equal(t, 100, cw.Iterations)
	assert.Contains(t, cw.Error(), "failed to converge")
}

func TestDataQualityWarning(t *testing.T) {
	w := sgerrors.NewDataQualityWarning("srhealth", "value outside documented range", 3)

	assert.Contains(t, w.Error(), "srhealth")
	assert.Contains(t, w.Error(), "3 rows")
}

func TestWrap_PreservesChain(t *testing.T) {
	base := sgerrors.ErrEmptyData
	wrapped := sgerrors.Wrapf(base, "fold %d training failed", 2)

	assert.True(t, sgerrors.Is(wrapped, base))
	assert.Contains(t, wrapped.Error(), "fold 2")
}
