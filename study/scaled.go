package study

import (
	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/modelselection"
	"github.com/traitlab/surveyreg/preprocessing"
)

// scaledRegressor standardizes features before the inner model sees them.
// The scaler is fitted on the training data of each Fit call, so wrapping a
// model keeps cross-validation leak-free.
type scaledRegressor struct {
	scaler *preprocessing.StandardScaler
	inner  modelselection.Regressor
}

func newScaled(inner modelselection.Regressor) *scaledRegressor {
	return &scaledRegressor{
		scaler: preprocessing.NewStandardScalerDefault(),
		inner:  inner,
	}
}

func (s *scaledRegressor) Fit(X, y mat.Matrix) error {
	scaled, err := s.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	return s.inner.Fit(scaled, y)
}

func (s *scaledRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	scaled, err := s.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return s.inner.Predict(scaled)
}
