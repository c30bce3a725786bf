// Package svm provides support vector regression with a linear kernel,
// trained by stochastic subgradient descent on the epsilon-insensitive loss.
package svm

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/core/model"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// SVR is a linear support vector regression model. Residuals inside the
// epsilon tube contribute no loss; outside the tube the loss grows linearly,
// which makes the fit robust to outlying outcome values.
//
// Training minimizes
//
//	1/(2C) ||w||² + 1/n Σ max(0, |y_i - w·x_i - b| - ε)
//
// by SGD with an inverse-scaling learning rate, one sample at a time in a
// seeded shuffled order per epoch.
type SVR struct {
	state     *model.StateManager
	C         float64
	Epsilon   float64
	MaxIter   int
	Tol       float64
	LearnRate float64
	PowerT    float64
	Seed      uint64
	Weights   *mat.VecDense
	Intercept float64
	NIter     int
	nFeatures int
	logger    log.Logger
}

// SVROption configures an SVR model.
type SVROption func(*SVR)

// WithC sets the regularization parameter (default 1.0). Larger C means
// less regularization.
func WithC(c float64) SVROption {
	return func(s *SVR) {
		s.C = c
	}
}

// WithEpsilon sets the width of the insensitive tube (default 0.1).
func WithEpsilon(eps float64) SVROption {
	return func(s *SVR) {
		s.Epsilon = eps
	}
}

// WithMaxIter sets the maximum number of epochs (default 1000).
func WithMaxIter(maxIter int) SVROption {
	return func(s *SVR) {
		s.MaxIter = maxIter
	}
}

// WithTol sets the stopping tolerance on the epoch loss change (default 1e-4).
func WithTol(tol float64) SVROption {
	return func(s *SVR) {
		s.Tol = tol
	}
}

// WithLearningRate sets the initial learning rate eta0 (default 0.01).
// The effective rate decays as eta0 / t^power_t.
func WithLearningRate(eta0 float64) SVROption {
	return func(s *SVR) {
		s.LearnRate = eta0
	}
}

// WithSeed sets the seed for the per-epoch sample shuffle (default 42).
func WithSeed(seed uint64) SVROption {
	return func(s *SVR) {
		s.Seed = seed
	}
}

// NewSVR creates a linear SVR model with the given options.
func NewSVR(opts ...SVROption) *SVR {
	s := &SVR{
		state:     model.NewStateManager(),
		C:         1.0,
		Epsilon:   0.1,
		MaxIter:   1000,
		Tol:       1e-4,
		LearnRate: 0.01,
		PowerT:    0.25,
		Seed:      42,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = log.GetLoggerWithName("svm").With(
		log.ModelNameKey, "SVR",
		log.ComponentKey, "svm",
	)

	return s
}

func (s *SVR) validateParams() error {
	if s.C <= 0 {
		return sgerrors.NewValidationError("C", "must be positive", s.C)
	}
	if s.Epsilon < 0 {
		return sgerrors.NewValidationError("epsilon", "must be non-negative", s.Epsilon)
	}
	if s.MaxIter <= 0 {
		return sgerrors.NewValidationError("max_iter", "must be positive", s.MaxIter)
	}
	if s.Tol <= 0 {
		return sgerrors.NewValidationError("tol", "must be positive", s.Tol)
	}
	if s.LearnRate <= 0 {
		return sgerrors.NewValidationError("learning_rate", "must be positive", s.LearnRate)
	}
	return nil
}

// Fit trains the model by stochastic subgradient descent. Training stops
// early when the mean epoch loss changes by less than the tolerance, and
// raises a ConvergenceWarning when the epoch limit is hit instead.
func (s *SVR) Fit(X, y mat.Matrix) (err error) {
	defer sgerrors.Recover(&err, "SVR.Fit")

	if err := s.validateParams(); err != nil {
		return err
	}

	startTime := time.Now()
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return sgerrors.NewModelError("SVR.Fit", "empty data", sgerrors.ErrEmptyData)
	}
	if ry != n {
		return sgerrors.NewDimensionError("SVR.Fit", n, ry, 0)
	}
	if cy != 1 {
		return sgerrors.NewValueError("SVR.Fit", "y must be a column vector")
	}

	s.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
	)

	s.nFeatures = p

	w := make([]float64, p)
	b := 0.0
	lambda := 1.0 / (s.C * float64(n))

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed+1))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	prevLoss := math.Inf(1)
	converged := false
	t := 0

	epoch := 0
	for ; epoch < s.MaxIter; epoch++ {
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		epochLoss := 0.0
		for _, i := range order {
			t++
			eta := s.LearnRate / math.Pow(float64(t), s.PowerT)

			pred := b
			for j := 0; j < p; j++ {
				pred += w[j] * X.At(i, j)
			}

			diff := pred - y.At(i, 0)
			absDiff := math.Abs(diff)

			// Epsilon-insensitive subgradient: zero inside the tube,
			// ±1 outside.
			dloss := 0.0
			if absDiff > s.Epsilon {
				epochLoss += absDiff - s.Epsilon
				if diff > 0 {
					dloss = 1.0
				} else {
					dloss = -1.0
				}
			}

			// L2 shrinkage then loss step.
			shrink := 1.0 - eta*lambda
			for j := 0; j < p; j++ {
				w[j] = shrink*w[j] - eta*dloss*X.At(i, j)
			}
			b -= eta * dloss
		}

		if err := sgerrors.CheckNumericalStability("SVR.Fit", w, epoch); err != nil {
			return err
		}

		epochLoss /= float64(n)
		if math.Abs(prevLoss-epochLoss) < s.Tol {
			converged = true
			epoch++
			break
		}
		prevLoss = epochLoss
	}
	s.NIter = epoch

	if !converged {
		sgerrors.Warn(sgerrors.NewConvergenceWarning("SVR", s.MaxIter, ""))
	}

	s.Weights = mat.NewVecDense(p, w)
	s.Intercept = b

	s.state.SetFitted()
	s.state.SetDimensions(p, n)

	s.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.IterationKey, s.NIter,
		"converged", converged,
	)

	return nil
}

// Predict computes y_pred = X * weights + intercept for each row of X.
func (s *SVR) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer sgerrors.Recover(&err, "SVR.Predict")
	if err := s.state.RequireFitted("SVR", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, sgerrors.NewDimensionError("SVR.Predict", s.nFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := s.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * s.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Coefficients returns a copy of the learned weights.
func (s *SVR) Coefficients() []float64 {
	if s.Weights == nil {
		return nil
	}

	weights := make([]float64, s.Weights.Len())
	for i := 0; i < s.Weights.Len(); i++ {
		weights[i] = s.Weights.AtVec(i)
	}
	return weights
}
