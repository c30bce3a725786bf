package ensemble

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/core/model"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
)

// GradientBoosting is a gradient boosted ensemble of regression trees for
// squared-error loss. The model starts from the mean target and adds trees
// fitted to the current residuals, each scaled by the learning rate:
//
//	F_0(x) = mean(y)
//	F_m(x) = F_{m-1}(x) + lr · h_m(x),   h_m fitted to y - F_{m-1}
type GradientBoosting struct {
	state          *model.StateManager
	NEstimators    int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	Subsample      float64
	Seed           uint64
	trees          []*regressionTree
	initScore      float64
	nFeatures      int
	logger         log.Logger
}

// GBOption configures a GradientBoosting model.
type GBOption func(*GradientBoosting)

// WithNEstimators sets the number of boosting rounds (default 100).
func WithNEstimators(n int) GBOption {
	return func(g *GradientBoosting) {
		g.NEstimators = n
	}
}

// WithLearningRate sets the shrinkage applied to each tree (default 0.1).
func WithLearningRate(lr float64) GBOption {
	return func(g *GradientBoosting) {
		g.LearningRate = lr
	}
}

// WithMaxDepth sets the depth limit of each tree (default 3).
func WithMaxDepth(depth int) GBOption {
	return func(g *GradientBoosting) {
		g.MaxDepth = depth
	}
}

// WithMinSamplesLeaf sets the minimum samples per leaf (default 1).
func WithMinSamplesLeaf(n int) GBOption {
	return func(g *GradientBoosting) {
		g.MinSamplesLeaf = n
	}
}

// WithSubsample sets the fraction of rows sampled without replacement for
// each tree, in (0, 1] (default 1.0, no subsampling).
func WithSubsample(fraction float64) GBOption {
	return func(g *GradientBoosting) {
		g.Subsample = fraction
	}
}

// WithSeed sets the seed for row subsampling (default 42).
func WithSeed(seed uint64) GBOption {
	return func(g *GradientBoosting) {
		g.Seed = seed
	}
}

// NewGradientBoosting creates a gradient boosting model with the given
// options.
func NewGradientBoosting(opts ...GBOption) *GradientBoosting {
	g := &GradientBoosting{
		state:          model.NewStateManager(),
		NEstimators:    100,
		LearningRate:   0.1,
		MaxDepth:       3,
		MinSamplesLeaf: 1,
		Subsample:      1.0,
		Seed:           42,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = log.GetLoggerWithName("ensemble").With(
		log.ModelNameKey, "GradientBoosting",
		log.ComponentKey, "ensemble",
	)

	return g
}

func (g *GradientBoosting) validateParams() error {
	if g.NEstimators <= 0 {
		return sgerrors.NewValidationError("n_estimators", "must be positive", g.NEstimators)
	}
	if g.LearningRate <= 0 {
		return sgerrors.NewValidationError("learning_rate", "must be positive", g.LearningRate)
	}
	if g.MaxDepth <= 0 {
		return sgerrors.NewValidationError("max_depth", "must be positive", g.MaxDepth)
	}
	if g.MinSamplesLeaf <= 0 {
		return sgerrors.NewValidationError("min_samples_leaf", "must be positive", g.MinSamplesLeaf)
	}
	if g.Subsample <= 0 || g.Subsample > 1 {
		return sgerrors.NewValidationError("subsample", "must be in (0, 1]", g.Subsample)
	}
	return nil
}

// Fit trains the ensemble on X (n_samples × n_features) and y (n_samples × 1).
func (g *GradientBoosting) Fit(X, y mat.Matrix) (err error) {
	defer sgerrors.Recover(&err, "GradientBoosting.Fit")

	if err := g.validateParams(); err != nil {
		return err
	}

	startTime := time.Now()
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return sgerrors.NewModelError("GradientBoosting.Fit", "empty data", sgerrors.ErrEmptyData)
	}
	if ry != n {
		return sgerrors.NewDimensionError("GradientBoosting.Fit", n, ry, 0)
	}
	if cy != 1 {
		return sgerrors.NewValueError("GradientBoosting.Fit", "y must be a column vector")
	}

	g.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		"n_estimators", g.NEstimators,
	)

	g.nFeatures = p

	// Flatten to row-major for the tree inner loops.
	rows := make([]float64, n*p)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			rows[i*p+j] = X.At(i, j)
		}
		target[i] = y.At(i, 0)
	}

	g.initScore = 0.0
	for i := 0; i < n; i++ {
		g.initScore += target[i]
	}
	g.initScore /= float64(n)

	current := make([]float64, n)
	for i := range current {
		current[i] = g.initScore
	}

	residual := make([]float64, n)
	allIndices := make([]int, n)
	for i := range allIndices {
		allIndices[i] = i
	}

	rng := rand.New(rand.NewPCG(g.Seed, g.Seed+1))
	sampleSize := int(g.Subsample * float64(n))
	if sampleSize < 1 {
		sampleSize = 1
	}

	g.trees = make([]*regressionTree, 0, g.NEstimators)

	for m := 0; m < g.NEstimators; m++ {
		for i := 0; i < n; i++ {
			residual[i] = target[i] - current[i]
		}

		indices := allIndices
		if g.Subsample < 1.0 {
			rng.Shuffle(n, func(a, b int) {
				allIndices[a], allIndices[b] = allIndices[b], allIndices[a]
			})
			indices = allIndices[:sampleSize]
		}

		tree := newRegressionTree(g.MaxDepth, g.MinSamplesLeaf)
		tree.fit(rows, residual, p, indices)
		g.trees = append(g.trees, tree)

		// Update the running prediction on all rows, not just the subsample.
		for i := 0; i < n; i++ {
			current[i] += g.LearningRate * tree.predict(rows[i*p:(i+1)*p])
		}
	}

	g.state.SetFitted()
	g.state.SetDimensions(p, n)

	g.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		"n_trees", len(g.trees),
	)

	return nil
}

// Predict computes the staged ensemble prediction for each row of X.
func (g *GradientBoosting) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer sgerrors.Recover(&err, "GradientBoosting.Predict")
	if err := g.state.RequireFitted("GradientBoosting", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != g.nFeatures {
		return nil, sgerrors.NewDimensionError("GradientBoosting.Predict", g.nFeatures, c, 1)
	}

	row := make([]float64, c)
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}

		pred := g.initScore
		for _, tree := range g.trees {
			pred += g.LearningRate * tree.predict(row)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// NTrees returns the number of trees in the fitted ensemble.
func (g *GradientBoosting) NTrees() int {
	return len(g.trees)
}
