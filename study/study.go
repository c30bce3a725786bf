// Package study runs the end-to-end model comparison: load a survey export,
// clean it into trait scores, impute, split off a holdout, cross-validate
// four regression families on identical folds and score the refitted models
// on the holdout.
package study

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/dataset"
	"github.com/traitlab/surveyreg/ensemble"
	"github.com/traitlab/surveyreg/linear"
	"github.com/traitlab/surveyreg/metrics"
	"github.com/traitlab/surveyreg/modelselection"
	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
	"github.com/traitlab/surveyreg/pkg/log"
	"github.com/traitlab/surveyreg/preprocessing"
	"github.com/traitlab/surveyreg/survey"
	"github.com/traitlab/surveyreg/svm"
)

// Config holds the study parameters. NewConfig supplies the defaults used
// throughout; callers override fields before Run.
type Config struct {
	// DataPath is the survey export to analyze.
	DataPath string

	// Format forces the file format ("stata", "sas7bdat", "csv").
	// Empty means dispatch on the file extension.
	Format string

	// Schema describes the inventory items, outcome and sentinel codes.
	Schema survey.Schema

	// ImputeStrategy fills remaining missing trait scores and outcomes.
	ImputeStrategy preprocessing.ImputeStrategy

	// HoldoutFraction is the share of rows reserved for final evaluation.
	HoldoutFraction float64

	// NFolds is the number of cross-validation folds on the training split.
	NFolds int

	// Seed drives the holdout split, the fold shuffle and every stochastic
	// model, making the whole study reproducible.
	Seed int64
}

// NewConfig returns the default study configuration.
func NewConfig(dataPath string) Config {
	return Config{
		DataPath:        dataPath,
		Schema:          survey.DefaultSchema(),
		ImputeStrategy:  preprocessing.StrategyMean,
		HoldoutFraction: 0.2,
		NFolds:          10,
		Seed:            42,
	}
}

// ModelResult bundles one model's resample and holdout performance.
type ModelResult struct {
	Name    string
	CV      *modelselection.CVResult
	Holdout metrics.Summary
}

// Report is the complete study output.
type Report struct {
	NRows     int // rows entering modeling after the missingness filter
	NDropped  int // rows removed by the missingness filter
	NTrain    int
	NHoldout  int
	NFolds    int
	Predictor []string
	Models    []ModelResult
	Elapsed   time.Duration
}

// candidate pairs a model name with its constructor. Every candidate is
// cross-validated on the same fold set.
type candidate struct {
	name string
	new  func() modelselection.Regressor
}

// candidates returns the four model families under comparison. The linear
// SVR and the elastic net see standardized features; the scaler is refitted
// inside every fold so no test information leaks into training.
func candidates(seed int64) []candidate {
	return []candidate{
		{
			name: "ols",
			new: func() modelselection.Regressor {
				return linear.NewLinearRegression()
			},
		},
		{
			name: "elasticnet",
			new: func() modelselection.Regressor {
				return newScaled(linear.NewElasticNet(
					linear.WithAlpha(0.1),
					linear.WithL1Ratio(0.5),
					linear.WithMaxIter(5000),
				))
			},
		},
		{
			name: "svr",
			new: func() modelselection.Regressor {
				return newScaled(svm.NewSVR(
					svm.WithC(1.0),
					svm.WithEpsilon(0.1),
					svm.WithMaxIter(500),
					svm.WithSeed(uint64(seed)),
				))
			},
		},
		{
			name: "gbrt",
			new: func() modelselection.Regressor {
				return ensemble.NewGradientBoosting(
					ensemble.WithNEstimators(200),
					ensemble.WithLearningRate(0.05),
					ensemble.WithMaxDepth(3),
					ensemble.WithMinSamplesLeaf(5),
					ensemble.WithSeed(uint64(seed)),
				)
			},
		},
	}
}

// Run executes the study described by cfg.
func Run(cfg Config) (report *Report, err error) {
	defer sgerrors.Recover(&err, "study.Run")

	start := time.Now()
	logger := log.GetLoggerWithName("study")

	if cfg.HoldoutFraction <= 0 || cfg.HoldoutFraction >= 1 {
		return nil, sgerrors.NewValidationError("holdout_fraction", "must be in (0, 1)", cfg.HoldoutFraction)
	}
	if cfg.NFolds < 2 {
		return nil, sgerrors.NewValidationError("n_folds", "must be at least 2", cfg.NFolds)
	}

	var tbl *dataset.Table
	if cfg.Format != "" {
		tbl, err = dataset.OpenFormat(cfg.DataPath, cfg.Format)
	} else {
		tbl, err = dataset.Open(cfg.DataPath)
	}
	if err != nil {
		return nil, err
	}

	frame, err := survey.Clean(tbl, cfg.Schema)
	if err != nil {
		return nil, err
	}

	X, y, err := imputeFrame(frame, cfg.ImputeStrategy)
	if err != nil {
		return nil, err
	}

	return runModels(cfg, frame, X, y, logger, start)
}

// RunFrame executes the modeling half of the study on an already cleaned
// frame, bypassing file loading. Used by tests and by callers that assemble
// data themselves.
func RunFrame(cfg Config, frame *survey.Frame) (report *Report, err error) {
	defer sgerrors.Recover(&err, "study.RunFrame")

	X, y, err := imputeFrame(frame, cfg.ImputeStrategy)
	if err != nil {
		return nil, err
	}
	return runModels(cfg, frame, X, y, log.GetLoggerWithName("study"), time.Now())
}

// imputeFrame fills remaining missing trait scores and outcome values.
// Predictors and outcome get separate imputers so the outcome statistic
// never mixes into the features.
func imputeFrame(frame *survey.Frame, strategy preprocessing.ImputeStrategy) (*mat.Dense, *mat.VecDense, error) {
	xImputer := preprocessing.NewSimpleImputer(strategy)
	X, err := xImputer.FitTransform(frame.X)
	if err != nil {
		return nil, nil, err
	}

	n := frame.Y.Len()
	yMat := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		yMat.Set(i, 0, frame.Y.AtVec(i))
	}

	yImputer := preprocessing.NewSimpleImputer(strategy)
	if err := yImputer.Fit(yMat); err != nil {
		return nil, nil, err
	}
	y, err := yImputer.ImputeVector(frame.Y)
	if err != nil {
		return nil, nil, err
	}

	return X, y, nil
}

func runModels(cfg Config, frame *survey.Frame, X *mat.Dense, y *mat.VecDense, logger log.Logger, start time.Time) (*Report, error) {
	if cfg.NFolds < 2 {
		return nil, sgerrors.NewValidationError("n_folds", "must be at least 2", cfg.NFolds)
	}

	XTrain, XHold, yTrain, yHold, err := modelselection.TrainTestSplit(X, y, cfg.HoldoutFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}

	nTrain, _ := XTrain.Dims()
	nHold, _ := XHold.Dims()

	logger.Info("Study data prepared",
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nTrain,
		"holdout_samples", nHold,
		"rows_dropped", frame.NDropped,
	)

	// One fold set, generated once, shared by every model so the comparison
	// sees identical resamples.
	kf := modelselection.NewKFold(cfg.NFolds, true, cfg.Seed)
	folds, err := kf.Split(nTrain)
	if err != nil {
		return nil, err
	}

	report := &Report{
		NRows:     nTrain + nHold,
		NDropped:  frame.NDropped,
		NTrain:    nTrain,
		NHoldout:  nHold,
		NFolds:    cfg.NFolds,
		Predictor: frame.TraitNames,
	}

	yTrainMat := vecAsColumn(yTrain)

	for _, cand := range candidates(cfg.Seed) {
		cv, err := modelselection.CrossValidate(cand.name, cand.new, XTrain, yTrain, folds)
		if err != nil {
			return nil, sgerrors.Wrapf(err, "cross-validation of %s failed", cand.name)
		}

		// Refit on the full training split, score once on the holdout.
		final := cand.new()
		if err := final.Fit(XTrain, yTrainMat); err != nil {
			return nil, sgerrors.Wrapf(err, "final fit of %s failed", cand.name)
		}

		pred, err := final.Predict(XHold)
		if err != nil {
			return nil, sgerrors.Wrapf(err, "holdout prediction of %s failed", cand.name)
		}

		holdout, err := metrics.Evaluate(yHold, columnAsVec(pred))
		if err != nil {
			return nil, sgerrors.Wrapf(err, "holdout scoring of %s failed", cand.name)
		}

		logger.Info("Model evaluated",
			log.ModelNameKey, cand.name,
			log.PhaseKey, log.PhaseHoldout,
			log.RMSEKey, holdout.RMSE,
			log.MAEKey, holdout.MAE,
			log.R2ScoreKey, holdout.R2,
		)

		report.Models = append(report.Models, ModelResult{
			Name:    cand.name,
			CV:      cv,
			Holdout: holdout,
		})
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

func vecAsColumn(v *mat.VecDense) *mat.Dense {
	out := mat.NewDense(v.Len(), 1, nil)
	for i := 0; i < v.Len(); i++ {
		out.Set(i, 0, v.AtVec(i))
	}
	return out
}

func columnAsVec(m mat.Matrix) *mat.VecDense {
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
