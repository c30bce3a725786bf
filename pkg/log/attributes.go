package log

// Standard attribute keys for structured logging. Using shared constants
// keeps field names consistent across packages so log output stays queryable.
const (
	// ModelNameKey identifies the type of regression model.
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed (fit, predict, ...).
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the analysis lifecycle.
	PhaseKey = "ml.phase"

	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ColumnKey names a single dataset column.
	ColumnKey = "data.column"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records the R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// RMSEKey records root mean squared error.
	RMSEKey = "metrics.rmse"

	// MAEKey records mean absolute error.
	MAEKey = "metrics.mae"

	// FoldKey records the cross-validation fold index.
	FoldKey = "cv.fold"

	// IterationKey records the current iteration during iterative fitting.
	IterationKey = "training.iteration"
)

// Common values for OperationKey.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationLoad      = "load"
	OperationEvaluate  = "evaluate"
)

// Common values for PhaseKey.
const (
	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseHoldout    = "holdout"
)
