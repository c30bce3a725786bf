package preprocessing_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/traitlab/surveyreg/preprocessing"
)

const epsilon = 1e-10 // Tolerance for floating-point comparisons

func TestSimpleImputer_Mean(t *testing.T) {
	// Column 0: observed [1, 3] -> mean 2
	// Column 1: observed [4, 5, 6] -> mean 5
	X := mat.NewDense(3, 2, []float64{
		1.0, 4.0,
		math.NaN(), 5.0,
		3.0, 6.0,
	})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)

	result, err := imputer.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if got := result.At(1, 0); math.Abs(got-2.0) > epsilon {
		t.Errorf("imputed cell = %v, want 2.0", got)
	}
	if got := result.At(0, 0); math.Abs(got-1.0) > epsilon {
		t.Errorf("observed cell changed: got %v, want 1.0", got)
	}

	// Property: no NaN remains after Transform.
	r, c := result.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(result.At(i, j)) {
				t.Errorf("NaN remains at (%d,%d)", i, j)
			}
		}
	}
}

func TestSimpleImputer_Median(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{
		1.0,
		math.NaN(),
		10.0,
		4.0,
	})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMedian)

	result, err := imputer.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Observed [1, 10, 4] -> median 4.
	if got := result.At(1, 0); math.Abs(got-4.0) > epsilon {
		t.Errorf("imputed cell = %v, want 4.0", got)
	}
}

func TestSimpleImputer_AllMissingColumn(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{
		1.0, math.NaN(),
		2.0, math.NaN(),
	})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	if err := imputer.Fit(X); err == nil {
		t.Error("Fit should fail when a column has no observed values")
	}
}

func TestSimpleImputer_UnknownStrategy(t *testing.T) {
	X := mat.NewDense(1, 1, []float64{1.0})

	imputer := preprocessing.NewSimpleImputer("mode")
	if err := imputer.Fit(X); err == nil {
		t.Error("Fit should reject an unknown strategy")
	}
}

func TestSimpleImputer_NotFitted(t *testing.T) {
	X := mat.NewDense(1, 1, []float64{1.0})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	if _, err := imputer.Transform(X); err == nil {
		t.Error("Transform before Fit should fail")
	}
}

func TestSimpleImputer_TransformDimensionMismatch(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	if err := imputer.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	bad := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if _, err := imputer.Transform(bad); err == nil {
		t.Error("Transform should reject mismatched feature count")
	}
}

func TestSimpleImputer_ImputeVector(t *testing.T) {
	y := mat.NewVecDense(3, []float64{2.0, math.NaN(), 4.0})

	imputer := preprocessing.NewSimpleImputer(preprocessing.StrategyMean)
	yMat := mat.NewDense(3, 1, []float64{2.0, math.NaN(), 4.0})
	if err := imputer.Fit(yMat); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	out, err := imputer.ImputeVector(y)
	if err != nil {
		t.Fatalf("ImputeVector failed: %v", err)
	}
	if got := out.AtVec(1); math.Abs(got-3.0) > epsilon {
		t.Errorf("imputed value = %v, want 3.0", got)
	}
}
