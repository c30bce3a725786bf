package modelselection

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	sgerrors "github.com/traitlab/surveyreg/pkg/errors"
)

// TrainTestSplit shuffles the samples with a seeded generator and splits
// them into a training set and a holdout set. testSize is the holdout
// fraction in (0, 1).
func TrainTestSplit(X mat.Matrix, y *mat.VecDense, testSize float64, seed int64) (XTrain, XTest *mat.Dense, yTrain, yTest *mat.VecDense, err error) {
	n, _ := X.Dims()
	if n == 0 {
		return nil, nil, nil, nil, sgerrors.NewModelError("TrainTestSplit", "empty data", sgerrors.ErrEmptyData)
	}
	if y.Len() != n {
		return nil, nil, nil, nil, sgerrors.NewDimensionError("TrainTestSplit", n, y.Len(), 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, sgerrors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(float64(n) * testSize)
	if nTest == 0 || nTest == n {
		return nil, nil, nil, nil, sgerrors.NewValidationError("test_size", "leaves an empty split", testSize)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	XTest, yTest = Subset(X, y, indices[:nTest])
	XTrain, yTrain = Subset(X, y, indices[nTest:])
	return XTrain, XTest, yTrain, yTest, nil
}

// Subset extracts the rows of X and entries of y at the given indices.
// Indices are sorted first so the subset preserves the original row order.
func Subset(X mat.Matrix, y *mat.VecDense, indices []int) (*mat.Dense, *mat.VecDense) {
	_, cols := X.Dims()

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	xSub := mat.NewDense(len(sorted), cols, nil)
	ySub := mat.NewVecDense(len(sorted), nil)

	for i, idx := range sorted {
		for j := 0; j < cols; j++ {
			xSub.Set(i, j, X.At(idx, j))
		}
		ySub.SetVec(i, y.AtVec(idx))
	}

	return xSub, ySub
}
