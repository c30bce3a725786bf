package modelselection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitlab/surveyreg/modelselection"
)

func TestKFold_PartitionProperties(t *testing.T) {
	const n = 103
	kf := modelselection.NewKFold(10, true, 42)

	folds, err := kf.Split(n)
	require.NoError(t, err)
	require.Len(t, folds, 10)

	seen := make(map[int]int)
	for _, fold := range folds {
		assert.NotEmpty(t, fold.TestIndices)
		assert.NotEmpty(t, fold.TrainIndices)
		assert.Equal(t, n, len(fold.TestIndices)+len(fold.TrainIndices))

		for _, idx := range fold.TestIndices {
			seen[idx]++
		}

		// Train and test sets of one fold are disjoint.
		inTest := make(map[int]bool)
		for _, idx := range fold.TestIndices {
			inTest[idx] = true
		}
		for _, idx := range fold.TrainIndices {
			assert.False(t, inTest[idx], "index %d in both train and test", idx)
		}
	}

	// Every sample lands in exactly one test fold.
	require.Len(t, seen, n)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "index %d appears in %d folds", idx, count)
	}
}

func TestKFold_DeterministicForSeed(t *testing.T) {
	kf := modelselection.NewKFold(10, true, 7)

	a, err := kf.Split(50)
	require.NoError(t, err)
	b, err := kf.Split(50)
	require.NoError(t, err)

	assert.Equal(t, a, b, "fold membership must be reproducible for a fixed seed")
}

func TestKFold_NoShuffleIsContiguous(t *testing.T) {
	kf := modelselection.NewKFold(5, false, 0)

	folds, err := kf.Split(10)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, folds[0].TestIndices)
	assert.Equal(t, []int{8, 9}, folds[4].TestIndices)
}

func TestKFold_Validation(t *testing.T) {
	_, err := modelselection.NewKFold(1, false, 0).Split(10)
	assert.Error(t, err)

	_, err = modelselection.NewKFold(10, false, 0).Split(5)
	assert.Error(t, err)
}
