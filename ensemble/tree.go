// Package ensemble provides gradient boosted regression trees.
package ensemble

import (
	"math"
	"sort"
)

// treeNode is one node of a regression tree. Leaves carry the mean target of
// the samples routed to them; internal nodes split on feature <= threshold.
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
	isLeaf    bool
}

// regressionTree is a CART regression tree grown by greedy variance
// reduction. It operates on row-major float64 slices to keep the boosting
// inner loop free of matrix interface overhead.
type regressionTree struct {
	root           *treeNode
	maxDepth       int
	minSamplesLeaf int
}

func newRegressionTree(maxDepth, minSamplesLeaf int) *regressionTree {
	return &regressionTree{
		maxDepth:       maxDepth,
		minSamplesLeaf: minSamplesLeaf,
	}
}

// fit grows the tree on the samples selected by indices. X is row-major with
// nFeatures columns.
func (t *regressionTree) fit(X []float64, y []float64, nFeatures int, indices []int) {
	t.root = t.buildNode(X, y, nFeatures, indices, 0)
}

func (t *regressionTree) buildNode(X, y []float64, nFeatures int, indices []int, depth int) *treeNode {
	mean := 0.0
	for _, i := range indices {
		mean += y[i]
	}
	mean /= float64(len(indices))

	node := &treeNode{value: mean, isLeaf: true}

	if depth >= t.maxDepth || len(indices) < 2*t.minSamplesLeaf {
		return node
	}

	feature, threshold, gain := t.bestSplit(X, y, nFeatures, indices)
	if gain <= 0 {
		return node
	}

	var left, right []int
	for _, i := range indices {
		if X[i*nFeatures+feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	if len(left) < t.minSamplesLeaf || len(right) < t.minSamplesLeaf {
		return node
	}

	node.isLeaf = false
	node.feature = feature
	node.threshold = threshold
	node.left = t.buildNode(X, y, nFeatures, left, depth+1)
	node.right = t.buildNode(X, y, nFeatures, right, depth+1)
	return node
}

// bestSplit scans every feature with a sort-and-sweep over candidate
// thresholds, maximizing the reduction in sum of squared errors.
func (t *regressionTree) bestSplit(X, y []float64, nFeatures int, indices []int) (int, float64, float64) {
	n := len(indices)

	totalSum := 0.0
	totalSumSq := 0.0
	for _, i := range indices {
		totalSum += y[i]
		totalSumSq += y[i] * y[i]
	}
	parentSSE := totalSumSq - totalSum*totalSum/float64(n)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	order := make([]int, n)

	for f := 0; f < nFeatures; f++ {
		copy(order, indices)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]*nFeatures+f] < X[order[b]*nFeatures+f]
		})

		leftSum := 0.0
		leftSumSq := 0.0

		for k := 0; k < n-1; k++ {
			yi := y[order[k]]
			leftSum += yi
			leftSumSq += yi * yi

			xCur := X[order[k]*nFeatures+f]
			xNext := X[order[k+1]*nFeatures+f]
			if xCur == xNext {
				continue
			}

			nLeft := k + 1
			nRight := n - nLeft
			if nLeft < t.minSamplesLeaf || nRight < t.minSamplesLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSumSq := totalSumSq - leftSumSq

			leftSSE := leftSumSq - leftSum*leftSum/float64(nLeft)
			rightSSE := rightSumSq - rightSum*rightSum/float64(nRight)

			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (xCur + xNext) / 2
			}
		}
	}

	if bestFeature < 0 {
		return -1, 0, 0
	}
	if math.IsNaN(bestThreshold) || math.IsInf(bestThreshold, 0) {
		return -1, 0, 0
	}
	return bestFeature, bestThreshold, bestGain
}

// predict routes one sample (a row of nFeatures values) to a leaf.
func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for !node.isLeaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
