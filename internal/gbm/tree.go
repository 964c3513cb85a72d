package gbm

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// node is one vertex of a regression tree. Leaves carry the mean target of
// their training rows; internal nodes route on feature <= threshold.
type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

// buildTree fits a depth-limited CART regression tree to targets on the rows
// in idx, minimizing squared error greedily at each split.
func buildTree(x *mat.Dense, targets []float64, idx []int, depth, maxDepth, minLeaf int) *node {
	sum := 0.0
	for _, i := range idx {
		sum += targets[i]
	}
	mean := sum / float64(len(idx))

	if depth >= maxDepth || len(idx) < 2*minLeaf {
		return &node{leaf: true, value: mean}
	}

	feature, threshold, ok := bestSplit(x, targets, idx, minLeaf)
	if !ok {
		return &node{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if x.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(x, targets, left, depth+1, maxDepth, minLeaf),
		right:     buildTree(x, targets, right, depth+1, maxDepth, minLeaf),
	}
}

// bestSplit scans every feature for the split with the largest squared-error
// reduction, honoring the per-leaf minimum. ok is false when no split helps.
func bestSplit(x *mat.Dense, targets []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	_, nFeatures := x.Dims()
	n := len(idx)

	var total float64
	for _, i := range idx {
		total += targets[i]
	}
	baseScore := total * total / float64(n)

	bestGain := 1e-12
	order := make([]int, n)

	for j := 0; j < nFeatures; j++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x.At(order[a], j) < x.At(order[b], j)
		})

		var sumLeft float64
		for k := 0; k < n-1; k++ {
			sumLeft += targets[order[k]]

			// Can't split between equal values.
			if x.At(order[k], j) == x.At(order[k+1], j) {
				continue
			}
			nLeft := k + 1
			nRight := n - nLeft
			if nLeft < minLeaf || nRight < minLeaf {
				continue
			}

			sumRight := total - sumLeft
			gain := sumLeft*sumLeft/float64(nLeft) +
				sumRight*sumRight/float64(nRight) - baseScore

			if gain > bestGain {
				bestGain = gain
				feature = j
				threshold = (x.At(order[k], j) + x.At(order[k+1], j)) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// predictRow walks the tree for row i of x.
func (t *node) predictRow(x *mat.Dense, i int) float64 {
	for !t.leaf {
		if x.At(i, t.feature) <= t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.value
}
