package dataset

import "math/rand"

// Split holds row indices for the train/holdout partition.
type Split struct {
	Train   []int
	Holdout []int
}

// TrainTestSplit deterministically partitions n rows: the same seed and
// fraction always produce the same assignment. holdoutFrac is clamped so
// both sides stay non-empty for n >= 2.
func TrainTestSplit(n int, holdoutFrac float64, seed int64) Split {
	if n <= 0 {
		return Split{}
	}
	k := int(float64(n) * holdoutFrac)
	if k < 1 {
		k = 1
	}
	if k >= n {
		k = n - 1
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	s := Split{
		Holdout: make([]int, k),
		Train:   make([]int, n-k),
	}
	copy(s.Holdout, perm[:k])
	copy(s.Train, perm[k:])
	return s
}
