package evaluation

import (
	"fmt"
	"math/rand"
)

// Split parameters fixed by the evaluation contract so results are
// reproducible across runs.
const (
	TestFraction = 0.2
	SplitSeed    = 42
	CVFolds      = 5
)

// StratifiedSplit partitions sample indices into train and test sets,
// preserving the label proportions of the full set. The shuffle is seeded,
// so the same dataset always yields the same split.
func StratifiedSplit(labels []int, testFraction float64, seed int64) (trainIdx, testIdx []int, err error) {
	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("empty dataset")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %v outside (0,1)", testFraction)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range []int{0, 1} {
		var idx []int
		for i, l := range labels {
			if l == class {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(float64(len(idx))*testFraction + 0.5)
		// Keep at least one sample of a present class on each side when
		// the class is large enough to allow it.
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}
		if nTest == len(idx) && len(idx) > 1 {
			nTest--
		}

		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}

	return trainIdx, testIdx, nil
}

// StratifiedFolds assigns each sample to one of k folds, preserving label
// proportions per fold. Deterministic for a given seed.
func StratifiedFolds(labels []int, k int, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)

	for _, class := range []int{0, 1} {
		var idx []int
		for i, l := range labels {
			if l == class {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for i, sample := range idx {
			folds[i%k] = append(folds[i%k], sample)
		}
	}

	return folds
}
