package model

import (
	"fmt"
	"math"
	"math/rand"
)

type Partition struct {
	Train []int
	Test  []int
}

// Split shuffles the indices 0..n-1 with the given seed and holds out
// ceil(n*testSize) of them for testing. The same arguments always yield the
// same partition.
func Split(n int, testSize float64, seed int64) (Partition, error) {
	if testSize <= 0 || testSize >= 1 {
		return Partition{}, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}

	nTest := int(math.Ceil(float64(n) * testSize))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return Partition{}, fmt.Errorf("cannot split %d records with test size %v", n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return Partition{
		Train: perm[nTest:],
		Test:  perm[:nTest],
	}, nil
}

// Select returns the rows of x and y at the given indices.
func Select(x [][]float64, y []int, indices []int) ([][]float64, []int) {
	xs := make([][]float64, len(indices))
	ys := make([]int, len(indices))
	for i, idx := range indices {
		xs[i] = x[idx]
		ys[i] = y[idx]
	}
	return xs, ys
}
