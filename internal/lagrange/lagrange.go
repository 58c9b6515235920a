// Package lagrange reconstructs the constant term of an integer polynomial
// from points on it, using Lagrange interpolation over exact rationals.
package lagrange

import (
	"fmt"
	"math/big"
	"sort"
)

// Point represents a decoded (x, y) coordinate for the polynomial.
type Point struct {
	X *big.Int
	Y *big.Int
}

// Select sorts a copy of points by ascending x and returns the first k.
// The selected x-coordinates must be pairwise distinct.
func Select(points []Point, k int) ([]Point, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidThreshold, k)
	}
	if len(points) < k {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, k, len(points))
	}
	for i, p := range points {
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("point %d has a nil coordinate", i)
		}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X.Cmp(sorted[j].X) < 0
	})

	selected := sorted[:k:k]
	for i := 1; i < len(selected); i++ {
		if selected[i].X.Cmp(selected[i-1].X) == 0 {
			return nil, fmt.Errorf("%w: x=%s", ErrDuplicateX, selected[i].X)
		}
	}
	return selected, nil
}

// ReconstructSecret returns f(0) for the unique polynomial of degree k-1
// through the k points with the smallest x. Extra points are ignored.
func ReconstructSecret(points []Point, k int) (*big.Int, error) {
	selected, err := Select(points, k)
	if err != nil {
		return nil, err
	}

	xs, ys := Split(selected)
	basis, err := NewBasis(xs)
	if err != nil {
		return nil, err
	}
	return basis.Combine(ys)
}

// Split separates points into their x and y coordinates.
func Split(points []Point) (xs, ys []*big.Int) {
	xs = make([]*big.Int, len(points))
	ys = make([]*big.Int, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}
