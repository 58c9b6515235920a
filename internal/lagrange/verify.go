package lagrange

import (
	"fmt"
	"math/big"
)

// Evaluate returns the value at x of the polynomial through all points.
func Evaluate(points []Point, x *big.Int) (*big.Rat, error) {
	xs, ys := Split(points)
	basis, err := NewBasisAt(xs, x)
	if err != nil {
		return nil, err
	}
	return basis.Rat(ys)
}

// Verify reconstructs the polynomial from the k points with the smallest x
// and checks every remaining point against it. It returns the points that
// do not lie on the polynomial, wrapped in ErrInconsistentShare.
func Verify(points []Point, k int) ([]Point, error) {
	selected, err := Select(points, k)
	if err != nil {
		return nil, err
	}
	extras := remainder(points, selected)

	var bad []Point
	for _, p := range extras {
		want, err := Evaluate(selected, p.X)
		if err != nil {
			return nil, err
		}
		if !want.IsInt() || want.Num().Cmp(p.Y) != 0 {
			bad = append(bad, p)
		}
	}
	if len(bad) > 0 {
		return bad, fmt.Errorf("%w: %d of %d extra shares off the polynomial", ErrInconsistentShare, len(bad), len(extras))
	}
	return nil, nil
}

// remainder returns the points not in selected, in their original order.
func remainder(points, selected []Point) []Point {
	used := make(map[Point]bool, len(selected))
	for _, p := range selected {
		used[p] = true
	}
	out := make([]Point, 0, len(points)-len(selected))
	for _, p := range points {
		if !used[p] {
			out = append(out, p)
		}
	}
	return out
}
