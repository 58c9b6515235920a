package lagrange

import (
	"fmt"
	"math/big"
)

// Basis holds the Lagrange basis weights of a fixed set of x-coordinates
// evaluated at one point. Weight i is Num[i]/Den[i] where
//
//	Num[i] = prod_{j != i} (at - x_j)
//	Den[i] = prod_{j != i} (x_i - x_j)
//
// The weights depend only on the x-coordinates, so a Basis can be reused
// for any set of y values sampled at the same xs. A Basis is immutable and
// safe for concurrent use.
type Basis struct {
	at   *big.Int
	xs   []*big.Int
	nums []*big.Int
	dens []*big.Int
}

// NewBasis returns the basis of xs evaluated at x = 0.
func NewBasis(xs []*big.Int) (*Basis, error) {
	return NewBasisAt(xs, new(big.Int))
}

// NewBasisAt returns the basis of xs evaluated at the given point.
func NewBasisAt(xs []*big.Int, at *big.Int) (*Basis, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty basis", ErrInsufficientShares)
	}

	b := &Basis{
		at:   new(big.Int).Set(at),
		xs:   make([]*big.Int, len(xs)),
		nums: make([]*big.Int, len(xs)),
		dens: make([]*big.Int, len(xs)),
	}
	diff := new(big.Int)
	for i, xi := range xs {
		b.xs[i] = new(big.Int).Set(xi)
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j, xj := range xs {
			if i == j {
				continue
			}
			diff.Sub(xi, xj)
			if diff.Sign() == 0 {
				return nil, fmt.Errorf("%w: x=%s", ErrDuplicateX, xi)
			}
			den.Mul(den, diff)
			num.Mul(num, diff.Sub(at, xj))
		}
		b.nums[i] = num
		b.dens[i] = den
	}
	return b, nil
}

// Len returns the number of points the basis was built for.
func (b *Basis) Len() int {
	return len(b.xs)
}

// Combine returns sum_i ys[i] * Num[i] / Den[i] and fails with
// ErrNonIntegerResult when the sum is not an integer.
func (b *Basis) Combine(ys []*big.Int) (*big.Int, error) {
	sum, err := b.sum(ys)
	if err != nil {
		return nil, err
	}
	if !sum.isInt() {
		return nil, &NonIntegerError{Num: sum.num, Den: sum.den}
	}
	return sum.num, nil
}

// Rat returns the interpolated value as an exact fraction.
func (b *Basis) Rat(ys []*big.Int) (*big.Rat, error) {
	sum, err := b.sum(ys)
	if err != nil {
		return nil, err
	}
	return sum.rat(), nil
}

func (b *Basis) sum(ys []*big.Int) (*rational, error) {
	if len(ys) != len(b.xs) {
		return nil, fmt.Errorf("basis has %d points, got %d values", len(b.xs), len(ys))
	}

	acc := zero()
	term := new(big.Int)
	for i, y := range ys {
		term.Mul(y, b.nums[i])
		acc.add(term, b.dens[i])
	}
	return acc, nil
}
