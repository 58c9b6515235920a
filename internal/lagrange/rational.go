package lagrange

import "math/big"

// rational is a running exact sum num/den. The denominator is kept positive
// and the pair coprime after every add.
type rational struct {
	num *big.Int
	den *big.Int
}

func zero() *rational {
	return &rational{num: big.NewInt(0), den: big.NewInt(1)}
}

// add folds n/d into the sum as num = num*d + n*den, den = den*d and then
// reduces. d must be non-zero.
func (r *rational) add(n, d *big.Int) {
	scaled := new(big.Int).Mul(n, r.den)
	r.num.Mul(r.num, d)
	r.num.Add(r.num, scaled)
	r.den.Mul(r.den, d)
	r.reduce()
}

func (r *rational) reduce() {
	g := new(big.Int).GCD(nil, nil, r.num, r.den)
	if g.Sign() != 0 && !isOne(g) {
		r.num.Quo(r.num, g)
		r.den.Quo(r.den, g)
	}
	if r.den.Sign() < 0 {
		r.num.Neg(r.num)
		r.den.Neg(r.den)
	}
}

func (r *rational) isInt() bool {
	return isOne(r.den)
}

func (r *rational) rat() *big.Rat {
	return new(big.Rat).SetFrac(r.num, r.den)
}

func isOne(v *big.Int) bool {
	return v.IsInt64() && v.Int64() == 1
}
