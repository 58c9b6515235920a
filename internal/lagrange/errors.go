package lagrange

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInsufficientShares is returned when fewer points than the threshold
	// are available.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrNonIntegerResult is returned when the interpolated constant term does
	// not reduce to an integer, which means the shares do not lie on a common
	// integer-coefficient polynomial.
	ErrNonIntegerResult = errors.New("non-integer result")

	// ErrDuplicateX is returned when two selected points share an x-coordinate.
	ErrDuplicateX = errors.New("duplicate x-coordinate")

	// ErrInvalidThreshold is returned for a threshold below one.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInconsistentShare is returned by Verify when a share beyond the
	// threshold does not lie on the reconstructed polynomial.
	ErrInconsistentShare = errors.New("inconsistent share")
)

// NonIntegerError carries the reduced fraction that failed the integrality
// check.
type NonIntegerError struct {
	Num *big.Int
	Den *big.Int
}

func (e *NonIntegerError) Error() string {
	return fmt.Sprintf("%s: reduced result is %s/%s", ErrNonIntegerResult, e.Num, e.Den)
}

func (e *NonIntegerError) Unwrap() error {
	return ErrNonIntegerResult
}
