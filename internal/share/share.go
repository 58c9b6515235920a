// Package share loads reconstruction jobs from JSON or YAML documents.
//
// A document carries a "keys" object with the advisory share count n and the
// threshold k, plus one entry per share keyed by its decimal x-coordinate:
//
//	{
//	  "keys": {"n": 4, "k": 3},
//	  "1": {"base": "10", "value": "4"},
//	  "2": {"base": "2", "value": "111"}
//	}
package share

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"shamir/internal/lagrange"
	"shamir/internal/radix"
)

// ErrMalformedDocument is returned when a document does not have the
// expected shape.
var ErrMalformedDocument = errors.New("malformed document")

// RawShare is one share as written in the document: its x-coordinate and its
// y value as a digit string in Base.
type RawShare struct {
	X      int64
	Base   int
	Digits string
}

// Job is a single reconstruction request assembled from one document.
type Job struct {
	ID        string
	Threshold int
	// Total is the share count the document declares. It is advisory only.
	Total  int
	Shares []RawShare
}

// Validate checks the threshold against the shares present.
func (j *Job) Validate() error {
	if j.Threshold < 1 {
		return fmt.Errorf("%w: %s: threshold k=%d must be positive", ErrMalformedDocument, j.ID, j.Threshold)
	}
	if len(j.Shares) < j.Threshold {
		return fmt.Errorf("%w: %s: need %d, got %d", lagrange.ErrInsufficientShares, j.ID, j.Threshold, len(j.Shares))
	}
	return nil
}

// TotalMismatch reports whether the declared n differs from the number of
// shares in the document.
func (j *Job) TotalMismatch() bool {
	return j.Total != len(j.Shares)
}

// Points decodes every share into a coordinate, in ascending x order.
func (j *Job) Points() ([]lagrange.Point, error) {
	points := make([]lagrange.Point, 0, len(j.Shares))
	for _, s := range j.Shares {
		y, err := radix.Decode(s.Digits, s.Base)
		if err != nil {
			return nil, fmt.Errorf("failed to parse y-value for key '%d': %w", s.X, err)
		}
		points = append(points, lagrange.Point{X: big.NewInt(s.X), Y: y})
	}
	return points, nil
}

func sortShares(shares []RawShare) {
	sort.Slice(shares, func(a, b int) bool {
		return shares[a].X < shares[b].X
	})
}
