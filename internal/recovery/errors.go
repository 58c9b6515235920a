package recovery

import (
	"context"
	"errors"
	"io/fs"

	"shamir/internal/lagrange"
	"shamir/internal/radix"
	"shamir/internal/share"
)

// Error kinds reported in logs, metrics and the ledger.
const (
	KindOK                = "ok"
	KindInvalidDigit      = "invalid_digit"
	KindInsufficient      = "insufficient_shares"
	KindNonInteger        = "non_integer_result"
	KindDuplicateX        = "duplicate_x"
	KindInvalidThreshold  = "invalid_threshold"
	KindInconsistentShare = "inconsistent_share"
	KindMalformedDocument = "malformed_document"
	KindIO                = "io"
	KindCanceled          = "canceled"
	KindInternal          = "internal"
)

// Kind classifies err into one of the Kind constants. A nil error is KindOK.
func Kind(err error) string {
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, radix.ErrInvalidDigit):
		return KindInvalidDigit
	case errors.Is(err, lagrange.ErrInsufficientShares):
		return KindInsufficient
	case errors.Is(err, lagrange.ErrNonIntegerResult):
		return KindNonInteger
	case errors.Is(err, lagrange.ErrDuplicateX):
		return KindDuplicateX
	case errors.Is(err, lagrange.ErrInvalidThreshold):
		return KindInvalidThreshold
	case errors.Is(err, lagrange.ErrInconsistentShare):
		return KindInconsistentShare
	case errors.Is(err, share.ErrMalformedDocument):
		return KindMalformedDocument
	case errors.As(err, &pathErr):
		return KindIO
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindInternal
}
