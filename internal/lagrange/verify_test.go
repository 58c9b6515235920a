package lagrange

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	points := pts(1, 4, 2, 7, 3, 12)

	at6, err := Evaluate(points, big.NewInt(6))
	require.NoError(t, err)
	assert.Equal(t, "39/1", at6.String())

	at0, err := Evaluate(points, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "3/1", at0.String())

	// a point on the basis returns its own y
	at2, err := Evaluate(points, big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "7/1", at2.String())
}

func TestEvaluateFraction(t *testing.T) {
	half, err := Evaluate(pts(1, 1, 2, 2, 4, 5), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "1/3", half.String())
}

func TestVerify(t *testing.T) {
	t.Run("all extras consistent", func(t *testing.T) {
		bad, err := Verify(sampleDocumentPoints(t), 7)
		require.NoError(t, err)
		assert.Empty(t, bad)
	})

	t.Run("tampered extra share", func(t *testing.T) {
		points := sampleDocumentPoints(t)
		points[9].Y = new(big.Int).Add(points[9].Y, big.NewInt(1))

		bad, err := Verify(points, 7)
		require.ErrorIs(t, err, ErrInconsistentShare)
		require.Len(t, bad, 1)
		assert.Equal(t, "10", bad[0].X.String())
	})

	t.Run("no extras", func(t *testing.T) {
		bad, err := Verify(pts(1, 4, 2, 7, 3, 12), 3)
		require.NoError(t, err)
		assert.Empty(t, bad)
	})

	t.Run("insufficient", func(t *testing.T) {
		_, err := Verify(pts(1, 4), 3)
		assert.ErrorIs(t, err, ErrInsufficientShares)
	})
}

func TestBasisReuse(t *testing.T) {
	xs := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	basis, err := NewBasis(xs)
	require.NoError(t, err)
	assert.Equal(t, 3, basis.Len())

	first, err := basis.Combine([]*big.Int{big.NewInt(4), big.NewInt(7), big.NewInt(12)})
	require.NoError(t, err)
	assert.Equal(t, "3", first.String())

	second, err := basis.Combine([]*big.Int{big.NewInt(7), big.NewInt(15), big.NewInt(27)})
	require.NoError(t, err)
	assert.Equal(t, "3", second.String())

	_, err = basis.Combine([]*big.Int{big.NewInt(1)})
	assert.Error(t, err)
}

func TestNewBasisRejectsDuplicates(t *testing.T) {
	_, err := NewBasis([]*big.Int{big.NewInt(2), big.NewInt(2)})
	assert.ErrorIs(t, err, ErrDuplicateX)

	_, err = NewBasis(nil)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}
