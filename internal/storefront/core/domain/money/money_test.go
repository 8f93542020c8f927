package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_SameCurrency(t *testing.T) {
	a := New("USD", 10, 500_000_000)
	b := New("USD", 4, 750_000_000)

	sum, err := Add(a, b)

	require.NoError(t, err)
	assert.Equal(t, New("USD", 15, 250_000_000), sum)
}

func TestAdd_Commutative(t *testing.T) {
	a := New("EUR", 3, 3)
	b := New("EUR", 7, 999_999_999)

	ab, err := Add(a, b)
	require.NoError(t, err)
	ba, err := Add(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
}

func TestAdd_MismatchedCurrency(t *testing.T) {
	a := New("USD", 1, 0)
	b := New("EUR", 1, 0)

	_, err := Add(a, b)

	require.ErrorIs(t, err, ErrMismatchedCurrency)
}

func TestScale_Exact(t *testing.T) {
	// 3 nanos survive scaling; a 2-digit round-trip would lose them.
	a := New("USD", 0, 3)

	scaled := Scale(a, 1_000_000)

	assert.Equal(t, New("USD", 3, 0), scaled)
}

func TestScale_Identity(t *testing.T) {
	a := New("USD", 12, 340_000_000)
	b := New("USD", 1, 660_000_000)

	sum, err := Add(a, b)
	require.NoError(t, err)

	assert.Equal(t, sum, Scale(sum, 1))
}

func TestScale_NegativeFactorPanics(t *testing.T) {
	assert.Panics(t, func() {
		Scale(New("USD", 1, 0), -1)
	})
}

func TestFromNanos_NegativeNormalization(t *testing.T) {
	m := FromNanos("USD", -1_750_000_000) // -1.75

	assert.Equal(t, int64(-2), m.Units)
	assert.Equal(t, int32(250_000_000), m.Nanos)
	assert.Equal(t, int64(-1_750_000_000), m.TotalNanos())
}

func TestCompare(t *testing.T) {
	low := New("GBP", 4, 990_000_000)
	high := New("GBP", 5, 0)

	c, err := Compare(low, high)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(high, low)
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare(low, low)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = Compare(low, New("USD", 5, 0))
	assert.ErrorIs(t, err, ErrMismatchedCurrency)
}

func TestSum(t *testing.T) {
	total, err := Sum("USD",
		New("USD", 10, 0),
		New("USD", 10, 0),
		New("USD", 5, 0),
	)

	require.NoError(t, err)
	assert.Equal(t, New("USD", 25, 0), total)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$10.00", Format(New("USD", 10, 0)))
	assert.Equal(t, "€8.99", Format(New("EUR", 8, 990_000_000)))
	// Sub-cent precision is truncated for display but kept in the value.
	assert.Equal(t, "£3.12", Format(New("GBP", 3, 129_999_999)))
	// Unknown currency codes fall back to "$".
	assert.Equal(t, "$1.50", Format(New("XXX", 1, 500_000_000)))
}
