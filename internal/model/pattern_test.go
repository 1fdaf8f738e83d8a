package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPattern_Canonicalizes(t *testing.T) {
	a, err := NewPattern(100, []Cut{{Length: 30, Quantity: 1}, {Length: 50, Quantity: 1}})
	require.NoError(t, err)
	b, err := NewPattern(100, []Cut{{Length: 50, Quantity: 1}, {Length: 30, Quantity: 1}})
	require.NoError(t, err)

	// Construction order must not matter.
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, []Cut{{Length: 50, Quantity: 1}, {Length: 30, Quantity: 1}}, a.Cuts())
}

func TestNewPattern_MergesDuplicateLengths(t *testing.T) {
	p, err := NewPattern(100, []Cut{{Length: 30, Quantity: 1}, {Length: 30, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, []Cut{{Length: 30, Quantity: 3}}, p.Cuts())
	assert.Equal(t, 90, p.TotalLength())
	assert.Equal(t, 10, p.Waste())
	assert.Equal(t, 3, p.PieceCount())
}

func TestNewPattern_RejectsOverfullAndEmpty(t *testing.T) {
	_, err := NewPattern(100, []Cut{{Length: 60, Quantity: 2}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewPattern(100, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewPattern(100, []Cut{{Length: -5, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPattern_IDIsStableContent(t *testing.T) {
	// The id is a content hash: rebuilding the same multiset yields the
	// same id, a different multiset a different one.
	a, err := NewPattern(100, []Cut{{Length: 50, Quantity: 2}})
	require.NoError(t, err)
	b, err := NewPattern(100, []Cut{{Length: 50, Quantity: 2}})
	require.NoError(t, err)
	c, err := NewPattern(100, []Cut{{Length: 50, Quantity: 1}})
	require.NoError(t, err)

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Len(t, a.ID(), 16)
}

func TestPattern_Count(t *testing.T) {
	p, err := NewPattern(200, []Cut{{Length: 60, Quantity: 2}, {Length: 40, Quantity: 1}})
	require.NoError(t, err)

	assert.Equal(t, 2, p.Count(60))
	assert.Equal(t, 1, p.Count(40))
	assert.Equal(t, 0, p.Count(99))
}

func TestPattern_String(t *testing.T) {
	p, err := NewPattern(100, []Cut{{Length: 30, Quantity: 1}, {Length: 50, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "1x50 + 1x30 (waste 20)", p.String())
}

func TestPattern_ExactFitHasZeroWaste(t *testing.T) {
	p, err := NewPattern(100, []Cut{{Length: 50, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Waste())
	assert.Equal(t, 100, p.TotalLength())
}
