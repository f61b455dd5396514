package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartFromItems(t *testing.T) {
	require.True(t, NewCart().IsEmpty())

	c := NewCartFromItems(map[int64]int{9: 1, 2: 3, 5: 0, 4: -1, 7: 2})
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 3, c.Quantity(2))
	assert.Zero(t, c.Quantity(5))
	assert.Equal(t, []Line{
		{ProductID: 2, Quantity: 3},
		{ProductID: 7, Quantity: 2},
		{ProductID: 9, Quantity: 1},
	}, c.Lines())
}

func TestSortLinesDoesNotMutate(t *testing.T) {
	in := []Line{{ProductID: 3, Quantity: 1}, {ProductID: 1, Quantity: 2}}
	out := SortLines(in)
	assert.Equal(t, int64(1), out[0].ProductID)
	assert.Equal(t, int64(3), in[0].ProductID)
}

func TestSessionAuthenticated(t *testing.T) {
	assert.False(t, Session{SessionID: "s"}.Authenticated())
	assert.True(t, Session{SessionID: "s", UserID: 1}.Authenticated())
}
