package main

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestSample(t *testing.T) {
	X, Y, err := sample(50, 0.25, 2, 0.01)
	require.NoError(t, err)
	require.Len(t, X, 50)
	require.Len(t, Y, 50)
	assert.Equal(t, 0., X[0])
	assert.Equal(t, 12.25, X[49])

	_, _, err = sample(0, 0.25, 2, 0.01)
	assert.Error(t, err)
	_, _, err = sample(10, 0.25, 2, 0)
	assert.Error(t, err)
}
