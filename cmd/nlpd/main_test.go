package main

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"strings"
	"testing"
)

func TestNLPD(t *testing.T) {
	assert.InDelta(t, 0.5*math.Log(2*math.Pi), nlpd(1, 1, 1), 1e-12)
	assert.InDelta(t, 0.5*math.Log(2*math.Pi)+0.5, nlpd(0, 1, 1), 1e-12)
}

func TestAverage(t *testing.T) {
	input := "0.5,1,1,1,-0.9,2\n0.75,0,1,1,-0.9,2\n"
	avg, err := average(strings.NewReader(input))
	require.NoError(t, err)
	assert.InDelta(t, 0.5*math.Log(2*math.Pi)+0.25, avg, 1e-12)

	_, err = average(strings.NewReader(""))
	assert.Error(t, err)
	_, err = average(strings.NewReader("0.5,1\n"))
	assert.Error(t, err)
}
