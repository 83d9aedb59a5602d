package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mima/word"
)

func TestFullTransfer(t *testing.T) {
	x := Full(word.ACC, word.Set(word.X, word.Y))
	assert.Equal(t, word.ACC, x.Source())
	assert.True(t, x.Destinations().Contains(word.X))
	assert.True(t, x.Destinations().Contains(word.Y))
	assert.Equal(t, word.FullMask, x.SourceBitmask())
	assert.False(t, x.IsAccDependent())
}

func TestAccDependent(t *testing.T) {
	x := Full(word.IAR, word.Set(word.IAR)).AccDependent()
	assert.True(t, x.IsAccDependent())
}

func TestInvalidSourcePanics(t *testing.T) {
	require.Panics(t, func() {
		Full(word.SAR, word.Set(word.ACC))
	})
}

func TestInvalidDestinationPanics(t *testing.T) {
	require.Panics(t, func() {
		Full(word.ACC, word.Set(word.ONE))
	})
}

func TestEmptyDestinationsPanics(t *testing.T) {
	require.Panics(t, func() {
		Full(word.ACC, word.RegisterSet(0))
	})
}

func TestIRSourceRequiresPayloadMask(t *testing.T) {
	require.Panics(t, func() {
		Full(word.IR, word.Set(word.SAR))
	})
	assert.NotPanics(t, func() {
		New(word.IR, word.Set(word.SAR), SourceBitmaskBasicPayload)
	})
	assert.NotPanics(t, func() {
		New(word.IR, word.Set(word.Y), SourceBitmaskExtendedPayload)
	})
}

func TestNonIRSourceRejectsPayloadMask(t *testing.T) {
	require.Panics(t, func() {
		New(word.ACC, word.Set(word.X), SourceBitmaskBasicPayload)
	})
}
