package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mima/word"
)

func TestControlResetState(t *testing.T) {
	c := NewControl()
	assert.Equal(t, 1, c.Counter())
	assert.True(t, bool(c.Run))
	assert.False(t, c.HasInstruction())
}

func TestControlDecodesAtCounterFive(t *testing.T) {
	c := NewControl()
	c.counter = 5
	c.IR = word.Encode(word.Halt)
	c.EndMicrocycle()
	require.True(t, c.HasInstruction())
	assert.Equal(t, word.Halt, c.Instruction())
	assert.Equal(t, 6, c.Counter())
}

func TestControlHaltStopsRunAtTwelve(t *testing.T) {
	c := NewControl()
	c.counter = 5
	c.IR = word.Encode(word.Halt)
	c.EndMicrocycle()

	for c.Counter() != 12 {
		c.EndMicrocycle()
	}
	c.EndMicrocycle()
	assert.False(t, bool(c.Run))
	assert.False(t, c.HasInstruction())
	assert.Equal(t, 1, c.Counter())
}

func TestControlNonHaltKeepsRunning(t *testing.T) {
	c := NewControl()
	c.counter = 5
	c.IR = word.Encode(word.NoOperation)
	c.EndMicrocycle()
	for c.Counter() != 1 {
		c.EndMicrocycle()
	}
	assert.True(t, bool(c.Run))
}

func TestControlXferBracket(t *testing.T) {
	c := NewControl()
	c.StartXfer()
	require.Panics(t, func() { c.StartXfer() })
	c.StopXfer()
	require.Panics(t, func() { c.StopXfer() })
}
