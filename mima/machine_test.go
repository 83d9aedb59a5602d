package mima

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mima/unit"
	"mima/word"
)

func runToHalt(t *testing.T, m *Machine, maxMicrocycles int) {
	t.Helper()
	summaries := m.Run(maxMicrocycles)
	require.False(t, m.IsRunning(), "machine did not halt within %d microcycles (ran %d)", maxMicrocycles, len(summaries))
}

func TestResetState(t *testing.T) {
	m := New()
	assert.True(t, m.IsRunning())
	assert.Equal(t, 1, m.Control.Counter())
	assert.False(t, m.Control.HasInstruction())
}

func TestStepMicrocycleFalseAfterHalt(t *testing.T) {
	m := New()
	_, err := m.Load("hlt\n")
	require.NoError(t, err)

	runToHalt(t, m, 32)

	_, ok := m.StepMicrocycle()
	assert.False(t, ok)
	_, ok = m.StepMicrocycle()
	assert.False(t, ok, "a halted machine must stay halted")
}

func TestOneFullInstructionCycleIsTwelveMicrocycles(t *testing.T) {
	m := New()
	_, err := m.Load("nop\nhlt\n")
	require.NoError(t, err)

	cycle := m.StepInstruction()
	assert.Len(t, cycle.Microcycles, 12)
	require.NotNil(t, cycle.Instruction)
	assert.Equal(t, word.OpNoOperation, cycle.Instruction.Op)
	// The fetch phase always advances IAR by one word.
	assert.Equal(t, word.Word(1), m.Control.IAR)
}

func TestLoadConstantAndHalt(t *testing.T) {
	m := New()
	_, err := m.Load("ldc 0x2A\nhlt\n")
	require.NoError(t, err)

	runToHalt(t, m, 64)
	assert.Equal(t, word.Word(0x2A), m.Arithmetic.ACC)
}

func TestStoreAndLoadValueRoundtrip(t *testing.T) {
	m := New()
	src := `
ldc 7
stv cell
ldc 0
ldv cell
hlt
cell: dat 0
`
	_, err := m.Load(src)
	require.NoError(t, err)

	runToHalt(t, m, 256)
	assert.Equal(t, word.Word(7), m.Arithmetic.ACC)
}

func TestAddInstruction(t *testing.T) {
	m := New()
	src := `
ldc 3
stv acc
ldc 4
add acc
hlt
acc: dat 0
`
	_, err := m.Load(src)
	require.NoError(t, err)

	runToHalt(t, m, 256)
	assert.Equal(t, word.Word(7), m.Arithmetic.ACC)
}

func TestEqualsInstruction(t *testing.T) {
	m := New()
	src := `
ldc 5
stv operand
ldc 5
eql operand
hlt
operand: dat 0
`
	_, err := m.Load(src)
	require.NoError(t, err)

	runToHalt(t, m, 256)
	assert.Equal(t, word.Word(0xFFFF_FFFF), m.Arithmetic.ACC)
}

func TestRotateRightInstruction(t *testing.T) {
	m := New()
	_, err := m.Load("ldc 1\nrar 1\nhlt\n")
	require.NoError(t, err)

	runToHalt(t, m, 64)
	assert.Equal(t, word.Word(0x8000_0000), m.Arithmetic.ACC)
}

func TestJumpIfNegativeTakenWhenAccIsNegative(t *testing.T) {
	m := New()
	src := `
ldc -1
jmn target
ldc 111
hlt
target: ldc 222
hlt
`
	_, err := m.Load(src)
	require.NoError(t, err)

	runToHalt(t, m, 256)
	assert.Equal(t, word.Word(222), m.Arithmetic.ACC)
}

func TestJumpIfNegativeNotTakenWhenAccIsPositive(t *testing.T) {
	m := New()
	src := `
ldc 1
jmn target
ldc 111
hlt
target: ldc 222
hlt
`
	_, err := m.Load(src)
	require.NoError(t, err)

	runToHalt(t, m, 256)
	assert.Equal(t, word.Word(111), m.Arithmetic.ACC)
}

func TestUnconditionalJump(t *testing.T) {
	m := New()
	src := `
jmp target
ldc 111
hlt
target: ldc 222
hlt
`
	_, err := m.Load(src)
	require.NoError(t, err)

	runToHalt(t, m, 256)
	assert.Equal(t, word.Word(222), m.Arithmetic.ACC)
}

func TestNotInstruction(t *testing.T) {
	m := New()
	_, err := m.Load("ldc 0\nnot\nhlt\n")
	require.NoError(t, err)

	runToHalt(t, m, 64)
	assert.Equal(t, word.Word(0xFFFF_FFFF), m.Arithmetic.ACC)
}

func TestDeviceIOReadReturnsSentinel(t *testing.T) {
	m := New()
	m.Memory.SAR = word.Word(word.LinearAddressSpaceWords)
	m.Memory.SignalMemory(unit.Read)
	for i := 0; i < 4; i++ {
		m.Memory.PollWork()
	}
	assert.Equal(t, word.Word(42), m.Memory.SIR)
}

func TestLoadRecordsLabelTable(t *testing.T) {
	m := New()
	_, err := m.Load("loop: hlt\n")
	require.NoError(t, err)
	assert.Equal(t, word.Word(0), m.Labels["loop"])
}

type constResolver struct{ addr word.Word }

func (r constResolver) ResolveDevice(prefix, name string) (word.Word, error) {
	return r.addr, nil
}

func TestWithDeviceResolverOverridesDefault(t *testing.T) {
	m := New(WithDeviceResolver(constResolver{addr: 0x0000_00FF}))
	_, err := m.Load("add dev.counter\nhlt\n")
	require.NoError(t, err)
	// The resolved device address, masked to 28 bits, is overlaid onto the
	// placeholder word's payload, leaving the ADD opcode nibble intact.
	assert.Equal(t, word.Word(0x0000_00FF), m.Memory.Peek(0)&word.BasicPayloadMask)
}

func TestLoadDiagnosticsSurfaceUnusedLabels(t *testing.T) {
	m := New()
	diags, err := m.Load("loop: hlt\n")
	require.NoError(t, err)
	require.Len(t, diags, 1)
}
