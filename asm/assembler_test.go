package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mima/word"
)

func TestAssembleSimpleProgram(t *testing.T) {
	src := "loop: ldc 1\nadd loop\nhlt\n"
	code, diags, err := Assemble(src)
	require.NoError(t, err)
	require.Len(t, code.RawCode, 3)
	assert.Equal(t, word.Encode(word.LoadConstant(word.Word(1))), code.RawCode[0])
	assert.Equal(t, word.Encode(word.Add(word.Word(0))), code.RawCode[1])
	assert.Equal(t, word.Encode(word.Halt), code.RawCode[2])
	assert.Empty(t, diags)
	assert.Equal(t, word.Word(0), code.Labels["loop"])
}

func TestAssembleDataDirective(t *testing.T) {
	src := "dat 0x2A times 3\nhlt\n"
	code, _, err := Assemble(src)
	require.NoError(t, err)
	require.Len(t, code.RawCode, 4)
	assert.Equal(t, word.Word(0x2A), code.RawCode[0])
	assert.Equal(t, word.Word(0x2A), code.RawCode[1])
	assert.Equal(t, word.Word(0x2A), code.RawCode[2])
}

func TestAssembleNegativeLiteral(t *testing.T) {
	src := "ldc -1\n"
	code, _, err := Assemble(src)
	require.NoError(t, err)
	require.Len(t, code.RawCode, 1)
	assert.Equal(t, word.Encode(word.LoadConstant(word.Word(0xFFFF_FFFF))), code.RawCode[0])
}

func TestAssembleRadixLiterals(t *testing.T) {
	src := "ldc 0b101\nldc 0d9\nldc 0xFF\n"
	code, _, err := Assemble(src)
	require.NoError(t, err)
	require.Len(t, code.RawCode, 3)
	assert.Equal(t, word.Word(5), word.Decode(code.RawCode[0]).Payload)
	assert.Equal(t, word.Word(9), word.Decode(code.RawCode[1]).Payload)
	assert.Equal(t, word.Word(0xFF), word.Decode(code.RawCode[2]).Payload)
}

func TestAssembleExternalLabelProducesSymbol(t *testing.T) {
	src := "stv device.reg\n"
	code, _, err := Assemble(src)
	require.NoError(t, err)
	require.Len(t, code.SymbolTable, 1)
	sym := code.SymbolTable[0]
	assert.Equal(t, word.Word(0), sym.InstructionAddress)
	assert.Equal(t, "device", sym.Label.Prefix)
	assert.Equal(t, "reg", sym.Label.Name)
	assert.Equal(t, word.Decode(code.RawCode[0]).Payload, PlaceholderAddr)
}

func TestAssembleBadDefPrefix(t *testing.T) {
	_, _, err := Assemble("device.loop: hlt\n")
	require.Error(t, err)
	labelErr, ok := err.(*LabelError)
	require.True(t, ok)
	assert.Equal(t, BadDefPrefix, labelErr.Kind)
}

func TestAssembleThisPrefixAllowed(t *testing.T) {
	_, _, err := Assemble("this.loop: hlt\njmp loop\n")
	require.NoError(t, err)
}

func TestAssembleDuplicateLabel(t *testing.T) {
	_, _, err := Assemble("loop: hlt\nloop: hlt\n")
	require.Error(t, err)
	labelErr, ok := err.(*LabelError)
	require.True(t, ok)
	assert.Equal(t, Duplicate, labelErr.Kind)
}

func TestAssembleUnresolvedLabel(t *testing.T) {
	_, _, err := Assemble("jmp nowhere\n")
	require.Error(t, err)
	labelErr, ok := err.(*LabelError)
	require.True(t, ok)
	assert.Equal(t, NotResolved, labelErr.Kind)
}

func TestAssembleUnusedLocalLabelWarns(t *testing.T) {
	_, diags, err := Assemble("loop: hlt\n")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, UnusedLocalLabel, diags[0].Kind)
	assert.Equal(t, "loop", diags[0].Label)
}

func TestAssembleUnusedLocalLabelsOrderedByLine(t *testing.T) {
	src := "third: hlt\nsecond: hlt\nfirst: hlt\n"
	_, diags, err := Assemble(src)
	require.NoError(t, err)
	require.Len(t, diags, 3)
	assert.Equal(t, "third", diags[0].Label)
	assert.Equal(t, "second", diags[1].Label)
	assert.Equal(t, "first", diags[2].Label)
	assert.Equal(t, 0, diags[0].LineNumber)
	assert.Equal(t, 1, diags[1].LineNumber)
	assert.Equal(t, 2, diags[2].LineNumber)
}

func TestAssembleParseError(t *testing.T) {
	_, _, err := Assemble("this is not valid\n")
	require.Error(t, err)
	_, ok := err.(*ParseError)
	require.True(t, ok)
}

func TestAssembleComment(t *testing.T) {
	_, _, err := Assemble("hlt # this halts the machine\n")
	require.NoError(t, err)
}
