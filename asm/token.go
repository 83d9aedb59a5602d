package asm

import (
	"fmt"
	"strings"

	"mima/word"
)

// LabelIdentifier is a (possibly device-namespaced) label name: "name" or
// "prefix.name".
type LabelIdentifier struct {
	Prefix string // "" means no prefix
	Name   string
}

func (l LabelIdentifier) HasPrefix() bool { return l.Prefix != "" }

func (l LabelIdentifier) String() string {
	if l.Prefix == "" {
		return l.Name
	}
	return l.Prefix + "." + l.Name
}

// AddressToken is either a literal word or a label reference, wherever
// the grammar accepts an address operand.
type AddressToken struct {
	IsLabel bool
	Address word.Word
	Label   LabelIdentifier
}

func (a AddressToken) String() string {
	if a.IsLabel {
		return fmt.Sprintf("Label(%s)", a.Label)
	}
	return fmt.Sprintf("Address(%s)", a.Address)
}

// DataToken represents a "DAT <word> [TIMES <word>]" statement.
type DataToken struct {
	Word  word.Word
	Times uint32 // 0 means "unspecified"; Count() defaults it to 1
}

func (d DataToken) Count() int {
	if d.Times == 0 {
		return 1
	}
	return int(d.Times)
}

// InstructionOp names the grammar-level instruction kinds. It mirrors
// word.Opcode but carries AddressToken/word.Word operands that may still
// be unresolved labels.
type InstructionOp int

const (
	IAdd InstructionOp = iota
	IAnd
	IOr
	IXor
	ILoadValue
	IStoreValue
	ILoadConstant
	IJump
	IJumpIfNegative
	IEquals
	IHalt
	INot
	IRotateRight
	INoOperation
)

var mnemonics = map[string]InstructionOp{
	"add": IAdd, "and": IAnd, "or": IOr, "xor": IXor,
	"ldv": ILoadValue, "stv": IStoreValue, "ldc": ILoadConstant,
	"jmp": IJump, "jmn": IJumpIfNegative, "eql": IEquals,
	"hlt": IHalt, "not": INot, "rar": IRotateRight, "nop": INoOperation,
}

var opMnemonic = map[InstructionOp]string{
	IAdd: "add", IAnd: "and", IOr: "or", IXor: "xor",
	ILoadValue: "ldv", IStoreValue: "stv", ILoadConstant: "ldc",
	IJump: "jmp", IJumpIfNegative: "jmn", IEquals: "eql",
	IHalt: "hlt", INot: "not", IRotateRight: "rar", INoOperation: "nop",
}

// takesAddress reports whether op's operand is an AddressToken (label or
// literal address), as opposed to a bare word literal or no operand.
func (op InstructionOp) takesAddress() bool {
	switch op {
	case IAdd, IAnd, IOr, IXor, ILoadValue, IStoreValue, IJump, IJumpIfNegative, IEquals:
		return true
	default:
		return false
	}
}

func (op InstructionOp) takesWord() bool {
	return op == ILoadConstant || op == IRotateRight
}

// InstructionToken is one parsed instruction statement: its opcode plus
// whichever operand (if any) the grammar attaches to it.
type InstructionToken struct {
	Op      InstructionOp
	Addr    AddressToken // valid when Op.takesAddress()
	Literal word.Word    // valid when Op.takesWord()
}

func (i InstructionToken) String() string {
	name := opMnemonic[i.Op]
	switch {
	case i.Op.takesAddress():
		return fmt.Sprintf("%s(%s)", name, i.Addr)
	case i.Op.takesWord():
		return fmt.Sprintf("%s(%s)", name, i.Literal)
	default:
		return name
	}
}

// StatementContent is the DAT-or-instruction body of a statement.
type StatementContent struct {
	IsData      bool
	Data        DataToken
	Instruction InstructionToken
}

// Statement is one line of source: zero or more label definitions,
// optionally followed by a DAT or instruction.
type Statement struct {
	LineNumber int
	LabelDefs  []LabelIdentifier
	Content    *StatementContent
}

// RequiredWords is the number of machine words this statement contributes
// to the program.
func (s Statement) RequiredWords() int {
	switch {
	case s.Content == nil:
		return 0
	case s.Content.IsData:
		return s.Content.Data.Count()
	default:
		return 1
	}
}

func (s Statement) IsEmpty() bool {
	return len(s.LabelDefs) == 0 && s.Content == nil
}

func (s Statement) String() string {
	var parts []string
	for _, l := range s.LabelDefs {
		parts = append(parts, fmt.Sprintf("LabelDefinition(%s)", l))
	}
	if s.Content != nil {
		if s.Content.IsData {
			parts = append(parts, fmt.Sprintf("DataDefinition(%s)", dataString(s.Content.Data)))
		} else {
			parts = append(parts, fmt.Sprintf("Instruction(%s)", s.Content.Instruction))
		}
	}
	return fmt.Sprintf("[Line %03d] %s", s.LineNumber, strings.Join(parts, ", "))
}

func dataString(d DataToken) string {
	if d.Times == 0 {
		return fmt.Sprintf("%s", d.Word)
	}
	return fmt.Sprintf("%s x %d", d.Word, d.Times)
}

// Program is a parsed source file: one Statement per non-empty line.
type Program struct {
	Statements []Statement
}

func (p Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}
