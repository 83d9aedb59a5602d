package asm

import (
	"sort"

	"mima/word"
)

// Label is a fully-qualified label reference: a device namespace prefix
// and a name.
type Label struct {
	Prefix string
	Name   string
}

// Symbol is an unresolved external label reference: the address of the
// instruction that refers to it, and the label itself. Memory.LoadCode
// consumes these to link device references into a loaded program.
type Symbol struct {
	InstructionAddress word.Word
	Label              Label
}

// ObjectCode is the output of assembly: a flat word array ready to be
// loaded into linear memory, the symbol table of external references
// that still need device resolution, and the local label table (for a
// debugger to show addresses by name rather than by raw address).
type ObjectCode struct {
	RawCode     []word.Word
	SymbolTable []Symbol
	Labels      map[string]word.Word
}

// PlaceholderAddr is written in place of an unresolved external label
// reference. Reads from or writes to this address (if a resolver somehow
// failed to overlay it) touch the very top of device-I/O space.
const PlaceholderAddr word.Word = word.AddressSpaceWords - 1

// ParseProgram scans input into a Program, one Statement per non-blank
// line. Line numbers are 0-indexed, matching how later diagnostics and
// errors report them.
func ParseProgram(input string) (Program, error) {
	var stmts []Statement
	lineNumber := 0
	for _, line := range splitLines(input) {
		stmt, err := statementToken(lineNumber, line)
		if err != nil {
			return Program{}, err
		}
		if stmt != nil {
			stmts = append(stmts, *stmt)
		}
		lineNumber++
	}
	return Program{Statements: stmts}, nil
}

func splitLines(input string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			line := input[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(input) {
		lines = append(lines, input[start:])
	}
	return lines
}

type labelEntry struct {
	lineNumber int
	address    word.Word
}

// Assemble runs the full two-pass assembly: parse, build the local label
// map (pass 1), emit words and resolve or defer every label reference
// (pass 2), then collect unused-local-label warnings (pass 3).
func Assemble(input string) (ObjectCode, []Diagnostic, error) {
	code, diags, _, err := AssembleWithRepr(input)
	return code, diags, err
}

// AssembleWithRepr is Assemble, additionally returning the program's
// canonical textual representation (as reconstructed from the parsed
// tokens), useful for diffing or displaying a normalized listing.
func AssembleWithRepr(input string) (ObjectCode, []Diagnostic, string, error) {
	program, err := ParseProgram(input)
	if err != nil {
		return ObjectCode{}, nil, "", err
	}

	labelMap, numberOfWords, err := buildLabelMap(program)
	if err != nil {
		return ObjectCode{}, nil, "", err
	}

	rawCode := make([]word.Word, 0, numberOfWords)
	var symbols []Symbol

	resolveAddr := func(a AddressToken, instructionAddr word.Word, lineNumber int) (word.Word, error) {
		if !a.IsLabel {
			return a.Address, nil
		}
		if a.Label.HasPrefix() {
			symbols = append(symbols, Symbol{
				InstructionAddress: instructionAddr,
				Label:              Label{Prefix: a.Label.Prefix, Name: a.Label.Name},
			})
			return PlaceholderAddr, nil
		}
		entry, ok := labelMap[a.Label.Name]
		if !ok {
			return 0, &LabelError{LineNumber: lineNumber, Kind: NotResolved, Label: a.Label.Name}
		}
		return entry.address, nil
	}

	for _, stmt := range program.Statements {
		if stmt.Content == nil {
			continue
		}
		if stmt.Content.IsData {
			d := stmt.Content.Data
			for i := 0; i < d.Count(); i++ {
				rawCode = append(rawCode, d.Word)
			}
			continue
		}

		instr := stmt.Content.Instruction
		instrAddr := word.Word(len(rawCode))

		var built word.Instruction
		if instr.Op.takesAddress() {
			resolved, err := resolveAddr(instr.Addr, instrAddr, stmt.LineNumber)
			if err != nil {
				return ObjectCode{}, nil, "", err
			}
			switch instr.Op {
			case IAdd:
				built = word.Add(resolved)
			case IAnd:
				built = word.And(resolved)
			case IOr:
				built = word.Or(resolved)
			case IXor:
				built = word.Xor(resolved)
			case ILoadValue:
				built = word.LoadValue(resolved)
			case IStoreValue:
				built = word.StoreValue(resolved)
			case IJump:
				built = word.Jump(resolved)
			case IJumpIfNegative:
				built = word.JumpIfNegative(resolved)
			case IEquals:
				built = word.Equals(resolved)
			}
		} else {
			switch instr.Op {
			case ILoadConstant:
				built = word.LoadConstant(instr.Literal)
			case IRotateRight:
				built = word.RotateRight(instr.Literal)
			case IHalt:
				built = word.Halt
			case INot:
				built = word.Not
			case INoOperation:
				built = word.NoOperation
			}
		}

		rawCode = append(rawCode, word.Encode(built))
	}

	diagnostics := findUnusedLabels(program, labelMap)

	labels := make(map[string]word.Word, len(labelMap))
	for name, entry := range labelMap {
		labels[name] = entry.address
	}

	return ObjectCode{RawCode: rawCode, SymbolTable: symbols, Labels: labels}, diagnostics, program.String(), nil
}

// buildLabelMap collects every local label definition's address (pass
// 1), validating prefix usage, duplicates, and that the definition falls
// within the addressable linear memory; it also returns the total word
// count so the caller can preallocate and detect overflow.
func buildLabelMap(program Program) (map[string]labelEntry, int, error) {
	labelMap := make(map[string]labelEntry)
	var numberOfWords uint64

	for _, stmt := range program.Statements {
		for _, def := range stmt.LabelDefs {
			if def.HasPrefix() && def.Prefix != "this" {
				return nil, 0, &LabelError{LineNumber: stmt.LineNumber, Kind: BadDefPrefix, Label: def.Prefix}
			}
			if _, exists := labelMap[def.Name]; exists {
				return nil, 0, &LabelError{LineNumber: stmt.LineNumber, Kind: Duplicate, Label: def.Name}
			}
			if numberOfWords >= uint64(word.LinearAddressSpaceWords) {
				return nil, 0, &LabelError{LineNumber: stmt.LineNumber, Kind: BehindFullMemory, Label: def.Name}
			}
			labelMap[def.Name] = labelEntry{lineNumber: stmt.LineNumber, address: word.Word(numberOfWords)}
		}

		numberOfWords += uint64(stmt.RequiredWords())
		if numberOfWords > uint64(word.LinearAddressSpaceWords) {
			return nil, 0, &OverflowError{LineNumber: stmt.LineNumber, Limit: word.LinearAddressSpaceWords}
		}
	}

	return labelMap, int(numberOfWords), nil
}

// findUnusedLabels removes every locally-referenced label from labelMap
// and turns whatever remains into warnings (pass 3).
func findUnusedLabels(program Program, labelMap map[string]labelEntry) []Diagnostic {
	remaining := make(map[string]labelEntry, len(labelMap))
	for k, v := range labelMap {
		remaining[k] = v
	}

	for _, stmt := range program.Statements {
		if stmt.Content == nil || stmt.Content.IsData {
			continue
		}
		instr := stmt.Content.Instruction
		if !instr.Op.takesAddress() {
			continue
		}
		if instr.Addr.IsLabel && !instr.Addr.Label.HasPrefix() {
			delete(remaining, instr.Addr.Label.Name)
		}
	}

	var diags []Diagnostic
	for name, entry := range remaining {
		diags = append(diags, Diagnostic{LineNumber: entry.lineNumber, Kind: UnusedLocalLabel, Label: name})
	}
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].LineNumber < diags[j].LineNumber })
	return diags
}
