package unit

import (
	"fmt"

	"mima/asm"
	"mima/word"
)

// MicrocyclesPerAccess is the number of microcycles a memory access takes
// to complete once signaled.
const MicrocyclesPerAccess = 3

// Access names a memory operation direction.
type Access int

const (
	Read Access = iota
	Write
)

func (a Access) String() string {
	if a == Read {
		return "Read"
	}
	return "Write"
}

// memoryWork is a snapshot of an in-flight memory access: SAR and SIR are
// captured at signal time, exactly as the arithmetic unit captures its
// operands, so a later register write does not change which address or
// value the access actually touches.
type memoryWork struct {
	memType         word.MemoryType
	access          Access
	sar, sir        word.Word
	remainingCycles int
}

// DeviceResolver maps a device label (namespace prefix + symbol name) to
// the device's address in the device-I/O range of the address space. It
// is how Memory.LoadCode links external symbol references.
type DeviceResolver interface {
	ResolveDevice(prefix, name string) (word.Word, error)
}

// DefaultDeviceResolver is the resolver used when no device map has been
// configured. Device linking is not implemented yet: every symbol
// resolves to the same placeholder device address, so programs that
// reference devices assemble and load but always talk to the same
// address-0x0FFFFFFF stub device.
type DefaultDeviceResolver struct{}

func (DefaultDeviceResolver) ResolveDevice(prefix, name string) (word.Word, error) {
	return word.Word(0x0FFF_FFFF), nil
}

// LinkErrorKind distinguishes the ways device resolution can fail.
type LinkErrorKind int

const (
	UnknownDevice LinkErrorKind = iota
	UnknownDeviceLabel
)

// LinkError reports a symbol that Memory.LoadCode could not resolve
// against the configured DeviceResolver.
type LinkError struct {
	Kind   LinkErrorKind
	Prefix string
	Name   string
}

func (e *LinkError) Error() string {
	switch e.Kind {
	case UnknownDevice:
		return fmt.Sprintf("unknown device %q", e.Prefix)
	default:
		return fmt.Sprintf("unknown label %q on device %q", e.Name, e.Prefix)
	}
}

// Memory is the MiMA's memory unit: SAR/SIR registers, an in-flight
// access, and the linear (RAM) address space. Device-I/O addresses are
// not backed by storage here - they are handled live in finalizeDeviceIO,
// the same way the control unit brackets a device access with
// start_xfer/stop_xfer rather than treating it as ordinary RAM.
type Memory struct {
	SAR, SIR word.Word
	work     *memoryWork
	linear   []word.Word
}

// NewMemory returns a memory unit whose linear address space is filled
// with Halt instructions, so that a program counter that runs off the end
// of loaded code halts rather than executing garbage.
func NewMemory() *Memory {
	linear := make([]word.Word, word.LinearAddressSpaceWords)
	halt := word.Encode(word.Halt)
	for i := range linear {
		linear[i] = halt
	}
	return &Memory{linear: linear}
}

// IsBusy reports whether an access is currently in flight.
func (m *Memory) IsBusy() bool { return m.work != nil }

// MemWorkSnapshot reports an in-flight memory access's kind, direction,
// and how many microcycles remain before it finalizes, for an observer
// to display - without exposing the latched SAR/SIR values themselves.
type MemWorkSnapshot struct {
	MemType         word.MemoryType
	Access          Access
	RemainingCycles int
}

// WorkSnapshot returns the in-flight access's snapshot, or nil if the
// unit is idle.
func (m *Memory) WorkSnapshot() *MemWorkSnapshot {
	if m.work == nil {
		return nil
	}
	return &MemWorkSnapshot{MemType: m.work.memType, Access: m.work.access, RemainingCycles: m.work.remainingCycles}
}

// SignalMemory starts access, latching the unit's current SAR and SIR.
// It panics if an access is already in flight.
func (m *Memory) SignalMemory(access Access) {
	if m.work != nil {
		panic("unit: memory unit signaled while busy")
	}
	m.work = &memoryWork{
		memType:         word.MemoryTypeOf(m.SAR),
		access:          access,
		sar:             m.SAR,
		sir:             m.SIR,
		remainingCycles: MicrocyclesPerAccess,
	}
}

// PollWork advances the in-flight access by one microcycle, finalizing it
// into SIR (Read) or linear memory (Write) once its remaining cycle count
// has already reached zero. See Arithmetic.PollWork for the exact timing
// this mirrors.
func (m *Memory) PollWork() {
	if m.work == nil {
		return
	}
	if m.work.remainingCycles == 0 {
		switch m.work.memType {
		case word.Linear:
			m.finalizeLinear(m.work)
		default:
			m.finalizeDeviceIO(m.work)
		}
		m.work = nil
		return
	}
	m.work.remainingCycles--
}

func (m *Memory) finalizeLinear(w *memoryWork) {
	switch w.access {
	case Read:
		m.SIR = m.linear[w.sar]
	case Write:
		m.linear[w.sar] = w.sir
	}
}

// finalizeDeviceIO stands in for a real device bus: reads always return a
// fixed sentinel value, and writes are discarded. No device peripheral is
// modeled by this simulator.
func (m *Memory) finalizeDeviceIO(w *memoryWork) {
	if w.access == Read {
		m.SIR = word.Word(42)
	}
}

// LoadCode loads an assembled program's raw code into linear memory
// starting at address 0, then resolves every external symbol reference
// through resolver and overlays the resolved device address onto the
// placeholder word at that symbol's instruction address.
//
// The overlay clears the placeholder word's low 28 payload bits before
// ORing in the resolved address, rather than ANDing the whole word by
// the masked address: the placeholder's payload is all-ones by
// construction (asm.PlaceholderAddr), so ANDing the full word
// zeroes out the opcode nibble living in the high bits, and ORing alone
// (without first clearing) can never turn the placeholder's all-ones
// payload into anything but all-ones again. Clear, then OR, is what
// "overlay the resolved address" has to mean here.
func (m *Memory) LoadCode(code asm.ObjectCode, resolver DeviceResolver) error {
	if len(code.RawCode) > word.LinearAddressSpaceWords {
		panic("unit: object code exceeds linear address space")
	}
	copy(m.linear, code.RawCode)

	for _, sym := range code.SymbolTable {
		addr, err := resolver.ResolveDevice(sym.Label.Prefix, sym.Label.Name)
		if err != nil {
			return err
		}
		masked := addr & word.BasicPayloadMask
		m.linear[sym.InstructionAddress] = (m.linear[sym.InstructionAddress] &^ word.BasicPayloadMask) | masked
	}
	return nil
}

// LoadRaw loads code directly into linear memory starting at address 0,
// bypassing assembly and symbol resolution entirely. It is used to plant
// a memory image built by hand, e.g. in tests of the microcycle engine.
func (m *Memory) LoadRaw(code []word.Word) {
	if len(code) > word.LinearAddressSpaceWords {
		panic("unit: raw code exceeds linear address space")
	}
	copy(m.linear, code)
}

// LoadMemImage replaces the entire linear address space with image. Unlike
// LoadRaw, which loads a prefix and leaves the rest untouched, image must
// exactly match the size of the linear address space - this is a full
// replacement, e.g. for restoring a saved snapshot.
func (m *Memory) LoadMemImage(image []word.Word) {
	if len(image) != word.LinearAddressSpaceWords {
		panic(fmt.Sprintf("unit: memory image must exactly match the linear address space (%d words), got %d", word.LinearAddressSpaceWords, len(image)))
	}
	copy(m.linear, image)
}

// LoadInstructions encodes each instruction and loads it into linear
// memory starting at address 0, bypassing the assembler entirely - for
// callers that already have a decoded instruction stream rather than
// source text or raw words.
func (m *Memory) LoadInstructions(instructions []word.Instruction) {
	if len(instructions) > word.LinearAddressSpaceWords {
		panic("unit: instruction stream exceeds linear address space")
	}
	for i, instr := range instructions {
		m.linear[i] = word.Encode(instr)
	}
}

// Peek returns the word stored at a linear address, for inspection by a
// debugger or test without going through the microcycle engine.
func (m *Memory) Peek(addr word.Word) word.Word {
	return m.linear[addr]
}
