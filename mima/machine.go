// Package mima wires the arithmetic, memory and control units together
// into a running machine, driving them one microcycle at a time and
// reporting what happened at both the microcycle and full-instruction
// granularity for a debugger or test to inspect.
package mima

import (
	"fmt"

	"mima/asm"
	"mima/bus"
	"mima/microcycle"
	"mima/unit"
	"mima/word"
)

// BeforeAfter pairs a value observed immediately before and immediately
// after a microcycle, so a summary can show what actually changed
// without the caller having to snapshot state itself.
type BeforeAfter[T any] struct {
	Before, After T
}

func snapshot[T any](before, after T) BeforeAfter[T] {
	return BeforeAfter[T]{Before: before, After: after}
}

// RegisterSnapshot captures every visible register's value before and
// after one microcycle.
type RegisterSnapshot struct {
	ACC, X, Y, Z        BeforeAfter[word.Word]
	IAR, IR             BeforeAfter[word.Word]
	SAR, SIR            BeforeAfter[word.Word]
	Run, TransferActive BeforeAfter[word.Flag]
}

// MicrocycleSummary reports everything about one executed microcycle: its
// index, the work-in-progress ALU/memory state observed before it ran,
// the descriptor that drove it, and every visible register's value
// before and after. A terminal renderer or debugger is the intended
// consumer - StepMicrocycle itself never prints anything.
type MicrocycleSummary struct {
	RegisterSnapshot
	MicrocycleIndex uint8
	ALUWorkBefore   *unit.ALUWorkSnapshot
	MemWorkBefore   *unit.MemWorkSnapshot
	Instruction     *word.Instruction
	Descriptor      microcycle.Descriptor
}

func (s MicrocycleSummary) String() string {
	return fmt.Sprintf("[uc %2d] %v", s.MicrocycleIndex, s.Descriptor)
}

// IsBusActive reports whether this microcycle's bus transfer actually
// moved data: no transfer at all is inactive, an acc_dependent transfer
// is active only if ACC's sign bit was set going into the microcycle,
// and every other transfer is unconditionally active.
func (s MicrocycleSummary) IsBusActive() bool {
	xfer := s.Descriptor.BusXfer
	if xfer == nil {
		return false
	}
	if xfer.IsAccDependent() {
		return s.ACC.Before.IsNegative()
	}
	return true
}

// CycleSummary folds the twelve MicrocycleSummary values that make up one
// full instruction cycle into a single before/after diff of the
// registers a programmer actually cares about between instructions (ACC,
// IAR, RUN, TRA), plus the instruction that was executed (nil if none of
// the stepped microcycles was in the execute phase).
// Microcycles retains the full per-microcycle detail for a debugger that
// wants it.
type CycleSummary struct {
	Microcycles []MicrocycleSummary
	Instruction *word.Instruction
	ACC, IAR    BeforeAfter[word.Word]
	Run, TRA    BeforeAfter[word.Flag]
}

// Machine is a complete MiMA: its three functional units, wired together
// exactly as StepMicrocycle (and StepInstruction) expect.
type Machine struct {
	Arithmetic *unit.Arithmetic
	Memory     *unit.Memory
	Control    *unit.Control

	resolver unit.DeviceResolver
	Labels   map[string]word.Word
}

// Option configures a Machine at construction time. The zero value of
// every option-less field is already a correct, fully usable machine -
// options exist only to override the device resolver a program's
// external labels are linked against.
type Option func(*Machine)

// WithDeviceResolver overrides the resolver Load uses to link external
// device labels. Without this option, Load falls back to
// unit.DefaultDeviceResolver.
func WithDeviceResolver(r unit.DeviceResolver) Option {
	return func(m *Machine) { m.resolver = r }
}

// New returns a freshly reset machine: running, counter at 1, linear
// memory filled with Halt.
func New(opts ...Option) *Machine {
	m := &Machine{
		Arithmetic: unit.NewArithmetic(),
		Memory:     unit.NewMemory(),
		Control:    unit.NewControl(),
		resolver:   unit.DefaultDeviceResolver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsRunning reports whether the control unit's run flag is still set.
func (m *Machine) IsRunning() bool { return bool(m.Control.Run) }

// Load assembles src and loads it into linear memory, resolving device
// symbols through the machine's configured resolver (see
// WithDeviceResolver). It also records src's local label table on
// m.Labels, for a debugger to show addresses by name.
func (m *Machine) Load(src string) ([]asm.Diagnostic, error) {
	code, diags, err := asm.Assemble(src)
	if err != nil {
		return nil, err
	}
	if err := m.Memory.LoadCode(code, m.resolver); err != nil {
		return diags, err
	}
	m.Labels = code.Labels
	return diags, nil
}

func (m *Machine) registerSnapshot(before RegisterSnapshot) RegisterSnapshot {
	return RegisterSnapshot{
		ACC:            snapshot(before.ACC.Before, m.Arithmetic.ACC),
		X:              snapshot(before.X.Before, m.Arithmetic.X),
		Y:              snapshot(before.Y.Before, m.Arithmetic.Y),
		Z:              snapshot(before.Z.Before, m.Arithmetic.Z),
		IAR:            snapshot(before.IAR.Before, m.Control.IAR),
		IR:             snapshot(before.IR.Before, m.Control.IR),
		SAR:            snapshot(before.SAR.Before, m.Memory.SAR),
		SIR:            snapshot(before.SIR.Before, m.Memory.SIR),
		Run:            snapshot(before.Run.Before, m.Control.Run),
		TransferActive: snapshot(before.TransferActive.Before, m.Control.TransferActive),
	}
}

func (m *Machine) snapshotBefore() RegisterSnapshot {
	return RegisterSnapshot{
		ACC:            BeforeAfter[word.Word]{Before: m.Arithmetic.ACC},
		X:              BeforeAfter[word.Word]{Before: m.Arithmetic.X},
		Y:              BeforeAfter[word.Word]{Before: m.Arithmetic.Y},
		Z:              BeforeAfter[word.Word]{Before: m.Arithmetic.Z},
		IAR:            BeforeAfter[word.Word]{Before: m.Control.IAR},
		IR:             BeforeAfter[word.Word]{Before: m.Control.IR},
		SAR:            BeforeAfter[word.Word]{Before: m.Memory.SAR},
		SIR:            BeforeAfter[word.Word]{Before: m.Memory.SIR},
		Run:            BeforeAfter[word.Flag]{Before: m.Control.Run},
		TransferActive: BeforeAfter[word.Flag]{Before: m.Control.TransferActive},
	}
}

// StepMicrocycle performs exactly one microcycle and reports what
// happened. It returns (summary, true) if the machine was running, or
// (zero value, false) if it had already halted - mirroring the
// reference engine's Option<Descriptor> return from a halted machine.
//
// The step order is fixed: poll the arithmetic unit, poll the memory
// unit, look up this microcycle's descriptor, apply its bus transfer,
// signal the ALU, signal memory (bracketing a device-I/O access with
// start_xfer/stop_xfer), then advance the control unit's counter. Each
// poll can only finalize work signaled by a *previous* microcycle, so
// polling before looking up the new descriptor is what gives every
// signaled operation its configured latency.
func (m *Machine) StepMicrocycle() (MicrocycleSummary, bool) {
	if !m.IsRunning() {
		return MicrocycleSummary{}, false
	}

	before := m.snapshotBefore()
	aluWorkBefore := m.Arithmetic.WorkSnapshot()
	memWorkBefore := m.Memory.WorkSnapshot()
	counter := m.Control.Counter()

	m.Arithmetic.PollWork()
	m.Memory.PollWork()

	var descriptor microcycle.Descriptor
	var instruction *word.Instruction
	if m.Control.HasInstruction() {
		instr := m.Control.Instruction()
		instruction = &instr
		descriptor = microcycle.Execute(counter, instr)
	} else {
		descriptor = microcycle.Fetch(counter)
	}

	m.applyBusXfer(descriptor.BusXfer)

	if descriptor.ALUOp != nil {
		m.Arithmetic.SignalALU(*descriptor.ALUOp)
	}

	if descriptor.MemAccess != nil {
		m.signalMemory(*descriptor.MemAccess)
	}

	m.Control.EndMicrocycle()

	summary := MicrocycleSummary{
		RegisterSnapshot: m.registerSnapshot(before),
		MicrocycleIndex:  uint8(counter),
		ALUWorkBefore:    aluWorkBefore,
		MemWorkBefore:    memWorkBefore,
		Instruction:      instruction,
		Descriptor:       descriptor,
	}
	return summary, true
}

// signalMemory brackets a device-I/O access with the control unit's
// transfer-active flag; a linear access needs no such bracket, since it
// never leaves the machine to talk to anything.
func (m *Machine) signalMemory(access unit.Access) {
	if word.MemoryTypeOf(m.Memory.SAR) == word.DeviceIO {
		m.Control.StartXfer()
		m.Memory.SignalMemory(access)
		m.Control.StopXfer()
		return
	}
	m.Memory.SignalMemory(access)
}

func (m *Machine) applyBusXfer(xfer *bus.Xfer) {
	if xfer == nil {
		return
	}
	if xfer.IsAccDependent() && !m.Arithmetic.ACC.IsNegative() {
		return
	}

	value := m.readRegister(xfer.Source()) & xfer.SourceBitmask()
	xfer.Destinations().Each(func(r word.Register) {
		m.writeRegister(r, value)
	})
}

func (m *Machine) readRegister(r word.Register) word.Word {
	switch r {
	case word.ACC:
		return m.Arithmetic.ACC
	case word.ONE:
		return m.Arithmetic.One()
	case word.X:
		return m.Arithmetic.X
	case word.Y:
		return m.Arithmetic.Y
	case word.Z:
		return m.Arithmetic.Z
	case word.IAR:
		return m.Control.IAR
	case word.IR:
		return m.Control.IR
	case word.SAR:
		return m.Memory.SAR
	case word.SIR:
		return m.Memory.SIR
	default:
		panic(fmt.Sprintf("mima: register %v is not a valid bus source", r))
	}
}

func (m *Machine) writeRegister(r word.Register, v word.Word) {
	switch r {
	case word.ACC:
		m.Arithmetic.ACC = v
	case word.X:
		m.Arithmetic.X = v
	case word.Y:
		m.Arithmetic.Y = v
	case word.IAR:
		m.Control.IAR = v
	case word.IR:
		m.Control.IR = v
	case word.SAR:
		m.Memory.SAR = v
	case word.SIR:
		m.Memory.SIR = v
	default:
		panic(fmt.Sprintf("mima: register %v is not a valid bus destination", r))
	}
}

// StepInstruction runs twelve microcycles (one full fetch/execute
// cycle), stopping early if the machine halts mid-cycle, then folds the
// resulting microcycle summaries into a single before/after diff of
// ACC/IAR/RUN/TRA spanning the whole instruction.
func (m *Machine) StepInstruction() CycleSummary {
	var summary CycleSummary
	for i := 0; i < 12; i++ {
		uc, ok := m.StepMicrocycle()
		if !ok {
			break
		}
		summary.Microcycles = append(summary.Microcycles, uc)
	}
	for _, uc := range summary.Microcycles {
		if uc.Instruction != nil {
			summary.Instruction = uc.Instruction
		}
	}
	if len(summary.Microcycles) > 0 {
		first := summary.Microcycles[0]
		last := summary.Microcycles[len(summary.Microcycles)-1]
		summary.ACC = snapshot(first.ACC.Before, last.ACC.After)
		summary.IAR = snapshot(first.IAR.Before, last.IAR.After)
		summary.Run = snapshot(first.Run.Before, last.Run.After)
		summary.TRA = snapshot(first.TransferActive.Before, last.TransferActive.After)
	}
	return summary
}

// Run steps microcycles until the machine halts or maxMicrocycles have
// elapsed, whichever comes first - a safety valve against runaway
// programs in tests and the CLI alike.
func (m *Machine) Run(maxMicrocycles int) []MicrocycleSummary {
	var summaries []MicrocycleSummary
	for i := 0; i < maxMicrocycles; i++ {
		uc, ok := m.StepMicrocycle()
		if !ok {
			break
		}
		summaries = append(summaries, uc)
	}
	return summaries
}
