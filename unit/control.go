package unit

import "mima/word"

// Control is the MiMA's control unit: the instruction address register,
// instruction register, run/transfer-active status flags, and the
// 12-step microcycle counter that drives the fetch/execute tables.
type Control struct {
	IAR, IR word.Word

	Run            word.Flag
	TransferActive word.Flag

	counter     int
	instruction *word.Instruction
}

// NewControl returns a control unit in its reset state: running, counter
// at the first microcycle, no instruction decoded yet.
func NewControl() *Control {
	return &Control{Run: true, counter: 1}
}

// Counter is the current microcycle index, in [1,12].
func (c *Control) Counter() int { return c.counter }

// HasInstruction reports whether IR has been decoded yet this
// instruction cycle - true while the counter is in [6,12].
func (c *Control) HasInstruction() bool { return c.instruction != nil }

// Instruction returns the currently decoded instruction. It panics if
// called before HasInstruction is true: the microcycle engine must never
// ask the execute table to dispatch on an undecoded instruction.
func (c *Control) Instruction() word.Instruction {
	if c.instruction == nil {
		panic("unit: control unit has no decoded instruction")
	}
	return *c.instruction
}

// StartXfer marks a device-I/O access as in progress. It panics if one is
// already active: the memory unit's device bracket must never nest.
func (c *Control) StartXfer() {
	if c.TransferActive {
		panic("unit: device transfer started while already active")
	}
	c.TransferActive = true
}

// StopXfer ends a device-I/O access. It panics if none is active.
func (c *Control) StopXfer() {
	if !c.TransferActive {
		panic("unit: device transfer stopped while not active")
	}
	c.TransferActive = false
}

// EndMicrocycle advances the counter, decoding IR into an instruction at
// counter 5 and clearing the decoded instruction at counter 12 (also
// clearing the run flag there if that instruction was a Halt).
func (c *Control) EndMicrocycle() {
	switch c.counter {
	case 5:
		instr := word.Decode(c.IR)
		c.instruction = &instr
	case 12:
		if c.instruction != nil && c.instruction.Op == word.OpHalt {
			c.Run = false
		}
		c.instruction = nil
	}

	if c.counter == 12 {
		c.counter = 1
	} else {
		c.counter++
	}
}
