package microcycle

import (
	"mima/bus"
	"mima/unit"
	"mima/word"
)

// irBasicPayload is the bus source for reading IR's basic-format address
// payload (e.g. for ADD, LDV, JMP...).
func irBasicPayload(destinations word.RegisterSet) bus.Xfer {
	return bus.New(word.IR, destinations, bus.SourceBitmaskBasicPayload)
}

// irExtendedPayload is the bus source for reading IR's extended-format
// payload (RAR's rotate count).
func irExtendedPayload(destinations word.RegisterSet) bus.Xfer {
	return bus.New(word.IR, destinations, bus.SourceBitmaskExtendedPayload)
}

// memoryAluOp is the shape shared by ADD, AND, OR, XOR and EQL: copy ACC
// into X, read the operand addressed by IR's payload from memory into Y,
// then combine the two and move the result from Z back into ACC.
func memoryAluOp(op unit.ALUOperation) func(counter int) Descriptor {
	return func(counter int) Descriptor {
		switch counter {
		case 6:
			return WithBusXfer(irBasicPayload(word.Set(word.SAR))).WithMemAccess(unit.Read)
		case 7:
			return WithBusXfer(bus.Full(word.ACC, word.Set(word.X)))
		case 10:
			return WithBusXfer(bus.Full(word.SIR, word.Set(word.Y))).WithALUOp(op)
		case 12:
			return WithBusXfer(bus.Full(word.Z, word.Set(word.ACC)))
		default:
			return Empty()
		}
	}
}

func executeLoadValue(counter int) Descriptor {
	switch counter {
	case 6:
		return WithBusXfer(irBasicPayload(word.Set(word.SAR))).WithMemAccess(unit.Read)
	case 10:
		return WithBusXfer(bus.Full(word.SIR, word.Set(word.ACC)))
	default:
		return Empty()
	}
}

func executeStoreValue(counter int) Descriptor {
	switch counter {
	case 6:
		return WithBusXfer(irBasicPayload(word.Set(word.SAR)))
	case 7:
		return WithBusXfer(bus.Full(word.ACC, word.Set(word.SIR))).WithMemAccess(unit.Write)
	default:
		return Empty()
	}
}

func executeLoadConstant(counter int) Descriptor {
	if counter == 6 {
		return WithBusXfer(irBasicPayload(word.Set(word.ACC)))
	}
	return Empty()
}

func executeJump(counter int) Descriptor {
	if counter == 6 {
		return WithBusXfer(irBasicPayload(word.Set(word.IAR)))
	}
	return Empty()
}

func executeJumpIfNegative(counter int) Descriptor {
	if counter == 6 {
		return WithBusXfer(irBasicPayload(word.Set(word.IAR))).AccDependent()
	}
	return Empty()
}

func executeNot(counter int) Descriptor {
	switch counter {
	case 6:
		return WithBusXfer(bus.Full(word.ACC, word.Set(word.X))).WithALUOp(unit.OpNot)
	case 8:
		return WithBusXfer(bus.Full(word.Z, word.Set(word.ACC)))
	default:
		return Empty()
	}
}

func executeRotateRight(counter int) Descriptor {
	switch counter {
	case 6:
		return WithBusXfer(bus.Full(word.ACC, word.Set(word.X)))
	case 7:
		return WithBusXfer(irExtendedPayload(word.Set(word.Y))).WithALUOp(unit.OpRotateRight)
	case 9:
		return WithBusXfer(bus.Full(word.Z, word.Set(word.ACC)))
	default:
		return Empty()
	}
}

// Execute returns the descriptor for counter (a microcycle index in
// [6,12]) given the currently decoded instr.
func Execute(counter int, instr word.Instruction) Descriptor {
	switch instr.Op {
	case word.OpAdd:
		return memoryAluOp(unit.OpAdd)(counter)
	case word.OpAnd:
		return memoryAluOp(unit.OpAnd)(counter)
	case word.OpOr:
		return memoryAluOp(unit.OpOr)(counter)
	case word.OpXor:
		return memoryAluOp(unit.OpXor)(counter)
	case word.OpEquals:
		return memoryAluOp(unit.OpEquals)(counter)
	case word.OpLoadValue:
		return executeLoadValue(counter)
	case word.OpStoreValue:
		return executeStoreValue(counter)
	case word.OpLoadConstant:
		return executeLoadConstant(counter)
	case word.OpJump:
		return executeJump(counter)
	case word.OpJumpIfNegative:
		return executeJumpIfNegative(counter)
	case word.OpNot:
		return executeNot(counter)
	case word.OpRotateRight:
		return executeRotateRight(counter)
	case word.OpHalt, word.OpNoOperation:
		return Empty()
	default:
		return Empty()
	}
}
