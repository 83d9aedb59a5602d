package microcycle

import (
	"mima/bus"
	"mima/unit"
	"mima/word"
)

// Fetch returns the descriptor for counter, a microcycle index in
// [1,5]. Every instruction shares the same five-step fetch: load IAR
// into SAR and X while reading memory, add one to it in the background,
// latch the incremented address into IAR, then latch the read word into
// IR.
func Fetch(counter int) Descriptor {
	switch counter {
	case 1:
		return WithBusXfer(bus.Full(word.IAR, word.Set(word.SAR, word.X))).WithMemAccess(unit.Read)
	case 2:
		return WithBusXfer(bus.Full(word.ONE, word.Set(word.Y))).WithALUOp(unit.OpAdd)
	case 4:
		return WithBusXfer(bus.Full(word.Z, word.Set(word.IAR)))
	case 5:
		return WithBusXfer(bus.Full(word.SIR, word.Set(word.IR)))
	default:
		return Empty()
	}
}
