// Package microcycle holds the fetch and execute phase tables: pure
// functions from (counter, instruction) to the Descriptor of bus/ALU/
// memory activity that microcycle should produce, with no side effects
// of their own.
package microcycle

import (
	"mima/bus"
	"mima/unit"
)

// Descriptor is everything that can happen in a single microcycle: at
// most one bus transfer, at most one ALU signal, at most one memory
// signal. All three are independent and, when present, are applied in
// that order.
type Descriptor struct {
	BusXfer   *bus.Xfer
	ALUOp     *unit.ALUOperation
	MemAccess *unit.Access
}

// Empty is the descriptor for a microcycle that does nothing, used for
// the many counter slots most instructions leave idle.
func Empty() Descriptor {
	return Descriptor{}
}

// WithBusXfer attaches xfer (with whatever source mask it was built with)
// to an otherwise-empty descriptor.
func WithBusXfer(xfer bus.Xfer) Descriptor {
	return Descriptor{BusXfer: &xfer}
}

// AccDependent marks d's bus transfer as firing only when ACC's sign bit
// is set. It panics if d has no bus transfer to mark.
func (d Descriptor) AccDependent() Descriptor {
	if d.BusXfer == nil {
		panic("microcycle: AccDependent called on a descriptor with no bus transfer")
	}
	marked := d.BusXfer.AccDependent()
	d.BusXfer = &marked
	return d
}

// WithALUOp attaches an ALU signal to d.
func (d Descriptor) WithALUOp(op unit.ALUOperation) Descriptor {
	d.ALUOp = &op
	return d
}

// WithMemAccess attaches a memory signal to d.
func (d Descriptor) WithMemAccess(access unit.Access) Descriptor {
	d.MemAccess = &access
	return d
}
