// Package bus models the MiMA's internal register bus: a single-source,
// multi-destination transfer descriptor, validated at construction so
// that an invalid wiring is a programmer error caught immediately rather
// than a silently wrong microcycle.
package bus

import (
	"fmt"

	"mima/word"
)

// Source bitmasks applied to the value read off a source register before
// it is written to every destination. IR is the only register that may
// need to be masked down to its basic or extended payload - any other
// source uses the full, unmasked word.
const (
	SourceBitmaskFull            = word.FullMask
	SourceBitmaskBasicPayload    = word.BasicPayloadMask
	SourceBitmaskExtendedPayload = word.ExtendedPayloadMask
)

// validSources is the set of registers that may act as a bus source.
var validSources = word.Set(word.ACC, word.ONE, word.Z, word.IAR, word.IR, word.SIR)

// validDestinations is the set of registers that may act as a bus
// destination.
var validDestinations = word.Set(word.ACC, word.X, word.Y, word.IAR, word.IR, word.SAR, word.SIR)

// Xfer describes one register bus transfer: a single source register, one
// or more destination registers, a mask applied to the source value, and
// whether the transfer is gated on the accumulator's sign bit.
type Xfer struct {
	source         word.Register
	destinations   word.RegisterSet
	sourceBitmask  word.Word
	isAccDependent bool
}

// New builds an Xfer, validating every invariant the microcycle engine
// relies on. It panics on violation: these are all programmer errors -
// mistakes in a hand-written fetch/execute table - not conditions that
// can arise from program input.
func New(source word.Register, destinations word.RegisterSet, sourceBitmask word.Word) Xfer {
	if !validSources.Contains(source) {
		panic(fmt.Sprintf("bus: invalid transfer source %v", source))
	}
	if destinations.IsEmpty() {
		panic("bus: transfer must have at least one destination")
	}
	if !validDestinations.ContainsAll(destinations) {
		panic(fmt.Sprintf("bus: invalid transfer destination(s) %v", destinations))
	}
	validateSourceBitmask(source, sourceBitmask)

	return Xfer{
		source:        source,
		destinations:  destinations,
		sourceBitmask: sourceBitmask,
	}
}

// Full builds an Xfer with the identity (full word) source mask, the
// shape almost every bus transfer uses.
func Full(source word.Register, destinations word.RegisterSet) Xfer {
	return New(source, destinations, SourceBitmaskFull)
}

func validateSourceBitmask(source word.Register, mask word.Word) {
	if source == word.IR {
		if mask != SourceBitmaskBasicPayload && mask != SourceBitmaskExtendedPayload {
			panic(fmt.Sprintf("bus: IR source must use a payload mask, got %v", mask))
		}
		return
	}
	if mask != SourceBitmaskFull {
		panic(fmt.Sprintf("bus: non-IR source must use the full mask, got %v", mask))
	}
}

// AccDependent marks the transfer as firing only when the accumulator's
// sign bit (bit 31) is set, and returns the (mutated) Xfer for chaining.
func (x Xfer) AccDependent() Xfer {
	x.isAccDependent = true
	return x
}

func (x Xfer) Source() word.Register          { return x.source }
func (x Xfer) Destinations() word.RegisterSet { return x.destinations }
func (x Xfer) SourceBitmask() word.Word       { return x.sourceBitmask }
func (x Xfer) IsAccDependent() bool           { return x.isAccDependent }

func (x Xfer) String() string {
	dep := ""
	if x.isAccDependent {
		dep = " (acc-dependent)"
	}
	return fmt.Sprintf("%v -> %v%s", x.source, x.destinations, dep)
}
