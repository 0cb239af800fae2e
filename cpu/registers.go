package cpu

import (
	"fmt"

	"github.com/hexile/gone6502/mask"
)

// A Flag names one bit of the processor status byte.
//
// 7654 3210
// NV1B DIZC
type Flag mask.Bit

const (
	Carry Flag = iota
	Zero
	InterruptDisable
	Decimal
	Break
	Unused
	Overflow
	Negative
)

func (f Flag) String() string {
	switch f {
	case Carry:
		return "Carry"
	case Zero:
		return "Zero"
	case InterruptDisable:
		return "InterruptDisable"
	case Decimal:
		return "Decimal"
	case Break:
		return "Break"
	case Unused:
		return "Unused"
	case Overflow:
		return "Overflow"
	case Negative:
		return "Negative"
	default:
		return "Flag(?)"
	}
}

// StatusFlags is the packed processor status byte (P register). Unlike a
// struct of bools, the whole byte can be pushed and popped atomically, which
// PHP/PLP/BRK/RTI all depend on.
type StatusFlags byte

// defaultStatusFlags is the P value after construction or reset: I and the
// unused bit 5 set, everything else clear.
const defaultStatusFlags StatusFlags = 0b0010_0100

// Get reports whether flag is set.
func (p StatusFlags) Get(flag Flag) bool {
	return mask.GetBit(byte(p), mask.Bit(flag))
}

// Set assigns flag to value. Setting a flag to its current value leaves the
// byte, including bit 5 and B, unchanged.
func (p *StatusFlags) Set(flag Flag, value bool) {
	*p = StatusFlags(mask.SetBit(byte(*p), mask.Bit(flag), value))
}

// Toggle flips flag.
func (p *StatusFlags) Toggle(flag Flag) {
	*p = StatusFlags(mask.ToggleBit(byte(*p), mask.Bit(flag)))
}

// String renders the flag byte the way a register dump would, one flag per
// line, most significant first.
func (p StatusFlags) String() string {
	s := ""
	for _, f := range []Flag{Negative, Overflow, Unused, Break, Decimal, InterruptDisable, Zero, Carry} {
		s += fmt.Sprintf("%-17s= %v\n", f, p.Get(f))
	}
	return s
}

// Registers holds the five architectural registers of the 6502: the
// accumulator, the two index registers, the program counter, the stack
// pointer, and the packed status byte.
type Registers struct {
	A  byte
	X  byte
	Y  byte
	PC uint16
	SP byte
	P  StatusFlags
}

// reset returns the registers to their power-on defaults. PC is left at its
// existing value; the caller loads it from the reset vector separately.
func (r *Registers) reset() {
	r.A = 0
	r.X = 0
	r.Y = 0
	r.SP = 0xff
	r.P = defaultStatusFlags
}

func (r Registers) String() string {
	return fmt.Sprintf(
		"A  = 0x%02x\nX  = 0x%02x\nY  = 0x%02x\nPC = 0x%04x\nSP = 0x%02x\n\nFlags:\n%s",
		r.A, r.X, r.Y, r.PC, r.SP, r.P,
	)
}
