// Package cpu implements the MOS Technology 6502 microprocessor: the
// instruction execution engine, addressing-mode resolution, flag
// computation, stack discipline, and interrupt acknowledgement.
package cpu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/hexile/gone6502/mask"
	"github.com/hexile/gone6502/mem"
)

// Reserved vector locations, little-endian 16-bit words.
const (
	nmiVector   uint16 = 0xfffa
	resetVector uint16 = 0xfffc
	irqVector   uint16 = 0xfffe
)

// ErrStackOverflow is returned by Step when a push is attempted with SP
// already at the bottom of the stack page.
var ErrStackOverflow = errors.New("cpu: stack overflow")

// ErrStackUnderflow is returned by Step when a pop is attempted with SP
// already at the top of the stack page.
var ErrStackUnderflow = errors.New("cpu: stack underflow")

// ErrKilEncountered is returned by Step once the CPU has executed a KIL/JAM
// opcode. Every subsequent Step call returns the same error without
// mutating any further state.
var ErrKilEncountered = errors.New("cpu: KIL/JAM opcode encountered")

// Voltage models the level on the IRQ line. Low is asserted (the line is
// pulled low to request service); High is idle.
type Voltage bool

const (
	High Voltage = false
	Low  Voltage = true
)

// An AddressingMode tells the Chip where to find the operand for the
// current instruction. There are 13 possible modes.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
	Relative
)

// operandSize is the number of bytes following the opcode byte that this
// mode consumes.
func (a AddressingMode) operandSize() uint16 {
	switch a {
	case Implied, Accumulator:
		return 0
	case Immediate, ZeroPage, ZeroPageX, ZeroPageY, IndirectX, IndirectY, Relative:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 2
	default:
		return 0
	}
}

func (a AddressingMode) String() string {
	switch a {
	case Implied:
		return "Implied"
	case Accumulator:
		return "Accumulator"
	case Immediate:
		return "Immediate"
	case ZeroPage:
		return "ZeroPage"
	case ZeroPageX:
		return "ZeroPageX"
	case ZeroPageY:
		return "ZeroPageY"
	case Absolute:
		return "Absolute"
	case AbsoluteX:
		return "AbsoluteX"
	case AbsoluteY:
		return "AbsoluteY"
	case Indirect:
		return "Indirect"
	case IndirectX:
		return "IndirectX"
	case IndirectY:
		return "IndirectY"
	case Relative:
		return "Relative"
	default:
		return "AddressingMode(?)"
	}
}

// Descriptor is the externally visible summary of an opcode byte: enough
// for a disassembler or debugger to show what is about to execute without
// reaching into the engine's internal instruction table.
type Descriptor struct {
	Opcode   byte
	Mnemonic string
	Mode     AddressingMode
	Cycles   byte
}

// Describe returns the descriptor for opcode.
func Describe(opcode byte) Descriptor {
	d := opcodeTable[opcode]
	return Descriptor{Opcode: d.opcode, Mnemonic: d.mnemonic, Mode: d.mode, Cycles: d.cycles}
}

// Chip is the 6502 core. It owns a register file, a Bus to read and write
// memory through, a cycle counter, and the two interrupt inputs an embedder
// drives between steps.
type Chip struct {
	Registers

	Bus mem.Bus

	Cycles uint32

	// currentInstruction is the descriptor of the instruction currently
	// being executed. It is populated at the start of Step and is only
	// valid for the duration of that call; handlers that need the
	// addressing mode (e.g. ASL on Accumulator vs memory) read it from
	// here rather than threading it through every call.
	currentInstruction *instructionDescriptor

	// effectiveAddress and operand are populated by resolveOperand ahead
	// of the handler call, mirroring the engine's "resolve early" step so
	// handlers never re-read the operand bytes themselves.
	effectiveAddress uint16
	hasAddress       bool
	operand          byte
	pageCrossed      bool

	irqLine  Voltage
	nmiEdge  bool
	halted   bool
	haltedOn byte
}

// New constructs a Chip over bus with default registers and PC loaded from
// the reset vector. Unlike Reset, construction does not charge the 8-cycle
// reset cost.
func New(bus mem.Bus) *Chip {
	c := &Chip{Bus: bus}
	c.Registers.reset()
	c.PC = c.readShort(resetVector)
	return c
}

// Reset re-defaults the registers, reloads PC from the reset vector, and
// charges the 8-cycle reset sequence, matching the real chip's power-on
// behavior when triggered explicitly rather than by construction.
func (c *Chip) Reset() {
	c.Registers.reset()
	c.PC = c.readShort(resetVector)
	c.Cycles = 8
}

// readByte and writeByte route every memory access through the Bus so an
// embedder's memory-mapped I/O observes them.
func (c *Chip) readByte(addr uint16) byte {
	return c.Bus.ReadByte(addr)
}

func (c *Chip) writeByte(addr uint16, value byte) {
	c.Bus.WriteByte(addr, value)
}

func (c *Chip) readShort(addr uint16) uint16 {
	return c.Bus.ReadShort(addr)
}

// LoadExecutable copies bytes into memory at addr and points the reset
// vector at addr, the way a cartridge or boot ROM image would be installed.
func (c *Chip) LoadExecutable(bytes []byte, addr uint16) error {
	if err := c.Bus.Load(bytes, addr); err != nil {
		return err
	}
	c.Bus.WriteShort(resetVector, addr)
	return nil
}

// LoadExecutableFromFile is LoadExecutable sourced from a host file.
func (c *Chip) LoadExecutableFromFile(name string, addr uint16) error {
	if err := c.Bus.LoadFromFile(name, addr); err != nil {
		return err
	}
	c.Bus.WriteShort(resetVector, addr)
	return nil
}

// SetIRQLine sets the level of the maskable interrupt request line. Low is
// the asserted level.
func (c *Chip) SetIRQLine(level Voltage) {
	c.irqLine = level
}

// PulseNMI latches a non-maskable interrupt to be serviced at the next
// instruction boundary.
func (c *Chip) PulseNMI() {
	c.nmiEdge = true
}

// Step executes exactly one instruction: fetch the opcode, resolve its
// operand, advance PC, invoke the handler, accumulate cycles, then poll the
// interrupt lines. It returns non-nil only for a stack over/underflow or a
// KIL/JAM opcode; every other condition (including an undefined opcode,
// handled as a NOP) is internal and silent.
func (c *Chip) Step() error {
	if c.halted {
		return errors.Wrapf(ErrKilEncountered, "opcode 0x%02x", c.haltedOn)
	}

	opcode := c.readByte(c.PC)
	desc := &opcodeTable[opcode]
	c.currentInstruction = desc

	c.resolveOperand(desc.mode)

	c.PC++
	if !desc.controlTransfer {
		c.PC += desc.mode.operandSize()
	}

	if err := desc.handler(c); err != nil {
		c.currentInstruction = nil
		return err
	}

	c.Cycles += uint32(desc.cycles)
	if desc.extraCycleOnPageCross && c.pageCrossed {
		c.Cycles++
	}
	c.pageCrossed = false

	c.currentInstruction = nil

	if c.halted {
		return errors.Wrapf(ErrKilEncountered, "opcode 0x%02x", opcode)
	}

	if c.nmiEdge {
		c.nmiEdge = false
		c.serviceInterrupt(nmiVector, false)
		return nil
	}

	if c.irqLine == Low && !c.P.Get(InterruptDisable) {
		c.serviceInterrupt(irqVector, false)
	}

	return nil
}

// pageCrossed is set by the addressing-mode resolver whenever an indexed
// mode's effective address lands on a different page than its unindexed
// base, so Step can apply the descriptor's extra-cycle-on-page-cross flag.
//
// It is declared as a field rather than a local so resolveOperand (called
// from Step before the handler runs) and the branch handlers (which can
// also cross a page on a taken branch) share one place to report it.

// resolveOperand computes the effective address and/or operand byte for
// the descriptor's addressing mode, ahead of the handler invocation, per
// the fetch-decode-execute contract: handlers only ever read c.operand /
// c.operandAddress(), they never re-derive them from PC.
func (c *Chip) resolveOperand(mode AddressingMode) {
	c.hasAddress = true

	switch mode {
	case Implied:
		c.hasAddress = false

	case Accumulator:
		c.hasAddress = false
		c.operand = c.A

	case Immediate:
		// The operand is the byte itself, not a memory location; there is
		// nothing for operandAddress to return here, same as Implied and
		// Accumulator.
		c.hasAddress = false
		c.effectiveAddress = c.PC + 1
		c.operand = c.readByte(c.effectiveAddress)

	case ZeroPage:
		c.effectiveAddress = uint16(c.readByte(c.PC + 1))
		c.operand = c.readByte(c.effectiveAddress)

	case ZeroPageX:
		c.effectiveAddress = uint16(c.readByte(c.PC+1) + c.X)
		c.operand = c.readByte(c.effectiveAddress)

	case ZeroPageY:
		c.effectiveAddress = uint16(c.readByte(c.PC+1) + c.Y)
		c.operand = c.readByte(c.effectiveAddress)

	case Absolute:
		c.effectiveAddress = c.readShort(c.PC + 1)
		c.operand = c.readByte(c.effectiveAddress)

	case AbsoluteX:
		base := c.readShort(c.PC + 1)
		c.effectiveAddress = base + uint16(c.X)
		c.pageCrossed = (c.effectiveAddress & 0xff00) != (base & 0xff00)
		c.operand = c.readByte(c.effectiveAddress)

	case AbsoluteY:
		base := c.readShort(c.PC + 1)
		c.effectiveAddress = base + uint16(c.Y)
		c.pageCrossed = (c.effectiveAddress & 0xff00) != (base & 0xff00)
		c.operand = c.readByte(c.effectiveAddress)

	case Indirect:
		ptr := c.readShort(c.PC + 1)
		c.effectiveAddress = c.readIndirectWord(ptr)
		c.operand = c.readByte(c.effectiveAddress)

	case IndirectX:
		zp := c.readByte(c.PC+1) + c.X
		lo := c.readByte(uint16(zp))
		hi := c.readByte(uint16(zp + 1))
		c.effectiveAddress = mask.Word(lo, hi)
		c.operand = c.readByte(c.effectiveAddress)

	case IndirectY:
		zp := c.readByte(c.PC + 1)
		lo := c.readByte(uint16(zp))
		hi := c.readByte(uint16(zp + 1))
		base := mask.Word(lo, hi)
		c.effectiveAddress = base + uint16(c.Y)
		c.pageCrossed = (c.effectiveAddress & 0xff00) != (base & 0xff00)
		c.operand = c.readByte(c.effectiveAddress)

	case Relative:
		offset := mask.SignedOffset(c.readByte(c.PC + 1))
		base := c.PC + 1 + 1 // PC_after_operand
		c.effectiveAddress = uint16(int32(base) + int32(offset))
	}
}

// readIndirectWord reads a little-endian word from ptr, reproducing the
// JMP (ind) page-boundary bug: if ptr's low byte is 0xff, the high byte is
// fetched from the start of the same page instead of the next page.
func (c *Chip) readIndirectWord(ptr uint16) uint16 {
	lo := c.readByte(ptr)
	var hiAddr uint16
	if ptr&0x00ff == 0x00ff {
		hiAddr = ptr & 0xff00
	} else {
		hiAddr = ptr + 1
	}
	hi := c.readByte(hiAddr)
	return mask.Word(lo, hi)
}

// operandAddress returns the effective address resolved for the current
// instruction. It panics if called for a mode with no address (Implied,
// Accumulator, Immediate), which would be a handler bug, not a runtime one.
func (c *Chip) operandAddress() uint16 {
	if !c.hasAddress {
		panic(fmt.Sprintf("cpu: opcode 0x%02x has no addressable operand", c.currentInstruction.opcode))
	}
	return c.effectiveAddress
}

// pushByte writes b to the stack page and decrements SP.
func (c *Chip) pushByte(b byte) error {
	if c.SP == 0 {
		return ErrStackOverflow
	}
	c.writeByte(0x0100|uint16(c.SP), b)
	c.SP--
	return nil
}

// pushShort pushes the high byte, then the low byte, so the low byte ends
// up at the lower address of the pair.
func (c *Chip) pushShort(v uint16) error {
	if err := c.pushByte(byte(v >> 8)); err != nil {
		return err
	}
	return c.pushByte(byte(v))
}

// popByte increments SP then reads.
func (c *Chip) popByte() (byte, error) {
	if c.SP == 0xff {
		return 0, ErrStackUnderflow
	}
	c.SP++
	return c.readByte(0x0100 | uint16(c.SP)), nil
}

func (c *Chip) popShort() (uint16, error) {
	lo, err := c.popByte()
	if err != nil {
		return 0, err
	}
	hi, err := c.popByte()
	if err != nil {
		return 0, err
	}
	return mask.Word(lo, hi), nil
}

// serviceInterrupt pushes PC and P, sets I, loads PC from vector, and
// charges 7 cycles. brk is true only for the BRK opcode, which is the only
// source that pushes B set; IRQ and NMI push it clear.
func (c *Chip) serviceInterrupt(vector uint16, brk bool) {
	pushed := c.P
	pushed.Set(Break, brk)
	pushed.Set(Unused, true)

	// errors are ignored here deliberately: an interrupt taken with SP
	// already exhausted is the same fatal condition PHA would report,
	// and Step has no return path for it once the handler has returned.
	_ = c.pushShort(c.PC)
	_ = c.pushByte(byte(pushed))

	c.P.Set(InterruptDisable, true)
	c.PC = c.readShort(vector)
	c.Cycles += 7
}

func (c Chip) String() string {
	return fmt.Sprintf("Chip:\n    cycles = %d\n\n%s", c.Cycles, c.Registers)
}
