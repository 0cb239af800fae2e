package cpu

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"

	"github.com/hexile/gone6502/mem"
)

func newTestChip() (*Chip, *mem.Ram) {
	ram := mem.NewRam()
	return New(ram), ram
}

func load(t *testing.T, c *Chip, ram *mem.Ram, addr uint16, program ...byte) {
	t.Helper()
	assert.NoError(t, c.LoadExecutable(program, addr))
	c.PC = addr
}

func TestLoadExecutableSetsResetVectorAndPC(t *testing.T) {
	c, ram := newTestChip()
	program := []byte{0xa9, 0x2a, 0x00}
	assert.NoError(t, c.LoadExecutable(program, 0x8000))

	assert.Equal(t, byte(0xa9), ram.ReadByte(0x8000))
	assert.Equal(t, byte(0x2a), ram.ReadByte(0x8001))
	assert.Equal(t, uint16(0x8000), ram.ReadShort(resetVector))

	c.Reset()
	assert.Equal(t, uint16(0x8000), c.PC)
	assert.Equal(t, uint32(8), c.Cycles)
}

func TestLDAImmediateSetsZeroAndNegative(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x0600, 0xa9, 0x00)
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0), c.A)
	assert.True(t, c.P.Get(Zero))
	assert.False(t, c.P.Get(Negative))

	load(t, c, ram, 0x0600, 0xa9, 0x80)
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x80), c.A)
	assert.False(t, c.P.Get(Zero))
	assert.True(t, c.P.Get(Negative))
}

func TestLoadAndStoreRoundTrip(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x0600,
		0xa9, 0x2a, // LDA #$2a
		0x8d, 0x00, 0x02, // STA $0200
	)
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())
	assert.Equal(t, byte(0x2a), ram.ReadByte(0x0200))
	assert.Equal(t, uint16(0x0605), c.PC)
}

func TestADCBinaryOverflow(t *testing.T) {
	c, _ := newTestChip()
	c.A = 0x50
	c.P.Set(Carry, false)
	c.operand = 0x50
	assert.NoError(t, c.iADC())
	assert.Equal(t, byte(0xa0), c.A)
	assert.True(t, c.P.Get(Overflow), "positive + positive = negative must set V")
	assert.True(t, c.P.Get(Negative))
	assert.False(t, c.P.Get(Carry))
}

func TestADCDecimalMode(t *testing.T) {
	c, _ := newTestChip()
	c.P.Set(Decimal, true)
	c.A = 0x58        // 58 BCD
	c.operand = 0x46  // 46 BCD
	c.P.Set(Carry, false)
	assert.NoError(t, c.iADC())
	assert.Equal(t, byte(0x04), c.A, "58 + 46 = 104, wraps to 04 with carry out")
	assert.True(t, c.P.Get(Carry))
}

func TestSBCBinaryBorrow(t *testing.T) {
	c, _ := newTestChip()
	c.A = 0x00
	c.operand = 0x01
	c.P.Set(Carry, true) // carry set means no borrow going in
	assert.NoError(t, c.iSBC())
	assert.Equal(t, byte(0xff), c.A)
	assert.False(t, c.P.Get(Carry), "result underflowed, so carry (not-borrow) clears")
}

func TestBranchNotTakenFallsThrough(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x0600, 0xf0, 0x10) // BEQ +16, Z clear so the branch is not taken
	c.P.Set(Zero, false)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x0602), c.PC)
}

func TestBranchTakenCrossesPage(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x06f0, 0xf0, 0x20) // BEQ +32 from 0x06f2 lands on 0x0712
	c.P.Set(Zero, true)
	c.Cycles = 0
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x0712), c.PC)
	assert.Equal(t, uint32(3), c.Cycles, "taken branch across a page boundary costs one extra cycle")
}

func TestJSRAndRTSRestorePC(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x0600,
		0x20, 0x00, 0x08, // JSR $0800
	)
	ram.WriteByte(0x0800, 0x60) // RTS
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x0800), c.PC)
	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x0603), c.PC, "RTS returns to the byte after the original JSR")
}

func TestPHAPLARoundTrip(t *testing.T) {
	c, _ := newTestChip()
	c.A = 0x37
	before := c.SP
	assert.NoError(t, c.iPHA())
	assert.Equal(t, before-1, c.SP)
	c.A = 0
	assert.NoError(t, c.iPLA())
	assert.Equal(t, byte(0x37), c.A)
	assert.Equal(t, before, c.SP)
}

func TestPHPPLPRoundTripPreservesLiveBreakBit(t *testing.T) {
	c, _ := newTestChip()
	c.P.Set(Carry, true)
	c.P.Set(Negative, true)
	c.P.Set(Break, false)
	assert.NoError(t, c.iPHP())

	pushedByte := c.readByte(0x0100 | uint16(c.SP+1))
	assert.True(t, StatusFlags(pushedByte).Get(Break), "PHP always pushes B set")

	c.P.Set(Carry, false)
	c.P.Set(Negative, false)
	assert.NoError(t, c.iPLP())
	assert.True(t, c.P.Get(Carry))
	assert.True(t, c.P.Get(Negative))
	assert.False(t, c.P.Get(Break), "PLP does not let the pulled byte's B bit overwrite live state")
}

func TestCompareLaws(t *testing.T) {
	c, _ := newTestChip()
	c.A = 0x40
	c.operand = 0x40
	c.compare(c.A)
	assert.True(t, c.P.Get(Zero))
	assert.True(t, c.P.Get(Carry))

	c.A = 0x10
	c.operand = 0x20
	c.compare(c.A)
	assert.False(t, c.P.Get(Carry), "register < operand clears carry")
	assert.False(t, c.P.Get(Zero))
}

func TestStackOverflowReturnsError(t *testing.T) {
	c, _ := newTestChip()
	c.SP = 0x00
	err := c.pushByte(0x42)
	assert.ErrorIs(t, err, ErrStackOverflow)
}

func TestStackUnderflowReturnsError(t *testing.T) {
	c, _ := newTestChip()
	c.SP = 0xff
	_, err := c.popByte()
	assert.ErrorIs(t, err, ErrStackUnderflow)
}

func TestNMIServicing(t *testing.T) {
	c, ram := newTestChip()
	ram.WriteShort(nmiVector, 0x9000)
	load(t, c, ram, 0x0600, 0xea) // NOP
	c.P.Set(InterruptDisable, false)
	c.PulseNMI()

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x9000), c.PC)

	poppedP, err := c.popByte()
	assert.NoError(t, err)
	assert.False(t, StatusFlags(poppedP).Get(Break), "NMI pushes B clear")

	returnAddr, err := c.popShort()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0601), returnAddr)
}

func TestBRKSetsBreakAndJumpsToIRQVector(t *testing.T) {
	c, ram := newTestChip()
	ram.WriteShort(irqVector, 0xa000)
	load(t, c, ram, 0x0600, 0x00, 0xea) // BRK, padding byte
	c.Cycles = 0

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0xa000), c.PC)
	assert.True(t, c.P.Get(InterruptDisable))
	assert.Equal(t, uint32(7), c.Cycles, "BRK costs 7 cycles total, not 14")

	poppedP, err := c.popByte()
	assert.NoError(t, err)
	assert.True(t, StatusFlags(poppedP).Get(Break), "BRK pushes B set")

	returnAddr, err := c.popShort()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0602), returnAddr, "BRK's pushed PC skips the padding byte")
}

func TestKILHaltsAndRepeatsError(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x0600, 0x02) // KIL
	err := c.Step()
	assert.ErrorIs(t, err, ErrKilEncountered)

	pc := c.PC
	a, x, y := c.A, c.X, c.Y
	err = c.Step()
	assert.ErrorIs(t, err, ErrKilEncountered)
	assert.Equal(t, pc, c.PC, "a halted CPU does not mutate state on further Step calls")
	assert.Equal(t, a, c.A)
	assert.Equal(t, x, c.X)
	assert.Equal(t, y, c.Y)
}

func TestJMPIndirectPageBoundaryWrap(t *testing.T) {
	c, ram := newTestChip()
	ram.WriteByte(0x02ff, 0x00)
	ram.WriteByte(0x0200, 0x90) // should be fetched instead of 0x0300
	ram.WriteByte(0x0300, 0xff)
	load(t, c, ram, 0x0600, 0x6c, 0xff, 0x02) // JMP ($02ff)

	assert.NoError(t, c.Step())
	assert.Equal(t, uint16(0x9000), c.PC, "high byte wraps to the start of the same page")
}

// TestMultiplyByRepeatedAddition runs a small hand-assembled program that
// multiplies 10 by 3 via repeated addition, driven entirely through Step.
func TestMultiplyByRepeatedAddition(t *testing.T) {
	c, ram := newTestChip()
	program := []byte{
		0xa2, 0x0a, // LDX #$0a
		0x8e, 0x00, 0x00, // STX $0000
		0xa2, 0x03, // LDX #$03
		0x8e, 0x01, 0x00, // STX $0001
		0xac, 0x00, 0x00, // LDY $0000
		0xa9, 0x00, // LDA #$00
		0x18,             // CLC
		0x6d, 0x01, 0x00, // loop: ADC $0001
		0x88,       // DEY
		0xd0, 0xfa, // BNE loop
		0x8d, 0x02, 0x00, // STA $0002
		0xea, 0xea, 0xea, // NOP NOP NOP
	}
	load(t, c, ram, 0x8000, program...)

	// Run until PC reaches the trailing NOPs, i.e. until STA has executed.
	for i := 0; i < 100 && c.PC != 0x8019; i++ {
		assert.NoError(t, c.Step())
	}

	assert.Equal(t, byte(0x1e), c.A, "10 * 3 = 30")
	assert.Equal(t, byte(3), c.X)
	assert.Equal(t, byte(0), c.Y)
	assert.Equal(t, byte(0x0a), ram.ReadByte(0x0000))
	assert.Equal(t, byte(0x03), ram.ReadByte(0x0001))
	assert.Equal(t, byte(0x1e), ram.ReadByte(0x0002))
}

func TestRegisterStateDiff(t *testing.T) {
	c, ram := newTestChip()
	load(t, c, ram, 0x0600, 0xa9, 0x10, 0xaa) // LDA #$10, TAX
	assert.NoError(t, c.Step())
	assert.NoError(t, c.Step())

	want := Registers{A: 0x10, X: 0x10, Y: 0, PC: 0x0603, SP: 0xff, P: defaultStatusFlags}
	if diff := deep.Equal(want, c.Registers); diff != nil {
		t.Errorf("register state diverged: %v", diff)
	}
}
