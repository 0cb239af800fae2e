package cpu

// One method per mnemonic, grouped the way the reference guide groups them.
// Handlers assume resolveOperand has already populated c.operand (and
// c.effectiveAddress, for modes that have one) and that Step has already
// advanced PC past the whole instruction, except for control-transfer
// handlers (branches, JMP, JSR, RTS, RTI, BRK), which consume their operand
// at the current PC and overwrite it themselves.

func (c *Chip) updateNZ(value byte) {
	c.P.Set(Zero, value == 0)
	c.P.Set(Negative, value&0x80 != 0)
}

// Load/Store

func (c *Chip) iLDA() error {
	c.A = c.operand
	c.updateNZ(c.A)
	return nil
}

func (c *Chip) iLDX() error {
	c.X = c.operand
	c.updateNZ(c.X)
	return nil
}

func (c *Chip) iLDY() error {
	c.Y = c.operand
	c.updateNZ(c.Y)
	return nil
}

func (c *Chip) iSTA() error {
	c.writeByte(c.operandAddress(), c.A)
	return nil
}

func (c *Chip) iSTX() error {
	c.writeByte(c.operandAddress(), c.X)
	return nil
}

func (c *Chip) iSTY() error {
	c.writeByte(c.operandAddress(), c.Y)
	return nil
}

// Register transfers

func (c *Chip) iTAX() error { c.X = c.A; c.updateNZ(c.X); return nil }
func (c *Chip) iTAY() error { c.Y = c.A; c.updateNZ(c.Y); return nil }
func (c *Chip) iTXA() error { c.A = c.X; c.updateNZ(c.A); return nil }
func (c *Chip) iTYA() error { c.A = c.Y; c.updateNZ(c.A); return nil }
func (c *Chip) iTSX() error { c.X = c.SP; c.updateNZ(c.X); return nil }
func (c *Chip) iTXS() error { c.SP = c.X; return nil }

// Stack

func (c *Chip) iPHA() error { return c.pushByte(c.A) }

func (c *Chip) iPLA() error {
	v, err := c.popByte()
	if err != nil {
		return err
	}
	c.A = v
	c.updateNZ(c.A)
	return nil
}

func (c *Chip) iPHP() error {
	status := c.P
	status.Set(Break, true)
	status.Set(Unused, true)
	return c.pushByte(byte(status))
}

func (c *Chip) iPLP() error {
	liveBreak := c.P.Get(Break)
	v, err := c.popByte()
	if err != nil {
		return err
	}
	c.P = StatusFlags(v)
	c.P.Set(Break, liveBreak)
	return nil
}

// Logic

func (c *Chip) iAND() error { c.A &= c.operand; c.updateNZ(c.A); return nil }
func (c *Chip) iORA() error { c.A |= c.operand; c.updateNZ(c.A); return nil }
func (c *Chip) iEOR() error { c.A ^= c.operand; c.updateNZ(c.A); return nil }

func (c *Chip) iBIT() error {
	c.P.Set(Negative, c.operand&0x80 != 0)
	c.P.Set(Overflow, c.operand&0x40 != 0)
	c.P.Set(Zero, c.operand&c.A == 0)
	return nil
}

// Arithmetic

func (c *Chip) iADC() error {
	if c.P.Get(Decimal) {
		c.addBCD(c.operand)
	} else {
		c.addBinary(c.operand)
	}
	c.updateNZ(c.A)
	return nil
}

func (c *Chip) iSBC() error {
	if c.P.Get(Decimal) {
		c.sbcBCD(c.operand)
	} else {
		c.sbcBinary(c.operand)
	}
	c.updateNZ(c.A)
	return nil
}

func (c *Chip) addBinary(value byte) {
	a := c.A
	var carry uint16
	if c.P.Get(Carry) {
		carry = 1
	}
	sum := uint16(a) + uint16(value) + carry
	c.A = byte(sum)
	c.P.Set(Carry, sum > 0xff)
	c.P.Set(Overflow, (a^c.A)&(value^c.A)&0x80 != 0)
}

func (c *Chip) sbcBinary(value byte) {
	c.addBinary(value ^ 0xff)
}

// addBCD adds value to A nibble-wise per the canonical 6502 BCD algorithm.
// V is computed from the binary intermediate, not the decimal-corrected
// sum, matching original_source's add_bcd.
func (c *Chip) addBCD(value byte) {
	vh := uint16(value >> 4)
	vl := uint16(value & 0xf)
	al := uint16(c.A & 0xf)
	ah := uint16(c.A >> 4)

	var carry uint16
	if c.P.Get(Carry) {
		carry = 1
	}

	sumL := al + vl + carry
	sumH := ah + vh
	carryOut := false

	if sumL >= 0xa {
		sumL = (sumL + 6) & 0xf
		sumH++
	}
	if sumH >= 0xa {
		sumH = (sumH + 6) & 0xf
		carryOut = true
	}

	sum := byte(sumH<<4) | byte(sumL)
	sumBinary := byte(uint16(c.A) + uint16(value) + carry)
	didOverflow := (value^sumBinary)&(c.A^sumBinary)&0x80 != 0

	c.A = sum
	c.P.Set(Carry, carryOut)
	c.P.Set(Overflow, didOverflow)
}

// sbcBCD subtracts value from A nibble-wise with a -6 correction on
// underflow, C acting as NOT borrow, mirroring original_source's sbc_bcd.
func (c *Chip) sbcBCD(value byte) {
	vl := value & 0xf
	vh := value >> 4
	al := c.A & 0xf
	ah := c.A >> 4

	var borrow byte = 1
	if c.P.Get(Carry) {
		borrow = 0
	}
	carryOut := true

	sumL := int(al) - int(vl) - int(borrow)
	sumH := int(ah) - int(vh)

	if sumL < 0 {
		sumL -= 6
		sumH--
	}
	if sumH < 0 {
		sumH -= 6
		carryOut = false
	}

	sum := byte(sumH<<4) | byte(sumL)&0xf
	sumBinary := c.A - value - borrow
	didOverflow := (value^sumBinary)&(c.A^sumBinary)&0x80 != 0

	c.A = sum
	c.P.Set(Carry, carryOut)
	c.P.Set(Overflow, didOverflow)
}

func (c *Chip) iINC() error {
	addr := c.operandAddress()
	v := c.readByte(addr) + 1
	c.writeByte(addr, v)
	c.updateNZ(v)
	return nil
}

func (c *Chip) iDEC() error {
	addr := c.operandAddress()
	v := c.readByte(addr) - 1
	c.writeByte(addr, v)
	c.updateNZ(v)
	return nil
}

func (c *Chip) iINX() error { c.X++; c.updateNZ(c.X); return nil }
func (c *Chip) iINY() error { c.Y++; c.updateNZ(c.Y); return nil }
func (c *Chip) iDEX() error { c.X--; c.updateNZ(c.X); return nil }
func (c *Chip) iDEY() error { c.Y--; c.updateNZ(c.Y); return nil }

// Shifts / rotates

// replaceWithCarry applies fn to the current operand (A or memory,
// depending on the addressing mode) and writes the result back to wherever
// it came from, matching original_source's
// replace_accumulator_or_memory_with_carry.
func (c *Chip) replaceWithCarry(fn func(value, carryIn byte) (result byte, carryOut bool)) error {
	var carryIn byte
	if c.P.Get(Carry) {
		carryIn = 1
	}
	result, carryOut := fn(c.operand, carryIn)

	if c.currentInstruction.mode == Accumulator {
		c.A = result
	} else {
		c.writeByte(c.operandAddress(), result)
	}

	c.P.Set(Carry, carryOut)
	c.updateNZ(result)
	return nil
}

func (c *Chip) iASL() error {
	return c.replaceWithCarry(func(v, _ byte) (byte, bool) {
		return v << 1, v&0x80 != 0
	})
}

func (c *Chip) iLSR() error {
	return c.replaceWithCarry(func(v, _ byte) (byte, bool) {
		return v >> 1, v&0x01 != 0
	})
}

func (c *Chip) iROL() error {
	return c.replaceWithCarry(func(v, carryIn byte) (byte, bool) {
		return (v << 1) | carryIn, v&0x80 != 0
	})
}

func (c *Chip) iROR() error {
	return c.replaceWithCarry(func(v, carryIn byte) (byte, bool) {
		return (v >> 1) | (carryIn << 7), v&0x01 != 0
	})
}

// Comparison

func (c *Chip) compare(register byte) {
	diff := register - c.operand
	c.P.Set(Carry, register >= c.operand)
	c.P.Set(Zero, register == c.operand)
	c.P.Set(Negative, diff&0x80 != 0)
}

func (c *Chip) iCMP() error { c.compare(c.A); return nil }
func (c *Chip) iCPX() error { c.compare(c.X); return nil }
func (c *Chip) iCPY() error { c.compare(c.Y); return nil }

// Branches

// branchIf moves PC to the resolved relative target when cond holds,
// otherwise to the byte past the instruction. A taken branch that crosses a
// page boundary owes the same extra cycle AbsoluteX/AbsoluteY/IndirectY do.
func (c *Chip) branchIf(cond bool) error {
	fallthroughPC := c.PC + 1
	if cond {
		c.pageCrossed = (c.effectiveAddress & 0xff00) != (fallthroughPC & 0xff00)
		c.PC = c.effectiveAddress
	} else {
		c.PC = fallthroughPC
	}
	return nil
}

func (c *Chip) iBPL() error { return c.branchIf(!c.P.Get(Negative)) }
func (c *Chip) iBMI() error { return c.branchIf(c.P.Get(Negative)) }
func (c *Chip) iBVC() error { return c.branchIf(!c.P.Get(Overflow)) }
func (c *Chip) iBVS() error { return c.branchIf(c.P.Get(Overflow)) }
func (c *Chip) iBCC() error { return c.branchIf(!c.P.Get(Carry)) }
func (c *Chip) iBCS() error { return c.branchIf(c.P.Get(Carry)) }
func (c *Chip) iBNE() error { return c.branchIf(!c.P.Get(Zero)) }
func (c *Chip) iBEQ() error { return c.branchIf(c.P.Get(Zero)) }

// Jumps and subroutines

func (c *Chip) iJMP() error {
	c.PC = c.effectiveAddress
	return nil
}

func (c *Chip) iJSR() error {
	target := c.effectiveAddress
	returnAddr := c.PC + 1 // address of the last byte of the JSR instruction
	if err := c.pushShort(returnAddr); err != nil {
		return err
	}
	c.PC = target
	return nil
}

func (c *Chip) iRTS() error {
	addr, err := c.popShort()
	if err != nil {
		return err
	}
	c.PC = addr + 1
	return nil
}

// Flag control

func (c *Chip) iCLC() error { c.P.Set(Carry, false); return nil }
func (c *Chip) iSEC() error { c.P.Set(Carry, true); return nil }
func (c *Chip) iCLI() error { c.P.Set(InterruptDisable, false); return nil }
func (c *Chip) iSEI() error { c.P.Set(InterruptDisable, true); return nil }
func (c *Chip) iCLV() error { c.P.Set(Overflow, false); return nil }
func (c *Chip) iCLD() error { c.P.Set(Decimal, false); return nil }
func (c *Chip) iSED() error { c.P.Set(Decimal, true); return nil }

func (c *Chip) iNOP() error { return nil }

// BRK / RTI / KIL

func (c *Chip) iBRK() error {
	c.PC++ // BRK traditionally skips a padding byte before the pushed PC
	c.serviceInterrupt(irqVector, true)
	return nil
}

func (c *Chip) iRTI() error {
	v, err := c.popByte()
	if err != nil {
		return err
	}
	c.P = StatusFlags(v)
	c.P.Set(Break, false)

	addr, err := c.popShort()
	if err != nil {
		return err
	}
	c.PC = addr
	return nil
}

func (c *Chip) iKIL() error {
	c.halted = true
	c.haltedOn = c.currentInstruction.opcode
	return nil
}
