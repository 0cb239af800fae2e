package cpu

// An instructionDescriptor is the immutable record the fetch-decode-execute
// loop looks up by opcode byte: mnemonic, addressing mode, base cycle cost,
// whether an extra cycle is owed on a page cross, whether the instruction
// is a control transfer (and therefore responsible for its own PC
// arithmetic), and the handler itself.
type instructionDescriptor struct {
	opcode                byte
	mnemonic              string
	mode                  AddressingMode
	cycles                byte
	extraCycleOnPageCross bool
	controlTransfer       bool
	handler               func(c *Chip) error
}

// controlTransferMnemonics names every instruction that overwrites PC
// itself rather than letting Step advance it by the addressing mode's
// operand size: JMP, JSR, the eight conditional branches, RTS, RTI, BRK.
var controlTransferMnemonics = map[string]bool{
	"JMP": true, "JSR": true, "RTS": true, "RTI": true, "BRK": true,
	"BPL": true, "BMI": true, "BVC": true, "BVS": true,
	"BCC": true, "BCS": true, "BNE": true, "BEQ": true,
}

// pageCrossMnemonics names the indexed/indirect load-family instructions
// (plus the branches) whose descriptor declares an extra cycle when their
// addressing mode crosses a page boundary. Write-family instructions using
// the same modes (STA, etc.) always pay the full indexed cost regardless of
// crossing and are not listed here.
var pageCrossMnemonics = map[string]bool{
	"LDA": true, "LDX": true, "LDY": true,
	"ADC": true, "SBC": true, "AND": true, "ORA": true, "EOR": true,
	"CMP": true,
	"BPL": true, "BMI": true, "BVC": true, "BVS": true,
	"BCC": true, "BCS": true, "BNE": true, "BEQ": true,
}

// entry builds a descriptor, deriving controlTransfer/extraCycleOnPageCross
// from the mnemonic tables above so each table row only states what varies
// per opcode: the addressing mode and base cycle cost.
func entry(opcode byte, mnemonic string, mode AddressingMode, cycles byte, handler func(*Chip) error) instructionDescriptor {
	return instructionDescriptor{
		opcode:                opcode,
		mnemonic:              mnemonic,
		mode:                  mode,
		cycles:                cycles,
		extraCycleOnPageCross: pageCrossMnemonics[mnemonic],
		controlTransfer:       controlTransferMnemonics[mnemonic],
		handler:               handler,
	}
}

// kilOpcodes lists the byte values that halt the CPU. Every other opcode
// byte not claimed by a legal instruction below is materialized as a
// NOP-shaped descriptor rather than left undefined.
var kilOpcodes = [...]byte{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xb2, 0xd2, 0xf2}

// opcodeTable is the fixed 256-entry instruction descriptor table, indexed
// by opcode byte. Built once at package init from the legal-opcode literal
// table below, then backfilled with KIL and NOP-shaped entries for every
// byte value the 6502 doesn't define.
var opcodeTable [256]instructionDescriptor

func init() {
	for i, e := range legalOpcodes {
		e.opcode = byte(i)
		if e.mnemonic == "" {
			continue
		}
		opcodeTable[i] = e
	}

	for _, b := range kilOpcodes {
		opcodeTable[b] = entry(b, "KIL", Implied, 2, (*Chip).iKIL)
	}

	for i := range opcodeTable {
		if opcodeTable[i].mnemonic == "" {
			opcodeTable[i] = entry(byte(i), "NOP", Implied, 2, (*Chip).iNOP)
		}
	}
}

// legalOpcodes is indexed by opcode byte; entries left as the zero value
// (empty mnemonic) are filled in by init() above, either as KIL or as a
// NOP-shaped placeholder for an undefined opcode.
var legalOpcodes = [256]instructionDescriptor{
	0x69: entry(0x69, "ADC", Immediate, 2, (*Chip).iADC),
	0x65: entry(0x65, "ADC", ZeroPage, 3, (*Chip).iADC),
	0x75: entry(0x75, "ADC", ZeroPageX, 4, (*Chip).iADC),
	0x6D: entry(0x6D, "ADC", Absolute, 4, (*Chip).iADC),
	0x7D: entry(0x7D, "ADC", AbsoluteX, 4, (*Chip).iADC),
	0x79: entry(0x79, "ADC", AbsoluteY, 4, (*Chip).iADC),
	0x61: entry(0x61, "ADC", IndirectX, 6, (*Chip).iADC),
	0x71: entry(0x71, "ADC", IndirectY, 5, (*Chip).iADC),

	0x29: entry(0x29, "AND", Immediate, 2, (*Chip).iAND),
	0x25: entry(0x25, "AND", ZeroPage, 3, (*Chip).iAND),
	0x35: entry(0x35, "AND", ZeroPageX, 4, (*Chip).iAND),
	0x2D: entry(0x2D, "AND", Absolute, 4, (*Chip).iAND),
	0x3D: entry(0x3D, "AND", AbsoluteX, 4, (*Chip).iAND),
	0x39: entry(0x39, "AND", AbsoluteY, 4, (*Chip).iAND),
	0x21: entry(0x21, "AND", IndirectX, 6, (*Chip).iAND),
	0x31: entry(0x31, "AND", IndirectY, 5, (*Chip).iAND),

	0x0A: entry(0x0A, "ASL", Accumulator, 2, (*Chip).iASL),
	0x06: entry(0x06, "ASL", ZeroPage, 5, (*Chip).iASL),
	0x16: entry(0x16, "ASL", ZeroPageX, 6, (*Chip).iASL),
	0x0E: entry(0x0E, "ASL", Absolute, 6, (*Chip).iASL),
	0x1E: entry(0x1E, "ASL", AbsoluteX, 7, (*Chip).iASL),

	0x24: entry(0x24, "BIT", ZeroPage, 3, (*Chip).iBIT),
	0x2C: entry(0x2C, "BIT", Absolute, 4, (*Chip).iBIT),

	0x10: entry(0x10, "BPL", Relative, 2, (*Chip).iBPL),
	0x30: entry(0x30, "BMI", Relative, 2, (*Chip).iBMI),
	0x50: entry(0x50, "BVC", Relative, 2, (*Chip).iBVC),
	0x70: entry(0x70, "BVS", Relative, 2, (*Chip).iBVS),
	0x90: entry(0x90, "BCC", Relative, 2, (*Chip).iBCC),
	0xB0: entry(0xB0, "BCS", Relative, 2, (*Chip).iBCS),
	0xD0: entry(0xD0, "BNE", Relative, 2, (*Chip).iBNE),
	0xF0: entry(0xF0, "BEQ", Relative, 2, (*Chip).iBEQ),

	// BRK's 7-cycle cost is charged inside serviceInterrupt, not here, since
	// the handler always calls it; giving the descriptor its own cycle cost
	// too would double-charge every BRK.
	0x00: entry(0x00, "BRK", Implied, 0, (*Chip).iBRK),

	0x18: entry(0x18, "CLC", Implied, 2, (*Chip).iCLC),
	0x38: entry(0x38, "SEC", Implied, 2, (*Chip).iSEC),
	0x58: entry(0x58, "CLI", Implied, 2, (*Chip).iCLI),
	0x78: entry(0x78, "SEI", Implied, 2, (*Chip).iSEI),
	0xB8: entry(0xB8, "CLV", Implied, 2, (*Chip).iCLV),
	0xD8: entry(0xD8, "CLD", Implied, 2, (*Chip).iCLD),
	0xF8: entry(0xF8, "SED", Implied, 2, (*Chip).iSED),

	0xC9: entry(0xC9, "CMP", Immediate, 2, (*Chip).iCMP),
	0xC5: entry(0xC5, "CMP", ZeroPage, 3, (*Chip).iCMP),
	0xD5: entry(0xD5, "CMP", ZeroPageX, 4, (*Chip).iCMP),
	0xCD: entry(0xCD, "CMP", Absolute, 4, (*Chip).iCMP),
	0xDD: entry(0xDD, "CMP", AbsoluteX, 4, (*Chip).iCMP),
	0xD9: entry(0xD9, "CMP", AbsoluteY, 4, (*Chip).iCMP),
	0xC1: entry(0xC1, "CMP", IndirectX, 6, (*Chip).iCMP),
	0xD1: entry(0xD1, "CMP", IndirectY, 5, (*Chip).iCMP),

	0xE0: entry(0xE0, "CPX", Immediate, 2, (*Chip).iCPX),
	0xE4: entry(0xE4, "CPX", ZeroPage, 3, (*Chip).iCPX),
	0xEC: entry(0xEC, "CPX", Absolute, 4, (*Chip).iCPX),

	0xC0: entry(0xC0, "CPY", Immediate, 2, (*Chip).iCPY),
	0xC4: entry(0xC4, "CPY", ZeroPage, 3, (*Chip).iCPY),
	0xCC: entry(0xCC, "CPY", Absolute, 4, (*Chip).iCPY),

	0xC6: entry(0xC6, "DEC", ZeroPage, 5, (*Chip).iDEC),
	0xD6: entry(0xD6, "DEC", ZeroPageX, 6, (*Chip).iDEC),
	0xCE: entry(0xCE, "DEC", Absolute, 6, (*Chip).iDEC),
	0xDE: entry(0xDE, "DEC", AbsoluteX, 7, (*Chip).iDEC),

	0xCA: entry(0xCA, "DEX", Implied, 2, (*Chip).iDEX),
	0x88: entry(0x88, "DEY", Implied, 2, (*Chip).iDEY),

	0x49: entry(0x49, "EOR", Immediate, 2, (*Chip).iEOR),
	0x45: entry(0x45, "EOR", ZeroPage, 3, (*Chip).iEOR),
	0x55: entry(0x55, "EOR", ZeroPageX, 4, (*Chip).iEOR),
	0x4D: entry(0x4D, "EOR", Absolute, 4, (*Chip).iEOR),
	0x5D: entry(0x5D, "EOR", AbsoluteX, 4, (*Chip).iEOR),
	0x59: entry(0x59, "EOR", AbsoluteY, 4, (*Chip).iEOR),
	0x41: entry(0x41, "EOR", IndirectX, 6, (*Chip).iEOR),
	0x51: entry(0x51, "EOR", IndirectY, 5, (*Chip).iEOR),

	0xE6: entry(0xE6, "INC", ZeroPage, 5, (*Chip).iINC),
	0xF6: entry(0xF6, "INC", ZeroPageX, 6, (*Chip).iINC),
	0xEE: entry(0xEE, "INC", Absolute, 6, (*Chip).iINC),
	0xFE: entry(0xFE, "INC", AbsoluteX, 7, (*Chip).iINC),

	0xE8: entry(0xE8, "INX", Implied, 2, (*Chip).iINX),
	0xC8: entry(0xC8, "INY", Implied, 2, (*Chip).iINY),

	0x4C: entry(0x4C, "JMP", Absolute, 3, (*Chip).iJMP),
	0x6C: entry(0x6C, "JMP", Indirect, 5, (*Chip).iJMP),

	0x20: entry(0x20, "JSR", Absolute, 6, (*Chip).iJSR),

	0xA9: entry(0xA9, "LDA", Immediate, 2, (*Chip).iLDA),
	0xA5: entry(0xA5, "LDA", ZeroPage, 3, (*Chip).iLDA),
	0xB5: entry(0xB5, "LDA", ZeroPageX, 4, (*Chip).iLDA),
	0xAD: entry(0xAD, "LDA", Absolute, 4, (*Chip).iLDA),
	0xBD: entry(0xBD, "LDA", AbsoluteX, 4, (*Chip).iLDA),
	0xB9: entry(0xB9, "LDA", AbsoluteY, 4, (*Chip).iLDA),
	0xA1: entry(0xA1, "LDA", IndirectX, 6, (*Chip).iLDA),
	0xB1: entry(0xB1, "LDA", IndirectY, 5, (*Chip).iLDA),

	0xA2: entry(0xA2, "LDX", Immediate, 2, (*Chip).iLDX),
	0xA6: entry(0xA6, "LDX", ZeroPage, 3, (*Chip).iLDX),
	0xB6: entry(0xB6, "LDX", ZeroPageY, 4, (*Chip).iLDX),
	0xAE: entry(0xAE, "LDX", Absolute, 4, (*Chip).iLDX),
	0xBE: entry(0xBE, "LDX", AbsoluteY, 4, (*Chip).iLDX),

	0xA0: entry(0xA0, "LDY", Immediate, 2, (*Chip).iLDY),
	0xA4: entry(0xA4, "LDY", ZeroPage, 3, (*Chip).iLDY),
	0xB4: entry(0xB4, "LDY", ZeroPageX, 4, (*Chip).iLDY),
	0xAC: entry(0xAC, "LDY", Absolute, 4, (*Chip).iLDY),
	0xBC: entry(0xBC, "LDY", AbsoluteX, 4, (*Chip).iLDY),

	0x4A: entry(0x4A, "LSR", Accumulator, 2, (*Chip).iLSR),
	0x46: entry(0x46, "LSR", ZeroPage, 5, (*Chip).iLSR),
	0x56: entry(0x56, "LSR", ZeroPageX, 6, (*Chip).iLSR),
	0x4E: entry(0x4E, "LSR", Absolute, 6, (*Chip).iLSR),
	0x5E: entry(0x5E, "LSR", AbsoluteX, 7, (*Chip).iLSR),

	0xEA: entry(0xEA, "NOP", Implied, 2, (*Chip).iNOP),

	0x09: entry(0x09, "ORA", Immediate, 2, (*Chip).iORA),
	0x05: entry(0x05, "ORA", ZeroPage, 3, (*Chip).iORA),
	0x15: entry(0x15, "ORA", ZeroPageX, 4, (*Chip).iORA),
	0x0D: entry(0x0D, "ORA", Absolute, 4, (*Chip).iORA),
	0x1D: entry(0x1D, "ORA", AbsoluteX, 4, (*Chip).iORA),
	0x19: entry(0x19, "ORA", AbsoluteY, 4, (*Chip).iORA),
	0x01: entry(0x01, "ORA", IndirectX, 6, (*Chip).iORA),
	0x11: entry(0x11, "ORA", IndirectY, 5, (*Chip).iORA),

	0x48: entry(0x48, "PHA", Implied, 3, (*Chip).iPHA),
	0x68: entry(0x68, "PLA", Implied, 4, (*Chip).iPLA),
	0x08: entry(0x08, "PHP", Implied, 3, (*Chip).iPHP),
	0x28: entry(0x28, "PLP", Implied, 4, (*Chip).iPLP),

	0x2A: entry(0x2A, "ROL", Accumulator, 2, (*Chip).iROL),
	0x26: entry(0x26, "ROL", ZeroPage, 5, (*Chip).iROL),
	0x36: entry(0x36, "ROL", ZeroPageX, 6, (*Chip).iROL),
	0x2E: entry(0x2E, "ROL", Absolute, 6, (*Chip).iROL),
	0x3E: entry(0x3E, "ROL", AbsoluteX, 7, (*Chip).iROL),

	0x6A: entry(0x6A, "ROR", Accumulator, 2, (*Chip).iROR),
	0x66: entry(0x66, "ROR", ZeroPage, 5, (*Chip).iROR),
	0x76: entry(0x76, "ROR", ZeroPageX, 6, (*Chip).iROR),
	0x6E: entry(0x6E, "ROR", Absolute, 6, (*Chip).iROR),
	0x7E: entry(0x7E, "ROR", AbsoluteX, 7, (*Chip).iROR),

	0x40: entry(0x40, "RTI", Implied, 6, (*Chip).iRTI),
	0x60: entry(0x60, "RTS", Implied, 6, (*Chip).iRTS),

	0xE9: entry(0xE9, "SBC", Immediate, 2, (*Chip).iSBC),
	0xE5: entry(0xE5, "SBC", ZeroPage, 3, (*Chip).iSBC),
	0xF5: entry(0xF5, "SBC", ZeroPageX, 4, (*Chip).iSBC),
	0xED: entry(0xED, "SBC", Absolute, 4, (*Chip).iSBC),
	0xFD: entry(0xFD, "SBC", AbsoluteX, 4, (*Chip).iSBC),
	0xF9: entry(0xF9, "SBC", AbsoluteY, 4, (*Chip).iSBC),
	0xE1: entry(0xE1, "SBC", IndirectX, 6, (*Chip).iSBC),
	0xF1: entry(0xF1, "SBC", IndirectY, 5, (*Chip).iSBC),

	0x85: entry(0x85, "STA", ZeroPage, 3, (*Chip).iSTA),
	0x95: entry(0x95, "STA", ZeroPageX, 4, (*Chip).iSTA),
	0x8D: entry(0x8D, "STA", Absolute, 4, (*Chip).iSTA),
	0x9D: entry(0x9D, "STA", AbsoluteX, 5, (*Chip).iSTA),
	0x99: entry(0x99, "STA", AbsoluteY, 5, (*Chip).iSTA),
	0x81: entry(0x81, "STA", IndirectX, 6, (*Chip).iSTA),
	0x91: entry(0x91, "STA", IndirectY, 6, (*Chip).iSTA),

	0x86: entry(0x86, "STX", ZeroPage, 3, (*Chip).iSTX),
	0x96: entry(0x96, "STX", ZeroPageY, 4, (*Chip).iSTX),
	0x8E: entry(0x8E, "STX", Absolute, 4, (*Chip).iSTX),

	0x84: entry(0x84, "STY", ZeroPage, 3, (*Chip).iSTY),
	0x94: entry(0x94, "STY", ZeroPageX, 4, (*Chip).iSTY),
	0x8C: entry(0x8C, "STY", Absolute, 4, (*Chip).iSTY),

	0xAA: entry(0xAA, "TAX", Implied, 2, (*Chip).iTAX),
	0x8A: entry(0x8A, "TXA", Implied, 2, (*Chip).iTXA),
	0xA8: entry(0xA8, "TAY", Implied, 2, (*Chip).iTAY),
	0x98: entry(0x98, "TYA", Implied, 2, (*Chip).iTYA),
	0xBA: entry(0xBA, "TSX", Implied, 2, (*Chip).iTSX),
	0x9A: entry(0x9A, "TXS", Implied, 2, (*Chip).iTXS),
}
