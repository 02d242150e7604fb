package main

// Z80Bus is the memory/port seam the opcode engine executes against.
// The bus is borrowed exclusively for the duration of one instruction;
// it never reaches back into the engine.
type Z80Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	In(port uint16) byte
	Out(port uint16, value byte)
}

// CPU is the Z80 opcode engine: the register file plus the per-opcode
// arithmetic/flag semantics. It knows nothing about interrupts, the
// ULA, or frame pacing — those belong to the step driver and façade
// that drive it one instruction at a time via Execute.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	A2, F2 byte
	B2, C2 byte
	D2, E2 byte
	H2, L2 byte

	IX, IY uint16
	SP, PC uint16

	I, R byte
	IM   byte
	WZ   uint16

	IFF1, IFF2 bool
	Halted     bool

	bus Z80Bus

	baseOps [256]func(*CPU)
	cbOps   [256]func(*CPU)
	ddOps   [256]func(*CPU)
	fdOps   [256]func(*CPU)
	edOps   [256]func(*CPU)
	idxOps  [256]func(*CPU)

	prefixMode byte

	cycles int
}

const (
	z80FlagS  = 0x80
	z80FlagZ  = 0x40
	z80FlagY  = 0x20
	z80FlagH  = 0x10
	z80FlagX  = 0x08
	z80FlagPV = 0x04
	z80FlagN  = 0x02
	z80FlagC  = 0x01
)

const (
	z80PrefixNone byte = iota
	z80PrefixDD
	z80PrefixFD
)

func NewCPU(bus Z80Bus) *CPU {
	c := &CPU{bus: bus}
	c.initBaseOps()
	c.initCBOps()
	c.initDDOps()
	c.initFDOps()
	c.initEDOps()
	c.Reset()
	return c
}

// Reset matches power-on register state: PC=0, SP=0xFFFF, interrupts
// disarmed, IM0. The façade's reset_machine/power_reset_machine layer
// on top of this additionally manages RAM and run-state.
func (c *CPU) Reset() {
	c.A, c.F = 0, 0
	c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0
	c.A2, c.F2 = 0, 0
	c.B2, c.C2, c.D2, c.E2, c.H2, c.L2 = 0, 0, 0, 0, 0, 0
	c.IX, c.IY = 0, 0
	c.SP = 0xFFFF
	c.PC = 0
	c.I, c.R, c.IM = 0, 0, 0
	c.WZ = 0
	c.IFF1, c.IFF2 = false, false
	c.Halted = false
	c.prefixMode = z80PrefixNone
}

func (c *CPU) AF() uint16  { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) BC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) DE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) HL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) AF2() uint16 { return uint16(c.A2)<<8 | uint16(c.F2) }
func (c *CPU) BC2() uint16 { return uint16(c.B2)<<8 | uint16(c.C2) }
func (c *CPU) DE2() uint16 { return uint16(c.D2)<<8 | uint16(c.E2) }
func (c *CPU) HL2() uint16 { return uint16(c.H2)<<8 | uint16(c.L2) }

func (c *CPU) SetAF(v uint16)  { c.A, c.F = byte(v>>8), byte(v) }
func (c *CPU) SetBC(v uint16)  { c.B, c.C = byte(v>>8), byte(v) }
func (c *CPU) SetDE(v uint16)  { c.D, c.E = byte(v>>8), byte(v) }
func (c *CPU) SetHL(v uint16)  { c.H, c.L = byte(v>>8), byte(v) }
func (c *CPU) SetAF2(v uint16) { c.A2, c.F2 = byte(v>>8), byte(v) }
func (c *CPU) SetBC2(v uint16) { c.B2, c.C2 = byte(v>>8), byte(v) }
func (c *CPU) SetDE2(v uint16) { c.D2, c.E2 = byte(v>>8), byte(v) }
func (c *CPU) SetHL2(v uint16) { c.H2, c.L2 = byte(v>>8), byte(v) }

func (c *CPU) Flag(mask byte) bool { return c.F&mask != 0 }

func (c *CPU) ExAF() { c.A, c.A2 = c.A2, c.A; c.F, c.F2 = c.F2, c.F }

func (c *CPU) Exx() {
	c.B, c.B2 = c.B2, c.B
	c.C, c.C2 = c.C2, c.C
	c.D, c.D2 = c.D2, c.D
	c.E, c.E2 = c.E2, c.E
	c.H, c.H2 = c.H2, c.H
	c.L, c.L2 = c.L2, c.L
}

// Execute decodes and runs exactly one instruction starting at PC,
// honoring the DD/FD/CB/ED prefix chain, and returns the T-states
// consumed. HALT, interrupt injection, and the ULA port intercepts
// are the step driver's responsibility, not the engine's.
func (c *CPU) Execute() int {
	c.cycles = 0
	opcode := c.fetchOpcode()
	c.baseOps[opcode](c)
	return c.cycles
}

func (c *CPU) incrementR() {
	c.R = (c.R & 0x80) | ((c.R + 1) & 0x7F)
}

func (c *CPU) fetchOpcode() byte {
	op := c.read(c.PC)
	c.PC++
	c.incrementR()
	return op
}

func (c *CPU) fetchByte() byte {
	v := c.read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) read(addr uint16) byte          { return c.bus.Read(addr) }
func (c *CPU) write(addr uint16, value byte)  { c.bus.Write(addr, value) }
func (c *CPU) in(port uint16) byte            { return c.bus.In(port) }
func (c *CPU) out(port uint16, value byte)    { c.bus.Out(port, value) }
func (c *CPU) tick(cycles int)                { c.cycles += cycles }

func (c *CPU) pushWord(value uint16) {
	c.SP--
	c.write(c.SP, byte(value>>8))
	c.SP--
	c.write(c.SP, byte(value))
}

func (c *CPU) popWord() uint16 {
	lo := c.read(c.SP)
	c.SP++
	hi := c.read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readReg8(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.readIndexHigh()
	case 5:
		return c.readIndexLow()
	case 6:
		return c.read(c.HL())
	case 7:
		return c.A
	default:
		return 0
	}
}

func (c *CPU) writeReg8(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		c.writeIndexHigh(value)
	case 5:
		c.writeIndexLow(value)
	case 6:
		c.write(c.HL(), value)
	case 7:
		c.A = value
	}
}

func (c *CPU) readReg8Plain(code byte) byte {
	switch code {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read(c.HL())
	case 7:
		return c.A
	default:
		return 0
	}
}

func (c *CPU) writeReg8Plain(code byte, value byte) {
	switch code {
	case 0:
		c.B = value
	case 1:
		c.C = value
	case 2:
		c.D = value
	case 3:
		c.E = value
	case 4:
		c.H = value
	case 5:
		c.L = value
	case 6:
		c.write(c.HL(), value)
	case 7:
		c.A = value
	}
}

func (c *CPU) readIndexHigh() byte {
	switch c.prefixMode {
	case z80PrefixDD:
		return byte(c.IX >> 8)
	case z80PrefixFD:
		return byte(c.IY >> 8)
	default:
		return c.H
	}
}

func (c *CPU) readIndexLow() byte {
	switch c.prefixMode {
	case z80PrefixDD:
		return byte(c.IX)
	case z80PrefixFD:
		return byte(c.IY)
	default:
		return c.L
	}
}

func (c *CPU) writeIndexHigh(value byte) {
	switch c.prefixMode {
	case z80PrefixDD:
		c.IX = (c.IX & 0x00FF) | uint16(value)<<8
	case z80PrefixFD:
		c.IY = (c.IY & 0x00FF) | uint16(value)<<8
	default:
		c.H = value
	}
}

func (c *CPU) writeIndexLow(value byte) {
	switch c.prefixMode {
	case z80PrefixDD:
		c.IX = (c.IX & 0xFF00) | uint16(value)
	case z80PrefixFD:
		c.IY = (c.IY & 0xFF00) | uint16(value)
	default:
		c.L = value
	}
}

func (c *CPU) initBaseOps() {
	for i := range c.baseOps {
		c.baseOps[i] = (*CPU).opUnimplemented
	}

	c.baseOps[0x00] = (*CPU).opNOP
	c.baseOps[0x76] = (*CPU).opHALT

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		dest := byte((opcode >> 3) & 0x07)
		src := byte(opcode & 0x07)
		c.baseOps[opcode] = func(cpu *CPU) { cpu.opLDRegReg(dest, src) }
	}

	ldRegImmOpcodes := map[byte]byte{0x06: 0, 0x0E: 1, 0x16: 2, 0x1E: 3, 0x26: 4, 0x2E: 5, 0x36: 6, 0x3E: 7}
	for opcode, reg := range ldRegImmOpcodes {
		dest := reg
		c.baseOps[opcode] = func(cpu *CPU) { cpu.opLDRegImm(dest) }
	}

	aluBases := map[byte]aluOp{0x80: aluAdd, 0x88: aluAdc, 0x90: aluSub, 0x98: aluSbc, 0xA0: aluAnd, 0xA8: aluXor, 0xB0: aluOr, 0xB8: aluCp}
	for base, op := range aluBases {
		for r := byte(0); r <= 7; r++ {
			opcode := base + r
			src := r
			alu := op
			c.baseOps[opcode] = func(cpu *CPU) { cpu.opALUReg(alu, src) }
		}
	}

	c.baseOps[0xC6] = (*CPU).opADDImm
	c.baseOps[0xCE] = (*CPU).opADCImm
	c.baseOps[0xD6] = (*CPU).opSUBImm
	c.baseOps[0xDE] = (*CPU).opSBCImm
	c.baseOps[0xE6] = (*CPU).opANDImm
	c.baseOps[0xEE] = (*CPU).opXORImm
	c.baseOps[0xF6] = (*CPU).opORImm
	c.baseOps[0xFE] = (*CPU).opCPImm

	c.baseOps[0x27] = (*CPU).opDAA
	c.baseOps[0x2F] = (*CPU).opCPL
	c.baseOps[0x37] = (*CPU).opSCF
	c.baseOps[0x3F] = (*CPU).opCCF

	c.baseOps[0x01] = (*CPU).opLDBCNN
	c.baseOps[0x11] = (*CPU).opLDDENN
	c.baseOps[0x21] = (*CPU).opLDHLImm
	c.baseOps[0x31] = (*CPU).opLDSPNN
	c.baseOps[0x09] = (*CPU).opADDHLBC
	c.baseOps[0x19] = (*CPU).opADDHLDE
	c.baseOps[0x29] = (*CPU).opADDHLHL
	c.baseOps[0x39] = (*CPU).opADDHLSP
	c.baseOps[0x03] = (*CPU).opINCBC
	c.baseOps[0x13] = (*CPU).opINCDE
	c.baseOps[0x23] = (*CPU).opINCHL
	c.baseOps[0x33] = (*CPU).opINCSP
	c.baseOps[0x0B] = (*CPU).opDECBC
	c.baseOps[0x1B] = (*CPU).opDECDE
	c.baseOps[0x2B] = (*CPU).opDECHL
	c.baseOps[0x3B] = (*CPU).opDECSP
	c.baseOps[0xC5] = (*CPU).opPUSHBC
	c.baseOps[0xD5] = (*CPU).opPUSHDE
	c.baseOps[0xE5] = (*CPU).opPUSHHL
	c.baseOps[0xF5] = (*CPU).opPUSHAF
	c.baseOps[0xC1] = (*CPU).opPOPBC
	c.baseOps[0xD1] = (*CPU).opPOPDE
	c.baseOps[0xE1] = (*CPU).opPOPHL
	c.baseOps[0xF1] = (*CPU).opPOPAF
	c.baseOps[0xC3] = (*CPU).opJPNN
	c.baseOps[0x18] = (*CPU).opJR
	c.baseOps[0x10] = (*CPU).opDJNZ
	c.baseOps[0xCD] = (*CPU).opCALLNN
	c.baseOps[0xC9] = (*CPU).opRET
	c.baseOps[0xE3] = (*CPU).opEXSPHL
	c.baseOps[0x08] = (*CPU).opEXAF
	c.baseOps[0xEB] = (*CPU).opEXDEHL
	c.baseOps[0xD9] = (*CPU).opEXX
	c.baseOps[0xE9] = (*CPU).opJPHL
	c.baseOps[0x22] = (*CPU).opLDNNHL
	c.baseOps[0x2A] = (*CPU).opLDHLNN
	c.baseOps[0x32] = (*CPU).opLDNNA
	c.baseOps[0x3A] = (*CPU).opLDANN
	c.baseOps[0x02] = (*CPU).opLDBCA
	c.baseOps[0x0A] = (*CPU).opLDABC
	c.baseOps[0x12] = (*CPU).opLDDEA
	c.baseOps[0x1A] = (*CPU).opLDADE
	c.baseOps[0xF9] = (*CPU).opLDSPHL
	c.baseOps[0xD3] = (*CPU).opOUTNA
	c.baseOps[0xDB] = (*CPU).opINAN
	c.baseOps[0x07] = (*CPU).opRLCA
	c.baseOps[0x0F] = (*CPU).opRRCA
	c.baseOps[0x17] = (*CPU).opRLA
	c.baseOps[0x1F] = (*CPU).opRRA
	c.baseOps[0xC7] = (*CPU).opRST00
	c.baseOps[0xCF] = (*CPU).opRST08
	c.baseOps[0xD7] = (*CPU).opRST10
	c.baseOps[0xDF] = (*CPU).opRST18
	c.baseOps[0xE7] = (*CPU).opRST20
	c.baseOps[0xEF] = (*CPU).opRST28
	c.baseOps[0xF7] = (*CPU).opRST30
	c.baseOps[0xFF] = (*CPU).opRST38
	c.baseOps[0x04] = (*CPU).opINCB
	c.baseOps[0x0C] = (*CPU).opINCC
	c.baseOps[0x14] = (*CPU).opINCD
	c.baseOps[0x1C] = (*CPU).opINCE
	c.baseOps[0x24] = (*CPU).opINCH
	c.baseOps[0x2C] = (*CPU).opINCL
	c.baseOps[0x34] = (*CPU).opINCHLMem
	c.baseOps[0x3C] = (*CPU).opINCA
	c.baseOps[0x05] = (*CPU).opDECB
	c.baseOps[0x0D] = (*CPU).opDECC
	c.baseOps[0x15] = (*CPU).opDECD
	c.baseOps[0x1D] = (*CPU).opDECE
	c.baseOps[0x25] = (*CPU).opDECH
	c.baseOps[0x2D] = (*CPU).opDECL
	c.baseOps[0x35] = (*CPU).opDECHLMem
	c.baseOps[0x3D] = (*CPU).opDECA
	c.baseOps[0xC2] = (*CPU).opJPNZ
	c.baseOps[0xCA] = (*CPU).opJPZ
	c.baseOps[0xD2] = (*CPU).opJPNC
	c.baseOps[0xDA] = (*CPU).opJPC
	c.baseOps[0xE2] = (*CPU).opJPPO
	c.baseOps[0xEA] = (*CPU).opJPPE
	c.baseOps[0xF2] = (*CPU).opJPNS
	c.baseOps[0xFA] = (*CPU).opJPS
	c.baseOps[0x20] = (*CPU).opJRNZ
	c.baseOps[0x28] = (*CPU).opJRZ
	c.baseOps[0x30] = (*CPU).opJRNC
	c.baseOps[0x38] = (*CPU).opJRC
	c.baseOps[0xC4] = (*CPU).opCALLNZ
	c.baseOps[0xCC] = (*CPU).opCALLZ
	c.baseOps[0xD4] = (*CPU).opCALLNC
	c.baseOps[0xDC] = (*CPU).opCALLC
	c.baseOps[0xE4] = (*CPU).opCALLPO
	c.baseOps[0xEC] = (*CPU).opCALLPE
	c.baseOps[0xF4] = (*CPU).opCALLNS
	c.baseOps[0xFC] = (*CPU).opCALLS
	c.baseOps[0xC0] = (*CPU).opRETNZ
	c.baseOps[0xC8] = (*CPU).opRETZ
	c.baseOps[0xD0] = (*CPU).opRETNC
	c.baseOps[0xD8] = (*CPU).opRETC
	c.baseOps[0xE0] = (*CPU).opRETPO
	c.baseOps[0xE8] = (*CPU).opRETPE
	c.baseOps[0xF0] = (*CPU).opRETNS
	c.baseOps[0xF8] = (*CPU).opRETS
	c.baseOps[0xCB] = (*CPU).opCBPrefix
	c.baseOps[0xDD] = (*CPU).opDDPrefix
	c.baseOps[0xFD] = (*CPU).opFDPrefix
	c.baseOps[0xED] = (*CPU).opEDPrefix
	c.baseOps[0xF3] = (*CPU).opDI
	c.baseOps[0xFB] = (*CPU).opEI
}

func (c *CPU) opUnimplemented() { c.tick(4) }
func (c *CPU) opNOP()           { c.tick(4) }

func (c *CPU) opHALT() {
	c.Halted = true
	c.tick(4)
}

func (c *CPU) opLDRegReg(dest, src byte) {
	c.writeReg8(dest, c.readReg8(src))
	if dest == 6 || src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU) opLDRegImm(dest byte) {
	value := c.fetchByte()
	c.writeReg8(dest, value)
	if dest == 6 {
		c.tick(10)
	} else {
		c.tick(7)
	}
}

type aluOp byte

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

func (c *CPU) opALUReg(op aluOp, src byte) {
	c.performALU(op, c.readReg8(src))
	if src == 6 {
		c.tick(7)
	} else {
		c.tick(4)
	}
}

func (c *CPU) opADDImm() { c.performALU(aluAdd, c.fetchByte()); c.tick(7) }
func (c *CPU) opADCImm() { c.performALU(aluAdc, c.fetchByte()); c.tick(7) }
func (c *CPU) opSUBImm() { c.performALU(aluSub, c.fetchByte()); c.tick(7) }
func (c *CPU) opSBCImm() { c.performALU(aluSbc, c.fetchByte()); c.tick(7) }
func (c *CPU) opANDImm() { c.performALU(aluAnd, c.fetchByte()); c.tick(7) }
func (c *CPU) opXORImm() { c.performALU(aluXor, c.fetchByte()); c.tick(7) }
func (c *CPU) opORImm()  { c.performALU(aluOr, c.fetchByte()); c.tick(7) }
func (c *CPU) opCPImm()  { c.performALU(aluCp, c.fetchByte()); c.tick(7) }

func (c *CPU) opDAA() {
	a := c.A
	adj := byte(0)
	carry := c.Flag(z80FlagC)
	if c.Flag(z80FlagH) || (!c.Flag(z80FlagN) && (a&0x0F) > 0x09) {
		adj |= 0x06
	}
	if carry || (!c.Flag(z80FlagN) && a > 0x99) {
		adj |= 0x60
	}

	var res byte
	if c.Flag(z80FlagN) {
		res = a - adj
	} else {
		res = a + adj
	}

	c.A = res
	c.F &^= z80FlagS | z80FlagZ | z80FlagPV | z80FlagH | z80FlagC | z80FlagX | z80FlagY
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x80 != 0 {
		c.F |= z80FlagS
	}
	if parity8(res) {
		c.F |= z80FlagPV
	}
	if c.Flag(z80FlagN) {
		if (a^res)&0x10 != 0 {
			c.F |= z80FlagH
		}
	} else if (a&0x0F)+(adj&0x0F) > 0x0F {
		c.F |= z80FlagH
	}
	if adj >= 0x60 {
		c.F |= z80FlagC
	}
	c.F |= res & (z80FlagX | z80FlagY)
	c.tick(4)
}

func (c *CPU) opCPL() {
	c.A = ^c.A
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV | z80FlagC)) | z80FlagH | z80FlagN
	c.F |= c.A & (z80FlagX | z80FlagY)
	c.tick(4)
}

func (c *CPU) opSCF() {
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | z80FlagC
	c.F |= c.A & (z80FlagX | z80FlagY)
	c.tick(4)
}

func (c *CPU) opCCF() {
	carry := c.Flag(z80FlagC)
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | (c.A & (z80FlagX | z80FlagY))
	if carry {
		c.F |= z80FlagH
	} else {
		c.F |= z80FlagC
	}
	c.tick(4)
}

func (c *CPU) opLDBCNN()  { c.SetBC(c.fetchWord()); c.tick(10) }
func (c *CPU) opLDDENN()  { c.SetDE(c.fetchWord()); c.tick(10) }
func (c *CPU) opLDHLImm() { c.SetHL(c.fetchWord()); c.tick(10) }
func (c *CPU) opLDSPNN()  { c.SP = c.fetchWord(); c.tick(10) }

func (c *CPU) opADDHLBC() { c.addHL(c.BC()); c.tick(11) }
func (c *CPU) opADDHLDE() { c.addHL(c.DE()); c.tick(11) }
func (c *CPU) opADDHLHL() { c.addHL(c.HL()); c.tick(11) }
func (c *CPU) opADDHLSP() { c.addHL(c.SP); c.tick(11) }

func (c *CPU) opINCBC() { c.SetBC(c.BC() + 1); c.tick(6) }
func (c *CPU) opINCDE() { c.SetDE(c.DE() + 1); c.tick(6) }
func (c *CPU) opINCHL() { c.SetHL(c.HL() + 1); c.tick(6) }
func (c *CPU) opINCSP() { c.SP++; c.tick(6) }
func (c *CPU) opDECBC() { c.SetBC(c.BC() - 1); c.tick(6) }
func (c *CPU) opDECDE() { c.SetDE(c.DE() - 1); c.tick(6) }
func (c *CPU) opDECHL() { c.SetHL(c.HL() - 1); c.tick(6) }
func (c *CPU) opDECSP() { c.SP--; c.tick(6) }

func (c *CPU) opPUSHBC() { c.pushWord(c.BC()); c.tick(11) }
func (c *CPU) opPUSHDE() { c.pushWord(c.DE()); c.tick(11) }
func (c *CPU) opPUSHHL() { c.pushWord(c.HL()); c.tick(11) }
func (c *CPU) opPUSHAF() { c.pushWord(c.AF()); c.tick(11) }
func (c *CPU) opPOPBC()  { c.SetBC(c.popWord()); c.tick(10) }
func (c *CPU) opPOPDE()  { c.SetDE(c.popWord()); c.tick(10) }
func (c *CPU) opPOPHL()  { c.SetHL(c.popWord()); c.tick(10) }
func (c *CPU) opPOPAF()  { c.SetAF(c.popWord()); c.tick(10) }

func (c *CPU) opJPNN() { c.PC = c.fetchWord(); c.tick(10) }

func (c *CPU) opJR() {
	disp := int8(c.fetchByte())
	c.PC = uint16(int32(c.PC) + int32(disp))
	c.tick(12)
}

func (c *CPU) opDJNZ() {
	disp := int8(c.fetchByte())
	c.B--
	if c.B != 0 {
		c.PC = uint16(int32(c.PC) + int32(disp))
		c.tick(13)
	} else {
		c.tick(8)
	}
}

func (c *CPU) opCALLNN() {
	addr := c.fetchWord()
	c.pushWord(c.PC)
	c.PC = addr
	c.tick(17)
}

func (c *CPU) opRET() { c.PC = c.popWord(); c.tick(10) }

func (c *CPU) opEXSPHL() {
	lo := c.read(c.SP)
	hi := c.read(c.SP + 1)
	memVal := uint16(hi)<<8 | uint16(lo)
	hl := c.HL()
	c.write(c.SP, byte(hl))
	c.write(c.SP+1, byte(hl>>8))
	c.SetHL(memVal)
	c.WZ = memVal
	c.tick(19)
}

func (c *CPU) opEXAF() { c.ExAF(); c.tick(4) }

func (c *CPU) opEXDEHL() {
	c.D, c.H = c.H, c.D
	c.E, c.L = c.L, c.E
	c.tick(4)
}

func (c *CPU) opEXX() { c.Exx(); c.tick(4) }

func (c *CPU) opJPHL() { c.PC = c.HL(); c.WZ = c.PC; c.tick(4) }

func (c *CPU) opLDNNHL() {
	addr := c.fetchWord()
	value := c.HL()
	c.write(addr, byte(value))
	c.write(addr+1, byte(value>>8))
	c.WZ = addr + 1
	c.tick(16)
}

func (c *CPU) opLDHLNN() {
	addr := c.fetchWord()
	lo := c.read(addr)
	hi := c.read(addr + 1)
	c.SetHL(uint16(hi)<<8 | uint16(lo))
	c.WZ = addr + 1
	c.tick(16)
}

func (c *CPU) opLDNNA() { addr := c.fetchWord(); c.write(addr, c.A); c.WZ = addr; c.tick(13) }
func (c *CPU) opLDANN() { addr := c.fetchWord(); c.A = c.read(addr); c.WZ = addr; c.tick(13) }
func (c *CPU) opLDBCA()  { c.write(c.BC(), c.A); c.tick(7) }
func (c *CPU) opLDABC()  { c.A = c.read(c.BC()); c.tick(7) }
func (c *CPU) opLDDEA()  { c.write(c.DE(), c.A); c.tick(7) }
func (c *CPU) opLDADE()  { c.A = c.read(c.DE()); c.tick(7) }
func (c *CPU) opLDSPHL() { c.SP = c.HL(); c.tick(6) }

func (c *CPU) opOUTNA() {
	port := uint16(c.A)<<8 | uint16(c.fetchByte())
	c.out(port, c.A)
	c.tick(11)
}

func (c *CPU) opINAN() {
	port := uint16(c.A)<<8 | uint16(c.fetchByte())
	c.A = c.in(port)
	c.tick(11)
}

func (c *CPU) opRLCA() {
	carry := c.A&0x80 != 0
	c.A = c.A<<1 | c.A>>7
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | (c.A & (z80FlagX | z80FlagY))
	if carry {
		c.F |= z80FlagC
	}
	c.tick(4)
}

func (c *CPU) opRRCA() {
	carry := c.A&0x01 != 0
	c.A = c.A>>1 | c.A<<7
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | (c.A & (z80FlagX | z80FlagY))
	if carry {
		c.F |= z80FlagC
	}
	c.tick(4)
}

func (c *CPU) opRLA() {
	res, carry := c.rotate8Left(c.A, c.Flag(z80FlagC))
	c.A = res
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | (c.A & (z80FlagX | z80FlagY))
	if carry {
		c.F |= z80FlagC
	}
	c.tick(4)
}

func (c *CPU) opRRA() {
	res, carry := c.rotate8Right(c.A, c.Flag(z80FlagC))
	c.A = res
	c.F = (c.F & (z80FlagS | z80FlagZ | z80FlagPV)) | (c.A & (z80FlagX | z80FlagY))
	if carry {
		c.F |= z80FlagC
	}
	c.tick(4)
}

func (c *CPU) rst(addr uint16) { c.pushWord(c.PC); c.PC = addr; c.tick(11) }

func (c *CPU) opRST00() { c.rst(0x00) }
func (c *CPU) opRST08() { c.rst(0x08) }
func (c *CPU) opRST10() { c.rst(0x10) }
func (c *CPU) opRST18() { c.rst(0x18) }
func (c *CPU) opRST20() { c.rst(0x20) }
func (c *CPU) opRST28() { c.rst(0x28) }
func (c *CPU) opRST30() { c.rst(0x30) }
func (c *CPU) opRST38() { c.rst(0x38) }

func (c *CPU) inc8(value byte) byte {
	res := value + 1
	c.F &^= z80FlagS | z80FlagZ | z80FlagH | z80FlagPV | z80FlagN | z80FlagX | z80FlagY
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x80 != 0 {
		c.F |= z80FlagS
	}
	if value&0x0F == 0x0F {
		c.F |= z80FlagH
	}
	if value == 0x7F {
		c.F |= z80FlagPV
	}
	c.F |= res & (z80FlagX | z80FlagY)
	return res
}

func (c *CPU) dec8(value byte) byte {
	res := value - 1
	c.F &^= z80FlagS | z80FlagZ | z80FlagH | z80FlagPV | z80FlagX | z80FlagY
	c.F |= z80FlagN
	if res == 0 {
		c.F |= z80FlagZ
	}
	if res&0x80 != 0 {
		c.F |= z80FlagS
	}
	if value&0x0F == 0x00 {
		c.F |= z80FlagH
	}
	if value == 0x80 {
		c.F |= z80FlagPV
	}
	c.F |= res & (z80FlagX | z80FlagY)
	return res
}

func (c *CPU) opINCB() { c.B = c.inc8(c.B); c.tick(4) }
func (c *CPU) opINCC() { c.C = c.inc8(c.C); c.tick(4) }
func (c *CPU) opINCD() { c.D = c.inc8(c.D); c.tick(4) }
func (c *CPU) opINCE() { c.E = c.inc8(c.E); c.tick(4) }
func (c *CPU) opINCH() { c.H = c.inc8(c.H); c.tick(4) }
func (c *CPU) opINCL() { c.L = c.inc8(c.L); c.tick(4) }
func (c *CPU) opINCA() { c.A = c.inc8(c.A); c.tick(4) }
func (c *CPU) opINCHLMem() {
	addr := c.HL()
	c.write(addr, c.inc8(c.read(addr)))
	c.tick(11)
}

func (c *CPU) opDECB() { c.B = c.dec8(c.B); c.tick(4) }
func (c *CPU) opDECC() { c.C = c.dec8(c.C); c.tick(4) }
func (c *CPU) opDECD() { c.D = c.dec8(c.D); c.tick(4) }
func (c *CPU) opDECE() { c.E = c.dec8(c.E); c.tick(4) }
func (c *CPU) opDECH() { c.H = c.dec8(c.H); c.tick(4) }
func (c *CPU) opDECL() { c.L = c.dec8(c.L); c.tick(4) }
func (c *CPU) opDECA() { c.A = c.dec8(c.A); c.tick(4) }
func (c *CPU) opDECHLMem() {
	addr := c.HL()
	c.write(addr, c.dec8(c.read(addr)))
	c.tick(11)
}

func (c *CPU) opJPNZ() { c.jpCond(!c.Flag(z80FlagZ)) }
func (c *CPU) opJPZ()  { c.jpCond(c.Flag(z80FlagZ)) }
func (c *CPU) opJPNC() { c.jpCond(!c.Flag(z80FlagC)) }
func (c *CPU) opJPC()  { c.jpCond(c.Flag(z80FlagC)) }
func (c *CPU) opJPPO() { c.jpCond(!c.Flag(z80FlagPV)) }
func (c *CPU) opJPPE() { c.jpCond(c.Flag(z80FlagPV)) }
func (c *CPU) opJPNS() { c.jpCond(!c.Flag(z80FlagS)) }
func (c *CPU) opJPS()  { c.jpCond(c.Flag(z80FlagS)) }

func (c *CPU) opJRNZ() { c.jrCond(!c.Flag(z80FlagZ)) }
func (c *CPU) opJRZ()  { c.jrCond(c.Flag(z80FlagZ)) }
func (c *CPU) opJRNC() { c.jrCond(!c.Flag(z80FlagC)) }
func (c *CPU) opJRC()  { c.jrCond(c.Flag(z80FlagC)) }

func (c *CPU) opCALLNZ() { c.callCond(!c.Flag(z80FlagZ)) }
func (c *CPU) opCALLZ()  { c.callCond(c.Flag(z80FlagZ)) }
func (c *CPU) opCALLNC() { c.callCond(!c.Flag(z80FlagC)) }
func (c *CPU) opCALLC()  { c.callCond(c.Flag(z80FlagC)) }
func (c *CPU) opCALLPO() { c.callCond(!c.Flag(z80FlagPV)) }
func (c *CPU) opCALLPE() { c.callCond(c.Flag(z80FlagPV)) }
func (c *CPU) opCALLNS() { c.callCond(!c.Flag(z80FlagS)) }
func (c *CPU) opCALLS()  { c.callCond(c.Flag(z80FlagS)) }

func (c *CPU) opRETNZ() { c.retCond(!c.Flag(z80FlagZ)) }
func (c *CPU) opRETZ()  { c.retCond(c.Flag(z80FlagZ)) }
func (c *CPU) opRETNC() { c.retCond(!c.Flag(z80FlagC)) }
func (c *CPU) opRETC()  { c.retCond(c.Flag(z80FlagC)) }
func (c *CPU) opRETPO() { c.retCond(!c.Flag(z80FlagPV)) }
func (c *CPU) opRETPE() { c.retCond(c.Flag(z80FlagPV)) }
func (c *CPU) opRETNS() { c.retCond(!c.Flag(z80FlagS)) }
func (c *CPU) opRETS()  { c.retCond(c.Flag(z80FlagS)) }

func (c *CPU) jpCond(cond bool) {
	addr := c.fetchWord()
	if cond {
		c.PC = addr
	}
	c.tick(10)
}

func (c *CPU) jrCond(cond bool) {
	disp := int8(c.fetchByte())
	if cond {
		c.PC = uint16(int32(c.PC) + int32(disp))
		c.tick(12)
	} else {
		c.tick(7)
	}
}

func (c *CPU) callCond(cond bool) {
	addr := c.fetchWord()
	if cond {
		c.pushWord(c.PC)
		c.PC = addr
		c.tick(17)
	} else {
		c.tick(10)
	}
}

func (c *CPU) retCond(cond bool) {
	if cond {
		c.PC = c.popWord()
		c.tick(11)
	} else {
		c.tick(5)
	}
}

func (c *CPU) opDI() { c.IFF1, c.IFF2 = false, false; c.tick(4) }
func (c *CPU) opEI() { c.IFF1, c.IFF2 = true, true; c.tick(4) }

func (c *CPU) opCBPrefix() {
	opcode := c.fetchOpcode()
	c.cbOps[opcode](c)
}

func (c *CPU) opDDPrefix() {
	c.prefixMode = z80PrefixDD
	opcode := c.fetchOpcode()
	c.ddOps[opcode](c)
	c.prefixMode = z80PrefixNone
}

func (c *CPU) opFDPrefix() {
	c.prefixMode = z80PrefixFD
	opcode := c.fetchOpcode()
	c.fdOps[opcode](c)
	c.prefixMode = z80PrefixNone
}

func (c *CPU) opEDPrefix() {
	opcode := c.fetchOpcode()
	c.edOps[opcode](c)
}

func parity8(value byte) bool {
	value ^= value >> 4
	value ^= value >> 2
	value ^= value >> 1
	return value&1 == 0
}
