package cpu

// reg8 reads one of the eight 8-bit operand slots used throughout the
// unprefixed and CB-prefixed tables: 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
// Reading slot 6 costs an extra M-cycle for the memory access.
func (c *CPU) reg8(i uint8) uint8 {
	switch i {
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
		return c.read(c.hl())
	default:
		return c.A
	}
}

func (c *CPU) setReg8(i uint8, v uint8) {
	switch i {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write(c.hl(), v)
	default:
		c.A = v
	}
}

// execute decodes and runs one unprefixed opcode, returning the total
// M-cycles spent (including the opcode fetch already charged by Step).
func (c *CPU) execute(op uint8) int {
	switch {
	case op == 0xCB:
		return c.executeCB(c.fetch())

	case op == 0x00: // NOP
		return 1

	case op == 0x10: // STOP
		c.fetch() // STOP reads a (discarded) second byte
		c.Stopped = true
		return 1

	case op == 0x76: // HALT
		c.Halted = true
		return 1

	case op == 0xF3: // DI
		c.irq.SetIME(false)
		return 1

	case op == 0xFB: // EI
		c.irq.SetEIPending(true)
		return 1

	case op == 0x27: // DAA
		c.daa()
		return 1

	case op == 0x2F: // CPL
		c.A = ^c.A
		c.setFlag(flagSubtract, true)
		c.setFlag(flagHalfCarry, true)
		return 1

	case op == 0x37: // SCF
		c.setFlag(flagSubtract, false)
		c.setFlag(flagHalfCarry, false)
		c.setFlag(flagCarry, true)
		return 1

	case op == 0x3F: // CCF
		c.setFlag(flagSubtract, false)
		c.setFlag(flagHalfCarry, false)
		c.setFlag(flagCarry, !c.flag(flagCarry))
		return 1

	case op == 0x07: // RLCA
		c.A = c.rlc(c.A)
		c.setFlag(flagZero, false)
		return 1
	case op == 0x0F: // RRCA
		c.A = c.rrc(c.A)
		c.setFlag(flagZero, false)
		return 1
	case op == 0x17: // RLA
		c.A = c.rl(c.A)
		c.setFlag(flagZero, false)
		return 1
	case op == 0x1F: // RRA
		c.A = c.rr(c.A)
		c.setFlag(flagZero, false)
		return 1

	// 16-bit immediate loads: LD BC/DE/HL/SP, d16
	case op&0xCF == 0x01:
		v := c.fetch16()
		c.setPairDD(op, v)
		return 3

	// LD (BC)/(DE),A and LD A,(BC)/(DE)
	case op == 0x02:
		c.write(c.bc(), c.A)
		return 2
	case op == 0x12:
		c.write(c.de(), c.A)
		return 2
	case op == 0x0A:
		c.A = c.read(c.bc())
		return 2
	case op == 0x1A:
		c.A = c.read(c.de())
		return 2

	case op == 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write(addr, uint8(c.SP))
		c.write(addr+1, uint8(c.SP>>8))
		return 5

	case op == 0xF9: // LD SP,HL
		c.tick()
		c.SP = c.hl()
		return 2

	case op == 0xF8: // LD HL,SP+r8
		c.addSPr8ToHL()
		return 3

	case op == 0xE8: // ADD SP,r8
		c.addSPr8()
		return 4

	case op == 0xE0: // LDH (a8),A
		addr := 0xFF00 + uint16(c.fetch())
		c.write(addr, c.A)
		return 3
	case op == 0xF0: // LDH A,(a8)
		addr := 0xFF00 + uint16(c.fetch())
		c.A = c.read(addr)
		return 3
	case op == 0xE2: // LD (C),A
		c.write(0xFF00+uint16(c.C), c.A)
		return 2
	case op == 0xF2: // LD A,(C)
		c.A = c.read(0xFF00 + uint16(c.C))
		return 2
	case op == 0xEA: // LD (a16),A
		c.write(c.fetch16(), c.A)
		return 4
	case op == 0xFA: // LD A,(a16)
		c.A = c.read(c.fetch16())
		return 4

	case op == 0x22: // LD (HL+),A
		c.write(c.hl(), c.A)
		c.setHL(c.hl() + 1)
		return 2
	case op == 0x32: // LD (HL-),A
		c.write(c.hl(), c.A)
		c.setHL(c.hl() - 1)
		return 2
	case op == 0x2A: // LD A,(HL+)
		c.A = c.read(c.hl())
		c.setHL(c.hl() + 1)
		return 2
	case op == 0x3A: // LD A,(HL-)
		c.A = c.read(c.hl())
		c.setHL(c.hl() - 1)
		return 2

	// INC/DEC 16-bit register pairs
	case op&0xCF == 0x03:
		c.setPairDD(op, c.pairDD(op)+1)
		c.tick()
		return 2
	case op&0xCF == 0x0B:
		c.setPairDD(op, c.pairDD(op)-1)
		c.tick()
		return 2

	// ADD HL,rr
	case op&0xCF == 0x09:
		c.addHL(c.pairDD(op))
		c.tick()
		return 2

	// INC r8 / DEC r8 (8-bit, indexed across 0x04+8n and 0x05+8n)
	case op&0xC7 == 0x04:
		idx := (op >> 3) & 0x07
		c.setReg8(idx, c.inc8(c.reg8(idx)))
		return incDecCost(idx)
	case op&0xC7 == 0x05:
		idx := (op >> 3) & 0x07
		c.setReg8(idx, c.dec8(c.reg8(idx)))
		return incDecCost(idx)

	// LD r8,d8
	case op&0xC7 == 0x06:
		idx := (op >> 3) & 0x07
		v := c.fetch()
		c.setReg8(idx, v)
		if idx == 6 {
			return 3
		}
		return 2

	// LD r8,r8 block (0x40-0x7F, minus 0x76 HALT handled above)
	case op >= 0x40 && op <= 0x7F:
		dst := (op >> 3) & 0x07
		src := op & 0x07
		v := c.reg8(src)
		c.setReg8(dst, v)
		if dst == 6 || src == 6 {
			return 2
		}
		return 1

	// ALU A,r8 block (0x80-0xBF)
	case op >= 0x80 && op <= 0xBF:
		src := op & 0x07
		v := c.reg8(src)
		c.aluOp((op>>3)&0x07, v)
		if src == 6 {
			return 2
		}
		return 1

	// ALU A,d8 block
	case op&0xC7 == 0xC6:
		v := c.fetch()
		c.aluOp((op>>3)&0x07, v)
		return 2

	// JP a16 / JP cc,a16
	case op == 0xC3:
		c.PC = c.fetch16()
		c.tick()
		return 4
	case op == 0xE9:
		c.PC = c.hl()
		return 1
	case op&0xE7 == 0xC2:
		addr := c.fetch16()
		if c.condition((op >> 3) & 0x03) {
			c.PC = addr
			c.tick()
			return 4
		}
		return 3

	// JR r8 / JR cc,r8
	case op == 0x18:
		c.jr()
		return 3
	case op&0xE7 == 0x20:
		off := int8(c.fetch())
		if c.condition((op >> 3) & 0x03) {
			c.PC = uint16(int32(c.PC) + int32(off))
			c.tick()
			return 3
		}
		return 2

	// CALL a16 / CALL cc,a16
	case op == 0xCD:
		addr := c.fetch16()
		c.tick()
		c.push(c.PC)
		c.PC = addr
		return 6
	case op&0xE7 == 0xC4:
		addr := c.fetch16()
		if c.condition((op >> 3) & 0x03) {
			c.tick()
			c.push(c.PC)
			c.PC = addr
			return 6
		}
		return 3

	// RET / RET cc / RETI
	case op == 0xC9:
		c.PC = c.pop()
		c.tick()
		return 4
	case op == 0xD9:
		c.PC = c.pop()
		c.irq.SetIME(true)
		c.tick()
		return 4
	case op&0xE7 == 0xC0:
		c.tick()
		if c.condition((op >> 3) & 0x03) {
			c.PC = c.pop()
			c.tick()
			return 5
		}
		return 2

	// RST n
	case op&0xC7 == 0xC7:
		c.tick()
		c.push(c.PC)
		c.PC = uint16(op & 0x38)
		return 4

	// PUSH rr / POP rr
	case op&0xCF == 0xC5:
		c.tick()
		c.push(c.pairQQ(op))
		return 4
	case op&0xCF == 0xC1:
		c.setPairQQ(op, c.pop())
		return 3

	default:
		// Unassigned opcodes never appear in practice; treat as NOP
		// rather than panicking mid-session.
		return 1
	}
}

func incDecCost(idx uint8) int {
	if idx == 6 {
		return 3
	}
	return 1
}

// pairDD/setPairDD select BC/DE/HL/SP by the 2-bit field at op bits 4-5,
// used by the 0x01/0x03/0x09/0x0B-family opcodes.
func (c *CPU) pairDD(op uint8) uint16 {
	switch (op >> 4) & 0x03 {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.SP
	}
}

func (c *CPU) setPairDD(op uint8, v uint16) {
	switch (op >> 4) & 0x03 {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// pairQQ/setPairQQ select BC/DE/HL/AF for PUSH/POP, which substitute AF
// for SP in the third slot.
func (c *CPU) pairQQ(op uint8) uint16 {
	switch (op >> 4) & 0x03 {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.af()
	}
}

func (c *CPU) setPairQQ(op uint8, v uint16) {
	switch (op >> 4) & 0x03 {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.setAF(v)
	}
}

func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.flag(flagZero)
	case 1:
		return c.flag(flagZero)
	case 2:
		return !c.flag(flagCarry)
	default:
		return c.flag(flagCarry)
	}
}

func (c *CPU) jr() {
	off := int8(c.fetch())
	c.PC = uint16(int32(c.PC) + int32(off))
	c.tick()
}
