// Package ppu implements the DMG pixel processing unit: the mode 0-3
// scanline timing state machine, background/window/sprite compositing
// into a 2-bit-per-pixel frame buffer, and the LCDC/STAT/SCY/SCX/LY/
// LYC/BGP/OBP0/OBP1/WY/WX registers.
//
// It is a synchronous per-dot state machine producing an indexed
// buffer, driven by the caller's explicit per-cycle tick loop rather
// than an event scheduler or a pipelined goroutine renderer.
package ppu

import (
	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/mjstead/dmgcore/pkg/state"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// Mode is one of the four PPU scan modes exposed via STAT bits 0-1.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeVRAM   Mode = 3
)

// hblankCycles mirrors real hardware's SCX-dependent HBlank length: a
// scanline is always 456 dots, and OAM search (80) + pixel transfer
// (172 minimum, extended by SCX%8) together with HBlank make up the
// remainder.
var hblankCycles = [8]uint16{204, 200, 200, 200, 200, 196, 196, 196}

// Sink receives a completed frame buffer. index values are 0-3,
// corresponding to the current BGP/OBP0/OBP1 mapping at render time.
type Sink interface {
	Frame(buf *[ScreenHeight][ScreenWidth]uint8)
}

type sprite struct {
	y, x, tile, attr uint8
}

// PPU is the DMG picture processing unit.
type PPU struct {
	vram [0x2000]uint8
	oam  [160]uint8

	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	ly   uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	windowLine uint8

	mode        Mode
	dot         uint16
	statLine    bool
	frameReady  bool
	frame       [ScreenHeight][ScreenWidth]uint8
	scanSprites []sprite

	irq  *interrupts.Service
	sink Sink
}

// New returns a PPU with the LCD enabled and mode 2, matching the
// register state a host sets up immediately after boot-ROM handoff.
func New(irq *interrupts.Service) *PPU {
	p := &PPU{irq: irq, lcdc: 0x91, stat: 0x80 | uint8(ModeOAM), bgp: 0xFC, mode: ModeOAM}
	return p
}

// AttachSink installs the host's frame sink. Nil is valid (frames are
// simply dropped, useful for headless test ROM running).
func (p *PPU) AttachSink(sink Sink) { p.sink = sink }

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }

func (p *PPU) vramUnlocked() bool { return p.mode != ModeVRAM }
func (p *PPU) oamUnlocked() bool  { return p.mode != ModeOAM && p.mode != ModeVRAM }

// Read handles VRAM (0x8000-0x9FFF), OAM (0xFE00-0xFE9F), and the
// LCDC/STAT/... register block (0xFF40-0xFF4B), returning 0xFF for a
// VRAM/OAM access that lands during a mode that locks it out.
func (p *PPU) Read(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if !p.vramUnlocked() {
			return 0xFF
		}
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if !p.oamUnlocked() {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	}
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return p.stat | 0x80
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

// ReadRaw bypasses the VRAM/OAM lockout, for the DMA engine's use.
func (p *PPU) ReadRaw(addr uint16) uint8 {
	if addr >= 0x8000 && addr <= 0x9FFF {
		return p.vram[addr-0x8000]
	}
	if addr >= 0xFE00 && addr <= 0xFE9F {
		return p.oam[addr-0xFE00]
	}
	return 0xFF
}

// Write handles the same ranges as Read.
func (p *PPU) Write(addr uint16, v uint8) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.vramUnlocked() {
			p.vram[addr-0x8000] = v
		}
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.oamUnlocked() {
			p.oam[addr-0xFE00] = v
		}
		return
	}
	switch addr {
	case 0xFF40:
		wasOn := p.lcdEnabled()
		p.lcdc = v
		if wasOn && !p.lcdEnabled() {
			p.mode = ModeHBlank
			p.stat = p.stat&0xFC | uint8(ModeHBlank)
			p.ly = 0
			p.dot = 0
			p.frame = [ScreenHeight][ScreenWidth]uint8{}
		} else if !wasOn && p.lcdEnabled() {
			p.dot = 0
			p.mode = ModeOAM
			p.stat = p.stat&0xFC | uint8(ModeOAM)
			p.windowLine = 0
		}
	case 0xFF41:
		p.stat = p.stat&0x07 | v&0xF8
		p.updateSTATLine()
	case 0xFF42:
		p.scy = v
	case 0xFF43:
		p.scx = v
	case 0xFF44:
		// read-only
	case 0xFF45:
		p.lyc = v
		p.updateSTATLine()
	case 0xFF47:
		p.bgp = v
	case 0xFF48:
		p.obp0 = v
	case 0xFF49:
		p.obp1 = v
	case 0xFF4A:
		p.wy = v
	case 0xFF4B:
		p.wx = v
	}
}

// WriteRaw bypasses the VRAM/OAM lockout, for the DMA engine's use.
func (p *PPU) WriteRaw(addr uint16, v uint8) {
	if addr >= 0x8000 && addr <= 0x9FFF {
		p.vram[addr-0x8000] = v
		return
	}
	if addr >= 0xFE00 && addr <= 0xFE9F {
		p.oam[addr-0xFE00] = v
	}
}

// HasFrame reports whether a complete frame is ready for the sink (or
// for a caller that polls instead of using AttachSink).
func (p *PPU) HasFrame() bool { return p.frameReady }

// ClearFrame acknowledges the ready frame.
func (p *PPU) ClearFrame() { p.frameReady = false }

// Frame returns the most recently completed frame buffer.
func (p *PPU) Frame() *[ScreenHeight][ScreenWidth]uint8 { return &p.frame }

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.stat = p.stat&0xFC | uint8(m)
	p.updateSTATLine()
}

func (p *PPU) updateSTATLine() {
	coincidence := p.ly == p.lyc
	if coincidence {
		p.stat |= 0x04
	} else {
		p.stat &^= 0x04
	}

	line := (coincidence && p.stat&0x40 != 0) ||
		(p.mode == ModeHBlank && p.stat&0x08 != 0) ||
		(p.mode == ModeVBlank && p.stat&0x10 != 0) ||
		(p.mode == ModeOAM && p.stat&0x20 != 0)

	if line && !p.statLine {
		p.irq.Request(interrupts.LCDFlag)
	}
	p.statLine = line
}

// TickT advances the PPU by one T-cycle.
func (p *PPU) TickT() {
	if !p.lcdEnabled() {
		return
	}

	p.dot++

	switch p.mode {
	case ModeOAM:
		if p.dot == 1 {
			p.scanOAM()
		}
		if p.dot >= 80 {
			p.dot = 0
			p.setMode(ModeVRAM)
		}
	case ModeVRAM:
		if p.dot >= 172+204-hblankCycles[p.scx&0x07] {
			p.dot = 0
			p.renderScanline()
			p.setMode(ModeHBlank)
		}
	case ModeHBlank:
		if p.dot >= hblankCycles[p.scx&0x07] {
			p.dot = 0
			p.ly++
			p.updateSTATLine()
			if p.ly == 144 {
				p.setMode(ModeVBlank)
				p.irq.Request(interrupts.VBlankFlag)
				p.frameReady = true
				if p.sink != nil {
					p.sink.Frame(&p.frame)
				}
			} else {
				p.setMode(ModeOAM)
			}
		}
	case ModeVBlank:
		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			p.updateSTATLine()
			if p.ly > 153 {
				p.ly = 0
				p.windowLine = 0
				p.setMode(ModeOAM)
				p.updateSTATLine()
			}
		}
	}
}

func (p *PPU) scanOAM() {
	p.scanSprites = p.scanSprites[:0]
	height := uint8(8)
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	for i := 0; i < 40 && len(p.scanSprites) < 10; i++ {
		y := p.oam[i*4]
		x := p.oam[i*4+1]
		spriteY := int16(y) - 16
		if int16(p.ly) < spriteY || int16(p.ly) >= spriteY+int16(height) {
			continue
		}
		p.scanSprites = append(p.scanSprites, sprite{y: y, x: x, tile: p.oam[i*4+2], attr: p.oam[i*4+3]})
	}
}

func (p *PPU) bgTileData(id uint8) uint16 {
	if p.lcdc&0x10 != 0 {
		return uint16(id) * 16
	}
	return uint16(0x1000 + int16(int8(id))*16)
}

func (p *PPU) renderScanline() {
	var line [ScreenWidth]uint8
	var bgColorIndex [ScreenWidth]uint8

	bgWinEnabled := p.lcdc&0x01 != 0
	if bgWinEnabled {
		mapBase := uint16(0x1800)
		if p.lcdc&0x08 != 0 {
			mapBase = 0x1C00
		}
		y := p.ly + p.scy
		row := y / 8
		for x := uint8(0); x < ScreenWidth; x++ {
			sx := x + p.scx
			col := sx / 8
			tileIdx := p.vram[mapBase+uint16(row)*32+uint16(col)]
			tileAddr := p.bgTileData(tileIdx)
			lineInTile := y % 8
			lo := p.vram[tileAddr+uint16(lineInTile)*2]
			hi := p.vram[tileAddr+uint16(lineInTile)*2+1]
			bit := 7 - (sx % 8)
			colorID := (hi>>bit&1)<<1 | (lo >> bit & 1)
			bgColorIndex[x] = colorID
			line[x] = applyPalette(p.bgp, colorID)
		}

		windowEnabled := p.lcdc&0x20 != 0 && p.ly >= p.wy && p.wx <= 166
		if windowEnabled {
			winMapBase := uint16(0x1800)
			if p.lcdc&0x40 != 0 {
				winMapBase = 0x1C00
			}
			row := p.windowLine / 8
			usedWindow := false
			for x := uint8(0); x < ScreenWidth; x++ {
				wx := int16(x) - (int16(p.wx) - 7)
				if wx < 0 {
					continue
				}
				usedWindow = true
				col := uint8(wx) / 8
				tileIdx := p.vram[winMapBase+uint16(row)*32+uint16(col)]
				tileAddr := p.bgTileData(tileIdx)
				lineInTile := p.windowLine % 8
				lo := p.vram[tileAddr+uint16(lineInTile)*2]
				hi := p.vram[tileAddr+uint16(lineInTile)*2+1]
				bit := 7 - (uint8(wx) % 8)
				colorID := (hi>>bit&1)<<1 | (lo >> bit & 1)
				bgColorIndex[x] = colorID
				line[x] = applyPalette(p.bgp, colorID)
			}
			if usedWindow {
				p.windowLine++
			}
		}
	}

	if p.lcdc&0x02 != 0 {
		height := uint8(8)
		if p.lcdc&0x04 != 0 {
			height = 16
		}
		for i := len(p.scanSprites) - 1; i >= 0; i-- {
			s := p.scanSprites[i]
			spriteY := int16(s.y) - 16
			spriteX := int16(s.x) - 8
			row := uint8(int16(p.ly) - spriteY)
			if s.attr&0x40 != 0 {
				row = height - 1 - row
			}
			tile := s.tile
			if height == 16 {
				tile &^= 0x01
				if row >= 8 {
					tile |= 0x01
					row -= 8
				}
			}
			tileAddr := uint16(tile) * 16
			lo := p.vram[tileAddr+uint16(row)*2]
			hi := p.vram[tileAddr+uint16(row)*2+1]
			palette := p.obp0
			if s.attr&0x10 != 0 {
				palette = p.obp1
			}
			for px := uint8(0); px < 8; px++ {
				screenX := spriteX + int16(px)
				if screenX < 0 || screenX >= ScreenWidth {
					continue
				}
				bit := px
				if s.attr&0x20 == 0 {
					bit = 7 - px
				}
				colorID := (hi>>bit&1)<<1 | (lo >> bit & 1)
				if colorID == 0 {
					continue
				}
				if s.attr&0x80 != 0 && bgColorIndex[screenX] != 0 {
					continue // behind background, except color 0
				}
				line[screenX] = applyPalette(palette, colorID)
			}
		}
	}

	p.frame[p.ly] = line
}

func applyPalette(palette uint8, colorID uint8) uint8 {
	return (palette >> (colorID * 2)) & 0x03
}

var _ state.Stater = (*PPU)(nil)

func (p *PPU) Save(b *state.Buffer) {
	b.WriteBytes(p.vram[:])
	b.WriteBytes(p.oam[:])
	b.Write8(p.lcdc)
	b.Write8(p.stat)
	b.Write8(p.scy)
	b.Write8(p.scx)
	b.Write8(p.ly)
	b.Write8(p.lyc)
	b.Write8(p.bgp)
	b.Write8(p.obp0)
	b.Write8(p.obp1)
	b.Write8(p.wy)
	b.Write8(p.wx)
	b.Write8(p.windowLine)
	b.Write8(uint8(p.mode))
	b.Write16(p.dot)
	b.WriteBool(p.statLine)
	b.WriteBool(p.frameReady)
}

func (p *PPU) Load(b *state.Buffer) {
	b.ReadBytes(p.vram[:])
	b.ReadBytes(p.oam[:])
	p.lcdc = b.Read8()
	p.stat = b.Read8()
	p.scy = b.Read8()
	p.scx = b.Read8()
	p.ly = b.Read8()
	p.lyc = b.Read8()
	p.bgp = b.Read8()
	p.obp0 = b.Read8()
	p.obp1 = b.Read8()
	p.wy = b.Read8()
	p.wx = b.Read8()
	p.windowLine = b.Read8()
	p.mode = Mode(b.Read8())
	p.dot = b.Read16()
	p.statLine = b.ReadBool()
	p.frameReady = b.ReadBool()
}
