// Package state implements the save-state serialization format shared by
// every stateful hardware component. It is exported so hosts can build
// and inspect save states directly, and appends an xxhash checksum so a
// truncated or corrupted buffer is rejected at load time instead of
// silently desyncing the machine.
package state

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
)

// Stater is implemented by every component that participates in save
// states: the CPU, bus, interrupt controller, timer, joypad, PPU, APU,
// and cartridge.
type Stater interface {
	Save(*Buffer)
	Load(*Buffer)
}

// Buffer is an append-only write cursor / sequential read cursor over a
// byte slice, used to (de)serialize hardware state.
type Buffer struct {
	raw  []byte
	read int
}

// New returns an empty Buffer ready for writing.
func New() *Buffer {
	return &Buffer{raw: make([]byte, 0, 4096)}
}

// FromBytes wraps raw bytes (previously produced by Bytes) for reading.
func FromBytes(raw []byte) *Buffer {
	return &Buffer{raw: raw}
}

func (b *Buffer) Write8(v uint8) {
	b.raw = append(b.raw, v)
}

func (b *Buffer) Write16(v uint16) {
	b.raw = append(b.raw, byte(v), byte(v>>8))
}

func (b *Buffer) Write32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.raw = append(b.raw, tmp[:]...)
}

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.raw = append(b.raw, 1)
	} else {
		b.raw = append(b.raw, 0)
	}
}

func (b *Buffer) WriteBytes(data []byte) {
	b.raw = append(b.raw, data...)
}

func (b *Buffer) Read8() uint8 {
	v := b.raw[b.read]
	b.read++
	return v
}

func (b *Buffer) Read16() uint16 {
	v := uint16(b.raw[b.read]) | uint16(b.raw[b.read+1])<<8
	b.read += 2
	return v
}

func (b *Buffer) Read32() uint32 {
	v := binary.LittleEndian.Uint32(b.raw[b.read : b.read+4])
	b.read += 4
	return v
}

func (b *Buffer) ReadBool() bool {
	v := b.raw[b.read] != 0
	b.read++
	return v
}

// ReadBytes reads len(p) bytes into p.
func (b *Buffer) ReadBytes(p []byte) {
	copy(p, b.raw[b.read:])
	b.read += len(p)
}

// Bytes returns the accumulated payload, without a checksum.
func (b *Buffer) Bytes() []byte {
	return b.raw
}

// Seal appends an xxhash checksum of the payload written so far and
// returns the final bytes a host should persist.
func (b *Buffer) Seal() []byte {
	sum := xxhash.Sum64(b.raw)
	var tail [8]byte
	binary.LittleEndian.PutUint64(tail[:], sum)
	return append(append([]byte(nil), b.raw...), tail[:]...)
}

// Open validates the trailing checksum appended by Seal and returns a
// Buffer positioned at the start of the payload for reading.
func Open(raw []byte) (*Buffer, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("state: buffer too short (%d bytes)", len(raw))
	}
	payload, tail := raw[:len(raw)-8], raw[len(raw)-8:]
	want := binary.LittleEndian.Uint64(tail)
	got := xxhash.Sum64(payload)
	if want != got {
		return nil, fmt.Errorf("state: checksum mismatch (corrupt or truncated save state)")
	}
	return &Buffer{raw: payload}, nil
}
