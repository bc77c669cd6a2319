// Package savefile persists save states to disk with brotli
// compression: a full save state includes PPU VRAM/OAM, APU wave RAM,
// and cartridge RAM, which compresses well and can otherwise run to
// several hundred kilobytes per slot.
package savefile

import (
	"bytes"
	"io"
	"os"

	"github.com/andybalholm/brotli"
)

// Write brotli-compresses raw (typically the output of
// gameboy.GameBoy.SaveState) and writes it to path.
func Write(path string, raw []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := brotli.NewWriter(f)
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

// Read decompresses the save state at path, for passing to
// gameboy.GameBoy.LoadState.
func Read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, brotli.NewReader(f)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
