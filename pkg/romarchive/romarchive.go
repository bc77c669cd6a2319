// Package romarchive opens 7z-compressed ROM archives and returns the
// first Game Boy ROM entry's bytes, for hosts that keep ROM
// collections compressed rather than as loose .gb files.
package romarchive

import (
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrNoROM is returned when an archive contains no .gb/.gbc entry.
var ErrNoROM = fmt.Errorf("romarchive: no .gb or .gbc entry found")

// Load opens the 7z archive at path and returns the bytes of its
// first .gb or .gbc entry.
func Load(path string) ([]byte, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		lower := strings.ToLower(f.Name)
		if !strings.HasSuffix(lower, ".gb") && !strings.HasSuffix(lower, ".gbc") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	return nil, ErrNoROM
}
