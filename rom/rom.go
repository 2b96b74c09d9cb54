package rom

import (
	"fmt"
	"os"
)

// ROM is a flat binary image. BIOS and cartridge dumps have no header; they
// are opaque byte streams to the rest of the system.
type ROM struct {
	Data []byte
}

// Load reads a ROM image from disk. An empty file is an error: a cartridge
// with no bytes cannot be mapped.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read ROM file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("ROM file %s is empty", path)
	}

	return &ROM{Data: data}, nil
}
