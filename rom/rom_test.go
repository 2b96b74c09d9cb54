package rom_test

import (
	"os"
	"path/filepath"
	"testing"

	"gbacore/rom"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "image.bin")
	if err := os.WriteFile(path, []byte{0x01, 0x02, 0x03}, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := rom.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Data) != 3 || r.Data[1] != 0x02 {
		t.Errorf("unexpected image contents: %v", r.Data)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := rom.Load(filepath.Join(t.TempDir(), "missing.bin")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := rom.Load(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}
