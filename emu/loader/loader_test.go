package loader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gaia-vm/gaia/emu/machine"
)

func image(payload []byte) []byte {
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	return append(header[:], payload...)
}

func TestLoadPlacesPayloadAtEntry(t *testing.T) {
	m := machine.New(4096, false)
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	if err := Load(bytes.NewReader(image(payload)), m, 0x100); err != nil {
		t.Fatal(err)
	}
	got := m.GetWord(0x100)
	if got != 0xefbeadde {
		t.Errorf("GetWord(0x100) = %#x, want 0xefbeadde", got)
	}
}

func TestLoadShortHeader(t *testing.T) {
	m := machine.New(4096, false)
	err := Load(bytes.NewReader([]byte{1, 2}), m, 0)
	if err == nil {
		t.Fatal("expected short-file error for truncated header")
	}
}

func TestLoadShortPayload(t *testing.T) {
	m := machine.New(4096, false)
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], 10)
	buf := append(header[:], []byte{1, 2, 3}...) // declares 10, supplies 3
	err := Load(bytes.NewReader(buf), m, 0)
	if err == nil {
		t.Fatal("expected short-file error for truncated payload")
	}
}

func TestLoadTrailingData(t *testing.T) {
	m := machine.New(4096, false)
	buf := image([]byte{1, 2, 3, 4})
	buf = append(buf, 0xff) // extra byte after declared payload
	err := Load(bytes.NewReader(buf), m, 0)
	if err == nil {
		t.Fatal("expected trailing-data error")
	}
}

func TestLoadTooLargeForRAM(t *testing.T) {
	m := machine.New(64, false)
	err := Load(bytes.NewReader(image(make([]byte, 128))), m, 0)
	if err == nil {
		t.Fatal("expected error when payload exceeds RAM size")
	}
}
