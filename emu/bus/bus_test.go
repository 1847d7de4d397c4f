package bus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gaia-vm/gaia/emu/device"
	"github.com/gaia-vm/gaia/emu/machine"
)

func newTestBus(in string) (*Bus, *machine.Machine, *bytes.Buffer) {
	m := machine.New(64*1024, false)
	var out bytes.Buffer
	ser := device.NewSerial(strings.NewReader(in), &out)
	return New(m, ser), m, &out
}

func TestLoadStoreWordRoundTrip(t *testing.T) {
	b, _, _ := newTestBus("")
	if err := b.StoreWord(0, 4, 0xcafef00d); err != nil {
		t.Fatal(err)
	}
	got, err := b.LoadWord(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xcafef00d {
		t.Errorf("LoadWord = %#x, want 0xcafef00d", got)
	}
}

func TestLoadStoreByteRoundTrip(t *testing.T) {
	b, _, _ := newTestBus("")
	if err := b.StoreByte(0, 10, 0xab); err != nil {
		t.Fatal(err)
	}
	got, err := b.LoadByte(0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xab {
		t.Errorf("LoadByte = %#x, want 0xab", got)
	}
}

func TestLoadWordOutOfRangeIsFatal(t *testing.T) {
	b, m, _ := newTestBus("")
	_, err := b.LoadWord(0, int32(m.MemSize/4)+1000)
	if err == nil {
		t.Fatal("expected bounds error for address beyond RAM and MMIO")
	}
}

func TestLoadWordUnaligned(t *testing.T) {
	b, m, _ := newTestBus("")
	// Force an unaligned physical address through the word-load path.
	_ = m
	_, err := b.LoadWord(1, 0) // va = reg[ra](1) + 0 -> pa = 1, not 4-aligned
	if err == nil {
		t.Fatal("expected alignment error")
	}
	if _, ok := err.(*ErrAlignment); !ok {
		t.Errorf("error type = %T, want *ErrAlignment", err)
	}
}

func TestSerialMMIORead(t *testing.T) {
	b, _, _ := newTestBus("Z")
	got, err := b.readMMIO(SerialData)
	if err != nil {
		t.Fatal(err)
	}
	if got != uint32('Z') {
		t.Errorf("serial data read = %d, want %d", got, 'Z')
	}
}

func TestSerialMMIOWrite(t *testing.T) {
	b, _, out := newTestBus("")
	if err := b.writeMMIO(SerialData, uint32('Q')); err != nil {
		t.Fatal(err)
	}
	if out.String() != "Q" {
		t.Errorf("output = %q, want %q", out.String(), "Q")
	}
}

func TestSerialTxReadyAlwaysOne(t *testing.T) {
	b, _, _ := newTestBus("")
	got, err := b.readMMIO(SerialTxRdy)
	if err != nil || got != 1 {
		t.Errorf("tx-ready = %d, %v, want 1, nil", got, err)
	}
}

func TestInterruptRegistersRoundTrip(t *testing.T) {
	b, m, _ := newTestBus("")
	if err := b.writeMMIO(IntrAddr, 0x1000); err != nil {
		t.Fatal(err)
	}
	if m.Intr.Addr != 0x1000 {
		t.Errorf("Intr.Addr = %#x, want 0x1000", m.Intr.Addr)
	}
	got, err := b.readMMIO(IntrAddr)
	if err != nil || got != 0x1000 {
		t.Errorf("read back IntrAddr = %d, %v, want 0x1000, nil", got, err)
	}

	if err := b.writeMMIO(IntrEnabled, 1); err != nil {
		t.Fatal(err)
	}
	if !m.Intr.Enabled {
		t.Error("Intr.Enabled should be true after writing 1")
	}
}

func TestMMUControlRegistersRoundTrip(t *testing.T) {
	b, m, _ := newTestBus("")
	if err := b.writeMMIO(PDAddr, 0x2000); err != nil {
		t.Fatal(err)
	}
	if m.MMU.PDAddr != 0x2000 {
		t.Errorf("MMU.PDAddr = %#x, want 0x2000", m.MMU.PDAddr)
	}
	if err := b.writeMMIO(MMUEnabled, 1); err != nil {
		t.Fatal(err)
	}
	if !m.MMU.Enabled {
		t.Error("MMU.Enabled should be true after writing 1")
	}
}

func TestUnmappedMMIOIsFatal(t *testing.T) {
	b, _, _ := newTestBus("")
	if _, err := b.readMMIO(0x80001300); err == nil {
		t.Error("expected bounds error for an unmapped MMIO address")
	}
}
