package main

import "testing"

func buildMinimalSNA() []byte {
	data := make([]byte, snaSize)
	data[0] = 0x3F  // I
	data[19] = 0x04 // IFF2 bit set
	data[20] = 0x01 // R
	data[25] = 0x01 // IM
	data[26] = 0x02 // border

	sp := uint16(0x8000)
	data[23] = byte(sp)
	data[24] = byte(sp >> 8)

	// stack the PC (0x9000) at the chosen SP inside the RAM image.
	ramOffset := 27 + (int(sp) - 0x4000)
	data[ramOffset] = 0x00
	data[ramOffset+1] = 0x90
	return data
}

func TestParseSNAHeaderAndStackedPC(t *testing.T) {
	rec, err := parseSNA(buildMinimalSNA())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireEqualU8(t, rec.I, 0x3F, "I register")
	requireEqualBool(t, rec.IFF1, true, "IFF2 bit should seed IFF1 too")
	requireEqualU16(t, rec.PC, 0x9000, "PC should be popped from the image's own stack")
	requireEqualU16(t, rec.SP, 0x8002, "SP should advance past the popped word")
	requireEqualU8(t, rec.Border, 0x02, "border should take the low 3 bits")
}

func TestParseSNARejectsWrongSize(t *testing.T) {
	_, err := parseSNA(make([]byte, 100))
	if err == nil {
		t.Fatalf("expected a size-mismatch error")
	}
	lerr, ok := err.(*LoadError)
	if !ok || lerr.Cause() != SizeMismatch {
		t.Fatalf("expected LoadError{SizeMismatch}, got %v", err)
	}
}

func TestParseBINRawLoadsAt8000(t *testing.T) {
	rec, err := parseBIN([]byte{0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireEqualU16(t, rec.PC, 0x8000, "raw BIN should start execution at 0x8000")
	requireEqualBool(t, rec.AllowInterrupts, false, "BIN loads should disarm interrupts")
}

func TestParseBINZXHeader(t *testing.T) {
	data := []byte{'Z', 'X', 0x00, 0x90, 0x34, 0x12, 0x02, 0x00, 0x00, 0x00, 0xAA, 0xBB}
	rec, err := parseBIN(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireEqualU16(t, rec.PC, 0x1234, "ZX-tagged PC field")
	if len(rec.RAMWrites) != 1 || rec.RAMWrites[0].Addr != 0x9000 {
		t.Fatalf("expected a single RAM write at the declared origin")
	}
	if len(rec.RAMWrites[0].Data) != 2 || rec.RAMWrites[0].Data[0] != 0xAA {
		t.Fatalf("payload should be trimmed to the declared size")
	}
}

func TestRLEDecode(t *testing.T) {
	src := []byte{0x01, 0xED, 0xED, 0x03, 0x42, 0x09}
	out := rleDecode(src, 6)
	want := []byte{0x01, 0x42, 0x42, 0x42, 0x09}
	if len(out) != len(want) {
		t.Fatalf("expected %d bytes, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("byte %d: got 0x%02X, want 0x%02X", i, out[i], want[i])
		}
	}
}

func TestLoadErrorCauseRoundTrip(t *testing.T) {
	err := NewLoadError(TruncatedBlock, "detail")
	if err.Cause() != TruncatedBlock {
		t.Fatalf("expected TruncatedBlock, got %v", err.Cause())
	}
	if err.Error() == "" {
		t.Fatalf("expected a non-empty error message")
	}
}
