package main

import "testing"

func TestDisassembleNOP(t *testing.T) {
	mnem, length := disassemble([]byte{0x00}, 0, 0)
	if mnem != "NOP" || length != 1 {
		t.Fatalf("got %q/%d, want NOP/1", mnem, length)
	}
}

func TestDisassembleLDRegImm(t *testing.T) {
	mnem, length := disassemble([]byte{0x3E, 0x42}, 0, 0)
	if length != 2 {
		t.Fatalf("LD A,n should be 2 bytes, got %d", length)
	}
	if mnem == "" {
		t.Fatalf("expected a non-empty mnemonic")
	}
}

func TestDisassembleUnknownFallsBackToDB(t *testing.T) {
	// 0xED 0xFF is not a defined ED sub-opcode.
	mnem, _ := disassemble([]byte{0xED, 0xFF}, 0, 0)
	if len(mnem) < 2 || mnem[:2] != "DB" && mnem[:6] != "UNIMPL" {
		t.Fatalf("expected a DB or UNIMPL fallback for an unknown ED opcode, got %q", mnem)
	}
}

// LD IXH,n must decode with length 3 (prefix + opcode + immediate),
// not the plain register-move length of 2.
func TestDisassembleIndexedImmediateLength(t *testing.T) {
	_, length := disassemble([]byte{0xDD, 0x26, 0x12}, 0, 0)
	if length != 3 {
		t.Fatalf("LD IXH,n should decode as 3 bytes, got %d", length)
	}
}

func TestDisassembleIndexedDisplacedCB(t *testing.T) {
	// DD CB <d> <op>: BIT 0,(IX+d) is sub-opcode 0x46.
	mnem, length := disassemble([]byte{0xDD, 0xCB, 0x05, 0x46}, 0, 0)
	if length != 4 {
		t.Fatalf("DD CB form should always decode as 4 bytes, got %d", length)
	}
	if mnem == "" {
		t.Fatalf("expected a non-empty mnemonic for the displaced BIT form")
	}
}
