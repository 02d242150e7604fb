package main

import "testing"

func TestKeyboardIdleRowsAllReleased(t *testing.T) {
	k := NewKeyboard()
	for row := byte(0); row < 8; row++ {
		requireEqualU8(t, k.ReadRow(^(byte(1) << row)), 0x1F, "idle row should read all released")
	}
}

func TestKeyboardSingleKeyPress(t *testing.T) {
	k := NewKeyboard()
	k.KeyDown(KeyQ)
	// Q lives in row 2, bit 0.
	requireEqualU8(t, k.ReadRow(0xFB), 0x1E, "Q pressed should clear bit 0 of row 2")
	k.KeyUp(KeyQ)
	requireEqualU8(t, k.ReadRow(0xFB), 0x1F, "releasing Q should restore row 2")
}

func TestKeyboardMultiRowWiredAnd(t *testing.T) {
	k := NewKeyboard()
	k.KeyDown(KeyCapsShift) // row 0, bit 0
	k.KeyDown(KeySpace)     // row 7, bit 0
	// select both row 0 and row 7
	highByte := ^(byte(1)<<0 | byte(1)<<7)
	requireEqualU8(t, k.ReadRow(highByte), 0x1E, "wired-AND across selected rows should reflect both presses")
}
