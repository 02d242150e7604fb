package main

import "testing"

func TestVideoComposerFlashTogglesEvery16Vsyncs(t *testing.T) {
	v := NewVideoComposer()
	for i := 0; i < 15; i++ {
		v.OnVSync()
	}
	requireEqualBool(t, v.FlashPhase(), false, "phase should not flip before the 16th vsync")
	v.OnVSync()
	requireEqualBool(t, v.FlashPhase(), true, "phase should flip on the 16th vsync")
}

func TestVideoComposerPixelAddressing(t *testing.T) {
	bus := NewBus()
	// set every bit in the top-left byte of the bitmap so column 0's
	// first 8 pixels should decode as ink.
	bus.Write(0x4000, 0xFF)
	bus.Write(0x5800, 0x07) // ink=white(7), paper=black(0), no bright/flash

	v := NewVideoComposer()
	v.UpdateFromBus(bus)

	fb := v.Framebuffer()
	for x := 0; x < 8; x++ {
		requireEqualU8(t, fb[x], 7, "top-left byte should paint ink colour across its 8 pixels")
	}
}

func TestVideoComposerFlashSwapsInkPaper(t *testing.T) {
	bus := NewBus()
	bus.Write(0x4000, 0xFF)
	bus.Write(0x5800, 0x87) // ink=7, paper=0, flash=1

	v := NewVideoComposer()
	for i := 0; i < 16; i++ {
		v.OnVSync()
	}
	v.UpdateFromBus(bus)

	requireEqualU8(t, v.Framebuffer()[0], 0, "flash phase should swap ink/paper for flashing cells")
}

func TestVideoComposerToNRGBAExpandsPaletteIndices(t *testing.T) {
	bus := NewBus()
	bus.Write(0x4000, 0xFF)
	bus.Write(0x5800, 0x07) // ink=white(7), paper=black(0)

	v := NewVideoComposer()
	v.UpdateFromBus(bus)

	img := v.ToNRGBA()
	r, g, b, a := img.At(0, 0).RGBA()
	white := Palette[7]
	if byte(r>>8) != white[0] || byte(g>>8) != white[1] || byte(b>>8) != white[2] || a>>8 != 0xFF {
		t.Fatalf("expected top-left pixel to expand to white ink, got (%d,%d,%d,%d)", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestVideoComposerToNRGBAScaledUpsizesImage(t *testing.T) {
	v := NewVideoComposer()
	img := v.ToNRGBAScaled(2)
	bounds := img.Bounds()
	if bounds.Dx() != 512 || bounds.Dy() != 384 {
		t.Fatalf("expected a 2x scaled 512x384 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestPaletteBrightReplacesMidIntensity(t *testing.T) {
	if Palette[1][2] != 192 {
		t.Fatalf("normal blue should be 192, got %d", Palette[1][2])
	}
	if Palette[9][2] != 255 {
		t.Fatalf("bright blue should be 255, got %d", Palette[9][2])
	}
	if Palette[8] != [3]byte{0, 0, 0} {
		t.Fatalf("bright black should stay black, got %v", Palette[8])
	}
}
