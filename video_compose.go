package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Palette holds the fixed 16-colour Spectrum palette: indices 0-7 are
// the normal intensity, 8-15 the bright variant (192 replaced by 255;
// bright black stays black).
var Palette = buildPalette()

// colorPalette mirrors Palette as a color.Palette so the framebuffer
// can be wrapped in an *image.Paletted and handed to x/image/draw
// without copying pixels into an RGB buffer by hand.
var colorPalette = buildColorPalette()

func buildColorPalette() color.Palette {
	pal := make(color.Palette, len(Palette))
	for i, rgb := range Palette {
		pal[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}
	}
	return pal
}

func buildPalette() [16][3]byte {
	normal := [8][3]byte{
		{0, 0, 0}, {0, 0, 192}, {192, 0, 0}, {192, 0, 192},
		{0, 192, 0}, {0, 192, 192}, {192, 192, 0}, {192, 192, 192},
	}
	var p [16][3]byte
	for i, c := range normal {
		p[i] = c
		bright := c
		for ch := range bright {
			if bright[ch] == 192 {
				bright[ch] = 255
			}
		}
		p[i+8] = bright
	}
	return p
}

// VideoComposer translates Spectrum screen memory into a 256x192
// indexed framebuffer and, on demand, an RGB image for the rendering
// backend. FLASH phase advances strictly on vsync, never during
// composition, so cadence survives frames where composition is
// skipped (RunFast).
type VideoComposer struct {
	framebuffer  [256 * 192]byte
	flashCounter int
	flashPhase   bool
}

func NewVideoComposer() *VideoComposer {
	return &VideoComposer{}
}

func (v *VideoComposer) ResetTiming() {
	v.flashCounter = 0
	v.flashPhase = false
}

func (v *VideoComposer) OnVSync() {
	v.flashCounter++
	if v.flashCounter >= 16 {
		v.flashCounter = 0
		v.flashPhase = !v.flashPhase
	}
}

func (v *VideoComposer) FlashPhase() bool { return v.flashPhase }

func (v *VideoComposer) Framebuffer() []byte { return v.framebuffer[:] }

// UpdateFromBus recomputes every pixel from the bus's bitmap and
// attribute areas using the Spectrum's interleaved scanline addressing.
func (v *VideoComposer) UpdateFromBus(bus *Bus) {
	for y := 0; y < 192; y++ {
		band := uint16(y&0xC0) << 5
		row := uint16(y&0x07) << 8
		block := uint16(y&0x38) << 2
		attrBase := uint16(0x5800 + (y/8)*32)

		for xb := uint16(0); xb < 32; xb++ {
			pixelAddr := 0x4000 | band | row | block | xb
			pixelByte := bus.Read(pixelAddr)
			attr := bus.Read(attrBase + xb)

			ink := attr & 0x07
			paper := (attr >> 3) & 0x07
			bright := (attr >> 6) & 0x01
			flash := (attr >> 7) & 0x01

			if bright != 0 {
				ink += 8
				paper += 8
			}
			if flash != 0 && v.flashPhase {
				ink, paper = paper, ink
			}

			rowOffset := y*256 + int(xb)*8
			for bit := 0; bit < 8; bit++ {
				mask := byte(0x80) >> uint(bit)
				if pixelByte&mask != 0 {
					v.framebuffer[rowOffset+bit] = ink
				} else {
					v.framebuffer[rowOffset+bit] = paper
				}
			}
		}
	}
}

// paletted wraps the framebuffer as an *image.Paletted without copying
// pixels, so draw.Draw can do the index-to-RGBA expansion itself.
func (v *VideoComposer) paletted() *image.Paletted {
	return &image.Paletted{
		Pix:     v.framebuffer[:],
		Stride:  256,
		Rect:    image.Rect(0, 0, 256, 192),
		Palette: colorPalette,
	}
}

// ToNRGBA expands the palette-index framebuffer into an *image.NRGBA
// suitable for handing to any Go rendering backend (ebiten, image/png,
// a raw blit) without that backend needing to know about the Spectrum
// palette. The expansion itself is x/image/draw's job: draw.Draw reads
// through the Paletted's color model so index-to-RGBA conversion lives
// in one place shared with ToNRGBAScaled below.
func (v *VideoComposer) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, 256, 192))
	draw.Draw(dst, dst.Bounds(), v.paletted(), image.Point{}, draw.Src)
	return dst
}

// ToNRGBAScaled expands and resizes the framebuffer in one pass, for
// rendering backends that present the 256x192 Spectrum picture at a
// larger window size. scale must be >= 1; ratios above 1 use bilinear
// interpolation, 1 falls back to the unscaled nearest-neighbour copy.
func (v *VideoComposer) ToNRGBAScaled(scale int) *image.NRGBA {
	if scale <= 1 {
		return v.ToNRGBA()
	}
	dst := image.NewNRGBA(image.Rect(0, 0, 256*scale, 192*scale))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), v.paletted(), v.paletted().Bounds(), draw.Src, nil)
	return dst
}
