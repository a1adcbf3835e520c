// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/spi/spitest"
)

// pixelRecords is the record sequence of one single-pixel write.
func pixelRecords(x, y int, c Color) []record {
	return []record{
		{cmd: columnAddrSet, data: []byte{byte(x >> 8), byte(x), byte(x >> 8), byte(x)}},
		{cmd: pageAddrSet, data: []byte{byte(y >> 8), byte(y), byte(y >> 8), byte(y)}},
		{cmd: memoryWrite, data: []byte{byte(c)}},
	}
}

func TestFillRectFullScreen(t *testing.T) {
	var got fakeController

	fillRect(&got, Format3Bit, window{0, 0, 319, 479}, Red, defaultChunkWords)

	want := []record{
		{cmd: columnAddrSet, data: []byte{0x00, 0x00, 0x01, 0x3F}},
		{cmd: pageAddrSet, data: []byte{0x00, 0x00, 0x01, 0xDF}},
		{cmd: memoryWrite, data: bytes.Repeat([]byte{0x04}, 320*480)},
	}
	if diff := cmp.Diff(got.records, want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("fillRect() difference (-got +want):\n%s", diff)
	}
	// 153600 words in chunks of 4096.
	if want := 38; got.dataCalls != want {
		t.Errorf("fillRect() used %d transactions, want %d", got.dataCalls, want)
	}
}

func TestDrawPixelSequence(t *testing.T) {
	var got fakeController

	drawPixel(&got, Format3Bit, 10, 10, White)

	if diff := cmp.Diff(got.records, pixelRecords(10, 10, White), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("drawPixel() difference (-got +want):\n%s", diff)
	}
}

func TestDrawOutlineSequence(t *testing.T) {
	var got fakeController

	drawOutline(&got, Format3Bit, 0, 0, 5, 5, Cyan, defaultChunkWords)

	want := []record{
		// Top edge.
		{cmd: columnAddrSet, data: []byte{0x00, 0x00, 0x00, 0x04}},
		{cmd: pageAddrSet, data: []byte{0x00, 0x00, 0x00, 0x00}},
		{cmd: memoryWrite, data: bytes.Repeat([]byte{0x03}, 5)},
		// Bottom edge.
		{cmd: columnAddrSet, data: []byte{0x00, 0x00, 0x00, 0x04}},
		{cmd: pageAddrSet, data: []byte{0x00, 0x04, 0x00, 0x04}},
		{cmd: memoryWrite, data: bytes.Repeat([]byte{0x03}, 5)},
	}
	// Left then right side, one pixel per row between the edges.
	for y := 1; y <= 3; y++ {
		want = append(want, pixelRecords(0, y, Cyan)...)
	}
	for y := 1; y <= 3; y++ {
		want = append(want, pixelRecords(4, y, Cyan)...)
	}

	if diff := cmp.Diff(got.records, want, cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("drawOutline() difference (-got +want):\n%s", diff)
	}
}

func TestDrawOutlineShortRectangles(t *testing.T) {
	for _, tc := range []struct {
		name   string
		h      int
		pixels int
	}{
		// h==1: the top edge only. h==2: top and bottom, no sides.
		{"one row", 1, 5},
		{"two rows", 2, 10},
		{"three rows", 3, 12},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got fakeController

			drawOutline(&got, Format3Bit, 0, 0, 5, tc.h, White, defaultChunkWords)

			total := 0
			for _, r := range got.records {
				if r.cmd == memoryWrite {
					total += len(r.data)
				}
			}
			if total != tc.pixels {
				t.Errorf("drawOutline(h=%d) wrote %d pixels, want %d", tc.h, total, tc.pixels)
			}
		})
	}
}

func TestClipLen(t *testing.T) {
	for _, tc := range []struct {
		name        string
		v, l, bound int
		want        int
	}{
		{"no clipping", 0, 10, 320, 10},
		{"clipped to the edge", 318, 10, 320, 2},
		{"exactly at the edge", 310, 10, 320, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := clipLen(tc.v, tc.l, tc.bound); got != tc.want {
				t.Errorf("clipLen(%d, %d, %d) = %d, want %d", tc.v, tc.l, tc.bound, got, tc.want)
			}
		})
	}
}

// newTestDev returns a ready device over a recording SPI port.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *spitest.Record) {
	t.Helper()
	r := &spitest.Record{}
	dev, err := NewSPI(r, nil, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	dev.ready = true
	return dev, r
}

func TestPixelOutOfBounds(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.Pixel(320, 10, Red); err == nil {
		t.Error("Pixel() should fail for x >= width")
	}
	if err := dev.Pixel(10, 480, Red); err == nil {
		t.Error("Pixel() should fail for y >= height")
	}
	if err := dev.Pixel(-1, 0, Red); err == nil {
		t.Error("Pixel() should fail for negative coordinates")
	}
	if len(r.Ops) != 0 {
		t.Errorf("rejected operations produced %d bus transactions, want 0", len(r.Ops))
	}
}

func TestColorOutOfRange(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.Fill(8); err == nil {
		t.Error("Fill() should reject colors above 7 in 3-bit mode")
	}
	if len(r.Ops) != 0 {
		t.Errorf("rejected fill produced %d bus transactions, want 0", len(r.Ops))
	}

	dev16, r16 := newTestDev(t, &Opts{W: 4, H: 4, Format: Format16Bit})
	if err := dev16.Fill(0xF800); err != nil {
		t.Errorf("Fill() failed in rgb565 mode: %v", err)
	}
	if len(r16.Ops) == 0 {
		t.Error("Fill() produced no bus traffic in rgb565 mode")
	}
}

func TestNotReady(t *testing.T) {
	r := &spitest.Record{}
	dev, err := NewSPI(r, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := dev.Fill(Red); !errors.Is(err, ErrNotReady) {
		t.Errorf("Fill() before Init = %v, want ErrNotReady", err)
	}
	if err := dev.Pixel(0, 0, Red); !errors.Is(err, ErrNotReady) {
		t.Errorf("Pixel() before Init = %v, want ErrNotReady", err)
	}
	if err := dev.Draw(dev.Bounds(), image.NewRGBA(dev.Bounds()), image.Point{}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Draw() before Init = %v, want ErrNotReady", err)
	}
	if len(r.Ops) != 0 {
		t.Errorf("not-ready operations produced %d bus transactions, want 0", len(r.Ops))
	}
}

func TestHLineClips(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.HLine(318, 0, 10, Red); err != nil {
		t.Fatalf("HLine() failed: %v", err)
	}
	// Column set, page set, memory write, one data transaction.
	if len(r.Ops) != 4 {
		t.Fatalf("HLine() produced %d bus transactions, want 4", len(r.Ops))
	}
	// Two remaining pixels, two wire bytes per word.
	if got := len(r.Ops[3].W); got != 4 {
		t.Errorf("HLine() streamed %d wire bytes, want 4", got)
	}
}

func TestVLinePerPixelAddressing(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.VLine(5, 100, 3, Green); err != nil {
		t.Fatalf("VLine() failed: %v", err)
	}
	// Three independent single-pixel writes of four transactions each.
	if len(r.Ops) != 12 {
		t.Errorf("VLine() produced %d bus transactions, want 12", len(r.Ops))
	}

	if err := dev.VLine(5, 478, 10, Green); err != nil {
		t.Fatalf("clipped VLine() failed: %v", err)
	}
	if got := len(r.Ops) - 12; got != 8 {
		t.Errorf("clipped VLine() produced %d bus transactions, want 8", got)
	}
}

func TestRectValidation(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.Rect(10, 10, 0, 20, Red, Filled); err == nil {
		t.Error("Rect() should reject zero width")
	}
	if err := dev.Rect(10, 10, 20, 0, Red, Filled); err == nil {
		t.Error("Rect() should reject zero height")
	}
	if err := dev.Rect(320, 10, 20, 20, Red, Filled); err == nil {
		t.Error("Rect() should reject an off-screen origin")
	}
	if err := dev.Rect(10, 10, 20, 20, Red, Style(7)); err == nil {
		t.Error("Rect() should reject an unknown style")
	}
	if len(r.Ops) != 0 {
		t.Errorf("rejected rectangles produced %d bus transactions, want 0", len(r.Ops))
	}
}

func TestRectClipsToScreen(t *testing.T) {
	dev, r := newTestDev(t, nil)

	if err := dev.Rect(310, 470, 20, 20, Blue, Filled); err != nil {
		t.Fatalf("Rect() failed: %v", err)
	}
	if len(r.Ops) != 4 {
		t.Fatalf("Rect() produced %d bus transactions, want 4", len(r.Ops))
	}
	// 10x10 remaining pixels, two wire bytes per word.
	if got := len(r.Ops[3].W); got != 200 {
		t.Errorf("Rect() streamed %d wire bytes, want 200", got)
	}
}

func TestFillIdempotent(t *testing.T) {
	dev, r := newTestDev(t, &Opts{W: 8, H: 8, Format: Format3Bit})

	if err := dev.Fill(Yellow); err != nil {
		t.Fatalf("first Fill() failed: %v", err)
	}
	n := len(r.Ops)
	if err := dev.Fill(Yellow); err != nil {
		t.Fatalf("second Fill() failed: %v", err)
	}
	if len(r.Ops) != 2*n {
		t.Fatalf("second Fill() produced %d bus transactions, want %d", len(r.Ops)-n, n)
	}
	if diff := cmp.Diff(r.Ops[:n], r.Ops[n:]); diff != "" {
		t.Errorf("repeated Fill() sequences differ (-first +second):\n%s", diff)
	}
}

func TestFillRecordsCurrentColor(t *testing.T) {
	dev, _ := newTestDev(t, &Opts{W: 8, H: 8, Format: Format3Bit})

	if got := dev.CurrentColor(); got != Black {
		t.Errorf("CurrentColor() = %d before any fill, want %d", got, Black)
	}
	if err := dev.Fill(Magenta); err != nil {
		t.Fatalf("Fill() failed: %v", err)
	}
	if got := dev.CurrentColor(); got != Magenta {
		t.Errorf("CurrentColor() = %d, want %d", got, Magenta)
	}
	// A failed validation must not touch the color.
	if err := dev.Fill(8); err == nil {
		t.Fatal("Fill(8) should have failed")
	}
	if got := dev.CurrentColor(); got != Magenta {
		t.Errorf("CurrentColor() = %d after rejected fill, want %d", got, Magenta)
	}
}

func TestDrawConvertsThroughPalette(t *testing.T) {
	dev, r := newTestDev(t, &Opts{W: 4, H: 2, Format: Format3Bit})

	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, palette3[Red])
		}
	}
	if err := dev.Draw(dev.Bounds(), src, image.Point{}); err != nil {
		t.Fatalf("Draw() failed: %v", err)
	}
	// Window setup plus one data transaction per row.
	if len(r.Ops) != 5 {
		t.Fatalf("Draw() produced %d bus transactions, want 5", len(r.Ops))
	}
	want := emulated9{}.append9(nil, tagData, byte(Red))
	want = append(want, emulated9{}.append9(nil, tagData, byte(Red))...)
	want = append(want, emulated9{}.append9(nil, tagData, byte(Red))...)
	want = append(want, emulated9{}.append9(nil, tagData, byte(Red))...)
	for _, op := range r.Ops[3:] {
		if diff := cmp.Diff(op.W, want); diff != "" {
			t.Errorf("Draw() row difference (-got +want):\n%s", diff)
		}
	}
}
