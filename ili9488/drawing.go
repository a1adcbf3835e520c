// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
)

// Style selects how a rectangle is drawn.
type Style int

const (
	// Filled floods the whole rectangle.
	Filled Style = iota
	// Outline draws the one-pixel border only.
	Outline
)

// Set sets the Style to a value represented by the string s. Set
// implements the flag.Value interface.
func (s *Style) Set(v string) error {
	switch v {
	case "fill":
		*s = Filled
	case "outline":
		*s = Outline
	default:
		return fmt.Errorf("unknown style %q: expected fill or outline", v)
	}
	return nil
}

func (s Style) String() string {
	switch s {
	case Filled:
		return "fill"
	case Outline:
		return "outline"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// fillRect arms win and streams its exact pixel count.
func fillRect(ctrl controller, f PixelFormat, win window, c Color, chunkWords int) {
	setWindow(ctrl, win)
	streamPixels(ctrl, f, win.pixels(), c, chunkWords)
}

// drawPixel writes one pixel through a single-point window.
func drawPixel(ctrl controller, f PixelFormat, x, y int, c Color) {
	fillRect(ctrl, f, window{x, y, x, y}, c, f.wordsPerPixel())
}

// drawVLine draws a vertical run as independent single-pixel writes,
// one window per row. The write window auto-increments along rows, not
// columns, so each row is addressed on its own.
func drawVLine(ctrl controller, f PixelFormat, x, y, l int, c Color) {
	for i := 0; i < l; i++ {
		drawPixel(ctrl, f, x, y+i, c)
	}
}

// drawOutline draws the border of a w by h rectangle at (x,y). Order
// and the h guards keep every corner drawn exactly once: top edge,
// bottom edge when the rectangle is taller than one row, then the two
// sides between them.
func drawOutline(ctrl controller, f PixelFormat, x, y, w, h int, c Color, chunkWords int) {
	fillRect(ctrl, f, window{x, y, x + w - 1, y}, c, chunkWords)
	if h > 1 {
		fillRect(ctrl, f, window{x, y + h - 1, x + w - 1, y + h - 1}, c, chunkWords)
	}
	if h > 2 {
		drawVLine(ctrl, f, x, y+1, h-2, c)
		drawVLine(ctrl, f, x+w-1, y+1, h-2, c)
	}
}

// clipLen clips l so the run starting at v stays below bound.
func clipLen(v, l, bound int) int {
	if v+l > bound {
		return bound - v
	}
	return l
}

// check verifies the device is ready and c fits the pixel format.
// Callers hold d.mu.
func (d *Dev) check(c Color) error {
	if !d.ready {
		return ErrNotReady
	}
	if !d.opts.Format.valid(c) {
		return fmt.Errorf("ili9488: color %#04x out of range for %s", uint16(c), d.opts.Format)
	}
	return nil
}

// checkPoint verifies (x,y) is on screen. Callers hold d.mu.
func (d *Dev) checkPoint(x, y int) error {
	if x < 0 || y < 0 || x >= d.rect.Max.X || y >= d.rect.Max.Y {
		return fmt.Errorf("ili9488: point (%d,%d) outside %dx%d", x, y, d.rect.Max.X, d.rect.Max.Y)
	}
	return nil
}

// Fill floods the whole screen with c and records it as the current
// color. A transport failure mid-stream leaves the panel partially
// painted; re-issue the fill after dealing with the error.
func (d *Dev) Fill(c Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(c); err != nil {
		return err
	}
	eh := &errorHandler{d: d}
	fillRect(eh, d.opts.Format, window{0, 0, d.rect.Max.X - 1, d.rect.Max.Y - 1}, c, d.chunkWords)
	if eh.err != nil {
		return eh.err
	}
	d.current = c
	return nil
}

// Pixel sets the pixel at (x,y).
func (d *Dev) Pixel(x, y int, c Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(c); err != nil {
		return err
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	eh := &errorHandler{d: d}
	drawPixel(eh, d.opts.Format, x, y, c)
	return eh.err
}

// HLine draws a horizontal line of l pixels starting at (x,y), clipped
// to the right edge.
func (d *Dev) HLine(x, y, l int, c Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(c); err != nil {
		return err
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	if l <= 0 {
		return fmt.Errorf("ili9488: invalid line length %d", l)
	}
	l = clipLen(x, l, d.rect.Max.X)
	eh := &errorHandler{d: d}
	fillRect(eh, d.opts.Format, window{x, y, x + l - 1, y}, c, d.chunkWords)
	return eh.err
}

// VLine draws a vertical line of l pixels starting at (x,y), clipped
// to the bottom edge.
func (d *Dev) VLine(x, y, l int, c Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(c); err != nil {
		return err
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	if l <= 0 {
		return fmt.Errorf("ili9488: invalid line length %d", l)
	}
	l = clipLen(y, l, d.rect.Max.Y)
	eh := &errorHandler{d: d}
	drawVLine(eh, d.opts.Format, x, y, l, c)
	return eh.err
}

// Rect draws a w by h rectangle at (x,y), filled or outlined, clipped
// to the screen.
func (d *Dev) Rect(x, y, w, h int, c Color, s Style) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(c); err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("ili9488: invalid rectangle size %dx%d", w, h)
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	if s != Filled && s != Outline {
		return fmt.Errorf("ili9488: invalid style %d", int(s))
	}
	w = clipLen(x, w, d.rect.Max.X)
	h = clipLen(y, h, d.rect.Max.Y)
	eh := &errorHandler{d: d}
	if s == Filled {
		fillRect(eh, d.opts.Format, window{x, y, x + w - 1, y + h - 1}, c, d.chunkWords)
	} else {
		drawOutline(eh, d.opts.Format, x, y, w, h, c, d.chunkWords)
	}
	return eh.err
}

// palette3 mirrors the RGB 1-1-1 colors as full-intensity NRGBA, in
// index order.
var palette3 = color.Palette{
	color.NRGBA{0x00, 0x00, 0x00, 0xFF}, // Black
	color.NRGBA{0x00, 0x00, 0xFF, 0xFF}, // Blue
	color.NRGBA{0x00, 0xFF, 0x00, 0xFF}, // Green
	color.NRGBA{0x00, 0xFF, 0xFF, 0xFF}, // Cyan
	color.NRGBA{0xFF, 0x00, 0x00, 0xFF}, // Red
	color.NRGBA{0xFF, 0x00, 0xFF, 0xFF}, // Magenta
	color.NRGBA{0xFF, 0xFF, 0x00, 0xFF}, // Yellow
	color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}, // White
}

var rgb565Model = color.ModelFunc(func(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{byte(r>>8) &^ 0x07, byte(g>>8) &^ 0x03, byte(b>>8) &^ 0x07, 0xFF}
})

// colorFor maps an image color to a device pixel value.
func (d *Dev) colorFor(c color.Color) Color {
	if d.opts.Format == Format3Bit {
		return Color(palette3.Index(c))
	}
	r, g, b, _ := c.RGBA()
	return RGB565(byte(r>>8), byte(g>>8), byte(b>>8))
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	if d.opts.Format == Format3Bit {
		return palette3
	}
	return rgb565Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// It converts src through the device color model and streams the
// covered window row by row. The update is synchronous: once Draw
// returns the panel has been written.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return ErrNotReady
	}
	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	eh := &errorHandler{d: d}
	setWindow(eh, window{r.Min.X, r.Min.Y, r.Max.X - 1, r.Max.Y - 1})
	f := d.opts.Format
	row := make([]byte, 0, r.Dx()*f.wordsPerPixel())
	for y := 0; y < r.Dy(); y++ {
		row = row[:0]
		for x := 0; x < r.Dx(); x++ {
			row = f.appendPixel(row, d.colorFor(src.At(sp.X+x, sp.Y+y)))
		}
		eh.sendData(row)
	}
	return eh.err
}

var _ display.Drawer = &Dev{}
