// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a 2D display.Drawer that outputs to
// terminal (stdout) using ANSI color codes.
//
// Useful while you are waiting for your TFT panel to come by mail. It
// also implements the same drawing surface as the ili9488 driver, so
// the textual control protocol can be previewed without hardware.
package screen2d

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"

	"github.com/nikitatm333/ili9488-3-line-spi/ili9488"
)

// Opts represents the options available for this display.
type Opts struct {
	W int
	H int
	// Format interprets ili9488.Color values handed to the drawing
	// surface.
	Format ili9488.PixelFormat
	// Scale is the number of pixels per character cell. Zero picks the
	// smallest scale that fits the width in 80 columns.
	Scale   int
	Palette *ansi256.Palette
	// Writer overrides the output, colorable stdout when nil.
	Writer io.Writer

	_ struct{}
}

// Dev is a TFT panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	bounds  image.Rectangle
	format  ili9488.PixelFormat
	scale   int
	palette ansi256.Palette

	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits to do local testing of drawing code.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("screen2d: invalid size %dx%d", opts.W, opts.H)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = (opts.W + 79) / 80
	}
	d := &Dev{
		w:       w,
		bounds:  image.Rect(0, 0, opts.W, opts.H),
		format:  opts.Format,
		scale:   scale,
		palette: *p,
		pixels:  make([]byte, 3*opts.W*opts.H),
	}
	return d, nil
}

func (d *Dev) String() string {
	return "Screen2D"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// rgb expands a device pixel value to 8-bit-per-channel RGB.
func (d *Dev) rgb(c ili9488.Color) (byte, byte, byte) {
	if d.format == ili9488.Format3Bit {
		var r, g, b byte
		if c&4 != 0 {
			r = 0xFF
		}
		if c&2 != 0 {
			g = 0xFF
		}
		if c&1 != 0 {
			b = 0xFF
		}
		return r, g, b
	}
	r := byte(c>>11) << 3
	g := byte(c>>5) << 2
	b := byte(c) << 3
	return r, g, b
}

func (d *Dev) set(x, y int, r, g, b byte) {
	i := 3 * (y*d.bounds.Max.X + x)
	d.pixels[i] = r
	d.pixels[i+1] = g
	d.pixels[i+2] = b
}

func (d *Dev) checkColor(c ili9488.Color) error {
	if d.format == ili9488.Format3Bit && c > ili9488.White {
		return fmt.Errorf("screen2d: color %#04x out of range for %s", uint16(c), d.format)
	}
	return nil
}

func (d *Dev) checkPoint(x, y int) error {
	if x < 0 || y < 0 || x >= d.bounds.Max.X || y >= d.bounds.Max.Y {
		return fmt.Errorf("screen2d: point (%d,%d) outside %dx%d", x, y, d.bounds.Max.X, d.bounds.Max.Y)
	}
	return nil
}

func clipLen(v, l, bound int) int {
	if v+l > bound {
		return bound - v
	}
	return l
}

// Fill floods the whole screen with c.
func (d *Dev) Fill(c ili9488.Color) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	r, g, b := d.rgb(c)
	for i := 0; i < len(d.pixels); i += 3 {
		d.pixels[i] = r
		d.pixels[i+1] = g
		d.pixels[i+2] = b
	}
	return d.refresh()
}

// Pixel sets the pixel at (x,y).
func (d *Dev) Pixel(x, y int, c ili9488.Color) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	r, g, b := d.rgb(c)
	d.set(x, y, r, g, b)
	return d.refresh()
}

// HLine draws a horizontal line of l pixels starting at (x,y), clipped
// to the right edge.
func (d *Dev) HLine(x, y, l int, c ili9488.Color) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	if l <= 0 {
		return fmt.Errorf("screen2d: invalid line length %d", l)
	}
	l = clipLen(x, l, d.bounds.Max.X)
	r, g, b := d.rgb(c)
	for i := 0; i < l; i++ {
		d.set(x+i, y, r, g, b)
	}
	return d.refresh()
}

// VLine draws a vertical line of l pixels starting at (x,y), clipped
// to the bottom edge.
func (d *Dev) VLine(x, y, l int, c ili9488.Color) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	if l <= 0 {
		return fmt.Errorf("screen2d: invalid line length %d", l)
	}
	l = clipLen(y, l, d.bounds.Max.Y)
	r, g, b := d.rgb(c)
	for i := 0; i < l; i++ {
		d.set(x, y+i, r, g, b)
	}
	return d.refresh()
}

// Rect draws a w by h rectangle at (x,y), filled or outlined, clipped
// to the screen.
func (d *Dev) Rect(x, y, w, h int, c ili9488.Color, s ili9488.Style) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("screen2d: invalid rectangle size %dx%d", w, h)
	}
	if err := d.checkPoint(x, y); err != nil {
		return err
	}
	if s != ili9488.Filled && s != ili9488.Outline {
		return fmt.Errorf("screen2d: invalid style %d", int(s))
	}
	w = clipLen(x, w, d.bounds.Max.X)
	h = clipLen(y, h, d.bounds.Max.Y)
	r, g, b := d.rgb(c)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if s == ili9488.Outline && j != 0 && j != h-1 && i != 0 && i != w-1 {
				continue
			}
			d.set(x+i, y+j, r, g, b)
		}
	}
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.bounds)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			r16, g16, b16, _ := src.At(sp.X+x, sp.Y+y).RGBA()
			d.set(r.Min.X+x, r.Min.Y+y, byte(r16>>8), byte(g16>>8), byte(b16>>8))
		}
	}
	return d.refresh()
}

// refresh redraws the whole frame, one character cell per scale by
// 2*scale pixel block. Terminal cells are roughly twice as tall as
// wide.
func (d *Dev) refresh() error {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\033[H\033[0m")
	w := d.bounds.Max.X
	for y := 0; y < d.bounds.Max.Y; y += 2 * d.scale {
		for x := 0; x < w; x += d.scale {
			i := 3 * (y*w + x)
			c := color.NRGBA{d.pixels[i], d.pixels[i+1], d.pixels[i+2], 255}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
var _ ili9488.Surface = &Dev{}
