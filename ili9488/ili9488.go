// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Commands. See the ILI9488 datasheet, section 5.2.
const (
	swReset        byte = 0x01 // SWRESET
	sleepOut       byte = 0x11 // SLPOUT
	normalModeOn   byte = 0x13 // NORON
	inversionOn    byte = 0x21 // INVON
	displayOff     byte = 0x28 // DISPOFF
	displayOn      byte = 0x29 // DISPON
	columnAddrSet  byte = 0x2A // CASET
	pageAddrSet    byte = 0x2B // PASET
	memoryWrite    byte = 0x2C // RAMWR
	memAccessCtl   byte = 0x36 // MADCTL
	pixelFormatSet byte = 0x3A // COLMOD
)

// defaultChunkWords bounds the number of transfer words per bus
// transaction while streaming pixel data, unless the connection
// reports its own limit.
const defaultChunkWords = 4096

// ErrNotReady is returned by drawing operations attempted before a
// successful Init.
var ErrNotReady = errors.New("ili9488: device not initialized")

// Color is a pixel value in the device's configured format: 0..7 in
// 3-bit indexed mode, a packed RGB565 value in 16-bit mode.
type Color uint16

// The eight colors of the 3-bit RGB 1-1-1 format. Red is bit 2, green
// bit 1, blue bit 0.
const (
	Black   Color = 0x00
	Blue    Color = 0x01
	Green   Color = 0x02
	Cyan    Color = 0x03
	Red     Color = 0x04
	Magenta Color = 0x05
	Yellow  Color = 0x06
	White   Color = 0x07
)

// RGB565 packs 8-bit-per-channel RGB into a 16-bit 5-6-5 Color.
func RGB565(r, g, b byte) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// PixelFormat selects the wire format of pixel data. It is programmed
// into the controller during bring-up and fixed for the lifetime of
// the device.
type PixelFormat int

const (
	// Format3Bit is the RGB 1-1-1 indexed format: one transfer word per
	// pixel, values 0..7. This is the only format usable on the 3-wire
	// serial interface without a D/C line on some panel wirings, and the
	// default.
	Format3Bit PixelFormat = iota
	// Format16Bit is RGB 5-6-5: two transfer words per pixel, high byte
	// first.
	Format16Bit
)

// Set sets the PixelFormat to a value represented by the string s. Set
// implements the flag.Value interface.
func (f *PixelFormat) Set(s string) error {
	switch s {
	case "3bit":
		*f = Format3Bit
	case "rgb565":
		*f = Format16Bit
	default:
		return fmt.Errorf("unknown pixel format %q: expected 3bit or rgb565", s)
	}
	return nil
}

func (f PixelFormat) String() string {
	switch f {
	case Format3Bit:
		return "3bit"
	case Format16Bit:
		return "rgb565"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// colmod is the COLMOD parameter byte programming this format.
func (f PixelFormat) colmod() byte {
	if f == Format16Bit {
		return 0x55
	}
	return 0x01
}

// wordsPerPixel is the number of data words one pixel occupies.
func (f PixelFormat) wordsPerPixel() int {
	if f == Format16Bit {
		return 2
	}
	return 1
}

// valid reports whether c is representable in this format.
func (f PixelFormat) valid(c Color) bool {
	if f == Format3Bit {
		return c <= White
	}
	return true
}

// appendPixel appends the data word payload of one pixel to dst.
func (f PixelFormat) appendPixel(dst []byte, c Color) []byte {
	if f == Format16Bit {
		return append(dst, byte(c>>8), byte(c))
	}
	return append(dst, byte(c))
}

// Encoding selects how the 9-bit transfer words are presented to the
// SPI transport.
type Encoding int

const (
	// Emulated9Bit packs each word into two 8-bit transport bytes. It
	// works on any SPI master and is the default.
	Emulated9Bit Encoding = iota
	// Native9Bit declares 9 bits per word to the transport and relies on
	// the master clocking 9-bit units.
	Native9Bit
)

// Set sets the Encoding to a value represented by the string s. Set
// implements the flag.Value interface.
func (e *Encoding) Set(s string) error {
	switch s {
	case "emulated":
		*e = Emulated9Bit
	case "native":
		*e = Native9Bit
	default:
		return fmt.Errorf("unknown encoding %q: expected emulated or native", s)
	}
	return nil
}

func (e Encoding) String() string {
	switch e {
	case Emulated9Bit:
		return "emulated"
	case Native9Bit:
		return "native"
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// DefaultOpts is the recommended configuration: the stock 320x480
// panel in 3-bit indexed mode, 9-bit words emulated over two bytes.
var DefaultOpts = Opts{
	W:         320,
	H:         480,
	Format:    Format3Bit,
	Encoding:  Emulated9Bit,
	Inversion: true,
}

// Opts defines the display configuration.
type Opts struct {
	W int
	H int
	// Format is the pixel wire format programmed during bring-up.
	Format PixelFormat
	// Encoding selects native 9-bit transfers or the two-byte software
	// emulation.
	Encoding Encoding
	// Inversion enables display inversion during bring-up. The stock
	// panel needs it for correct colors.
	Inversion bool
}

// Dev is an open handle to the display controller.
type Dev struct {
	// Communication.
	c   conn.Conn
	enc encoder
	rst gpio.PinOut // optional, nil when not wired
	bl  gpio.PinOut // optional, nil when not wired

	opts Opts
	rect image.Rectangle
	// chunkWords bounds the transfer words per bus transaction while
	// streaming pixel data.
	chunkWords int

	// Mutable. mu is held for the whole duration of every compound
	// operation so a concurrent caller cannot interleave its pixel data
	// with another operation's write window.
	mu      sync.Mutex
	ready   bool
	current Color
}

// NewSPI returns a Dev that talks to an ILI9488 wired in 3-wire SPI
// mode (IM[2:0]=101): SCL, SDA and CS only, no D/C line.
//
// The rst (reset) and bl (backlight) pins are optional; pass nil for
// lines that are not wired. Call Init before drawing.
//
// The port is configured for 1MHz, Mode3 (CPOL=1, CPHA=1). The panel
// supports more but 3-wire mode is sensitive to long leads.
func NewSPI(p spi.Port, rst, bl gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("ili9488: invalid size %dx%d", opts.W, opts.H)
	}
	var enc encoder
	switch opts.Encoding {
	case Emulated9Bit:
		enc = emulated9{}
	case Native9Bit:
		enc = native9{}
	default:
		return nil, fmt.Errorf("ili9488: unknown encoding %d", int(opts.Encoding))
	}
	c, err := p.Connect(1*physic.MegaHertz, spi.Mode3, enc.bitsPerWord())
	if err != nil {
		return nil, err
	}
	chunkWords := defaultChunkWords
	if limits, ok := c.(conn.Limits); ok {
		if max := limits.MaxTxSize(); max > 0 {
			chunkWords = max / enc.wireSize()
		}
	}
	d := &Dev{
		c:          c,
		enc:        enc,
		rst:        rst,
		bl:         bl,
		opts:       *opts,
		rect:       image.Rect(0, 0, opts.W, opts.H),
		chunkWords: chunkWords,
		current:    Black,
	}
	return d, nil
}

// Init runs the mandatory bring-up sequence: hardware reset, then the
// command sequence ending in display-on, with the settle delays the
// controller requires between steps.
//
// A failed step aborts the sequence and leaves the device not ready;
// the transport error is returned unchanged. The sequence is never
// retried internally, but Init may be called again.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ready = false
	if err := d.reset(); err != nil {
		return err
	}
	if d.bl != nil {
		if err := d.bl.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
	eh := &errorHandler{d: d}
	initDisplay(eh, &d.opts)
	if eh.err != nil {
		return eh.err
	}
	d.ready = true
	return nil
}

// reset pulses the optional RST line: 20ms low, then 120ms for the
// controller to come out of reset. No-op without the line.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(20 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	return nil
}

// Backlight drives the optional backlight line. No-op without the
// line.
func (d *Dev) Backlight(on bool) error {
	if d.bl == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l := gpio.Low
	if on {
		l = gpio.High
	}
	return d.bl.Out(l)
}

// CurrentColor returns the color applied by the last successful Fill.
func (d *Dev) CurrentColor() Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Halt turns the display and backlight off. The device is left not
// ready; call Init to bring it back.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ready = false
	if err := d.sendCommand(displayOff); err != nil {
		return err
	}
	if d.bl != nil {
		return d.bl.Out(gpio.Low)
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ili9488.Dev{%s, %dx%d}", d.c, d.rect.Max.X, d.rect.Max.Y)
}

// sendCommand transmits one command word followed by its parameter
// data words as a single bus transaction.
func (d *Dev) sendCommand(cmd byte, data ...byte) error {
	buf := make([]byte, 0, (1+len(data))*d.enc.wireSize())
	buf = d.enc.append9(buf, tagCommand, cmd)
	for _, b := range data {
		buf = d.enc.append9(buf, tagData, b)
	}
	return d.c.Tx(buf, nil)
}

// sendData transmits a batch of data words as a single bus
// transaction.
func (d *Dev) sendData(data []byte) error {
	buf := make([]byte, 0, len(data)*d.enc.wireSize())
	for _, b := range data {
		buf = d.enc.append9(buf, tagData, b)
	}
	return d.c.Tx(buf, nil)
}

var _ conn.Resource = &Dev{}
