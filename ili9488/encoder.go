// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

// tag is the D/C bit carried by every 9-bit transfer word. In 3-wire
// SPI mode the controller has no dedicated D/C line; the bit travels
// in front of each payload byte instead.
type tag byte

const (
	tagCommand tag = 0
	tagData    tag = 1
)

// encoder packs one tagged byte into the bytes handed to the SPI
// transport. The strategy is fixed when the device is opened; both
// strategies produce the same logical 9-bit stream on the wire.
type encoder interface {
	// append9 appends the wire form of one tagged byte to dst.
	append9(dst []byte, t tag, b byte) []byte
	// bitsPerWord is the word size declared to spi.Port.Connect.
	bitsPerWord() int
	// wireSize is the number of transport bytes per encoded word.
	wireSize() int
}

// native9 relies on the SPI master clocking 9-bit units. Each word is
// (tag<<8)|payload, stored as two little-endian bytes per the spidev
// convention for word sizes above 8 bits.
type native9 struct{}

func (native9) append9(dst []byte, t tag, b byte) []byte {
	w := uint16(t)<<8 | uint16(b)
	return append(dst, byte(w), byte(w>>8))
}

func (native9) bitsPerWord() int { return 9 }

func (native9) wireSize() int { return 2 }

// emulated9 spreads the 9 bits across two 8-bit transport bytes:
//
//	byte0 = tag<<7 | payload>>1
//	byte1 = (payload & 1) << 7
//
// Clocked back to back, the leading 9 bits match what a native 9-bit
// transfer would shift out.
type emulated9 struct{}

func (emulated9) append9(dst []byte, t tag, b byte) []byte {
	return append(dst, byte(t)<<7|b>>1, (b&1)<<7)
}

func (emulated9) bitsPerWord() int { return 8 }

func (emulated9) wireSize() int { return 2 }
