// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

import (
	"fmt"
	"strconv"
	"strings"
)

// Surface is the drawing surface a DrawCommand executes against. Dev
// implements it; emulators can too.
type Surface interface {
	Fill(c Color) error
	Pixel(x, y int, c Color) error
	HLine(x, y, l int, c Color) error
	VLine(x, y, l int, c Color) error
	Rect(x, y, w, h int, c Color, s Style) error
}

var _ Surface = &Dev{}

// Op enumerates the drawing operations of the control protocol.
type Op int

const (
	OpFill Op = iota
	OpPixel
	OpHLine
	OpVLine
	OpRect
)

func (o Op) String() string {
	switch o {
	case OpFill:
		return "fill"
	case OpPixel:
		return "pixel"
	case OpHLine:
		return "hline"
	case OpVLine:
		return "vline"
	case OpRect:
		return "rect"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// DrawCommand is one parsed drawing operation. Fields beyond Op and
// Color are populated per operation: X/Y for everything but fill, Len
// for lines, W/H and Style for rectangles.
type DrawCommand struct {
	Op    Op
	X, Y  int
	Len   int
	W, H  int
	Color Color
	Style Style
}

// colorNames are the accepted textual colors, in 3-bit index order.
var colorNames = map[string]Color{
	"black":   Black,
	"blue":    Blue,
	"green":   Green,
	"cyan":    Cyan,
	"red":     Red,
	"magenta": Magenta,
	"yellow":  Yellow,
	"white":   White,
}

// rgb565FromIndexed expands a 3-bit indexed color to its full
// intensity RGB565 equivalent.
func rgb565FromIndexed(c Color) Color {
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
	return RGB565(r, g, b)
}

// parseColor accepts one of the eight color names or a number
// (decimal, 0x hex, 0 octal), validated against the pixel format f.
// Names map to the indexed value in 3-bit mode and to the full
// intensity RGB565 value in 16-bit mode.
func parseColor(tok string, f PixelFormat) (Color, error) {
	if c, ok := colorNames[strings.ToLower(tok)]; ok {
		if f == Format16Bit {
			return rgb565FromIndexed(c), nil
		}
		return c, nil
	}
	v, err := strconv.ParseUint(tok, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("ili9488: invalid color %q", tok)
	}
	c := Color(v)
	if !f.valid(c) {
		return 0, fmt.Errorf("ili9488: color %#04x out of range for %s", v, f)
	}
	return c, nil
}

// parseInt accepts a non-negative decimal coordinate or length token.
func parseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("ili9488: invalid number %q", tok)
	}
	return v, nil
}

// ParseCommand parses one line of the textual control protocol:
//
//	fill <color>
//	pixel <x> <y> <color>
//	hline <x> <y> <len> <color>
//	vline <x> <y> <len> <color>
//	rect <x> <y> <w> <h> <color> <fill|outline>
//
// Color tokens are one of the eight color names or a number validated
// against the pixel format f. Malformed input is rejected here, before
// anything reaches the device.
func ParseCommand(line string, f PixelFormat) (DrawCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return DrawCommand{}, fmt.Errorf("ili9488: empty command")
	}
	op, args := strings.ToLower(fields[0]), fields[1:]

	argc := map[string]int{"fill": 1, "pixel": 3, "hline": 4, "vline": 4, "rect": 6}
	want, ok := argc[op]
	if !ok {
		return DrawCommand{}, fmt.Errorf("ili9488: unknown command %q", op)
	}
	if len(args) != want {
		return DrawCommand{}, fmt.Errorf("ili9488: %s takes %d arguments, got %d", op, want, len(args))
	}

	switch op {
	case "fill":
		c, err := parseColor(args[0], f)
		if err != nil {
			return DrawCommand{}, err
		}
		return DrawCommand{Op: OpFill, Color: c}, nil

	case "pixel":
		cmd := DrawCommand{Op: OpPixel}
		var err error
		if cmd.X, err = parseInt(args[0]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.Y, err = parseInt(args[1]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.Color, err = parseColor(args[2], f); err != nil {
			return DrawCommand{}, err
		}
		return cmd, nil

	case "hline", "vline":
		cmd := DrawCommand{Op: OpHLine}
		if op == "vline" {
			cmd.Op = OpVLine
		}
		var err error
		if cmd.X, err = parseInt(args[0]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.Y, err = parseInt(args[1]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.Len, err = parseInt(args[2]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.Len == 0 {
			return DrawCommand{}, fmt.Errorf("ili9488: zero length line")
		}
		if cmd.Color, err = parseColor(args[3], f); err != nil {
			return DrawCommand{}, err
		}
		return cmd, nil

	default: // rect
		cmd := DrawCommand{Op: OpRect}
		var err error
		if cmd.X, err = parseInt(args[0]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.Y, err = parseInt(args[1]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.W, err = parseInt(args[2]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.H, err = parseInt(args[3]); err != nil {
			return DrawCommand{}, err
		}
		if cmd.W == 0 || cmd.H == 0 {
			return DrawCommand{}, fmt.Errorf("ili9488: zero size rectangle")
		}
		if cmd.Color, err = parseColor(args[4], f); err != nil {
			return DrawCommand{}, err
		}
		if err = cmd.Style.Set(strings.ToLower(args[5])); err != nil {
			return DrawCommand{}, err
		}
		return cmd, nil
	}
}

// Execute runs cmd against s.
func Execute(s Surface, cmd DrawCommand) error {
	switch cmd.Op {
	case OpFill:
		return s.Fill(cmd.Color)
	case OpPixel:
		return s.Pixel(cmd.X, cmd.Y, cmd.Color)
	case OpHLine:
		return s.HLine(cmd.X, cmd.Y, cmd.Len, cmd.Color)
	case OpVLine:
		return s.VLine(cmd.X, cmd.Y, cmd.Len, cmd.Color)
	case OpRect:
		return s.Rect(cmd.X, cmd.Y, cmd.W, cmd.H, cmd.Color, cmd.Style)
	}
	return fmt.Errorf("ili9488: unknown op %d", int(cmd.Op))
}
