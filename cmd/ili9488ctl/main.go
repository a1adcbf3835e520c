// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ili9488ctl drives an ILI9488 TFT panel wired in 3-wire SPI mode from
// a textual command protocol on stdin.
//
// Example:
//
//	ili9488ctl -spi /dev/spidev0.0 -reset GPIO25 -backlight GPIO24
//	fill black
//	rect 40 60 240 360 blue fill
//	pixel 160 240 yellow
//
// With -preview the commands render to the terminal instead of
// hardware.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/nikitatm333/ili9488-3-line-spi/ili9488"
	"github.com/nikitatm333/ili9488-3-line-spi/screen2d"
)

// surface is what the command loop draws on: the panel or the
// terminal preview.
type surface interface {
	ili9488.Surface
	display.Drawer
}

func mainImpl() error {
	spiName := flag.String("spi", "", "SPI port to use (default: first available)")
	resetName := flag.String("reset", "", "reset GPIO pin (optional)")
	backlightName := flag.String("backlight", "", "backlight GPIO pin (optional)")
	w := flag.Int("w", 320, "display width")
	h := flag.Int("h", 480, "display height")
	format := ili9488.Format3Bit
	flag.Var(&format, "format", "pixel format: 3bit or rgb565")
	encoding := ili9488.Emulated9Bit
	flag.Var(&encoding, "encoding", "9-bit word encoding: emulated or native")
	noInvert := flag.Bool("noinvert", false, "skip display inversion during bring-up")
	preview := flag.Bool("preview", false, "render to the terminal instead of hardware")
	demo := flag.Bool("demo", false, "run the demo scene, then exit")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Arg(0))
	}

	var s surface
	if *preview {
		d, err := screen2d.New(&screen2d.Opts{W: *w, H: *h, Format: format})
		if err != nil {
			return err
		}
		defer d.Halt()
		s = d
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		p, err := spireg.Open(*spiName)
		if err != nil {
			return err
		}
		defer p.Close()
		var rst, bl gpio.PinOut
		if *resetName != "" {
			if rst = gpioreg.ByName(*resetName); rst == nil {
				return fmt.Errorf("no GPIO pin %q", *resetName)
			}
		}
		if *backlightName != "" {
			if bl = gpioreg.ByName(*backlightName); bl == nil {
				return fmt.Errorf("no GPIO pin %q", *backlightName)
			}
		}
		opts := ili9488.Opts{
			W:         *w,
			H:         *h,
			Format:    format,
			Encoding:  encoding,
			Inversion: !*noInvert,
		}
		d, err := ili9488.NewSPI(p, rst, bl, &opts)
		if err != nil {
			return err
		}
		if err := d.Init(); err != nil {
			return err
		}
		defer d.Halt()
		s = d
	}

	if *demo {
		return runDemo(s, format)
	}
	return commandLoop(s, format)
}

// commandLoop reads one drawing command per line until EOF. A rejected
// command is reported and the loop continues; nothing reaches the
// device for it.
func commandLoop(s surface, f ili9488.PixelFormat) error {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch fields := strings.Fields(line); fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			usage()
			continue
		case "color":
			if d, ok := s.(interface{ CurrentColor() ili9488.Color }); ok {
				fmt.Println(uint16(d.CurrentColor()))
			}
			continue
		case "backlight":
			if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
				fmt.Fprintln(os.Stderr, "usage: backlight on|off")
				continue
			}
			if d, ok := s.(interface{ Backlight(bool) error }); ok {
				if err := d.Backlight(fields[1] == "on"); err != nil {
					fmt.Fprintf(os.Stderr, "%s\n", err)
				}
			}
			continue
		}
		cmd, err := ili9488.ParseCommand(line, f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			continue
		}
		if err := ili9488.Execute(s, cmd); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
	}
	return sc.Err()
}

func usage() {
	fmt.Print(`commands:
  fill <color>
  pixel <x> <y> <color>
  hline <x> <y> <len> <color>
  vline <x> <y> <len> <color>
  rect <x> <y> <w> <h> <color> <fill|outline>
  color
  backlight on|off
  quit
colors: black blue green cyan red magenta yellow white, or a number
`)
}

// runDemo cycles the eight colors, then renders a drawn scene through
// the display.Drawer interface.
func runDemo(s surface, f ili9488.PixelFormat) error {
	names := []string{"black", "blue", "green", "cyan", "red", "magenta", "yellow", "white"}
	for _, n := range names {
		cmd, err := ili9488.ParseCommand("fill "+n, f)
		if err != nil {
			return err
		}
		if err := ili9488.Execute(s, cmd); err != nil {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}

	b := s.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetRGB255(0, 0, 128)
	dc.Clear()
	dc.SetRGB255(255, 255, 0)
	dc.DrawRoundedRectangle(20, 20, float64(b.Dx()-40), float64(b.Dy()-40), 16)
	dc.Stroke()
	for i := 0; i < 8; i++ {
		dc.SetRGB255(255*(i>>2&1), 255*(i>>1&1), 255*(i&1))
		dc.DrawCircle(float64(40+i*(b.Dx()-80)/7), float64(b.Dy()/4), 12)
		dc.Fill()
	}
	ft, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	dc.SetFontFace(truetype.NewFace(ft, &truetype.Options{Size: 48}))
	dc.SetRGB255(255, 255, 255)
	dc.DrawStringAnchored("ILI9488", float64(b.Dx())/2, float64(b.Dy())/2, 0.5, 0.5)

	return s.Draw(b, dc.Image(), image.Point{})
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ili9488ctl: %s.\n", err)
		os.Exit(1)
	}
}
