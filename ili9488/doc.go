// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ili9488 controls an ILI9488 TFT panel wired in 3-wire SPI
// mode.
//
// In this mode (IM[2:0]=101) there is no D/C line: every byte travels
// as a 9-bit word whose leading bit marks it as command or data. The
// driver supports SPI masters that clock 9-bit words natively and, as
// the default, a two-byte software emulation for plain 8-bit masters.
//
// Pixel data is either 3-bit indexed color (8 colors, one word per
// pixel) or RGB565 (two words per pixel, high byte first), selected at
// configuration time.
//
// # Datasheet
//
// https://www.hpinfotech.ro/ILI9488.pdf
package ili9488
