// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ili9488spi is a container for the ILI9488 3-wire SPI display
// driver and its supporting tools.
//
// The driver itself lives in the ili9488 package. The screen2d package
// renders to a terminal for testing without hardware, and cmd/ili9488ctl
// is an interactive control tool.
package ili9488spi
