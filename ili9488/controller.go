// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

import "time"

// controller is the write surface used by the sequencing helpers.
// errorHandler is the hardware implementation; tests substitute a
// recorder.
type controller interface {
	// sendCommand transmits one command word and its parameter data
	// words as one bus transaction.
	sendCommand(cmd byte, data ...byte)
	// sendData transmits a batch of data words as one bus transaction.
	sendData(data []byte)
	// settle waits for the controller between bring-up steps.
	settle(time.Duration)
}

// initStep is one entry of the bring-up sequence: a command, its
// parameters and the minimum settle time before the next step may
// begin.
type initStep struct {
	cmd   byte
	data  []byte
	delay time.Duration
}

// initSteps builds the bring-up sequence for the given configuration.
// The hardware reset precedes these steps; it is handled by Dev.Init.
func initSteps(opts *Opts) []initStep {
	steps := []initStep{
		{swReset, nil, 150 * time.Millisecond},
		{sleepOut, nil, 120 * time.Millisecond},
		{pixelFormatSet, []byte{opts.Format.colmod()}, 10 * time.Millisecond},
		// MY=0, MX=0, MV=0, ML=0, BGR=1, MH=0
		{memAccessCtl, []byte{0x48}, 10 * time.Millisecond},
	}
	if opts.Inversion {
		steps = append(steps, initStep{inversionOn, nil, 10 * time.Millisecond})
	}
	return append(steps,
		initStep{normalModeOn, nil, 10 * time.Millisecond},
		initStep{displayOn, nil, 50 * time.Millisecond},
	)
}

// initDisplay sends the bring-up command sequence. A transport failure
// makes the remaining steps no-ops; the error stays with the
// controller.
func initDisplay(ctrl controller, opts *Opts) {
	for _, s := range initSteps(opts) {
		ctrl.sendCommand(s.cmd, s.data...)
		ctrl.settle(s.delay)
	}
}

// window is the inclusive target rectangle of a memory write.
type window struct {
	x0, y0, x1, y1 int
}

// pixels is the exact number of pixels the controller expects after
// the memory write command for this window.
func (w window) pixels() int {
	return (w.x1 - w.x0 + 1) * (w.y1 - w.y0 + 1)
}

// setWindow arms the controller to accept exactly w.pixels() pixels:
// column address set, page address set, then the memory write command.
// The caller validates w against the display bounds first. A failure
// mid-sequence can leave partial window state on the controller; it is
// not rolled back.
func setWindow(ctrl controller, w window) {
	ctrl.sendCommand(columnAddrSet,
		byte(w.x0>>8), byte(w.x0),
		byte(w.x1>>8), byte(w.x1))
	ctrl.sendCommand(pageAddrSet,
		byte(w.y0>>8), byte(w.y0),
		byte(w.y1>>8), byte(w.y1))
	ctrl.sendCommand(memoryWrite)
}

// streamPixels emits exactly count pixels of c in the given format,
// split into transactions of at most chunkWords transfer words. The
// chunking is invisible to the controller: it samples one continuous
// stream following the armed memory write.
func streamPixels(ctrl controller, f PixelFormat, count int, c Color, chunkWords int) {
	if count <= 0 {
		return
	}
	wpp := f.wordsPerPixel()
	perChunk := chunkWords / wpp
	if perChunk < 1 {
		perChunk = 1
	}
	if perChunk > count {
		perChunk = count
	}
	chunk := make([]byte, 0, perChunk*wpp)
	for i := 0; i < perChunk; i++ {
		chunk = f.appendPixel(chunk, c)
	}
	for count > 0 {
		n := perChunk
		if count < n {
			n = count
		}
		ctrl.sendData(chunk[:n*wpp])
		count -= n
	}
}
