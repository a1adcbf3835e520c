// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9488

import "time"

// errorHandler is a sticky-error wrapper around the device's send
// path. After the first failed transfer every further call is a no-op
// and err holds the original transport error, unchanged.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) sendCommand(cmd byte, data ...byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.sendCommand(cmd, data...)
}

func (eh *errorHandler) sendData(data []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.sendData(data)
}

func (eh *errorHandler) settle(dur time.Duration) {
	if eh.err != nil {
		return
	}
	time.Sleep(dur)
}
