// Package serialmux provides an abstraction over the serial port the gauge
// is attached to, with the ability for multiple clients to subscribe to the
// frames it emits and to send commands to the single device.
package serialmux

import (
	"io"
	"time"
)

// Porter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real gauge hardware.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutPorter extends Porter with a read timeout. A finite timeout is
// required for the monitor loop: cancellation is only observed between
// reads, so an infinite blocking read would stall shutdown indefinitely.
type TimeoutPorter interface {
	Porter
	SetReadTimeout(timeout time.Duration) error
}

// DefaultReadTimeout bounds each blocking read, and with it the latency of
// cooperative cancellation.
const DefaultReadTimeout = time.Second

// DefaultTerminator is the frame terminator the gauge uses unless
// configured otherwise.
const DefaultTerminator = "\r\n"
