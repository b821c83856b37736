package serialmux

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
)

var ErrWriteFailed = fmt.Errorf("failed to write to serial port")

// LineMux reads terminator-delimited frames from a single serial port and
// fans them out to any number of subscribers. Commands can be written back
// to the device through the same port.
type LineMux struct {
	port         Porter
	terminator   []byte
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	commandMu    sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// NewLineMux creates a LineMux on the given port. An empty terminator
// selects DefaultTerminator (CR+LF).
func NewLineMux(port Porter, terminator string) *LineMux {
	if terminator == "" {
		terminator = DefaultTerminator
	}
	return &LineMux{
		port:        port,
		terminator:  []byte(terminator),
		subscribers: make(map[string]chan string),
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe creates a new channel for receiving frames from the serial
// port. The returned ID identifies the channel when unsubscribing.
func (m *LineMux) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string, 16)
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	m.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber from the mux and closes its channel.
func (m *LineMux) Unsubscribe(id string) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	if ch, ok := m.subscribers[id]; ok {
		close(ch)
		delete(m.subscribers, id)
	}
}

// Send writes the provided command to the serial port, appending the frame
// terminator when missing.
func (m *LineMux) Send(command string) error {
	m.commandMu.Lock()
	defer m.commandMu.Unlock()

	payload := []byte(command)
	if !bytes.HasSuffix(payload, m.terminator) {
		payload = append(payload, m.terminator...)
	}
	n, err := m.port.Write(payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return ErrWriteFailed
	}
	return nil
}

// Monitor reads frames from the serial port and delivers them to
// subscribers until the context is cancelled, the stream ends, or the port
// fails. The port must have a finite read timeout: the stop conditions are
// consulted once per read, so the timeout bounds the cancellation latency.
// Reads that return no data (a timeout expiry) simply loop again.
func (m *LineMux) Monitor(ctx context.Context) error {
	buf := make([]byte, 256)
	var pending []byte

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.isClosing() {
			return nil
		}

		n, err := m.port.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				frame, rest, ok := cutFrame(pending, m.terminator)
				if !ok {
					break
				}
				pending = rest
				m.broadcast(string(frame))
			}
		}
		if err != nil {
			if err == io.EOF {
				// flush a trailing unterminated frame before reporting
				// a clean end of stream
				if len(pending) > 0 {
					m.broadcast(string(pending))
				}
				return nil
			}
			return err
		}
	}
}

// Close closes all subscribed channels and the underlying port. A running
// Monitor observes the closing flag on its next iteration.
func (m *LineMux) Close() error {
	m.closingMu.Lock()
	m.closing = true
	m.closingMu.Unlock()

	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for id, ch := range m.subscribers {
		close(ch)
		delete(m.subscribers, id)
	}
	return m.port.Close()
}

func (m *LineMux) isClosing() bool {
	m.closingMu.Lock()
	defer m.closingMu.Unlock()
	return m.closing
}

func (m *LineMux) broadcast(frame string) {
	if m.isClosing() {
		return
	}
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- frame:
		default:
			// skip a full subscriber so one slow consumer cannot stall
			// the read loop
		}
	}
}

// cutFrame splits pending at the first terminator. ok is false when no
// complete frame is buffered yet.
func cutFrame(pending, terminator []byte) (frame, rest []byte, ok bool) {
	i := bytes.Index(pending, terminator)
	if i < 0 {
		return nil, pending, false
	}
	return pending[:i], pending[i+len(terminator):], true
}
