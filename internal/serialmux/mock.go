package serialmux

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"
)

// MockPort implements TimeoutPorter with configurable behaviour for testing
// without gauge hardware. Reads drain a buffer that tests fill with
// AddReadData; an empty buffer behaves like a read timeout and returns no
// data, matching a real serial port with a finite read timeout.
type MockPort struct {
	mu sync.Mutex

	readBuffer  bytes.Buffer
	writeBuffer bytes.Buffer

	// ReadError is returned by the next Read call if set
	ReadError error

	// WriteError is returned by the next Write call if set
	WriteError error

	// CloseError is returned by Close if set
	CloseError error

	// EOFWhenDrained makes Read report io.EOF once the buffer is empty,
	// simulating the device hanging up.
	EOFWhenDrained bool

	closed      bool
	readTimeout time.Duration
}

// NewMockPort creates a MockPort with an empty read buffer.
func NewMockPort() *MockPort {
	return &MockPort{}
}

// AddReadData appends data to be returned by subsequent Read calls.
func (p *MockPort) AddReadData(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readBuffer.Write(data)
}

// Read drains the read buffer. With no buffered data it reports (0, nil)
// like a timed-out serial read, or io.EOF when EOFWhenDrained is set.
func (p *MockPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, errors.New("serial port closed")
	}
	if p.ReadError != nil {
		err := p.ReadError
		p.ReadError = nil
		return 0, err
	}
	if p.readBuffer.Len() == 0 {
		if p.EOFWhenDrained {
			return 0, io.EOF
		}
		return 0, nil
	}
	return p.readBuffer.Read(buf)
}

// Write captures data written to the port.
func (p *MockPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, errors.New("serial port closed")
	}
	if p.WriteError != nil {
		err := p.WriteError
		p.WriteError = nil
		return 0, err
	}
	return p.writeBuffer.Write(data)
}

// Close marks the port as closed.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.CloseError
}

// Closed reports whether Close was called.
func (p *MockPort) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// SetReadTimeout implements TimeoutPorter.
func (p *MockPort) SetReadTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = timeout
	return nil
}

// WrittenData returns all data written to the port.
func (p *MockPort) WrittenData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.writeBuffer.Bytes()...)
}

// PipePort is a Porter fed through an in-process pipe. The simulator writes
// frames to the returned writer and the session reads them exactly as it
// would from real hardware.
type PipePort struct {
	r *io.PipeReader
	w *io.PipeWriter
}

// NewPipePort creates a connected PipePort and the writer that feeds it.
func NewPipePort() (*PipePort, *io.PipeWriter) {
	r, w := io.Pipe()
	return &PipePort{r: r, w: w}, w
}

// Read reads frames written to the feeding end.
func (p *PipePort) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if err == io.ErrClosedPipe {
		err = io.EOF
	}
	return n, err
}

// Write discards commands; the simulated device has nobody listening.
func (p *PipePort) Write(data []byte) (int, error) {
	return len(data), nil
}

// Close closes both pipe ends, unblocking the feeder and the reader.
func (p *PipePort) Close() error {
	p.w.Close()
	return p.r.Close()
}
