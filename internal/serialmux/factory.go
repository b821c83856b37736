package serialmux

import (
	"fmt"

	"go.bug.st/serial"
)

// Open opens a real serial port at the given path using the provided
// options, with the read timeout applied. The returned port satisfies
// TimeoutPorter.
func Open(path string, opts PortOptions) (serial.Port, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	mode, err := normalized.Mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}

	if err := port.SetReadTimeout(normalized.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}

	return port, nil
}

// ListPorts enumerates the serial port device paths present on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
