package transport

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the ZNP UART default.
const DefaultBaudRate = 115200

// ErrOpenPort is returned when the serial device cannot be opened.
var ErrOpenPort = errors.New("cannot open serial port")

// SerialConfig selects the serial device.
type SerialConfig struct {
	Port     string
	BaudRate int
}

// Open opens the serial port 8N1 and starts a link over it.
func Open(sc SerialConfig, config LinkConfig) (*Link, error) {
	if sc.BaudRate <= 0 {
		sc.BaudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: sc.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(sc.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpenPort, sc.Port, err)
	}

	// USB CDC ACM: assert DTR/RTS for the coprocessor firmware.
	_ = port.SetDTR(true)
	_ = port.SetRTS(true)

	config.Port = sc.Port
	return NewLink(port, config), nil
}

// ListPorts returns the serial devices present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
