package modbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	gomodbus "github.com/goburrow/modbus"
)

// TCPConfig holds the connection parameters for a real PLC.
type TCPConfig struct {
	Address string // host:port
	UnitID  byte
	Timeout time.Duration
}

// TCPTransport adapts the goburrow Modbus TCP client to the Transport
// interface. Frame encoding and socket handling live entirely in the
// library; this adapter only converts payload bytes to typed values and
// normalizes link failures.
type TCPTransport struct {
	handler *gomodbus.TCPClientHandler
	client  gomodbus.Client
}

func NewTCPTransport(cfg TCPConfig) *TCPTransport {
	handler := gomodbus.NewTCPClientHandler(cfg.Address)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID
	return &TCPTransport{
		handler: handler,
		client:  gomodbus.NewClient(handler),
	}
}

func (t *TCPTransport) Connect(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- t.handler.Connect() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNotConnected, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNotConnected, ctx.Err())
	}
}

func (t *TCPTransport) Close() error {
	return t.handler.Close()
}

func (t *TCPTransport) ReadCoils(address, count uint16) ([]bool, error) {
	data, err := t.client.ReadCoils(address, count)
	if err != nil {
		return nil, classify(err)
	}
	return unpackBits(data, count), nil
}

func (t *TCPTransport) ReadDiscreteInputs(address, count uint16) ([]bool, error) {
	data, err := t.client.ReadDiscreteInputs(address, count)
	if err != nil {
		return nil, classify(err)
	}
	return unpackBits(data, count), nil
}

func (t *TCPTransport) ReadHoldingRegisters(address, count uint16) ([]uint16, error) {
	data, err := t.client.ReadHoldingRegisters(address, count)
	if err != nil {
		return nil, classify(err)
	}
	return unpackWords(data), nil
}

func (t *TCPTransport) ReadInputRegisters(address, count uint16) ([]uint16, error) {
	data, err := t.client.ReadInputRegisters(address, count)
	if err != nil {
		return nil, classify(err)
	}
	return unpackWords(data), nil
}

func (t *TCPTransport) WriteCoil(address uint16, value bool) (WriteResponse, error) {
	state := uint16(0x0000)
	if value {
		state = 0xFF00
	}
	if _, err := t.client.WriteSingleCoil(address, state); err != nil {
		return WriteResponse{}, classify(err)
	}
	return WriteResponse{Address: address, Count: 1}, nil
}

func (t *TCPTransport) WriteCoils(address uint16, values []bool) (WriteResponse, error) {
	if _, err := t.client.WriteMultipleCoils(address, uint16(len(values)), packBits(values)); err != nil {
		return WriteResponse{}, classify(err)
	}
	return WriteResponse{Address: address, Count: uint16(len(values))}, nil
}

func (t *TCPTransport) WriteRegister(address, value uint16) (WriteResponse, error) {
	if _, err := t.client.WriteSingleRegister(address, value); err != nil {
		return WriteResponse{}, classify(err)
	}
	return WriteResponse{Address: address, Count: 1}, nil
}

func (t *TCPTransport) WriteRegisters(address uint16, values []uint16) (WriteResponse, error) {
	if _, err := t.client.WriteMultipleRegisters(address, uint16(len(values)), packWords(values)); err != nil {
		return WriteResponse{}, classify(err)
	}
	return WriteResponse{Address: address, Count: uint16(len(values))}, nil
}

// classify keeps Modbus exception responses as-is and folds every
// link-level failure into ErrNotConnected.
func classify(err error) error {
	var mbErr *gomodbus.ModbusError
	if errors.As(err, &mbErr) {
		// The device answered; this is a protocol exception, not a link
		// problem.
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return err
}
