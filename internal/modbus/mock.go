package modbus

import (
	"context"
	"encoding/binary"
)

// MockTransport emulates a PLC against in-process storage so the layers
// above are exercised identically with or without hardware. Registers are
// stored as 2-byte big-endian cells, matching the wire layout; holding and
// input registers share one data area. Any address never written reads as
// false or zero, like a freshly powered device.
//
// MockTransport itself is not safe for concurrent use; the driver's
// transaction lock is what keeps access serialized.
type MockTransport struct {
	coils          map[uint16]bool
	discreteInputs map[uint16]bool
	registers      map[uint16][2]byte
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		coils:          make(map[uint16]bool),
		discreteInputs: make(map[uint16]bool),
		registers:      make(map[uint16][2]byte),
	}
}

func (m *MockTransport) Connect(ctx context.Context) error { return nil }

func (m *MockTransport) Close() error { return nil }

func (m *MockTransport) ReadCoils(address, count uint16) ([]bool, error) {
	values := make([]bool, count)
	for i := uint16(0); i < count; i++ {
		values[i] = m.coils[address+i]
	}
	return values, nil
}

func (m *MockTransport) ReadDiscreteInputs(address, count uint16) ([]bool, error) {
	values := make([]bool, count)
	for i := uint16(0); i < count; i++ {
		values[i] = m.discreteInputs[address+i]
	}
	return values, nil
}

func (m *MockTransport) ReadHoldingRegisters(address, count uint16) ([]uint16, error) {
	values := make([]uint16, count)
	for i := uint16(0); i < count; i++ {
		cell := m.registers[address+i]
		values[i] = binary.BigEndian.Uint16(cell[:])
	}
	return values, nil
}

func (m *MockTransport) ReadInputRegisters(address, count uint16) ([]uint16, error) {
	return m.ReadHoldingRegisters(address, count)
}

func (m *MockTransport) WriteCoil(address uint16, value bool) (WriteResponse, error) {
	m.coils[address] = value
	return WriteResponse{Address: address, Count: 1}, nil
}

func (m *MockTransport) WriteCoils(address uint16, values []bool) (WriteResponse, error) {
	for i, v := range values {
		m.coils[address+uint16(i)] = v
	}
	return WriteResponse{Address: address, Count: uint16(len(values))}, nil
}

func (m *MockTransport) WriteRegister(address, value uint16) (WriteResponse, error) {
	var cell [2]byte
	binary.BigEndian.PutUint16(cell[:], value)
	m.registers[address] = cell
	return WriteResponse{Address: address, Count: 1}, nil
}

func (m *MockTransport) WriteRegisters(address uint16, values []uint16) (WriteResponse, error) {
	for i, v := range values {
		var cell [2]byte
		binary.BigEndian.PutUint16(cell[:], v)
		m.registers[address+uint16(i)] = cell
	}
	return WriteResponse{Address: address, Count: uint16(len(values))}, nil
}

// SetDiscreteInput seeds a read-only input point, something only the field
// wiring can do on a real device.
func (m *MockTransport) SetDiscreteInput(address uint16, value bool) {
	m.discreteInputs[address] = value
}
