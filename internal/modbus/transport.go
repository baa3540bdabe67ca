package modbus

import (
	"context"
	"errors"
)

// ErrNotConnected reports that the PLC link is down or that a transaction
// timed out. Connect failures and per-request timeouts both normalize to
// this condition; callers decide whether to retry.
var ErrNotConnected = errors.New("not connected to PLC")

// ErrUnsupported reports an operation the active transport does not
// implement. Fatal to the call only.
var ErrUnsupported = errors.New("unsupported operation")

// WriteResponse acknowledges a completed write with the address written and
// the number of points affected.
type WriteResponse struct {
	Address uint16
	Count   uint16
}

// Transport performs one Modbus transaction per call, one method per
// protocol function code. Implementations do not serialize callers; the
// driver above guarantees at most one call is in flight at a time.
type Transport interface {
	Connect(ctx context.Context) error
	Close() error

	ReadCoils(address, count uint16) ([]bool, error)
	ReadDiscreteInputs(address, count uint16) ([]bool, error)
	ReadHoldingRegisters(address, count uint16) ([]uint16, error)
	ReadInputRegisters(address, count uint16) ([]uint16, error)
	WriteCoil(address uint16, value bool) (WriteResponse, error)
	WriteCoils(address uint16, values []bool) (WriteResponse, error)
	WriteRegister(address, value uint16) (WriteResponse, error)
	WriteRegisters(address uint16, values []uint16) (WriteResponse, error)
}
