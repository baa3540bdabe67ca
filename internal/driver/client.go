package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openmachinelabs/productivity/internal/addressing"
	"github.com/openmachinelabs/productivity/internal/modbus"
	"github.com/openmachinelabs/productivity/internal/types"
)

// ConnectionState tracks the single connection owned by a Client.
type ConnectionState int32

const (
	StateUnconnected ConnectionState = iota
	StateConnecting
	StateReady
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unconnected"
}

const (
	// MaxReadChunk is the protocol ceiling for one register read
	// (250 payload bytes, 125 words).
	MaxReadChunk = 125
	// WriteChunk is the per-transaction ceiling for register writes; the
	// write payload budget is half the read budget.
	WriteChunk = 62
)

// Client executes tag reads and writes against one PLC connection. It owns
// the connection lifecycle, guarantees at most one transaction is in flight
// at a time and splits oversized register spans into protocol-legal chunks.
//
// Construction starts connecting in the background; every operation waits
// for that to settle before touching the transport. After a failed connect
// the client stays failed, callers retry by constructing a new one.
type Client struct {
	ID        uuid.UUID
	transport modbus.Transport
	tags      map[int]types.Tag // absolute start address -> tag
	timeout   time.Duration
	logger    *zap.Logger

	// mu serializes transactions. The PLC silently drops a request that
	// arrives while another is outstanding, so exclusivity is a
	// correctness requirement, not an optimization.
	mu          sync.Mutex
	state       atomic.Int32
	connectDone chan struct{}
	connectErr  error
}

// New creates a client over the given transport and launches the connect in
// the background. tagIndex maps absolute tag start addresses to their tags
// and may be nil when no tag database is loaded; it is only consulted to
// keep chunk boundaries off 32-bit values.
func New(transport modbus.Transport, tagIndex map[int]types.Tag, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	c := &Client{
		ID:          uuid.New(),
		transport:   transport,
		tags:        tagIndex,
		timeout:     timeout,
		logger:      logger,
		connectDone: make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	go c.connect()
	return c
}

func (c *Client) connect() {
	defer close(c.connectDone)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.transport.Connect(ctx); err != nil {
		if !errors.Is(err, modbus.ErrNotConnected) {
			err = fmt.Errorf("%w: %v", modbus.ErrNotConnected, err)
		}
		c.connectErr = err
		c.state.Store(int32(StateFailed))
		c.logger.Error("PLC connect failed",
			zap.String("client", c.ID.String()),
			zap.Error(err))
		return
	}
	c.state.Store(int32(StateReady))
	c.logger.Info("PLC connection ready", zap.String("client", c.ID.String()))
}

// State reports the connection lifecycle state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// acquire waits for the startup connect to settle, then takes the
// transaction lock. Callers must unlock c.mu when the transaction is done.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case <-c.connectDone:
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", modbus.ErrNotConnected, ctx.Err())
	}
	if c.connectErr != nil {
		return c.connectErr
	}
	c.mu.Lock()
	return nil
}

// Close releases the transport connection. Safe once in-flight calls have
// drained; it does not cancel a transaction already on the wire.
func (c *Client) Close() error {
	<-c.connectDone
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport.Close()
}

// ReadCoils reads count output coil states starting at the 0-based wire
// address. Coil spans are never chunked, one transaction per call.
func (c *Client) ReadCoils(ctx context.Context, address, count uint16) ([]bool, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()
	return c.transport.ReadCoils(address, count)
}

// ReadDiscreteInputs reads count discrete input states starting at the
// 0-based wire address.
func (c *Client) ReadDiscreteInputs(ctx context.Context, address, count uint16) ([]bool, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()
	return c.transport.ReadDiscreteInputs(address, count)
}

// ReadRegisters reads count register words starting at the 0-based wire
// address, splitting the span into at most maxChunk-word transactions.
// When the boundary between two chunks would fall inside a 32-bit tag, the
// leading chunk is shortened by one word so no logical value is torn across
// two requests. Results come back concatenated in address order, exactly
// count words long.
func (c *Client) ReadRegisters(ctx context.Context, address, count int, category types.Category, maxChunk int) ([]uint16, error) {
	if maxChunk > MaxReadChunk {
		return nil, types.NewConfigError("read_registers",
			"maximum of %d registers can be read in one request", MaxReadChunk)
	}
	if maxChunk <= 0 {
		maxChunk = MaxReadChunk
	}
	if category != types.CategoryHolding && category != types.CategoryInput {
		return nil, types.NewConfigError("read_registers",
			"register category %q not in [%s %s]", category, types.CategoryHolding, types.CategoryInput)
	}
	base, _ := addressing.BaseOffset(category)

	registers := make([]uint16, 0, count)
	for count > maxChunk {
		// The tag index is keyed by 1-based absolute addresses, so this
		// lookup hits exactly when a two-word tag starts at the last word
		// of the chunk and would be torn by the split.
		n := maxChunk
		if tag, ok := c.tags[base+address+maxChunk]; ok && tag.Width == 2 {
			n--
			c.logger.Debug("shortened read chunk at 32-bit tag boundary",
				zap.String("tag", tag.Name),
				zap.Int("address", address))
		}
		chunk, err := c.readRegisterChunk(ctx, category, uint16(address), uint16(n))
		if err != nil {
			return nil, err
		}
		registers = append(registers, chunk...)
		address += n
		count -= n
	}
	chunk, err := c.readRegisterChunk(ctx, category, uint16(address), uint16(count))
	if err != nil {
		return nil, err
	}
	return append(registers, chunk...), nil
}

func (c *Client) readRegisterChunk(ctx context.Context, category types.Category, address, count uint16) ([]uint16, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()
	if category == types.CategoryInput {
		return c.transport.ReadInputRegisters(address, count)
	}
	return c.transport.ReadHoldingRegisters(address, count)
}

// WriteCoil writes one output coil.
func (c *Client) WriteCoil(ctx context.Context, address uint16, value bool) (modbus.WriteResponse, error) {
	if err := c.acquire(ctx); err != nil {
		return modbus.WriteResponse{}, err
	}
	defer c.mu.Unlock()
	return c.transport.WriteCoil(address, value)
}

// WriteCoils writes consecutive output coils in one transaction.
func (c *Client) WriteCoils(ctx context.Context, address uint16, values []bool) (modbus.WriteResponse, error) {
	if err := c.acquire(ctx); err != nil {
		return modbus.WriteResponse{}, err
	}
	defer c.mu.Unlock()
	return c.transport.WriteCoils(address, values)
}

// WriteRegister writes one holding register.
func (c *Client) WriteRegister(ctx context.Context, address, value uint16) (modbus.WriteResponse, error) {
	if err := c.acquire(ctx); err != nil {
		return modbus.WriteResponse{}, err
	}
	defer c.mu.Unlock()
	return c.transport.WriteRegister(address, value)
}

// WriteRegisters writes a span of register words starting at the 0-based
// wire address, in chunks of at most WriteChunk words. The address advances
// by exactly the words written per chunk, so words and addresses stay 1:1;
// callers writing two-word tags pass both words in values. Returns one
// acknowledgement per chunk, in address order. A failure mid-span aborts
// the whole call.
func (c *Client) WriteRegisters(ctx context.Context, address uint16, values []uint16) ([]modbus.WriteResponse, error) {
	responses := make([]modbus.WriteResponse, 0, len(values)/WriteChunk+1)
	for len(values) > WriteChunk {
		resp, err := c.writeRegisterChunk(ctx, address, values[:WriteChunk])
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
		address += WriteChunk
		values = values[WriteChunk:]
	}
	resp, err := c.writeRegisterChunk(ctx, address, values)
	if err != nil {
		return nil, err
	}
	return append(responses, resp), nil
}

func (c *Client) writeRegisterChunk(ctx context.Context, address uint16, values []uint16) (modbus.WriteResponse, error) {
	if err := c.acquire(ctx); err != nil {
		return modbus.WriteResponse{}, err
	}
	defer c.mu.Unlock()
	return c.transport.WriteRegisters(address, values)
}
