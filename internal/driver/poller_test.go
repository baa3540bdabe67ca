package driver

import (
	"context"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/openmachinelabs/productivity/internal/modbus"
	"github.com/openmachinelabs/productivity/internal/types"
)

func pollerTags() []types.Tag {
	return []types.Tag{
		{Name: "pump_speed", Category: types.CategoryHolding, Address: 400001, TypeCode: "S16", Kind: types.KindInt16, Width: 1},
		{Name: "flow_total", Category: types.CategoryHolding, Address: 400010, TypeCode: "AIS32", Kind: types.KindInt32, Width: 2},
		{Name: "estop_ok", Category: types.CategoryDiscreteInput, Address: 100001, TypeCode: "DI", Kind: types.KindBool, Width: 1},
		{Name: "valve_open", Category: types.CategoryDiscreteOutput, Address: 1, TypeCode: "C", Kind: types.KindBool, Width: 1},
	}
}

func TestPollOnce(t *testing.T) {
	mock := modbus.NewMockTransport()
	_, err := mock.WriteRegister(0, 1500)
	assert.NilError(t, err)
	_, err = mock.WriteRegisters(9, []uint16{0x0001, 0x86A0})
	assert.NilError(t, err)
	mock.SetDiscreteInput(0, true)
	_, err = mock.WriteCoil(0, true)
	assert.NilError(t, err)

	client := newTestClient(t, mock, nil)
	poller := NewPoller(client, pollerTags(), time.Second, nil)
	poller.PollOnce(context.Background())

	want := map[string]Sample{}
	for i := 0; i < len(pollerTags()); i++ {
		select {
		case sample := <-poller.Updates():
			want[sample.Tag.Name] = sample
		default:
			t.Fatalf("missing sample %d", i)
		}
	}

	assert.DeepEqual(t, want["pump_speed"].Words, []uint16{1500})
	assert.DeepEqual(t, want["flow_total"].Words, []uint16{0x0001, 0x86A0})
	assert.DeepEqual(t, want["estop_ok"].Bits, []bool{true})
	assert.DeepEqual(t, want["valve_open"].Bits, []bool{true})
}

func TestPollerStartStop(t *testing.T) {
	client := newTestClient(t, modbus.NewMockTransport(), nil)
	poller := NewPoller(client, pollerTags(), 5*time.Millisecond, nil)

	assert.NilError(t, poller.Start())
	assert.Assert(t, poller.IsRunning())
	// Starting twice is a no-op.
	assert.NilError(t, poller.Start())

	select {
	case sample := <-poller.Updates():
		assert.Assert(t, sample.Tag.Name != "")
	case <-time.After(time.Second):
		t.Fatal("no sample delivered")
	}

	poller.Stop()
	assert.Assert(t, !poller.IsRunning())
}
