package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
)

func TestEvent_RLPRoundtrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		event *Event
	}{
		{
			name: "deposit",
			event: &Event{
				Index:         7,
				Type:          DepositReceived,
				SourceChainID: 100,
				DestChainID:   10,
				From:          types.StringToAddress("0x1"),
				To:            types.StringToAddress("0x2"),
				TokenID:       addrTokenX,
				Amount:        big.NewInt(150),
				Fee:           big.NewInt(1),
			},
		},
		{
			name: "forwarded message",
			event: &Event{
				Index:    9,
				Type:     MessageAllocated,
				From:     types.StringToAddress("0x1"),
				To:       types.StringToAddress("0x2"),
				Target:   types.StringToAddress("0x3"),
				Amount:   big.NewInt(0),
				Fee:      big.NewInt(0),
				GasLimit: 100000,
				Nonce:    4,
				Hash:     types.StringToHash("0xdeadbeef"),
			},
		},
		{
			name: "config change",
			event: &Event{
				Type:   ConfigChanged,
				Amount: big.NewInt(0),
				Fee:    big.NewInt(0),
				Op:     "setFeeRate",
				Args:   []byte{0x1, 0x2, 0x3},
			},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			decoded := &Event{}
			require.NoError(t, decoded.UnmarshalRLP(c.event.MarshalRLP()))

			assert.Equal(t, c.event, decoded)
		})
	}
}

func TestEvent_RLPNilAmounts(t *testing.T) {
	t.Parallel()

	// emitted events are normalized before encoding
	event := &Event{Type: ConfigChanged, Op: "setChainWhitelist"}

	decoded := &Event{}
	require.NoError(t, decoded.UnmarshalRLP(event.MarshalRLP()))

	assert.Equal(t, big.NewInt(0), decoded.Amount)
	assert.Equal(t, big.NewInt(0), decoded.Fee)
}

func TestEvent_UnmarshalInvalid(t *testing.T) {
	t.Parallel()

	decoded := &Event{}

	assert.Error(t, decoded.UnmarshalRLP([]byte{}))
	assert.Error(t, decoded.UnmarshalRLP([]byte{0xc1, 0x1}))
}

func TestEventType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "deposit-received", DepositReceived.String())
	assert.Equal(t, "config-changed", ConfigChanged.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestEventStream_Subscription(t *testing.T) {
	t.Parallel()

	stream := newEventStream()
	sub := stream.subscribe()
	defer sub.Close()

	for i := uint64(0); i < 3; i++ {
		stream.push(&Event{Index: i, Type: DepositReceived})
	}

	for i := uint64(0); i < 3; i++ {
		evnt := sub.GetEvent()
		require.NotNil(t, evnt)
		assert.Equal(t, i, evnt.Index)
	}
}

func TestEventStream_LateSubscriber(t *testing.T) {
	t.Parallel()

	stream := newEventStream()
	stream.push(&Event{Index: 0})

	// a subscriber only sees events emitted after it subscribed
	sub := stream.subscribe()
	defer sub.Close()

	stream.push(&Event{Index: 1})

	evnt := sub.GetEvent()
	require.NotNil(t, evnt)
	assert.Equal(t, uint64(1), evnt.Index)
}

func TestEventStream_CloseUnblocksReader(t *testing.T) {
	t.Parallel()

	stream := newEventStream()
	sub := stream.subscribe()

	done := make(chan struct{})

	go func() {
		assert.Nil(t, sub.GetEvent())
		close(done)
	}()

	sub.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reader did not unblock on close")
	}
}
