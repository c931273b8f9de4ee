package jsonrpc

import (
	"fmt"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
)

func TestFilterWebsocket_EventsPushed(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	mock := &mockWsConn{msgCh: make(chan []byte, 2)}

	fm.NewEventFilter(&EventQuery{
		Types: []vault.EventType{vault.ValueReleased},
	}, mock)

	// dispatch directly, the Run loop is not needed
	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{Type: vault.DepositReceived})))
	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{Type: vault.ValueReleased})))

	select {
	case raw := <-mock.msgCh:
		assert.Contains(t, string(raw), "value-released")
	case <-time.After(time.Second):
		t.Fatal("no update flushed")
	}

	// the deposit event must not have been flushed
	assert.Empty(t, mock.msgCh)
}

func TestFilterWebsocket_MessagesPushed(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	mock := &mockWsConn{msgCh: make(chan []byte, 3)}
	fm.NewMessageFilter(mock)

	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{Type: vault.DepositReceived})))
	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{
		Type:   vault.MessageReceived,
		Nonce:  0,
		Hash:   types.StringToHash("1"),
		Amount: big.NewInt(50),
	})))
	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{
		Type:     vault.MessageAllocated,
		Nonce:    1,
		Hash:     types.StringToHash("2"),
		Target:   types.StringToAddress("9"),
		GasLimit: 21000,
		Amount:   big.NewInt(60),
	})))

	// only the two sequencing events produce message updates
	for i := 0; i < 2; i++ {
		select {
		case raw := <-mock.msgCh:
			assert.Contains(t, string(raw), fmt.Sprintf(`"nonce":"0x%x"`, i))
		case <-time.After(time.Second):
			t.Fatal("no update flushed")
		}
	}

	assert.Empty(t, mock.msgCh)
}

func TestFilterManager_GetEventsForQuery(t *testing.T) {
	store := newMockStore()

	for i := 0; i < 10; i++ {
		typ := vault.DepositReceived
		if i%2 == 1 {
			typ = vault.ValueReleased
		}

		store.addEvent(&vault.Event{
			Type:          typ,
			SourceChainID: uint64(i % 3),
			TokenID:       types.StringToAddress(strconv.Itoa(i % 2)),
		})
	}

	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	t.Run("nil query returns the full log", func(t *testing.T) {
		events, err := fm.GetEventsForQuery(nil)
		require.NoError(t, err)
		assert.Len(t, events, 10)
	})

	t.Run("type criterion", func(t *testing.T) {
		events, err := fm.GetEventsForQuery(&EventQuery{
			Types: []vault.EventType{vault.ValueReleased},
		})
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("chain id matches either end of the transfer", func(t *testing.T) {
		events, err := fm.GetEventsForQuery(&EventQuery{ChainID: uintPtr(1)})
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("token criterion", func(t *testing.T) {
		tokenID := types.StringToAddress("1")

		events, err := fm.GetEventsForQuery(&EventQuery{TokenID: &tokenID})
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		events, err := fm.GetEventsForQuery(&EventQuery{
			fromIndex: uintPtr(2),
			toIndex:   uintPtr(5),
		})
		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, argUint64(2), events[0].Index)
		assert.Equal(t, argUint64(5), events[3].Index)
	})

	t.Run("range past the head truncates", func(t *testing.T) {
		events, err := fm.GetEventsForQuery(&EventQuery{
			fromIndex: uintPtr(8),
			toIndex:   uintPtr(20),
		})
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("incorrect range", func(t *testing.T) {
		_, err := fm.GetEventsForQuery(&EventQuery{
			fromIndex: uintPtr(5),
			toIndex:   uintPtr(2),
		})
		assert.ErrorIs(t, err, ErrIncorrectRange)
	})

	t.Run("range limit exceeded", func(t *testing.T) {
		fmLimited := NewFilterManager(hclog.NewNullLogger(), store, 5)
		defer fmLimited.Close()

		_, err := fmLimited.GetEventsForQuery(&EventQuery{})
		assert.ErrorIs(t, err, ErrEventRangeTooHigh)
	})

	t.Run("empty log", func(t *testing.T) {
		fmEmpty := NewFilterManager(hclog.NewNullLogger(), newMockStore(), 1000)
		defer fmEmpty.Close()

		events, err := fmEmpty.GetEventsForQuery(&EventQuery{})
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestFilterManager_PollEventFilter(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	id := fm.NewEventFilter(&EventQuery{
		Types: []vault.EventType{vault.DepositReceived},
	}, nil)

	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{Type: vault.DepositReceived})))
	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{Type: vault.ValueReleased})))

	res, err := fm.GetFilterChanges(id)
	require.NoError(t, err)

	events, ok := res.([]*event)
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, vault.DepositReceived.String(), events[0].Type)

	// the first poll drained the filter
	res, err = fm.GetFilterChanges(id)
	require.NoError(t, err)

	events, ok = res.([]*event)
	require.True(t, ok)
	assert.Empty(t, events)
}

func TestFilterManager_GetFilterChangesErrors(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	wsID := fm.NewEventFilter(nil, &mockWsConn{msgCh: make(chan []byte, 1)})

	_, err := fm.GetFilterChanges(wsID)
	assert.ErrorIs(t, err, ErrWSFilterDoesNotSupportGetChanges)

	_, err = fm.GetFilterChanges("nonexistent")
	assert.ErrorIs(t, err, ErrFilterNotFound)
}

func TestFilterManager_GetEventFilterFromID(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	query := &EventQuery{Types: []vault.EventType{vault.TokenSwept}}
	id := fm.NewEventFilter(query, nil)

	fltr, err := fm.GetEventFilterFromID(id)
	require.NoError(t, err)
	assert.Equal(t, query, fltr.query)

	msgID := fm.NewMessageFilter(nil)

	_, err = fm.GetEventFilterFromID(msgID)
	assert.ErrorIs(t, err, ErrCastingFilterToEventFilter)
}

func TestFilterManager_RemovesClosedWsConnection(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	id := fm.NewEventFilter(nil, &MockClosedWSConnection{})
	require.True(t, fm.Exists(id))

	require.NoError(t, fm.dispatchEvent(store.addEvent(&vault.Event{Type: vault.DepositReceived})))

	assert.False(t, fm.Exists(id))
}

func TestFilterManager_RemoveFilterByWs(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	defer fm.Close()

	mock := &mockWsConn{msgCh: make(chan []byte, 1)}
	id := fm.NewMessageFilter(mock)
	require.Equal(t, id, mock.GetFilterID())

	fm.RemoveFilterByWs(mock)
	assert.False(t, fm.Exists(id))
}

func TestFilterManager_TimeoutUninstallsFilter(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)
	fm.timeout = 100 * time.Millisecond

	go fm.Run()
	defer fm.Close()

	id := fm.NewEventFilter(nil, nil)
	require.True(t, fm.Exists(id))

	assert.Eventually(t, func() bool {
		return !fm.Exists(id)
	}, 2*time.Second, 50*time.Millisecond)
}

func TestFilterManager_RunStreamsSubscribedEvents(t *testing.T) {
	store := newMockStore()
	fm := NewFilterManager(hclog.NewNullLogger(), store, 1000)

	go fm.Run()
	defer fm.Close()

	id := fm.NewEventFilter(nil, nil)

	store.emitEvent(&vault.Event{Type: vault.DepositReceived})

	assert.Eventually(t, func() bool {
		res, err := fm.GetFilterChanges(id)
		if err != nil {
			return false
		}

		events, ok := res.([]*event)

		return ok && len(events) == 1
	}, 2*time.Second, 50*time.Millisecond)
}
