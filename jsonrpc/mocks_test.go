package jsonrpc

import (
	"math/big"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/0xPolygon/edge-vault/vault"
)

// mockVaultStore keeps events and messages in plain slices and maps.
// Everything JSONRPCStore requires but a test never touches panics
// through the embedded nil interface.
type mockVaultStore struct {
	JSONRPCStore

	lock         sync.Mutex
	subscription *vault.MockSubscription
	events       []*vault.Event
	messages     map[uint64]*vault.Message
}

func newMockStore() *mockVaultStore {
	return &mockVaultStore{
		subscription: vault.NewMockSubscription(),
		messages:     map[uint64]*vault.Message{},
	}
}

// addEvent appends the event to the log without streaming it
func (m *mockVaultStore) addEvent(evnt *vault.Event) *vault.Event {
	m.lock.Lock()
	defer m.lock.Unlock()

	if evnt.Amount == nil {
		evnt.Amount = new(big.Int)
	}

	if evnt.Fee == nil {
		evnt.Fee = new(big.Int)
	}

	evnt.Index = uint64(len(m.events))
	m.events = append(m.events, evnt)

	return evnt
}

// emitEvent appends the event and streams it to the subscription. The
// push blocks until a running FilterManager consumes it.
func (m *mockVaultStore) emitEvent(evnt *vault.Event) *vault.Event {
	evnt = m.addEvent(evnt)
	m.subscription.Push(evnt)

	return evnt
}

func (m *mockVaultStore) addMessage(msg *vault.Message) *vault.Message {
	m.lock.Lock()
	defer m.lock.Unlock()

	if msg.Amount == nil {
		msg.Amount = new(big.Int)
	}

	m.messages[msg.Nonce] = msg

	return msg
}

func (m *mockVaultStore) SubscribeEvents() vault.Subscription {
	return m.subscription
}

func (m *mockVaultStore) GetEventCount() uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	return uint64(len(m.events))
}

func (m *mockVaultStore) GetEvent(index uint64) (*vault.Event, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if index >= uint64(len(m.events)) {
		return nil, false, nil
	}

	return m.events[index], true, nil
}

func (m *mockVaultStore) GetMessage(ordinal uint64) (*vault.Message, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	msg, ok := m.messages[ordinal]
	if !ok {
		return nil, false, nil
	}

	return msg, true, nil
}

type mockWsConn struct {
	msgCh    chan []byte
	filterID string
}

func (m *mockWsConn) SetFilterID(filterID string) {
	m.filterID = filterID
}

func (m *mockWsConn) GetFilterID() string {
	return m.filterID
}

func (m *mockWsConn) WriteMessage(messageType int, data []byte) error {
	m.msgCh <- data

	return nil
}

// MockClosedWSConnection fails every write as if the peer hung up
type MockClosedWSConnection struct{}

func (m *MockClosedWSConnection) SetFilterID(string) {}

func (m *MockClosedWSConnection) GetFilterID() string {
	return ""
}

func (m *MockClosedWSConnection) WriteMessage(_ int, _ []byte) error {
	return websocket.ErrCloseSent
}
