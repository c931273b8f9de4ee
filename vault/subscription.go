package vault

import (
	"sync"
)

// Subscription is a reader over the vault event stream. Events arrive
// in emission order; a subscriber only observes events emitted after it
// subscribed.
type Subscription interface {
	GetEventCh() chan *Event
	GetEvent() *Event
	Close()
}

// MockSubscription is a subscription fed by hand, used in tests
type MockSubscription struct {
	eventCh chan *Event
}

func NewMockSubscription() *MockSubscription {
	return &MockSubscription{eventCh: make(chan *Event)}
}

func (m *MockSubscription) Push(e *Event) {
	m.eventCh <- e
}

func (m *MockSubscription) GetEventCh() chan *Event {
	return m.eventCh
}

func (m *MockSubscription) GetEvent() *Event {
	evnt := <-m.eventCh

	return evnt
}

func (m *MockSubscription) Close() {
}

type subscription struct {
	updateCh chan struct{}
	closeCh  chan struct{}
	elem     *eventElem
}

func (s *subscription) GetEventCh() chan *Event {
	eventCh := make(chan *Event)

	go func() {
		for {
			evnt := s.GetEvent()
			if evnt == nil {
				return
			}
			eventCh <- evnt
		}
	}()

	return eventCh
}

func (s *subscription) GetEvent() *Event {
	for {
		if s.elem.next != nil {
			s.elem = s.elem.next
			evnt := s.elem.event

			return evnt
		}

		// wait for an update
		select {
		case <-s.updateCh:
			continue
		case <-s.closeCh:
			return nil
		}
	}
}

func (s *subscription) Close() {
	close(s.closeCh)
}

type eventElem struct {
	event *Event
	next  *eventElem
}

type eventStream struct {
	lock sync.Mutex
	head *eventElem

	// channels to notify updates
	updateCh []chan struct{}
}

func newEventStream() *eventStream {
	return &eventStream{
		head: &eventElem{},
	}
}

func (e *eventStream) subscribe() *subscription {
	head, updateCh := e.Head()

	return &subscription{
		elem:     head,
		updateCh: updateCh,
		closeCh:  make(chan struct{}),
	}
}

func (e *eventStream) Head() (*eventElem, chan struct{}) {
	e.lock.Lock()
	head := e.head

	ch := make(chan struct{})
	if e.updateCh == nil {
		e.updateCh = []chan struct{}{}
	}

	e.updateCh = append(e.updateCh, ch)

	e.lock.Unlock()

	return head, ch
}

func (e *eventStream) push(event *Event) {
	e.lock.Lock()

	newHead := &eventElem{
		event: event,
	}

	if e.head != nil {
		e.head.next = newHead
	}

	e.head = newHead

	// notify the subscribers
	for _, update := range e.updateCh {
		select {
		case update <- struct{}{}:
		default:
		}
	}

	e.lock.Unlock()
}
