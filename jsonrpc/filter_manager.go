package jsonrpc

import (
	"container/heap"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/helper/common"
	"github.com/0xPolygon/edge-vault/vault"
)

var (
	ErrFilterNotFound                   = errors.New("filter not found")
	ErrWSFilterDoesNotSupportGetChanges = errors.New("web socket Filter doesn't support to return a batch of the changes")
	ErrCastingFilterToEventFilter       = errors.New("casting filter object to eventFilter error")
	ErrIncorrectRange                   = errors.New("incorrect range")
	ErrEventRangeTooHigh                = errors.New("event range too high")
	ErrNoWSConnection                   = errors.New("no websocket connection")
)

// defaultTimeout is the timeout to remove the filters that don't have a web socket stream
var defaultTimeout = 1 * time.Minute

const (
	// The index in heap which is indicating the element is not in the heap
	NoIndexInHeap = -1
)

// subscriptionType determines which updates the filter is subscribed to
type subscriptionType byte

const (
	// Events represents subscription type for vault log events
	Events subscriptionType = iota
	// Messages represents subscription type for sequenced messages
	Messages
)

// filter is an interface that eventFilter and messageFilter implement
type filter interface {
	// hasWSConn returns the flag indicating the filter has web socket stream
	hasWSConn() bool

	// getFilterBase returns filterBase that has common fields
	getFilterBase() *filterBase

	// getSubscriptionType returns the type of the updates the filter is subscribed to
	getSubscriptionType() subscriptionType

	// getUpdates returns stored data in a JSON serializable form
	getUpdates() (interface{}, error)

	// sendUpdates write stored data to web socket stream
	sendUpdates() error
}

// filterBase is a struct for common fields between eventFilter and messageFilter
type filterBase struct {
	// UUID, a key of filter for client
	id string

	// index in the timeouts heap, -1 for non-existing index
	heapIndex int

	// timestamp to be expired
	expiresAt time.Time

	// websocket connection
	ws wsConn
}

// newFilterBase initializes filterBase with unique ID
func newFilterBase(ws wsConn) filterBase {
	uuidObj := uuid.New()

	return filterBase{
		id:        string(encodeToHex(uuidObj[:])),
		ws:        ws,
		heapIndex: NoIndexInHeap,
	}
}

// getFilterBase returns its own reference so that child struct can return base
func (f *filterBase) getFilterBase() *filterBase {
	return f
}

// hasWSConn returns the flag indicating this filter has websocket connection
func (f *filterBase) hasWSConn() bool {
	return f.ws != nil
}

const vaultSubscriptionTemplate = `{
	"jsonrpc": "2.0",
	"method": "vault_subscription",
	"params": {
		"subscription":"%s",
		"result": %s
	}
}`

// writeMessageToWs sends given message to websocket stream
func (f *filterBase) writeMessageToWs(msg string) error {
	if !f.hasWSConn() {
		return ErrNoWSConnection
	}

	return f.ws.WriteMessage(
		websocket.TextMessage,
		[]byte(fmt.Sprintf(vaultSubscriptionTemplate, f.id, msg)),
	)
}

// eventFilter is a filter to store events that meet the conditions in query
type eventFilter struct {
	filterBase
	sync.Mutex

	query  *EventQuery
	events []*event
}

// appendEvent appends new event to events
func (f *eventFilter) appendEvent(evnt *event) {
	f.Lock()
	defer f.Unlock()

	f.events = append(f.events, evnt)
}

// takeEventUpdates returns all saved events in filter and sets a new slice
func (f *eventFilter) takeEventUpdates() []*event {
	f.Lock()
	defer f.Unlock()

	events := f.events
	f.events = []*event{}

	return events
}

// getUpdates returns stored events
func (f *eventFilter) getUpdates() (interface{}, error) {
	return f.takeEventUpdates(), nil
}

// sendUpdates writes stored events to web socket stream
func (f *eventFilter) sendUpdates() error {
	events := f.takeEventUpdates()

	for _, evnt := range events {
		res, err := jsonCodec.Marshal(evnt)
		if err != nil {
			return err
		}

		if err := f.writeMessageToWs(string(res)); err != nil {
			return err
		}
	}

	return nil
}

// getSubscriptionType returns the type of the updates the filter is subscribed to
func (f *eventFilter) getSubscriptionType() subscriptionType {
	return Events
}

// matches returns whether the filter wants the given event
func (f *eventFilter) matches(evnt *vault.Event) bool {
	return f.query == nil || f.query.Match(evnt)
}

// messageFilter is a filter to store sequenced messages
type messageFilter struct {
	filterBase
	sync.Mutex

	messages []*message
}

// appendMessage appends new message to messages
func (f *messageFilter) appendMessage(msg *message) {
	f.Lock()
	defer f.Unlock()

	f.messages = append(f.messages, msg)
}

// takeMessageUpdates returns all saved messages in filter and sets a new slice
func (f *messageFilter) takeMessageUpdates() []*message {
	f.Lock()
	defer f.Unlock()

	messages := f.messages
	f.messages = []*message{}

	return messages
}

// getUpdates returns stored messages
func (f *messageFilter) getUpdates() (interface{}, error) {
	return f.takeMessageUpdates(), nil
}

// sendUpdates writes stored messages to web socket stream
func (f *messageFilter) sendUpdates() error {
	messages := f.takeMessageUpdates()

	for _, msg := range messages {
		res, err := jsonCodec.Marshal(msg)
		if err != nil {
			return err
		}

		if err := f.writeMessageToWs(string(res)); err != nil {
			return err
		}
	}

	return nil
}

// getSubscriptionType returns the type of the updates the filter is subscribed to
func (f *messageFilter) getSubscriptionType() subscriptionType {
	return Messages
}

// filterManagerStore provides methods required by FilterManager
type filterManagerStore interface {
	// SubscribeEvents subscribes for vault events
	SubscribeEvents() vault.Subscription

	// GetEventCount returns the number of events appended to the log
	GetEventCount() uint64

	// GetEvent returns the event stored under the given index
	GetEvent(index uint64) (*vault.Event, bool, error)
}

// FilterManager manages all running filters
type FilterManager struct {
	sync.RWMutex

	logger hclog.Logger

	timeout time.Duration

	store           filterManagerStore
	subscription    vault.Subscription
	eventRangeLimit uint64

	filters  map[string]filter
	timeouts timeHeapImpl

	updateCh chan struct{}
	closeCh  chan struct{}
}

func NewFilterManager(logger hclog.Logger, store filterManagerStore, eventRangeLimit uint64) *FilterManager {
	m := &FilterManager{
		logger:          logger.Named("filter"),
		timeout:         defaultTimeout,
		store:           store,
		eventRangeLimit: eventRangeLimit,
		filters:         make(map[string]filter),
		timeouts:        timeHeapImpl{},
		updateCh:        make(chan struct{}),
		closeCh:         make(chan struct{}),
	}

	// start the event watcher
	m.subscription = store.SubscribeEvents()

	return m
}

// Run starts worker process to handle events
func (f *FilterManager) Run() {
	// watch for new events in the vault
	watchCh := make(chan *vault.Event)

	go func() {
		for {
			evnt := f.subscription.GetEvent()
			if evnt == nil {
				return
			}
			watchCh <- evnt
		}
	}()

	var timeoutCh <-chan time.Time

	for {
		// check for the next filter to be removed
		filterID, filterExpiresAt := f.nextTimeoutFilter()

		// set timer to remove filter
		if filterID != "" {
			timeoutCh = time.After(time.Until(filterExpiresAt))
		}

		select {
		case evnt := <-watchCh:
			// new vault event
			if err := f.dispatchEvent(evnt); err != nil {
				f.logger.Error("failed to dispatch event", "err", err)
			}

		case <-timeoutCh:
			// timeout for filter
			// if filter still exists
			if !f.Uninstall(filterID) {
				f.logger.Warn("failed to uninstall filter", "id", filterID)
			}

		case <-f.updateCh:
			// filters change, reset the loop to start the timeout timer

		case <-f.closeCh:
			// stop the filter manager
			return
		}
	}
}

// Close closed closeCh so that terminate worker
func (f *FilterManager) Close() {
	close(f.closeCh)
}

// NewEventFilter adds new eventFilter. A nil query matches every event.
func (f *FilterManager) NewEventFilter(query *EventQuery, ws wsConn) string {
	filter := &eventFilter{
		filterBase: newFilterBase(ws),
		query:      query,
	}

	if filter.hasWSConn() {
		ws.SetFilterID(filter.id)
	}

	return f.addFilter(filter)
}

// NewMessageFilter adds new messageFilter
func (f *FilterManager) NewMessageFilter(ws wsConn) string {
	filter := &messageFilter{
		filterBase: newFilterBase(ws),
		messages:   []*message{},
	}

	if filter.hasWSConn() {
		ws.SetFilterID(filter.id)
	}

	return f.addFilter(filter)
}

// Exists checks the filter with given ID exists
func (f *FilterManager) Exists(id string) bool {
	f.RLock()
	defer f.RUnlock()

	_, ok := f.filters[id]

	return ok
}

// GetEventsForQuery returns the matching slice of the event log. The
// range bounds are inclusive; an absent upper bound means the log head.
func (f *FilterManager) GetEventsForQuery(query *EventQuery) ([]*event, error) {
	if query == nil {
		query = &EventQuery{}
	}

	count := f.store.GetEventCount()
	if count == 0 {
		return []*event{}, nil
	}

	from := uint64(0)
	if query.fromIndex != nil {
		from = *query.fromIndex
	}

	// a bound past the log head means the head
	to := count - 1
	if query.toIndex != nil {
		to = common.Min(*query.toIndex, count-1)
	}

	if to < from {
		return nil, ErrIncorrectRange
	}

	// if not disabled, avoid handling large event ranges
	if f.eventRangeLimit != 0 && to-from > f.eventRangeLimit {
		return nil, ErrEventRangeTooHigh
	}

	events := make([]*event, 0)

	for i := from; i <= to; i++ {
		evnt, ok, err := f.store.GetEvent(i)
		if err != nil {
			return nil, err
		}

		if !ok {
			// ran past the log head
			break
		}

		if query.Match(evnt) {
			events = append(events, toEvent(evnt))
		}
	}

	return events, nil
}

// getFilterByID fetches the filter by the ID
func (f *FilterManager) getFilterByID(filterID string) filter {
	f.RLock()
	defer f.RUnlock()

	return f.filters[filterID]
}

// GetEventFilterFromID return event filter for given filterID
func (f *FilterManager) GetEventFilterFromID(filterID string) (*eventFilter, error) {
	filterRaw := f.getFilterByID(filterID)
	if filterRaw == nil {
		return nil, ErrFilterNotFound
	}

	eventFilter, ok := filterRaw.(*eventFilter)
	if !ok {
		return nil, ErrCastingFilterToEventFilter
	}

	return eventFilter, nil
}

// GetFilterChanges returns the updates of the filter with given ID in string, and refreshes the timeout on the filter
func (f *FilterManager) GetFilterChanges(id string) (interface{}, error) {
	filter, res, err := f.getFilterAndChanges(id)

	if err == nil && !filter.hasWSConn() {
		// Refresh the timeout on this filter
		f.Lock()
		f.refreshFilterTimeout(filter.getFilterBase())
		f.Unlock()
	}

	return res, err
}

// getFilterAndChanges returns the updates of the filter with given ID in string (read lock only)
func (f *FilterManager) getFilterAndChanges(id string) (filter, interface{}, error) {
	f.RLock()
	defer f.RUnlock()

	filter, ok := f.filters[id]
	if !ok {
		return nil, nil, ErrFilterNotFound
	}

	// we cannot get updates from a ws filter with getFilterChanges
	if filter.hasWSConn() {
		return nil, nil, ErrWSFilterDoesNotSupportGetChanges
	}

	res, err := filter.getUpdates()
	if err != nil {
		return nil, nil, err
	}

	return filter, res, nil
}

// Uninstall removes the filter with given ID from list
func (f *FilterManager) Uninstall(id string) bool {
	f.Lock()
	defer f.Unlock()

	return f.removeFilterByID(id)
}

// removeFilterByID removes the filter with given ID [NOT Thread Safe]
func (f *FilterManager) removeFilterByID(id string) bool {
	// Make sure filter exists
	filter, ok := f.filters[id]
	if !ok {
		return false
	}

	delete(f.filters, id)

	if removed := f.timeouts.removeFilter(filter.getFilterBase()); removed {
		f.emitSignalToUpdateCh()
	}

	return true
}

// RemoveFilterByWs removes the filter with given WS [Thread safe]
func (f *FilterManager) RemoveFilterByWs(ws wsConn) {
	f.Lock()
	defer f.Unlock()

	f.removeFilterByID(ws.GetFilterID())
}

// refreshFilterTimeout updates the timeout for a filter to the current time
func (f *FilterManager) refreshFilterTimeout(filter *filterBase) {
	f.timeouts.removeFilter(filter)
	f.addFilterTimeout(filter)
}

// addFilterTimeout set timeout and add to heap
func (f *FilterManager) addFilterTimeout(filter *filterBase) {
	filter.expiresAt = time.Now().UTC().Add(f.timeout)
	f.timeouts.addFilter(filter)
	f.emitSignalToUpdateCh()
}

// addFilter is an internal method to add given filter to list and heap
func (f *FilterManager) addFilter(filter filter) string {
	f.Lock()
	defer f.Unlock()

	base := filter.getFilterBase()

	f.filters[base.id] = filter

	// Set timeout and add to heap if filter doesn't have web socket connection
	if !filter.hasWSConn() {
		f.addFilterTimeout(base)
	}

	return base.id
}

func (f *FilterManager) emitSignalToUpdateCh() {
	select {
	// notify worker of new filter with timeout
	case f.updateCh <- struct{}{}:
	default:
	}
}

// nextTimeoutFilter returns the filter that will be expired next
func (f *FilterManager) nextTimeoutFilter() (string, time.Time) {
	f.RLock()
	defer f.RUnlock()

	if len(f.timeouts) == 0 {
		return "", time.Time{}
	}

	// peek the first item
	base := f.timeouts[0]

	return base.id, base.expiresAt
}

// dispatchEvent stores a new event in each filter that wants it and
// flushes the web socket streams it touched
func (f *FilterManager) dispatchEvent(evnt *vault.Event) error {
	f.processEvent(evnt)

	subTypes := []subscriptionType{Events}
	if evnt.Type == vault.MessageReceived || evnt.Type == vault.MessageAllocated {
		subTypes = append(subTypes, Messages)
	}

	// send data to web socket stream
	for _, subType := range subTypes {
		if err := f.flushWsFilters(subType); err != nil {
			return err
		}
	}

	return nil
}

// processEvent makes each filter append the new data that interests them
func (f *FilterManager) processEvent(evnt *vault.Event) {
	f.RLock()
	defer f.RUnlock()

	for _, fltr := range f.filters {
		switch obj := fltr.(type) {
		case *eventFilter:
			if obj.matches(evnt) {
				obj.appendEvent(toEvent(evnt))
			}
		case *messageFilter:
			if evnt.Type == vault.MessageReceived || evnt.Type == vault.MessageAllocated {
				obj.appendMessage(toMessageFromEvent(evnt))
			}
		}
	}
}

// flushWsFilters make each filters with web socket connection write the updates to web socket stream
// flushWsFilters also removes the filters if flushWsFilters notices the connection is closed
func (f *FilterManager) flushWsFilters(subType subscriptionType) error {
	closedFilterIDs := make([]string, 0)

	f.RLock()

	for id, filter := range f.filters {
		if !filter.hasWSConn() || filter.getSubscriptionType() != subType {
			continue
		}

		if flushErr := filter.sendUpdates(); flushErr != nil {
			// mark as closed if the connection is closed
			if errors.Is(flushErr, websocket.ErrCloseSent) || errors.Is(flushErr, net.ErrClosed) {
				closedFilterIDs = append(closedFilterIDs, id)

				f.logger.Warn(fmt.Sprintf("Subscription %s has been closed", id))

				continue
			}

			f.logger.Error(fmt.Sprintf("Unable to process flush, %v", flushErr))
		}
	}

	f.RUnlock()

	// remove filters with closed web socket connections from FilterManager
	if len(closedFilterIDs) > 0 {
		f.Lock()
		for _, id := range closedFilterIDs {
			f.removeFilterByID(id)
		}
		f.Unlock()

		f.logger.Info(fmt.Sprintf("Removed %d filters due to closed connections", len(closedFilterIDs)))
	}

	return nil
}

type timeHeapImpl []*filterBase

func (t *timeHeapImpl) addFilter(filter *filterBase) {
	heap.Push(t, filter)
}

func (t *timeHeapImpl) removeFilter(filter *filterBase) bool {
	if filter.heapIndex == NoIndexInHeap {
		return false
	}

	heap.Remove(t, filter.heapIndex)

	return true
}

func (t timeHeapImpl) Len() int { return len(t) }

func (t timeHeapImpl) Less(i, j int) bool {
	return t[i].expiresAt.Before(t[j].expiresAt)
}

func (t timeHeapImpl) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
	t[i].heapIndex = i
	t[j].heapIndex = j
}

func (t *timeHeapImpl) Push(x interface{}) {
	n := len(*t)
	item := x.(*filterBase) //nolint: forcetypeassert
	item.heapIndex = n
	*t = append(*t, item)
}

func (t *timeHeapImpl) Pop() interface{} {
	old := *t
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.heapIndex = -1
	*t = old[0 : n-1]

	return item
}
