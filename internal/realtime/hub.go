// Package realtime implements the insert-event bridge: a hub that observes
// row inserts flowing through a GORM handle and fans them out to
// subscriptions filtered by a column=value predicate.
//
// The hub attaches to the handle as an after-create callback, so every
// insert issued through that handle (including inserts inside transactions)
// is published. Only inserts are observed; the data model's realtime
// consumers (message history) are append-only, so update and delete events
// are unnecessary.
//
// Delivery model:
//   - each subscription owns a goroutine and an unbounded FIFO queue, so
//     publishing never blocks the insert path and per-subscription ordering
//     follows insert order;
//   - handlers may run on a different goroutine than the subscriber's;
//     invocations across different subscriptions are not serialized;
//   - Close stops further invocations and is safe to call more than once.
//
// The hub is the only long-lived resource in the data layer: the owner of a
// subscription must release it when the owning context (e.g. an open thread
// view) goes away.
package realtime

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
)

// Subscription is the disposal handle for one standing insert subscription.
type Subscription struct {
	hub *Hub
	id  uint64

	table string
	// column/want form the key predicate: only rows whose column value
	// stringifies to want are delivered.
	column string
	want   string

	handler func(record any)

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []any
	closed bool
	once   sync.Once
}

// Close tears the subscription down: the hub stops matching it, queued but
// undelivered records are dropped, and no new handler invocation starts.
// Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		s.mu.Lock()
		s.closed = true
		s.cond.Broadcast()
		s.mu.Unlock()
	})
}

// push enqueues a record for delivery. Never blocks.
func (s *Subscription) push(record any) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, record)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

// run delivers queued records in FIFO order until the subscription closes.
func (s *Subscription) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		record := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.handler(record)
	}
}

// Hub fans insert events out to matching subscriptions. Safe for concurrent
// use; a zero-value Hub is not usable, construct with NewHub.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// NewHub returns an empty hub. Attach it to a *gorm.DB to start observing
// inserts.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Attach registers the hub as an after-create callback on db. Attach once
// per handle; re-attaching under the same name fails.
func (h *Hub) Attach(db *gorm.DB) error {
	return db.Callback().Create().After("gorm:create").Register("realtime:publish", h.afterCreate)
}

// SubscribeInserts opens a subscription to insert events on table where the
// named column equals value. The handler is invoked once per matching
// insert, in insert order. The caller owns the returned handle and must
// Close it.
func (h *Hub) SubscribeInserts(table, column string, value any, handler func(record any)) *Subscription {
	s := &Subscription{
		table:   table,
		column:  column,
		want:    fmt.Sprint(value),
		handler: handler,
	}
	s.cond = sync.NewCond(&s.mu)
	s.hub = h

	h.mu.Lock()
	h.nextID++
	s.id = h.nextID
	h.subs[s.id] = s
	h.mu.Unlock()

	go s.run()
	return s
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// afterCreate publishes every row of a successful insert statement. Batch
// inserts publish one event per row, in slice order.
func (h *Hub) afterCreate(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement == nil || tx.Statement.Schema == nil {
		return
	}

	rv := tx.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			h.publish(tx, rv.Index(i))
		}
	default:
		h.publish(tx, rv)
	}
}

// publish delivers a single inserted row to every matching subscription.
// The record handed to handlers is a pointer to the inserted struct.
func (h *Hub) publish(tx *gorm.DB, rv reflect.Value) {
	table := tx.Statement.Table

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		if s.table != table {
			continue
		}
		field := tx.Statement.Schema.LookUpField(s.column)
		if field == nil {
			continue
		}
		val, zero := field.ValueOf(tx.Statement.Context, rv)
		if zero && val == nil {
			continue
		}
		if fmt.Sprint(val) != s.want {
			continue
		}
		s.push(recordPointer(rv))
	}
}

// recordPointer returns a pointer to the inserted row struct so handlers
// observe server-assigned fields (id, timestamps).
func recordPointer(rv reflect.Value) any {
	if rv.Kind() == reflect.Ptr {
		return rv.Interface()
	}
	if rv.CanAddr() {
		return rv.Addr().Interface()
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return ptr.Interface()
}
