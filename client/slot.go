package client

import (
	"context"

	"github.com/claashk/modbusclient/codec/mbap"
)

// AnyTransaction lets the client pick the first free transaction id.
const AnyTransaction = -1

// Transaction is one request in flight on a MuxClient. It is resolved
// exactly once: by its response, by a failed write or by the connection
// going away.
type Transaction struct {
	id     int
	header *mbap.ApplicationProtocolHeader
	done   chan struct{}
	resp   *Response
	err    error
}

func newTransaction(header *mbap.ApplicationProtocolHeader) *Transaction {
	return &Transaction{id: AnyTransaction, header: header, done: make(chan struct{})}
}

func (t *Transaction) ID() uint16 {
	return uint16(t.id)
}

// Header is the request header as written.
func (t *Transaction) Header() *mbap.ApplicationProtocolHeader {
	return t.header
}

// Done is closed once the transaction is resolved.
func (t *Transaction) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the transaction is resolved or ctx ends. Giving up on
// ctx does not free the transaction id; it stays taken until the response
// arrives or the connection is closed.
func (t *Transaction) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-t.done:
		return t.resp, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transaction) resolve(resp *Response, err error) {
	t.resp, t.err = resp, err
	close(t.done)
}

// slotTable maps transaction ids [0, N) to transactions in flight. Every
// change closes and replaces changed, which is what blocked callers wait
// on. Callers hold MuxClient.mu.
type slotTable struct {
	slots   []*Transaction
	changed chan struct{}
}

func newSlotTable(n int) *slotTable {
	return &slotTable{slots: make([]*Transaction, n), changed: make(chan struct{})}
}

func (s *slotTable) size() int {
	return len(s.slots)
}

// reserve puts t into slot id, or into the lowest free slot for
// AnyTransaction. It reports false if that slot is taken.
func (s *slotTable) reserve(id int, t *Transaction) bool {
	if id == AnyTransaction {
		for i, slot := range s.slots {
			if slot == nil {
				id = i
				break
			}
		}
		if id == AnyTransaction {
			return false
		}
	}
	if s.slots[id] != nil {
		return false
	}
	s.slots[id] = t
	t.id = id
	return true
}

// take frees slot id and returns its transaction, nil if it was free.
func (s *slotTable) take(id int) *Transaction {
	t := s.slots[id]
	if t != nil {
		s.slots[id] = nil
		s.notify()
	}
	return t
}

// remove frees t's slot if t still holds it.
func (s *slotTable) remove(t *Transaction) bool {
	if t.id < 0 || t.id >= len(s.slots) || s.slots[t.id] != t {
		return false
	}
	s.take(t.id)
	return true
}

// drain frees every slot and returns the transactions they held.
func (s *slotTable) drain() []*Transaction {
	var pending []*Transaction
	for i, t := range s.slots {
		if t != nil {
			pending = append(pending, t)
			s.slots[i] = nil
		}
	}
	s.notify()
	return pending
}

func (s *slotTable) busy() int {
	n := 0
	for _, t := range s.slots {
		if t != nil {
			n++
		}
	}
	return n
}

func (s *slotTable) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}
