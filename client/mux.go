package client

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claashk/modbusclient/codec/mbap"
	"github.com/claashk/modbusclient/comm"
	"github.com/claashk/modbusclient/comm/logging"
)

// MuxClient multiplexes up to Config.MaxTransactions concurrent
// transactions over one connection. Transaction ids double as slot
// indices, so at most one request per id is in flight. A reader goroutine
// started by Connect owns the read side and hands each response to the
// transaction waiting on its id.
//
// All methods are safe for concurrent use, except that Connect must not
// race another Connect.
type MuxClient struct {
	cfg   Config
	opts  *options
	state uint32

	wmu sync.Mutex // serializes frame writes

	mu    sync.Mutex // guards conn and table
	conn  net.Conn
	table *slotTable
}

func NewMuxClient(cfg Config, opts ...Option) *MuxClient {
	n := cfg.MaxTransactions
	if n <= 0 {
		n = 1
	}
	return &MuxClient{cfg: cfg, opts: loadOptions(opts...), table: newSlotTable(n)}
}

// Connect dials the configured address, retrying failed attempts every
// RetryInterval up to MaxRetries attempts in total (0 and 1 both mean a
// single attempt, RetryForever never gives up). An open connection is
// closed first, cancelling its pending transactions.
func (c *MuxClient) Connect(ctx context.Context) error {
	_ = c.Disconnect()
	c.setState(Connecting)
	conn, err := c.dialRetry(ctx)
	if err != nil {
		c.setState(Disconnected)
		return err
	}

	c.mu.Lock()
	_ = c.closeLocked(nil)
	c.conn = conn
	c.table.notify()
	c.setState(Connected)
	c.mu.Unlock()

	go c.readLoop(conn)
	log.Infof("[%-9s] connected to %s, max-transactions=%d", "Connect", c.cfg.Address(), c.table.size())
	return nil
}

func (c *MuxClient) dialRetry(ctx context.Context) (net.Conn, error) {
	for attempt := 1; ; attempt++ {
		conn, err := dial(ctx, c.opts.dial, &c.cfg)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if c.cfg.MaxRetries >= 0 && attempt >= max(c.cfg.MaxRetries, 1) {
			log.Errorf("[%-9s] %s: giving up after %d attempt(s): %v", "Connect", c.cfg.Address(), attempt, err)
			return nil, err
		}
		log.Warnf("[%-9s] %s: attempt %d failed, retrying in %v: %v", "Connect", c.cfg.Address(), attempt, c.cfg.RetryInterval, err)

		timer := time.NewTimer(c.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Disconnect cancels all pending transactions and closes the connection.
// It is a no-op when not connected.
func (c *MuxClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked(nil)
}

// closeLocked tears the connection down, resolving every pending
// transaction with ErrCancelled wrapping cause.
func (c *MuxClient) closeLocked(cause error) error {
	if c.conn == nil {
		return nil
	}
	cancelled := ErrCancelled
	if cause != nil {
		cancelled = fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
	pending := c.table.drain()
	for _, t := range pending {
		t.resolve(nil, cancelled)
	}
	err := closeConn(c.conn)
	c.conn = nil
	c.setState(Disconnected)
	log.Infof("[%-9s] %s closed, %d pending transaction(s) cancelled", "Close", c.cfg.Address(), len(pending))
	return err
}

func (c *MuxClient) IsConnected() bool {
	return c.State() == Connected
}

func (c *MuxClient) State() State {
	return State(atomic.LoadUint32(&c.state))
}

func (c *MuxClient) setState(s State) {
	atomic.StoreUint32(&c.state, uint32(s))
}

// Pending is the number of transactions in flight.
func (c *MuxClient) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.busy()
}

// Call sends req under the first free transaction id and waits for the
// response. Validation follows Client.Call.
func (c *MuxClient) Call(ctx context.Context, req mbap.Request) (*Response, error) {
	return c.CallTransaction(ctx, AnyTransaction, req)
}

// CallTransaction is Call with an explicit transaction id.
func (c *MuxClient) CallTransaction(ctx context.Context, id int, req mbap.Request) (*Response, error) {
	t, err := c.Request(ctx, req, id)
	if err != nil {
		return nil, err
	}
	return t.Wait(ctx)
}

// Request writes req under transaction id, or under the first free id for
// AnyTransaction, and returns without waiting for the response. If no
// suitable id is free it blocks until one is, or until ctx ends.
func (c *MuxClient) Request(ctx context.Context, req mbap.Request, id int) (*Transaction, error) {
	if n := c.table.size(); id != AnyTransaction && (id < 0 || id >= n) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidTransaction, id, n)
	}
	header, frame, err := mbap.NewRequest(req)
	if err != nil {
		return nil, err
	}
	t := newTransaction(header)
	conn, err := c.acquire(ctx, id, t)
	if err != nil {
		return nil, err
	}
	header.Transaction = t.ID()
	binary.BigEndian.PutUint16(frame[0:2], header.Transaction)
	comm.LogHex(logging.DebugLevel, "Request", frame)

	c.wmu.Lock()
	_, err = conn.Write(frame)
	c.wmu.Unlock()
	if err != nil {
		log.Errorf("[%-9s] transaction %d: %v", "Request", t.id, err)
		c.mu.Lock()
		if c.table.remove(t) {
			t.resolve(nil, err)
		}
		// a partial frame leaves the stream unusable
		if c.conn == conn {
			_ = c.closeLocked(err)
		}
		c.mu.Unlock()
		return nil, err
	}
	return t, nil
}

func (c *MuxClient) acquire(ctx context.Context, id int, t *Transaction) (net.Conn, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	for {
		if c.table.reserve(id, t) {
			c.mu.Unlock()
			return conn, nil
		}
		changed := c.table.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return nil, fmt.Errorf("%w: connection closed while waiting for a transaction id", ErrCancelled)
		}
	}
}

func (c *MuxClient) readLoop(conn net.Conn) {
	for {
		header, body, err := readFrame(conn)
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				log.Errorf("[%-9s] %s: %v", "Receive", c.cfg.Address(), err)
				_ = c.closeLocked(err)
			}
			c.mu.Unlock()
			return
		}
		c.dispatch(conn, header, body)
	}
}

// dispatch resolves the transaction header belongs to. Responses read from
// a connection that is no longer current, or for ids out of range or not in
// flight, are dropped.
func (c *MuxClient) dispatch(conn net.Conn, header *mbap.ApplicationProtocolHeader, body []byte) {
	id := int(header.Transaction)
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		log.Warnf("[%-9s] connection replaced, dropped %s", "Receive", header)
		return
	}
	if id >= c.table.size() {
		c.mu.Unlock()
		log.Errorf("[%-9s] %v: %s", "Receive", ErrUnknownTransaction, header)
		return
	}
	t := c.table.take(id)
	c.mu.Unlock()
	if t == nil {
		log.Warnf("[%-9s] no transaction in flight, dropped %s", "Receive", header)
		return
	}

	resp, err := decodeResponse(header, body)
	if err == nil {
		if !unitMatches(t.header.Unit, header.Unit) {
			log.Warnf("[%-9s] expected unit %d, got %d", "Receive", t.header.Unit, header.Unit)
			resp.Code = mbap.UnitMismatch
		}
		err = resp.Err()
	}
	t.resolve(resp, err)
}
