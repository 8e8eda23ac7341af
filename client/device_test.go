package client

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/claashk/modbusclient/codec/mbap"
)

const waitTimeout = 2 * time.Second

var errRefused = errors.New("connection refused")

// fakeDevice is the server end of a net.Pipe. It queues every request it
// reads; tests answer them with reply.
type fakeDevice struct {
	conn     net.Conn
	requests chan *deviceRequest
}

type deviceRequest struct {
	header *mbap.ApplicationProtocolHeader
	body   []byte
}

func newFakeDevice(conn net.Conn) *fakeDevice {
	d := &fakeDevice{conn: conn, requests: make(chan *deviceRequest, 64)}
	go d.serve()
	return d
}

func (d *fakeDevice) serve() {
	defer close(d.requests)
	for {
		header, body, err := readFrame(d.conn)
		if err != nil {
			return
		}
		d.requests <- &deviceRequest{header: header, body: body}
	}
}

func (d *fakeDevice) next(t *testing.T) *deviceRequest {
	t.Helper()
	select {
	case req, ok := <-d.requests:
		require.True(t, ok, "device connection closed")
		return req
	case <-time.After(waitTimeout):
		require.FailNow(t, "device received no request")
	}
	return nil
}

func (d *fakeDevice) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case req, ok := <-d.requests:
		if ok {
			require.FailNow(t, "unexpected request", "%s", req.header)
		}
	case <-time.After(wait):
	}
}

// expectClosed waits until the client closed its end.
func (d *fakeDevice) expectClosed(t *testing.T) {
	t.Helper()
	for {
		select {
		case _, ok := <-d.requests:
			if !ok {
				return
			}
		case <-time.After(waitTimeout):
			require.FailNow(t, "connection still open")
		}
	}
}

func (d *fakeDevice) reply(transaction uint16, unit uint8, function mbap.Function, pdu []byte) error {
	header := mbap.ApplicationProtocolHeader{
		Transaction: transaction,
		Protocol:    mbap.ProtocolID,
		Length:      uint16(2 + len(pdu)),
		Unit:        unit,
		Function:    function,
	}
	_, err := d.conn.Write(append(header.Encode(), pdu...))
	return err
}

// echo answers req the way a device would: register values equal to their
// address for reads, the written range for writes.
func (d *fakeDevice) echo(req *deviceRequest) error {
	switch req.header.Function {
	case mbap.ReadHoldingRegisters, mbap.ReadInputRegisters:
		p := mbap.ReadRequest{}
		if err := p.Decode(req.body); err != nil {
			return err
		}
		pdu := []byte{byte(2 * p.Count)}
		for i := uint16(0); i < p.Count; i++ {
			pdu = append(pdu, byte((p.Start+i)>>8), byte(p.Start+i))
		}
		return d.reply(req.header.Transaction, req.header.Unit, req.header.Function, pdu)
	case mbap.WriteMultipleRegisters:
		p := mbap.WriteRequest{}
		if err := p.Decode(req.body); err != nil {
			return err
		}
		pdu := (&mbap.WriteResponse{Start: p.Start, Count: p.Count}).Encode()
		return d.reply(req.header.Transaction, req.header.Unit, req.header.Function, pdu)
	default:
		return d.reply(req.header.Transaction, req.header.Unit, req.header.Function|mbap.ErrorFlag,
			[]byte{byte(mbap.IllegalFunction)})
	}
}

// pipeDialer fails the first failures attempts, all of them if negative,
// and connects to a new fakeDevice afterwards.
type pipeDialer struct {
	failures int32
	attempts int32
	devices  chan *fakeDevice
}

func newPipeDialer(failures int32) *pipeDialer {
	return &pipeDialer{failures: failures, devices: make(chan *fakeDevice, 8)}
}

func (p *pipeDialer) dial(ctx context.Context, network, address string) (net.Conn, error) {
	n := atomic.AddInt32(&p.attempts, 1)
	if p.failures < 0 || n <= p.failures {
		return nil, &net.OpError{Op: "dial", Net: network, Err: errRefused}
	}
	cli, srv := net.Pipe()
	p.devices <- newFakeDevice(srv)
	return cli, nil
}

func (p *pipeDialer) device(t *testing.T) *fakeDevice {
	t.Helper()
	select {
	case d := <-p.devices:
		return d
	case <-time.After(waitTimeout):
		require.FailNow(t, "not connected")
	}
	return nil
}

func (p *pipeDialer) Attempts() int {
	return int(atomic.LoadInt32(&p.attempts))
}

func testConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.Host = "device"
	cfg.Timeout = time.Second
	cfg.MaxTransactions = n
	cfg.RetryInterval = time.Millisecond
	return cfg
}
